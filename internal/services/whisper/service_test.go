package whisper_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"scribe/internal/services"
	"scribe/internal/services/whisper"
)

func TestTranscribeParsesJSONOutput(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "talk.mp3")
	if err := os.WriteFile(audio, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	svc := whisper.NewService(whisper.Config{Binary: "whisper", Model: "base"})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		if name != "whisper" {
			t.Fatalf("unexpected binary %q", name)
		}
		if args[0] != audio {
			t.Fatalf("expected audio path first, got %v", args)
		}
		payload := `{
			"text": " hello world ",
			"language": "en",
			"segments": [
				{"start": 0.0, "end": 1.5, "text": " hello "},
				{"start": 1.5, "end": 3.0, "text": " world "}
			]
		}`
		return os.WriteFile(filepath.Join(dir, "talk.json"), []byte(payload), 0o644)
	})

	result, err := svc.Transcribe(context.Background(), audio, dir)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.Text != "hello world" {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if result.Language != "en" {
		t.Fatalf("unexpected language %q", result.Language)
	}
	if len(result.Segments) != 2 || result.Segments[1].Text != "world" {
		t.Fatalf("unexpected segments: %#v", result.Segments)
	}
}

func TestTranscribePassesLanguageFlag(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "talk.mp3")
	if err := os.WriteFile(audio, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	svc := whisper.NewService(whisper.Config{Language: "zh"})
	var sawLanguage bool
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		for i, arg := range args {
			if arg == "--language" && i+1 < len(args) && args[i+1] == "zh" {
				sawLanguage = true
			}
		}
		return os.WriteFile(filepath.Join(dir, "talk.json"), []byte(`{"text":"x","language":"zh","segments":[]}`), 0o644)
	})

	if _, err := svc.Transcribe(context.Background(), audio, dir); err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if !sawLanguage {
		t.Fatal("expected --language zh to be passed")
	}
}

func TestTranscribeRequiresAudioPath(t *testing.T) {
	svc := whisper.NewService(whisper.Config{})
	_, err := svc.Transcribe(context.Background(), "", t.TempDir())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTranscribeWrapsToolFailure(t *testing.T) {
	svc := whisper.NewService(whisper.Config{})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("model not found")
	})

	_, err := svc.Transcribe(context.Background(), "/tmp/talk.mp3", t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestTranscribeFailsWhenJSONMissing(t *testing.T) {
	svc := whisper.NewService(whisper.Config{})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})

	dir := t.TempDir()
	audio := filepath.Join(dir, "talk.mp3")
	if err := os.WriteFile(audio, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	_, err := svc.Transcribe(context.Background(), audio, dir)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
