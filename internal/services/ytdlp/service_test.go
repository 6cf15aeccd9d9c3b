package ytdlp_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/services/ytdlp"
)

func newService() *ytdlp.Service {
	return ytdlp.NewService(ytdlp.Config{Binary: "yt-dlp", AudioFormat: "mp3"})
}

func TestVideoInfoParsesMetadata(t *testing.T) {
	svc := newService()
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name != "yt-dlp" {
			t.Fatalf("unexpected binary %q", name)
		}
		if args[0] != "-J" {
			t.Fatalf("expected -J first, got %v", args)
		}
		return []byte(`{
			"id": "abc123",
			"title": "A Talk",
			"duration": 125.6,
			"uploader": "someone",
			"webpage_url": "https://www.youtube.com/watch?v=abc123",
			"subtitles": {"en": []}
		}`), nil
	})

	meta, err := svc.VideoInfo(context.Background(), "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("VideoInfo failed: %v", err)
	}
	if meta.ID != "abc123" || meta.Title != "A Talk" {
		t.Fatalf("unexpected metadata: %#v", meta)
	}
	if meta.Duration != 125 {
		t.Fatalf("expected duration 125, got %d", meta.Duration)
	}
	if !meta.HasSubtitles {
		t.Fatal("expected HasSubtitles true")
	}
}

func TestDownloadSubtitlesReturnsEmptyWhenNoneProduced(t *testing.T) {
	svc := newService()
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	})

	path, err := svc.DownloadSubtitles(context.Background(), "https://youtu.be/abc123", "abc123", t.TempDir())
	if err != nil {
		t.Fatalf("DownloadSubtitles failed: %v", err)
	}
	if path != "" {
		t.Fatalf("expected empty path, got %q", path)
	}
}

func TestDownloadSubtitlesFindsDownloadedFile(t *testing.T) {
	dir := t.TempDir()
	svc := newService()
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		srt := filepath.Join(dir, "abc123.en.srt")
		if err := os.WriteFile(srt, []byte("1\n00:00:00,000 --> 00:00:01,000\nhi\n"), 0o644); err != nil {
			t.Fatalf("write srt: %v", err)
		}
		return nil, nil
	})

	path, err := svc.DownloadSubtitles(context.Background(), "https://youtu.be/abc123", "abc123", dir)
	if err != nil {
		t.Fatalf("DownloadSubtitles failed: %v", err)
	}
	if !strings.HasSuffix(path, "abc123.en.srt") {
		t.Fatalf("unexpected subtitle path %q", path)
	}
}

func TestDownloadAudioVerifiesOutputFile(t *testing.T) {
	dir := t.TempDir()
	svc := newService()
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if err := os.WriteFile(filepath.Join(dir, "abc123.mp3"), []byte("audio"), 0o644); err != nil {
			t.Fatalf("write audio: %v", err)
		}
		return nil, nil
	})

	path, err := svc.DownloadAudio(context.Background(), "https://youtu.be/abc123", "abc123", dir)
	if err != nil {
		t.Fatalf("DownloadAudio failed: %v", err)
	}
	if filepath.Base(path) != "abc123.mp3" {
		t.Fatalf("unexpected audio path %q", path)
	}
}

func TestDownloadAudioFailsWhenFileMissing(t *testing.T) {
	svc := newService()
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	})

	if _, err := svc.DownloadAudio(context.Background(), "https://youtu.be/abc123", "abc123", t.TempDir()); err == nil {
		t.Fatal("expected error when audio file missing")
	}
}

func TestPlaylistItemsKeepsOrder(t *testing.T) {
	svc := newService()
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if args[0] != "--flat-playlist" {
			t.Fatalf("expected --flat-playlist, got %v", args)
		}
		return []byte(`{"entries": [
			{"id": "one", "url": "https://www.youtube.com/watch?v=one"},
			{"id": "two", "url": ""},
			{"id": "", "url": ""}
		]}`), nil
	})

	urls, err := svc.PlaylistItems(context.Background(), "https://www.youtube.com/playlist?list=PL1")
	if err != nil {
		t.Fatalf("PlaylistItems failed: %v", err)
	}
	want := []string{
		"https://www.youtube.com/watch?v=one",
		"https://www.youtube.com/watch?v=two",
	}
	if len(urls) != len(want) {
		t.Fatalf("expected %d urls, got %v", len(want), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}
