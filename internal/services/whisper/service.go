package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"scribe/internal/captions"
	"scribe/internal/media"
	"scribe/internal/services"
)

// Service provides transcription via the whisper command-line tool.
type Service struct {
	binary   string
	model    string
	language string

	commandRunner func(ctx context.Context, name string, args ...string) error
}

// Config carries the whisper settings the service needs.
type Config struct {
	Binary   string
	Model    string
	Language string // empty means automatic detection
}

// NewService creates a whisper service with the given configuration.
func NewService(cfg Config) *Service {
	binary := strings.TrimSpace(cfg.Binary)
	if binary == "" {
		binary = "whisper"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "base"
	}
	return &Service{
		binary:   binary,
		model:    model,
		language: strings.TrimSpace(cfg.Language),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

func (s *Service) run(ctx context.Context, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, s.binary, args...)
	}
	cmd := exec.CommandContext(ctx, s.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", s.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

type whisperPayload struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe runs whisper on an audio file and returns its text, detected
// language, and timed segments. outputDir receives whisper's JSON artifact.
func (s *Service) Transcribe(ctx context.Context, audioPath, outputDir string) (media.Transcription, error) {
	if audioPath == "" {
		return media.Transcription{}, services.Wrap(services.ErrValidation, "transcribe", "whisper", "audio path required", nil)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return media.Transcription{}, services.Wrap(services.ErrConfiguration, "transcribe", "whisper", "ensure output dir", err)
	}

	args := []string{
		audioPath,
		"--model", s.model,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--fp16", "False",
	}
	if s.language != "" {
		args = append(args, "--language", s.language)
	}

	if err := s.run(ctx, args...); err != nil {
		return media.Transcription{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisper", "run transcription", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	return loadTranscription(jsonPath)
}

func loadTranscription(jsonPath string) (media.Transcription, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return media.Transcription{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisper", "read transcription output", err)
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return media.Transcription{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisper", "parse transcription output", err)
	}

	result := media.Transcription{
		Text:     strings.TrimSpace(payload.Text),
		Language: payload.Language,
	}
	for _, segment := range payload.Segments {
		result.Segments = append(result.Segments, captions.Segment{
			Start: segment.Start,
			End:   segment.End,
			Text:  strings.TrimSpace(segment.Text),
		})
	}
	return result, nil
}
