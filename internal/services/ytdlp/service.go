package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"scribe/internal/media"
	"scribe/internal/services"
)

// Service wraps the yt-dlp binary.
type Service struct {
	binary            string
	cookies           string
	audioFormat       string
	subtitleLanguages []string

	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Config carries the yt-dlp settings the service needs.
type Config struct {
	Binary            string
	Cookies           string
	AudioFormat       string
	SubtitleLanguages []string
}

// NewService creates a yt-dlp service with the given configuration.
func NewService(cfg Config) *Service {
	binary := strings.TrimSpace(cfg.Binary)
	if binary == "" {
		binary = "yt-dlp"
	}
	audioFormat := strings.TrimSpace(cfg.AudioFormat)
	if audioFormat == "" {
		audioFormat = "mp3"
	}
	langs := cfg.SubtitleLanguages
	if len(langs) == 0 {
		langs = []string{"zh", "en"}
	}
	return &Service{
		binary:            binary,
		cookies:           cfg.Cookies,
		audioFormat:       audioFormat,
		subtitleLanguages: langs,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	s.commandRunner = runner
}

func (s *Service) run(ctx context.Context, args ...string) ([]byte, error) {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, s.binary, args...)
	}
	cmd := exec.CommandContext(ctx, s.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", s.binary, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func (s *Service) cookieArgs() []string {
	if s.cookies == "" {
		return nil
	}
	return []string{"--cookies", s.cookies}
}

type videoInfoPayload struct {
	ID                string                     `json:"id"`
	Title             string                     `json:"title"`
	Duration          float64                    `json:"duration"`
	Uploader          string                     `json:"uploader"`
	WebpageURL        string                     `json:"webpage_url"`
	Subtitles         map[string]json.RawMessage `json:"subtitles"`
	AutomaticCaptions map[string]json.RawMessage `json:"automatic_captions"`
}

// VideoInfo fetches video metadata without downloading anything.
func (s *Service) VideoInfo(ctx context.Context, url string) (media.VideoMetadata, error) {
	args := append([]string{"-J", "--no-warnings"}, s.cookieArgs()...)
	args = append(args, url)
	out, err := s.run(ctx, args...)
	if err != nil {
		return media.VideoMetadata{}, services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", "get video info", err)
	}

	var payload videoInfoPayload
	if err := json.Unmarshal(out, &payload); err != nil {
		return media.VideoMetadata{}, services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", "parse video info", err)
	}

	meta := media.VideoMetadata{
		ID:           payload.ID,
		Title:        payload.Title,
		Duration:     int(payload.Duration),
		Uploader:     payload.Uploader,
		URL:          payload.WebpageURL,
		HasSubtitles: len(payload.Subtitles) > 0 || len(payload.AutomaticCaptions) > 0,
	}
	if meta.URL == "" {
		meta.URL = url
	}
	return meta, nil
}

// DownloadSubtitles tries to fetch existing captions as SRT into destDir and
// returns the downloaded file path. An empty path with a nil error means no
// captions are available; that is not a failure.
func (s *Service) DownloadSubtitles(ctx context.Context, url, videoID, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "fetch", "yt-dlp", "ensure transcript dir", err)
	}

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", strings.Join(s.subtitleLanguages, ","),
		"--convert-subs", "srt",
		"-o", filepath.Join(destDir, videoID),
	}
	args = append(args, s.cookieArgs()...)
	args = append(args, url)

	if _, err := s.run(ctx, args...); err != nil {
		// Missing captions surface as tool errors; treat them as absence.
		return "", nil
	}

	matches, err := filepath.Glob(filepath.Join(destDir, videoID+"*.srt"))
	if err != nil || len(matches) == 0 {
		return "", nil
	}
	return matches[0], nil
}

// DownloadAudio extracts the audio track into destDir and returns the file
// path.
func (s *Service) DownloadAudio(ctx context.Context, url, videoID, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "fetch", "yt-dlp", "ensure temp dir", err)
	}

	output := filepath.Join(destDir, videoID+"."+s.audioFormat)
	args := []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", s.audioFormat,
		"-o", filepath.Join(destDir, videoID+".%(ext)s"),
	}
	args = append(args, s.cookieArgs()...)
	args = append(args, url)

	if _, err := s.run(ctx, args...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", "download audio", err)
	}
	if _, err := os.Stat(output); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", fmt.Sprintf("expected audio file %s", output), err)
	}
	return output, nil
}

type playlistPayload struct {
	Entries []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"entries"`
}

// PlaylistItems enumerates the video URLs of a playlist in playlist order.
func (s *Service) PlaylistItems(ctx context.Context, url string) ([]string, error) {
	args := append([]string{"--flat-playlist", "-J", "--no-warnings"}, s.cookieArgs()...)
	args = append(args, url)
	out, err := s.run(ctx, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", "list playlist", err)
	}

	var payload playlistPayload
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", "parse playlist", err)
	}

	urls := make([]string, 0, len(payload.Entries))
	for _, entry := range payload.Entries {
		switch {
		case entry.URL != "":
			urls = append(urls, entry.URL)
		case entry.ID != "":
			urls = append(urls, "https://www.youtube.com/watch?v="+entry.ID)
		}
	}
	return urls, nil
}
