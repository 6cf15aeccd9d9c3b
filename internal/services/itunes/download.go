package itunes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"scribe/internal/services"
	"scribe/internal/textutil"
)

var audioExtensions = map[string]struct{}{
	"mp3": {},
	"m4a": {},
	"mp4": {},
	"wav": {},
}

// DownloadAudio streams episode audio into destDir and returns the file
// path. The extension is inferred from the URL and corrected from the
// response content type. An already-downloaded file is reused.
func (s *Service) DownloadAudio(ctx context.Context, audioURL, baseName, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "fetch", "itunes", "ensure temp dir", err)
	}

	safeName := textutil.SanitizeFileName(baseName)
	if safeName == "" {
		safeName = "episode"
	}

	extension := extensionFromURL(audioURL)
	output := filepath.Join(destDir, safeName+"."+extension)
	if _, err := os.Stat(output); err == nil {
		return output, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "fetch", "itunes", "build audio request", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "fetch", "itunes", "download audio", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrExternalTool, "fetch", "itunes",
			fmt.Sprintf("audio download returned status %d", resp.StatusCode), nil)
	}

	if ext := extensionFromContentType(resp.Header.Get("Content-Type")); ext != "" {
		extension = ext
		output = filepath.Join(destDir, safeName+"."+extension)
	}

	file, err := os.Create(output)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "fetch", "itunes", "create audio file", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = os.Remove(output)
		return "", services.Wrap(services.ErrExternalTool, "fetch", "itunes", "stream audio", err)
	}
	return output, nil
}

func extensionFromURL(audioURL string) string {
	parsed, err := url.Parse(audioURL)
	if err != nil {
		return "mp3"
	}
	ext := strings.TrimPrefix(path.Ext(parsed.Path), ".")
	if _, ok := audioExtensions[ext]; ok {
		return ext
	}
	return "mp3"
}

func extensionFromContentType(contentType string) string {
	switch {
	case strings.Contains(contentType, "audio/mpeg"), strings.Contains(contentType, "audio/mp3"):
		return "mp3"
	case strings.Contains(contentType, "audio/mp4"), strings.Contains(contentType, "audio/m4a"):
		return "m4a"
	default:
		return ""
	}
}
