package classify

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
}

var podcastIDPattern = regexp.MustCompile(`/id(\d+)`)

// VideoID extracts the stable video id from a watch URL. Returns false when
// the URL does not match a known pattern; callers fall back to the raw URL.
func VideoID(rawURL string) (string, bool) {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// PodcastID extracts the numeric show id from a podcast directory URL such
// as https://podcasts.apple.com/us/podcast/name/id1234567890.
func PodcastID(rawURL string) (string, bool) {
	if m := podcastIDPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1], true
	}
	return "", false
}

// EpisodeIdentifier builds the run identifier for one episode of a show:
// <podcastID>_ep<index>.
func EpisodeIdentifier(podcastID string, index int) string {
	return fmt.Sprintf("%s_ep%d", podcastID, index)
}

// FileIdentifier derives the run identifier for a local file from its base
// name with the extension removed.
func FileIdentifier(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
