// Package classify assigns a source kind to one input line (URL or local
// path) using syntactic and filesystem checks only. No network access is
// performed; malformed input resolves to KindUnknown rather than erroring.
package classify

import (
	"net/url"
	"os"
	"strings"
)

// Kind is the classified category of an input line.
type Kind string

const (
	KindVideo    Kind = "video"
	KindPlaylist Kind = "playlist"
	KindPodcast  Kind = "podcast"
	KindFolder   Kind = "folder"
	KindUnknown  Kind = "unknown"
)

// Classify inspects a single input line and returns its kind. URLs are
// inspected first: podcast-hosting domains win over playlist markers, and
// anything else with a scheme is treated as a single video. Non-URLs are
// checked against the local filesystem for an existing directory.
func Classify(line string) Kind {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return KindUnknown
	}

	if parsed, err := url.Parse(trimmed); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		host := strings.ToLower(parsed.Hostname())
		if strings.Contains(host, "podcast") {
			return KindPodcast
		}
		if parsed.Query().Has("list") || strings.Contains(parsed.Path, "/playlist") {
			return KindPlaylist
		}
		return KindVideo
	}

	if info, err := os.Stat(trimmed); err == nil && info.IsDir() {
		return KindFolder
	}

	return KindUnknown
}
