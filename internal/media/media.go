// Package media defines the structs passed between pipeline stages. Every
// field consumed downstream is statically known at construction instead of
// traveling through loosely shaped maps.
package media

import (
	"time"

	"scribe/internal/captions"
)

// VideoMetadata describes one remote video.
type VideoMetadata struct {
	ID           string
	Title        string
	Duration     int // seconds
	Uploader     string
	URL          string
	HasSubtitles bool
}

// FetchResult is the acquire-stage output for a remote video. Exactly one of
// CaptionsPath and AudioPath is set: existing captions are preferred over
// downloading audio.
type FetchResult struct {
	Metadata     VideoMetadata
	CaptionsPath string
	AudioPath    string
}

// Episode is one entry of a podcast feed.
type Episode struct {
	Index     int
	Title     string
	AudioURL  string
	Duration  int // seconds
	Published time.Time
}

// Show is a resolved podcast feed with its episodes, newest first as listed
// by the feed.
type Show struct {
	ID       string
	Title    string
	FeedURL  string
	Episodes []Episode
}

// Transcription is the speech-to-text output for one audio file.
type Transcription struct {
	Text     string
	Language string
	Segments []captions.Segment
}
