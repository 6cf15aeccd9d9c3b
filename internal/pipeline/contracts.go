package pipeline

import (
	"context"

	"scribe/internal/media"
)

// VideoFetcher retrieves remote video metadata, captions, and audio.
type VideoFetcher interface {
	VideoInfo(ctx context.Context, url string) (media.VideoMetadata, error)
	DownloadSubtitles(ctx context.Context, url, videoID, destDir string) (string, error)
	DownloadAudio(ctx context.Context, url, videoID, destDir string) (string, error)
	PlaylistItems(ctx context.Context, url string) ([]string, error)
}

// PodcastFetcher resolves podcast directory URLs to feeds and downloads
// episode audio.
type PodcastFetcher interface {
	Resolve(ctx context.Context, rawURL string) (media.Show, error)
	DownloadAudio(ctx context.Context, audioURL, baseName, destDir string) (string, error)
}

// Transcriber turns an audio file into text with timed segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) (media.Transcription, error)
}

// Summarizer produces a markdown summary for a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript, style, language string) (string, error)
}

// Publisher uploads a report artifact and returns its remote URL. A disabled
// publisher returns an empty URL without error.
type Publisher interface {
	Enabled() bool
	Publish(ctx context.Context, filePath string) (string, error)
}
