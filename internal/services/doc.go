// Package services defines shared error classification and context helpers
// for the external collaborators scribe drives: the yt-dlp fetcher, the
// iTunes/RSS podcast resolver, the whisper transcriber, the summarization
// API client, and the GitHub publisher.
package services
