// Package ytdlp drives the yt-dlp binary to inspect remote videos, download
// existing captions, enumerate playlists, and extract audio for transcription.
package ytdlp
