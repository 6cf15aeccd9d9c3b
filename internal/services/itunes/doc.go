// Package itunes resolves podcast directory URLs to RSS feeds via the
// iTunes lookup API, enumerates episodes with playable audio, and downloads
// episode audio for transcription.
package itunes
