// Package whisper runs the whisper binary to transcribe audio files and
// parses its JSON output into timed segments.
package whisper
