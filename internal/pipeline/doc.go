// Package pipeline orchestrates media processing end to end: acquire the
// source, obtain a transcript (published captions preferred, local
// transcription otherwise), summarize, write artifacts, and optionally
// publish the report. Every processing attempt is tracked as a run in the
// ledger; collections isolate member failures so one bad item never stops
// the rest.
package pipeline
