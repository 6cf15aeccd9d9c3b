// Package summarize wraps the OpenRouter chat completion API to turn
// transcripts into markdown summaries. Requests are retried with exponential
// backoff on rate limits, server errors, and timeouts.
package summarize
