// Package textutil holds small text helpers shared across the pipeline:
// filename sanitizing, duration formatting, and markdown artifact headers.
package textutil
