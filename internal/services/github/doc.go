// Package github publishes report files to a GitHub repository through the
// contents API. Publishing is optional; an unconfigured publisher reports
// itself as disabled so callers can skip it.
package github
