package textutil

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration in seconds as HH:MM:SS, or MM:SS when
// the duration is under an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// ReportFileName builds the timestamped report filename for a media title:
// YYYYMMDD_HHMM_<title>.md. Titles are sanitized and capped at 100 runes.
func ReportFileName(title string, now time.Time) string {
	clean := SanitizeFileNameMax(title, 100)
	if clean == "" {
		clean = "untitled"
	}
	return fmt.Sprintf("%s_%s.md", now.Format("20060102_1504"), clean)
}

// SummaryHeader builds the markdown preamble written above generated
// summaries.
func SummaryHeader(title, duration string, now time.Time) string {
	return fmt.Sprintf("# %s\n\n**Duration**: %s  \n**Generated**: %s\n\n---\n\n",
		title, duration, now.Format("2006-01-02 15:04:05"))
}
