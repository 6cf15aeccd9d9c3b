// Package captions reads and writes SRT subtitle files and extracts their
// plain text for summarization.
package captions

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Segment is one timed caption cue.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// FormatTimestamp renders a position in seconds as an SRT timestamp
// (HH:MM:SS,mmm).
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	millis := int((seconds - float64(total)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// WriteSRT renders segments as SRT cue blocks.
func WriteSRT(segments []Segment) string {
	var b strings.Builder
	for i, segment := range segments {
		b.WriteString(fmt.Sprintf("%d\n", i+1))
		b.WriteString(FormatTimestamp(segment.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(segment.End))
		b.WriteByte('\n')
		b.WriteString(strings.TrimSpace(segment.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// WriteSRTFile writes segments to path in SRT format.
func WriteSRTFile(path string, segments []Segment) error {
	if err := os.WriteFile(path, []byte(WriteSRT(segments)), 0o644); err != nil {
		return fmt.Errorf("write srt file: %w", err)
	}
	return nil
}

// ExtractText pulls the spoken text out of SRT content, dropping sequence
// numbers, timing lines, and blank lines.
func ExtractText(srt string) string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(srt))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || isDigits(line) || strings.Contains(line, "-->") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}

// ExtractTextFile reads an SRT file and returns its plain text.
func ExtractTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read srt file: %w", err)
	}
	return ExtractText(string(data)), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
