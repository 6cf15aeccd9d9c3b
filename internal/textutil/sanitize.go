package textutil

import "strings"

// MaxFileNameLength bounds sanitized filenames so titles cannot overflow
// filesystem limits once extensions and directories are added.
const MaxFileNameLength = 200

// fileNameReplacer removes filesystem-unsafe characters from a filename.
var fileNameReplacer = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"\\", "",
	"|", "",
	"?", "",
	"*", "",
)

// SanitizeFileName strips filesystem-unsafe characters, collapses runs of
// whitespace to single spaces, and truncates to MaxFileNameLength runes.
func SanitizeFileName(name string) string {
	return SanitizeFileNameMax(name, MaxFileNameLength)
}

// SanitizeFileNameMax is SanitizeFileName with a caller-chosen length bound.
func SanitizeFileNameMax(name string, maxLength int) string {
	name = fileNameReplacer.Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	if maxLength > 0 {
		runes := []rune(name)
		if len(runes) > maxLength {
			name = strings.TrimSpace(string(runes[:maxLength]))
		}
	}
	return name
}
