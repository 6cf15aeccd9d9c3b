package pipeline

import "unicode"

// DetectLanguage classifies transcript text as Chinese when the share of Han
// runes among all letters reaches hanRatio, and falls back otherwise. Text
// with no letters at all gets the fallback.
func DetectLanguage(text string, hanRatio float64, fallback string) string {
	if fallback == "" {
		fallback = "en"
	}
	if hanRatio <= 0 || hanRatio > 1 {
		hanRatio = 0.3
	}

	var letters, han int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Han, r) {
			han++
		}
	}
	if letters == 0 {
		return fallback
	}
	if float64(han)/float64(letters) >= hanRatio {
		return "zh"
	}
	return fallback
}
