package domain

// Tone values accepted by the content generator.
var Tones = []string{"professional", "casual", "friendly", "urgent"}

// DefaultSummaryWords is the summary length used when none is given.
const DefaultSummaryWords = 100

// ValidTone reports whether tone is one of Tones.
func ValidTone(tone string) bool {
	for _, t := range Tones {
		if t == tone {
			return true
		}
	}
	return false
}
