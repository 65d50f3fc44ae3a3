// Package language buckets comment text into the two languages the
// classifier prompts for.
package language

import "github.com/socialpulse/monitor-bot/internal/models"

// Detect returns Thai when the text contains any rune in the Thai
// Unicode block (U+0E00-U+0E7F), English otherwise.
func Detect(text string) models.Language {
	for _, r := range text {
		if r >= 0x0E00 && r <= 0x0E7F {
			return models.LanguageThai
		}
	}
	return models.LanguageEnglish
}
