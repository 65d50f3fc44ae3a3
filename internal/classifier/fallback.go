package classifier

import (
	"strings"

	"github.com/socialpulse/monitor-bot/internal/models"
)

// Keyword lists cover both supported languages so the fallback stays
// useful for Thai comments.
var (
	negativeKeywords = []string{"hate", "terrible", "awful", "worst", "stupid", "idiot", "แย่", "เกลียด", "โง่"}
	positiveKeywords = []string{"love", "great", "awesome", "excellent", "good", "ดี", "เยี่ยม", "รัก"}
)

// fallbackClassification is the deterministic keyword heuristic used
// whenever the remote model is unavailable or unparseable.
func fallbackClassification(content string) models.Classification {
	lowered := strings.ToLower(content)

	hasNegative := containsAny(lowered, negativeKeywords)
	hasPositive := containsAny(lowered, positiveKeywords)

	sentiment := models.SentimentNeutral
	risk := models.RiskNone

	if hasNegative && !hasPositive {
		sentiment = models.SentimentNegative
		risk = models.RiskLow
	} else if hasPositive && !hasNegative {
		sentiment = models.SentimentPositive
	}

	return models.Classification{
		Sentiment:      sentiment,
		HateSpeechRisk: risk,
		Confidence:     0.6,
		Reasoning:      "Fallback keyword-based analysis",
		KeyPhrases:     []string{},
		Fallback:       true,
	}
}

func containsAny(content string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(content, keyword) {
			return true
		}
	}
	return false
}
