package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/socialpulse/monitor-bot/internal/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiClassifier scores comments through the Gemini generateContent
// API with a deterministic keyword fallback for any failure.
type GeminiClassifier struct {
	apiKey     string
	model      string
	baseURL    string
	client     *resty.Client
	batchSize  int
	batchPause time.Duration
}

// Ensure GeminiClassifier implements Classifier
var _ Classifier = (*GeminiClassifier)(nil)

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type analysisPayload struct {
	Sentiment      string   `json:"sentiment"`
	HateSpeechRisk string   `json:"hateSpeechRisk"`
	Confidence     float64  `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	KeyPhrases     []string `json:"keyPhrases"`
}

// NewGeminiClassifier creates a Gemini-backed classifier. An empty API
// key disables remote calls entirely; every comment then goes through
// the keyword fallback.
func NewGeminiClassifier(apiKey, model string, batchSize int, batchPause time.Duration) *GeminiClassifier {
	if model == "" {
		model = "gemini-pro"
	}
	if batchSize <= 0 {
		batchSize = 5
	}
	return &GeminiClassifier{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		client:     resty.New().SetTimeout(30 * time.Second),
		batchSize:  batchSize,
		batchPause: batchPause,
	}
}

// IsEnabled reports whether remote classification is configured.
func (g *GeminiClassifier) IsEnabled() bool {
	return g.apiKey != ""
}

// Classify scores one comment. It never returns an error; on any
// transport, status or parse failure the keyword fallback result is
// returned instead.
func (g *GeminiClassifier) Classify(ctx context.Context, input Input) models.Classification {
	if !g.IsEnabled() {
		logrus.Debug("Gemini classifier disabled - missing API key, using fallback")
		return fallbackClassification(input.Content)
	}

	result, err := g.classifyRemote(ctx, input)
	if err != nil {
		logrus.Errorf("Gemini classification failed, using fallback: %v", err)
		return fallbackClassification(input.Content)
	}

	return result
}

func (g *GeminiClassifier) classifyRemote(ctx context.Context, input Input) (models.Classification, error) {
	request := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: buildAnalysisPrompt(input)}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.1,
			TopK:            1,
			TopP:            1,
			MaxOutputTokens: 1024,
		},
	}

	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, g.model)

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", g.apiKey).
		SetBody(request).
		Post(url)

	if err != nil {
		return models.Classification{}, fmt.Errorf("gemini request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return models.Classification{}, fmt.Errorf("gemini API returned status %d", resp.StatusCode())
	}

	var parsed geminiResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return models.Classification{}, fmt.Errorf("failed to parse gemini response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return models.Classification{}, fmt.Errorf("gemini response contained no candidates")
	}

	return parseAnalysisText(parsed.Candidates[0].Content.Parts[0].Text)
}

// parseAnalysisText extracts the first balanced JSON object from the
// model's free-text answer and validates its fields.
func parseAnalysisText(text string) (models.Classification, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return models.Classification{}, fmt.Errorf("no JSON object found in response")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.Classification{}, fmt.Errorf("failed to decode analysis JSON: %w", err)
	}

	sentiment, err := normalizeSentiment(payload.Sentiment)
	if err != nil {
		return models.Classification{}, err
	}

	risk, err := normalizeRisk(payload.HateSpeechRisk)
	if err != nil {
		return models.Classification{}, err
	}

	confidence := payload.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.5
	}

	reasoning := payload.Reasoning
	if reasoning == "" {
		reasoning = "Analysis completed"
	}

	return models.Classification{
		Sentiment:      sentiment,
		HateSpeechRisk: risk,
		Confidence:     confidence,
		Reasoning:      reasoning,
		KeyPhrases:     payload.KeyPhrases,
	}, nil
}

// extractJSON returns the first balanced {...} object in text.
func extractJSON(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	return "", false
}

func normalizeSentiment(value string) (models.Sentiment, error) {
	switch models.Sentiment(value) {
	case models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
		return models.Sentiment(value), nil
	case "":
		return models.SentimentNeutral, nil
	default:
		return "", fmt.Errorf("invalid sentiment value %q", value)
	}
}

func normalizeRisk(value string) (models.RiskLevel, error) {
	switch models.RiskLevel(value) {
	case models.RiskNone, models.RiskLow, models.RiskMedium, models.RiskHigh:
		return models.RiskLevel(value), nil
	case "":
		return models.RiskNone, nil
	default:
		return "", fmt.Errorf("invalid hate speech risk value %q", value)
	}
}

func buildAnalysisPrompt(input Input) string {
	languageInstruction := "This comment is in English language."
	if input.Language == models.LanguageThai {
		languageInstruction = "This comment is in Thai language. Please analyze accordingly."
	}

	return fmt.Sprintf(`Analyze the following social media comment for sentiment and hate speech risk.

%s

Platform: %s
Author: %s
Comment: %q

Please provide analysis in the following JSON format:
{
  "sentiment": "positive|neutral|negative",
  "hateSpeechRisk": "none|low|medium|high",
  "confidence": 0.0-1.0,
  "reasoning": "Brief explanation of the analysis",
  "keyPhrases": ["phrase1", "phrase2", "phrase3"]
}

Sentiment Guidelines:
- Positive: Expresses satisfaction, praise, or positive emotions
- Neutral: Factual, informational, or balanced tone
- Negative: Expresses dissatisfaction, criticism, or negative emotions

Hate Speech Risk Guidelines:
- None: No offensive language or targeting
- Low: Mild criticism or frustration without targeting groups
- Medium: Strong negative language, personal attacks, or mild discriminatory language
- High: Clear hate speech, threats, severe discriminatory language, or incitement to violence

Consider cultural context for Thai language comments, including local expressions and cultural nuances.`,
		languageInstruction, input.Platform, input.Author, input.Content)
}

// ClassifyBatch scores comments in order, dispatching groups of
// batchSize concurrently with a pause between groups to respect the
// API's rate limits. One failing comment degrades to its fallback
// result without affecting the rest of the batch.
func (g *GeminiClassifier) ClassifyBatch(ctx context.Context, inputs []Input) []models.Classification {
	results := make([]models.Classification, len(inputs))

	for start := 0; start < len(inputs); start += g.batchSize {
		end := start + g.batchSize
		if end > len(inputs) {
			end = len(inputs)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = g.Classify(ctx, inputs[idx])
			}(i)
		}
		wg.Wait()

		if end < len(inputs) && g.batchPause > 0 {
			select {
			case <-ctx.Done():
				// Remaining comments still get a usable result.
				for i := end; i < len(inputs); i++ {
					results[i] = fallbackClassification(inputs[i].Content)
				}
				return results
			case <-time.After(g.batchPause):
			}
		}
	}

	return results
}
