package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

const (
	FactCheckUnverifiable = "Unable to verify this claim automatically."
	FactCheckUnavailable  = "Fact-checking service unavailable."
)

// stripFences removes a surrounding markdown code fence, which models add
// despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodeObject unmarshals the first JSON object found in raw.
func decodeObject(raw string, v any) error {
	s := stripFences(raw)
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMalformedUpstreamResponse, err)
	}
	return nil
}

type sentimentJSON struct {
	Score           *float64 `json:"score"`
	CalmWords       []string `json:"calm_words"`
	AggressiveWords []string `json:"aggressive_words"`
}

// ParseSentiment decodes a sentiment analysis. Unusable output falls back to
// the keyword heuristic over text.
func ParseSentiment(raw, text string) domain.Parsed[domain.Sentiment] {
	var v sentimentJSON
	if err := decodeObject(raw, &v); err != nil {
		return domain.FallbackValue(domain.KeywordSentiment(text), err.Error())
	}
	if v.Score == nil || !domain.ValidUnit(*v.Score) {
		return domain.FallbackValue(domain.KeywordSentiment(text), "score missing or outside [0,1]")
	}

	s := domain.Sentiment{Score: *v.Score, CalmWords: v.CalmWords, AggressiveWords: v.AggressiveWords}
	if s.CalmWords == nil {
		s.CalmWords = []string{}
	}
	if s.AggressiveWords == nil {
		s.AggressiveWords = []string{}
	}
	return domain.ParsedValue(s)
}

// SentimentFallback is used when the analysis could not be generated at all.
func SentimentFallback(text string, cause error) domain.Parsed[domain.Sentiment] {
	return domain.FallbackValue(domain.KeywordSentiment(text), cause.Error())
}

type factCheckJSON struct {
	Verified    *bool                    `json:"verified"`
	Confidence  *float64                 `json:"confidence"`
	Explanation string                   `json:"explanation"`
	Sources     []domain.FactCheckSource `json:"sources"`
}

// ParseFactCheck decodes a fact-check verdict, falling back to an
// unverified result when the output is unusable.
func ParseFactCheck(raw string) domain.Parsed[domain.FactCheck] {
	var v factCheckJSON
	if err := decodeObject(raw, &v); err != nil {
		return domain.FallbackValue(unverifiable(), err.Error())
	}
	if v.Verified == nil || v.Confidence == nil || !domain.ValidUnit(*v.Confidence) {
		return domain.FallbackValue(unverifiable(), "verdict fields missing or confidence outside [0,1]")
	}

	fc := domain.FactCheck{
		Verified:    *v.Verified,
		Confidence:  *v.Confidence,
		Explanation: v.Explanation,
		Sources:     v.Sources,
	}
	if fc.Sources == nil {
		fc.Sources = []domain.FactCheckSource{}
	}
	return domain.ParsedValue(fc)
}

// FactCheckFallback is used when the verdict could not be generated at all.
func FactCheckFallback(cause error) domain.Parsed[domain.FactCheck] {
	reason := "generation failed"
	if cause != nil {
		reason = cause.Error()
	}
	return domain.FallbackValue(domain.FactCheck{
		Verified:    false,
		Confidence:  0,
		Explanation: FactCheckUnavailable,
		Sources:     []domain.FactCheckSource{},
	}, reason)
}

func unverifiable() domain.FactCheck {
	return domain.FactCheck{
		Verified:    false,
		Confidence:  0.5,
		Explanation: FactCheckUnverifiable,
		Sources:     []domain.FactCheckSource{},
	}
}
