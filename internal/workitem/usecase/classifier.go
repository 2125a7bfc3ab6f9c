package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"workhub-backend/internal/workitem/domain"
	"workhub-backend/pkg/ai"
	"workhub-backend/pkg/metrics"

	"go.uber.org/zap"
)

// Classifier judges whether an email is work related and how urgent it is
type Classifier interface {
	Classify(ctx context.Context, subject, sender, snippet string) domain.Classification
}

type aiClassifier struct {
	generator ai.TextGenerator
	logger    *zap.Logger
}

// NewClassifier wraps a text generator. A nil generator always yields the
// fallback judgment.
func NewClassifier(generator ai.TextGenerator, logger *zap.Logger) Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &aiClassifier{
		generator: generator,
		logger:    logger.Named("classifier"),
	}
}

const classifyPrompt = `You triage a professional's inbox.
Decide whether the email below is work related and how urgent it is.

Respond with ONLY a JSON object, no markdown, no extra text:
{"isWork": true|false, "priority": "high"|"medium"|"low", "reason": "<short reason>"}

Rules:
- Newsletters, promotions, discounts and social notifications are not work.
- "high" is reserved for deadlines, incidents and direct requests from people.

From: %s
Subject: %s
Snippet: %s`

func (c *aiClassifier) Classify(ctx context.Context, subject, sender, snippet string) domain.Classification {
	if c.generator == nil {
		metrics.IncrementClassifierFallback("no_generator")
		return domain.FallbackClassification
	}

	prompt := fmt.Sprintf(classifyPrompt, sender, subject, snippet)
	text, err := c.generator.GenerateText(ctx, prompt)
	if err != nil {
		c.logger.Warn("generation failed, using fallback", zap.String("subject", subject), zap.Error(err))
		metrics.IncrementClassifierFallback("generation_error")
		return domain.FallbackClassification
	}

	result, ok := ParseClassification(text)
	if !ok {
		c.logger.Warn("unparsable classification, using fallback", zap.String("subject", subject), zap.String("response", text))
		metrics.IncrementClassifierFallback("unparsable")
		return domain.FallbackClassification
	}
	return result
}

// ParseClassification decodes the first balanced JSON object in text.
// ok is false when no object is found or it does not decode.
func ParseClassification(text string) (domain.Classification, bool) {
	raw, found := extractJSONObject(text)
	if !found {
		return domain.Classification{}, false
	}

	var parsed struct {
		IsWork   *bool  `json:"isWork"`
		Priority string `json:"priority"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return domain.Classification{}, false
	}
	if parsed.IsWork == nil {
		return domain.Classification{}, false
	}

	return domain.Classification{
		IsWork:   *parsed.IsWork,
		Priority: domain.ParsePriority(strings.ToLower(strings.TrimSpace(parsed.Priority))),
		Reason:   parsed.Reason,
	}, true
}

// extractJSONObject returns the first balanced {...} substring, ignoring
// braces inside JSON strings.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
