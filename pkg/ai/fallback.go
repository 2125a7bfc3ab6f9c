package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"
)

// FallbackService routes generation across two providers:
// Gemini first, Ollama when Gemini fails, and Gemini once more when
// Ollama cannot be reached but Gemini only hit its quota.
type FallbackService struct {
	gemini TextGenerator
	ollama TextGenerator
	logger *zap.Logger
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(gemini, ollama TextGenerator, logger *zap.Logger) *FallbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackService{
		gemini: gemini,
		ollama: ollama,
		logger: logger,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"resource_exhausted",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// GenerateText implements TextGenerator
func (f *FallbackService) GenerateText(ctx context.Context, prompt string) (string, error) {
	var geminiErr error
	if f.gemini != nil {
		result, err := f.gemini.GenerateText(ctx, prompt)
		if err == nil {
			return result, nil
		}
		geminiErr = err
		f.logger.Warn("gemini generation failed, falling back to ollama",
			zap.Bool("quota", isQuotaError(err)),
			zap.Error(err),
		)
	}

	if f.ollama != nil {
		result, err := f.ollama.GenerateText(ctx, prompt)
		if err == nil {
			return result, nil
		}

		if isConnectionError(err) && f.gemini != nil && isQuotaError(geminiErr) {
			f.logger.Warn("ollama unreachable, retrying gemini", zap.Error(err))
			return f.gemini.GenerateText(ctx, prompt)
		}

		return "", fmt.Errorf("ollama generation failed: %w", err)
	}

	if geminiErr != nil {
		return "", fmt.Errorf("gemini generation failed: %w", geminiErr)
	}
	return "", fmt.Errorf("no AI provider available")
}
