package ai

import (
	"context"
	"fmt"

	"workhub-backend/pkg/gemini"

	"go.uber.org/zap"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Gemini config
	GeminiAPIKey string
	GeminiModel  string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewTextGenerator creates a TextGenerator based on the config.
// Switch AI provider by changing config.Provider.
func NewTextGenerator(ctx context.Context, cfg Config, logger *zap.Logger) (TextGenerator, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return gemini.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)

	case ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	case ProviderAuto, "":
		ollama := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)
		if cfg.GeminiAPIKey == "" {
			return ollama, nil
		}
		geminiSvc, err := gemini.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return NewFallbackService(geminiSvc, ollama, logger), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
