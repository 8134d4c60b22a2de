package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/light11014/Moodmate-Backend/internal/ai"
	"github.com/light11014/Moodmate-Backend/internal/ai/gemini"
	"github.com/light11014/Moodmate-Backend/internal/config"
)

// NewAnalyzer returns the AI provider selected by cfg.AIProvider, instrumented
// with call metrics.
func NewAnalyzer(cfg *config.Config, log zerolog.Logger) (*ai.Instrumented, error) {
	switch cfg.AIProvider {
	case "static":
		log.Warn().Msg("using static analyzer; feedback text is not model generated")
		return ai.Instrument(ai.NewStatic()), nil
	case "gemini":
		c, err := gemini.New(gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			Timeout:    cfg.AITimeout(),
			MaxRetries: cfg.AIMaxRetries,
		}, log)
		if err != nil {
			return nil, err
		}
		return ai.Instrument(c), nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER: %s", cfg.AIProvider)
	}
}
