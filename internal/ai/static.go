package ai

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-openapi/strfmt"

	"github.com/light11014/Moodmate-Backend/internal/model"
)

// Static is an offline Analyzer that derives deterministic text from its input.
// It backs local development and tests when no provider key is configured.
type Static struct{}

// NewStatic returns the offline analyzer.
func NewStatic() Static { return Static{} }

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func (Static) GenerateSummary(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "Summary: " + excerpt(content, 80), nil
}

func (Static) GenerateFeedback(ctx context.Context, content string, style model.FeedbackStyle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s] Thank you for sharing: %s", style, excerpt(content, 60)), nil
}

func (Static) GeneratePeriodSummary(ctx context.Context, combined string, start, end strfmt.Date) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	entries := len(strings.Split(combined, "\n\n"))
	return fmt.Sprintf("Between %s and %s you wrote %d reflections.", start.String(), end.String(), entries), nil
}

func (Static) AnalyzeEmotionalPattern(ctx context.Context, combined string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "Emotional pattern: " + excerpt(combined, 60), nil
}

func (Static) AnalyzeGrowthPattern(ctx context.Context, combined string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "Growth pattern: " + excerpt(combined, 60), nil
}

func (Static) GenerateRecommendations(ctx context.Context, combined string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "Keep writing daily and note one thing you are grateful for.", nil
}
