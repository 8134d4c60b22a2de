// Package ai defines the text-analysis collaborator used to summarize diaries,
// write feedback and analyze periods.
package ai

import (
	"context"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/light11014/Moodmate-Backend/internal/metrics"
	"github.com/light11014/Moodmate-Backend/internal/model"
)

// Analyzer produces free text from diary content or combined summaries.
type Analyzer interface {
	GenerateSummary(ctx context.Context, content string) (string, error)
	GenerateFeedback(ctx context.Context, content string, style model.FeedbackStyle) (string, error)
	GeneratePeriodSummary(ctx context.Context, combined string, start, end strfmt.Date) (string, error)
	AnalyzeEmotionalPattern(ctx context.Context, combined string) (string, error)
	AnalyzeGrowthPattern(ctx context.Context, combined string) (string, error)
	GenerateRecommendations(ctx context.Context, combined string) (string, error)
}

// Instrumented records call latency and outcome for every Analyzer call.
type Instrumented struct {
	next Analyzer
}

// Instrument wraps next with Prometheus timing.
func Instrument(next Analyzer) *Instrumented { return &Instrumented{next: next} }

func observe(call string, start time.Time, err error) {
	metrics.AICallDuration.WithLabelValues(call, metrics.Outcome(err)).Observe(time.Since(start).Seconds())
}

func (a *Instrumented) GenerateSummary(ctx context.Context, content string) (out string, err error) {
	defer func(start time.Time) { observe("summary", start, err) }(time.Now())
	return a.next.GenerateSummary(ctx, content)
}

func (a *Instrumented) GenerateFeedback(ctx context.Context, content string, style model.FeedbackStyle) (out string, err error) {
	defer func(start time.Time) { observe("feedback", start, err) }(time.Now())
	return a.next.GenerateFeedback(ctx, content, style)
}

func (a *Instrumented) GeneratePeriodSummary(ctx context.Context, combined string, start, end strfmt.Date) (out string, err error) {
	defer func(t time.Time) { observe("period_summary", t, err) }(time.Now())
	return a.next.GeneratePeriodSummary(ctx, combined, start, end)
}

func (a *Instrumented) AnalyzeEmotionalPattern(ctx context.Context, combined string) (out string, err error) {
	defer func(start time.Time) { observe("emotional_pattern", start, err) }(time.Now())
	return a.next.AnalyzeEmotionalPattern(ctx, combined)
}

func (a *Instrumented) AnalyzeGrowthPattern(ctx context.Context, combined string) (out string, err error) {
	defer func(start time.Time) { observe("growth_pattern", start, err) }(time.Now())
	return a.next.AnalyzeGrowthPattern(ctx, combined)
}

func (a *Instrumented) GenerateRecommendations(ctx context.Context, combined string) (out string, err error) {
	defer func(start time.Time) { observe("recommendations", start, err) }(time.Now())
	return a.next.GenerateRecommendations(ctx, combined)
}

// HealthPing forwards to the wrapped analyzer when it supports health checks.
func (a *Instrumented) HealthPing(ctx context.Context) error {
	if p, ok := a.next.(interface{ HealthPing(context.Context) error }); ok {
		return p.HealthPing(ctx)
	}
	return nil
}
