package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/light11014/Moodmate-Backend/internal/ai"
	"github.com/light11014/Moodmate-Backend/internal/metrics"
	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/store"
)

// DefaultMaxPeriodDays caps the span of a single period analysis.
const DefaultMaxPeriodDays = 366

// AnalysisOptions tunes AnalysisService. Zero values pick defaults.
type AnalysisOptions struct {
	AITimeout     time.Duration
	Location      *time.Location
	MaxPeriodDays int
}

func (o AnalysisOptions) withDefaults() AnalysisOptions {
	if o.AITimeout <= 0 {
		o.AITimeout = 30 * time.Second
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.MaxPeriodDays <= 0 {
		o.MaxPeriodDays = DefaultMaxPeriodDays
	}
	return o
}

// AnalysisService builds composite reports from stored feedback summaries.
type AnalysisService struct {
	store    store.Store
	analyzer ai.Analyzer
	log      zerolog.Logger
	opts     AnalysisOptions
}

func NewAnalysisService(s store.Store, analyzer ai.Analyzer, log zerolog.Logger, opts AnalysisOptions) *AnalysisService {
	return &AnalysisService{store: s, analyzer: analyzer, log: log, opts: opts.withDefaults()}
}

// validateRange rejects zero dates, inverted ranges and, when maxDays > 0,
// ranges longer than maxDays.
func validateRange(start, end strfmt.Date, maxDays int) error {
	if time.Time(start).IsZero() || time.Time(end).IsZero() {
		return model.NewValidationError("startDate and endDate are required")
	}
	if model.DateBefore(end, start) {
		return model.NewValidationError("startDate must not be after endDate")
	}
	if maxDays > 0 && model.DaySpan(start, end) > maxDays {
		return model.NewValidationError(fmt.Sprintf("range exceeds %d days", maxDays))
	}
	return nil
}

// combineSummaries joins the non-nil summaries with a blank line, in input order.
func combineSummaries(fbs []*model.Feedback) string {
	parts := make([]string, 0, len(fbs))
	for _, fb := range fbs {
		if fb.Summary != nil {
			parts = append(parts, *fb.Summary)
		}
	}
	return strings.Join(parts, "\n\n")
}

// GeneratePeriodAnalysis runs the four period analyses over the user's
// feedback summaries in [start, end]. The first failing call cancels the
// others and no partial report is returned.
func (s *AnalysisService) GeneratePeriodAnalysis(ctx context.Context, userID string, start, end strfmt.Date) (report *model.PeriodReport, err error) {
	defer func() { metrics.PeriodAnalyses.WithLabelValues(outcome(err)).Inc() }()

	if err := validateRange(start, end, s.opts.MaxPeriodDays); err != nil {
		return nil, err
	}
	from, to := model.DayBounds(start, end, s.opts.Location)
	fbs, err := s.store.Feedbacks().ListByUserInRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	if len(fbs) == 0 {
		return nil, model.NewNotFoundError("no diary data in range")
	}
	combined := combineSummaries(fbs)
	if strings.TrimSpace(combined) == "" {
		return nil, model.NewValidationError("no summary data")
	}

	report = &model.PeriodReport{StartDate: start, EndDate: end, FeedbackCount: len(fbs)}
	g, gctx := errgroup.WithContext(ctx)
	call := func(dst *string, fn func(context.Context) (string, error)) {
		g.Go(func() error {
			out, err := withAITimeout(gctx, s.opts.AITimeout, fn)
			if err != nil {
				return err
			}
			*dst = out
			return nil
		})
	}
	call(&report.PeriodSummary, func(c context.Context) (string, error) {
		return s.analyzer.GeneratePeriodSummary(c, combined, start, end)
	})
	call(&report.EmotionalPattern, func(c context.Context) (string, error) {
		return s.analyzer.AnalyzeEmotionalPattern(c, combined)
	})
	call(&report.GrowthPattern, func(c context.Context) (string, error) {
		return s.analyzer.AnalyzeGrowthPattern(c, combined)
	})
	call(&report.Recommendations, func(c context.Context) (string, error) {
		return s.analyzer.GenerateRecommendations(c, combined)
	})
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).
			Str("user_id", userID).
			Int("feedback_count", len(fbs)).
			Str("start_date", start.String()).
			Str("end_date", end.String()).
			Msg("period analysis failed")
		return nil, model.NewAnalysisFailedError(userID, len(fbs), err)
	}

	s.log.Info().Str("user_id", userID).Int("feedback_count", len(fbs)).Msg("period analysis generated")
	return report, nil
}
