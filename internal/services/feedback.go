package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"

	"github.com/light11014/Moodmate-Backend/internal/ai"
	"github.com/light11014/Moodmate-Backend/internal/auth"
	"github.com/light11014/Moodmate-Backend/internal/metrics"
	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/quota"
	"github.com/light11014/Moodmate-Backend/internal/store"
)

// DefaultDailyLimit is the number of feedback generations allowed per user per day.
const DefaultDailyLimit = 2

const historyExcerptRunes = 100

// FeedbackOptions tunes FeedbackService. Zero values pick defaults.
type FeedbackOptions struct {
	DailyLimit int
	AITimeout  time.Duration
	Location   *time.Location
	Now        func() time.Time
}

func (o FeedbackOptions) withDefaults() FeedbackOptions {
	if o.DailyLimit == 0 {
		o.DailyLimit = DefaultDailyLimit
	}
	if o.AITimeout <= 0 {
		o.AITimeout = 30 * time.Second
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// FeedbackService runs the feedback lifecycle: quota check, AI generation,
// one feedback per diary, and quota release on same-day deletion.
type FeedbackService struct {
	store    store.Store
	ledger   quota.Ledger
	analyzer ai.Analyzer
	log      zerolog.Logger
	opts     FeedbackOptions
}

func NewFeedbackService(s store.Store, ledger quota.Ledger, analyzer ai.Analyzer, log zerolog.Logger, opts FeedbackOptions) *FeedbackService {
	return &FeedbackService{store: s, ledger: ledger, analyzer: analyzer, log: log, opts: opts.withDefaults()}
}

// DailyLimit returns the configured per-day generation limit.
func (s *FeedbackService) DailyLimit() int { return s.opts.DailyLimit }

func (s *FeedbackService) today() strfmt.Date {
	return model.DateOf(s.opts.Now(), s.opts.Location)
}

// storeErr converts a store miss into a NotFoundError naming entity.
func storeErr(err error, entity string) error {
	if errors.Is(err, model.ErrNotFound) {
		return model.NewNotFoundError(entity)
	}
	return fmt.Errorf("%s: %w", entity, err)
}

// withAITimeout runs fn under the per-call AI deadline.
func withAITimeout(ctx context.Context, d time.Duration, fn func(context.Context) (string, error)) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(cctx)
}

// CreateFeedback generates and stores feedback for one of the user's diaries.
// A consumed quota slot is not returned if generation or persistence fails.
func (s *FeedbackService) CreateFeedback(ctx context.Context, userID, diaryID string, style model.FeedbackStyle) (fb *model.Feedback, err error) {
	defer func() { metrics.FeedbackOps.WithLabelValues("create", outcome(err)).Inc() }()

	style, err = model.ParseFeedbackStyle(string(style))
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return nil, storeErr(err, "user")
	}
	diary, err := s.store.Diaries().Get(ctx, diaryID)
	if err != nil {
		return nil, storeErr(err, "diary")
	}
	if err := auth.CheckOwnership(diary.UserID, userID, "create feedback for this diary"); err != nil {
		return nil, err
	}

	switch _, err := s.store.Feedbacks().GetByDiaryID(ctx, diaryID); {
	case err == nil:
		return nil, model.ErrDuplicateFeedback
	case !errors.Is(err, model.ErrNotFound):
		return nil, fmt.Errorf("check existing feedback: %w", err)
	}

	if _, err := s.ledger.TryConsume(ctx, userID, s.today(), s.opts.DailyLimit); err != nil {
		return nil, err
	}

	summary, err := withAITimeout(ctx, s.opts.AITimeout, func(c context.Context) (string, error) {
		return s.analyzer.GenerateSummary(c, diary.Content)
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("diary_id", diaryID).Msg("summary generation failed")
		return nil, model.NewDiaryAnalysisFailedError(userID, diaryID, err)
	}
	response, err := withAITimeout(ctx, s.opts.AITimeout, func(c context.Context) (string, error) {
		return s.analyzer.GenerateFeedback(c, diary.Content, style)
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("diary_id", diaryID).Msg("feedback generation failed")
		return nil, model.NewDiaryAnalysisFailedError(userID, diaryID, err)
	}

	fb, err = s.store.Feedbacks().Create(ctx, &model.Feedback{
		UserID:       userID,
		DiaryID:      diaryID,
		Summary:      &summary,
		Response:     response,
		Style:        style,
		CreationTime: s.opts.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateFeedback) {
			return nil, err
		}
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	s.log.Info().Str("user_id", userID).Str("diary_id", diaryID).Str("feedback_id", fb.FeedbackID).Msg("feedback created")
	return fb, nil
}

// GetFeedback returns the feedback attached to one of the user's diaries.
func (s *FeedbackService) GetFeedback(ctx context.Context, userID, diaryID string) (*model.Feedback, error) {
	diary, err := s.store.Diaries().Get(ctx, diaryID)
	if err != nil {
		return nil, storeErr(err, "diary")
	}
	if err := auth.CheckOwnership(diary.UserID, userID, "read feedback for this diary"); err != nil {
		return nil, err
	}
	fb, err := s.store.Feedbacks().GetByDiaryID(ctx, diaryID)
	if err != nil {
		return nil, storeErr(err, "feedback")
	}
	return fb, nil
}

// DeleteFeedback removes a diary's feedback. The quota slot is returned only
// when the feedback was created today; earlier days keep their count.
func (s *FeedbackService) DeleteFeedback(ctx context.Context, userID, diaryID string) (err error) {
	defer func() { metrics.FeedbackOps.WithLabelValues("delete", outcome(err)).Inc() }()

	diary, err := s.store.Diaries().Get(ctx, diaryID)
	if err != nil {
		return storeErr(err, "diary")
	}
	if err := auth.CheckOwnership(diary.UserID, userID, "delete feedback for this diary"); err != nil {
		return err
	}
	fb, err := s.store.Feedbacks().GetByDiaryID(ctx, diaryID)
	if err != nil {
		return storeErr(err, "feedback")
	}
	if err := auth.CheckOwnership(fb.UserID, userID, "delete this feedback"); err != nil {
		return err
	}
	if err := s.store.Feedbacks().Delete(ctx, fb.FeedbackID); err != nil {
		return storeErr(err, "feedback")
	}
	s.log.Info().Str("user_id", userID).Str("diary_id", diaryID).Str("feedback_id", fb.FeedbackID).Msg("feedback deleted")

	created := fb.CreatedDate(s.opts.Location)
	if !model.SameDate(created, s.today()) {
		return nil
	}
	if err := s.ledger.Release(ctx, userID, created); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("usage_date", created.String()).Msg("failed to release daily usage")
	}
	return nil
}

// GetFeedbackHistory lists the user's feedback created within [start, end].
func (s *FeedbackService) GetFeedbackHistory(ctx context.Context, userID string, start, end strfmt.Date) (*model.FeedbackHistory, error) {
	if err := validateRange(start, end, 0); err != nil {
		return nil, err
	}
	from, to := model.DayBounds(start, end, s.opts.Location)
	fbs, err := s.store.Feedbacks().ListByUserInRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	items := make([]model.HistoryItem, 0, len(fbs))
	for _, fb := range fbs {
		items = append(items, model.HistoryItem{
			FeedbackID:      fb.FeedbackID,
			DiaryID:         fb.DiaryID,
			Date:            fb.CreatedDate(s.opts.Location),
			Style:           fb.Style,
			Summary:         fb.Summary,
			ResponseExcerpt: truncateRunes(fb.Response, historyExcerptRunes),
		})
	}
	return &model.FeedbackHistory{StartDate: start, EndDate: end, Items: items}, nil
}

// GetDailyUsage reports today's usage against the limit.
func (s *FeedbackService) GetDailyUsage(ctx context.Context, userID string) (*model.DailyUsageSummary, error) {
	today := s.today()
	used, err := s.ledger.Usage(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("get daily usage: %w", err)
	}
	remaining := s.opts.DailyLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return &model.DailyUsageSummary{Date: today, Used: used, Limit: s.opts.DailyLimit, Remaining: remaining}, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case model.IsQuotaExceededError(err):
		return "quota_exceeded"
	case errors.Is(err, model.ErrDuplicateFeedback):
		return "duplicate"
	case model.IsAnalysisFailedError(err):
		return "analysis_failed"
	case model.IsAccessDeniedError(err):
		return "access_denied"
	case model.IsNotFoundError(err):
		return "not_found"
	case model.IsValidationError(err):
		return "invalid"
	default:
		return "error"
	}
}
