package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light11014/Moodmate-Backend/internal/ai"
	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/quota"
	"github.com/light11014/Moodmate-Backend/internal/store"
	"github.com/light11014/Moodmate-Backend/internal/store/memory"
)

// --- Fakes ---

// scriptedAnalyzer behaves like ai.Static unless a call name is listed in fail,
// block or gate. Blocked calls wait for context cancellation; gated calls wait
// until their channel is closed.
type scriptedAnalyzer struct {
	ai.Static
	mu    sync.Mutex
	fail  map[string]error
	block map[string]bool
	gate  map[string]chan struct{}
	calls atomic.Int32
	seen  []string
}

func (a *scriptedAnalyzer) run(ctx context.Context, name string) error {
	a.calls.Add(1)
	a.mu.Lock()
	a.seen = append(a.seen, name)
	err, blocked, gate := a.fail[name], a.block[name], a.gate[name]
	a.mu.Unlock()
	if blocked {
		<-ctx.Done()
		return ctx.Err()
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (a *scriptedAnalyzer) GenerateSummary(ctx context.Context, content string) (string, error) {
	if err := a.run(ctx, "summary"); err != nil {
		return "", err
	}
	return a.Static.GenerateSummary(ctx, content)
}

func (a *scriptedAnalyzer) GenerateFeedback(ctx context.Context, content string, style model.FeedbackStyle) (string, error) {
	if err := a.run(ctx, "feedback"); err != nil {
		return "", err
	}
	return a.Static.GenerateFeedback(ctx, content, style)
}

func (a *scriptedAnalyzer) GeneratePeriodSummary(ctx context.Context, combined string, start, end strfmt.Date) (string, error) {
	if err := a.run(ctx, "period_summary"); err != nil {
		return "", err
	}
	return a.Static.GeneratePeriodSummary(ctx, combined, start, end)
}

func (a *scriptedAnalyzer) AnalyzeEmotionalPattern(ctx context.Context, combined string) (string, error) {
	if err := a.run(ctx, "emotional_pattern"); err != nil {
		return "", err
	}
	return a.Static.AnalyzeEmotionalPattern(ctx, combined)
}

func (a *scriptedAnalyzer) AnalyzeGrowthPattern(ctx context.Context, combined string) (string, error) {
	if err := a.run(ctx, "growth_pattern"); err != nil {
		return "", err
	}
	return a.Static.AnalyzeGrowthPattern(ctx, combined)
}

func (a *scriptedAnalyzer) GenerateRecommendations(ctx context.Context, combined string) (string, error) {
	if err := a.run(ctx, "recommendations"); err != nil {
		return "", err
	}
	return a.Static.GenerateRecommendations(ctx, combined)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store    store.Store
	ledger   quota.Ledger
	analyzer *scriptedAnalyzer
	clock    *clock
	feedback *FeedbackService
	analysis *AnalysisService
	diaries  *DiaryService
	users    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	log := zerolog.Nop()
	f := &fixture{
		store:    st,
		ledger:   quota.NewStoreLedger(st, log),
		analyzer: &scriptedAnalyzer{fail: map[string]error{}, block: map[string]bool{}, gate: map[string]chan struct{}{}},
		clock:    &clock{now: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
	}
	f.feedback = NewFeedbackService(st, f.ledger, f.analyzer, log, FeedbackOptions{
		DailyLimit: 2,
		AITimeout:  200 * time.Millisecond,
		Location:   time.UTC,
		Now:        f.clock.Now,
	})
	f.analysis = NewAnalysisService(st, f.analyzer, log, AnalysisOptions{
		AITimeout: 200 * time.Millisecond,
		Location:  time.UTC,
	})
	f.diaries = NewDiaryService(st, log)
	f.users = NewUserService(st, log)
	return f
}

func (f *fixture) user(t *testing.T, id string) {
	t.Helper()
	_, err := f.users.EnsureUser(context.Background(), id)
	require.NoError(t, err)
}

func (f *fixture) diary(t *testing.T, userID, content, date string) string {
	t.Helper()
	d, err := f.diaries.CreateDiary(context.Background(), userID, content, mustDate(t, date))
	require.NoError(t, err)
	return d.DiaryID
}

func (f *fixture) usage(t *testing.T, userID string) int {
	t.Helper()
	u, err := f.feedback.GetDailyUsage(context.Background(), userID)
	require.NoError(t, err)
	return u.Used
}

func mustDate(t *testing.T, s string) strfmt.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

// --- Feedback lifecycle ---

func TestCreateFeedback_QuotaBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	d1 := f.diary(t, "u1", "first day at the new job", "2024-01-01")
	d2 := f.diary(t, "u1", "dinner with friends", "2024-01-01")
	d3 := f.diary(t, "u1", "rainy walk", "2024-01-01")

	fb, err := f.feedback.CreateFeedback(ctx, "u1", d1, "")
	require.NoError(t, err)
	assert.Equal(t, model.StyleEncouraging, fb.Style)
	require.NotNil(t, fb.Summary)
	assert.NotEmpty(t, fb.Response)
	assert.Equal(t, 1, f.usage(t, "u1"))

	_, err = f.feedback.CreateFeedback(ctx, "u1", d2, "HONEST")
	require.NoError(t, err)
	assert.Equal(t, 2, f.usage(t, "u1"))

	calls := f.analyzer.calls.Load()
	_, err = f.feedback.CreateFeedback(ctx, "u1", d3, "empathetic")
	require.Error(t, err)
	assert.True(t, model.IsQuotaExceededError(err))
	assert.Contains(t, err.Error(), "max 2")
	assert.Equal(t, calls, f.analyzer.calls.Load(), "analyzer must not run once the quota is spent")
	assert.Equal(t, 2, f.usage(t, "u1"))

	// next day starts a fresh count
	f.clock.advance(24 * time.Hour)
	_, err = f.feedback.CreateFeedback(ctx, "u1", d3, "empathetic")
	require.NoError(t, err)
	assert.Equal(t, 1, f.usage(t, "u1"))
}

func TestCreateFeedback_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	f.user(t, "u2")
	d1 := f.diary(t, "u1", "quiet sunday", "2024-01-01")

	_, err := f.feedback.CreateFeedback(ctx, "u1", d1, "sarcastic")
	assert.True(t, model.IsValidationError(err))

	_, err = f.feedback.CreateFeedback(ctx, "ghost", d1, "")
	assert.True(t, model.IsNotFoundError(err))

	_, err = f.feedback.CreateFeedback(ctx, "u1", "missing", "")
	assert.True(t, model.IsNotFoundError(err))

	_, err = f.feedback.CreateFeedback(ctx, "u2", d1, "")
	assert.True(t, model.IsAccessDeniedError(err))

	_, err = f.feedback.CreateFeedback(ctx, "u1", d1, "")
	require.NoError(t, err)
	_, err = f.feedback.CreateFeedback(ctx, "u1", d1, "")
	assert.ErrorIs(t, err, model.ErrDuplicateFeedback)

	assert.Equal(t, 1, f.usage(t, "u1"), "rejected requests do not consume quota")
	assert.Equal(t, 0, f.usage(t, "u2"))
}

func TestCreateFeedback_AIFailureKeepsQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	d1 := f.diary(t, "u1", "long day", "2024-01-01")

	f.analyzer.fail["feedback"] = errors.New("provider unavailable")
	_, err := f.feedback.CreateFeedback(ctx, "u1", d1, "")
	require.Error(t, err)
	var af model.AnalysisFailedError
	require.True(t, errors.As(err, &af))
	assert.Equal(t, "u1", af.UserID)
	assert.Equal(t, d1, af.DiaryID)
	assert.Equal(t, 1, af.FeedbackCount)
	assert.Contains(t, err.Error(), d1)
	assert.Contains(t, err.Error(), "provider unavailable")
	assert.Equal(t, 1, f.usage(t, "u1"))

	_, err = f.feedback.GetFeedback(ctx, "u1", d1)
	assert.True(t, model.IsNotFoundError(err), "nothing is persisted on failure")
}

func TestCreateFeedback_AITimeout(t *testing.T) {
	f := newFixture(t)
	f.user(t, "u1")
	d1 := f.diary(t, "u1", "slow provider", "2024-01-01")

	f.analyzer.block["summary"] = true
	start := time.Now()
	_, err := f.feedback.CreateFeedback(context.Background(), "u1", d1, "")
	require.Error(t, err)
	assert.True(t, model.IsAnalysisFailedError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCreateFeedback_ConcurrentNeverExceedsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	const n = 7
	ids := make([]string, n)
	for i := range ids {
		ids[i] = f.diary(t, "u1", "entry", "2024-01-01")
	}

	var ok atomic.Int32
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.feedback.CreateFeedback(ctx, "u1", id, ""); err == nil {
				ok.Add(1)
			}
		}(id)
	}
	wg.Wait()
	assert.Equal(t, int32(2), ok.Load())
	assert.Equal(t, 2, f.usage(t, "u1"))
}

// Both requests pass the existence check while generation is held open; the
// storage constraint then rejects the second insert.
func TestCreateFeedback_ConcurrentSameDiary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.feedback = NewFeedbackService(f.store, f.ledger, f.analyzer, zerolog.Nop(), FeedbackOptions{
		DailyLimit: 2,
		AITimeout:  5 * time.Second,
		Location:   time.UTC,
		Now:        f.clock.Now,
	})
	f.user(t, "u1")
	d1 := f.diary(t, "u1", "one diary, two clicks", "2024-01-01")

	release := make(chan struct{})
	f.analyzer.gate["summary"] = release

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := f.feedback.CreateFeedback(ctx, "u1", d1, "")
			errs <- err
		}()
	}
	require.Eventually(t, func() bool { return f.analyzer.calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	close(release)

	var ok, dup int
	for i := 0; i < 2; i++ {
		err := <-errs
		switch {
		case err == nil:
			ok++
		case errors.Is(err, model.ErrDuplicateFeedback):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)
	assert.Equal(t, 2, f.usage(t, "u1"), "the rejected request keeps its consumed slot")

	fb, err := f.feedback.GetFeedback(ctx, "u1", d1)
	require.NoError(t, err)
	assert.Equal(t, "u1", fb.UserID)
}

func TestDeleteFeedback_ReleasesSameDayOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	f.user(t, "u2")
	d1 := f.diary(t, "u1", "morning run", "2024-01-01")
	d2 := f.diary(t, "u1", "evening read", "2024-01-01")

	_, err := f.feedback.CreateFeedback(ctx, "u1", d1, "")
	require.NoError(t, err)
	_, err = f.feedback.CreateFeedback(ctx, "u1", d2, "")
	require.NoError(t, err)

	assert.True(t, model.IsAccessDeniedError(f.feedback.DeleteFeedback(ctx, "u2", d1)))

	require.NoError(t, f.feedback.DeleteFeedback(ctx, "u1", d1))
	assert.Equal(t, 1, f.usage(t, "u1"))
	assert.True(t, model.IsNotFoundError(f.feedback.DeleteFeedback(ctx, "u1", d1)))

	// feedback from an earlier day is deleted without touching any counter
	f.clock.advance(24 * time.Hour)
	require.NoError(t, f.feedback.DeleteFeedback(ctx, "u1", d2))
	assert.Equal(t, 0, f.usage(t, "u1"))
	prev, err := f.ledger.Usage(ctx, "u1", mustDate(t, "2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, prev)
}

func TestDeleteFeedback_RejectsForeignFeedbackOnOwnDiary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	f.user(t, "u2")
	d1 := f.diary(t, "u1", "shared notebook", "2024-01-01")
	d2 := f.diary(t, "u1", "own entry", "2024-01-01")

	_, err := f.feedback.CreateFeedback(ctx, "u1", d2, "")
	require.NoError(t, err)
	foreign, err := f.store.Feedbacks().Create(ctx, &model.Feedback{
		UserID:       "u2",
		DiaryID:      d1,
		Response:     "written for someone else",
		Style:        model.StyleHonest,
		CreationTime: f.clock.Now(),
	})
	require.NoError(t, err)

	err = f.feedback.DeleteFeedback(ctx, "u1", d1)
	require.Error(t, err)
	assert.True(t, model.IsAccessDeniedError(err))

	still, err := f.store.Feedbacks().GetByDiaryID(ctx, d1)
	require.NoError(t, err)
	assert.Equal(t, foreign.FeedbackID, still.FeedbackID)
	assert.Equal(t, 1, f.usage(t, "u1"))
	assert.Equal(t, 0, f.usage(t, "u2"))
}

func TestGetFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	f.user(t, "u2")
	d1 := f.diary(t, "u1", "picnic", "2024-01-01")

	_, err := f.feedback.GetFeedback(ctx, "u1", d1)
	assert.True(t, model.IsNotFoundError(err))

	created, err := f.feedback.CreateFeedback(ctx, "u1", d1, "empathetic")
	require.NoError(t, err)

	got, err := f.feedback.GetFeedback(ctx, "u1", d1)
	require.NoError(t, err)
	assert.Equal(t, created.FeedbackID, got.FeedbackID)
	assert.Equal(t, model.StyleEmpathetic, got.Style)

	_, err = f.feedback.GetFeedback(ctx, "u2", d1)
	assert.True(t, model.IsAccessDeniedError(err))
}

func TestGetFeedbackHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	f.user(t, "u2")

	long := strings.Repeat("가", 150)
	d1 := f.diary(t, "u1", long, "2024-01-01")
	_, err := f.feedback.CreateFeedback(ctx, "u1", d1, "")
	require.NoError(t, err)

	f.clock.advance(48 * time.Hour)
	d2 := f.diary(t, "u1", "third of january", "2024-01-03")
	_, err = f.feedback.CreateFeedback(ctx, "u1", d2, "honest")
	require.NoError(t, err)

	other := f.diary(t, "u2", "not mine", "2024-01-03")
	_, err = f.feedback.CreateFeedback(ctx, "u2", other, "")
	require.NoError(t, err)

	h, err := f.feedback.GetFeedbackHistory(ctx, "u1", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-03"))
	require.NoError(t, err)
	require.Len(t, h.Items, 2)
	assert.Equal(t, d1, h.Items[0].DiaryID)
	assert.Equal(t, "2024-01-01", h.Items[0].Date.String())
	assert.Equal(t, d2, h.Items[1].DiaryID)
	assert.Equal(t, model.StyleHonest, h.Items[1].Style)
	for _, it := range h.Items {
		assert.LessOrEqual(t, len([]rune(it.ResponseExcerpt)), 103)
	}

	h, err = f.feedback.GetFeedbackHistory(ctx, "u1", mustDate(t, "2024-01-02"), mustDate(t, "2024-01-02"))
	require.NoError(t, err)
	assert.Empty(t, h.Items)

	_, err = f.feedback.GetFeedbackHistory(ctx, "u1", mustDate(t, "2024-01-03"), mustDate(t, "2024-01-01"))
	assert.True(t, model.IsValidationError(err))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "일기장...", truncateRunes("일기장입니다", 3))
}

// --- Period analysis ---

func TestGeneratePeriodAnalysis_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")

	_, err := f.analysis.GeneratePeriodAnalysis(ctx, "u1", mustDate(t, "2024-01-05"), mustDate(t, "2024-01-01"))
	assert.True(t, model.IsValidationError(err))

	_, err = f.analysis.GeneratePeriodAnalysis(ctx, "u1", mustDate(t, "2023-01-01"), mustDate(t, "2024-12-31"))
	assert.True(t, model.IsValidationError(err), "range longer than the maximum")

	_, err = f.analysis.GeneratePeriodAnalysis(ctx, "u1", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-31"))
	require.Error(t, err)
	assert.True(t, model.IsNotFoundError(err))
	assert.Contains(t, err.Error(), "no diary data in range")

	// feedback rows without a usable summary
	d1 := f.diary(t, "u1", "blank", "2024-01-01")
	d2 := f.diary(t, "u1", "blank too", "2024-01-01")
	blank := "   "
	_, err = f.store.Feedbacks().Create(ctx, &model.Feedback{UserID: "u1", DiaryID: d1, Response: "r", Style: model.StyleHonest, CreationTime: f.clock.Now()})
	require.NoError(t, err)
	_, err = f.store.Feedbacks().Create(ctx, &model.Feedback{UserID: "u1", DiaryID: d2, Summary: &blank, Response: "r", Style: model.StyleHonest, CreationTime: f.clock.Now()})
	require.NoError(t, err)

	_, err = f.analysis.GeneratePeriodAnalysis(ctx, "u1", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-01"))
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
	assert.Contains(t, err.Error(), "no summary data")
	assert.Zero(t, f.analyzer.calls.Load())
}

func TestGeneratePeriodAnalysis_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	d1 := f.diary(t, "u1", "went hiking", "2024-01-01")
	_, err := f.feedback.CreateFeedback(ctx, "u1", d1, "")
	require.NoError(t, err)
	f.clock.advance(24 * time.Hour)
	d2 := f.diary(t, "u1", "cooked soup", "2024-01-02")
	_, err = f.feedback.CreateFeedback(ctx, "u1", d2, "")
	require.NoError(t, err)

	r, err := f.analysis.GeneratePeriodAnalysis(ctx, "u1", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-02"))
	require.NoError(t, err)
	assert.Equal(t, 2, r.FeedbackCount)
	assert.Equal(t, "2024-01-01", r.StartDate.String())
	assert.Equal(t, "2024-01-02", r.EndDate.String())
	assert.Contains(t, r.PeriodSummary, "2 reflections")
	assert.Contains(t, r.EmotionalPattern, "hiking")
	assert.NotEmpty(t, r.GrowthPattern)
	assert.NotEmpty(t, r.Recommendations)
}

func TestGeneratePeriodAnalysis_FailureAborts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	d1 := f.diary(t, "u1", "tired", "2024-01-01")
	_, err := f.feedback.CreateFeedback(ctx, "u1", d1, "")
	require.NoError(t, err)

	f.analyzer.fail["growth_pattern"] = errors.New("model overloaded")
	f.analyzer.block["recommendations"] = true
	start := time.Now()
	r, err := f.analysis.GeneratePeriodAnalysis(ctx, "u1", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-01"))
	require.Error(t, err)
	assert.Nil(t, r)

	var af model.AnalysisFailedError
	require.True(t, errors.As(err, &af))
	assert.Equal(t, "u1", af.UserID)
	assert.Equal(t, 1, af.FeedbackCount)
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Less(t, time.Since(start), 2*time.Second)
}

// Walks the documented limit=2 scenario end to end.
func TestFeedbackScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "U")
	d1 := f.diary(t, "U", "new year's day", "2024-01-01")
	d2 := f.diary(t, "U", "new year's night", "2024-01-01")
	d3 := f.diary(t, "U", "one more", "2024-01-01")

	_, err := f.feedback.CreateFeedback(ctx, "U", d1, "encouraging")
	require.NoError(t, err)
	assert.Equal(t, 1, f.usage(t, "U"))
	_, err = f.feedback.CreateFeedback(ctx, "U", d2, "honest")
	require.NoError(t, err)
	assert.Equal(t, 2, f.usage(t, "U"))

	_, err = f.feedback.CreateFeedback(ctx, "U", d3, "")
	var qe model.QuotaExceededError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, 2, qe.Limit)

	require.NoError(t, f.feedback.DeleteFeedback(ctx, "U", d1))
	assert.Equal(t, 1, f.usage(t, "U"))

	r, err := f.analysis.GeneratePeriodAnalysis(ctx, "U", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, r.FeedbackCount)
}

// --- Diaries and users ---

func TestDiaryService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	f.user(t, "u2")

	_, err := f.diaries.CreateDiary(ctx, "u1", "  ", mustDate(t, "2024-01-01"))
	assert.True(t, model.IsValidationError(err))
	_, err = f.diaries.CreateDiary(ctx, "u1", "ok", strfmt.Date{})
	assert.True(t, model.IsValidationError(err))
	_, err = f.diaries.CreateDiary(ctx, "ghost", "ok", mustDate(t, "2024-01-01"))
	assert.True(t, model.IsNotFoundError(err))

	id := f.diary(t, "u1", "kept", "2024-01-01")
	d, err := f.diaries.GetDiary(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "kept", d.Content)

	_, err = f.diaries.GetDiary(ctx, "u2", id)
	assert.True(t, model.IsAccessDeniedError(err))
	assert.True(t, model.IsAccessDeniedError(f.diaries.DeleteDiary(ctx, "u2", id)))

	_, err = f.feedback.CreateFeedback(ctx, "u1", id, "")
	require.NoError(t, err)
	require.NoError(t, f.diaries.DeleteDiary(ctx, "u1", id))

	_, err = f.diaries.GetDiary(ctx, "u1", id)
	assert.True(t, model.IsNotFoundError(err))
	assert.Equal(t, 1, f.usage(t, "u1"), "deleting a diary keeps the spent quota")
}

func TestUserService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.GetProfile(ctx, "u1")
	assert.True(t, model.IsNotFoundError(err))

	_, err = f.users.EnsureUser(ctx, " ")
	assert.True(t, model.IsValidationError(err))

	u, err := f.users.EnsureUser(ctx, "u1")
	require.NoError(t, err)
	again, err := f.users.EnsureUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, u.CreationTime, again.CreationTime)

	p, err := f.users.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.Username)
	assert.Equal(t, "u1@dev.moodmate.local", p.Email)
}

func TestValidateRange(t *testing.T) {
	d := func(s string) strfmt.Date { return mustDate(t, s) }
	assert.NoError(t, validateRange(d("2024-01-01"), d("2024-01-01"), 1))
	assert.NoError(t, validateRange(d("2024-01-01"), d("2024-12-31"), 366))
	assert.Error(t, validateRange(d("2024-01-01"), d("2025-01-01"), 366))
	assert.Error(t, validateRange(strfmt.Date{}, d("2024-01-01"), 0))
	assert.Error(t, validateRange(d("2024-01-02"), d("2024-01-01"), 0))
}
