package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/store"
)

// Run exercises the compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("UsersAndDiaries", func(t *testing.T) { testUsersAndDiaries(t, makeStore(t)) })
	t.Run("FeedbackLifecycle", func(t *testing.T) { testFeedbackLifecycle(t, makeStore(t)) })
	t.Run("FeedbackRange", func(t *testing.T) { testFeedbackRange(t, makeStore(t)) })
	t.Run("DiaryDeleteCascades", func(t *testing.T) { testDiaryDeleteCascades(t, makeStore(t)) })
	t.Run("UsageCounter", func(t *testing.T) { testUsageCounter(t, makeStore(t)) })
	t.Run("UsageConcurrentConsume", func(t *testing.T) { testUsageConcurrentConsume(t, makeStore(t)) })
}

func mustDate(t *testing.T, s string) strfmt.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func seedUser(t *testing.T, s store.Store) *model.User {
	t.Helper()
	id := "u-" + uuid.NewString()
	u, err := s.Users().Create(context.Background(), &model.User{UserID: id, Email: id + "@example.test", Username: "tester"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func seedDiary(t *testing.T, s store.Store, userID, date string) *model.Diary {
	t.Helper()
	d, err := s.Diaries().Create(context.Background(), &model.Diary{UserID: userID, Content: "walked by the river", Date: mustDate(t, date)})
	if err != nil {
		t.Fatalf("CreateDiary: %v", err)
	}
	if d.DiaryID == "" {
		t.Fatalf("CreateDiary: empty diary id")
	}
	return d
}

func testUsersAndDiaries(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s)

	got, err := s.Users().Get(ctx, u.UserID)
	if err != nil || got == nil || got.Email != u.Email {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Get(ctx, "missing-"+uuid.NewString()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser missing: expected ErrNotFound, got %v", err)
	}

	d := seedDiary(t, s, u.UserID, "2024-05-01")
	gd, err := s.Diaries().Get(ctx, d.DiaryID)
	if err != nil || gd.UserID != u.UserID || gd.Content != "walked by the river" {
		t.Fatalf("GetDiary: got=%v err=%v", gd, err)
	}
	if gd.Date.String() != "2024-05-01" {
		t.Fatalf("GetDiary: date round trip got %s", gd.Date.String())
	}
	if _, err := s.Diaries().Get(ctx, uuid.NewString()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetDiary missing: expected ErrNotFound, got %v", err)
	}
}

func testFeedbackLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s)
	d := seedDiary(t, s, u.UserID, "2024-05-01")

	if _, err := s.Feedbacks().GetByDiaryID(ctx, d.DiaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByDiaryID before create: expected ErrNotFound, got %v", err)
	}

	summary := "a calm day"
	created := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	f, err := s.Feedbacks().Create(ctx, &model.Feedback{
		UserID: u.UserID, DiaryID: d.DiaryID, Summary: &summary,
		Response: "keep it up", Style: model.StyleEncouraging, CreationTime: created,
	})
	if err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}
	if f.FeedbackID == "" {
		t.Fatalf("CreateFeedback: empty id")
	}

	got, err := s.Feedbacks().GetByDiaryID(ctx, d.DiaryID)
	if err != nil {
		t.Fatalf("GetByDiaryID: %v", err)
	}
	if got.FeedbackID != f.FeedbackID || got.Summary == nil || *got.Summary != summary || got.Style != model.StyleEncouraging {
		t.Fatalf("GetByDiaryID: unexpected %+v", got)
	}
	if !got.CreationTime.Equal(created) {
		t.Fatalf("GetByDiaryID: creation time %s != %s", got.CreationTime, created)
	}

	// A second feedback for the same diary violates the uniqueness constraint.
	_, err = s.Feedbacks().Create(ctx, &model.Feedback{UserID: u.UserID, DiaryID: d.DiaryID, Response: "again", Style: model.StyleHonest})
	if !errors.Is(err, model.ErrDuplicateFeedback) {
		t.Fatalf("duplicate CreateFeedback: expected ErrDuplicateFeedback, got %v", err)
	}

	if err := s.Feedbacks().Delete(ctx, f.FeedbackID); err != nil {
		t.Fatalf("DeleteFeedback: %v", err)
	}
	if _, err := s.Feedbacks().GetByDiaryID(ctx, d.DiaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByDiaryID after delete: expected ErrNotFound, got %v", err)
	}
	if err := s.Feedbacks().Delete(ctx, f.FeedbackID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteFeedback twice: expected ErrNotFound, got %v", err)
	}

	// Null summary round trips.
	f2, err := s.Feedbacks().Create(ctx, &model.Feedback{UserID: u.UserID, DiaryID: d.DiaryID, Response: "fresh", Style: model.StyleEmpathetic})
	if err != nil {
		t.Fatalf("re-create after delete: %v", err)
	}
	got, err = s.Feedbacks().GetByDiaryID(ctx, d.DiaryID)
	if err != nil || got.FeedbackID != f2.FeedbackID || got.Summary != nil {
		t.Fatalf("GetByDiaryID nil summary: got=%+v err=%v", got, err)
	}
}

func testFeedbackRange(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s)
	other := seedUser(t, s)

	base := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	var want []string
	for i, offset := range []int{2, 0, 1, 5} {
		d := seedDiary(t, s, u.UserID, "2024-06-10")
		f, err := s.Feedbacks().Create(ctx, &model.Feedback{
			UserID: u.UserID, DiaryID: d.DiaryID, Response: "r",
			Style: model.StyleHonest, CreationTime: base.AddDate(0, 0, offset),
		})
		if err != nil {
			t.Fatalf("CreateFeedback %d: %v", i, err)
		}
		if offset <= 2 {
			want = append(want, f.FeedbackID)
		}
	}
	od := seedDiary(t, s, other.UserID, "2024-06-10")
	if _, err := s.Feedbacks().Create(ctx, &model.Feedback{UserID: other.UserID, DiaryID: od.DiaryID, Response: "r", Style: model.StyleHonest, CreationTime: base}); err != nil {
		t.Fatalf("CreateFeedback other: %v", err)
	}

	from := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)
	lst, err := s.Feedbacks().ListByUserInRange(ctx, u.UserID, from, to)
	if err != nil {
		t.Fatalf("ListByUserInRange: %v", err)
	}
	if len(lst) != 3 {
		t.Fatalf("ListByUserInRange: expected 3, got %d", len(lst))
	}
	// Oldest first: offsets 0, 1, 2.
	if lst[0].FeedbackID != want[1] || lst[1].FeedbackID != want[2] || lst[2].FeedbackID != want[0] {
		t.Fatalf("ListByUserInRange: unexpected order")
	}
	for i := 1; i < len(lst); i++ {
		if lst[i].CreationTime.Before(lst[i-1].CreationTime) {
			t.Fatalf("ListByUserInRange: not ascending at %d", i)
		}
	}

	empty, err := s.Feedbacks().ListByUserInRange(ctx, u.UserID, to.AddDate(1, 0, 0), to.AddDate(1, 0, 1))
	if err != nil || len(empty) != 0 {
		t.Fatalf("ListByUserInRange empty: n=%d err=%v", len(empty), err)
	}
}

func testDiaryDeleteCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s)
	d := seedDiary(t, s, u.UserID, "2024-07-01")
	if _, err := s.Feedbacks().Create(ctx, &model.Feedback{UserID: u.UserID, DiaryID: d.DiaryID, Response: "r", Style: model.StyleHonest}); err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}
	if err := s.Diaries().Delete(ctx, d.DiaryID); err != nil {
		t.Fatalf("DeleteDiary: %v", err)
	}
	if _, err := s.Diaries().Get(ctx, d.DiaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetDiary after delete: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Feedbacks().GetByDiaryID(ctx, d.DiaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("feedback should be removed with its diary, got %v", err)
	}
	if err := s.Diaries().Delete(ctx, d.DiaryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteDiary twice: expected ErrNotFound, got %v", err)
	}
}

func testUsageCounter(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s)
	day := mustDate(t, "2024-08-01")
	next := mustDate(t, "2024-08-02")
	const limit = 2

	if n, err := s.Usage().Get(ctx, u.UserID, day); err != nil || n != 0 {
		t.Fatalf("Get absent: n=%d err=%v", n, err)
	}
	// Release on an absent row is a no-op.
	if n, err := s.Usage().Release(ctx, u.UserID, day); err != nil || n != 0 {
		t.Fatalf("Release absent: n=%d err=%v", n, err)
	}

	for want := 1; want <= limit; want++ {
		n, err := s.Usage().TryConsume(ctx, u.UserID, day, limit)
		if err != nil || n != want {
			t.Fatalf("TryConsume #%d: n=%d err=%v", want, n, err)
		}
	}
	_, err := s.Usage().TryConsume(ctx, u.UserID, day, limit)
	if !model.IsQuotaExceededError(err) {
		t.Fatalf("TryConsume over limit: expected QuotaExceeded, got %v", err)
	}
	if n, _ := s.Usage().Get(ctx, u.UserID, day); n != limit {
		t.Fatalf("count after rejection: expected %d, got %d", limit, n)
	}

	// Dates are independent keys.
	if n, err := s.Usage().TryConsume(ctx, u.UserID, next, limit); err != nil || n != 1 {
		t.Fatalf("TryConsume next day: n=%d err=%v", n, err)
	}

	if n, err := s.Usage().Release(ctx, u.UserID, day); err != nil || n != limit-1 {
		t.Fatalf("Release: n=%d err=%v", n, err)
	}
	if n, err := s.Usage().TryConsume(ctx, u.UserID, day, limit); err != nil || n != limit {
		t.Fatalf("TryConsume after release: n=%d err=%v", n, err)
	}
	for i := 0; i < limit+2; i++ {
		if _, err := s.Usage().Release(ctx, u.UserID, day); err != nil {
			t.Fatalf("Release #%d: %v", i, err)
		}
	}
	if n, _ := s.Usage().Get(ctx, u.UserID, day); n != 0 {
		t.Fatalf("count must never drop below zero, got %d", n)
	}

	if _, err := s.Usage().TryConsume(ctx, u.UserID, mustDate(t, "2024-08-03"), 0); !model.IsQuotaExceededError(err) {
		t.Fatalf("TryConsume with zero limit: expected QuotaExceeded, got %v", err)
	}
}

func testUsageConcurrentConsume(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := seedUser(t, s)
	day := mustDate(t, "2024-09-01")
	const limit = 2
	const callers = limit + 5

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
		failures  []error
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.Usage().TryConsume(ctx, u.UserID, day, limit)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case model.IsQuotaExceededError(err):
				rejected++
			default:
				failures = append(failures, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if len(failures) > 0 {
		t.Fatalf("unexpected TryConsume errors: %v", failures)
	}
	if successes != limit || rejected != callers-limit {
		t.Fatalf("expected %d successes and %d rejections, got %d and %d", limit, callers-limit, successes, rejected)
	}
	if n, _ := s.Usage().Get(ctx, u.UserID, day); n != limit {
		t.Fatalf("final count: expected %d, got %d", limit, n)
	}
}
