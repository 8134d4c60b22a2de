// Package memory is an in-process store.Store used by tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/store"
)

type memStore struct {
	mu        sync.RWMutex
	users     map[string]model.User
	diaries   map[string]model.Diary
	feedbacks map[string]model.Feedback
	byDiary   map[string]string

	usageMu sync.Mutex
	usage   map[usageKey]*usageRow
}

type usageKey struct {
	userID string
	date   string
}

// usageRow carries its own lock so check-and-increment is atomic per key.
type usageRow struct {
	mu    sync.Mutex
	count int
}

// New returns an empty in-memory store.
func New() store.Store {
	return &memStore{
		users:     make(map[string]model.User),
		diaries:   make(map[string]model.Diary),
		feedbacks: make(map[string]model.Feedback),
		byDiary:   make(map[string]string),
		usage:     make(map[usageKey]*usageRow),
	}
}

func (s *memStore) Users() store.Users         { return (*users)(s) }
func (s *memStore) Diaries() store.Diaries     { return (*diaries)(s) }
func (s *memStore) Feedbacks() store.Feedbacks { return (*feedbacks)(s) }
func (s *memStore) Usage() store.Usage         { return (*usage)(s) }

// HealthPing implements health.HealthPinger.
func (s *memStore) HealthPing(context.Context) error { return nil }

// --- Users ---
type users memStore

func (u *users) Create(_ context.Context, m *model.User) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := *m
	if out.UserID == "" {
		out.UserID = uuid.NewString()
	}
	if _, ok := u.users[out.UserID]; ok {
		return nil, model.NewValidationError("user already exists: " + out.UserID)
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	u.users[out.UserID] = out
	return &out, nil
}

func (u *users) Get(_ context.Context, userID string) (*model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	m, ok := u.users[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &m, nil
}

// --- Diaries ---
type diaries memStore

func (d *diaries) Create(_ context.Context, m *model.Diary) (*model.Diary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[m.UserID]; !ok {
		return nil, model.ErrNotFound
	}
	out := *m
	if out.DiaryID == "" {
		out.DiaryID = uuid.NewString()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	d.diaries[out.DiaryID] = out
	return &out, nil
}

func (d *diaries) Get(_ context.Context, diaryID string) (*model.Diary, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.diaries[diaryID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &m, nil
}

func (d *diaries) Delete(_ context.Context, diaryID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.diaries[diaryID]; !ok {
		return model.ErrNotFound
	}
	delete(d.diaries, diaryID)
	if fid, ok := d.byDiary[diaryID]; ok {
		delete(d.feedbacks, fid)
		delete(d.byDiary, diaryID)
	}
	return nil
}

// --- Feedbacks ---
type feedbacks memStore

func (f *feedbacks) Create(_ context.Context, m *model.Feedback) (*model.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.diaries[m.DiaryID]; !ok {
		return nil, model.ErrNotFound
	}
	if _, ok := f.byDiary[m.DiaryID]; ok {
		return nil, model.ErrDuplicateFeedback
	}
	out := *m
	if out.FeedbackID == "" {
		out.FeedbackID = uuid.NewString()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	f.feedbacks[out.FeedbackID] = out
	f.byDiary[out.DiaryID] = out.FeedbackID
	return &out, nil
}

func (f *feedbacks) GetByDiaryID(_ context.Context, diaryID string) (*model.Feedback, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fid, ok := f.byDiary[diaryID]
	if !ok {
		return nil, model.ErrNotFound
	}
	m := f.feedbacks[fid]
	return &m, nil
}

func (f *feedbacks) ListByUserInRange(_ context.Context, userID string, from, to time.Time) ([]*model.Feedback, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*model.Feedback
	for _, m := range f.feedbacks {
		if m.UserID != userID || m.CreationTime.Before(from) || !m.CreationTime.Before(to) {
			continue
		}
		m := m
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreationTime.Equal(out[j].CreationTime) {
			return out[i].FeedbackID < out[j].FeedbackID
		}
		return out[i].CreationTime.Before(out[j].CreationTime)
	})
	return out, nil
}

func (f *feedbacks) Delete(_ context.Context, feedbackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.feedbacks[feedbackID]
	if !ok {
		return model.ErrNotFound
	}
	delete(f.feedbacks, feedbackID)
	delete(f.byDiary, m.DiaryID)
	return nil
}

// --- Usage ---
type usage memStore

func (u *usage) row(userID string, date strfmt.Date, create bool) *usageRow {
	u.usageMu.Lock()
	defer u.usageMu.Unlock()
	k := usageKey{userID: userID, date: date.String()}
	r, ok := u.usage[k]
	if !ok && create {
		r = &usageRow{}
		u.usage[k] = r
	}
	return r
}

func (u *usage) Get(_ context.Context, userID string, date strfmt.Date) (int, error) {
	r := u.row(userID, date, false)
	if r == nil {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count, nil
}

func (u *usage) TryConsume(_ context.Context, userID string, date strfmt.Date, limit int) (int, error) {
	if limit <= 0 {
		return 0, model.NewQuotaExceededError(limit)
	}
	r := u.row(userID, date, true)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count >= limit {
		return r.count, model.NewQuotaExceededError(limit)
	}
	r.count++
	return r.count, nil
}

func (u *usage) Release(_ context.Context, userID string, date strfmt.Date) (int, error) {
	r := u.row(userID, date, false)
	if r == nil {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count > 0 {
		r.count--
	}
	return r.count, nil
}
