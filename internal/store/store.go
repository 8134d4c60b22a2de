package store

import (
	"context"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/light11014/Moodmate-Backend/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite, memory).
// Lookups of missing rows return model.ErrNotFound.
type Store interface {
	Users() Users
	Diaries() Diaries
	Feedbacks() Feedbacks
	Usage() Usage
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
}

type Diaries interface {
	Create(ctx context.Context, d *model.Diary) (*model.Diary, error)
	Get(ctx context.Context, diaryID string) (*model.Diary, error)
	// Delete removes the diary and its feedback.
	Delete(ctx context.Context, diaryID string) error
}

type Feedbacks interface {
	// Create fails with model.ErrDuplicateFeedback when the diary already has feedback.
	Create(ctx context.Context, f *model.Feedback) (*model.Feedback, error)
	GetByDiaryID(ctx context.Context, diaryID string) (*model.Feedback, error)
	// ListByUserInRange returns feedback created in [from, to), oldest first.
	ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]*model.Feedback, error)
	Delete(ctx context.Context, feedbackID string) error
}

// Usage is the per-(user, date) feedback counter. Every implementation must make
// TryConsume atomic: of N concurrent calls for one key at most limit succeed.
type Usage interface {
	// Get returns the stored count, or 0 when no row exists.
	Get(ctx context.Context, userID string, date strfmt.Date) (int, error)
	// TryConsume increments the count when it is below limit and returns the new
	// count. At the limit it returns model.QuotaExceededError and leaves the row unchanged.
	TryConsume(ctx context.Context, userID string, date strfmt.Date, limit int) (int, error)
	// Release decrements a positive count and returns the resulting count.
	Release(ctx context.Context, userID string, date strfmt.Date) (int, error)
}
