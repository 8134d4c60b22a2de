// Package quota tracks how many feedback generations each user has spent per day.
package quota

import (
	"context"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"

	"github.com/light11014/Moodmate-Backend/internal/metrics"
	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/store"
)

// Ledger is the per-(user, date) usage counter consulted before each generation.
// TryConsume must be atomic across concurrent callers for the same key.
type Ledger interface {
	Usage(ctx context.Context, userID string, date strfmt.Date) (int, error)
	TryConsume(ctx context.Context, userID string, date strfmt.Date, limit int) (int, error)
	Release(ctx context.Context, userID string, date strfmt.Date) error
}

// StoreLedger keeps usage rows in the primary store.
type StoreLedger struct {
	usage store.Usage
	log   zerolog.Logger
}

// NewStoreLedger returns a ledger over s.Usage().
func NewStoreLedger(s store.Store, log zerolog.Logger) *StoreLedger {
	return &StoreLedger{usage: s.Usage(), log: log}
}

func (l *StoreLedger) Usage(ctx context.Context, userID string, date strfmt.Date) (int, error) {
	return l.usage.Get(ctx, userID, date)
}

func (l *StoreLedger) TryConsume(ctx context.Context, userID string, date strfmt.Date, limit int) (int, error) {
	n, err := l.usage.TryConsume(ctx, userID, date, limit)
	logConsume(l.log, userID, date, n, limit, err)
	return n, err
}

func (l *StoreLedger) Release(ctx context.Context, userID string, date strfmt.Date) error {
	n, err := l.usage.Release(ctx, userID, date)
	if err != nil {
		return err
	}
	l.log.Info().Str("user_id", userID).Str("usage_date", date.String()).Int("usage_count", n).Msg("daily usage released")
	return nil
}

func logConsume(log zerolog.Logger, userID string, date strfmt.Date, n, limit int, err error) {
	switch {
	case err == nil && n == 1:
		metrics.QuotaDecisions.WithLabelValues("allowed").Inc()
		log.Info().Str("user_id", userID).Str("usage_date", date.String()).Msg("daily usage record created")
	case err == nil:
		metrics.QuotaDecisions.WithLabelValues("allowed").Inc()
		log.Info().Str("user_id", userID).Str("usage_date", date.String()).Int("usage_count", n).Msg("daily usage incremented")
	case model.IsQuotaExceededError(err):
		metrics.QuotaDecisions.WithLabelValues("rejected").Inc()
		log.Warn().Str("user_id", userID).Str("usage_date", date.String()).Int("limit", limit).Msg("daily usage limit reached")
	default:
		metrics.QuotaDecisions.WithLabelValues("error").Inc()
	}
}
