package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/light11014/Moodmate-Backend/internal/config"
	"github.com/light11014/Moodmate-Backend/internal/quota"
	storepkg "github.com/light11014/Moodmate-Backend/internal/store"
)

// NewLedger returns the quota ledger selected by cfg.QuotaBackend.
func NewLedger(ctx context.Context, cfg *config.Config, st storepkg.Store, log zerolog.Logger) (quota.Ledger, Closer, error) {
	switch cfg.QuotaBackend {
	case "", "store":
		return quota.NewStoreLedger(st, log), noopCloser, nil
	case "redis":
		client, err := quota.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		l := quota.NewRedisLedger(client, log)
		return l, l.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown QUOTA_BACKEND: %s", cfg.QuotaBackend)
	}
}
