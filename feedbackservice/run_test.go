package feedbackservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light11014/Moodmate-Backend/internal/config"
	"github.com/light11014/Moodmate-Backend/internal/health"
)

func TestStartupHealthTimeout(t *testing.T) {
	assert.Equal(t, 60*time.Second, startupHealthTimeout(time.Second))
	assert.Equal(t, 60*time.Second, startupHealthTimeout(30*time.Second))
	assert.Equal(t, 4*time.Minute, startupHealthTimeout(2*time.Minute))
}

func TestWiring(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.NewForTesting()
	cfg.Environment = config.EnvDevelopment
	log := zerolog.Nop()

	deps, err := initDependencies(ctx, cfg, log)
	require.NoError(t, err)
	defer deps.close(log)

	svcHealth := startHealthCheckers(ctx, cfg, log, deps)
	require.NoError(t, waitUntilHealthy(ctx, cfg, svcHealth))
	assert.Contains(t, svcHealth.Components(), "store")

	router := buildRouter(cfg, log, deps, svcHealth)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/feedback/usage", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestWaitUntilHealthy_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	never := health.NewServiceHealthChecker(zerolog.Nop(), stuck{})
	err := waitUntilHealthy(ctx, config.NewForTesting(), never)
	assert.ErrorIs(t, err, context.Canceled)
}

type stuck struct{}

func (stuck) Name() string                          { return "stuck" }
func (stuck) IsHealthy() bool                       { return false }
func (stuck) Start(context.Context, time.Duration) {}
