package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	httptransport "github.com/spec-kit/user-service/internal/api/http"
	"github.com/spec-kit/user-service/internal/observability"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

func newObservedApp(t *testing.T) (*fiber.App, *observer.ObservedLogs, *observability.Metrics) {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.New(core), metrics, 0)
	return app, logs, metrics
}

func loggedStatus(t *testing.T, logs *observer.ObservedLogs, path string) int64 {
	t.Helper()

	for _, entry := range logs.FilterMessage("request completed").All() {
		fields := entry.ContextMap()
		if fields["path"] == path {
			status, ok := fields["status"].(int64)
			require.True(t, ok, "status field missing on request log")
			return status
		}
	}
	t.Fatalf("no request log for %s", path)
	return 0
}

func TestRequestLogger_RecordsFinalErrorStatus(t *testing.T) {
	app, logs, metrics := newObservedApp(t)
	app.Get("/denied", func(c *fiber.Ctx) error {
		return apperrors.NewUnauthorized("token required")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/denied", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// the log and the counters carry the status the client saw
	assert.Equal(t, int64(http.StatusUnauthorized), loggedStatus(t, logs, "/denied"))

	count, _ := metrics.RequestStats("/denied", http.MethodGet, http.StatusUnauthorized)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(1), metrics.ErrorCount("/denied", http.MethodGet, "UNAUTHORIZED"))
}

func TestRequestLogger_RecordsSuccessStatus(t *testing.T) {
	app, logs, metrics := newObservedApp(t)
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, int64(http.StatusOK), loggedStatus(t, logs, "/ok"))

	count, _ := metrics.RequestStats("/ok", http.MethodGet, http.StatusOK)
	assert.Equal(t, int64(1), count)
}

func TestErrorMiddleware_PanicBecomesInternalError(t *testing.T) {
	app, logs, _ := newObservedApp(t)
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	assert.Equal(t, int64(http.StatusInternalServerError), loggedStatus(t, logs, "/panic"))
}
