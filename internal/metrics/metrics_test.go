package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gudang/internal/invalidation"
	"gudang/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CountsInvalidations(t *testing.T) {
	recorder := metrics.NewRecorder()
	ctx := context.Background()

	recorder.Invalidate(ctx, invalidation.NewSignal(invalidation.OpCreate, "o", "i"))
	recorder.Invalidate(ctx, invalidation.NewSignal(invalidation.OpUpdate, "o", "i"))
	recorder.Invalidate(ctx, invalidation.NewSignal(invalidation.OpUpdate, "o", "i"))

	count, err := testutil.GatherAndCount(recorder.Registry(), "gudang_view_invalidations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per operation")
}

func TestRecorder_MiddlewareAndHandler(t *testing.T) {
	recorder := metrics.NewRecorder()
	app := fiber.New()
	app.Use(recorder.Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", recorder.Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `gudang_http_requests_total{method="GET",route="/ping",status="200"} 1`)
}
