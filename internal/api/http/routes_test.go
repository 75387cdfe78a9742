package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	"github.com/i474232898/air-quality-monitor/internal/realtime"
	"github.com/i474232898/air-quality-monitor/internal/store"
)

var fixedNow = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, st airquality.Store) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	svc := airquality.NewService(st, realtime.New(), airquality.WithClock(func() time.Time { return fixedNow }))
	RegisterRoutes(app, svc)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestSensorIngestAndLatest(t *testing.T) {
	app := newTestApp(t, store.NewMemoryStore())

	code, body := do(t, app, http.MethodGet, "/api/v1/data", "")
	require.Equal(t, http.StatusOK, code)
	require.Nil(t, body["data"])
	require.Equal(t, "No data available", body["message"])

	code, body = do(t, app, http.MethodPost, "/api/v1/sensor", `{"ppm": 1500}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	require.Equal(t, "Poor", data["airQuality"])
	require.Nil(t, data["temperature"])
	require.Nil(t, data["humidity"])
	require.Equal(t, false, data["motion"])

	code, body = do(t, app, http.MethodGet, "/api/v1/data", "")
	require.Equal(t, http.StatusOK, code)
	data = body["data"].(map[string]any)
	require.Equal(t, 1500.0, data["ppm"])
	require.Equal(t, false, data["isAlert"])
}

func TestSensorRejectsMissingPPM(t *testing.T) {
	st := store.NewMemoryStore()
	app := newTestApp(t, st)

	code, body := do(t, app, http.MethodPost, "/api/v1/sensor", `{"temperature": 21}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "PPM value is required", body["error"])

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	code, _ = do(t, app, http.MethodPost, "/api/v1/sensor", `not json`)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestLatestAlertAtThreshold(t *testing.T) {
	app := newTestApp(t, store.NewMemoryStore())

	code, _ := do(t, app, http.MethodPost, "/api/v1/sensor", `{"ppm": "2000", "motion": true}`)
	require.Equal(t, http.StatusOK, code)

	_, body := do(t, app, http.MethodGet, "/api/v1/data", "")
	data := body["data"].(map[string]any)
	require.Equal(t, true, data["isAlert"])
	require.Equal(t, "Dangerous", data["airQuality"])
	require.Equal(t, true, data["motion"])
}

func TestHistoryEndpoint(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	for i, offset := range []time.Duration{30 * time.Hour, 5 * time.Hour, 3 * time.Hour, time.Hour} {
		require.NoError(t, st.Insert(ctx, airquality.Reading{
			ID:        string(rune('a' + i)),
			PPM:       float64(100 * (i + 1)),
			Timestamp: fixedNow.Add(-offset),
		}))
	}
	app := newTestApp(t, st)

	code, body := do(t, app, http.MethodGet, "/api/v1/history", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 3.0, body["count"])
	require.Equal(t, "24 hours", body["period"])

	code, body = do(t, app, http.MethodGet, "/api/v1/history?hours=24&limit=2", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 2.0, body["count"])
	data := body["data"].([]any)
	require.Equal(t, 200.0, data[0].(map[string]any)["ppm"])
	require.Equal(t, 300.0, data[1].(map[string]any)["ppm"])

	code, _ = do(t, app, http.MethodGet, "/api/v1/history?hours=-3", "")
	require.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, app, http.MethodGet, "/api/v1/history?hours=abc", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "24 hours", body["period"])
}

func TestStatsEndpoints(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Insert(ctx, airquality.Reading{ID: "1", PPM: 2400, Timestamp: fixedNow.Add(-48 * time.Hour)}))
	require.NoError(t, st.Insert(ctx, airquality.Reading{ID: "2", PPM: 600, Timestamp: fixedNow.Add(-time.Hour)}))
	app := newTestApp(t, st)

	code, body := do(t, app, http.MethodGet, "/api/v1/stats/daily", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "7 days", body["period"])
	require.Equal(t, 2.0, body["count"])
	first := body["data"].([]any)[0].(map[string]any)
	require.Equal(t, "Dangerous", first["airQuality"])
	require.Nil(t, first["avgTemperature"])

	code, body = do(t, app, http.MethodGet, "/api/v1/stats/monthly?months=3", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "3 months", body["period"])
	month := body["data"].([]any)[0].(map[string]any)
	require.Equal(t, "March 2026", month["monthName"])
	require.Equal(t, 1.0, month["dangerousDays"])
	require.Equal(t, 2.0, month["totalReadings"])

	code, _ = do(t, app, http.MethodGet, "/api/v1/stats/monthly?months=500", "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestRealtimeEndpoints(t *testing.T) {
	app := newTestApp(t, store.NewMemoryStore())

	code, body := do(t, app, http.MethodGet, "/api/v1/realtime", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, body["isAlert"])
	require.Nil(t, body["data"].(map[string]any)["ppm"])

	code, body = do(t, app, http.MethodPost, "/api/v1/realtime", `{"ppm": 2100, "humidity": 45}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])

	_, body = do(t, app, http.MethodPost, "/api/v1/realtime", `{"ppm": 2300}`)
	require.Equal(t, true, body["success"])

	_, body = do(t, app, http.MethodGet, "/api/v1/realtime", "")
	require.Equal(t, true, body["isAlert"])
	data := body["data"].(map[string]any)
	require.Equal(t, 2300.0, data["ppm"])
	require.Nil(t, data["humidity"])
	require.Equal(t, "Dangerous", data["airQuality"])
}

type downStore struct{ *store.MemoryStore }

func (downStore) Latest(context.Context) (airquality.Reading, error) {
	return airquality.Reading{}, airquality.ErrStoreUnavailable
}

func (downStore) Count(context.Context) (int64, error) {
	return 0, errors.New("dial tcp: connection refused")
}

func TestStoreFailuresAreGeneric(t *testing.T) {
	app := newTestApp(t, downStore{store.NewMemoryStore()})

	code, body := do(t, app, http.MethodGet, "/api/v1/data", "")
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "Failed to fetch data", body["error"])

	code, body = do(t, app, http.MethodGet, "/api/v1/store/status", "")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, false, body["ok"])
}

func TestSensorFormatHelp(t *testing.T) {
	app := newTestApp(t, store.NewMemoryStore())

	code, body := do(t, app, http.MethodGet, "/api/v1/sensor", "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body["format"], "ppm")
}
