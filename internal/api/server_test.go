package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/motorbid/auction-alerts/internal/config"
	"github.com/motorbid/auction-alerts/internal/environment"
	"github.com/motorbid/auction-alerts/internal/ledger"
	"github.com/motorbid/auction-alerts/internal/scheduler"
	"github.com/motorbid/auction-alerts/internal/service"
	"github.com/motorbid/auction-alerts/internal/storage"
)

// newTestServer builds a router over a preview-backed service with an
// in-memory store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		PreviewHost:      true,
		SweepInterval:    time.Minute,
		CORSAllowOrigins: []string{"http://localhost:3000"},
	}
	store := storage.NewMemory()

	backend, sel := environment.Select(context.Background(), cfg, logger)
	led := ledger.New(config.PreviewLedgerStorageKey, store, logger)
	sched := scheduler.New(backend, led, cfg.SweepInterval, logger)
	svc := service.New(backend, sched, sel, logger)
	require.NoError(t, svc.Initialize(context.Background()))
	t.Cleanup(svc.Cleanup)

	srv := httptest.NewServer(NewRouter(svc, store, cfg))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "healthy", decodeBody(t, resp)["status"])

	resp, err = http.Get(srv.URL + "/health/store")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "connected", decodeBody(t, resp)["store"])
}

func TestFavoriteLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	end := time.Now().Add(6 * time.Hour).Format("2006-01-02 15:04:05")

	vehicleBody := map[string]any{
		"id": 7, "make": "BMW", "model": "M3",
		"year": 2020, "startingBid": 45000.0,
		"auctionDateTime": end, "favourite": true,
	}

	resp := postJSON(t, srv.URL+"/api/v1/notifications/favorites", map[string]any{
		"vehicle": vehicleBody, "isFavorite": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/notifications/stats")
	require.NoError(t, err)
	stats := decodeBody(t, resp)
	require.EqualValues(t, 1, stats["total"])
	require.EqualValues(t, 1, stats["upcoming"])

	resp = postJSON(t, srv.URL+"/api/v1/notifications/favorites", map[string]any{
		"vehicle": vehicleBody, "isFavorite": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/v1/notifications/stats")
	require.NoError(t, err)
	require.EqualValues(t, 0, decodeBody(t, resp)["total"])
}

func TestScheduleAllAndClearOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	end := time.Now().Add(6 * time.Hour).Format("2006-01-02 15:04:05")

	vehicles := []map[string]any{}
	for i := 1; i <= 3; i++ {
		vehicles = append(vehicles, map[string]any{
			"id": i, "make": "Audi", "model": fmt.Sprintf("RS%d", i),
			"auctionDateTime": end, "favourite": i != 2,
		})
	}

	resp := postJSON(t, srv.URL+"/api/v1/notifications/schedule-all", map[string]any{
		"vehicles": vehicles,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 2, decodeBody(t, resp)["scheduled"])

	resp, err := http.Get(srv.URL + "/api/v1/notifications/scheduled")
	require.NoError(t, err)
	listing := decodeBody(t, resp)
	require.EqualValues(t, 2, listing["count"])

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/notifications/", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/v1/notifications/stats")
	require.NoError(t, err)
	require.EqualValues(t, 0, decodeBody(t, resp)["total"])
}

func TestInvalidBodyRejected(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/notifications/favorites",
		"application/json", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "INVALID_BODY", errObj["code"])
}

func TestServiceInfoOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/notifications/service-info")
	require.NoError(t, err)
	info := decodeBody(t, resp)
	require.Equal(t, "preview", info["backend"])
	require.Equal(t, true, info["initialized"])
}
