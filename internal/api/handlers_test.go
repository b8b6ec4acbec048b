package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksense/internal/adapters/config"
	"stocksense/internal/agent"
	"stocksense/internal/api/health"
	"stocksense/internal/api/ws"
	"stocksense/internal/domain/focus"
	"stocksense/internal/domain/layout"
	"stocksense/internal/knowledge"
	"stocksense/internal/marketdata"
	"stocksense/internal/repository/memory"
	focussvc "stocksense/internal/services/focus"
	"stocksense/internal/services/tracking"
	"stocksense/pkg/logger"
)

func init() {
	logger.Init("error", "test")
}

func newTestServer(t *testing.T) (*httptest.Server, *marketdata.Cache) {
	t.Helper()

	providerCfg := config.ProviderConfig{HTTPTimeout: time.Second, RatePerSecond: 100}

	knowledgeSvc := knowledge.NewService(nil)
	trackingSvc := tracking.NewService(memory.NewProfileRepository(), knowledgeSvc, clock.New())
	focusSvc := focussvc.NewService(memory.NewFocusRepository(), clock.New(), focus.DefaultSettings())
	require.NoError(t, focusSvc.Start(context.Background()))
	t.Cleanup(focusSvc.Stop)

	simulator := marketdata.NewSimulator(1)
	ag := agent.New(simulator, trackingSvc, agent.NewDispatcher(), clock.New(), time.Minute)
	t.Cleanup(ag.Stop)

	cache := marketdata.NewCache()
	handlers := NewHandlers(
		trackingSvc,
		focusSvc,
		knowledgeSvc,
		ag,
		cache,
		simulator,
		simulator,
		marketdata.NewFinnhubClient(providerCfg),
		marketdata.NewIEXClient(providerCfg),
		memory.NewLayoutRepository(),
	)

	healthHandler := health.New(logger.Get(), nil, "stocksense", "test")
	srv := NewServer(ServerConfig{ServiceName: "stocksense", Version: "test"}, handlers, healthHandler, ws.NewHub(), logger.Get())

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, cache
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestRootEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)

	var info map[string]string
	decodeBody(t, resp, &info)
	assert.Equal(t, "stocksense", info["service"])
	assert.Equal(t, "running", info["status"])
}

func TestHealthWithoutRedis(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status health.HealthStatus
	decodeBody(t, resp, &status)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "disabled", status.Checks["redis"].Status)
}

func TestSearchEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/search", map[string]string{"query": "implied volatility"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result tracking.SearchResult
	decodeBody(t, resp, &result)
	assert.Equal(t, "implied volatility", result.Analysis.Term)
	assert.Greater(t, result.Analysis.Complexity, 2.0)
}

func TestSearchRejectsMalformedBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/search", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/search", map[string]string{"query": "dividend"})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/profile")
	require.NoError(t, err)
	var profile map[string]interface{}
	decodeBody(t, resp, &profile)
	assert.NotEmpty(t, profile["id"])
	assert.Len(t, profile["searchHistory"], 1)

	resp = postJSON(t, ts.URL+"/api/profile/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/profile")
	require.NoError(t, err)
	var fresh map[string]interface{}
	decodeBody(t, resp, &fresh)
	assert.Empty(t, fresh["searchHistory"])
	assert.NotEqual(t, profile["id"], fresh["id"])
}

func TestSimulateRejectsUnknownTier(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/profile/simulate", map[string]string{"tier": "expert"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSnapshotFallsBackToProvider(t *testing.T) {
	ts, _ := newTestServer(t)

	// Cache is cold, the handler derives a snapshot directly
	resp, err := http.Get(ts.URL + "/api/snapshot")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Snapshot struct {
			Instruments []json.RawMessage `json:"instruments"`
		} `json:"snapshot"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Snapshot.Instruments)
}

func TestStocksSearch(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/stocks?q=tesla")
	require.NoError(t, err)

	var stocks []struct {
		Symbol string `json:"symbol"`
	}
	decodeBody(t, resp, &stocks)
	require.Len(t, stocks, 1)
	assert.Equal(t, "TSLA", stocks[0].Symbol)
}

func TestMarketPreset(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/market/preset", map[string]string{"preset": "bearish"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/market/preset", map[string]string{"preset": "sideways"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAgentLifecycleEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/agent/start", nil)
	var state map[string]bool
	decodeBody(t, resp, &state)
	assert.True(t, state["running"])

	resp, err := http.Get(ts.URL + "/api/agent/state")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/agent/stop", nil)
	decodeBody(t, resp, &state)
	assert.False(t, state["running"])
}

func TestFocusSessionEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	// No session yet
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/focus/session", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/focus/session", map[string]string{"kind": "work"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session focus.Session
	decodeBody(t, resp, &session)
	assert.Equal(t, focus.KindWork, session.Kind)

	resp, err = http.Get(ts.URL + "/api/focus/session")
	require.NoError(t, err)
	var current map[string]interface{}
	decodeBody(t, resp, &current)
	assert.Equal(t, true, current["active"])

	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/focus/session", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFocusSettingsValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	settings := focus.DefaultSettings()
	settings.WorkMinutes = 0

	data, _ := json.Marshal(settings)
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/focus/settings", bytes.NewReader(data))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLayoutEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	// Default config before anything is saved
	resp, err := http.Get(ts.URL + "/api/layout")
	require.NoError(t, err)
	var cfg layout.Config
	decodeBody(t, resp, &cfg)
	assert.NotEmpty(t, cfg.Sections)

	resp = postJSON(t, ts.URL+"/api/layout/preset", map[string]string{"id": "unknown-preset"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	presets := layout.Presets()
	require.NotEmpty(t, presets)
	resp = postJSON(t, ts.URL+"/api/layout/preset", map[string]string{"id": presets[0].ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var applied layout.Config
	decodeBody(t, resp, &applied)
	assert.Equal(t, presets[0].ID, applied.PresetID)
}

func TestLayoutUpdateValidatesImport(t *testing.T) {
	ts, _ := newTestServer(t)

	// Hiding a required section is rejected
	bad := layout.DefaultConfig()
	for i := range bad.Sections {
		if bad.Sections[i].Required {
			bad.Sections[i].Visible = false
		}
	}
	data, _ := json.Marshal(bad)
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/layout", bytes.NewReader(data))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A valid config round-trips
	good := layout.DefaultConfig()
	good.Sections[1].Visible = false
	data, _ = json.Marshal(good)
	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/api/layout", bytes.NewReader(data))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var saved layout.Config
	decodeBody(t, resp, &saved)
	assert.False(t, saved.Sections[1].Visible)
}

func TestDefineEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/define")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// No lookup client wired, so the local definition set answers
	resp, err = http.Get(ts.URL + "/api/define?term=dividend")
	require.NoError(t, err)
	var def knowledge.Definition
	decodeBody(t, resp, &def)
	assert.Equal(t, "dividend", def.Term)
	assert.NotEmpty(t, def.Definition)
	assert.True(t, def.FromFallback)
}

func TestNewsServedFromCache(t *testing.T) {
	ts, cache := newTestServer(t)

	cache.SetNews(marketdata.NewsDigest{
		Breaking: marketdata.Live([]marketdata.Article{{Title: "cached headline"}}),
	})

	resp, err := http.Get(ts.URL + "/api/news")
	require.NoError(t, err)
	var digest marketdata.NewsDigest
	decodeBody(t, resp, &digest)
	require.Len(t, digest.Breaking.Data, 1)
	assert.Equal(t, "cached headline", digest.Breaking.Data[0].Title)
}

func TestQuoteRequiresSymbol(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/quote")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
