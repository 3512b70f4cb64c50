package api

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/trafficsim"
	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/scheduler"
)

func newTestServer(t *testing.T, opts ...trafficsim.Option) (*trafficsim.Engine, *scheduler.Manual, *Hub, *httptest.Server) {
	t.Helper()

	manual := scheduler.NewManual(time.Second)
	base := []trafficsim.Option{
		trafficsim.WithRandom(rand.New(rand.NewSource(7))),
		trafficsim.WithScheduler(manual),
	}
	engine := trafficsim.New(append(base, opts...)...)

	hub := NewHub(zerolog.Nop())
	engine.AddObserver(hub)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(NewServer(engine, hub, zerolog.Nop(), time.Second).Routes())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		engine.Close()
	})
	return engine, manual, hub, srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func TestServer_Reads(t *testing.T) {
	_, _, _, srv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "stopped", body["state"])

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/intersections", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"], 4)

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/config", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Afternoon Normal", body["scenario_label"])
	assert.Equal(t, "00:00", body["runtime"])

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/summary", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 4, body["total"])
	assert.Equal(t, "int-c", body["busiest"])

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/snapshot", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["tick"])
}

func TestServer_SimulationLifecycle(t *testing.T) {
	_, manual, _, srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/simulation/start", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["applied"])
	assert.Equal(t, "running", body["state"])
	assert.NotEmpty(t, body["command_id"])

	resp, body = do(t, http.MethodPost, srv.URL+"/v1/simulation/start", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_transition", body["code"])

	manual.Fire(2)
	resp, body = do(t, http.MethodPost, srv.URL+"/v1/simulation/tick", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["tick"])

	resp, body = do(t, http.MethodPost, srv.URL+"/v1/simulation/stop", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "00:00", body["runtime"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/simulation/reset", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, http.MethodPost, srv.URL+"/v1/simulation/tick", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_transition", body["code"])
	assert.Equal(t, false, body["applied"])
	assert.Equal(t, "stopped", body["state"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/simulation/warp", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_PatchConfig(t *testing.T) {
	engine, _, _, srv := newTestServer(t)

	resp, body := do(t, http.MethodPatch, srv.URL+"/v1/config", `{"vehicle_density":150,"scenario":"evening"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg := body["config"].(map[string]any)
	assert.EqualValues(t, 100, cfg["vehicle_density"])
	assert.Equal(t, core.ScenarioEvening, engine.Config().Scenario)

	resp, _ = do(t, http.MethodPatch, srv.URL+"/v1/config", `{"running":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "clock fields are not configurable")

	resp, _ = do(t, http.MethodPatch, srv.URL+"/v1/config", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPatch, srv.URL+"/v1/config", `{"vehicle_density":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_SetSignal(t *testing.T) {
	engine, _, _, srv := newTestServer(t)

	resp, body := do(t, http.MethodPut, srv.URL+"/v1/intersections/int-a/signal", `{"phase":"red"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "auto_mode_active", body["code"])

	do(t, http.MethodPatch, srv.URL+"/v1/config", `{"auto_mode":false}`)

	resp, _ = do(t, http.MethodPut, srv.URL+"/v1/intersections/int-a/signal", `{"phase":"red"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, core.PhaseRed, engine.Intersections()[0].Signal)

	resp, _ = do(t, http.MethodPut, srv.URL+"/v1/intersections/int-zz/signal", `{"phase":"red"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, http.MethodPut, srv.URL+"/v1/intersections/int-a/signal", `{"phase":"blue"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_phase", body["code"])
}

func TestServer_DismissAlert(t *testing.T) {
	heavy := []core.Intersection{{ID: "int-h", Name: "Jammed Junction", VehicleCount: 45, Congestion: core.TierHeavy}}
	engine, manual, _, srv := newTestServer(t, trafficsim.WithIntersections(heavy))

	engine.Start()
	for i := 0; i < 200 && len(engine.Alerts()) == 0; i++ {
		manual.Fire(1)
	}
	require.NotEmpty(t, engine.Alerts())

	id := engine.Alerts()[0].ID
	resp, _ := do(t, http.MethodDelete, srv.URL+"/v1/alerts/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := do(t, http.MethodDelete, srv.URL+"/v1/alerts/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "unknown_alert", body["code"])
}

func TestServer_Stream(t *testing.T) {
	engine, manual, hub, srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first streamMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first.Type)
	assert.Equal(t, uint64(0), first.Snapshot.Tick)

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	engine.Start()
	manual.Fire(1)

	var next streamMessage
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, uint64(1), next.Snapshot.Tick)
	assert.Len(t, next.Snapshot.Intersections, 4)
}
