package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openspool/spoolbridge/internal/activity"
	"github.com/openspool/spoolbridge/internal/hub"
	"github.com/openspool/spoolbridge/internal/infrastructure/config"
	"github.com/openspool/spoolbridge/internal/infrastructure/logging"
	"github.com/openspool/spoolbridge/internal/inventory"
	"github.com/openspool/spoolbridge/internal/syncengine"
)

// fakeEngine records calls and returns canned results per operation.
type fakeEngine struct {
	usageResult   syncengine.Result
	trayResult    syncengine.Result
	warningResult syncengine.Result
	assignResult  syncengine.Result

	usageEvents []syncengine.UsageEvent
	assigns     []string
	unassigns   []int
}

func (f *fakeEngine) HandleSpoolUsage(_ context.Context, event syncengine.UsageEvent) syncengine.Result {
	f.usageEvents = append(f.usageEvents, event)
	return f.usageResult
}

func (f *fakeEngine) HandleTrayChange(context.Context, syncengine.TrayChangeEvent) syncengine.Result {
	return f.trayResult
}

func (f *fakeEngine) HandlePrintWarning(context.Context, syncengine.PrintWarningEvent) syncengine.Result {
	return f.warningResult
}

func (f *fakeEngine) Assign(_ context.Context, spoolID int, trayKey string) syncengine.Result {
	f.assigns = append(f.assigns, trayKey)
	return f.assignResult
}

func (f *fakeEngine) Unassign(_ context.Context, spoolID int) syncengine.Result {
	f.unassigns = append(f.unassigns, spoolID)
	return f.assignResult
}

type fakeHubClient struct {
	entities []hub.Entity
	err      error
}

func (f *fakeHubClient) States(context.Context) ([]hub.Entity, error) {
	return f.entities, f.err
}

type fakeInventoryClient struct {
	spools []inventory.Spool
	err    error
}

func (f *fakeInventoryClient) ListSpools(context.Context) ([]inventory.Spool, error) {
	return f.spools, f.err
}

type fakeActivityRepo struct {
	result activity.ListResult
}

func (f *fakeActivityRepo) Append(context.Context, *activity.Record) error { return nil }

func (f *fakeActivityRepo) List(context.Context, activity.Filter) (*activity.ListResult, error) {
	return &f.result, nil
}

type testServer struct {
	server    *Server
	engine    *fakeEngine
	hub       *fakeHubClient
	inventory *fakeInventoryClient
	http      *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		engine:    &fakeEngine{},
		hub:       &fakeHubClient{},
		inventory: &fakeInventoryClient{},
	}

	server, err := New(Deps{
		Config: config.APIConfig{Host: "127.0.0.1", Port: 0},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:    logging.Default(),
		Engine:    ts.engine,
		Hub:       ts.hub,
		Inventory: ts.inventory,
		Activity:  &fakeActivityRepo{},
		Version:   "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ts.server = server
	server.hub = NewHub(server.wsCfg, server.logger)
	ts.http = httptest.NewServer(server.buildRouter())
	t.Cleanup(ts.http.Close)

	return ts
}

func (ts *testServer) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshalling body: %v", err)
	}
	resp, err := http.Post(ts.http.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func (ts *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.http.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestNew_MissingDeps(t *testing.T) {
	_, err := New(Deps{Logger: logging.Default()})
	if err == nil {
		t.Error("New() without engine should fail")
	}

	_, err = New(Deps{Engine: &fakeEngine{}, Hub: &fakeHubClient{}, Inventory: &fakeInventoryClient{}})
	if err == nil {
		t.Error("New() without logger should fail")
	}
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, "/api/v1/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version = %v, want test", body["version"])
	}
}

func TestHandleWebhook_SpoolUsage(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.usageResult = syncengine.Result{
		Status:       syncengine.StatusSuccess,
		SpoolID:      7,
		NewRemaining: 750,
	}

	resp := ts.post(t, "/api/v1/webhook", map[string]any{
		"event":       "spool_usage",
		"entity_id":   "sensor.x1c_abc_ams_1_tray_2",
		"used_weight": 50,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	result := decodeBody[syncengine.Result](t, resp)
	if result.Status != syncengine.StatusSuccess {
		t.Errorf("result.Status = %q, want success", result.Status)
	}
	if result.NewRemaining != 750 {
		t.Errorf("result.NewRemaining = %v, want 750", result.NewRemaining)
	}

	if len(ts.engine.usageEvents) != 1 {
		t.Fatalf("engine received %d usage events, want 1", len(ts.engine.usageEvents))
	}
	if ts.engine.usageEvents[0].UsedWeight != 50 {
		t.Errorf("UsedWeight = %v, want 50", ts.engine.usageEvents[0].UsedWeight)
	}
}

func TestHandleWebhook_NoMatchStillOK(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.trayResult = syncengine.Result{Status: syncengine.StatusNoMatch}

	resp := ts.post(t, "/api/v1/webhook", map[string]any{
		"event":     "tray_change",
		"entity_id": "sensor.x1c_abc_ams_1_tray_1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 (no_match is not an HTTP error)", resp.StatusCode)
	}

	result := decodeBody[syncengine.Result](t, resp)
	if result.Status != syncengine.StatusNoMatch {
		t.Errorf("result.Status = %q, want no_match", result.Status)
	}
}

func TestHandleWebhook_UpstreamFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.usageResult = syncengine.Result{Status: syncengine.StatusError, Message: "spoolman down"}

	resp := ts.post(t, "/api/v1/webhook", map[string]any{
		"event":       "spool_usage",
		"entity_id":   "sensor.x1c_abc_ams_1_tray_2",
		"used_weight": 50,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestHandleWebhook_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid JSON", body: `{not json`},
		{name: "unknown event", body: `{"event":"reboot"}`},
		{name: "missing event", body: `{"entity_id":"sensor.x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.http.URL+"/api/v1/webhook", "application/json", bytes.NewReader([]byte(tt.body)))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHandleWebhookInfo(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, "/api/v1/webhook")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[map[string]any](t, resp)
	events, ok := body["events"].(map[string]any)
	if !ok {
		t.Fatalf("events missing from webhook description: %v", body)
	}
	for _, name := range []string{"spool_usage", "tray_change", "print_warning"} {
		if _, ok := events[name]; !ok {
			t.Errorf("webhook description missing event %q", name)
		}
	}
}

func TestHandleListPrinters(t *testing.T) {
	ts := newTestServer(t)
	ts.hub.entities = []hub.Entity{
		{EntityID: "sensor.x1c_abc_print_status", State: "printing"},
		{EntityID: "sensor.x1c_abc_ams_1_tray_1", State: "PLA", Attributes: map[string]any{"tag_uid": "A1B2C3"}},
	}

	resp := ts.get(t, "/api/v1/printers")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[map[string]any](t, resp)
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
}

func TestHandleListPrinters_HubDown(t *testing.T) {
	ts := newTestServer(t)
	ts.hub.err = errors.New("connection refused")

	resp := ts.get(t, "/api/v1/printers")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestHandleListSpools(t *testing.T) {
	ts := newTestServer(t)
	ts.inventory.spools = []inventory.Spool{
		{
			ID:              1,
			Filament:        inventory.Filament{Name: "PLA Basic", Material: "PLA"},
			RemainingWeight: 800,
			Extra: map[string]string{
				inventory.ExtraTagUID:     `"A1B2C3"`,
				inventory.ExtraActiveTray: `"x1c_abc_ams_1_tray_1"`,
			},
		},
	}

	resp := ts.get(t, "/api/v1/spools")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[struct {
		Spools []map[string]any `json:"spools"`
		Count  int              `json:"count"`
	}](t, resp)
	if body.Count != 1 {
		t.Fatalf("count = %d, want 1", body.Count)
	}
	// Extra values are decoded for the view.
	if body.Spools[0]["tag_uid"] != "A1B2C3" {
		t.Errorf("tag_uid = %v, want decoded A1B2C3", body.Spools[0]["tag_uid"])
	}
	if body.Spools[0]["active_tray"] != "x1c_abc_ams_1_tray_1" {
		t.Errorf("active_tray = %v", body.Spools[0]["active_tray"])
	}
}

func TestHandleAssignSpool(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.assignResult = syncengine.Result{Status: syncengine.StatusSuccess, SpoolID: 5}

	resp := ts.post(t, "/api/v1/spools/5/assign", map[string]string{"tray_key": "x1c_abc_ams_1_tray_3"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	if len(ts.engine.assigns) != 1 || ts.engine.assigns[0] != "x1c_abc_ams_1_tray_3" {
		t.Errorf("engine.assigns = %v", ts.engine.assigns)
	}
}

func TestHandleAssignSpool_Validation(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.post(t, "/api/v1/spools/5/assign", map[string]string{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing tray_key: status = %d, want 400", resp.StatusCode)
	}

	resp2 := ts.post(t, "/api/v1/spools/abc/assign", map[string]string{"tray_key": "x"})
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Errorf("non-integer id: status = %d, want 400", resp2.StatusCode)
	}
}

func TestHandleUnassignSpool(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.assignResult = syncengine.Result{Status: syncengine.StatusSuccess, SpoolID: 5}

	resp := ts.post(t, "/api/v1/spools/5/unassign", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if len(ts.engine.unassigns) != 1 || ts.engine.unassigns[0] != 5 {
		t.Errorf("engine.unassigns = %v", ts.engine.unassigns)
	}
}

func TestHandleListActivity(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, "/api/v1/activity?type=usage&limit=10")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()
}
