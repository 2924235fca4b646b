package hub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openspool/spoolbridge/internal/infrastructure/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.HubConfig{
		URL:     srv.URL,
		Token:   "test-token",
		Timeout: 5,
	})
}

func TestStates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/states" {
			t.Errorf("path = %q, want /api/states", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck // Test response write
		w.Write([]byte(`[
			{"entity_id":"sensor.x1c_abc_print_status","state":"printing","attributes":{"friendly_name":"X1C Print Status"}},
			{"entity_id":"sensor.x1c_abc_ams_1_tray_1","state":"PLA","attributes":{"name":"PLA Basic","tag_uid":"A1B2C3"}}
		]`))
	})

	entities, err := client.States(context.Background())
	if err != nil {
		t.Fatalf("States() error = %v", err)
	}

	if len(entities) != 2 {
		t.Fatalf("len(entities) = %d, want 2", len(entities))
	}
	if entities[0].EntityID != "sensor.x1c_abc_print_status" {
		t.Errorf("entities[0].EntityID = %q", entities[0].EntityID)
	}
	if entities[1].State != "PLA" {
		t.Errorf("entities[1].State = %q, want PLA", entities[1].State)
	}
	if entities[1].Attributes["tag_uid"] != "A1B2C3" {
		t.Errorf("entities[1].Attributes[tag_uid] = %v", entities[1].Attributes["tag_uid"])
	}
}

func TestStates_Unauthorised(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.States(context.Background())
	if !errors.Is(err, ErrUnauthorised) {
		t.Errorf("States() error = %v, want ErrUnauthorised", err)
	}
}

func TestStates_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.States(context.Background())
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("States() error = %v, want ErrRequestFailed", err)
	}
}

func TestStates_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		//nolint:errcheck // Test response write
		w.Write([]byte(`{"not":"a list"}`))
	})

	_, err := client.States(context.Background())
	if !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("States() error = %v, want ErrDecodeFailed", err)
	}
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/" {
			t.Errorf("path = %q, want /api/", r.URL.Path)
		}
		//nolint:errcheck // Test response write
		w.Write([]byte(`{"message":"API running."}`))
	})

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
