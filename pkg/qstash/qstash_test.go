package qstash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
)

func TestPublishTurn(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotEvent contractx.TurnEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotEvent); err != nil {
			t.Errorf("decode event: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Token: "qtok", Destination: "turn-events"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	ev := contractx.TurnEvent{
		UserID:    "u1",
		Decisions: []contractx.Decision{contractx.DecisionUser},
		Cycles:    2,
		Reply:     "Nice to meet you",
		At:        time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := client.PublishTurn(context.Background(), ev); err != nil {
		t.Fatalf("PublishTurn() error = %v", err)
	}

	if gotPath != "/v2/publish/turn-events" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer qtok" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	if gotEvent.UserID != "u1" || gotEvent.Cycles != 2 {
		t.Fatalf("unexpected event: %#v", gotEvent)
	}
}

func TestPublishTurnNon2xx(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client := MustNew(Config{URL: server.URL, Destination: "topic"})
	if err := client.PublishTurn(context.Background(), contractx.TurnEvent{UserID: "u1"}); err == nil {
		t.Fatal("expected error on 400")
	}
}

func TestConfigEnabled(t *testing.T) {
	t.Parallel()

	if (Config{}).Enabled() {
		t.Fatal("empty config must be disabled")
	}
	if !(Config{URL: "https://qstash.upstash.io", Destination: "x"}).Enabled() {
		t.Fatal("expected enabled config")
	}
}
