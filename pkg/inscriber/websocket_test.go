package inscriber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDecodeInscriptionEventAcceptsLooseTypes(t *testing.T) {
	event, err := decodeInscriptionEvent(map[string]any{
		"id":            float64(17),
		"tx_id":         "0.0.1001@1700000000.000000009",
		"status":        "processing",
		"progress":      "42.5",
		"topic_id":      "0.0.900",
		"error":         nil,
		"transactionId": map[string]any{"nested": true},
	})
	if err != nil {
		t.Fatalf("decodeInscriptionEvent failed: %v", err)
	}
	if event.ID != "17" || event.progress() != 42.5 || event.TransactionID != "" {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.finished() {
		t.Fatalf("expected a processing event at 42.5%% to be unfinished")
	}

	job := event.job()
	if job.TopicID != "0.0.900" || job.ID != "17" || job.Status != "processing" || !job.Completed {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestInscriptionEventFinished(t *testing.T) {
	byProgress, err := decodeInscriptionEvent(map[string]any{"progress": float64(100)})
	if err != nil {
		t.Fatalf("decodeInscriptionEvent failed: %v", err)
	}
	if !byProgress.finished() {
		t.Fatalf("expected progress 100 to finish the event")
	}
	if job := byProgress.job(); job.Status != "completed" {
		t.Fatalf("expected default completed status, got %q", job.Status)
	}

	byStatus, err := decodeInscriptionEvent(map[string]any{"status": "Completed", "topicId": "0.0.7", "topic_id": "0.0.8"})
	if err != nil {
		t.Fatalf("decodeInscriptionEvent failed: %v", err)
	}
	if !byStatus.finished() || byStatus.job().TopicID != "0.0.7" {
		t.Fatalf("unexpected completed event %+v", byStatus)
	}
}

func TestInscriptionEventBelongsTo(t *testing.T) {
	wanted := "0.0.1001-1700000000-000000009"

	cases := []struct {
		name    string
		payload map[string]any
		want    bool
	}{
		{name: "job id in at form", payload: map[string]any{"jobId": "0.0.1001@1700000000.000000009"}, want: true},
		{name: "tx_id in dash form", payload: map[string]any{"tx_id": wanted}, want: true},
		{name: "transactionId", payload: map[string]any{"transactionId": wanted}, want: true},
		{name: "other job", payload: map[string]any{"jobId": "0.0.1002-1700000000-000000009"}, want: false},
		{name: "no ids", payload: map[string]any{"status": "processing"}, want: false},
	}
	for _, tc := range cases {
		event, err := decodeInscriptionEvent(tc.payload)
		if err != nil {
			t.Fatalf("%s: decode failed: %v", tc.name, err)
		}
		if got := event.belongsTo(wanted); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}

	event, _ := decodeInscriptionEvent(map[string]any{"jobId": "anything"})
	if !event.belongsTo("") {
		t.Fatalf("expected every event to match an empty transaction id")
	}
}

func TestWebSocketServersPick(t *testing.T) {
	recommended := webSocketServersResponse{
		Recommended: " wss://recommended.example ",
		Servers:     []webSocketServer{{URL: "wss://active.example", Status: "active"}},
	}
	if got, err := recommended.pick(); err != nil || got != "wss://recommended.example" {
		t.Fatalf("expected recommended server, got %q (%v)", got, err)
	}

	active := webSocketServersResponse{Servers: []webSocketServer{
		{URL: "wss://draining.example", Status: "draining"},
		{URL: "", Status: "active"},
		{URL: "wss://active.example", Status: "ACTIVE"},
	}}
	if got, err := active.pick(); err != nil || got != "wss://active.example" {
		t.Fatalf("expected active server, got %q (%v)", got, err)
	}

	fallback := webSocketServersResponse{Servers: []webSocketServer{{URL: "wss://draining.example", Status: "draining"}}}
	if got, err := fallback.pick(); err != nil || got != "wss://draining.example" {
		t.Fatalf("expected first listed server, got %q (%v)", got, err)
	}

	if _, err := (webSocketServersResponse{}).pick(); !errors.Is(err, errNoWebSocketServer) {
		t.Fatalf("expected errNoWebSocketServer, got %v", err)
	}
}

func TestResolveWebSocketBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/inscriptions/websocket-servers" || request.Header.Get("x-api-key") != "key" {
			http.NotFound(writer, request)
			return
		}
		_, _ = writer.Write([]byte(`{"servers":[{"url":"wss://one.example","status":"active"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	got, err := client.resolveWebSocketBaseURL(context.Background())
	if err != nil || got != "wss://one.example" {
		t.Fatalf("unexpected websocket url %q (%v)", got, err)
	}

	pinned, err := NewClient(Config{APIKey: "key", BaseURL: server.URL, WebSocketBaseURL: "wss://pinned.example"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if got, _ := pinned.resolveWebSocketBaseURL(context.Background()); got != "wss://pinned.example" {
		t.Fatalf("expected pinned websocket url, got %q", got)
	}
}
