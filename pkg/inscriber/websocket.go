package inscriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
	socketio "github.com/zhouhui8915/go-socket.io-client"
	"go.uber.org/zap"
)

const defaultWebSocketInactivity = 30 * time.Second

var errNoWebSocketServer = errors.New("no websocket servers available")

type webSocketServer struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

type webSocketServersResponse struct {
	Servers     []webSocketServer `json:"servers"`
	Recommended string            `json:"recommended"`
}

// pick returns the recommended server, else the first active one, else the
// first listed.
func (r webSocketServersResponse) pick() (string, error) {
	if recommended := strings.TrimSpace(r.Recommended); recommended != "" {
		return recommended, nil
	}
	var listed []string
	for _, server := range r.Servers {
		url := strings.TrimSpace(server.URL)
		if url == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(server.Status), "active") {
			return url, nil
		}
		listed = append(listed, url)
	}
	if len(listed) == 0 {
		return "", errNoWebSocketServer
	}
	return listed[0], nil
}

func (c *Client) resolveWebSocketBaseURL(ctx context.Context) (string, error) {
	if c.webSocketBaseURL != "" {
		return c.webSocketBaseURL, nil
	}
	var response webSocketServersResponse
	if err := c.doJSON(ctx, http.MethodGet, "/inscriptions/websocket-servers", nil, &response); err != nil {
		return "", err
	}
	return response.pick()
}

// looseString decodes a JSON string, number or boolean as its text. Event
// fields such as id and progress arrive as either strings or numbers.
type looseString string

func (s *looseString) UnmarshalJSON(raw []byte) error {
	if bytes.Equal(raw, []byte("null")) {
		*s = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		*s = looseString(strings.TrimSpace(text))
		return nil
	}
	if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
		*s = ""
		return nil
	}
	*s = looseString(raw)
	return nil
}

// inscriptionEvent is the payload of the inscription-progress and
// inscription-complete socket events.
type inscriptionEvent struct {
	ID            looseString `json:"id"`
	JobID         looseString `json:"jobId"`
	TxID          looseString `json:"tx_id"`
	TransactionID looseString `json:"transactionId"`
	Status        looseString `json:"status"`
	Progress      looseString `json:"progress"`
	TopicID       looseString `json:"topicId"`
	TopicIDSnake  looseString `json:"topic_id"`
	Error         looseString `json:"error"`

	raw map[string]any
}

func decodeInscriptionEvent(payload map[string]any) (inscriptionEvent, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return inscriptionEvent{}, fmt.Errorf("failed to encode inscription event: %w", err)
	}
	var event inscriptionEvent
	if err := json.Unmarshal(encoded, &event); err != nil {
		return inscriptionEvent{}, fmt.Errorf("failed to decode inscription event: %w", err)
	}
	event.raw = payload
	return event, nil
}

// belongsTo reports whether the event is for the given normalized
// transaction ID. An empty ID matches every event.
func (e inscriptionEvent) belongsTo(transactionID string) bool {
	if transactionID == "" {
		return true
	}
	for _, candidate := range []looseString{e.JobID, e.TxID, e.TransactionID} {
		if candidate != "" && shared.NormalizeTransactionID(string(candidate)) == transactionID {
			return true
		}
	}
	return false
}

// progress is the reported percentage, zero when absent or unparsable.
func (e inscriptionEvent) progress() float64 {
	value, err := strconv.ParseFloat(string(e.Progress), 64)
	if err != nil {
		return 0
	}
	return value
}

func (e inscriptionEvent) finished() bool {
	return strings.EqualFold(string(e.Status), "completed") || e.progress() >= 100
}

func (e inscriptionEvent) job() InscriptionJob {
	topicID := e.TopicID
	if topicID == "" {
		topicID = e.TopicIDSnake
	}
	status := string(e.Status)
	if status == "" {
		status = "completed"
	}
	return InscriptionJob{
		ID:            string(e.ID),
		Status:        status,
		Completed:     true,
		TxID:          string(e.TxID),
		TransactionID: string(e.TransactionID),
		TopicID:       string(topicID),
		Error:         string(e.Error),
	}
}

// waitForInscriptionWebSocket listens for progress events for the job on the
// inscription service's socket.io endpoint. It gives up when no event arrives
// within the inactivity timeout.
func (c *Client) waitForInscriptionWebSocket(
	ctx context.Context,
	transactionID string,
	progressCallback ProgressCallback,
) (InscriptionJob, error) {
	wsURL, err := c.resolveWebSocketBaseURL(ctx)
	if err != nil {
		return InscriptionJob{}, err
	}

	socket, err := socketio.NewClient(wsURL, &socketio.Options{
		Transport: "websocket",
		Query:     map[string]string{"apiKey": c.apiKey},
		Header:    map[string][]string{"x-api-key": {c.apiKey}},
	})
	if err != nil {
		return InscriptionJob{}, err
	}

	type socketEvent struct {
		payload  map[string]any
		complete bool
	}
	events := make(chan socketEvent, 4)
	failures := make(chan error, 2)
	done := make(chan struct{})
	defer close(done)

	emit := func(event socketEvent) {
		select {
		case events <- event:
		case <-done:
		}
	}
	fail := func(err error) {
		select {
		case failures <- err:
		case <-done:
		default:
		}
	}

	_ = socket.On("error", func(message any) {
		fail(fmt.Errorf("%v", message))
	})
	_ = socket.On("inscription-error", func(payload map[string]any) {
		message, _ := payload["error"].(string)
		if strings.TrimSpace(message) == "" {
			message = "websocket inscription error"
		}
		fail(errors.New(message))
	})
	_ = socket.On("inscription-progress", func(payload map[string]any) {
		c.logger.Debug("inscription progress", zap.Any("payload", payload))
		emit(socketEvent{payload: payload})
	})
	_ = socket.On("inscription-complete", func(payload map[string]any) {
		emit(socketEvent{payload: payload, complete: true})
	})

	inactivity := defaultWebSocketInactivity
	if c.webSocketInactivityTimeoutMs > 0 {
		inactivity = time.Duration(c.webSocketInactivityTimeoutMs) * time.Millisecond
	}
	timer := time.NewTimer(inactivity)
	defer timer.Stop()

	wanted := shared.NormalizeTransactionID(transactionID)
	for {
		select {
		case <-ctx.Done():
			return InscriptionJob{}, ctx.Err()
		case <-timer.C:
			return InscriptionJob{}, fmt.Errorf("websocket inscription timeout after %s", inactivity)
		case err := <-failures:
			return InscriptionJob{}, err
		case received := <-events:
			timer.Reset(inactivity)

			event, err := decodeInscriptionEvent(received.payload)
			if err != nil {
				c.logger.Debug("ignoring inscription event", zap.Error(err))
				continue
			}
			if !event.belongsTo(wanted) {
				continue
			}
			if !received.complete && progressCallback != nil {
				progressCallback(ProgressData{
					Stage:           ProgressStageConfirming,
					Message:         "Processing inscription",
					ProgressPercent: event.progress(),
					Details:         event.raw,
				})
			}
			if received.complete || event.finished() {
				return event.job(), nil
			}
		}
	}
}
