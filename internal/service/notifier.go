package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Notification types emitted by the chat pipeline.
const (
	NotifyAssistantMessage = "chat.assistant_message"
	NotifyCrisisSupport    = "chat.crisis_support"
)

const bodyPreviewLimit = 140

// QueueInput is the push-gateway contract. Body is truncated to a bounded
// preview before it leaves the core.
type QueueInput struct {
	UserID            string            `json:"userId"`
	Type              string            `json:"type"`
	Title             string            `json:"title"`
	Body              string            `json:"body"`
	Data              map[string]string `json:"data,omitempty"`
	Priority          string            `json:"priority,omitempty"`
	SkipWhenNoDevices bool              `json:"skipWhenNoDevices,omitempty"`
}

type QueueResult struct {
	Deliveries int  `json:"deliveries"`
	Skipped    bool `json:"skipped,omitempty"`
}

// Pusher is what the orchestrator depends on. The real implementation
// talks to the external push gateway; tests substitute a recorder.
type Pusher interface {
	Queue(ctx context.Context, input QueueInput) (*QueueResult, error)
}

// Notifier queues asynchronous push delivery through an HTTP gateway.
// Delivery itself (FCM/APNs, retries) is the gateway's problem; the core
// only hands over the request and never waits for confirmed delivery.
type Notifier struct {
	gatewayURL string
	gatewayKey string
	client     *http.Client
}

func NewNotifier(gatewayURL, gatewayKey string) *Notifier {
	return &Notifier{
		gatewayURL: gatewayURL,
		gatewayKey: gatewayKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Queue(ctx context.Context, input QueueInput) (*QueueResult, error) {
	if n.gatewayURL == "" {
		return &QueueResult{Skipped: true}, nil
	}

	input.Body = TruncateBody(input.Body)
	if input.Priority == "" {
		input.Priority = "normal"
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.gatewayURL+"/notifications/queue", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.gatewayKey != "" {
		req.Header.Set("X-Gateway-Key", n.gatewayKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("push gateway HTTP %d", resp.StatusCode)
	}

	result := &QueueResult{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	log.Printf("[Push] queued %s for user %s (deliveries=%d skipped=%v)", input.Type, input.UserID, result.Deliveries, result.Skipped)
	return result, nil
}

// TruncateBody bounds a notification preview to 140 characters, appending
// an ellipsis when cut. Rune-safe, word boundaries ignored.
func TruncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= bodyPreviewLimit {
		return body
	}
	return string(runes[:bodyPreviewLimit]) + "…"
}
