package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pavelkonansro/AIc/internal/safety"
)

// SafetyWebhook posts crisis detections to an ops channel so a human can
// review them. Alerts are fire-and-forget: a webhook outage must never
// touch the chat turn.
type SafetyWebhook struct {
	webhookURL string
	client     *http.Client
}

func NewSafetyWebhook(webhookURL string) *SafetyWebhook {
	return &SafetyWebhook{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type safetyAlertPayload struct {
	Username string `json:"username,omitempty"`
	Content  string `json:"content"`
}

// Alert posts a crisis detection. The message text itself is not
// forwarded, only session id, type and confidence.
func (s *SafetyWebhook) Alert(sessionID string, verdict safety.Verdict) {
	if s.webhookURL == "" {
		return
	}
	go func() {
		payload := safetyAlertPayload{
			Username: "AIc Safety",
			Content: fmt.Sprintf("⚠️ Crisis detected: type=%s confidence=%.2f session=%s keywords=%d",
				verdict.Type, verdict.Confidence, sessionID, len(verdict.Keywords)),
		}
		body, err := json.Marshal(payload)
		if err != nil {
			log.Printf("[Safety] webhook marshal error: %v", err)
			return
		}
		resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("[Safety] webhook send error: %v", err)
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			log.Printf("[Safety] webhook HTTP %d", resp.StatusCode)
		}
	}()
}
