package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pavelkonansro/AIc/internal/model"
)

const (
	replyTimeout  = 30 * time.Second
	healthTimeout = 5 * time.Second
)

// OpenAICompatProvider talks to any OpenAI-compatible /chat/completions
// endpoint: LM Studio locally, OpenRouter in production.
type OpenAICompatProvider struct {
	name         string
	baseURL      string
	apiKey       string
	model        string
	extraHeaders map[string]string
	client       *http.Client
}

func NewOpenAICompat(name, baseURL, apiKey, modelID string, extraHeaders map[string]string) *OpenAICompatProvider {
	return &OpenAICompatProvider{
		name:         name,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		model:        modelID,
		extraHeaders: extraHeaders,
		client:       &http.Client{Timeout: replyTimeout},
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type completionChoice struct {
	Index        int      `json:"index"`
	Message      *Message `json:"message,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

type completionResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
	Usage   *model.TokenUsage  `json:"usage,omitempty"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Reply prepends the system policy to the history and asks the upstream
// for a completion. Errors propagate; the fail-soft wrapper absorbs them.
func (p *OpenAICompatProvider) Reply(ctx context.Context, history []Message, systemPolicy string, tier model.AgeTier) (*Reply, error) {
	full := make([]Message, 0, len(history)+1)
	full = append(full, Message{Role: model.RoleSystem, Content: systemPolicy})
	full = append(full, history...)

	body, err := json.Marshal(completionRequest{
		Model:       p.model,
		Messages:    full,
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	p.setHeaders(req)

	log.Printf("[AI] %s request, tier=%s, history=%d", p.name, tier, len(history))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s API error [%d]: %s", p.name, resp.StatusCode, string(respBody))
	}

	var result completionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message == nil {
		return nil, fmt.Errorf("%s returned no choices", p.name)
	}

	return &Reply{
		Message:  result.Choices[0].Message.Content,
		Model:    p.model,
		Provider: p.name,
		Usage:    result.Usage,
	}, nil
}

// HealthCheck hits /models with a short timeout.
func (p *OpenAICompatProvider) HealthCheck(ctx context.Context) (*Health, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return nil, err
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return &Health{IsHealthy: false, Error: err.Error(), BaseURL: p.baseURL, Provider: p.name}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Health{
			IsHealthy: false,
			Error:     fmt.Sprintf("HTTP %d", resp.StatusCode),
			BaseURL:   p.baseURL,
			Provider:  p.name,
		}, nil
	}

	var models modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return &Health{IsHealthy: false, Error: err.Error(), BaseURL: p.baseURL, Provider: p.name}, nil
	}

	ids := make([]string, 0, len(models.Data))
	for _, m := range models.Data {
		ids = append(ids, m.ID)
	}
	return &Health{IsHealthy: true, Models: ids, BaseURL: p.baseURL, Provider: p.name}, nil
}

func (p *OpenAICompatProvider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	for k, v := range p.extraHeaders {
		req.Header.Set(k, v)
	}
}
