// Package ai abstracts the upstream conversational AI endpoint. Providers
// implement the same two operations; selecting one is static configuration.
package ai

import (
	"context"

	"github.com/pavelkonansro/AIc/internal/config"
	"github.com/pavelkonansro/AIc/internal/model"
)

// Message is one turn of conversational context sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the provider's answer to a chat turn.
type Reply struct {
	Message  string
	Model    string
	Provider string
	Usage    *model.TokenUsage
}

// Health reports provider reachability and the models it serves.
type Health struct {
	IsHealthy bool     `json:"isHealthy"`
	Error     string   `json:"error,omitempty"`
	Models    []string `json:"models,omitempty"`
	BaseURL   string   `json:"baseUrl"`
	Provider  string   `json:"provider"`
}

// Provider is the capability every upstream implements.
type Provider interface {
	Reply(ctx context.Context, history []Message, systemPolicy string, tier model.AgeTier) (*Reply, error)
	HealthCheck(ctx context.Context) (*Health, error)
}

// New builds the configured provider wrapped in the fail-soft layer.
func New(cfg *config.Config) Provider {
	var upstream *OpenAICompatProvider
	switch cfg.AIProvider {
	case "openrouter":
		upstream = NewOpenAICompat("openrouter", cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel, map[string]string{
			"HTTP-Referer": "https://aic-app.com",
			"X-Title":      "AIc - AI Companion for Teens",
		})
	default:
		upstream = NewOpenAICompat("lm_studio", cfg.LMStudioBaseURL, cfg.LMStudioAPIKey, cfg.LMStudioModel, nil)
	}
	return NewFailsoft(upstream)
}
