package ai

import (
	"context"
	"log"

	"github.com/pavelkonansro/AIc/internal/model"
)

// FallbackModelID tags replies produced by the fail-soft path.
const FallbackModelID = "fallback"

// FallbackMessage is shown when the upstream is unreachable. A chat for
// vulnerable users must never surface a raw upstream error.
const FallbackMessage = "Извините, я временно недоступен. Попробуйте позже или обратитесь к взрослому, которому доверяете."

// Failsoft wraps a provider and converts every failure into a fixed safe
// reply carrying the wrapped provider's identity. Reply never returns an
// error, so the orchestrator's persistence and notification steps run
// uniformly whether the upstream call succeeded or not.
type Failsoft struct {
	upstream Provider
	name     string
}

func NewFailsoft(upstream *OpenAICompatProvider) *Failsoft {
	return &Failsoft{upstream: upstream, name: upstream.name}
}

func (f *Failsoft) Reply(ctx context.Context, history []Message, systemPolicy string, tier model.AgeTier) (*Reply, error) {
	reply, err := f.upstream.Reply(ctx, history, systemPolicy, tier)
	if err != nil {
		log.Printf("[AI] %s unavailable, serving fallback: %v", f.name, err)
		return &Reply{
			Message:  FallbackMessage,
			Model:    FallbackModelID,
			Provider: f.name,
		}, nil
	}
	if reply.Message == "" {
		reply.Message = FallbackMessage
	}
	return reply, nil
}

func (f *Failsoft) HealthCheck(ctx context.Context) (*Health, error) {
	return f.upstream.HealthCheck(ctx)
}
