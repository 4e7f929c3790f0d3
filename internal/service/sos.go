package service

import (
	"context"
	"log"
	"math"

	"github.com/pavelkonansro/AIc/internal/model"
	"github.com/pavelkonansro/AIc/internal/safety"
)

type SosContactStore interface {
	Contacts(ctx context.Context, country, locale string) ([]model.SosContact, error)
}

// CrisisCheckResult is the crisis-check endpoint's answer.
type CrisisCheckResult struct {
	IsCrisis       bool     `json:"isCrisis"`
	Confidence     float64  `json:"confidence"`
	Keywords       []string `json:"keywords"`
	Recommendation string   `json:"recommendation"`
}

// SosService serves emergency contacts and the standalone crisis check.
type SosService struct {
	contacts  SosContactStore
	safetyLog SafetyLogStore
}

func NewSosService(contacts SosContactStore, safetyLog SafetyLogStore) *SosService {
	return &SosService{contacts: contacts, safetyLog: safetyLog}
}

// Contacts returns the contact list for a country, already ordered by the
// store: priority descending, then name ascending.
func (s *SosService) Contacts(ctx context.Context, country, locale string) ([]model.SosContact, error) {
	return s.contacts.Contacts(ctx, country, locale)
}

// CrisisCheck classifies free text and attaches a recommendation keyed by
// the crisis type. Detections are recorded in the safety log.
func (s *SosService) CrisisCheck(ctx context.Context, text string) CrisisCheckResult {
	verdict := safety.Classify(text)

	result := CrisisCheckResult{
		IsCrisis:   verdict.IsCrisis,
		Confidence: math.Round(verdict.Confidence*100) / 100,
		Keywords:   verdict.Keywords,
	}
	if !verdict.IsCrisis {
		return result
	}

	result.Recommendation = safety.RecommendationFor(verdict.Type)

	entry := model.SafetyLogEntry{
		Content: text,
		Flag:    "crisis_detected",
		Reason:  "Crisis check endpoint",
		Action:  "warning",
	}
	if verdict.Confidence > 0.7 {
		entry.Action = "escalate"
	}
	if err := s.safetyLog.Insert(ctx, entry); err != nil {
		log.Printf("[Safety] log write failed: %v", err)
	}

	return result
}
