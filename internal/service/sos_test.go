package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pavelkonansro/AIc/internal/model"
)

type stubContactStore struct {
	contacts []model.SosContact
}

func (s stubContactStore) Contacts(ctx context.Context, country, locale string) ([]model.SosContact, error) {
	return s.contacts, nil
}

func TestCrisisCheckDetects(t *testing.T) {
	safetyLog := &fakeSafetyLog{}
	svc := NewSosService(stubContactStore{}, safetyLog)

	result := svc.CrisisCheck(context.Background(), "я хочу покончить с собой")
	assert.True(t, result.IsCrisis)
	assert.GreaterOrEqual(t, result.Confidence, 0.3)
	assert.NotEmpty(t, result.Keywords)
	assert.Contains(t, result.Recommendation, "экстренных служб")
	assert.Len(t, safetyLog.entries, 1)
}

func TestCrisisCheckSafeText(t *testing.T) {
	safetyLog := &fakeSafetyLog{}
	svc := NewSosService(stubContactStore{}, safetyLog)

	result := svc.CrisisCheck(context.Background(), "какая сегодня погода?")
	assert.False(t, result.IsCrisis)
	assert.Zero(t, result.Confidence)
	assert.Empty(t, result.Recommendation)
	assert.Empty(t, safetyLog.entries, "safe text must not hit the safety log")
}

func TestCrisisCheckRecommendationByType(t *testing.T) {
	svc := NewSosService(stubContactStore{}, &fakeSafetyLog{})

	selfHarm := svc.CrisisCheck(context.Background(), "иногда я режу себя")
	suicide := svc.CrisisCheck(context.Background(), "не хочу жить")
	assert.NotEqual(t, selfHarm.Recommendation, suicide.Recommendation)
}
