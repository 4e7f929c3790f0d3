package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelkonansro/AIc/internal/ai"
	"github.com/pavelkonansro/AIc/internal/model"
	"github.com/pavelkonansro/AIc/internal/safety"
)

type fakeSessionStore struct {
	sessions map[string]*model.SessionWithUser
}

func (f *fakeSessionStore) Create(ctx context.Context, userID string) (*model.ChatSession, error) {
	s := &model.ChatSession{ID: "s-new", UserID: userID, Status: model.SessionActive, StartedAt: time.Now()}
	return s, nil
}

func (f *fakeSessionStore) GetWithUser(ctx context.Context, sessionID string) (*model.SessionWithUser, error) {
	sw, ok := f.sessions[sessionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return sw, nil
}

func (f *fakeSessionStore) End(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	sw, ok := f.sessions[sessionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	sw.Status = model.SessionEnded
	sw.EndedAt = &now
	return &sw.ChatSession, nil
}

func (f *fakeSessionStore) ListByUser(ctx context.Context, userID string, limit int) ([]model.SessionSummary, error) {
	return nil, nil
}

type fakeMessageStore struct {
	rows      []model.ChatMessage
	insertErr error
	clock     time.Time
}

func (f *fakeMessageStore) Insert(ctx context.Context, sessionID, role, content string, safetyFlag *string, modelID, provider *string, usage *model.TokenUsage) (*model.ChatMessage, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.clock = f.clock.Add(time.Millisecond)
	m := model.ChatMessage{
		ID: "m", SessionID: sessionID, Role: role, Content: content,
		SafetyFlag: safetyFlag, Model: modelID, Provider: provider, Usage: usage,
		CreatedAt: f.clock,
	}
	f.rows = append(f.rows, m)
	return &m, nil
}

func (f *fakeMessageStore) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	for _, m := range f.rows {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) Recent(ctx context.Context, sessionID string, n int) ([]model.ChatMessage, error) {
	all, _ := f.ListBySession(ctx, sessionID, 0)
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

type fakeUserStore struct{}

func (fakeUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "missing" {
		return nil, pgx.ErrNoRows
	}
	return &model.User{ID: id, Nick: "tester"}, nil
}

type fakeSafetyLog struct {
	entries []model.SafetyLogEntry
}

func (f *fakeSafetyLog) Insert(ctx context.Context, entry model.SafetyLogEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type stubProvider struct {
	calls int
	reply *ai.Reply
	err   error
}

func (s *stubProvider) Reply(ctx context.Context, history []ai.Message, systemPolicy string, tier model.AgeTier) (*ai.Reply, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.reply, nil
}

func (s *stubProvider) HealthCheck(ctx context.Context) (*ai.Health, error) {
	return &ai.Health{IsHealthy: true}, nil
}

type recordingPusher struct {
	inputs []QueueInput
	err    error
}

func (r *recordingPusher) Queue(ctx context.Context, input QueueInput) (*QueueResult, error) {
	r.inputs = append(r.inputs, input)
	if r.err != nil {
		return nil, r.err
	}
	return &QueueResult{Deliveries: 1}, nil
}

func newTestChatService(provider ai.Provider, pusher Pusher) (*ChatService, *fakeMessageStore, *fakeSafetyLog) {
	sessions := &fakeSessionStore{sessions: map[string]*model.SessionWithUser{
		"s1": {
			ChatSession: model.ChatSession{ID: "s1", UserID: "u1", Status: model.SessionActive, StartedAt: time.Now()},
			User:        model.User{ID: "u1", Nick: "tester"},
		},
	}}
	messages := &fakeMessageStore{clock: time.Now()}
	safetyLog := &fakeSafetyLog{}
	svc := NewChatService(sessions, messages, fakeUserStore{}, safetyLog, provider, pusher, nil, 10)
	return svc, messages, safetyLog
}

func TestProcessUnknownSession(t *testing.T) {
	svc, _, _ := newTestChatService(&stubProvider{}, &recordingPusher{})
	_, err := svc.ProcessUserMessage(context.Background(), "nope", "hi", MessageOptions{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCrisisTurnSkipsProvider(t *testing.T) {
	provider := &stubProvider{}
	pusher := &recordingPusher{}
	svc, messages, safetyLog := newTestChatService(provider, pusher)

	reply, err := svc.ProcessUserMessage(context.Background(), "s1", "я не хочу жить", MessageOptions{RequestPush: true})
	require.NoError(t, err)

	assert.Equal(t, ProviderSafetySystem, reply.Provider)
	assert.Zero(t, provider.calls, "crisis branch must never call the provider")

	// Both segments of the template are present.
	assert.Contains(t, reply.Message, "Мне очень жаль")
	assert.Contains(t, reply.Message, "116 111")

	require.Len(t, messages.rows, 2)
	assert.Equal(t, model.RoleUser, messages.rows[0].Role)
	assert.Equal(t, string(safety.CrisisSuicide), *messages.rows[0].SafetyFlag)
	assert.Equal(t, model.FlagCrisisResponse, *messages.rows[1].SafetyFlag)

	require.Len(t, pusher.inputs, 1)
	assert.Equal(t, NotifyCrisisSupport, pusher.inputs[0].Type)
	assert.Equal(t, "high", pusher.inputs[0].Priority)
	assert.True(t, pusher.inputs[0].SkipWhenNoDevices)
	assert.Equal(t, "u1", pusher.inputs[0].UserID)

	require.Len(t, safetyLog.entries, 1)
	assert.Equal(t, string(safety.CrisisSuicide), safetyLog.entries[0].Flag)
}

func TestSafeTurnPersistsBothSides(t *testing.T) {
	provider := &stubProvider{reply: &ai.Reply{
		Message: "Привет! Чем займёмся?", Model: "test-model", Provider: "lm_studio",
		Usage: &model.TokenUsage{TotalTokens: 7},
	}}
	pusher := &recordingPusher{}
	svc, messages, _ := newTestChatService(provider, pusher)

	reply, err := svc.ProcessUserMessage(context.Background(), "s1", "Привет", MessageOptions{RequestPush: false})
	require.NoError(t, err)

	assert.Equal(t, "Привет! Чем займёмся?", reply.Message)
	assert.Equal(t, 1, provider.calls)

	require.Len(t, messages.rows, 2)
	assert.Equal(t, model.FlagSafe, *messages.rows[0].SafetyFlag)
	assert.Equal(t, model.FlagSafe, *messages.rows[1].SafetyFlag)
	assert.Equal(t, "test-model", *messages.rows[1].Model)
	require.NotNil(t, messages.rows[1].Usage)
	assert.Equal(t, 7, messages.rows[1].Usage.TotalTokens)

	// Member was present in the room, so no push.
	assert.Empty(t, pusher.inputs)
}

func TestSafeTurnPushesWhenRoomEmpty(t *testing.T) {
	provider := &stubProvider{reply: &ai.Reply{Message: "ответ", Model: "m", Provider: "lm_studio"}}
	pusher := &recordingPusher{}
	svc, _, _ := newTestChatService(provider, pusher)

	_, err := svc.ProcessUserMessage(context.Background(), "s1", "Привет", MessageOptions{
		RequestPush: true,
		Data:        map[string]string{"transport": "socket"},
	})
	require.NoError(t, err)

	require.Len(t, pusher.inputs, 1)
	assert.Equal(t, NotifyAssistantMessage, pusher.inputs[0].Type)
	assert.Equal(t, "s1", pusher.inputs[0].Data["sessionId"])
	assert.Equal(t, "socket", pusher.inputs[0].Data["transport"])
}

func TestProviderErrorFallsBackAndStillPersists(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream down")}
	svc, messages, _ := newTestChatService(provider, &recordingPusher{})

	reply, err := svc.ProcessUserMessage(context.Background(), "s1", "Привет", MessageOptions{})
	require.NoError(t, err)

	assert.Equal(t, ai.FallbackModelID, reply.Model)
	assert.Equal(t, ai.FallbackMessage, reply.Message)

	// User message and fallback assistant message are both on record.
	require.Len(t, messages.rows, 2)
	assert.Equal(t, model.RoleUser, messages.rows[0].Role)
	assert.Equal(t, model.FlagError, *messages.rows[1].SafetyFlag)
}

func TestPersistenceFailureFallsBack(t *testing.T) {
	provider := &stubProvider{reply: &ai.Reply{Message: "ok", Model: "m", Provider: "p"}}
	svc, messages, _ := newTestChatService(provider, &recordingPusher{})
	messages.insertErr = errors.New("db down")

	reply, err := svc.ProcessUserMessage(context.Background(), "s1", "Привет", MessageOptions{})
	require.NoError(t, err)
	assert.Equal(t, ai.FallbackModelID, reply.Model)
}

func TestPushFailureDoesNotFailTurn(t *testing.T) {
	provider := &stubProvider{reply: &ai.Reply{Message: "ok", Model: "m", Provider: "p"}}
	pusher := &recordingPusher{err: errors.New("gateway 502")}
	svc, _, _ := newTestChatService(provider, pusher)

	reply, err := svc.ProcessUserMessage(context.Background(), "s1", "Привет", MessageOptions{RequestPush: true})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Message)
}

func TestMessagesRoundTripAscending(t *testing.T) {
	provider := &stubProvider{reply: &ai.Reply{Message: "ответ", Model: "m", Provider: "p"}}
	svc, _, _ := newTestChatService(provider, &recordingPusher{})

	_, err := svc.ProcessUserMessage(context.Background(), "s1", "первое", MessageOptions{})
	require.NoError(t, err)
	_, err = svc.ProcessUserMessage(context.Background(), "s1", "второе", MessageOptions{})
	require.NoError(t, err)

	msgs, err := svc.GetMessages(context.Background(), "s1", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, "первое", msgs[0].Content)
	for i := 1; i < len(msgs); i++ {
		assert.True(t, msgs[i].CreatedAt.After(msgs[i-1].CreatedAt))
	}
}

func TestCreateSessionUnknownUser(t *testing.T) {
	svc, _, _ := newTestChatService(&stubProvider{}, &recordingPusher{})
	_, err := svc.CreateSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
