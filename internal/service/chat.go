package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pavelkonansro/AIc/internal/ai"
	"github.com/pavelkonansro/AIc/internal/model"
	"github.com/pavelkonansro/AIc/internal/safety"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUserNotFound    = errors.New("user not found")
)

// ProviderSafetySystem tags replies produced by the crisis branch instead
// of the AI provider.
const ProviderSafetySystem = "safety-system"

const systemPolicy = "Ты — AIc, дружелюбный ИИ-компаньон для подростков. Отвечай тепло, поддерживающе и простым языком. " +
	"Никогда не давай медицинских диагнозов и не обсуждай способы причинения вреда. " +
	"Если собеседнику плохо, мягко посоветуй поговорить со взрослым, которому он доверяет."

// Store interfaces are satisfied by the pgx repositories; tests substitute
// in-memory fakes.

type SessionStore interface {
	Create(ctx context.Context, userID string) (*model.ChatSession, error)
	GetWithUser(ctx context.Context, sessionID string) (*model.SessionWithUser, error)
	End(ctx context.Context, sessionID string) (*model.ChatSession, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.SessionSummary, error)
}

type MessageStore interface {
	Insert(ctx context.Context, sessionID, role, content string, safetyFlag *string, modelID, provider *string, usage *model.TokenUsage) (*model.ChatMessage, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error)
	Recent(ctx context.Context, sessionID string, n int) ([]model.ChatMessage, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type SafetyLogStore interface {
	Insert(ctx context.Context, entry model.SafetyLogEntry) error
}

// MessageOptions carries the per-turn flags decided by the gateway.
type MessageOptions struct {
	// RequestPush queues a push notification for the reply. The gateway
	// sets it when nobody is present in the room to see the live answer.
	RequestPush bool
	Data        map[string]string
}

// ChatService orchestrates a chat turn: classify, branch to crisis
// template or AI provider, persist both sides, fan out, maybe push.
type ChatService struct {
	sessions  SessionStore
	messages  MessageStore
	users     UserStore
	safetyLog SafetyLogStore
	provider  ai.Provider
	pusher    Pusher
	alerts    *SafetyWebhook
	contextN  int
}

func NewChatService(sessions SessionStore, messages MessageStore, users UserStore, safetyLog SafetyLogStore, provider ai.Provider, pusher Pusher, alerts *SafetyWebhook, contextN int) *ChatService {
	if contextN <= 0 {
		contextN = 10
	}
	return &ChatService{
		sessions:  sessions,
		messages:  messages,
		users:     users,
		safetyLog: safetyLog,
		provider:  provider,
		pusher:    pusher,
		alerts:    alerts,
		contextN:  contextN,
	}
}

func (s *ChatService) CreateSession(ctx context.Context, userID string) (*model.ChatSession, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return s.sessions.Create(ctx, userID)
}

func (s *ChatService) GetSession(ctx context.Context, sessionID string) (*model.SessionWithUser, error) {
	sw, err := s.sessions.GetWithUser(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sw, nil
}

func (s *ChatService) GetMessages(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	return s.messages.ListBySession(ctx, sessionID, limit)
}

func (s *ChatService) EndSession(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	ended, err := s.sessions.End(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return ended, nil
}

func (s *ChatService) ListUserSessions(ctx context.Context, userID string, limit int) ([]model.SessionSummary, error) {
	return s.sessions.ListByUser(ctx, userID, limit)
}

// ProcessUserMessage runs one chat turn. The only error it returns is
// ErrSessionNotFound for an unknown session; everything after that point
// degrades into a persisted fallback reply. At-most-once: no step is
// retried. Turns for the same session are deliberately not serialized —
// two participants messaging at once produce two independent turns, and
// readers order the log by created_at.
func (s *ChatService) ProcessUserMessage(ctx context.Context, sessionID, text string, opts MessageOptions) (*ai.Reply, error) {
	sw, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	verdict := safety.Classify(text)
	if verdict.IsCrisis {
		return s.crisisTurn(ctx, sw, text, verdict, opts), nil
	}

	reply, err := s.assistantTurn(ctx, sw, text, opts)
	if err != nil {
		log.Printf("[Chat] turn failed for session %s: %v", sessionID, err)
		return s.fallbackTurn(ctx, sw, opts), nil
	}
	return reply, nil
}

// crisisTurn answers from the template table without touching the provider.
func (s *ChatService) crisisTurn(ctx context.Context, sw *model.SessionWithUser, text string, verdict safety.Verdict, opts MessageOptions) *ai.Reply {
	flag := string(verdict.Type)
	if _, err := s.messages.Insert(ctx, sw.ID, model.RoleUser, text, &flag, nil, nil, nil); err != nil {
		log.Printf("[Chat] persist crisis user message: %v", err)
	}

	s.logSafetyEvent(ctx, sw.ID, text, verdict)
	if s.alerts != nil {
		s.alerts.Alert(sw.ID, verdict)
	}

	response := safety.ResponseFor(verdict.Type)
	respFlag := model.FlagCrisisResponse
	provider := ProviderSafetySystem
	if _, err := s.messages.Insert(ctx, sw.ID, model.RoleAssistant, response, &respFlag, nil, &provider, nil); err != nil {
		log.Printf("[Chat] persist crisis response: %v", err)
	}

	if opts.RequestPush {
		s.requestPush(ctx, sw.UserID, QueueInput{
			Type:              NotifyCrisisSupport,
			Title:             "AIc рядом с тобой",
			Body:              response,
			Data:              s.pushData(sw.ID, opts),
			Priority:          "high",
			SkipWhenNoDevices: true,
		})
	}

	return &ai.Reply{Message: response, Provider: ProviderSafetySystem}
}

// assistantTurn is the safe branch: persist, gather context, call the
// provider, persist the reply, maybe push.
func (s *ChatService) assistantTurn(ctx context.Context, sw *model.SessionWithUser, text string, opts MessageOptions) (*ai.Reply, error) {
	flag := model.FlagSafe
	if _, err := s.messages.Insert(ctx, sw.ID, model.RoleUser, text, &flag, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	recent, err := s.messages.Recent(ctx, sw.ID, s.contextN)
	if err != nil {
		return nil, fmt.Errorf("load context: %w", err)
	}
	history := make([]ai.Message, 0, len(recent))
	for _, m := range recent {
		history = append(history, ai.Message{Role: m.Role, Content: m.Content})
	}

	tier := sw.User.AgeTier(time.Now())
	reply, err := s.provider.Reply(ctx, history, systemPolicy, tier)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	if _, err := s.messages.Insert(ctx, sw.ID, model.RoleAssistant, reply.Message, &flag, &reply.Model, &reply.Provider, reply.Usage); err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}

	if opts.RequestPush {
		s.requestPush(ctx, sw.UserID, QueueInput{
			Type:              NotifyAssistantMessage,
			Title:             "AIc ответил",
			Body:              reply.Message,
			Data:              s.pushData(sw.ID, opts),
			SkipWhenNoDevices: true,
		})
	}

	return reply, nil
}

// fallbackTurn absorbs a failed turn into the generic reply. Best effort
// top to bottom: even the persistence of the fallback may fail, and the
// user still gets the reply text.
func (s *ChatService) fallbackTurn(ctx context.Context, sw *model.SessionWithUser, opts MessageOptions) *ai.Reply {
	reply := &ai.Reply{
		Message:  ai.FallbackMessage,
		Model:    ai.FallbackModelID,
		Provider: "system",
	}

	flag := model.FlagError
	if _, err := s.messages.Insert(ctx, sw.ID, model.RoleAssistant, reply.Message, &flag, &reply.Model, &reply.Provider, nil); err != nil {
		log.Printf("[Chat] persist fallback: %v", err)
	}

	if opts.RequestPush {
		s.requestPush(ctx, sw.UserID, QueueInput{
			Type:              NotifyAssistantMessage,
			Title:             "AIc ответил",
			Body:              reply.Message,
			Data:              s.pushData(sw.ID, opts),
			SkipWhenNoDevices: true,
		})
	}
	return reply
}

// requestPush hands a notification to the dispatcher. Failures are logged
// and swallowed; a failed push never fails the chat turn.
func (s *ChatService) requestPush(ctx context.Context, userID string, input QueueInput) {
	if s.pusher == nil {
		return
	}
	input.UserID = userID
	if _, err := s.pusher.Queue(ctx, input); err != nil {
		log.Printf("[Push] dispatch failed for user %s: %v", userID, err)
	}
}

func (s *ChatService) pushData(sessionID string, opts MessageOptions) map[string]string {
	data := map[string]string{"sessionId": sessionID}
	for k, v := range opts.Data {
		data[k] = v
	}
	return data
}

func (s *ChatService) logSafetyEvent(ctx context.Context, sessionID, content string, verdict safety.Verdict) {
	action := "warning"
	if verdict.Confidence > 0.7 {
		action = "escalate"
	}
	entry := model.SafetyLogEntry{
		SessionID: sessionID,
		Content:   content,
		Flag:      string(verdict.Type),
		Reason:    fmt.Sprintf("Automated detection: %d keyword(s)", len(verdict.Keywords)),
		Action:    action,
	}
	if err := s.safetyLog.Insert(ctx, entry); err != nil {
		log.Printf("[Safety] log write failed: %v", err)
	}
}
