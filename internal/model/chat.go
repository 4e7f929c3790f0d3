package model

import "time"

// Session lifecycle statuses. Sessions are never deleted, only ended.
const (
	SessionActive = "active"
	SessionEnded  = "ended"
	SessionPaused = "paused"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Safety flags stored on messages.
const (
	FlagSafe           = "safe"
	FlagCrisisResponse = "crisis_response"
	FlagError          = "error"
)

// ChatSession is a bounded conversational context between one user and the assistant.
type ChatSession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// SessionWithUser is a session joined with the fields of its owner
// the orchestrator needs (age signal, nick).
type SessionWithUser struct {
	ChatSession
	User User `json:"user"`
}

// SessionSummary is a session row with its message count, for listings.
type SessionSummary struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"startedAt"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
	MessageCount int        `json:"messageCount"`
}

// TokenUsage mirrors the usage block of an OpenAI-compatible completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatMessage is one append-only row of the message log. Ordering is
// created_at ascending; rows are never mutated after insert.
type ChatMessage struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"sessionId"`
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	SafetyFlag *string     `json:"safetyFlag,omitempty"`
	Model      *string     `json:"model,omitempty"`
	Provider   *string     `json:"provider,omitempty"`
	Usage      *TokenUsage `json:"usage,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// SafetyLogEntry records a flagged message for later review.
type SafetyLogEntry struct {
	SessionID string
	Content   string
	Flag      string
	Reason    string
	Action    string
}
