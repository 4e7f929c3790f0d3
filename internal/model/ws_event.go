package model

import "encoding/json"

// WSEvent is the envelope for every frame on the chat socket.
type WSEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type WSJoinSession struct {
	SessionID string `json:"sessionId"`
}

type WSSendMessage struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

type WSJoined struct {
	SessionID string `json:"sessionId"`
}

type WSMessage struct {
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	Timestamp string      `json:"timestamp"`
	Model     *string     `json:"model,omitempty"`
	Provider  *string     `json:"provider,omitempty"`
	Usage     *TokenUsage `json:"usage,omitempty"`
}

type WSTyping struct {
	IsTyping  bool   `json:"isTyping"`
	Timestamp string `json:"timestamp"`
}

type WSError struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
