package handler

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pavelkonansro/AIc/internal/model"
	"github.com/pavelkonansro/AIc/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// StartSession creates a new chat session.
// POST /api/v1/chat/session
func (h *ChatHandler) StartSession(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.UserID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "userId is required"})
	}

	session, err := h.chat.CreateSession(c.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		log.Printf("[Chat] StartSession error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create session"})
	}

	return c.Status(201).JSON(fiber.Map{
		"sessionId": session.ID,
		"startedAt": session.StartedAt,
		"status":    session.Status,
	})
}

// GetSession returns one session with its owner.
// GET /api/v1/chat/session/:id
func (h *ChatHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.chat.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		log.Printf("[Chat] GetSession error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get session"})
	}
	return c.JSON(session)
}

// GetMessages returns the session's messages, oldest first.
// GET /api/v1/chat/session/:id/messages?limit=50
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	msgs, err := h.chat.GetMessages(c.Context(), c.Params("id"), limit)
	if err != nil {
		log.Printf("[Chat] GetMessages error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get messages"})
	}
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// EndSession marks a session ended.
// POST /api/v1/chat/session/:id/end
func (h *ChatHandler) EndSession(c *fiber.Ctx) error {
	session, err := h.chat.EndSession(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		log.Printf("[Chat] EndSession error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to end session"})
	}
	return c.JSON(fiber.Map{
		"sessionId": session.ID,
		"endedAt":   session.EndedAt,
		"status":    session.Status,
	})
}

// ListSessions returns the authenticated user's sessions, newest first.
// GET /api/v1/chat/sessions?limit=10
func (h *ChatHandler) ListSessions(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	sessions, err := h.chat.ListUserSessions(c.Context(), userID, limit)
	if err != nil {
		log.Printf("[Chat] ListSessions error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list sessions"})
	}
	if sessions == nil {
		sessions = []model.SessionSummary{}
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}
