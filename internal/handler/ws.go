package handler

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pavelkonansro/AIc/internal/model"
	"github.com/pavelkonansro/AIc/internal/service"
)

// WSHandler terminates chat websocket connections and relays events
// between clients and the orchestrator.
type WSHandler struct {
	registry *service.SessionRegistry
	chat     *service.ChatService
	auth     *service.AuthService
}

func NewWSHandler(registry *service.SessionRegistry, chat *service.ChatService, auth *service.AuthService) *WSHandler {
	return &WSHandler{registry: registry, chat: chat, auth: auth}
}

func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		return c.Status(401).JSON(fiber.Map{"error": "token required"})
	}

	userID, nick, err := h.auth.ValidateAccessToken(token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
	}

	c.Locals("user_id", userID)
	c.Locals("nick", nick)
	return websocket.New(h.handleConnection)(c)
}

func (h *WSHandler) handleConnection(c *websocket.Conn) {
	userID, _ := c.Locals("user_id").(string)

	client := &service.RoomClient{
		ID:     uuid.NewString(),
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	h.registry.Register(client)
	defer h.registry.Unregister(client.ID)

	// Writer goroutine
	go func() {
		defer c.Close()
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
	}()

	// Reader loop
	c.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			break
		}

		// Reset deadline on any inbound frame
		c.SetReadDeadline(time.Now().Add(60 * time.Second))

		var event model.WSEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			continue
		}

		switch event.Type {
		case "ping":
			h.sendTo(client, "pong", nil)

		case "join_session":
			var join model.WSJoinSession
			if err := json.Unmarshal(event.Data, &join); err != nil || join.SessionID == "" {
				continue
			}
			// Joining implicitly leaves any previous room.
			h.registry.Join(client.ID, join.SessionID)
			h.sendTo(client, "joined_session", model.WSJoined{SessionID: join.SessionID})

		case "send_message":
			var msg model.WSSendMessage
			if err := json.Unmarshal(event.Data, &msg); err != nil || msg.SessionID == "" || msg.Text == "" {
				continue
			}
			// Each message is an independent unit of work; the reader
			// keeps draining pings while the AI call is in flight.
			go h.handleSendMessage(client, msg)

		default:
			log.Printf("[WS] unknown event type %q from %s", event.Type, client.ID)
		}
	}
}

// handleSendMessage runs one chat turn: relay the raw text to the rest of
// the room, show typing, orchestrate, then broadcast the reply to everyone.
func (h *WSHandler) handleSendMessage(client *service.RoomClient, msg model.WSSendMessage) {
	now := timestamp()

	// The sender already renders their own message locally, so the
	// provisional relay excludes them; the final assistant reply goes to
	// the whole room.
	h.broadcast(msg.SessionID, "message", model.WSMessage{
		Role:      model.RoleUser,
		Content:   msg.Text,
		Timestamp: now,
	}, client.ID)

	h.broadcast(msg.SessionID, "typing", model.WSTyping{IsTyping: true, Timestamp: now}, "")

	// Push only when nobody is present to see the live reply.
	requestPush := h.registry.IsEmpty(msg.SessionID)

	reply, err := h.chat.ProcessUserMessage(context.Background(), msg.SessionID, msg.Text, service.MessageOptions{
		RequestPush: requestPush,
		Data:        map[string]string{"transport": "socket"},
	})

	h.broadcast(msg.SessionID, "typing", model.WSTyping{IsTyping: false, Timestamp: timestamp()}, "")

	if err != nil {
		log.Printf("[WS] message handling failed in session %s: %v", msg.SessionID, err)
		h.broadcast(msg.SessionID, "error", model.WSError{
			Message:   "Ошибка при отправке сообщения",
			Timestamp: timestamp(),
		}, "")
		return
	}

	out := model.WSMessage{
		Role:      model.RoleAssistant,
		Content:   reply.Message,
		Timestamp: timestamp(),
		Usage:     reply.Usage,
	}
	if reply.Model != "" {
		out.Model = &reply.Model
	}
	if reply.Provider != "" {
		out.Provider = &reply.Provider
	}
	h.broadcast(msg.SessionID, "message", out, "")
}

func (h *WSHandler) broadcast(sessionID, eventType string, payload interface{}, excludeConnID string) {
	data, err := marshalEvent(eventType, payload)
	if err != nil {
		return
	}
	h.registry.Broadcast(sessionID, data, excludeConnID)
}

func (h *WSHandler) sendTo(client *service.RoomClient, eventType string, payload interface{}) {
	data, err := marshalEvent(eventType, payload)
	if err != nil {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

func marshalEvent(eventType string, payload interface{}) ([]byte, error) {
	event := model.WSEvent{Type: eventType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		event.Data = data
	}
	return json.Marshal(event)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
