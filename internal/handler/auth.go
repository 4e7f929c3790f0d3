package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/pavelkonansro/AIc/internal/model"
	"github.com/pavelkonansro/AIc/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	resp, err := h.auth.Register(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidNick), errors.Is(err, service.ErrWeakPassword):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrUserExists):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		default:
			log.Printf("[Auth] Register error: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "registration failed"})
		}
	}
	return c.Status(201).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	resp, err := h.auth.Login(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
		}
		log.Printf("[Auth] Login error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "login failed"})
	}
	return c.JSON(resp)
}

// Guest issues tokens for a fresh throwaway account.
func (h *AuthHandler) Guest(c *fiber.Ctx) error {
	var req model.GuestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	resp, err := h.auth.Guest(c.Context(), &req)
	if err != nil {
		log.Printf("[Auth] Guest error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "guest login failed"})
	}
	return c.Status(201).JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req model.RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(400).JSON(fiber.Map{"error": "refreshToken is required"})
	}

	tokens, err := h.auth.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return c.Status(401).JSON(fiber.Map{"error": "invalid or expired token"})
		}
		log.Printf("[Auth] Refresh error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "refresh failed"})
	}
	return c.JSON(tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req model.RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(400).JSON(fiber.Map{"error": "refreshToken is required"})
	}
	if err := h.auth.Logout(c.Context(), req.RefreshToken); err != nil {
		log.Printf("[Auth] Logout error: %v", err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
