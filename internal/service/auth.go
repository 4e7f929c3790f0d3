package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelkonansro/AIc/internal/model"
	"github.com/pavelkonansro/AIc/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidNick        = errors.New("nick must be 3-32 characters")
)

const (
	accessTokenDuration  = 15 * time.Minute
	refreshTokenDuration = 30 * 24 * time.Hour // 30 days
)

type AuthService struct {
	userRepo  *repository.UserRepository
	tokenRepo *repository.TokenRepository
	jwtSecret []byte
}

func NewAuthService(userRepo *repository.UserRepository, tokenRepo *repository.TokenRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	req.Nick = strings.TrimSpace(req.Nick)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if len(req.Nick) < 3 || len(req.Nick) > 32 {
		return nil, ErrInvalidNick
	}
	if len(req.Password) < 6 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, req, string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.generateTokenPair(ctx, user.ID, user.Nick)
	if err != nil {
		return nil, err
	}

	_ = s.userRepo.UpdateLoginTime(ctx, user.ID)

	return &model.AuthResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair(ctx, user.ID, user.Nick)
	if err != nil {
		return nil, err
	}

	_ = s.userRepo.UpdateLoginTime(ctx, user.ID)

	return &model.AuthResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: user}, nil
}

// Guest creates a fresh throwaway account. Every guest gets their own row;
// there is no shared guest user.
func (s *AuthService) Guest(ctx context.Context, req *model.GuestRequest) (*model.AuthResponse, error) {
	nick := "guest-" + uuid.NewString()[:8]
	user, err := s.userRepo.CreateGuest(ctx, nick, req.Country)
	if err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}

	tokens, err := s.generateTokenPair(ctx, user.ID, user.Nick)
	if err != nil {
		return nil, err
	}

	return &model.AuthResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: user}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	userID, err := s.tokenRepo.ValidateRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Rotate: revoke the old token before issuing a new pair.
	_ = s.tokenRepo.RevokeRefreshToken(ctx, tokenHash)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(ctx, user.ID, user.Nick)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenRepo.RevokeRefreshToken(ctx, hashToken(refreshToken))
}

// ValidateAccessToken returns the user id and nick from a valid token.
func (s *AuthService) ValidateAccessToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}

	userID, _ := claims["sub"].(string)
	nick, _ := claims["nick"].(string)
	if userID == "" {
		return "", "", ErrInvalidToken
	}
	return userID, nick, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, userID, nick string) (*model.TokenPair, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"nick": nick,
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenDuration).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := randomToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.StoreRefreshToken(ctx, userID, hashToken(refreshToken), now.Add(refreshTokenDuration)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
