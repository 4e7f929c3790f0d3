package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelkonansro/AIc/internal/model"
)

type ChatSessionRepository struct {
	pool *pgxpool.Pool
}

func NewChatSessionRepository(pool *pgxpool.Pool) *ChatSessionRepository {
	return &ChatSessionRepository{pool: pool}
}

func (r *ChatSessionRepository) Create(ctx context.Context, userID string) (*model.ChatSession, error) {
	s := &model.ChatSession{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_sessions (user_id, status)
		VALUES ($1, 'active')
		RETURNING id, user_id, status, started_at, ended_at
	`, userID).Scan(&s.ID, &s.UserID, &s.Status, &s.StartedAt, &s.EndedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetWithUser loads a session joined with the owner fields the
// orchestrator needs for age-tier derivation.
func (r *ChatSessionRepository) GetWithUser(ctx context.Context, sessionID string) (*model.SessionWithUser, error) {
	sw := &model.SessionWithUser{}
	err := r.pool.QueryRow(ctx, `
		SELECT s.id, s.user_id, s.status, s.started_at, s.ended_at,
		       u.id, u.nick, u.age_group, u.birth_year, u.country, u.is_guest, u.created_at, u.updated_at
		FROM chat_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1
	`, sessionID).Scan(
		&sw.ID, &sw.UserID, &sw.Status, &sw.StartedAt, &sw.EndedAt,
		&sw.User.ID, &sw.User.Nick, &sw.User.AgeGroup, &sw.User.BirthYear,
		&sw.User.Country, &sw.User.IsGuest, &sw.User.CreatedAt, &sw.User.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sw, nil
}

// End marks the session ended. Sessions are retained for audit, never deleted.
func (r *ChatSessionRepository) End(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	s := &model.ChatSession{}
	err := r.pool.QueryRow(ctx, `
		UPDATE chat_sessions
		SET status = 'ended', ended_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, status, started_at, ended_at
	`, sessionID).Scan(&s.ID, &s.UserID, &s.Status, &s.StartedAt, &s.EndedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *ChatSessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.SessionSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.status, s.started_at, s.ended_at,
		       (SELECT COUNT(*) FROM chat_messages m WHERE m.session_id = s.id)
		FROM chat_sessions s
		WHERE s.user_id = $1
		ORDER BY s.started_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.SessionSummary
	for rows.Next() {
		var s model.SessionSummary
		if err := rows.Scan(&s.ID, &s.Status, &s.StartedAt, &s.EndedAt, &s.MessageCount); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
