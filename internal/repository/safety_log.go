package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelkonansro/AIc/internal/model"
)

type SafetyLogRepository struct {
	pool *pgxpool.Pool
}

func NewSafetyLogRepository(pool *pgxpool.Pool) *SafetyLogRepository {
	return &SafetyLogRepository{pool: pool}
}

func (r *SafetyLogRepository) Insert(ctx context.Context, entry model.SafetyLogEntry) error {
	var sessionID *string
	if entry.SessionID != "" {
		sessionID = &entry.SessionID
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO safety_log (session_id, content, flag, reason, action)
		VALUES ($1, $2, $3, $4, $5)
	`, sessionID, entry.Content, entry.Flag, entry.Reason, entry.Action)
	return err
}
