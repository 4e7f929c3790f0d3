package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelkonansro/AIc/internal/model"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

const messageColumns = `id, session_id, role, content, safety_flag, model, provider, prompt_tokens, completion_tokens, total_tokens, created_at`

func scanMessage(row pgx.Row) (*model.ChatMessage, error) {
	m := &model.ChatMessage{}
	var prompt, completion, total *int
	err := row.Scan(
		&m.ID, &m.SessionID, &m.Role, &m.Content, &m.SafetyFlag,
		&m.Model, &m.Provider, &prompt, &completion, &total, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if total != nil {
		m.Usage = &model.TokenUsage{TotalTokens: *total}
		if prompt != nil {
			m.Usage.PromptTokens = *prompt
		}
		if completion != nil {
			m.Usage.CompletionTokens = *completion
		}
	}
	return m, nil
}

// Insert appends a message row. Rows are never mutated afterwards.
func (r *MessageRepository) Insert(ctx context.Context, sessionID, role, content string, safetyFlag *string, modelID, provider *string, usage *model.TokenUsage) (*model.ChatMessage, error) {
	var prompt, completion, total *int
	if usage != nil {
		prompt, completion, total = &usage.PromptTokens, &usage.CompletionTokens, &usage.TotalTokens
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (session_id, role, content, safety_flag, model, provider, prompt_tokens, completion_tokens, total_tokens)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+messageColumns+`
	`, sessionID, role, content, safetyFlag, modelID, provider, prompt, completion, total)
	return scanMessage(row)
}

// ListBySession returns up to limit messages in creation order, oldest first.
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// Recent returns the newest n messages in chronological order, for use as
// conversational context.
func (r *MessageRepository) Recent(ctx context.Context, sessionID string, n int) ([]model.ChatMessage, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, sessionID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}
	// Reverse for chronological order (oldest first)
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func collectMessages(rows pgx.Rows) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}
