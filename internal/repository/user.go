package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelkonansro/AIc/internal/model"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, nick, email, password_hash, age_group, birth_year, country, is_guest, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var passwordHash *string
	err := row.Scan(
		&u.ID, &u.Nick, &u.Email, &passwordHash, &u.AgeGroup, &u.BirthYear,
		&u.Country, &u.IsGuest, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, req *model.RegisterRequest, passwordHash string) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (nick, email, password_hash, age_group, birth_year, country)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
		RETURNING `+userColumns+`
	`, req.Nick, req.Email, passwordHash, req.AgeGroup, req.BirthYear, req.Country)
	u, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("duplicate key")
		}
		return nil, err
	}
	return u, nil
}

// CreateGuest inserts a throwaway guest account. Guests never share a row.
func (r *UserRepository) CreateGuest(ctx context.Context, nick string, country *string) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (nick, country, is_guest)
		VALUES ($1, $2, TRUE)
		RETURNING `+userColumns+`
	`, nick, country)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) UpdateLoginTime(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	return err
}
