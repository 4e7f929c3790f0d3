package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelkonansro/AIc/internal/model"
)

type SosRepository struct {
	pool *pgxpool.Pool
}

func NewSosRepository(pool *pgxpool.Pool) *SosRepository {
	return &SosRepository{pool: pool}
}

// Contacts returns active contacts for a country, highest priority first,
// ties broken alphabetically by name.
func (r *SosRepository) Contacts(ctx context.Context, country, locale string) ([]model.SosContact, error) {
	query := `
		SELECT id, country, locale, ctype, name, phone, url, hours, priority
		FROM sos_contacts
		WHERE country = $1 AND is_active = TRUE
	`
	args := []interface{}{strings.ToUpper(country)}
	if locale != "" {
		query += ` AND locale = $2`
		args = append(args, locale)
	}
	query += ` ORDER BY priority DESC, name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []model.SosContact
	for rows.Next() {
		var c model.SosContact
		if err := rows.Scan(&c.ID, &c.Country, &c.Locale, &c.Type, &c.Name, &c.Phone, &c.URL, &c.Hours, &c.Priority); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
