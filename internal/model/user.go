package model

import "time"

// AgeTier buckets users for response tone selection.
type AgeTier string

const (
	AgeTierChild      AgeTier = "child"
	AgeTierTeen       AgeTier = "teen"
	AgeTierYoungAdult AgeTier = "young_adult"
)

// User is an account row. Guests are real rows with IsGuest set,
// created per request and never shared.
type User struct {
	ID           string     `json:"id"`
	Nick         string     `json:"nick"`
	Email        *string    `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	AgeGroup     *string    `json:"age_group,omitempty"`
	BirthYear    *int       `json:"birth_year,omitempty"`
	Country      *string    `json:"country,omitempty"`
	IsGuest      bool       `json:"is_guest"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AgeTier derives the coarse age bucket. An explicit age group wins;
// otherwise it is computed from the birth year. Unknown defaults to teen.
func (u *User) AgeTier(now time.Time) AgeTier {
	if u.AgeGroup != nil {
		switch *u.AgeGroup {
		case string(AgeTierChild):
			return AgeTierChild
		case string(AgeTierTeen):
			return AgeTierTeen
		case string(AgeTierYoungAdult):
			return AgeTierYoungAdult
		}
	}
	if u.BirthYear == nil {
		return AgeTierTeen
	}
	age := now.Year() - *u.BirthYear
	switch {
	case age <= 12:
		return AgeTierChild
	case age <= 15:
		return AgeTierTeen
	default:
		return AgeTierYoungAdult
	}
}
