package model

type RegisterRequest struct {
	Nick      string  `json:"nick"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	BirthYear *int    `json:"birthYear,omitempty"`
	AgeGroup  *string `json:"ageGroup,omitempty"`
	Country   *string `json:"country,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GuestRequest struct {
	Country *string `json:"country,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}
