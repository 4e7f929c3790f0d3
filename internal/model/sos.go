package model

// SosContact is one emergency/crisis/support contact record.
type SosContact struct {
	ID       string  `json:"id"`
	Country  string  `json:"country"`
	Locale   string  `json:"locale"`
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone,omitempty"`
	URL      *string `json:"url,omitempty"`
	Hours    *string `json:"hours,omitempty"`
	Priority int     `json:"priority"`
}
