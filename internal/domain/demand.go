package domain

import "time"

// Demand is one lead-capture form submission, keyed by email.
type Demand struct {
	ID              string
	Name            string
	Email           string
	Challenges      string
	VideoTypes      string
	Benefits        string
	Budget          string
	InterestInTrial string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
