package models

import "time"

type User struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Username     string           `json:"username"`
	PasswordHash string           `json:"-"`
	LocationID   *string          `json:"locationId,omitempty"`
	Location     *LocationSummary `json:"location,omitempty"`
	Avatar       string           `json:"avatar,omitempty"`
	IsActive     bool             `json:"isActive"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// UserSummary is the public projection embedded in listings, messages and transactions.
type UserSummary struct {
	ID       string           `json:"id"`
	Username string           `json:"username"`
	Email    string           `json:"email,omitempty"`
	Location *LocationSummary `json:"location,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, Location: u.Location}
}
