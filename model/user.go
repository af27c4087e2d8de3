package model

import "time"

// User represents a registered user.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not exposed in API responses
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPreference stores a user's stated tastes, keyed by an opaque user
// identifier. The identifier may be a registered user ID or an anonymous
// session ID. At most one record exists per user.
type UserPreference struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"userId"`
	FavoriteGenres []string  `json:"favoriteGenres"`
	BPMMin         *int      `json:"bpmMin,omitempty"`
	BPMMax         *int      `json:"bpmMax,omitempty"`
	FavoriteKeys   []string  `json:"favoriteKeys"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
