package model

import "time"

// User is an authenticated identity. The escrow engine only ever sees the
// email string; everything else stays in the identity layer.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
