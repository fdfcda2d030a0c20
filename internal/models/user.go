package models

import (
	"time"
)

type User struct {
	ID             int64
	CreatedAt      time.Time
	Name           string
	Email          string
	Phone          string
	Role           Role
	HashedPassword string
}

// Principal is the identity embedded into issued tokens.
// It is a snapshot: the users table stays the source of truth, and the
// refresh flow re-reads it before minting a new pair.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email, Role: u.Role}
}
