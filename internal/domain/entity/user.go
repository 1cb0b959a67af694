// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Every Task belongs to exactly one User.
type User struct {
	ID             uuid.UUID // Assigned by the store on creation.
	Email          string    // Unique across all users, used as the login identifier.
	Username       string    // Unique across all users.
	HashedPassword string    // Salted bcrypt hash, never serialized to clients.
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
