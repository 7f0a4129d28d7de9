package model

import "time"

// Roles accepted in access tokens.
const (
	RoleGuest   = "GUEST"
	RoleManager = "MANAGER"
)

// User is a registered guest or hotel manager.  The list of a user's
// reservations is not stored here; it is derived from the ledger.
//
// Fields:
//  ID           – login identifier chosen at registration.
//  Name         – display name.
//  Email        – contact address (lower-cased).
//  PasswordHash – bcrypt hash; empty for accounts created without a password.
//  Role         – GUEST or MANAGER.
//  CreatedAt    – registration timestamp.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
