// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account record. CurrentAuthToken holds the single active
// session token; a nil value means the user is logged out.
type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	CurrentAuthToken *string
	CreatedAt        time.Time
}
