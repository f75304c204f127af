// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered vault owner. PasswordHash holds a PHC-formatted
// record and must never leave the server.
type User struct {
	ID              string
	Email           string
	EmailNormalized string
	PasswordHash    string
	FirstName       string
	LastName        string
	CreatedAt       time.Time
}
