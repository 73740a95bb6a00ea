// Package models defines the persistent entities of linkmark.
package models

import "time"

// User is an account record. PasswordHash and Salt are hex-encoded and are
// populated only on the credential lookup path; sanitized reads leave them
// empty.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Salt         string
	CreatedAt    time.Time
}
