package types

import (
	"errors"
	"time"
)

// Account represents one registered user. Email is the natural key:
// globally unique, case-preserved, and the primary lookup field.
// PasswordHash is opaque to the store; plaintext never reaches a row.
type Account struct {
	AccountID    string    `json:"account_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ErrInvalidEmail is returned when an account carries an empty email.
var ErrInvalidEmail = errors.New("email must not be empty")

// Validate checks that the account is well-formed for insertion.
func (a *Account) Validate() error {
	if a.Email == "" {
		return ErrInvalidEmail
	}
	return nil
}
