package models

import (
	"time"

	"gorm.io/gorm"
)

// Account is the identity record of the session service, one per provider login.
type Account struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Provider  string    `gorm:"size:32;not null;uniqueIndex:idx_accounts_provider_subject" json:"provider"`
	Subject   string    `gorm:"size:128;not null;uniqueIndex:idx_accounts_provider_subject" json:"-"`
	Email     string    `gorm:"size:255" json:"email"`
	Name      string    `gorm:"size:120" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the document id.
func (a *Account) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}

// Session is a live login of an account. Sessions live in the session store, not the database.
type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && !t.Before(s.ExpiresAt)
}

// CurrentUser is the canonical "who is logged in" shape.
type CurrentUser struct {
	Account *Account `json:"account"`
	Profile *Profile `json:"profile"`
}
