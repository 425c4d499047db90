package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the application-level user record, keyed by account id.
type Profile struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:64;not null;uniqueIndex:idx_profiles_user_id" json:"user_id"`
	Name   string `gorm:"size:120;not null" json:"name"`
	// Image holds a stored file id; ImageURL is resolved at read time.
	Image     string    `gorm:"size:64" json:"image"`
	ImageURL  string    `gorm:"-" json:"image_url,omitempty"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the document id.
func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}

// ProfileUpdate carries the mutable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name  *string
	Image *string
	Bio   *string
}

// Fields returns the column updates for a partial update.
func (u ProfileUpdate) Fields() map[string]any {
	out := map[string]any{}
	if u.Name != nil {
		out["name"] = *u.Name
	}
	if u.Image != nil {
		out["image"] = *u.Image
	}
	if u.Bio != nil {
		out["bio"] = *u.Bio
	}
	return out
}
