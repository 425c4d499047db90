package models

import (
	"time"

	"gorm.io/gorm"
)

// StoredFile is the metadata of an object in storage. Records reference it by id only.
type StoredFile struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Bucket      string    `gorm:"size:64;not null;index:idx_files_bucket" json:"bucket"`
	Name        string    `gorm:"size:255" json:"name"`
	ContentType string    `gorm:"size:100;not null" json:"content_type"`
	Size        int64     `json:"size"`
	OwnerID     string    `gorm:"size:64;index:idx_files_owner_id" json:"owner_id"`
	Path        string    `gorm:"size:512;not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns the document id.
func (f *StoredFile) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = NewID()
	}
	return nil
}

// IsImage reports whether the stored content is an image.
func (f *StoredFile) IsImage() bool {
	return len(f.ContentType) > 6 && f.ContentType[:6] == "image/"
}
