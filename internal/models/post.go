package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a single uploaded video with caption and author reference.
type Post struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:64;not null;index:idx_posts_user_id" json:"user_id"`
	// VideoFileID is persisted; VideoURL is resolved from it on every read.
	VideoFileID string    `gorm:"size:64;not null" json:"video_file_id"`
	VideoURL    string    `gorm:"-" json:"video_url"`
	Text        string    `gorm:"size:150;not null" json:"text"`
	CreatedAt   time.Time `gorm:"index:idx_posts_created_at" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns the document id.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}
