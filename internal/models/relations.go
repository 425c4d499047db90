package models

import (
	"time"

	"gorm.io/gorm"
)

// Like is a directed relation between an account and a post.
type Like struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    string    `gorm:"size:36;not null;uniqueIndex:idx_likes_user_post;index:idx_likes_post_id" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns the document id.
func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}

// Comment is a caption-like remark on a post. Comments are never edited.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:64;not null" json:"user_id"`
	PostID    string    `gorm:"size:36;not null;index:idx_comments_post_id" json:"post_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index:idx_comments_created_at" json:"created_at"`
}

// BeforeCreate assigns the document id.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// Follow is a directed relation between two accounts.
type Follow struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	FollowerID  string    `gorm:"size:64;not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID string    `gorm:"size:64;not null;uniqueIndex:idx_follows_pair;index:idx_follows_following_id" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns the document id.
func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = NewID()
	}
	return nil
}
