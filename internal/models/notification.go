package models

import "time"

// Notification event types.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// Notification tells a user that someone interacted with them or their content.
type Notification struct {
	Type      string    `json:"type"`
	ActorID   string    `json:"actor_id"`
	PostID    string    `json:"post_id,omitempty"`
	CommentID string    `json:"comment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
