package cache

import (
	"fmt"
	"time"
)

const (
	LikeCountKeyPrefix    = "post:%s:likes"
	CommentCountKeyPrefix = "post:%s:comments"
	ProfileKeyPrefix      = "profile:%s"
)

const (
	CountTTL   = 2 * time.Minute
	ProfileTTL = 5 * time.Minute
)

func LikeCountKey(postID string) string {
	return fmt.Sprintf(LikeCountKeyPrefix, postID)
}

func CommentCountKey(postID string) string {
	return fmt.Sprintf(CommentCountKeyPrefix, postID)
}

func ProfileKey(userID string) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}
