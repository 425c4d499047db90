package service

import (
	"context"

	"reelhub/internal/cache"
	"reelhub/internal/models"
	"reelhub/internal/observability"
	"reelhub/internal/repository"
)

type LikeService struct {
	likes     repository.LikeRepository
	posts     repository.PostRepository
	cache     *cache.Cache
	media     Media
	publisher Publisher
}

func NewLikeService(
	likes repository.LikeRepository,
	posts repository.PostRepository,
	c *cache.Cache,
	media Media,
	publisher Publisher,
) *LikeService {
	if publisher == nil {
		publisher = NopPublisher
	}
	return &LikeService{likes: likes, posts: posts, cache: c, media: media, publisher: publisher}
}

// CreateLike records that userID likes postID. Liking twice returns the existing like.
func (s *LikeService) CreateLike(ctx context.Context, userID, postID string) (*models.Like, error) {
	if userID == "" || postID == "" {
		return nil, models.NewValidationError("user id and post id are required")
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	like, created, err := s.likes.Upsert(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.LikeCountKey(postID))
	if created {
		notify(ctx, s.publisher, post.UserID, models.Notification{
			Type: models.NotificationLike, ActorID: userID, PostID: postID,
		})
	}
	return like, nil
}

func (s *LikeService) GetLike(ctx context.Context, id string) (*models.Like, error) {
	return s.likes.GetByID(ctx, id)
}

func (s *LikeService) ListLikes(ctx context.Context, q repository.ListQuery) ([]*models.Like, error) {
	return s.likes.List(ctx, q)
}

func (s *LikeService) DeleteLike(ctx context.Context, id string) error {
	like, err := s.likes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.likes.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.LikeCountKey(like.PostID))
	return nil
}

// LikeCount returns the number of likes on a post.
func (s *LikeService) LikeCount(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := s.cache.Aside(ctx, cache.LikeCountKey(postID), &count, cache.CountTTL, func() error {
		n, err := s.likes.CountByPost(ctx, postID)
		count = n
		return err
	})
	return count, err
}

func (s *LikeService) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.likes.Exists(ctx, userID, postID)
}

// ToggleLike flips the like and reports whether the post is liked afterwards.
// Concurrent toggles never leave duplicate likes behind.
func (s *LikeService) ToggleLike(ctx context.Context, userID, postID string) (liked bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "LikeService", "ToggleLike")
	defer func() { observability.EndSpan(span, err) }()

	if userID == "" {
		return false, models.NewUnauthorizedError("login required")
	}
	exists, err := s.likes.Exists(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if exists {
		if _, err := s.likes.DeletePair(ctx, userID, postID); err != nil {
			return false, err
		}
		s.cache.Invalidate(ctx, cache.LikeCountKey(postID))
		observability.RecordToggle("like", false)
		return false, nil
	}

	if _, err := s.CreateLike(ctx, userID, postID); err != nil {
		return false, err
	}
	observability.RecordToggle("like", true)
	return true, nil
}

// LikedPostsForUser returns the posts the user liked, newest like first.
// Posts that cannot be loaded are logged and left out.
func (s *LikeService) LikedPostsForUser(ctx context.Context, userID string) ([]*models.Post, error) {
	likes, err := s.likes.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts := make([]*models.Post, 0, len(likes))
	for _, like := range likes {
		post, err := s.posts.GetByID(ctx, like.PostID)
		if err != nil {
			svcLogger.LogPartialFailure(ctx, "liked_posts", err, map[string]any{
				"user_id": userID,
				"post_id": like.PostID,
			})
			continue
		}
		posts = append(posts, s.media.Post(post))
	}
	return posts, nil
}
