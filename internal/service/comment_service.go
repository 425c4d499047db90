package service

import (
	"context"
	"strings"

	"reelhub/internal/cache"
	"reelhub/internal/models"
	"reelhub/internal/repository"
	"reelhub/internal/validation"
)

const defaultCommentLimit = 50

type CommentService struct {
	comments  repository.CommentRepository
	posts     repository.PostRepository
	cache     *cache.Cache
	publisher Publisher
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	c *cache.Cache,
	publisher Publisher,
) *CommentService {
	if publisher == nil {
		publisher = NopPublisher
	}
	return &CommentService{comments: comments, posts: posts, cache: c, publisher: publisher}
}

func (s *CommentService) CreateComment(ctx context.Context, userID, postID, text string) (*models.Comment, error) {
	if userID == "" {
		return nil, models.NewUnauthorizedError("login required")
	}
	text = strings.TrimSpace(text)
	if err := validation.ValidateComment(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{UserID: userID, PostID: postID, Text: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.CommentCountKey(postID))
	notify(ctx, s.publisher, post.UserID, models.Notification{
		Type: models.NotificationComment, ActorID: userID, PostID: postID, CommentID: comment.ID,
	})
	return comment, nil
}

func (s *CommentService) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	return s.comments.GetByID(ctx, id)
}

// ListComments returns a post's comments, most recent first.
func (s *CommentService) ListComments(ctx context.Context, postID string, limit int) ([]*models.Comment, error) {
	if limit <= 0 {
		limit = defaultCommentLimit
	}
	return s.comments.ListByPost(ctx, postID, limit)
}

func (s *CommentService) List(ctx context.Context, q repository.ListQuery) ([]*models.Comment, error) {
	return s.comments.List(ctx, q)
}

func (s *CommentService) CommentCount(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := s.cache.Aside(ctx, cache.CommentCountKey(postID), &count, cache.CountTTL, func() error {
		n, err := s.comments.CountByPost(ctx, postID)
		count = n
		return err
	})
	return count, err
}

// DeleteComment removes a comment. Callers check that the viewer owns it.
func (s *CommentService) DeleteComment(ctx context.Context, id string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.CommentCountKey(comment.PostID))
	return nil
}
