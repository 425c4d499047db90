package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"reelhub/internal/cache"
	"reelhub/internal/models"
	"reelhub/internal/observability"
	"reelhub/internal/repository"
	"reelhub/internal/storage"
	"reelhub/internal/validation"
)

// FileStore is the subset of the object store the post service uses.
type FileStore interface {
	Save(ctx context.Context, in storage.UploadInput) (*models.StoredFile, error)
	Delete(ctx context.Context, bucket, id string) error
}

type PostService struct {
	posts         repository.PostRepository
	follows       repository.FollowRepository
	files         FileStore
	cache         *cache.Cache
	media         Media
	appURL        string
	maxVideoBytes int64
}

type PostServiceConfig struct {
	AppURL        string
	MaxVideoBytes int64
}

type CreatePostInput struct {
	UserID      string
	Caption     string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func NewPostService(
	posts repository.PostRepository,
	follows repository.FollowRepository,
	files FileStore,
	c *cache.Cache,
	media Media,
	cfg PostServiceConfig,
) *PostService {
	return &PostService{
		posts:         posts,
		follows:       follows,
		files:         files,
		cache:         c,
		media:         media,
		appURL:        strings.TrimRight(cfg.AppURL, "/"),
		maxVideoBytes: cfg.MaxVideoBytes,
	}
}

// CreatePost uploads the video, then records the post referencing it.
// The upload is removed again if the post cannot be recorded.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == "" {
		return nil, models.NewUnauthorizedError("login required")
	}
	caption := strings.TrimSpace(in.Caption)
	if err := validation.ValidateCaption(caption); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateVideo(in.ContentType, in.Size, s.maxVideoBytes); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	file, err := s.files.Save(ctx, storage.UploadInput{
		Bucket:      s.media.Bucket,
		Name:        in.FileName,
		ContentType: validation.NormalizeContentType(in.ContentType),
		OwnerID:     in.UserID,
		Body:        in.Body,
	})
	if err != nil {
		return nil, err
	}

	post := &models.Post{UserID: in.UserID, VideoFileID: file.ID, Text: caption}
	if err := s.posts.Create(ctx, post); err != nil {
		if delErr := s.files.Delete(ctx, s.media.Bucket, file.ID); delErr != nil {
			svcLogger.LogPartialFailure(ctx, "create_post_cleanup", delErr, map[string]any{"file_id": file.ID})
		}
		return nil, err
	}
	svcLogger.LogServiceCall(ctx, "PostService", "CreatePost", map[string]any{"post_id": post.ID, "size": in.Size})
	return s.media.Post(post), nil
}

// GetPost returns NOT_FOUND when the post does not exist.
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.media.Post(post), nil
}

// ListPosts lists posts, newest first unless q says otherwise.
func (s *PostService) ListPosts(ctx context.Context, q repository.ListQuery) ([]*models.Post, error) {
	if q.OrderBy == "" {
		q.OrderBy = "created_at"
		q.Desc = true
	}
	posts, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.media.Posts(posts), nil
}

func (s *PostService) ListPostsByUser(ctx context.Context, userID string, limit int) ([]*models.Post, error) {
	return s.ListPosts(ctx, repository.ListQuery{
		Where:   map[string]any{"user_id": userID},
		OrderBy: "created_at",
		Desc:    true,
		Limit:   limit,
	})
}

// FollowingFeed lists the newest posts by accounts the viewer follows.
func (s *PostService) FollowingFeed(ctx context.Context, viewerID string, limit int) ([]*models.Post, error) {
	if viewerID == "" {
		return nil, models.NewUnauthorizedError("login required")
	}
	ids, err := s.follows.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByUserIDs(ctx, ids, limit)
	if err != nil {
		return nil, err
	}
	return s.media.Posts(posts), nil
}

// UpdatePostText changes the caption, the only mutable field of a post.
func (s *PostService) UpdatePostText(ctx context.Context, id, text string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if err := validation.ValidateCaption(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	post, err := s.posts.UpdateText(ctx, id, text)
	if err != nil {
		return nil, err
	}
	return s.media.Post(post), nil
}

// DeletePost removes the post with its likes and comments, then its video.
// A failure to remove the video is logged, not returned.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	post, err := s.posts.DeleteCascade(ctx, id)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.LikeCountKey(id), cache.CommentCountKey(id))
	if err := s.files.Delete(ctx, s.media.Bucket, post.VideoFileID); err != nil && !models.IsNotFound(err) {
		svcLogger.LogPartialFailure(ctx, "delete_post_video", err, map[string]any{"post_id": id, "file_id": post.VideoFileID})
	}
	observability.GlobalLogger.InfoContext(ctx, "post deleted", "post_id", id)
	return nil
}

// ShareURL is the public link to a post.
func (s *PostService) ShareURL(post *models.Post) string {
	return fmt.Sprintf("%s/post/%s/%s", s.appURL, post.ID, post.UserID)
}

// ProfileShareURL is the public link to a profile.
func (s *PostService) ProfileShareURL(userID string) string {
	return fmt.Sprintf("%s/profile/%s", s.appURL, userID)
}
