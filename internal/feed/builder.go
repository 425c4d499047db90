// Package feed joins posts with their authors, counts and viewer state.
package feed

import (
	"context"

	"reelhub/internal/models"
	"reelhub/internal/observability"
	"reelhub/internal/repository"
	"reelhub/internal/service"

	"golang.org/x/sync/errgroup"
)

// EnhancedPost is a post with everything a feed card renders.
type EnhancedPost struct {
	*models.Post
	Author              *models.Profile `json:"author"`
	LikeCount           int64           `json:"like_count"`
	CommentCount        int64           `json:"comment_count"`
	LikedByViewer       bool            `json:"liked_by_viewer"`
	ViewerFollowsAuthor bool            `json:"viewer_follows_author"`
}

// EnhancedComment is a comment with its author's profile.
type EnhancedComment struct {
	*models.Comment
	Author *models.Profile `json:"author"`
}

// Builder aggregates posts with batched lookups.
type Builder struct {
	profiles repository.ProfileRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	media    service.Media
}

func NewBuilder(
	profiles repository.ProfileRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	follows repository.FollowRepository,
	media service.Media,
) *Builder {
	return &Builder{profiles: profiles, likes: likes, comments: comments, follows: follows, media: media}
}

// Enhance runs one batched query per relation, concurrently, and joins the
// results in post order. viewerID may be empty for anonymous viewers.
func (b *Builder) Enhance(ctx context.Context, posts []*models.Post, viewerID string) (_ []*EnhancedPost, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "FeedBuilder", "Enhance")
	defer func() { observability.EndSpan(span, err) }()

	if len(posts) == 0 {
		return []*EnhancedPost{}, nil
	}

	postIDs := make([]string, 0, len(posts))
	authorIDs := make([]string, 0, len(posts))
	seenAuthor := make(map[string]bool, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		if !seenAuthor[p.UserID] {
			seenAuthor[p.UserID] = true
			authorIDs = append(authorIDs, p.UserID)
		}
	}

	var (
		authors       []*models.Profile
		likeCounts    map[string]int64
		commentCounts map[string]int64
		liked         = map[string]bool{}
		following     = map[string]bool{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		authors, err = b.profiles.ListByUserIDs(gctx, authorIDs)
		return err
	})
	g.Go(func() error {
		var err error
		likeCounts, err = b.likes.CountByPosts(gctx, postIDs)
		return err
	})
	g.Go(func() error {
		var err error
		commentCounts, err = b.comments.CountByPosts(gctx, postIDs)
		return err
	})
	if viewerID != "" {
		g.Go(func() error {
			var err error
			liked, err = b.likes.LikedPostIDs(gctx, viewerID, postIDs)
			return err
		})
		g.Go(func() error {
			var err error
			following, err = b.follows.FollowingAmong(gctx, viewerID, authorIDs)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byUser := make(map[string]*models.Profile, len(authors))
	for _, a := range b.media.Profiles(authors) {
		byUser[a.UserID] = a
	}

	out := make([]*EnhancedPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, &EnhancedPost{
			Post:                b.media.Post(p),
			Author:              byUser[p.UserID],
			LikeCount:           likeCounts[p.ID],
			CommentCount:        commentCounts[p.ID],
			LikedByViewer:       liked[p.ID],
			ViewerFollowsAuthor: following[p.UserID],
		})
	}
	return out, nil
}

// EnhanceComments attaches author profiles to comments with a single lookup.
func (b *Builder) EnhanceComments(ctx context.Context, comments []*models.Comment) ([]*EnhancedComment, error) {
	out := make([]*EnhancedComment, 0, len(comments))
	if len(comments) == 0 {
		return out, nil
	}
	seen := make(map[string]bool, len(comments))
	userIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			userIDs = append(userIDs, c.UserID)
		}
	}
	authors, err := b.profiles.ListByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	byUser := make(map[string]*models.Profile, len(authors))
	for _, a := range b.media.Profiles(authors) {
		byUser[a.UserID] = a
	}
	for _, c := range comments {
		out = append(out, &EnhancedComment{Comment: c, Author: byUser[c.UserID]})
	}
	return out, nil
}
