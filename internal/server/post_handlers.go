package server

import (
	"reelhub/internal/middleware"
	"reelhub/internal/models"
	"reelhub/internal/repository"
	"reelhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts with the newest posts first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.rt.Posts.ListPosts(c.UserContext(), repository.ListQuery{Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		return respondError(c, err)
	}
	return s.respondFeed(c, posts)
}

// GetFollowingFeed handles GET /api/posts/following
func (s *Server) GetFollowingFeed(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.rt.Posts.FollowingFeed(c.UserContext(), middleware.ViewerID(c), p.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return s.respondFeed(c, posts)
}

// GetUserPosts handles GET /api/users/:userId/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	posts, err := s.rt.Posts.ListPostsByUser(c.UserContext(), c.Params("userId"), p.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return s.respondFeed(c, posts)
}

// GetLikedPosts handles GET /api/users/:userId/liked
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	posts, err := s.rt.Likes.LikedPostsForUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return s.respondFeed(c, posts)
}

func (s *Server) respondFeed(c *fiber.Ctx, posts []*models.Post) error {
	enhanced, err := s.rt.Feed.Enhance(c.UserContext(), posts, middleware.ViewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(enhanced)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.rt.Posts.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	enhanced, err := s.rt.Feed.Enhance(c.UserContext(), []*models.Post{post}, middleware.ViewerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(enhanced[0])
}

// CreatePost handles POST /api/posts with a multipart "video" file and "caption" field.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	fh, err := c.FormFile("video")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No video uploaded"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	defer func() { _ = f.Close() }()

	post, err := s.rt.Posts.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:      middleware.ViewerID(c),
		Caption:     c.FormValue("caption"),
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

type updatePostRequest struct {
	Caption string `json:"caption"`
}

// UpdatePost handles PUT /api/posts/:id. Only the author may edit the caption.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	post, err := s.rt.Posts.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if err := requireOwner(c, post.UserID); err != nil {
		return respondError(c, err)
	}
	updated, err := s.rt.Posts.UpdatePostText(c.UserContext(), post.ID, req.Caption)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	post, err := s.rt.Posts.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if err := requireOwner(c, post.UserID); err != nil {
		return respondError(c, err)
	}
	if err := s.rt.Posts.DeletePost(c.UserContext(), post.ID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SharePost handles GET /api/posts/:id/share
func (s *Server) SharePost(c *fiber.Ctx) error {
	post, err := s.rt.Posts.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"url":         s.rt.Posts.ShareURL(post),
		"profile_url": s.rt.Posts.ProfileShareURL(post.UserID),
	})
}

// GetLikeCount handles GET /api/posts/:id/likes/count
func (s *Server) GetLikeCount(c *fiber.Ctx) error {
	postID := c.Params("id")
	count, err := s.rt.Likes.LikeCount(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	liked, err := s.rt.Likes.HasLiked(c.UserContext(), middleware.ViewerID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"post_id": postID, "count": count, "liked": liked})
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID := c.Params("id")
	liked, err := s.rt.Likes.ToggleLike(c.UserContext(), middleware.ViewerID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	count, err := s.rt.Likes.LikeCount(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"post_id": postID, "liked": liked, "count": count})
}

// GetComments handles GET /api/posts/:id/comments, most recent first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	comments, err := s.rt.Comments.ListComments(c.UserContext(), c.Params("id"), p.Limit)
	if err != nil {
		return respondError(c, err)
	}
	out, err := s.rt.Feed.EnhanceComments(c.UserContext(), comments)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

type createCommentRequest struct {
	Text string `json:"text"`
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	comment, err := s.rt.Comments.CreateComment(c.UserContext(), middleware.ViewerID(c), c.Params("id"), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id. Only the comment's author may delete it.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	comment, err := s.rt.Comments.GetComment(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if err := requireOwner(c, comment.UserID); err != nil {
		return respondError(c, err)
	}
	if err := s.rt.Comments.DeleteComment(c.UserContext(), comment.ID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
