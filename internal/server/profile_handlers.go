package server

import (
	"reelhub/internal/middleware"
	"reelhub/internal/models"
	"reelhub/internal/search"
	"reelhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profiles/:userId
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.rt.Profiles.GetProfileByUserID(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	if profile == nil {
		return respondError(c, models.NewNotFoundError("Profile", c.Params("userId")))
	}
	followers, err := s.rt.Follows.FollowerCount(c.UserContext(), profile.UserID)
	if err != nil {
		return respondError(c, err)
	}
	following := false
	if viewer := middleware.ViewerID(c); viewer != "" && viewer != profile.UserID {
		if following, err = s.rt.Follows.IsFollowing(c.UserContext(), viewer, profile.UserID); err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(fiber.Map{
		"profile":          profile,
		"follower_count":   followers,
		"viewer_following": following,
		"share_url":        s.rt.Posts.ProfileShareURL(profile.UserID),
	})
}

// SearchProfiles handles GET /api/profiles/search?q=
func (s *Server) SearchProfiles(c *fiber.Ctx) error {
	p := parsePagination(c, search.DefaultLimit)
	profiles, err := s.rt.Profiles.SearchProfiles(c.UserContext(), c.Query("q"), p.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profiles)
}

type updateProfileRequest struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

// UpdateMyProfile handles PUT /api/profiles/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	profile, err := s.rt.Profiles.UpdateProfile(c.UserContext(), middleware.ViewerID(c),
		models.ProfileUpdate{Name: req.Name, Bio: req.Bio})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// UploadAvatar handles POST /api/profiles/me/avatar with a multipart "image" field.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No image uploaded"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	defer func() { _ = f.Close() }()

	profile, err := s.rt.Profiles.SetAvatar(c.UserContext(), middleware.ViewerID(c), service.AvatarInput{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
