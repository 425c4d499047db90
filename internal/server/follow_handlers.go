package server

import (
	"reelhub/internal/middleware"
	"reelhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleFollow handles POST /api/users/:userId/follow
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	target := c.Params("userId")
	following, err := s.rt.Follows.ToggleFollow(c.UserContext(), middleware.ViewerID(c), target)
	if err != nil {
		return respondError(c, err)
	}
	followers, err := s.rt.Follows.FollowerCount(c.UserContext(), target)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user_id": target, "following": following, "follower_count": followers})
}

// GetFollowing handles GET /api/users/:userId/following with the followed accounts' profiles.
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	ids, err := s.rt.Follows.FollowedUserIDs(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	byUser, err := s.rt.Profiles.ProfilesByUserIDs(c.UserContext(), ids)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*models.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byUser[id]; ok {
			out = append(out, p)
		}
	}
	return c.JSON(out)
}
