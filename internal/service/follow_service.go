package service

import (
	"context"

	"reelhub/internal/models"
	"reelhub/internal/observability"
	"reelhub/internal/repository"
)

type FollowService struct {
	follows   repository.FollowRepository
	publisher Publisher
}

func NewFollowService(follows repository.FollowRepository, publisher Publisher) *FollowService {
	if publisher == nil {
		publisher = NopPublisher
	}
	return &FollowService{follows: follows, publisher: publisher}
}

// FollowUser makes followerID follow followingID. Following twice is a no-op.
func (s *FollowService) FollowUser(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	if followerID == "" {
		return nil, models.NewUnauthorizedError("login required")
	}
	if followingID == "" {
		return nil, models.NewValidationError("user id is required")
	}
	if followerID == followingID {
		return nil, models.NewValidationError("cannot follow yourself")
	}
	follow, created, err := s.follows.Upsert(ctx, followerID, followingID)
	if err != nil {
		if models.IsUnauthorized(err) {
			return nil, &models.AppError{Code: models.CodeUnauthorized, Message: "not authorized to follow user", Err: err}
		}
		return nil, err
	}
	if created {
		notify(ctx, s.publisher, followingID, models.Notification{
			Type: models.NotificationFollow, ActorID: followerID,
		})
	}
	return follow, nil
}

// UnfollowUser removes the follow if present.
func (s *FollowService) UnfollowUser(ctx context.Context, followerID, followingID string) error {
	if followerID == "" {
		return models.NewUnauthorizedError("login required")
	}
	if _, err := s.follows.DeletePair(ctx, followerID, followingID); err != nil {
		if models.IsUnauthorized(err) {
			return &models.AppError{Code: models.CodeUnauthorized, Message: "not authorized to unfollow user", Err: err}
		}
		return err
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == "" || followingID == "" {
		return false, nil
	}
	return s.follows.Exists(ctx, followerID, followingID)
}

// ToggleFollow flips the follow and reports whether it exists afterwards.
func (s *FollowService) ToggleFollow(ctx context.Context, followerID, followingID string) (following bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "FollowService", "ToggleFollow")
	defer func() { observability.EndSpan(span, err) }()

	if followerID == followingID {
		return false, models.NewValidationError("cannot follow yourself")
	}
	exists, err := s.IsFollowing(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	if exists {
		if err := s.UnfollowUser(ctx, followerID, followingID); err != nil {
			return false, err
		}
		observability.RecordToggle("follow", false)
		return false, nil
	}
	if _, err := s.FollowUser(ctx, followerID, followingID); err != nil {
		return false, err
	}
	observability.RecordToggle("follow", true)
	return true, nil
}

// FollowedUserIDs lists the users userID follows.
func (s *FollowService) FollowedUserIDs(ctx context.Context, userID string) ([]string, error) {
	return s.follows.FollowingIDs(ctx, userID)
}

func (s *FollowService) FollowerCount(ctx context.Context, userID string) (int64, error) {
	return s.follows.CountFollowers(ctx, userID)
}

func (s *FollowService) GetFollow(ctx context.Context, id string) (*models.Follow, error) {
	return s.follows.GetByID(ctx, id)
}

func (s *FollowService) ListFollows(ctx context.Context, q repository.ListQuery) ([]*models.Follow, error) {
	return s.follows.List(ctx, q)
}

func (s *FollowService) DeleteFollow(ctx context.Context, id string) error {
	return s.follows.Delete(ctx, id)
}
