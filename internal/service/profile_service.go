package service

import (
	"context"
	"io"
	"strings"

	"reelhub/internal/cache"
	"reelhub/internal/models"
	"reelhub/internal/repository"
	"reelhub/internal/storage"
	"reelhub/internal/validation"
)

type ProfileService struct {
	profiles      repository.ProfileRepository
	files         FileStore
	cache         *cache.Cache
	media         Media
	maxImageBytes int64
}

type CreateProfileInput struct {
	UserID string
	Name   string
	Image  string
	Bio    string
}

type AvatarInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func NewProfileService(
	profiles repository.ProfileRepository,
	files FileStore,
	c *cache.Cache,
	media Media,
	maxImageBytes int64,
) *ProfileService {
	return &ProfileService{profiles: profiles, files: files, cache: c, media: media, maxImageBytes: maxImageBytes}
}

func (s *ProfileService) CreateProfile(ctx context.Context, in CreateProfileInput) (*models.Profile, error) {
	if in.UserID == "" {
		return nil, models.NewValidationError("user id is required")
	}
	if err := validation.ValidateProfileName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBio(in.Bio); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	profile := &models.Profile{UserID: in.UserID, Name: strings.TrimSpace(in.Name), Image: in.Image, Bio: in.Bio}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	return s.media.Profile(profile), nil
}

// GetProfile returns nil, nil when the profile does not exist.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if models.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.media.Profile(profile), nil
}

// GetProfileByUserID returns nil, nil when the account has no profile.
func (s *ProfileService) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile *models.Profile
	err := s.cache.Aside(ctx, cache.ProfileKey(userID), &profile, cache.ProfileTTL, func() error {
		p, err := s.profiles.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if models.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.media.Profile(profile), nil
}

func (s *ProfileService) ListProfiles(ctx context.Context, q repository.ListQuery) ([]*models.Profile, error) {
	profiles, err := s.profiles.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.media.Profiles(profiles), nil
}

// ProfilesByUserIDs returns the profiles of the given accounts keyed by account id.
func (s *ProfileService) ProfilesByUserIDs(ctx context.Context, userIDs []string) (map[string]*models.Profile, error) {
	profiles, err := s.profiles.ListByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.Profile, len(profiles))
	for _, p := range s.media.Profiles(profiles) {
		out[p.UserID] = p
	}
	return out, nil
}

// SearchProfiles matches names case-insensitively. A blank query matches nothing.
func (s *ProfileService) SearchProfiles(ctx context.Context, query string, limit int) ([]*models.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.Profile{}, nil
	}
	profiles, err := s.profiles.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return s.media.Profiles(profiles), nil
}

// UpdateProfile applies a partial update to the account's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Profile, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if err := validation.ValidateProfileName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		update.Name = &name
	}
	if update.Bio != nil {
		if err := validation.ValidateBio(*update.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	current, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated, err := s.profiles.Update(ctx, current.ID, update)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.ProfileKey(userID))
	svcLogger.LogServiceCall(ctx, "ProfileService", "UpdateProfile", map[string]any{"profile_id": current.ID})
	return s.media.Profile(updated), nil
}

func (s *ProfileService) DeleteProfile(ctx context.Context, id string) error {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.ProfileKey(profile.UserID))
	return nil
}

// SetAvatar stores a new profile image and points the profile at it.
// The previous image is removed best-effort.
func (s *ProfileService) SetAvatar(ctx context.Context, userID string, in AvatarInput) (*models.Profile, error) {
	if err := validation.ValidateImage(in.ContentType, in.Size, s.maxImageBytes); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	current, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	file, err := s.files.Save(ctx, storage.UploadInput{
		Bucket:      s.media.Bucket,
		Name:        in.FileName,
		ContentType: validation.NormalizeContentType(in.ContentType),
		OwnerID:     userID,
		Body:        in.Body,
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.profiles.Update(ctx, current.ID, models.ProfileUpdate{Image: &file.ID})
	if err != nil {
		if delErr := s.files.Delete(ctx, s.media.Bucket, file.ID); delErr != nil {
			svcLogger.LogPartialFailure(ctx, "set_avatar_cleanup", delErr, map[string]any{"file_id": file.ID})
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.ProfileKey(userID))
	if current.Image != "" {
		if err := s.files.Delete(ctx, s.media.Bucket, current.Image); err != nil && !models.IsNotFound(err) {
			svcLogger.LogPartialFailure(ctx, "replace_avatar", err, map[string]any{"file_id": current.Image})
		}
	}
	return s.media.Profile(updated), nil
}
