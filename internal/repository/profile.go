package repository

import (
	"context"
	"time"

	"reelhub/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines interface for profile operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]*models.Profile, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Profile, error)
	List(ctx context.Context, q ListQuery) ([]*models.Profile, error)
	Update(ctx context.Context, id string, update models.ProfileUpdate) (*models.Profile, error)
	Delete(ctx context.Context, id string) error
}

var profileColumns = map[string]bool{
	"id": true, "user_id": true, "name": true, "created_at": true, "updated_at": true,
}

type profileRepository struct {
	table
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB, cols models.Collections) ProfileRepository {
	return &profileRepository{table: newTable(db, cols.Profiles)}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.q(ctx).Create(profile).Error; err != nil {
		return translate(err, "Profile", profile.UserID)
	}
	r.logger.LogCreate(ctx, map[string]any{"id": profile.ID, "user_id": profile.UserID})
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.q(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err, "Profile", id)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.q(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err, "Profile", userID)
	}
	return &profile, nil
}

func (r *profileRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]*models.Profile, error) {
	if len(userIDs) == 0 {
		return []*models.Profile{}, nil
	}
	var profiles []*models.Profile
	err := r.q(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error
	return profiles, translate(err, "Profile", userIDs)
}

func (r *profileRepository) Search(ctx context.Context, query string, limit int) ([]*models.Profile, error) {
	var profiles []*models.Profile
	err := r.q(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(query)).
		Order("name asc").
		Limit(ListQuery{Limit: limit}.limit()).
		Find(&profiles).Error
	return profiles, translate(err, "Profile", query)
}

func (r *profileRepository) List(ctx context.Context, q ListQuery) ([]*models.Profile, error) {
	tx, err := q.apply(r.q(ctx), profileColumns)
	if err != nil {
		return nil, err
	}
	var profiles []*models.Profile
	err = tx.Find(&profiles).Error
	return profiles, translate(err, "Profile", "")
}

func (r *profileRepository) Update(ctx context.Context, id string, update models.ProfileUpdate) (*models.Profile, error) {
	fields := update.Fields()
	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
		res := r.q(ctx).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, translate(res.Error, "Profile", id)
		}
		if res.RowsAffected == 0 {
			return nil, models.NewNotFoundError("Profile", id)
		}
		r.logger.LogUpdate(ctx, map[string]any{"id": id})
	}
	return r.GetByID(ctx, id)
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	res := r.q(ctx).Where("id = ?", id).Delete(&models.Profile{})
	if res.Error != nil {
		return translate(res.Error, "Profile", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", id)
	}
	r.logger.LogDelete(ctx, map[string]any{"id": id})
	return nil
}
