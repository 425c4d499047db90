package repository

import (
	"context"

	"reelhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines interface for follow operations
type FollowRepository interface {
	Upsert(ctx context.Context, followerID, followingID string) (*models.Follow, bool, error)
	GetByID(ctx context.Context, id string) (*models.Follow, error)
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	FollowingIDs(ctx context.Context, followerID string) ([]string, error)
	FollowingAmong(ctx context.Context, followerID string, candidates []string) (map[string]bool, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	List(ctx context.Context, q ListQuery) ([]*models.Follow, error)
	Delete(ctx context.Context, id string) error
	DeletePair(ctx context.Context, followerID, followingID string) (bool, error)
}

var followColumns = map[string]bool{
	"id": true, "follower_id": true, "following_id": true, "created_at": true,
}

type followRepository struct {
	table
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB, cols models.Collections) FollowRepository {
	return &followRepository{table: newTable(db, cols.Follows)}
}

// Upsert creates the follow edge unless it exists. The bool reports whether a row was inserted.
func (r *followRepository) Upsert(ctx context.Context, followerID, followingID string) (*models.Follow, bool, error) {
	follow := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	res := r.q(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
		DoNothing: true,
	}).Create(follow)
	if res.Error != nil {
		return nil, false, translate(res.Error, "Follow", followingID)
	}
	if res.RowsAffected > 0 {
		r.logger.LogCreate(ctx, map[string]any{"follower_id": followerID, "following_id": followingID})
		return follow, true, nil
	}

	var existing models.Follow
	err := r.q(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID).First(&existing).Error
	if err != nil {
		return nil, false, translate(err, "Follow", followingID)
	}
	return &existing, false, nil
}

func (r *followRepository) GetByID(ctx context.Context, id string) (*models.Follow, error) {
	var follow models.Follow
	if err := r.q(ctx).Where("id = ?", id).First(&follow).Error; err != nil {
		return nil, translate(err, "Follow", id)
	}
	return &follow, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.q(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error
	return count > 0, translate(err, "Follow", followingID)
}

func (r *followRepository) FollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	ids := []string{}
	err := r.q(ctx).Where("follower_id = ?", followerID).Order("created_at desc").Pluck("following_id", &ids).Error
	return ids, translate(err, "Follow", followerID)
}

func (r *followRepository) FollowingAmong(ctx context.Context, followerID string, candidates []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if followerID == "" || len(candidates) == 0 {
		return out, nil
	}
	var ids []string
	err := r.q(ctx).Where("follower_id = ? AND following_id IN ?", followerID, candidates).Pluck("following_id", &ids).Error
	if err != nil {
		return nil, translate(err, "Follow", followerID)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.q(ctx).Where("following_id = ?", userID).Count(&count).Error
	return count, translate(err, "Follow", userID)
}

func (r *followRepository) List(ctx context.Context, q ListQuery) ([]*models.Follow, error) {
	tx, err := q.apply(r.q(ctx), followColumns)
	if err != nil {
		return nil, err
	}
	var follows []*models.Follow
	err = tx.Find(&follows).Error
	return follows, translate(err, "Follow", "")
}

func (r *followRepository) Delete(ctx context.Context, id string) error {
	res := r.q(ctx).Where("id = ?", id).Delete(&models.Follow{})
	if res.Error != nil {
		return translate(res.Error, "Follow", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Follow", id)
	}
	r.logger.LogDelete(ctx, map[string]any{"id": id})
	return nil
}

// DeletePair removes the follow edge. Deleting an absent edge is not an error.
func (r *followRepository) DeletePair(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.q(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return false, translate(res.Error, "Follow", followingID)
	}
	return res.RowsAffected > 0, nil
}
