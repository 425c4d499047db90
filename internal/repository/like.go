package repository

import (
	"context"

	"reelhub/internal/models"
	"reelhub/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines interface for like operations
type LikeRepository interface {
	Create(ctx context.Context, like *models.Like) error
	Upsert(ctx context.Context, userID, postID string) (*models.Like, bool, error)
	GetByID(ctx context.Context, id string) (*models.Like, error)
	Exists(ctx context.Context, userID, postID string) (bool, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)
	LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Like, error)
	List(ctx context.Context, q ListQuery) ([]*models.Like, error)
	Delete(ctx context.Context, id string) error
	DeletePair(ctx context.Context, userID, postID string) (bool, error)
}

var likeColumns = map[string]bool{
	"id": true, "user_id": true, "post_id": true, "created_at": true,
}

type likeRepository struct {
	table
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB, cols models.Collections) LikeRepository {
	return &likeRepository{table: newTable(db, cols.Likes)}
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	if err := r.q(ctx).Create(like).Error; err != nil {
		return translate(err, "Like", like.PostID)
	}
	r.logger.LogCreate(ctx, map[string]any{"id": like.ID, "post_id": like.PostID})
	return nil
}

// Upsert creates the (user, post) like unless it exists. The bool reports whether a row was inserted.
func (r *likeRepository) Upsert(ctx context.Context, userID, postID string) (*models.Like, bool, error) {
	like := &models.Like{UserID: userID, PostID: postID}
	res := r.q(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoNothing: true,
	}).Create(like)
	if res.Error != nil {
		return nil, false, translate(res.Error, "Like", postID)
	}
	if res.RowsAffected > 0 {
		r.logger.LogCreate(ctx, map[string]any{"id": like.ID, "post_id": postID})
		return like, true, nil
	}

	var existing models.Like
	if err := r.q(ctx).Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error; err != nil {
		return nil, false, translate(err, "Like", postID)
	}
	return &existing, false, nil
}

func (r *likeRepository) GetByID(ctx context.Context, id string) (*models.Like, error) {
	var like models.Like
	if err := r.q(ctx).Where("id = ?", id).First(&like).Error; err != nil {
		return nil, translate(err, "Like", id)
	}
	return &like, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	err := r.q(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, translate(err, "Like", postID)
}

func (r *likeRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.q(ctx).Where("post_id = ?", postID).Count(&count).Error
	return count, translate(err, "Like", postID)
}

type postCount struct {
	PostID string
	Count  int64
}

func countByPosts(tx *gorm.DB, postIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []postCount
	if err := tx.Select("post_id, count(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PostID] = row.Count
	}
	return out, nil
}

func (r *likeRepository) CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	defer observability.TrackQuery("count_by_posts", r.name)()
	counts, err := countByPosts(r.q(ctx), postIDs)
	return counts, translate(err, "Like", postIDs)
}

func (r *likeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	if err := r.q(ctx).Where("user_id = ? AND post_id IN ?", userID, postIDs).Pluck("post_id", &ids).Error; err != nil {
		return nil, translate(err, "Like", userID)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *likeRepository) ListByUser(ctx context.Context, userID string) ([]*models.Like, error) {
	var likes []*models.Like
	err := r.q(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&likes).Error
	return likes, translate(err, "Like", userID)
}

func (r *likeRepository) List(ctx context.Context, q ListQuery) ([]*models.Like, error) {
	tx, err := q.apply(r.q(ctx), likeColumns)
	if err != nil {
		return nil, err
	}
	var likes []*models.Like
	err = tx.Find(&likes).Error
	return likes, translate(err, "Like", "")
}

func (r *likeRepository) Delete(ctx context.Context, id string) error {
	res := r.q(ctx).Where("id = ?", id).Delete(&models.Like{})
	if res.Error != nil {
		return translate(res.Error, "Like", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Like", id)
	}
	r.logger.LogDelete(ctx, map[string]any{"id": id})
	return nil
}

// DeletePair removes the (user, post) like. Deleting an absent like is not an error.
func (r *likeRepository) DeletePair(ctx context.Context, userID, postID string) (bool, error) {
	res := r.q(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
	if res.Error != nil {
		return false, translate(res.Error, "Like", postID)
	}
	if res.RowsAffected > 0 {
		r.logger.LogDelete(ctx, map[string]any{"user_id": userID, "post_id": postID})
	}
	return res.RowsAffected > 0, nil
}
