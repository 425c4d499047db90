package repository

import (
	"context"

	"reelhub/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string, limit int) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)
	List(ctx context.Context, q ListQuery) ([]*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

var commentColumns = map[string]bool{
	"id": true, "user_id": true, "post_id": true, "created_at": true,
}

type commentRepository struct {
	table
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB, cols models.Collections) CommentRepository {
	return &commentRepository{table: newTable(db, cols.Comments)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.q(ctx).Create(comment).Error; err != nil {
		return translate(err, "Comment", comment.PostID)
	}
	r.logger.LogCreate(ctx, map[string]any{"id": comment.ID, "post_id": comment.PostID})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.q(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translate(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.q(ctx).
		Where("post_id = ?", postID).
		Order("created_at desc").
		Limit(ListQuery{Limit: limit}.limit()).
		Find(&comments).Error
	return comments, translate(err, "Comment", postID)
}

func (r *commentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.q(ctx).Where("post_id = ?", postID).Count(&count).Error
	return count, translate(err, "Comment", postID)
}

func (r *commentRepository) CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	counts, err := countByPosts(r.q(ctx), postIDs)
	return counts, translate(err, "Comment", postIDs)
}

func (r *commentRepository) List(ctx context.Context, q ListQuery) ([]*models.Comment, error) {
	tx, err := q.apply(r.q(ctx), commentColumns)
	if err != nil {
		return nil, err
	}
	var comments []*models.Comment
	err = tx.Find(&comments).Error
	return comments, translate(err, "Comment", "")
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	res := r.q(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return translate(res.Error, "Comment", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	r.logger.LogDelete(ctx, map[string]any{"id": id})
	return nil
}
