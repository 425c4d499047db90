package repository

import (
	"context"
	"time"

	"reelhub/internal/models"
	"reelhub/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines interface for post operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Post, error)
	List(ctx context.Context, q ListQuery) ([]*models.Post, error)
	ListByUserIDs(ctx context.Context, userIDs []string, limit int) ([]*models.Post, error)
	UpdateText(ctx context.Context, id, text string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	DeleteCascade(ctx context.Context, id string) (*models.Post, error)
	PurgeOrphans(ctx context.Context) (OrphanReport, error)
}

// OrphanReport counts rows removed because their post no longer exists.
type OrphanReport struct {
	Likes    int64 `json:"likes" yaml:"likes"`
	Comments int64 `json:"comments" yaml:"comments"`
}

var postColumns = map[string]bool{
	"id": true, "user_id": true, "created_at": true, "updated_at": true,
}

type postRepository struct {
	table
	likes    string
	comments string
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB, cols models.Collections) PostRepository {
	return &postRepository{
		table:    newTable(db, cols.Posts),
		likes:    cols.Likes,
		comments: cols.Comments,
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.q(ctx).Create(post).Error; err != nil {
		return translate(err, "Post", post.ID)
	}
	r.logger.LogCreate(ctx, map[string]any{"id": post.ID, "user_id": post.UserID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.q(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Post, error) {
	if len(ids) == 0 {
		return []*models.Post{}, nil
	}
	var posts []*models.Post
	err := r.q(ctx).Where("id IN ?", ids).Order("created_at desc").Find(&posts).Error
	return posts, translate(err, "Post", ids)
}

func (r *postRepository) List(ctx context.Context, q ListQuery) ([]*models.Post, error) {
	defer observability.TrackQuery("list", r.name)()
	tx, err := q.apply(r.q(ctx), postColumns)
	if err != nil {
		return nil, err
	}
	var posts []*models.Post
	err = tx.Find(&posts).Error
	return posts, translate(err, "Post", "")
}

func (r *postRepository) ListByUserIDs(ctx context.Context, userIDs []string, limit int) ([]*models.Post, error) {
	if len(userIDs) == 0 {
		return []*models.Post{}, nil
	}
	var posts []*models.Post
	err := r.q(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at desc").
		Limit(ListQuery{Limit: limit}.limit()).
		Find(&posts).Error
	return posts, translate(err, "Post", userIDs)
}

func (r *postRepository) UpdateText(ctx context.Context, id, text string) (*models.Post, error) {
	res := r.q(ctx).Where("id = ?", id).Updates(map[string]any{
		"text":       text,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return nil, translate(res.Error, "Post", id)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	r.logger.LogUpdate(ctx, map[string]any{"id": id})
	return r.GetByID(ctx, id)
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	res := r.q(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return translate(res.Error, "Post", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	r.logger.LogDelete(ctx, map[string]any{"id": id})
	return nil
}

// DeleteCascade removes the post with its likes and comments in one transaction
// and returns the deleted post.
func (r *postRepository) DeleteCascade(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(r.name).Where("id = ?", id).First(&post).Error; err != nil {
			return translate(err, "Post", id)
		}
		if err := tx.Table(r.likes).Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Table(r.comments).Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Table(r.name).Where("id = ?", id).Delete(&models.Post{}).Error
	})
	if err != nil {
		return nil, translate(err, "Post", id)
	}
	r.logger.LogDelete(ctx, map[string]any{"id": id, "cascade": true})
	return &post, nil
}

func (r *postRepository) PurgeOrphans(ctx context.Context) (OrphanReport, error) {
	var report OrphanReport
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(r.likes).Where("post_id NOT IN (?)", tx.Table(r.name).Select("id")).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		report.Likes = res.RowsAffected

		res = tx.Table(r.comments).Where("post_id NOT IN (?)", tx.Table(r.name).Select("id")).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		report.Comments = res.RowsAffected
		return nil
	})
	return report, translate(err, "Post", "")
}
