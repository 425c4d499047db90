package repository

import (
	"context"

	"reelhub/internal/models"

	"gorm.io/gorm"
)

// FileRepository stores metadata of uploaded objects.
type FileRepository interface {
	Create(ctx context.Context, file *models.StoredFile) error
	GetByID(ctx context.Context, bucket, id string) (*models.StoredFile, error)
	Delete(ctx context.Context, bucket, id string) error
}

type fileRepository struct {
	table
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *gorm.DB, cols models.Collections) FileRepository {
	return &fileRepository{table: newTable(db, cols.Files)}
}

func (r *fileRepository) Create(ctx context.Context, file *models.StoredFile) error {
	if err := r.q(ctx).Create(file).Error; err != nil {
		return translate(err, "File", file.ID)
	}
	r.logger.LogCreate(ctx, map[string]any{"id": file.ID, "bucket": file.Bucket, "size": file.Size})
	return nil
}

func (r *fileRepository) GetByID(ctx context.Context, bucket, id string) (*models.StoredFile, error) {
	var file models.StoredFile
	if err := r.q(ctx).Where("id = ? AND bucket = ?", id, bucket).First(&file).Error; err != nil {
		return nil, translate(err, "File", id)
	}
	return &file, nil
}

func (r *fileRepository) Delete(ctx context.Context, bucket, id string) error {
	res := r.q(ctx).Where("id = ? AND bucket = ?", id, bucket).Delete(&models.StoredFile{})
	if res.Error != nil {
		return translate(res.Error, "File", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("File", id)
	}
	r.logger.LogDelete(ctx, map[string]any{"id": id, "bucket": bucket})
	return nil
}
