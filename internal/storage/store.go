package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"reelhub/internal/models"
	"reelhub/internal/observability"
	"reelhub/internal/repository"
)

var safeSegment = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// UploadInput describes an object to store.
type UploadInput struct {
	Bucket      string
	Name        string
	ContentType string
	OwnerID     string
	Body        io.Reader
}

// Store writes objects under a root directory and records their metadata.
type Store struct {
	root  string
	files repository.FileRepository
}

// NewLocalStore returns a Store rooted at dir.
func NewLocalStore(dir string, files repository.FileRepository) *Store {
	return &Store{root: dir, files: files}
}

func (s *Store) objectPath(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func checkSegments(bucket, id string) error {
	if !safeSegment.MatchString(bucket) {
		return models.NewValidationError("invalid bucket")
	}
	if id != "" && !safeSegment.MatchString(id) {
		return models.NewValidationError("invalid file id")
	}
	return nil
}

// Save streams in.Body to disk and returns the stored file record.
func (s *Store) Save(ctx context.Context, in UploadInput) (*models.StoredFile, error) {
	if err := checkSegments(in.Bucket, ""); err != nil {
		return nil, err
	}
	if in.Body == nil {
		return nil, models.NewValidationError("no file uploaded")
	}

	id := models.NewID()
	rel := filepath.ToSlash(filepath.Join(in.Bucket, id[:2], id))
	abs := s.objectPath(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return nil, models.NewInternalError(err)
	}

	f, err := os.OpenFile(abs, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	size, err := io.Copy(f, in.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(abs)
		observability.UploadsTotal.WithLabelValues(in.Bucket, "error").Inc()
		return nil, models.NewInternalError(err)
	}

	record := &models.StoredFile{
		ID:          id,
		Bucket:      in.Bucket,
		Name:        filepath.Base(in.Name),
		ContentType: in.ContentType,
		Size:        size,
		OwnerID:     in.OwnerID,
		Path:        rel,
	}
	if err := s.files.Create(ctx, record); err != nil {
		_ = os.Remove(abs)
		observability.UploadsTotal.WithLabelValues(in.Bucket, "error").Inc()
		return nil, err
	}
	observability.UploadsTotal.WithLabelValues(in.Bucket, "ok").Inc()
	return record, nil
}

// Stat returns the metadata of a stored file.
func (s *Store) Stat(ctx context.Context, bucket, id string) (*models.StoredFile, error) {
	if err := checkSegments(bucket, id); err != nil {
		return nil, err
	}
	return s.files.GetByID(ctx, bucket, id)
}

// Open returns the metadata and an open handle to the stored bytes.
func (s *Store) Open(ctx context.Context, bucket, id string) (*models.StoredFile, *os.File, error) {
	file, err := s.Stat(ctx, bucket, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(s.objectPath(file.Path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, models.NewNotFoundError("File", id)
		}
		return nil, nil, models.NewInternalError(err)
	}
	return file, f, nil
}

// Delete removes the record and the stored bytes, including cached previews.
func (s *Store) Delete(ctx context.Context, bucket, id string) error {
	file, err := s.Stat(ctx, bucket, id)
	if err != nil {
		return err
	}
	if err := s.files.Delete(ctx, bucket, id); err != nil {
		return err
	}
	abs := s.objectPath(file.Path)
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return models.NewInternalError(fmt.Errorf("remove %s: %w", file.Path, err))
	}
	previews, _ := filepath.Glob(abs + ".preview-*")
	for _, p := range previews {
		_ = os.Remove(p)
	}
	return nil
}
