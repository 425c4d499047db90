package repository

import (
	"testing"

	"reelhub/internal/models"
	"reelhub/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

type repos struct {
	profiles ProfileRepository
	posts    PostRepository
	likes    LikeRepository
	comments CommentRepository
	follows  FollowRepository
	files    FileRepository
	accounts AccountRepository
}

func setupRepos(t *testing.T) repos {
	t.Helper()
	db := testutil.NewTestDB(t)
	cols := models.DefaultCollections()
	return repos{
		profiles: NewProfileRepository(db, cols),
		posts:    NewPostRepository(db, cols),
		likes:    NewLikeRepository(db, cols),
		comments: NewCommentRepository(db, cols),
		follows:  NewFollowRepository(db, cols),
		files:    NewFileRepository(db, cols),
		accounts: NewAccountRepository(db, cols),
	}
}
