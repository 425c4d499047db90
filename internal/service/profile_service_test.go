package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"reelhub/internal/models"
	"reelhub/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := observability.GlobalLogger
	observability.GlobalLogger = &observability.Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}
	t.Cleanup(func() { observability.GlobalLogger = prev })
	return &buf
}

func TestSetAvatar_UpdateFailureRollsBackUpload(t *testing.T) {
	profiles := &profileRepoStub{
		getByUserIDFn: func(_ context.Context, userID string) (*models.Profile, error) {
			return &models.Profile{ID: "prof-1", UserID: userID}, nil
		},
		updateFn: func(context.Context, string, models.ProfileUpdate) (*models.Profile, error) {
			return nil, errors.New("db down")
		},
	}
	files := noopFileStore()
	files.deleteFn = func(context.Context, string, string) error { return errors.New("bucket unavailable") }
	logs := captureLogs(t)

	svc := NewProfileService(profiles, files, nil, testMedia(), 1<<20)
	_, err := svc.SetAvatar(context.Background(), "u1", AvatarInput{
		FileName:    "me.png",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("png!"),
	})
	require.EqualError(t, err, "db down")
	assert.Equal(t, []string{"file-1"}, files.deleted)
	assert.Contains(t, logs.String(), `"operation":"set_avatar_cleanup"`)
	assert.Contains(t, logs.String(), "bucket unavailable")
}

func TestSetAvatar_RemovesPreviousImage(t *testing.T) {
	profiles := &profileRepoStub{
		getByUserIDFn: func(_ context.Context, userID string) (*models.Profile, error) {
			return &models.Profile{ID: "prof-1", UserID: userID, Image: "old-file"}, nil
		},
		updateFn: func(_ context.Context, id string, u models.ProfileUpdate) (*models.Profile, error) {
			return &models.Profile{ID: id, UserID: "u1", Image: *u.Image}, nil
		},
	}
	files := noopFileStore()

	svc := NewProfileService(profiles, files, nil, testMedia(), 1<<20)
	got, err := svc.SetAvatar(context.Background(), "u1", AvatarInput{
		FileName:    "me.png",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("png!"),
	})
	require.NoError(t, err)
	assert.Equal(t, "file-1", got.Image)
	assert.Equal(t, []string{"old-file"}, files.deleted)
}
