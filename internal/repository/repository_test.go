package repository

import (
	"context"
	"testing"
	"time"

	"reelhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPost(t *testing.T, r repos, userID, text string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: userID, VideoFileID: "file-" + text, Text: text}
	require.NoError(t, r.posts.Create(context.Background(), post))
	return post
}

func TestProfileRepository_UniqueUserID(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	p := &models.Profile{UserID: "acct-1", Name: "Ada"}
	require.NoError(t, r.profiles.Create(ctx, p))
	assert.NotEmpty(t, p.ID)

	err := r.profiles.Create(ctx, &models.Profile{UserID: "acct-1", Name: "Ada again"})
	require.Error(t, err)
	assert.True(t, models.IsConflict(err))

	got, err := r.profiles.GetByUserID(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = r.profiles.GetByUserID(ctx, "nobody")
	assert.True(t, models.IsNotFound(err))
}

func TestProfileRepository_UpdateAndSearch(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	p := &models.Profile{UserID: "acct-1", Name: "Grace Hopper"}
	require.NoError(t, r.profiles.Create(ctx, p))
	require.NoError(t, r.profiles.Create(ctx, &models.Profile{UserID: "acct-2", Name: "Alan Turing"}))

	bio := "compilers"
	updated, err := r.profiles.Update(ctx, p.ID, models.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "compilers", updated.Bio)
	assert.Equal(t, "Grace Hopper", updated.Name)

	found, err := r.profiles.Search(ctx, "hOPP", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "acct-1", found[0].UserID)

	none, err := r.profiles.Search(ctx, "%", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = r.profiles.Update(ctx, "missing", models.ProfileUpdate{Bio: &bio})
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_ListOrderAndFilters(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	first := createPost(t, r, "u1", "first")
	time.Sleep(2 * time.Millisecond)
	second := createPost(t, r, "u2", "second")

	posts, err := r.posts.List(ctx, ListQuery{Desc: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)

	mine, err := r.posts.List(ctx, ListQuery{Where: map[string]any{"user_id": "u1"}})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	_, err = r.posts.List(ctx, ListQuery{Where: map[string]any{"text; drop table posts": "x"}})
	assert.True(t, models.IsValidation(err))

	_, err = r.posts.GetByID(ctx, "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_UpdateText(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	post := createPost(t, r, "u1", "old")

	updated, err := r.posts.UpdateText(ctx, post.ID, "new caption")
	require.NoError(t, err)
	assert.Equal(t, "new caption", updated.Text)
	assert.Equal(t, post.VideoFileID, updated.VideoFileID)
}

func TestLikeRepository_UpsertIsIdempotent(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	post := createPost(t, r, "author", "p")

	first, created, err := r.likes.Upsert(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := r.likes.Upsert(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	n, err := r.likes.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	deleted, err := r.likes.DeletePair(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = r.likes.DeletePair(ctx, "u1", post.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLikeRepository_BatchLookups(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	a := createPost(t, r, "author", "a")
	b := createPost(t, r, "author", "b")

	for _, u := range []string{"u1", "u2"} {
		_, _, err := r.likes.Upsert(ctx, u, a.ID)
		require.NoError(t, err)
	}
	_, _, err := r.likes.Upsert(ctx, "u1", b.ID)
	require.NoError(t, err)

	counts, err := r.likes.CountByPosts(ctx, []string{a.ID, b.ID, "none"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[a.ID])
	assert.Equal(t, int64(1), counts[b.ID])
	assert.Equal(t, int64(0), counts["none"])

	liked, err := r.likes.LikedPostIDs(ctx, "u2", []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.True(t, liked[a.ID])
	assert.False(t, liked[b.ID])
}

func TestCommentRepository_ListNewestFirst(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	post := createPost(t, r, "author", "p")

	require.NoError(t, r.comments.Create(ctx, &models.Comment{UserID: "u1", PostID: post.ID, Text: "one"}))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, r.comments.Create(ctx, &models.Comment{UserID: "u2", PostID: post.ID, Text: "two"}))

	comments, err := r.comments.ListByPost(ctx, post.ID, 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "two", comments[0].Text)

	n, err := r.comments.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, r.comments.Delete(ctx, comments[0].ID))
	assert.True(t, models.IsNotFound(r.comments.Delete(ctx, comments[0].ID)))
}

func TestPostRepository_DeleteCascade(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	post := createPost(t, r, "author", "p")
	keep := createPost(t, r, "author", "keep")

	_, _, err := r.likes.Upsert(ctx, "u1", post.ID)
	require.NoError(t, err)
	_, _, err = r.likes.Upsert(ctx, "u1", keep.ID)
	require.NoError(t, err)
	require.NoError(t, r.comments.Create(ctx, &models.Comment{UserID: "u1", PostID: post.ID, Text: "x"}))

	deleted, err := r.posts.DeleteCascade(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.VideoFileID, deleted.VideoFileID)

	n, err := r.likes.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = r.comments.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = r.likes.CountByPost(ctx, keep.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = r.posts.DeleteCascade(ctx, post.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_PurgeOrphans(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	post := createPost(t, r, "author", "p")

	_, _, err := r.likes.Upsert(ctx, "u1", post.ID)
	require.NoError(t, err)
	_, _, err = r.likes.Upsert(ctx, "u1", "gone")
	require.NoError(t, err)
	require.NoError(t, r.comments.Create(ctx, &models.Comment{UserID: "u1", PostID: "gone", Text: "x"}))

	report, err := r.posts.PurgeOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, OrphanReport{Likes: 1, Comments: 1}, report)

	n, err := r.likes.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFollowRepository(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	_, created, err := r.follows.Upsert(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, created)
	_, created, err = r.follows.Upsert(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, created)
	_, _, err = r.follows.Upsert(ctx, "a", "c")
	require.NoError(t, err)

	ok, err := r.follows.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := r.follows.FollowingIDs(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, ids)

	among, err := r.follows.FollowingAmong(ctx, "a", []string{"b", "z"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"b": true}, among)

	n, err := r.follows.CountFollowers(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAccountRepository_FindOrCreate(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	first, err := r.accounts.FindOrCreate(ctx, &models.Account{Provider: "google", Subject: "123", Name: "Ada"})
	require.NoError(t, err)
	second, err := r.accounts.FindOrCreate(ctx, &models.Account{Provider: "google", Subject: "123", Name: "Ada L."})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ada L.", second.Name)
}

func TestFileRepository(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	f := &models.StoredFile{Bucket: "videos", Name: "a.mp4", ContentType: "video/mp4", Size: 10, Path: "videos/x"}
	require.NoError(t, r.files.Create(ctx, f))

	got, err := r.files.GetByID(ctx, "videos", f.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.mp4", got.Name)

	_, err = r.files.GetByID(ctx, "avatars", f.ID)
	assert.True(t, models.IsNotFound(err))

	require.NoError(t, r.files.Delete(ctx, "videos", f.ID))
	assert.True(t, models.IsNotFound(r.files.Delete(ctx, "videos", f.ID)))
}
