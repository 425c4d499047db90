package service

import (
	"context"
	"sync"

	"reelhub/internal/models"
	"reelhub/internal/repository"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, string) (*models.Post, error)
	getByIDsFn      func(context.Context, []string) ([]*models.Post, error)
	listFn          func(context.Context, repository.ListQuery) ([]*models.Post, error)
	listByUserIDsFn func(context.Context, []string, int) ([]*models.Post, error)
	updateTextFn    func(context.Context, string, string) (*models.Post, error)
	deleteFn        func(context.Context, string) error
	deleteCascadeFn func(context.Context, string) (*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByIDs(ctx context.Context, ids []string) ([]*models.Post, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *postRepoStub) List(ctx context.Context, q repository.ListQuery) ([]*models.Post, error) {
	return s.listFn(ctx, q)
}
func (s *postRepoStub) ListByUserIDs(ctx context.Context, ids []string, limit int) ([]*models.Post, error) {
	return s.listByUserIDsFn(ctx, ids, limit)
}
func (s *postRepoStub) UpdateText(ctx context.Context, id, text string) (*models.Post, error) {
	return s.updateTextFn(ctx, id, text)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) DeleteCascade(ctx context.Context, id string) (*models.Post, error) {
	return s.deleteCascadeFn(ctx, id)
}
func (s *postRepoStub) PurgeOrphans(context.Context) (repository.OrphanReport, error) {
	return repository.OrphanReport{}, nil
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = models.NewID()
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.Post, error) {
			return &models.Post{ID: id, UserID: "author"}, nil
		},
		getByIDsFn:      func(_ context.Context, _ []string) ([]*models.Post, error) { return nil, nil },
		listFn:          func(_ context.Context, _ repository.ListQuery) ([]*models.Post, error) { return nil, nil },
		listByUserIDsFn: func(_ context.Context, _ []string, _ int) ([]*models.Post, error) { return nil, nil },
		updateTextFn: func(_ context.Context, id, text string) (*models.Post, error) {
			return &models.Post{ID: id, Text: text}, nil
		},
		deleteFn: func(_ context.Context, _ string) error { return nil },
		deleteCascadeFn: func(_ context.Context, id string) (*models.Post, error) {
			return &models.Post{ID: id, VideoFileID: "file-" + id}, nil
		},
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	upsertFn       func(context.Context, string, string) (*models.Like, bool, error)
	getByIDFn      func(context.Context, string) (*models.Like, error)
	existsFn       func(context.Context, string, string) (bool, error)
	countByPostFn  func(context.Context, string) (int64, error)
	listByUserFn   func(context.Context, string) ([]*models.Like, error)
	deleteFn       func(context.Context, string) error
	deletePairFn   func(context.Context, string, string) (bool, error)
	countByPostsFn func(context.Context, []string) (map[string]int64, error)
}

func (s *likeRepoStub) Create(context.Context, *models.Like) error { return nil }
func (s *likeRepoStub) Upsert(ctx context.Context, userID, postID string) (*models.Like, bool, error) {
	return s.upsertFn(ctx, userID, postID)
}
func (s *likeRepoStub) GetByID(ctx context.Context, id string) (*models.Like, error) {
	return s.getByIDFn(ctx, id)
}
func (s *likeRepoStub) Exists(ctx context.Context, userID, postID string) (bool, error) {
	return s.existsFn(ctx, userID, postID)
}
func (s *likeRepoStub) CountByPost(ctx context.Context, postID string) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *likeRepoStub) CountByPosts(ctx context.Context, ids []string) (map[string]int64, error) {
	return s.countByPostsFn(ctx, ids)
}
func (s *likeRepoStub) LikedPostIDs(context.Context, string, []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}
func (s *likeRepoStub) ListByUser(ctx context.Context, userID string) ([]*models.Like, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *likeRepoStub) List(context.Context, repository.ListQuery) ([]*models.Like, error) {
	return nil, nil
}
func (s *likeRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *likeRepoStub) DeletePair(ctx context.Context, userID, postID string) (bool, error) {
	return s.deletePairFn(ctx, userID, postID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		upsertFn: func(_ context.Context, userID, postID string) (*models.Like, bool, error) {
			return &models.Like{ID: models.NewID(), UserID: userID, PostID: postID}, true, nil
		},
		getByIDFn:      func(_ context.Context, id string) (*models.Like, error) { return &models.Like{ID: id}, nil },
		existsFn:       func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		countByPostFn:  func(_ context.Context, _ string) (int64, error) { return 0, nil },
		listByUserFn:   func(_ context.Context, _ string) ([]*models.Like, error) { return nil, nil },
		deleteFn:       func(_ context.Context, _ string) error { return nil },
		deletePairFn:   func(_ context.Context, _, _ string) (bool, error) { return true, nil },
		countByPostsFn: func(_ context.Context, _ []string) (map[string]int64, error) { return map[string]int64{}, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	upsertFn       func(context.Context, string, string) (*models.Follow, bool, error)
	existsFn       func(context.Context, string, string) (bool, error)
	followingIDsFn func(context.Context, string) ([]string, error)
	deletePairFn   func(context.Context, string, string) (bool, error)
}

func (s *followRepoStub) Upsert(ctx context.Context, followerID, followingID string) (*models.Follow, bool, error) {
	return s.upsertFn(ctx, followerID, followingID)
}
func (s *followRepoStub) GetByID(_ context.Context, id string) (*models.Follow, error) {
	return &models.Follow{ID: id}, nil
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.existsFn(ctx, followerID, followingID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	return s.followingIDsFn(ctx, followerID)
}
func (s *followRepoStub) FollowingAmong(context.Context, string, []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}
func (s *followRepoStub) CountFollowers(context.Context, string) (int64, error) { return 0, nil }
func (s *followRepoStub) List(context.Context, repository.ListQuery) ([]*models.Follow, error) {
	return nil, nil
}
func (s *followRepoStub) Delete(context.Context, string) error { return nil }
func (s *followRepoStub) DeletePair(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.deletePairFn(ctx, followerID, followingID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		upsertFn: func(_ context.Context, followerID, followingID string) (*models.Follow, bool, error) {
			return &models.Follow{ID: models.NewID(), FollowerID: followerID, FollowingID: followingID}, true, nil
		},
		existsFn:       func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		followingIDsFn: func(_ context.Context, _ string) ([]string, error) { return nil, nil },
		deletePairFn:   func(_ context.Context, _, _ string) (bool, error) { return true, nil },
	}
}

// recordingPublisher keeps every published notification.
type recordingPublisher struct {
	mu   sync.Mutex
	sent map[string][]models.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, userID string, n models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[string][]models.Notification{}
	}
	p.sent[userID] = append(p.sent[userID], n)
	return nil
}

func (p *recordingPublisher) count(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent[userID])
}

// profileRepoStub is a stub for repository.ProfileRepository. Unset funcs panic.
type profileRepoStub struct {
	repository.ProfileRepository
	getByUserIDFn func(context.Context, string) (*models.Profile, error)
	updateFn      func(context.Context, string, models.ProfileUpdate) (*models.Profile, error)
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) Update(ctx context.Context, id string, update models.ProfileUpdate) (*models.Profile, error) {
	return s.updateFn(ctx, id, update)
}
