package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"reelhub/internal/models"
	"reelhub/internal/repository"
	"reelhub/internal/testutil"
	"reelhub/internal/validation"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	identity     *Identity
	err          error
	lastRedirect string
}

func (p *fakeProvider) AuthCodeURL(state, redirectURL string) string {
	return "https://provider.test/auth?" + url.Values{"state": {state}, "redirect_uri": {redirectURL}}.Encode()
}

func (p *fakeProvider) Exchange(_ context.Context, code, redirectURL string) (*Identity, error) {
	p.lastRedirect = redirectURL
	if p.err != nil {
		return nil, p.err
	}
	if code == "" {
		return nil, errors.New("no code")
	}
	return p.identity, nil
}

type fixture struct {
	facade   *Facade
	provider *fakeProvider
	mr       *miniredis.Miniredis
	profiles repository.ProfileRepository
}

func setupFacade(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	mr, rdb := testutil.NewTestRedis(t)
	cols := models.DefaultCollections()
	provider := &fakeProvider{identity: &Identity{Provider: "google", Subject: "g-1", Email: "ada@example.com", Name: "Ada Lovelace"}}
	profiles := repository.NewProfileRepository(db, cols)
	f := NewFacade(
		provider,
		NewRedisStore(rdb),
		NewTokenSigner("test-secret"),
		repository.NewAccountRepository(db, cols),
		profiles,
		Settings{AppURL: "https://reel.example", AppDomain: "reel.example", SessionTTL: time.Hour},
	)
	return &fixture{facade: f, provider: provider, mr: mr, profiles: profiles}
}

func login(t *testing.T, fx *fixture, host string) *LoginResult {
	t.Helper()
	ctx := context.Background()
	authURL, err := fx.facade.BeginLogin(ctx, host)
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)

	res, err := fx.facade.CompleteLoginCallback(ctx, "code", u.Query().Get("state"))
	require.NoError(t, err)
	return res
}

func TestCallbackURL(t *testing.T) {
	fx := setupFacade(t)
	assert.Equal(t, "https://reel.example/auth-callback", fx.facade.CallbackURL("reel.example"))
	assert.Equal(t, "https://www.reel.example/auth-callback", fx.facade.CallbackURL("www.reel.example"))
	assert.Equal(t, "https://reel.example/auth-callback", fx.facade.CallbackURL("evil.test"))
}

func TestCompleteLoginCallback_CreatesProfileOnce(t *testing.T) {
	fx := setupFacade(t)

	first := login(t, fx, "www.reel.example")
	assert.Equal(t, "https://www.reel.example/auth-callback", fx.provider.lastRedirect)
	assert.Equal(t, "Ada Lovelace", first.Profile.Name)
	assert.Empty(t, first.Profile.Image)
	assert.Equal(t, first.Account.ID, first.Profile.UserID)
	assert.NotEmpty(t, first.Token)

	second := login(t, fx, "reel.example")
	assert.Equal(t, first.Account.ID, second.Account.ID)
	assert.Equal(t, first.Profile.ID, second.Profile.ID)

	profiles, err := fx.profiles.List(context.Background(), repository.ListQuery{
		Where: map[string]any{"user_id": first.Account.ID},
	})
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

// racingProfileRepo reports no profile on the first lookup, as if another
// login created it between the lookup and the insert.
type racingProfileRepo struct {
	repository.ProfileRepository
	lookups int
	creates int
}

func (r *racingProfileRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, models.NewNotFoundError("Profile", userID)
	}
	return r.ProfileRepository.GetByUserID(ctx, userID)
}

func (r *racingProfileRepo) Create(context.Context, *models.Profile) error {
	r.creates++
	return models.NewConflictError("profile already exists", nil)
}

func TestEnsureProfile_ConflictRereads(t *testing.T) {
	fx := setupFacade(t)
	ctx := context.Background()
	account := &models.Account{ID: "acct-1", Name: ""}

	existing := &models.Profile{UserID: "acct-1", Name: "Existing"}
	require.NoError(t, fx.profiles.Create(ctx, existing))

	racing := &racingProfileRepo{ProfileRepository: fx.profiles}
	fx.facade.profiles = racing

	got, err := fx.facade.EnsureProfile(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	assert.Equal(t, "Existing", got.Name)
	assert.Equal(t, 1, racing.creates)
	assert.Equal(t, 2, racing.lookups)
}

func TestEnsureProfile_TruncatesLongDisplayName(t *testing.T) {
	fx := setupFacade(t)
	account := &models.Account{ID: "acct-2", Name: strings.Repeat("é", validation.MaxProfileNameLength+15)}

	got, err := fx.facade.EnsureProfile(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, validation.MaxProfileNameLength, utf8.RuneCountInString(got.Name))
	assert.NoError(t, validation.ValidateProfileName(got.Name))
}

func TestCompleteLoginCallback_Failures(t *testing.T) {
	fx := setupFacade(t)
	ctx := context.Background()

	_, err := fx.facade.CompleteLoginCallback(ctx, "code", "never-issued")
	assert.Equal(t, models.CodeAuth, models.ErrorCode(err))

	authURL, err := fx.facade.BeginLogin(ctx, "reel.example")
	require.NoError(t, err)
	u, _ := url.Parse(authURL)
	fx.provider.err = errors.New("invalid_grant")
	_, err = fx.facade.CompleteLoginCallback(ctx, "code", u.Query().Get("state"))
	assert.Equal(t, models.CodeAuth, models.ErrorCode(err))

	// states are single use
	fx.provider.err = nil
	_, err = fx.facade.CompleteLoginCallback(ctx, "code", u.Query().Get("state"))
	assert.Equal(t, models.CodeAuth, models.ErrorCode(err))
}

func TestGetCurrentSession(t *testing.T) {
	fx := setupFacade(t)
	ctx := context.Background()

	sess, err := fx.facade.GetCurrentSession(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, sess)

	sess, err = fx.facade.GetCurrentSession(ctx, "garbage")
	assert.NoError(t, err)
	assert.Nil(t, sess)

	res := login(t, fx, "reel.example")
	sess, err = fx.facade.GetCurrentSession(ctx, res.Token)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, res.Account.ID, sess.AccountID)

	user, err := fx.facade.CurrentUser(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Profile.ID, user.Profile.ID)

	require.NoError(t, fx.facade.EndSession(ctx, res.Token))
	sess, err = fx.facade.GetCurrentSession(ctx, res.Token)
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestGetCurrentSession_Expired(t *testing.T) {
	fx := setupFacade(t)
	res := login(t, fx, "reel.example")

	fx.mr.FastForward(2 * time.Hour)
	sess, err := fx.facade.GetCurrentSession(context.Background(), res.Token)
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestGetCurrentSession_StoreDown(t *testing.T) {
	fx := setupFacade(t)
	res := login(t, fx, "reel.example")

	fx.mr.Close()
	_, err := fx.facade.GetCurrentSession(context.Background(), res.Token)
	assert.Error(t, err)
}

func TestTokenSigner(t *testing.T) {
	signer := NewTokenSigner("k1")
	tok, err := signer.Sign("s1", "a1", time.Now().Add(time.Minute))
	require.NoError(t, err)

	sid, aid, err := signer.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "s1", sid)
	assert.Equal(t, "a1", aid)

	_, _, err = NewTokenSigner("k2").Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := signer.Sign("s1", "a1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, _, err = signer.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
