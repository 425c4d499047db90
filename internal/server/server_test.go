package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"reelhub/internal/auth"
	"reelhub/internal/backend"
	"reelhub/internal/bootstrap"
	"reelhub/internal/config"
	"reelhub/internal/featureflags"
	"reelhub/internal/middleware"
	"reelhub/internal/models"
	"reelhub/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testProvider treats the OAuth code as the provider subject.
type testProvider struct{}

func (testProvider) AuthCodeURL(state, redirectURL string) string {
	return "https://provider.test/auth?" + url.Values{"state": {state}, "redirect_uri": {redirectURL}}.Encode()
}

func (testProvider) Exchange(_ context.Context, code, _ string) (*auth.Identity, error) {
	if code == "rejected" {
		return nil, errors.New("access denied")
	}
	return &auth.Identity{Provider: "google", Subject: code, Email: code + "@example.com", Name: "User " + code}, nil
}

func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	cfg := &config.Config{
		Env:              "test",
		Port:             "0",
		AppURL:           "http://localhost:3000",
		StorageDir:       t.TempDir(),
		StorageBucketID:  "videos",
		MediaBaseURL:     "http://localhost:8080",
		MaxVideoUploadMB: 1,
		MaxImageUploadMB: 1,
		Collections:      models.DefaultCollections(),
		SessionSecret:    "test-secret",
		FeatureFlags:     "live_search=on,following_feed=on",
	}
	db := testutil.NewTestDB(t)
	_, rdb := testutil.NewTestRedis(t)

	rt, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{
		Provider: testProvider{},
		Backend:  []backend.Option{backend.WithDB(db), backend.WithRedis(rdb)},
	})
	require.NoError(t, err)

	s := NewServer(rt)
	t.Cleanup(s.shutdownFn)
	return s, s.App()
}

func do(t *testing.T, app *fiber.App, req *http.Request, token string) *http.Response {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func jsonRequest(method, target string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

// login runs the provider round-trip and returns the session token.
func login(t *testing.T, app *fiber.App, subject string) string {
	t.Helper()
	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/auth/login", nil), "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get(fiber.HeaderLocation))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	cb := "/auth-callback?" + url.Values{"code": {subject}, "state": {state}}.Encode()
	resp = do(t, app, httptest.NewRequest(http.MethodGet, cb, nil), "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			assert.True(t, c.HttpOnly)
			return c.Value
		}
	}
	t.Fatal("no session cookie set")
	return ""
}

func sessionUserID(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/api/session", nil), token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user models.CurrentUser
	decode(t, resp, &user)
	require.NotNil(t, user.Account)
	return user.Account.ID
}

func createPost(t *testing.T, app *fiber.App, token, caption string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("caption", caption))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="video"; filename="clip.mp4"`)
	h.Set("Content-Type", "video/mp4")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x00\x00\x00\x18ftypmp42test-video"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp := do(t, app, req, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post map[string]any
	decode(t, resp, &post)
	return post
}

func TestLivenessCheck(t *testing.T) {
	_, app := newTestServer(t)
	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/health/live", nil), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadinessCheck(t *testing.T) {
	_, app := newTestServer(t)
	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/health/ready", nil), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestGetSession_Anonymous(t *testing.T) {
	_, app := newTestServer(t)
	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/api/session", nil), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(string(body)))
}

func TestLoginFlow_CreatesSessionAndProfile(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "ada")

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/api/session", nil), token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user models.CurrentUser
	decode(t, resp, &user)
	require.NotNil(t, user.Account)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "ada@example.com", user.Account.Email)
	assert.Equal(t, "User ada", user.Profile.Name)

	// Logging in again lands on the same account.
	again := login(t, app, "ada")
	assert.Equal(t, user.Account.ID, sessionUserID(t, app, again))
}

func TestLogout_EndsSession(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "ada")

	resp := do(t, app, httptest.NewRequest(http.MethodPost, "/api/session/logout", nil), token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/session", nil), token)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "null", strings.TrimSpace(string(body)))
}

func TestAuthCallback_Failures(t *testing.T) {
	_, app := newTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing code", "/auth-callback?state=abc"},
		{"unknown state", "/auth-callback?code=ada&state=never-issued"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, app, httptest.NewRequest(http.MethodGet, tt.query, nil), "")
			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, "/auth/failure", resp.Header.Get(fiber.HeaderLocation))
		})
	}

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/auth/failure", nil), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthCallback_ProviderRejects(t *testing.T) {
	_, app := newTestServer(t)
	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/auth/login", nil), "")
	loc, err := url.Parse(resp.Header.Get(fiber.HeaderLocation))
	require.NoError(t, err)

	cb := "/auth-callback?" + url.Values{"code": {"rejected"}, "state": {loc.Query().Get("state")}}.Encode()
	resp = do(t, app, httptest.NewRequest(http.MethodGet, cb, nil), "")
	assert.Equal(t, "/auth/failure", resp.Header.Get(fiber.HeaderLocation))
}

func TestCreatePost_RequiresSession(t *testing.T) {
	_, app := newTestServer(t)
	resp := do(t, app, httptest.NewRequest(http.MethodPost, "/api/posts", nil), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreatePost_MissingVideo(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "ada")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("caption", "no file"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

	resp := do(t, app, req, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostLifecycle(t *testing.T) {
	_, app := newTestServer(t)
	alice := login(t, app, "alice")
	bob := login(t, app, "bob")

	post := createPost(t, app, alice, "first clip")
	postID := post["id"].(string)
	assert.Equal(t, "first clip", post["text"])

	// The stored video is served back from its resolved URL.
	videoURL, err := url.Parse(post["video_url"].(string))
	require.NoError(t, err)
	resp := do(t, app, httptest.NewRequest(http.MethodGet, videoURL.Path, nil), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "video/mp4", resp.Header.Get(fiber.HeaderContentType))

	// Bob likes and comments.
	resp = do(t, app, httptest.NewRequest(http.MethodPost, "/api/posts/"+postID+"/like", nil), bob)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled map[string]any
	decode(t, resp, &toggled)
	assert.Equal(t, true, toggled["liked"])
	assert.Equal(t, float64(1), toggled["count"])

	resp = do(t, app, jsonRequest(http.MethodPost, "/api/posts/"+postID+"/comments", map[string]string{"text": "love it"}), bob)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decode(t, resp, &comment)

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/posts/"+postID+"/comments", nil), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []map[string]any
	decode(t, resp, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "User bob", comments[0]["author"].(map[string]any)["name"])

	// The feed carries author, counts and viewer state.
	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/posts", nil), bob)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed []map[string]any
	decode(t, resp, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, float64(1), feed[0]["like_count"])
	assert.Equal(t, float64(1), feed[0]["comment_count"])
	assert.Equal(t, true, feed[0]["liked_by_viewer"])
	assert.Equal(t, "User alice", feed[0]["author"].(map[string]any)["name"])

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/posts/"+postID+"/share", nil), "")
	var share map[string]string
	decode(t, resp, &share)
	assert.Equal(t, "http://localhost:3000/post/"+postID+"/"+post["user_id"].(string), share["url"])

	// Only the author edits or deletes.
	resp = do(t, app, jsonRequest(http.MethodPut, "/api/posts/"+postID, map[string]string{"caption": "hijack"}), bob)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = do(t, app, httptest.NewRequest(http.MethodDelete, "/api/comments/"+comment.ID, nil), alice)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, app, jsonRequest(http.MethodPut, "/api/posts/"+postID, map[string]string{"caption": "edited"}), alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest(http.MethodDelete, "/api/posts/"+postID, nil), alice)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/posts/"+postID, nil), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, app, httptest.NewRequest(http.MethodGet, videoURL.Path, nil), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleFollow(t *testing.T) {
	_, app := newTestServer(t)
	alice := login(t, app, "alice")
	bob := login(t, app, "bob")
	aliceID := sessionUserID(t, app, alice)
	bobID := sessionUserID(t, app, bob)

	resp := do(t, app, httptest.NewRequest(http.MethodPost, "/api/users/"+aliceID+"/follow", nil), alice)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	createPost(t, app, bob, "from bob")

	resp = do(t, app, httptest.NewRequest(http.MethodPost, "/api/users/"+bobID+"/follow", nil), alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, true, body["following"])
	assert.Equal(t, float64(1), body["follower_count"])

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/users/"+aliceID+"/following", nil), "")
	var following []models.Profile
	decode(t, resp, &following)
	require.Len(t, following, 1)
	assert.Equal(t, bobID, following[0].UserID)

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/posts/following", nil), alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed []map[string]any
	decode(t, resp, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, true, feed[0]["viewer_follows_author"])

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/profiles/"+bobID, nil), alice)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile map[string]any
	decode(t, resp, &profile)
	assert.Equal(t, true, profile["viewer_following"])
}

func TestProfiles(t *testing.T) {
	_, app := newTestServer(t)
	token := login(t, app, "grace")

	resp := do(t, app, jsonRequest(http.MethodPut, "/api/profiles/me", map[string]string{"name": "Grace Hopper", "bio": "compilers"}), token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/profiles/search?q=hop", nil), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []models.Profile
	decode(t, resp, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "compilers", found[0].Bio)

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/api/profiles/nobody", nil), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLogClientEvent(t *testing.T) {
	_, app := newTestServer(t)

	resp := do(t, app, jsonRequest(http.MethodPost, "/api/log", map[string]any{"level": "error", "msg": "boom"}), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader("{not json"))
	resp = do(t, app, req, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFollowingFeed_FlagOff(t *testing.T) {
	s, _ := newTestServer(t)
	s.rt.Flags = featureflags.NewManager("")
	s.app = nil
	app := s.App()
	token := login(t, app, "ada")

	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/api/posts/following", nil), token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
