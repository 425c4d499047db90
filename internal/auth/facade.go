package auth

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"

	"reelhub/internal/middleware"
	"reelhub/internal/models"
	"reelhub/internal/repository"
	"reelhub/internal/validation"
)

// CallbackPath is where the provider sends the browser back to.
const CallbackPath = "/auth-callback"

// Settings configures the facade.
type Settings struct {
	AppURL     string
	AppDomain  string
	SessionTTL time.Duration
}

// LoginResult is the outcome of a completed login.
type LoginResult struct {
	Account *models.Account
	Profile *models.Profile
	Session *models.Session
	Token   string
}

// Facade runs the login flow. It keeps no session state of its own;
// every lookup goes to the session store.
type Facade struct {
	provider Provider
	store    SessionStore
	tokens   *TokenSigner
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	settings Settings
}

// NewFacade wires the facade to its collaborators.
func NewFacade(
	provider Provider,
	store SessionStore,
	tokens *TokenSigner,
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	settings Settings,
) *Facade {
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = 7 * 24 * time.Hour
	}
	return &Facade{
		provider: provider,
		store:    store,
		tokens:   tokens,
		accounts: accounts,
		profiles: profiles,
		settings: settings,
	}
}

// CallbackURL computes the callback for a request that arrived at host.
// The bare app domain and its www. variant are honored; anything else falls back to APP_URL.
func (f *Facade) CallbackURL(host string) string {
	base, err := url.Parse(f.settings.AppURL)
	if err != nil || base.Host == "" {
		base = &url.URL{Scheme: "http", Host: "localhost:3000"}
	}

	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}
	hostname = strings.ToLower(hostname)
	domain := strings.ToLower(f.settings.AppDomain)

	target := base.Host
	if domain != "" && (hostname == domain || hostname == "www."+domain) {
		target = host
	}
	return (&url.URL{Scheme: base.Scheme, Host: target, Path: CallbackPath}).String()
}

// BeginLogin records a fresh login state and returns the provider URL to redirect to.
func (f *Facade) BeginLogin(ctx context.Context, host string) (string, error) {
	state := models.NewID()
	callback := f.CallbackURL(host)
	if err := f.store.SaveState(ctx, state, callback); err != nil {
		return "", models.NewAuthError("could not start login", err)
	}
	return f.provider.AuthCodeURL(state, callback), nil
}

// CompleteLoginCallback finishes the provider round-trip, establishes a session,
// and makes sure the account has a profile.
func (f *Facade) CompleteLoginCallback(ctx context.Context, code, state string) (*LoginResult, error) {
	if code == "" || state == "" {
		return nil, models.NewAuthError("missing code or state", nil)
	}
	callback, err := f.store.TakeState(ctx, state)
	if err != nil {
		return nil, models.NewAuthError("could not verify login state", err)
	}
	if callback == "" {
		return nil, models.NewAuthError("unknown or expired login state", nil)
	}

	identity, err := f.provider.Exchange(ctx, code, callback)
	if err != nil {
		return nil, models.NewAuthError("provider rejected the login", err)
	}

	account, err := f.accounts.FindOrCreate(ctx, &models.Account{
		Provider: identity.Provider,
		Subject:  identity.Subject,
		Email:    identity.Email,
		Name:     identity.Name,
	})
	if err != nil {
		return nil, models.NewAuthError("could not resolve account", err)
	}

	sess, err := f.store.CreateSession(ctx, account.ID, f.settings.SessionTTL)
	if err != nil {
		return nil, models.NewAuthError("could not create session", err)
	}
	token, err := f.tokens.Sign(sess.ID, account.ID, sess.ExpiresAt)
	if err != nil {
		return nil, models.NewAuthError("could not sign session", err)
	}

	profile, err := f.EnsureProfile(ctx, account)
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "login completed",
		"account_id", account.ID,
		"profile_id", profile.ID,
	)
	return &LoginResult{Account: account, Profile: profile, Session: sess, Token: token}, nil
}

// EnsureProfile returns the account's profile, creating it with the display name
// and no image on first login. Concurrent callers converge on one profile.
func (f *Facade) EnsureProfile(ctx context.Context, account *models.Account) (*models.Profile, error) {
	profile, err := f.profiles.GetByUserID(ctx, account.ID)
	if err == nil {
		return profile, nil
	}
	if !models.IsNotFound(err) {
		return nil, err
	}

	profile = &models.Profile{UserID: account.ID, Name: displayName(account)}
	if err := f.profiles.Create(ctx, profile); err != nil {
		if models.IsConflict(err) {
			return f.profiles.GetByUserID(ctx, account.ID)
		}
		return nil, err
	}
	return profile, nil
}

func displayName(a *models.Account) string {
	if name := strings.TrimSpace(a.Name); name != "" {
		return truncateName(name)
	}
	if at := strings.Index(a.Email, "@"); at > 0 {
		return truncateName(a.Email[:at])
	}
	return "New user"
}

// truncateName keeps at most validation.MaxProfileNameLength runes.
func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= validation.MaxProfileNameLength {
		return name
	}
	return strings.TrimSpace(string(runes[:validation.MaxProfileNameLength]))
}

// GetCurrentSession returns the live session for token, or nil when there is none.
// Absence is never an error; only a failing store is.
func (f *Facade) GetCurrentSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}
	sessionID, accountID, err := f.tokens.Parse(token)
	if err != nil {
		return nil, nil
	}
	sess, err := f.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.AccountID != accountID || sess.Expired(time.Now()) {
		return nil, nil
	}
	return sess, nil
}

// CurrentUser returns the {account, profile} pair for token, or nil when anonymous.
func (f *Facade) CurrentUser(ctx context.Context, token string) (*models.CurrentUser, error) {
	sess, err := f.GetCurrentSession(ctx, token)
	if err != nil || sess == nil {
		return nil, err
	}
	account, err := f.accounts.GetByID(ctx, sess.AccountID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	profile, err := f.profiles.GetByUserID(ctx, account.ID)
	if err != nil && !models.IsNotFound(err) {
		return nil, err
	}
	return &models.CurrentUser{Account: account, Profile: profile}, nil
}

// EndSession deletes the session behind token. Unknown or invalid tokens are a no-op.
func (f *Facade) EndSession(ctx context.Context, token string) error {
	sessionID, _, err := f.tokens.Parse(token)
	if err != nil {
		return nil
	}
	return f.store.DeleteSession(ctx, sessionID)
}
