// Package auth implements the login flow and session lookup on top of the
// OAuth provider and the Redis session store.
package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Identity is what the provider tells us about the person logging in.
type Identity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// Provider is an OAuth identity provider.
type Provider interface {
	AuthCodeURL(state, redirectURL string) string
	Exchange(ctx context.Context, code, redirectURL string) (*Identity, error)
}

// GoogleProvider authenticates through Google OAuth 2.0.
type GoogleProvider struct {
	clientID     string
	clientSecret string
}

// NewGoogleProvider returns a provider for the given OAuth client.
func NewGoogleProvider(clientID, clientSecret string) *GoogleProvider {
	return &GoogleProvider{clientID: clientID, clientSecret: clientSecret}
}

func (p *GoogleProvider) config(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// AuthCodeURL returns the consent page URL.
func (p *GoogleProvider) AuthCodeURL(state, redirectURL string) string {
	return p.config(redirectURL).AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for a token and fetches the user's profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code, redirectURL string) (*Identity, error) {
	cfg := p.config(redirectURL)
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}

	return &Identity{
		Provider: "google",
		Subject:  info.Id,
		Email:    info.Email,
		Name:     info.Name,
	}, nil
}
