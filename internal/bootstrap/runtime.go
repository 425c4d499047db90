// Package bootstrap assembles the backend client and every service on top of it.
package bootstrap

import (
	"context"
	"fmt"

	"reelhub/internal/auth"
	"reelhub/internal/backend"
	"reelhub/internal/cache"
	"reelhub/internal/config"
	"reelhub/internal/featureflags"
	"reelhub/internal/feed"
	"reelhub/internal/middleware"
	"reelhub/internal/notifications"
	"reelhub/internal/repository"
	"reelhub/internal/seed"
	"reelhub/internal/service"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with demo data.
	SeedDemo bool
	// Provider replaces the Google identity provider.
	Provider auth.Provider
	// Backend options are passed to backend.New.
	Backend []backend.Option
}

// Runtime holds the wired application.
type Runtime struct {
	Config  *config.Config
	Backend *backend.Client
	Cache   *cache.Cache
	Media   service.Media

	Profiles *service.ProfileService
	Posts    *service.PostService
	Likes    *service.LikeService
	Comments *service.CommentService
	Follows  *service.FollowService

	Auth     *auth.Facade
	Feed     *feed.Builder
	Flags    *featureflags.Manager
	Notifier *notifications.Notifier
	Hub      *notifications.Hub
}

// InitRuntime connects the backend client and builds the services on it.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	bcfg := cfg.Backend()
	client := backend.New(bcfg, opts.Backend...)
	if err := client.EnsureReady(ctx); err != nil {
		return nil, fmt.Errorf("backend not ready: %w", err)
	}

	repos := client.Repositories()
	c := cache.New(client.Redis())
	media := service.Media{Resolver: client.Resolver(), Bucket: bcfg.BucketID}
	notifier := notifications.NewNotifier(client.Redis())

	provider := opts.Provider
	if provider == nil {
		provider = auth.NewGoogleProvider(bcfg.GoogleClientID, bcfg.GoogleClientSecret)
	}

	rt := &Runtime{
		Config:  cfg,
		Backend: client,
		Cache:   c,
		Media:   media,

		Profiles: service.NewProfileService(repos.Profiles, client.Storage(), c, media, cfg.MaxImageBytes()),
		Posts: service.NewPostService(repos.Posts, repos.Follows, client.Storage(), c, media, service.PostServiceConfig{
			AppURL:        bcfg.AppURL,
			MaxVideoBytes: cfg.MaxVideoBytes(),
		}),
		Likes:    service.NewLikeService(repos.Likes, repos.Posts, c, media, notifier),
		Comments: service.NewCommentService(repos.Comments, repos.Posts, c, notifier),
		Follows:  service.NewFollowService(repos.Follows, notifier),

		Auth: auth.NewFacade(
			provider,
			auth.NewRedisStore(client.Redis()),
			auth.NewTokenSigner(bcfg.SessionSecret),
			repos.Accounts,
			repos.Profiles,
			auth.Settings{AppURL: bcfg.AppURL, AppDomain: bcfg.AppDomain, SessionTTL: bcfg.SessionTTL},
		),
		Feed:     feed.NewBuilder(repos.Profiles, repos.Likes, repos.Comments, repos.Follows, media),
		Flags:    featureflags.NewManager(cfg.FeatureFlags),
		Notifier: notifier,
		Hub:      notifications.NewHub(),
	}

	if opts.SeedDemo && !cfg.IsProduction() {
		if err := rt.seedIfEmpty(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}
	return rt, nil
}

// SeedServices exposes the services the seeder writes through.
func (rt *Runtime) SeedServices() seed.Services {
	return seed.Services{
		Profiles: rt.Profiles,
		Posts:    rt.Posts,
		Likes:    rt.Likes,
		Comments: rt.Comments,
		Follows:  rt.Follows,
	}
}

func (rt *Runtime) seedIfEmpty(ctx context.Context) error {
	existing, err := rt.Profiles.ListProfiles(ctx, repository.ListQuery{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	report, err := seed.Run(ctx, rt.SeedServices(), seed.DefaultOptions())
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "demo data seeded", "profiles", report.Profiles, "posts", report.Posts)
	return nil
}

// Close releases the hub and backend handles.
func (rt *Runtime) Close(ctx context.Context) error {
	_ = rt.Hub.Shutdown(ctx)
	return rt.Backend.Close()
}
