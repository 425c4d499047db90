// Package backend owns the single configured handle to the document database,
// object storage, and session store.
package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"reelhub/internal/cache"
	"reelhub/internal/config"
	"reelhub/internal/database"
	"reelhub/internal/middleware"
	"reelhub/internal/models"
	"reelhub/internal/repository"
	"reelhub/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dialer opens the document database.
type Dialer func(dsn string) (*gorm.DB, error)

// Option configures a Client.
type Option func(*Client)

// Detached builds a client that never connects. EnsureReady is a no-op.
func Detached() Option {
	return func(c *Client) { c.detached = true }
}

// WithDB injects an already open database.
func WithDB(db *gorm.DB) Option {
	return func(c *Client) { c.db = db }
}

// WithRedis injects an already open Redis client.
func WithRedis(rdb *redis.Client) Option {
	return func(c *Client) { c.redis = rdb }
}

// WithDialer replaces the PostgreSQL dialer.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dial = d }
}

// Client is constructed once by the entry point and injected into every service.
// Handles are nil until EnsureReady succeeds.
type Client struct {
	cfg      config.Backend
	detached bool
	dial     Dialer

	mu    sync.Mutex
	ready bool
	err   error

	db       *gorm.DB
	redis    *redis.Client
	repos    *Repositories
	store    *storage.Store
	resolver storage.Resolver
}

// Repositories bundles the collection repositories bound to the client's database.
type Repositories struct {
	Profiles repository.ProfileRepository
	Posts    repository.PostRepository
	Likes    repository.LikeRepository
	Comments repository.CommentRepository
	Follows  repository.FollowRepository
	Files    repository.FileRepository
	Accounts repository.AccountRepository
}

// NewRepositories binds every repository to db under the configured collection names.
func NewRepositories(db *gorm.DB, cols models.Collections) *Repositories {
	return &Repositories{
		Profiles: repository.NewProfileRepository(db, cols),
		Posts:    repository.NewPostRepository(db, cols),
		Likes:    repository.NewLikeRepository(db, cols),
		Comments: repository.NewCommentRepository(db, cols),
		Follows:  repository.NewFollowRepository(db, cols),
		Files:    repository.NewFileRepository(db, cols),
		Accounts: repository.NewAccountRepository(db, cols),
	}
}

// New returns an unconnected client for cfg.
func New(cfg config.Backend, opts ...Option) *Client {
	c := &Client{
		cfg:      cfg,
		dial:     database.Connect,
		resolver: storage.NewResolver(cfg.MediaBaseURL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureReady connects on first use. A configuration error is permanent: every
// later call returns the same error. Connection failures are returned as-is and
// the next call tries again.
func (c *Client) EnsureReady(ctx context.Context) error {
	if c.detached {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return nil
	}
	if c.err != nil {
		return c.err
	}

	missing := c.cfg.MissingKeys()
	if c.db != nil {
		missing = dropKey(missing, "DB_HOST")
	}
	if c.redis != nil {
		missing = dropKey(missing, "REDIS_URL")
	}
	if len(missing) > 0 {
		c.err = models.NewConfigError("missing backend configuration: " + strings.Join(missing, ", "))
		middleware.Logger.ErrorContext(ctx, "backend not configured", "missing", missing)
		return c.err
	}

	db := c.db
	if db == nil {
		var err error
		if db, err = c.dial(c.cfg.DSN); err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
	}
	if c.cfg.AutoMigrate {
		if err := database.Migrate(db, c.cfg.Collections); err != nil {
			return err
		}
	}

	rdb := c.redis
	if rdb == nil {
		var err error
		if rdb, err = cache.NewRedisClient(c.cfg.RedisURL); err != nil {
			c.err = models.NewConfigError(fmt.Sprintf("invalid REDIS_URL: %v", err))
			return c.err
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	c.db = db
	c.redis = rdb
	c.repos = NewRepositories(db, c.cfg.Collections)
	c.store = storage.NewLocalStore(c.cfg.StorageDir, c.repos.Files)
	c.ready = true
	middleware.Logger.InfoContext(ctx, "backend ready",
		"collections", c.cfg.Collections,
		"bucket", c.cfg.BucketID,
	)
	return nil
}

func dropKey(keys []string, key string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

// Config returns the settings the client was built with.
func (c *Client) Config() config.Backend { return c.cfg }

// DB returns the document database handle.
func (c *Client) DB() *gorm.DB { return c.db }

// Redis returns the session store and cache handle.
func (c *Client) Redis() *redis.Client { return c.redis }

// Repositories returns the collection repositories.
func (c *Client) Repositories() *Repositories { return c.repos }

// Storage returns the object store.
func (c *Client) Storage() *storage.Store { return c.store }

// Resolver returns the file URL resolver.
func (c *Client) Resolver() storage.Resolver { return c.resolver }

// Close releases the database and Redis connections.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	c.ready = false
	return firstErr
}
