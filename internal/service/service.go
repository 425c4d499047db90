// Package service implements the data access operations used by the HTTP layer.
package service

import (
	"context"
	"time"

	"reelhub/internal/models"
	"reelhub/internal/observability"
	"reelhub/internal/storage"
)

var svcLogger = observability.NewStructuredLogger()

// Publisher delivers notifications to a user. Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, userID string, n models.Notification) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, models.Notification) error { return nil }

// NopPublisher discards notifications.
var NopPublisher Publisher = nopPublisher{}

func notify(ctx context.Context, pub Publisher, target string, n models.Notification) {
	if pub == nil || target == "" || target == n.ActorID {
		return
	}
	n.CreatedAt = time.Now().UTC()
	if err := pub.Publish(ctx, target, n); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "notification not delivered",
			"type", n.Type, "target", target, "error", err.Error())
	}
}

// Media resolves stored file ids on records into URLs.
type Media struct {
	Resolver storage.Resolver
	Bucket   string
}

// Post fills p.VideoURL from its file id.
func (m Media) Post(p *models.Post) *models.Post {
	if p != nil {
		p.VideoURL = m.Resolver.ViewURL(m.Bucket, p.VideoFileID)
	}
	return p
}

// Posts fills VideoURL on every post.
func (m Media) Posts(posts []*models.Post) []*models.Post {
	for _, p := range posts {
		m.Post(p)
	}
	return posts
}

// Profile fills p.ImageURL from its file id.
func (m Media) Profile(p *models.Profile) *models.Profile {
	if p != nil {
		p.ImageURL = m.Resolver.ViewURL(m.Bucket, p.Image)
	}
	return p
}

// Profiles fills ImageURL on every profile.
func (m Media) Profiles(profiles []*models.Profile) []*models.Profile {
	for _, p := range profiles {
		m.Profile(p)
	}
	return profiles
}
