// Package notifications delivers like, comment and follow events to connected users.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"reelhub/internal/models"
	"reelhub/internal/observability"

	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "notifications:user:"

// Notifier publishes notifications into per-user Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends n to the user's channel.
func (n *Notifier) Publish(ctx context.Context, userID string, note models.Notification) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// Subscribe listens on every user channel and calls onMessage with the target
// user id and raw payload until ctx is cancelled.
func (n *Notifier) Subscribe(ctx context.Context, onMessage func(userID, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe notifications: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				userID, ok := strings.CutPrefix(msg.Channel, userChannelPrefix)
				if !ok || userID == "" {
					observability.GlobalLogger.Warn("invalid notification channel", "channel", msg.Channel)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.GlobalLogger.Error("panic in notification subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(userID, msg.Payload)
				}()
			}
		}
	}()
	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}
