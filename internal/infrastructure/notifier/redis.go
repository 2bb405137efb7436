package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mufasadev/ramp-reconciler/internal/domain/notifier"
)

// RedisPublisher is the part of redis.Client used for pub/sub delivery.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier pushes user notifications to a per-user channel and admin
// notifications to a shared channel. Real-time clients subscribe to these.
type RedisNotifier struct {
	client       RedisPublisher
	adminChannel string
}

func NewRedisNotifier(client RedisPublisher, adminChannel string) *RedisNotifier {
	return &RedisNotifier{client: client, adminChannel: adminChannel}
}

func UserChannel(userID string) string {
	return "user:" + userID + ":transactions"
}

func (r *RedisNotifier) Notify(ctx context.Context, n notifier.Notification) error {
	channel := r.adminChannel
	if n.Audience == notifier.AudienceUser {
		if n.Event.UserID == "" {
			return fmt.Errorf("redis publish: transaction %s has no user", n.Event.TxID)
		}
		channel = UserChannel(n.Event.UserID)
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err = r.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return nil
}
