package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const usageKeyPrefix = "usage:reports:"

// UsageNotifier counts completed reports per clinic so billing can read the
// totals. Finalization calls it best-effort only.
type UsageNotifier struct {
	client *redis.Client
}

func NewUsageNotifier(client *redis.Client) *UsageNotifier {
	return &UsageNotifier{client: client}
}

func (n *UsageNotifier) Increment(ctx context.Context, clinicID string) error {
	return n.client.Incr(ctx, usageKeyPrefix+clinicID).Err()
}
