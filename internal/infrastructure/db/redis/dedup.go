package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// LeadDedup suppresses repeated lead submissions backed by Redis.
// Key format: dedup:lead:<listing_id>:<email>
type LeadDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeadDedup creates a LeadDedup wrapping the given Redis client.
func NewLeadDedup(client *redis.Client) *LeadDedup {
	return &LeadDedup{client: client, ttl: dedupTTL}
}

// IsDuplicate reports whether this visitor already left a lead on the listing
// within the dedup window.
func (d *LeadDedup) IsDuplicate(ctx context.Context, listingID, email string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKey(listingID, email)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records the lead (expires after dedupTTL).
func (d *LeadDedup) Mark(ctx context.Context, listingID, email string) error {
	return d.client.Set(ctx, dedupKey(listingID, email), "1", d.ttl).Err()
}

func dedupKey(listingID, email string) string {
	return fmt.Sprintf("dedup:lead:%s:%s", listingID, strings.ToLower(email))
}
