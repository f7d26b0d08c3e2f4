package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statePrefix = "oauth:state:"

// StateGuard enforces single use of OAuth anti-forgery state tokens.
// The state cookie remains the authoritative carrier; the guard only
// rejects a state that has already been consumed once. A nil *StateGuard
// is valid and degrades to cookie-only validation.
type StateGuard struct {
	client redis.UniversalClient
}

// NewStateGuard constructs a Redis-backed guard.
func NewStateGuard(client redis.UniversalClient) *StateGuard {
	return &StateGuard{client: client}
}

// Issue records a freshly generated state token with the cookie's TTL.
func (g *StateGuard) Issue(ctx context.Context, state string, ttl time.Duration) error {
	if g == nil {
		return nil
	}
	if err := g.client.Set(ctx, statePrefix+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// Consume removes the state token and reports whether it was still
// outstanding. A token that was never issued or was consumed before
// returns false.
func (g *StateGuard) Consume(ctx context.Context, state string) (bool, error) {
	if g == nil {
		return true, nil
	}
	_, err := g.client.GetDel(ctx, statePrefix+state).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consume state: %w", err)
	}
	return true, nil
}
