package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OrderGuard backs the duplicate-order screen with SET NX EX: the first
// submission of a signature claims the key, repeats inside the window fail.
type OrderGuard struct {
	Client *redis.Client
}

func (g *OrderGuard) FirstSubmission(ctx context.Context, signature string, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyOrderGuard, signature)
	return g.Client.SetNX(ctx, key, "1", window).Result()
}

// Forget drops the claim again. Called when the order attempt that claimed
// the signature failed, so a retry is not screened out as a duplicate.
func (g *OrderGuard) Forget(ctx context.Context, signature string) error {
	return g.Client.Del(ctx, fmt.Sprintf(KeyOrderGuard, signature)).Err()
}
