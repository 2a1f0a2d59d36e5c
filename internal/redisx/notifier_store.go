package redisx

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// NotifierStore is the notifier's Redis surface: event dedup plus the
// advisory quantity cache.
type NotifierStore struct {
	Client  *redis.Client
	Service string
}

func (s *NotifierStore) Seen(ctx context.Context, eventID string) (bool, error) {
	return Exists(ctx, s.Client, fmt.Sprintf(KeyDedup, s.Service, eventID))
}

func (s *NotifierStore) MarkSeen(ctx context.Context, eventID string) error {
	return s.Client.Set(ctx, fmt.Sprintf(KeyDedup, s.Service, eventID), "1", TTLDedup).Err()
}

func (s *NotifierStore) CacheQuantity(ctx context.Context, productID string, branchID int64, qty int) error {
	key := fmt.Sprintf(KeyStockQty, productID, branchID)
	return s.Client.Set(ctx, key, strconv.Itoa(qty), TTLStockCache).Err()
}
