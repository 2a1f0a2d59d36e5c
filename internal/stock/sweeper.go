package stock

import (
	"context"
	"log"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/clock"
)

type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically deletes lapsed hold rows. Availability math already
// ignores them at read time; this only keeps the table from growing forever.
type Sweeper struct {
	Holds    ExpiredDeleter
	Clock    clock.Clock
	Interval time.Duration
}

func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Holds.DeleteExpired(ctx, s.Clock.Now())
			if err != nil {
				log.Printf("hold sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("hold sweep: reclaimed %d expired holds", n)
			}
		}
	}
}
