package bidding

import (
	"bidding-engine/internal/biddingerrors"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// auctionLocks serializes work per auction. Each auction gets its own
// weight-1 semaphore, created on first use and dropped when nobody holds or
// waits for it, so unrelated auctions never contend.
type auctionLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

func newAuctionLocks() *auctionLocks {
	return &auctionLocks{entries: make(map[string]*lockEntry)}
}

// acquire blocks until the auction is free or timeout passes. A timeout is
// reported as ErrContention; cancellation of ctx itself is returned as is.
func (l *auctionLocks) acquire(ctx context.Context, auctionID string, timeout time.Duration) (func(), error) {
	entry := l.ref(auctionID)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := entry.sem.Acquire(waitCtx, 1); err != nil {
		l.unref(auctionID)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("lock auction %s after %s: %w", auctionID, timeout, biddingerrors.ErrContention)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.sem.Release(1)
			l.unref(auctionID)
		})
	}, nil
}

func (l *auctionLocks) ref(auctionID string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[auctionID]
	if !ok {
		e = &lockEntry{sem: semaphore.NewWeighted(1)}
		l.entries[auctionID] = e
	}
	e.refs++
	return e
}

func (l *auctionLocks) unref(auctionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[auctionID]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(l.entries, auctionID)
	}
}

// size is the number of auctions currently tracked.
func (l *auctionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
