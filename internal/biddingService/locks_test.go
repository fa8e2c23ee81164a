package bidding

import (
	"bidding-engine/internal/biddingerrors"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuctionLocks_SerializesSameAuction(t *testing.T) {
	t.Parallel()

	locks := newAuctionLocks()

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.acquire(context.Background(), "a1", time.Second)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), maxSeen)
	require.Zero(t, locks.size())
}

func TestAuctionLocks_IndependentAuctions(t *testing.T) {
	t.Parallel()

	locks := newAuctionLocks()

	releaseA, err := locks.acquire(context.Background(), "a1", time.Second)
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := locks.acquire(context.Background(), "a2", 10*time.Millisecond)
	require.NoError(t, err)
	releaseB()

	require.Equal(t, 1, locks.size())
}

func TestAuctionLocks_Timeout(t *testing.T) {
	t.Parallel()

	locks := newAuctionLocks()

	release, err := locks.acquire(context.Background(), "a1", time.Second)
	require.NoError(t, err)

	_, err = locks.acquire(context.Background(), "a1", 10*time.Millisecond)
	require.ErrorIs(t, err, biddingerrors.ErrContention)

	release()
	release() // second call is a no-op
	require.Zero(t, locks.size())

	release, err = locks.acquire(context.Background(), "a1", 10*time.Millisecond)
	require.NoError(t, err)
	release()
}

func TestAuctionLocks_CancelledContext(t *testing.T) {
	t.Parallel()

	locks := newAuctionLocks()

	release, err := locks.acquire(context.Background(), "a1", time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = locks.acquire(ctx, "a1", time.Second)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, biddingerrors.ErrContention)
}
