package bidding

import (
	"bidding-engine/utils"
	"context"
	"time"
)

// DefaultSweepInterval is how often expired auctions are closed
const DefaultSweepInterval = 30 * time.Second

// Sweeper periodically closes auctions whose end time has passed
type Sweeper struct {
	svc      *BiddingService
	interval time.Duration
}

func NewSweeper(svc *BiddingService, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{svc: svc, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled
func (sw *Sweeper) Start(ctx context.Context) {
	utils.Info("starting auction sweeper", map[string]any{"interval": sw.interval.String()})

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.Info("shutting down auction sweeper", nil)
			return
		case <-ticker.C:
			sw.sweep(ctx)
		}
	}
}

func (sw *Sweeper) sweep(ctx context.Context) {
	closed, err := sw.svc.CloseExpired(ctx)
	if err != nil {
		utils.Error("failed to close expired auctions", map[string]any{
			"closed": closed,
			"error":  err.Error(),
		})
		return
	}
	if closed > 0 {
		utils.Info("closed expired auctions", map[string]any{"closed": closed})
	}
}
