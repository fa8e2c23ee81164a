// Package notify delivers outbid notices and review-queue entries.
//
// Delivery is fire-and-forget from the caller's point of view: a failed or
// dropped notification is logged and never undoes the bid or score that
// produced it.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"bidding-engine/internal/models"
	"bidding-engine/utils"

	"github.com/shopspring/decimal"
)

// OutbidNotice tells a bidder they no longer hold the winning bid.
type OutbidNotice struct {
	AuctionID   string          `json:"auction_id"`
	BidderID    string          `json:"bidder_id"`
	NewWinnerID string          `json:"new_winner_id"`
	NewPrice    decimal.Decimal `json:"new_price"`
	At          time.Time       `json:"at"`
}

// Notifier is the outbound notification gateway.
type Notifier interface {
	Outbid(ctx context.Context, notice OutbidNotice) error
	ReviewQueued(ctx context.Context, score models.ScoreResult) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Outbid(context.Context, OutbidNotice) error             { return nil }
func (Nop) ReviewQueued(context.Context, models.ScoreResult) error { return nil }

// LogNotifier writes notifications to the structured log.
type LogNotifier struct{}

// Outbid logs an outbid notice
func (LogNotifier) Outbid(_ context.Context, n OutbidNotice) error {
	utils.Info("notify: bidder outbid", map[string]any{
		"auction_id":    n.AuctionID,
		"bidder_id":     n.BidderID,
		"new_winner_id": n.NewWinnerID,
		"new_price":     n.NewPrice.String(),
	})
	return nil
}

// ReviewQueued logs a score that needs a human decision
func (LogNotifier) ReviewQueued(_ context.Context, s models.ScoreResult) error {
	utils.Info("notify: score queued for review", map[string]any{
		"score_id":  s.ScoreID,
		"target_id": s.TargetID,
		"score":     s.Score,
		"action":    string(s.Action),
	})
	return nil
}

// ErrDispatcherClosed is returned for notifications sent after Close.
var ErrDispatcherClosed = errors.New("notify: dispatcher closed")

// Dispatcher hands notifications to a sink on a single worker goroutine.
// Sends never block: when the queue is full the notification is dropped.
type Dispatcher struct {
	sink    Notifier
	queue   chan func(context.Context) error
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts a dispatcher with room for size pending notifications.
func NewDispatcher(sink Notifier, size int) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan func(context.Context) error, size),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Outbid queues an outbid notice
func (d *Dispatcher) Outbid(_ context.Context, n OutbidNotice) error {
	return d.enqueue("outbid", func(ctx context.Context) error { return d.sink.Outbid(ctx, n) })
}

// ReviewQueued queues a review-queue entry
func (d *Dispatcher) ReviewQueued(_ context.Context, s models.ScoreResult) error {
	return d.enqueue("review_queued", func(ctx context.Context) error { return d.sink.ReviewQueued(ctx, s) })
}

func (d *Dispatcher) enqueue(kind string, job func(context.Context) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- job:
		return nil
	default:
		utils.Warn("notify: queue full, dropping notification", map[string]any{"kind": kind})
		return nil
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for job := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := job(ctx); err != nil {
			utils.Error("notify: delivery failed", map[string]any{"error": err.Error()})
		}
		cancel()
	}
}

// Close stops accepting notifications and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
