package bidding

import (
	"bidding-engine/internal/biddingerrors"
	"bidding-engine/internal/models"
	"bidding-engine/internal/money"
	"bidding-engine/internal/notify"
	"bidding-engine/internal/repository"
	"bidding-engine/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultLockTimeout  = 2 * time.Second
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 25 * time.Millisecond
	DefaultMaxAutoSteps = 1000
)

// BiddingService defines the business logic for auction bidding.
// Every mutation of one auction runs under that auction's lock.
type BiddingService struct {
	repo     repository.AuctionDB
	notifier notify.Notifier
	locks    *auctionLocks
	now      func() time.Time

	lockTimeout  time.Duration
	maxRetries   int
	retryBackoff time.Duration
	maxAutoSteps int
}

// Option configures a BiddingService
type Option func(*BiddingService)

// WithNotifier sets the gateway informed of outbid bidders
func WithNotifier(n notify.Notifier) Option {
	return func(s *BiddingService) { s.notifier = n }
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(s *BiddingService) { s.now = now }
}

// WithLockTimeout bounds how long a request waits for a busy auction
func WithLockTimeout(d time.Duration) Option {
	return func(s *BiddingService) { s.lockTimeout = d }
}

// WithRetry sets how often contention is retried and the first backoff delay
func WithRetry(maxRetries int, backoff time.Duration) Option {
	return func(s *BiddingService) {
		s.maxRetries = maxRetries
		s.retryBackoff = backoff
	}
}

// WithMaxAutoSteps caps the proxy bids placed by one resolution. Values
// below one keep the default.
func WithMaxAutoSteps(n int) Option {
	return func(s *BiddingService) {
		if n > 0 {
			s.maxAutoSteps = n
		}
	}
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, opts ...Option) *BiddingService {
	s := &BiddingService{
		repo:         repo,
		notifier:     notify.Nop{},
		locks:        newAuctionLocks(),
		now:          func() time.Time { return time.Now().UTC() },
		lockTimeout:  DefaultLockTimeout,
		maxRetries:   DefaultMaxRetries,
		retryBackoff: DefaultRetryBackoff,
		maxAutoSteps: DefaultMaxAutoSteps,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAuctionInput describes a new auction
type CreateAuctionInput struct {
	SellerID      string
	Title         string
	StartingPrice decimal.Decimal
	MinIncrement  decimal.Decimal
	EndTime       time.Time
}

// CreateAuction opens a new auction at its starting price
func (s *BiddingService) CreateAuction(ctx context.Context, in CreateAuctionInput) (models.Auction, error) {
	now := s.now()
	switch {
	case in.SellerID == "":
		return models.Auction{}, fmt.Errorf("service: %w - missing seller ID", biddingerrors.ErrInvalidAuction)
	case in.StartingPrice.IsNegative():
		return models.Auction{}, fmt.Errorf("service: %w - negative starting price", biddingerrors.ErrInvalidAuction)
	case !money.IsPositive(in.MinIncrement):
		return models.Auction{}, fmt.Errorf("service: %w - minimum increment must be positive", biddingerrors.ErrInvalidAuction)
	case !in.EndTime.After(now):
		return models.Auction{}, fmt.Errorf("service: %w - end time must be in the future", biddingerrors.ErrInvalidAuction)
	}

	auction := models.Auction{
		AuctionID:     utils.GenerateID(),
		SellerID:      in.SellerID,
		Title:         in.Title,
		StartingPrice: in.StartingPrice,
		CurrentPrice:  in.StartingPrice,
		MinIncrement:  in.MinIncrement,
		EndTime:       in.EndTime.UTC(),
		Status:        models.AuctionOpen,
		CreatedAt:     now,
	}
	if err := s.repo.CreateAuction(ctx, auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}
	return auction, nil
}

// GetAuction returns the current state of an auction
func (s *BiddingService) GetAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// GetBidsForAuction returns the ledger of an auction with the winning bid marked
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID string) ([]models.BidView, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}

	views := make([]models.BidView, len(bids))
	latest := latestBid(bids)
	for i, b := range bids {
		views[i] = models.BidView{Bid: b, IsWinning: b.BidID == latest.BidID}
	}
	return views, nil
}

// GetWinningBid returns the latest accepted bid, which always holds the current price
func (s *BiddingService) GetWinningBid(ctx context.Context, auctionID string) (models.Bid, error) {
	if auctionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}
	return latestBid(bids), nil
}

// GetAuctionsByUser returns all auctions a user has placed bids on
func (s *BiddingService) GetAuctionsByUser(ctx context.Context, userID string) ([]models.Auction, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidBid)
	}

	auctions, err := s.repo.GetAuctionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for user %s: %w", userID, err)
	}
	return auctions, nil
}

// CloseAuction ends bidding on an auction and deactivates its standing auto-bids.
// Closing an already closed auction is a no-op.
func (s *BiddingService) CloseAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	var closed models.Auction
	err := s.withAuctionLock(ctx, auctionID, func() (bool, error) {
		a, err := s.repo.CloseAuction(ctx, auctionID)
		if err != nil {
			return false, fmt.Errorf("service: failed to close auction %s: %w", auctionID, err)
		}
		closed = a
		return true, nil
	})
	if err != nil {
		return models.Auction{}, err
	}
	return closed, nil
}

// CloseExpired closes every open auction whose end time has passed and
// returns how many were closed.
func (s *BiddingService) CloseExpired(ctx context.Context) (int, error) {
	expired, err := s.repo.ListExpiredAuctions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("service: failed to list expired auctions: %w", err)
	}

	closed := 0
	var errs []error
	for _, a := range expired {
		if _, err := s.CloseAuction(ctx, a.AuctionID); err != nil {
			errs = append(errs, err)
			continue
		}
		closed++
	}
	return closed, errors.Join(errs...)
}

// withAuctionLock runs fn while holding the auction's lock. Contention is
// retried with exponential backoff, but only while fn has not committed
// anything; once a write has landed the error is returned as is.
func (s *BiddingService) withAuctionLock(ctx context.Context, auctionID string, fn func() (committed bool, err error)) error {
	backoff := s.retryBackoff
	for attempt := 0; ; attempt++ {
		committed, err := s.lockedAttempt(ctx, auctionID, fn)
		if err == nil || committed || !biddingerrors.IsRetryable(err) || attempt >= s.maxRetries {
			return err
		}

		utils.Warn("service: auction contention, retrying", map[string]any{
			"auction_id": auctionID,
			"attempt":    attempt + 1,
			"backoff":    backoff.String(),
		})

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
}

func (s *BiddingService) lockedAttempt(ctx context.Context, auctionID string, fn func() (bool, error)) (bool, error) {
	release, err := s.locks.acquire(ctx, auctionID, s.lockTimeout)
	if err != nil {
		return false, err
	}
	defer release()
	return fn()
}

func (s *BiddingService) dispatch(ctx context.Context, notices []notify.OutbidNotice) {
	for _, n := range notices {
		if err := s.notifier.Outbid(ctx, n); err != nil {
			utils.Warn("service: outbid notification failed", map[string]any{
				"auction_id": n.AuctionID,
				"bidder_id":  n.BidderID,
				"error":      err.Error(),
			})
		}
	}
}

func latestBid(bids []models.Bid) models.Bid {
	var latest models.Bid
	for _, b := range bids {
		if b.Sequence >= latest.Sequence {
			latest = b
		}
	}
	return latest
}
