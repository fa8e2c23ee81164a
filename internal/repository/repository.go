package repository

import (
	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// AuctionDB defines the auction and bid storage interface.
//
// ApplyBid is the only way an auction's price changes: it appends bid and
// replaces the stored auction with next in one atomic step, provided the
// stored version still equals expectedVersion.
type AuctionDB interface {
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	ListExpiredAuctions(ctx context.Context, now time.Time) ([]model.Auction, error)
	ApplyBid(ctx context.Context, bid model.Bid, next model.Auction, expectedVersion int64) error
	CloseAuction(ctx context.Context, auctionID string) (model.Auction, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetAuctionsByUser(ctx context.Context, userID string) ([]model.Auction, error)
	UpsertStandingBid(ctx context.Context, standing model.StandingAutoBid) error
	GetStandingBids(ctx context.Context, auctionID string) ([]model.StandingAutoBid, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu           sync.RWMutex
	auctions     map[string]model.Auction                     // key: auctionID -> value: auction
	bids         map[string][]model.Bid                       // key: auctionID -> value: bids in acceptance order
	userAuctions map[string][]string                          // key: userID -> value: auctionIDs user has bid on
	standing     map[string]map[string]model.StandingAutoBid // key: auctionID -> bidderID -> instruction
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:     make(map[string]model.Auction),
		bids:         make(map[string][]model.Bid),
		userAuctions: make(map[string][]string),
		standing:     make(map[string]map[string]model.StandingAutoBid),
	}
}

// CreateAuction stores a new auction
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if auction.AuctionID == "" {
		return fmt.Errorf("create auction: %w - missing auction ID", biddingerrors.ErrInvalidAuction)
	}
	if _, exists := r.auctions[auction.AuctionID]; exists {
		return fmt.Errorf("create auction %s: %w - duplicate ID", auction.AuctionID, biddingerrors.ErrInvalidAuction)
	}
	r.auctions[auction.AuctionID] = auction
	return nil
}

// GetAuction returns the current state of an auction
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// ListExpiredAuctions returns open auctions whose end time is not after now
func (r *MemoryRepo) ListExpiredAuctions(_ context.Context, now time.Time) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []model.Auction
	for _, a := range r.auctions {
		if a.Status == model.AuctionOpen && !now.Before(a.EndTime) {
			expired = append(expired, a)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].AuctionID < expired[j].AuctionID })
	return expired, nil
}

// ApplyBid appends bid and stores next if the auction is still at expectedVersion
func (r *MemoryRepo) ApplyBid(_ context.Context, bid model.Bid, next model.Auction, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.auctions[bid.AuctionID]
	if !ok {
		return fmt.Errorf("apply bid to auction %s: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	if next.AuctionID != bid.AuctionID {
		return fmt.Errorf("apply bid to auction %s: %w - bid and auction disagree", bid.AuctionID, biddingerrors.ErrInvalidBid)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("apply bid to auction %s: version %d, expected %d: %w",
			bid.AuctionID, current.Version, expectedVersion, biddingerrors.ErrContention)
	}

	r.auctions[bid.AuctionID] = next
	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)

	for _, id := range r.userAuctions[bid.BidderID] {
		if id == bid.AuctionID {
			return nil
		}
	}
	r.userAuctions[bid.BidderID] = append(r.userAuctions[bid.BidderID], bid.AuctionID)

	return nil
}

// CloseAuction marks an auction closed and deactivates its standing auto-bids
func (r *MemoryRepo) CloseAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("close auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	if auction.Status != model.AuctionClosed {
		auction.Status = model.AuctionClosed
		auction.Version++
		r.auctions[auctionID] = auction
	}

	for bidder, sb := range r.standing[auctionID] {
		sb.Active = false
		r.standing[auctionID][bidder] = sb
	}
	return auction, nil
}

// GetBidsByAuction returns all bids for an auction in acceptance order
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids, ok := r.bids[auctionID]
	if !ok || len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, biddingerrors.ErrNoBids)
	}
	return append([]model.Bid(nil), bids...), nil
}

// GetAuctionsByUser returns all auctions a user has bid on
func (r *MemoryRepo) GetAuctionsByUser(_ context.Context, userID string) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctionIDs, ok := r.userAuctions[userID]
	if !ok || len(auctionIDs) == 0 {
		return nil, fmt.Errorf("get auctions for user %s: %w", userID, biddingerrors.ErrUserNoBids)
	}

	auctions := make([]model.Auction, 0, len(auctionIDs))
	for _, id := range auctionIDs {
		if a, exists := r.auctions[id]; exists {
			auctions = append(auctions, a)
		}
	}
	return auctions, nil
}

// UpsertStandingBid replaces the instruction for (auction, bidder)
func (r *MemoryRepo) UpsertStandingBid(_ context.Context, standing model.StandingAutoBid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[standing.AuctionID]; !ok {
		return fmt.Errorf("upsert standing bid on auction %s: %w", standing.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	if r.standing[standing.AuctionID] == nil {
		r.standing[standing.AuctionID] = make(map[string]model.StandingAutoBid)
	}
	r.standing[standing.AuctionID][standing.BidderID] = standing
	return nil
}

// GetStandingBids returns every instruction on an auction, active or not, ordered by bidder
func (r *MemoryRepo) GetStandingBids(_ context.Context, auctionID string) ([]model.StandingAutoBid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.StandingAutoBid, 0, len(r.standing[auctionID]))
	for _, sb := range r.standing[auctionID] {
		out = append(out, sb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BidderID < out[j].BidderID })
	return out, nil
}
