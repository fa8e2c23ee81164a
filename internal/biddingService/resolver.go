package bidding

import (
	"bidding-engine/internal/biddingerrors"
	"bidding-engine/internal/models"
	"bidding-engine/internal/money"
	"bidding-engine/internal/notify"
	"bidding-engine/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AutoBidOutcome is the result of setting a standing auto-bid.
type AutoBidOutcome struct {
	Standing models.StandingAutoBid `json:"standing"`
	AutoBids []models.Bid           `json:"auto_bids"`
	Auction  models.Auction         `json:"auction"`
}

// NextAutoBid picks the standing instruction that bids next and the amount it
// offers. Only active instructions whose ceiling exceeds the current price
// and that do not belong to the current winner qualify. The highest ceiling
// wins; ties go to the older instruction, then the lower bidder ID.
func NextAutoBid(auction models.Auction, standing []models.StandingAutoBid) (models.StandingAutoBid, decimal.Decimal, bool) {
	var best *models.StandingAutoBid
	for i := range standing {
		sb := &standing[i]
		if !sb.Active || sb.BidderID == auction.WinningBidderID || sb.BidderID == auction.SellerID {
			continue
		}
		if !sb.MaxAmount.GreaterThan(auction.CurrentPrice) {
			continue
		}
		if best == nil || outranks(*sb, *best) {
			best = sb
		}
	}
	if best == nil {
		return models.StandingAutoBid{}, decimal.Zero, false
	}
	return *best, money.ProxyAmount(best.MaxAmount, auction.CurrentPrice, auction.MinIncrement), true
}

func outranks(a, b models.StandingAutoBid) bool {
	if c := a.MaxAmount.Cmp(b.MaxAmount); c != 0 {
		return c > 0
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.Before(b.UpdatedAt)
	}
	return a.BidderID < b.BidderID
}

// checkAutoBid is CheckBid with one allowance: a proxy bid that stops at its
// owner's ceiling may fall short of the minimum increment, as long as it
// still beats the current price.
func checkAutoBid(auction models.Auction, sb models.StandingAutoBid, amount decimal.Decimal, now time.Time) error {
	err := CheckBid(auction, sb.BidderID, amount, now)
	if errors.Is(err, biddingerrors.ErrBidTooLow) && amount.Equal(sb.MaxAmount) && amount.GreaterThan(auction.CurrentPrice) {
		return nil
	}
	return err
}

// resolveLocked places proxy bids until no standing instruction qualifies.
// Each step raises the price strictly, and ceilings are finite, so it ends.
// It stops early when ctx is done or after maxAutoSteps proxy bids; the bids
// placed so far stay committed and are returned with the error.
// The caller holds the auction lock.
func (s *BiddingService) resolveLocked(ctx context.Context, auction models.Auction, now time.Time) ([]models.Bid, models.Auction, []notify.OutbidNotice, error) {
	standing, err := s.repo.GetStandingBids(ctx, auction.AuctionID)
	if err != nil {
		return nil, auction, nil, fmt.Errorf("service: failed to load standing bids for auction %s: %w", auction.AuctionID, err)
	}

	placed := []models.Bid{}
	var notices []notify.OutbidNotice
	for {
		if err := ctx.Err(); err != nil {
			return placed, auction, notices, err
		}
		sb, amount, ok := NextAutoBid(auction, standing)
		if !ok {
			return placed, auction, notices, nil
		}
		if len(placed) >= s.maxAutoSteps {
			utils.Warn("service: auto-bid step limit reached", map[string]any{
				"auction_id":    auction.AuctionID,
				"steps":         len(placed),
				"current_price": auction.CurrentPrice.String(),
			})
			return placed, auction, notices, fmt.Errorf("%w - stopped after %d proxy bids at %s",
				biddingerrors.ErrAutoBidLimit, len(placed), auction.CurrentPrice)
		}
		if err := checkAutoBid(auction, sb, amount, now); err != nil {
			if errors.Is(err, biddingerrors.ErrAuctionClosed) {
				return placed, auction, notices, nil
			}
			return placed, auction, notices, err
		}

		bid, next, notice, err := s.apply(ctx, auction, sb.BidderID, amount, true, now)
		if err != nil {
			return placed, auction, notices, err
		}
		placed = append(placed, bid)
		if notice != nil {
			notices = append(notices, *notice)
		}
		auction = next
	}
}

// ResolveAutoBids runs proxy bidding on an auction to its fixed point and
// returns the bids it placed in order.
func (s *BiddingService) ResolveAutoBids(ctx context.Context, auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidBid)
	}

	var (
		placed  []models.Bid
		notices []notify.OutbidNotice
	)
	err := s.withAuctionLock(ctx, auctionID, func() (bool, error) {
		auction, err := s.repo.GetAuction(ctx, auctionID)
		if err != nil {
			return false, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
		}
		var rerr error
		placed, _, notices, rerr = s.resolveLocked(ctx, auction, s.now())
		return len(placed) > 0, rerr
	})
	s.dispatch(ctx, notices)
	return placed, err
}

// SetAutoBid creates or replaces the bidder's standing instruction on an
// auction and immediately resolves proxy bidding.
func (s *BiddingService) SetAutoBid(ctx context.Context, auctionID, bidderID string, maxAmount decimal.Decimal) (AutoBidOutcome, error) {
	if auctionID == "" || bidderID == "" {
		return AutoBidOutcome{}, fmt.Errorf("service: %w - missing auctionID or bidderID", biddingerrors.ErrInvalidAutoBid)
	}
	if !money.IsPositive(maxAmount) {
		return AutoBidOutcome{}, fmt.Errorf("service: %w - non-positive ceiling", biddingerrors.ErrInvalidAutoBid)
	}

	var (
		outcome AutoBidOutcome
		notices []notify.OutbidNotice
	)
	err := s.withAuctionLock(ctx, auctionID, func() (bool, error) {
		auction, err := s.repo.GetAuction(ctx, auctionID)
		if err != nil {
			return false, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
		}

		now := s.now()
		if !auction.IsOpen(now) {
			return false, fmt.Errorf("service: auction %s: %w", auctionID, biddingerrors.ErrAuctionClosed)
		}
		if bidderID == auction.SellerID {
			return false, fmt.Errorf("service: auction %s: %w", auctionID, biddingerrors.ErrSelfBid)
		}
		if !maxAmount.GreaterThan(auction.CurrentPrice) {
			return false, fmt.Errorf("service: auction %s: %w - ceiling must exceed current price %s",
				auctionID, biddingerrors.ErrBidTooLow, auction.CurrentPrice)
		}

		standing := models.StandingAutoBid{
			AuctionID: auctionID,
			BidderID:  bidderID,
			MaxAmount: maxAmount,
			Active:    true,
			UpdatedAt: now,
		}
		if err := s.repo.UpsertStandingBid(ctx, standing); err != nil {
			return false, fmt.Errorf("service: failed to save standing bid on auction %s: %w", auctionID, err)
		}
		outcome = AutoBidOutcome{Standing: standing, AutoBids: []models.Bid{}, Auction: auction}

		auto, final, autoNotices, err := s.resolveLocked(ctx, auction, now)
		outcome.AutoBids = append(outcome.AutoBids, auto...)
		outcome.Auction = final
		notices = autoNotices
		if err != nil {
			return true, fmt.Errorf("service: auto-bid resolution on auction %s: %w", auctionID, err)
		}
		return true, nil
	})

	s.dispatch(ctx, notices)
	return outcome, err
}

// WithdrawAutoBid deactivates the bidder's standing instruction. Bids already
// placed on the bidder's behalf stay in the ledger.
func (s *BiddingService) WithdrawAutoBid(ctx context.Context, auctionID, bidderID string) (models.StandingAutoBid, error) {
	if auctionID == "" || bidderID == "" {
		return models.StandingAutoBid{}, fmt.Errorf("service: %w - missing auctionID or bidderID", biddingerrors.ErrInvalidAutoBid)
	}

	var withdrawn models.StandingAutoBid
	err := s.withAuctionLock(ctx, auctionID, func() (bool, error) {
		standing, err := s.repo.GetStandingBids(ctx, auctionID)
		if err != nil {
			return false, fmt.Errorf("service: failed to load standing bids for auction %s: %w", auctionID, err)
		}
		for _, sb := range standing {
			if sb.BidderID != bidderID || !sb.Active {
				continue
			}
			sb.Active = false
			sb.UpdatedAt = s.now()
			if err := s.repo.UpsertStandingBid(ctx, sb); err != nil {
				return false, fmt.Errorf("service: failed to withdraw standing bid on auction %s: %w", auctionID, err)
			}
			withdrawn = sb
			return true, nil
		}
		return false, fmt.Errorf("service: %w - no active instruction for %s on auction %s",
			biddingerrors.ErrInvalidAutoBid, bidderID, auctionID)
	})
	if err != nil {
		return models.StandingAutoBid{}, err
	}
	return withdrawn, nil
}
