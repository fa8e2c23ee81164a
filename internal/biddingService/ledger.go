package bidding

import (
	"bidding-engine/internal/biddingerrors"
	"bidding-engine/internal/models"
	"bidding-engine/internal/money"
	"bidding-engine/internal/notify"
	"bidding-engine/utils"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BidOutcome is the result of an accepted bid: the bid itself, the proxy
// bids it triggered in the order they were placed, and the final auction.
type BidOutcome struct {
	Bid      models.Bid     `json:"bid"`
	AutoBids []models.Bid   `json:"auto_bids"`
	Auction  models.Auction `json:"auction"`
}

// CheckBid applies the bid preconditions in order: the auction must be open,
// the bidder must not be the seller, and the amount must reach the current
// price plus the minimum increment.
func CheckBid(auction models.Auction, bidderID string, amount decimal.Decimal, now time.Time) error {
	if !auction.IsOpen(now) {
		return fmt.Errorf("auction %s: %w", auction.AuctionID, biddingerrors.ErrAuctionClosed)
	}
	if bidderID == auction.SellerID {
		return fmt.Errorf("auction %s: %w", auction.AuctionID, biddingerrors.ErrSelfBid)
	}
	minimum := money.NextMinimum(auction.CurrentPrice, auction.MinIncrement)
	if amount.LessThan(minimum) {
		return fmt.Errorf("auction %s: %w - minimum is %s", auction.AuctionID, biddingerrors.ErrBidTooLow, minimum)
	}
	return nil
}

// SubmitBid validates and records a bid, then runs auto-bid resolution to its
// fixed point before returning. Both happen under the auction's lock.
//
// If resolution fails after the bid was recorded, the outcome still carries
// the accepted bid alongside the error.
func (s *BiddingService) SubmitBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (BidOutcome, error) {
	if auctionID == "" || bidderID == "" {
		return BidOutcome{}, fmt.Errorf("service: %w - missing auctionID or bidderID", biddingerrors.ErrInvalidBid)
	}
	if !money.IsPositive(amount) {
		return BidOutcome{}, fmt.Errorf("service: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}

	var (
		outcome BidOutcome
		notices []notify.OutbidNotice
	)
	err := s.withAuctionLock(ctx, auctionID, func() (bool, error) {
		auction, err := s.repo.GetAuction(ctx, auctionID)
		if err != nil {
			return false, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
		}

		now := s.now()
		if err := CheckBid(auction, bidderID, amount, now); err != nil {
			return false, fmt.Errorf("service: %w", err)
		}

		bid, next, notice, err := s.apply(ctx, auction, bidderID, amount, false, now)
		if err != nil {
			return false, err
		}
		outcome = BidOutcome{Bid: bid, AutoBids: []models.Bid{}, Auction: next}
		if notice != nil {
			notices = append(notices, *notice)
		}

		auto, final, autoNotices, err := s.resolveLocked(ctx, next, now)
		outcome.AutoBids = append(outcome.AutoBids, auto...)
		outcome.Auction = final
		notices = append(notices, autoNotices...)
		if err != nil {
			return true, fmt.Errorf("service: auto-bid resolution on auction %s: %w", auctionID, err)
		}
		return true, nil
	})

	s.dispatch(ctx, notices)

	if err != nil {
		if outcome.Bid.BidID != "" {
			return outcome, err
		}
		return BidOutcome{}, err
	}
	return outcome, nil
}

// apply records one bid against auction. The caller holds the auction lock
// and has already checked the bid.
func (s *BiddingService) apply(ctx context.Context, auction models.Auction, bidderID string, amount decimal.Decimal, isAuto bool, now time.Time) (models.Bid, models.Auction, *notify.OutbidNotice, error) {
	next := auction
	next.CurrentPrice = amount
	next.WinningBidderID = bidderID
	next.BidCount++
	next.Version++

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auction.AuctionID,
		BidderID:  bidderID,
		Amount:    amount,
		Sequence:  next.BidCount,
		IsAuto:    isAuto,
		CreatedAt: now,
	}

	if err := s.repo.ApplyBid(ctx, bid, next, auction.Version); err != nil {
		return models.Bid{}, models.Auction{}, nil, fmt.Errorf("service: failed to record bid on auction %s by %s: %w", auction.AuctionID, bidderID, err)
	}

	var notice *notify.OutbidNotice
	if prev := auction.WinningBidderID; prev != "" && prev != bidderID {
		notice = &notify.OutbidNotice{
			AuctionID:   auction.AuctionID,
			BidderID:    prev,
			NewWinnerID: bidderID,
			NewPrice:    amount,
			At:          now,
		}
	}
	return bid, next, notice, nil
}
