package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionOpen   AuctionStatus = "open"
	AuctionClosed AuctionStatus = "closed"
)

// Auction represents an item under timed competitive bidding.
// CurrentPrice and WinningBidderID only change together with a new bid.
type Auction struct {
	AuctionID       string          `json:"auction_id" gorm:"primaryKey"`
	SellerID        string          `json:"seller_id" gorm:"index;not null"`
	Title           string          `json:"title"`
	StartingPrice   decimal.Decimal `json:"starting_price" gorm:"type:text;not null"`
	CurrentPrice    decimal.Decimal `json:"current_price" gorm:"type:text;not null"`
	MinIncrement    decimal.Decimal `json:"min_increment" gorm:"type:text;not null"`
	WinningBidderID string          `json:"winning_bidder_id,omitempty"`
	BidCount        int             `json:"bid_count"`
	EndTime         time.Time       `json:"end_time" gorm:"index"`
	Status          AuctionStatus   `json:"status" gorm:"index"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
}

// IsOpen reports whether the auction accepts bids at now.
func (a Auction) IsOpen(now time.Time) bool {
	return a.Status == AuctionOpen && now.Before(a.EndTime)
}

// Bid represents one accepted bidding event. Bids are never updated or deleted.
type Bid struct {
	BidID     string          `json:"bid_id" gorm:"primaryKey"`
	AuctionID string          `json:"auction_id" gorm:"index;not null"`
	BidderID  string          `json:"bidder_id" gorm:"index;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:text;not null"`
	Sequence  int             `json:"sequence"`
	IsAuto    bool            `json:"is_auto"`
	CreatedAt time.Time       `json:"created_at"`
}

// BidView is a bid with its derived winning flag. The flag is computed from
// the ledger on read and never persisted.
type BidView struct {
	Bid
	IsWinning bool `json:"is_winning"`
}

// StandingAutoBid authorizes proxy bids up to MaxAmount on behalf of a bidder.
// There is at most one per (auction, bidder).
type StandingAutoBid struct {
	AuctionID string          `json:"auction_id" gorm:"primaryKey"`
	BidderID  string          `json:"bidder_id" gorm:"primaryKey"`
	MaxAmount decimal.Decimal `json:"max_amount" gorm:"type:text;not null"`
	Active    bool            `json:"active"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"autoUpdateTime:false"`
}
