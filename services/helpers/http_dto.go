package helpers

import (
	"time"

	bidding "bidding-engine/internal/biddingService"
	model "bidding-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs. Amounts travel as decimal strings ("110.50");
// plain JSON numbers are accepted on input too.

type CreateAuctionRequest struct {
	SellerID      string          `json:"seller_id" binding:"required"`
	Title         string          `json:"title"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	MinIncrement  decimal.Decimal `json:"min_increment"`
	EndTime       time.Time       `json:"end_time"`
}

type PlaceBidRequest struct {
	BidderID string          `json:"bidder_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

type SetAutoBidRequest struct {
	BidderID  string          `json:"bidder_id" binding:"required"`
	MaxAmount decimal.Decimal `json:"max_amount"`
}

type AuctionResponse struct {
	AuctionID       string          `json:"auction_id"`
	SellerID        string          `json:"seller_id"`
	Title           string          `json:"title"`
	StartingPrice   decimal.Decimal `json:"starting_price"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	MinIncrement    decimal.Decimal `json:"min_increment"`
	NextMinimumBid  decimal.Decimal `json:"next_minimum_bid"`
	WinningBidderID string          `json:"winning_bidder_id,omitempty"`
	BidCount        int             `json:"bid_count"`
	Status          string          `json:"status"`
	EndTime         string          `json:"end_time"`
	CreatedAt       string          `json:"created_at"`
}

type BidResponse struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Sequence  int             `json:"sequence"`
	IsAuto    bool            `json:"is_auto"`
	IsWinning bool            `json:"is_winning"`
	CreatedAt string          `json:"created_at"`
}

type BidOutcomeResponse struct {
	Bid      BidResponse     `json:"bid"`
	AutoBids []BidResponse   `json:"auto_bids"`
	Auction  AuctionResponse `json:"auction"`
}

type AutoBidResponse struct {
	AuctionID string          `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	MaxAmount decimal.Decimal `json:"max_amount"`
	Active    bool            `json:"active"`
	UpdatedAt string          `json:"updated_at"`
}

type AutoBidOutcomeResponse struct {
	Standing AutoBidResponse `json:"standing"`
	AutoBids []BidResponse   `json:"auto_bids"`
	Auction  AuctionResponse `json:"auction"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func NewAuctionResponse(a model.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:       a.AuctionID,
		SellerID:        a.SellerID,
		Title:           a.Title,
		StartingPrice:   a.StartingPrice,
		CurrentPrice:    a.CurrentPrice,
		MinIncrement:    a.MinIncrement,
		NextMinimumBid:  a.CurrentPrice.Add(a.MinIncrement),
		WinningBidderID: a.WinningBidderID,
		BidCount:        a.BidCount,
		Status:          string(a.Status),
		EndTime:         formatTime(a.EndTime),
		CreatedAt:       formatTime(a.CreatedAt),
	}
}

func NewAuctionResponses(auctions []model.Auction) []AuctionResponse {
	out := make([]AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, NewAuctionResponse(a))
	}
	return out
}

func NewBidResponse(b model.Bid, winning bool) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		Sequence:  b.Sequence,
		IsAuto:    b.IsAuto,
		IsWinning: winning,
		CreatedAt: formatTime(b.CreatedAt),
	}
}

func NewBidViewResponses(views []model.BidView) []BidResponse {
	out := make([]BidResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewBidResponse(v.Bid, v.IsWinning))
	}
	return out
}

// autoBidResponses marks the last proxy bid as winning; it is always the latest bid
func autoBidResponses(bids []model.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for i, b := range bids {
		out = append(out, NewBidResponse(b, i == len(bids)-1))
	}
	return out
}

func NewBidOutcomeResponse(o bidding.BidOutcome) BidOutcomeResponse {
	return BidOutcomeResponse{
		Bid:      NewBidResponse(o.Bid, len(o.AutoBids) == 0),
		AutoBids: autoBidResponses(o.AutoBids),
		Auction:  NewAuctionResponse(o.Auction),
	}
}

func NewAutoBidResponse(sb model.StandingAutoBid) AutoBidResponse {
	return AutoBidResponse{
		AuctionID: sb.AuctionID,
		BidderID:  sb.BidderID,
		MaxAmount: sb.MaxAmount,
		Active:    sb.Active,
		UpdatedAt: formatTime(sb.UpdatedAt),
	}
}

func NewAutoBidOutcomeResponse(o bidding.AutoBidOutcome) AutoBidOutcomeResponse {
	return AutoBidOutcomeResponse{
		Standing: NewAutoBidResponse(o.Standing),
		AutoBids: autoBidResponses(o.AutoBids),
		Auction:  NewAuctionResponse(o.Auction),
	}
}

// Fraud scoring DTOs

type RuleRequest struct {
	RuleID    string          `json:"rule_id"`
	Name      string          `json:"name" binding:"required"`
	Predicate model.Predicate `json:"predicate"`
	Weight    int             `json:"weight" binding:"min=0,max=100"`
	Action    string          `json:"action" binding:"required,oneof=flag review block"`
	Priority  int             `json:"priority"`
	Active    *bool           `json:"active"`
}

// ToModel converts the request; rules are active unless stated otherwise
func (r RuleRequest) ToModel() model.RuleDefinition {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return model.RuleDefinition{
		RuleID:    r.RuleID,
		Name:      r.Name,
		Predicate: r.Predicate,
		Weight:    r.Weight,
		Action:    model.RuleAction(r.Action),
		Priority:  r.Priority,
		Active:    active,
	}
}

type EvaluateRequest struct {
	TargetID string         `json:"target_id" binding:"required"`
	Facts    map[string]any `json:"facts"`
}

type BatchEvaluateRequest struct {
	Items []EvaluateRequest `json:"items" binding:"required,min=1,max=500,dive"`
}

type DispositionRequest struct {
	Disposition string `json:"disposition" binding:"required"`
}
