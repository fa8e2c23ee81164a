package handler

import (
	"context"
	"errors"
	"net/http"

	bidding "bidding-engine/internal/biddingService"
	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"
	"bidding-engine/services/helpers"
	"bidding-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BiddingServiceInterface interface {
	CreateAuction(ctx context.Context, in bidding.CreateAuctionInput) (model.Auction, error)
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	SubmitBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (bidding.BidOutcome, error)
	GetBidsForAuction(ctx context.Context, auctionID string) ([]model.BidView, error)
	GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error)
	SetAutoBid(ctx context.Context, auctionID, bidderID string, maxAmount decimal.Decimal) (bidding.AutoBidOutcome, error)
	WithdrawAutoBid(ctx context.Context, auctionID, bidderID string) (model.StandingAutoBid, error)
	CloseAuction(ctx context.Context, auctionID string) (model.Auction, error)
	GetAuctionsByUser(ctx context.Context, userID string) ([]model.Auction, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions
func (h *BiddingHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	auction, err := h.service.CreateAuction(c.Request.Context(), bidding.CreateAuctionInput{
		SellerID:      req.SellerID,
		Title:         req.Title,
		StartingPrice: req.StartingPrice,
		MinIncrement:  req.MinIncrement,
		EndTime:       req.EndTime,
	})
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", "failed to create auction", err, map[string]any{
			"seller_id": req.SellerID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewAuctionResponse(auction), "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
		"seller_id":  auction.SellerID,
	})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *BiddingHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", "error retrieving auction", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(auction), "auction retrieved successfully")
}

// SubmitBidHandler handles POST /auctions/:auction_id/bids
func (h *BiddingHandler) SubmitBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitBidHandler", err)
		return
	}

	outcome, err := h.service.SubmitBid(c.Request.Context(), auctionID, req.BidderID, req.Amount)
	if err != nil && outcome.Bid.BidID == "" {
		helpers.HandleServiceError(c, "SubmitBidHandler", "failed to record bid", err, map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
			"amount":     req.Amount.String(),
		})
		return
	}

	message := "bid recorded successfully"
	if err != nil {
		// the bid stands; only proxy resolution after it failed
		message = "bid recorded, auto-bid resolution incomplete"
		utils.Error("SubmitBidHandler: auto-bid resolution failed", map[string]any{
			"auction_id": auctionID,
			"bid_id":     outcome.Bid.BidID,
			"error":      err.Error(),
		})
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidOutcomeResponse(outcome), message)
	helpers.LogSuccess("SubmitBidHandler", message, map[string]any{
		"bid_id":     outcome.Bid.BidID,
		"auction_id": auctionID,
		"bidder_id":  req.BidderID,
		"amount":     outcome.Bid.Amount.String(),
		"auto_bids":  len(outcome.AutoBids),
	})
}

// GetBidsByAuctionHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) GetBidsByAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	views, err := h.service.GetBidsForAuction(c.Request.Context(), auctionID)
	if err != nil && !errors.Is(err, biddingerrors.ErrNoBids) {
		helpers.HandleServiceError(c, "GetBidsByAuctionHandler", "error retrieving bids", err, map[string]any{"auction_id": auctionID})
		return
	}

	bids := helpers.NewBidViewResponses(views)
	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetWinningBidHandler handles GET /auctions/:auction_id/winning
func (h *BiddingHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bid, err := h.service.GetWinningBid(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no winning bid found")
			utils.Info("GetWinningBidHandler: no winning bid found", map[string]any{"auction_id": auctionID})
			return
		}
		helpers.HandleServiceError(c, "GetWinningBidHandler", "winning bid error", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid, true), "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": auctionID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount.String(),
	})
}

// SetAutoBidHandler handles PUT /auctions/:auction_id/autobids
func (h *BiddingHandler) SetAutoBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.SetAutoBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetAutoBidHandler", err)
		return
	}

	outcome, err := h.service.SetAutoBid(c.Request.Context(), auctionID, req.BidderID, req.MaxAmount)
	if err != nil && outcome.Standing.BidderID == "" {
		helpers.HandleServiceError(c, "SetAutoBidHandler", "failed to set auto-bid", err, map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
		})
		return
	}

	message := "auto-bid set successfully"
	if err != nil {
		message = "auto-bid set, resolution incomplete"
		utils.Error("SetAutoBidHandler: auto-bid resolution failed", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
			"error":      err.Error(),
		})
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAutoBidOutcomeResponse(outcome), message)
	helpers.LogSuccess("SetAutoBidHandler", message, map[string]any{
		"auction_id": auctionID,
		"bidder_id":  req.BidderID,
		"max_amount": req.MaxAmount.String(),
		"auto_bids":  len(outcome.AutoBids),
	})
}

// WithdrawAutoBidHandler handles DELETE /auctions/:auction_id/autobids/:bidder_id
func (h *BiddingHandler) WithdrawAutoBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bidderID := c.Param("bidder_id")

	standing, err := h.service.WithdrawAutoBid(c.Request.Context(), auctionID, bidderID)
	if err != nil {
		helpers.HandleServiceError(c, "WithdrawAutoBidHandler", "failed to withdraw auto-bid", err, map[string]any{
			"auction_id": auctionID,
			"bidder_id":  bidderID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAutoBidResponse(standing), "auto-bid withdrawn successfully")
	helpers.LogSuccess("WithdrawAutoBidHandler", "auto-bid withdrawn successfully", map[string]any{
		"auction_id": auctionID,
		"bidder_id":  bidderID,
	})
}

// CloseAuctionHandler handles POST /auctions/:auction_id/close
func (h *BiddingHandler) CloseAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.service.CloseAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "CloseAuctionHandler", "failed to close auction", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(auction), "auction closed successfully")
	helpers.LogSuccess("CloseAuctionHandler", "auction closed successfully", map[string]any{
		"auction_id": auctionID,
		"winner":     auction.WinningBidderID,
		"price":      auction.CurrentPrice.String(),
	})
}

// GetAuctionsByUserHandler handles GET /users/:user_id/auctions
func (h *BiddingHandler) GetAuctionsByUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	auctions, err := h.service.GetAuctionsByUser(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, biddingerrors.ErrUserNoBids) {
		helpers.HandleServiceError(c, "GetAuctionsByUserHandler", "error retrieving auctions", err, map[string]any{"user_id": userID})
		return
	}

	resp := helpers.NewAuctionResponses(auctions)
	utils.JSONResponse(c, http.StatusOK, resp, "auctions retrieved successfully")
	helpers.LogSuccess("GetAuctionsByUserHandler", "auctions retrieved successfully", map[string]any{
		"user_id":        userID,
		"auctions_count": len(resp),
	})
}
