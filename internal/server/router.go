package server

import (
	bidding "bidding-engine/internal/biddingService"
	fraud "bidding-engine/internal/fraudService"
	handler "bidding-engine/services/bidding/handler"
	fraudhandler "bidding-engine/services/fraud/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application. A nil limiter
// disables rate limiting.
func SetupRouter(biddingService *bidding.BiddingService, fraudService *fraud.FraudService, limiter *RateLimiter) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	if limiter != nil {
		router.Use(limiter.Middleware())
	}

	biddingHandler := handler.NewBiddingHandler(biddingService)
	fraudHandler := fraudhandler.NewFraudHandler(fraudService)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", biddingHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", biddingHandler.GetAuctionHandler)
		auctions.POST("/:auction_id/bids", biddingHandler.SubmitBidHandler)
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/winning", biddingHandler.GetWinningBidHandler)
		auctions.PUT("/:auction_id/autobids", biddingHandler.SetAutoBidHandler)
		auctions.DELETE("/:auction_id/autobids/:bidder_id", biddingHandler.WithdrawAutoBidHandler)
		auctions.POST("/:auction_id/close", biddingHandler.CloseAuctionHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/auctions", biddingHandler.GetAuctionsByUserHandler)
	}

	rules := router.Group("/rules")
	{
		rules.POST("", fraudHandler.SaveRuleHandler)
		rules.GET("", fraudHandler.ListRulesHandler)
		rules.PUT("/:rule_id", fraudHandler.SaveRuleHandler)
		rules.DELETE("/:rule_id", fraudHandler.DeleteRuleHandler)
	}

	scores := router.Group("/scores")
	{
		scores.POST("", fraudHandler.EvaluateHandler)
		scores.POST("/batch", fraudHandler.EvaluateBatchHandler)
		scores.GET("/:score_id", fraudHandler.GetScoreHandler)
		scores.PATCH("/:score_id/disposition", fraudHandler.SetDispositionHandler)
	}

	return router
}
