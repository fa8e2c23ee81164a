package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bidding "bidding-engine/internal/biddingService"
	"bidding-engine/internal/config"
	fraud "bidding-engine/internal/fraudService"
	"bidding-engine/internal/notify"
	"bidding-engine/internal/repository"
	"bidding-engine/internal/rules"
	"bidding-engine/internal/server"
	"bidding-engine/utils"

	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("invalid configuration", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		utils.Warn("unknown log level, keeping info", map[string]any{"level": cfg.LogLevel})
	}

	auctions, ruleStore, closeStore := openStores(cfg)
	defer closeStore()

	dispatcher := notify.NewDispatcher(notify.LogNotifier{}, cfg.NotifyQueue)
	defer dispatcher.Close()

	biddingSvc := bidding.NewBiddingService(auctions,
		bidding.WithNotifier(dispatcher),
		bidding.WithLockTimeout(cfg.LockTimeout),
		bidding.WithRetry(cfg.MaxRetries, cfg.RetryBackoff),
		bidding.WithMaxAutoSteps(cfg.MaxAutoSteps),
	)
	fraudSvc := fraud.NewFraudService(ruleStore, fraud.WithNotifier(dispatcher))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.RulesFile != "" {
		loadRules(ctx, fraudSvc, cfg.RulesFile)
	}
	if cfg.DBDriver == "memory" {
		prepopulateAuctions(ctx, biddingSvc)
	}

	go bidding.NewSweeper(biddingSvc, cfg.SweepInterval).Start(ctx)

	limiter := server.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := server.SetupRouter(biddingSvc, fraudSvc, limiter)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		utils.Info("starting auction server", map[string]any{"addr": srv.Addr, "db_driver": cfg.DBDriver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Info("shutting down server", nil)

	// stop the sweeper before draining requests
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("server forced to shutdown", map[string]any{"error": err.Error()})
	}

	utils.Info("server exiting", nil)
}

// openStores picks the storage backend named by DB_DRIVER
func openStores(cfg *config.Config) (repository.AuctionDB, repository.RuleDB, func()) {
	if cfg.DBDriver == "sqlite" {
		repo, err := repository.OpenSQLite(cfg.DBDSN)
		if err != nil {
			utils.Fatal("failed to open database", map[string]any{"error": err.Error()})
		}
		return repo, repo, func() {
			if err := repo.Close(); err != nil {
				utils.Error("failed to close database", map[string]any{"error": err.Error()})
			}
		}
	}
	return repository.NewMemoryRepo(), repository.NewMemoryRuleRepo(), func() {}
}

func loadRules(ctx context.Context, svc *fraud.FraudService, path string) {
	rs, err := rules.LoadFile(path)
	if err != nil {
		utils.Fatal("failed to read rule file", map[string]any{"path": path, "error": err.Error()})
	}
	n, err := svc.LoadRuleSet(ctx, rs)
	if err != nil {
		utils.Fatal("failed to load rules", map[string]any{"path": path, "loaded": n, "error": err.Error()})
	}
	utils.Info("rules loaded", map[string]any{"path": path, "count": n})
}

// prepopulateAuctions adds sample auctions to the in-memory store
func prepopulateAuctions(ctx context.Context, svc *bidding.BiddingService) {
	end := time.Now().UTC().Add(24 * time.Hour)
	samples := []bidding.CreateAuctionInput{
		{SellerID: "seller1", Title: "Vintage lamp", StartingPrice: decimal.NewFromInt(100), MinIncrement: decimal.NewFromInt(10), EndTime: end},
		{SellerID: "seller2", Title: "Oak desk", StartingPrice: decimal.NewFromInt(200), MinIncrement: decimal.NewFromInt(25), EndTime: end},
		{SellerID: "seller1", Title: "Signed poster", StartingPrice: decimal.RequireFromString("49.99"), MinIncrement: decimal.RequireFromString("0.50"), EndTime: end},
	}

	for _, in := range samples {
		a, err := svc.CreateAuction(ctx, in)
		if err != nil {
			utils.Warn("failed to seed auction", map[string]any{"title": in.Title, "error": err.Error()})
			continue
		}
		utils.Debug("seeded auction", map[string]any{"auction_id": a.AuctionID, "title": a.Title})
	}
}
