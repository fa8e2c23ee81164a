package repository

import (
	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLRepo implements AuctionDB and RuleDB on top of GORM.
//
// Auction rows carry a version column; ApplyBid and CloseAuction only touch
// a row at the version they expect, so writers in other processes that share
// the database cannot apply a bid against a stale price.
type SQLRepo struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a SQLite database and migrates the schema
func OpenSQLite(dsn string) (*SQLRepo, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}

	// sqlite allows a single writer; one connection avoids SQLITE_BUSY between our own transactions
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	sqlDB.SetMaxOpenConns(1)

	return NewSQLRepo(db)
}

// NewSQLRepo wraps an existing connection and runs migrations
func NewSQLRepo(db *gorm.DB) (*SQLRepo, error) {
	if err := db.AutoMigrate(
		&model.Auction{},
		&model.Bid{},
		&model.StandingAutoBid{},
		&model.RuleDefinition{},
		&model.ScoreResult{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &SQLRepo{db: db}, nil
}

// Close releases the underlying connection pool
func (r *SQLRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateAuction stores a new auction
func (r *SQLRepo) CreateAuction(ctx context.Context, auction model.Auction) error {
	if err := r.db.WithContext(ctx).Create(&auction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create auction %s: %w - duplicate ID", auction.AuctionID, biddingerrors.ErrInvalidAuction)
		}
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, err)
	}
	return nil
}

// GetAuction returns the current state of an auction
func (r *SQLRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var auction model.Auction
	if err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).First(&auction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
		}
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// ListExpiredAuctions returns open auctions whose end time is not after now
func (r *SQLRepo) ListExpiredAuctions(ctx context.Context, now time.Time) ([]model.Auction, error) {
	var auctions []model.Auction
	if err := r.db.WithContext(ctx).
		Where("status = ? AND end_time <= ?", model.AuctionOpen, now.UTC()).
		Order("auction_id").
		Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("list expired auctions: %w", err)
	}
	return auctions, nil
}

// ApplyBid appends bid and stores next in one transaction, guarded by the version column
func (r *SQLRepo) ApplyBid(ctx context.Context, bid model.Bid, next model.Auction, expectedVersion int64) error {
	if next.AuctionID != bid.AuctionID {
		return fmt.Errorf("apply bid to auction %s: %w - bid and auction disagree", bid.AuctionID, biddingerrors.ErrInvalidBid)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Auction{}).
			Where("auction_id = ? AND version = ?", next.AuctionID, expectedVersion).
			Updates(map[string]any{
				"current_price":     next.CurrentPrice,
				"winning_bidder_id": next.WinningBidderID,
				"bid_count":         next.BidCount,
				"version":           next.Version,
			})
		if res.Error != nil {
			return fmt.Errorf("apply bid to auction %s: %w", bid.AuctionID, res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.Auction{}).Where("auction_id = ?", next.AuctionID).Count(&count).Error; err != nil {
				return fmt.Errorf("apply bid to auction %s: %w", bid.AuctionID, err)
			}
			if count == 0 {
				return fmt.Errorf("apply bid to auction %s: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
			}
			return fmt.Errorf("apply bid to auction %s: stale version %d: %w", bid.AuctionID, expectedVersion, biddingerrors.ErrContention)
		}

		if err := tx.Create(&bid).Error; err != nil {
			return fmt.Errorf("record bid %s: %w", bid.BidID, err)
		}
		return nil
	})
}

// CloseAuction marks an auction closed and deactivates its standing auto-bids
func (r *SQLRepo) CloseAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var closed model.Auction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Auction{}).
			Where("auction_id = ? AND status <> ?", auctionID, model.AuctionClosed).
			Updates(map[string]any{
				"status":  model.AuctionClosed,
				"version": gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}

		if err := tx.Model(&model.StandingAutoBid{}).
			Where("auction_id = ?", auctionID).
			Update("active", false).Error; err != nil {
			return err
		}

		if err := tx.Where("auction_id = ?", auctionID).First(&closed).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return biddingerrors.ErrAuctionNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return model.Auction{}, fmt.Errorf("close auction %s: %w", auctionID, err)
	}
	return closed, nil
}

// GetBidsByAuction returns all bids for an auction in acceptance order
func (r *SQLRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	var bids []model.Bid
	if err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).Order("sequence").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, biddingerrors.ErrNoBids)
	}
	return bids, nil
}

// GetAuctionsByUser returns all auctions a user has bid on
func (r *SQLRepo) GetAuctionsByUser(ctx context.Context, userID string) ([]model.Auction, error) {
	var auctions []model.Auction
	sub := r.db.WithContext(ctx).Model(&model.Bid{}).Select("auction_id").Where("bidder_id = ?", userID)
	if err := r.db.WithContext(ctx).Where("auction_id IN (?)", sub).Order("created_at").Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("get auctions for user %s: %w", userID, err)
	}
	if len(auctions) == 0 {
		return nil, fmt.Errorf("get auctions for user %s: %w", userID, biddingerrors.ErrUserNoBids)
	}
	return auctions, nil
}

// UpsertStandingBid replaces the instruction for (auction, bidder)
func (r *SQLRepo) UpsertStandingBid(ctx context.Context, standing model.StandingAutoBid) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "auction_id"}, {Name: "bidder_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"max_amount", "active", "updated_at"}),
	}).Create(&standing).Error
	if err != nil {
		return fmt.Errorf("upsert standing bid on auction %s: %w", standing.AuctionID, err)
	}
	return nil
}

// GetStandingBids returns every instruction on an auction, active or not, ordered by bidder
func (r *SQLRepo) GetStandingBids(ctx context.Context, auctionID string) ([]model.StandingAutoBid, error) {
	var out []model.StandingAutoBid
	if err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).Order("bidder_id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("get standing bids for auction %s: %w", auctionID, err)
	}
	return out, nil
}

// SaveRule inserts or replaces a rule
func (r *SQLRepo) SaveRule(ctx context.Context, rule model.RuleDefinition) error {
	if err := r.db.WithContext(ctx).Save(&rule).Error; err != nil {
		return fmt.Errorf("save rule %s: %w", rule.RuleID, err)
	}
	return nil
}

// DeleteRule removes a rule
func (r *SQLRepo) DeleteRule(ctx context.Context, ruleID string) error {
	res := r.db.WithContext(ctx).Where("rule_id = ?", ruleID).Delete(&model.RuleDefinition{})
	if res.Error != nil {
		return fmt.Errorf("delete rule %s: %w", ruleID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete rule %s: %w", ruleID, biddingerrors.ErrRuleNotFound)
	}
	return nil
}

// ListRules returns every rule, ordered by ID
func (r *SQLRepo) ListRules(ctx context.Context) ([]model.RuleDefinition, error) {
	var rules []model.RuleDefinition
	if err := r.db.WithContext(ctx).Order("rule_id").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// SaveScore stores a new score result
func (r *SQLRepo) SaveScore(ctx context.Context, score model.ScoreResult) error {
	if err := r.db.WithContext(ctx).Create(&score).Error; err != nil {
		return fmt.Errorf("save score %s: %w", score.ScoreID, err)
	}
	return nil
}

// GetScore returns a stored score result
func (r *SQLRepo) GetScore(ctx context.Context, scoreID string) (model.ScoreResult, error) {
	var score model.ScoreResult
	if err := r.db.WithContext(ctx).Where("score_id = ?", scoreID).First(&score).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ScoreResult{}, fmt.Errorf("get score %s: %w", scoreID, biddingerrors.ErrScoreNotFound)
		}
		return model.ScoreResult{}, fmt.Errorf("get score %s: %w", scoreID, err)
	}
	return score, nil
}

// SetDisposition records the operator's verdict on a score
func (r *SQLRepo) SetDisposition(ctx context.Context, scoreID string, disposition model.Disposition, at time.Time) (model.ScoreResult, error) {
	res := r.db.WithContext(ctx).Model(&model.ScoreResult{}).
		Where("score_id = ?", scoreID).
		Updates(map[string]any{"disposition": disposition, "disposed_at": at.UTC()})
	if res.Error != nil {
		return model.ScoreResult{}, fmt.Errorf("set disposition on score %s: %w", scoreID, res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ScoreResult{}, fmt.Errorf("set disposition on score %s: %w", scoreID, biddingerrors.ErrScoreNotFound)
	}
	return r.GetScore(ctx, scoreID)
}
