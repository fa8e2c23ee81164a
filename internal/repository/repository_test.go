package repository

import (
	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"
	"bidding-engine/utils"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// auctionStores returns every AuctionDB implementation under test
func auctionStores(t *testing.T) map[string]func() AuctionDB {
	t.Helper()
	return map[string]func() AuctionDB{
		"memory": func() AuctionDB { return NewMemoryRepo() },
		"sqlite": func() AuctionDB { return newSQLiteRepo(t) },
	}
}

func newSQLiteRepo(t *testing.T) *SQLRepo {
	t.Helper()
	repo, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", utils.GenerateID()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// Helper to create a new Auction
func newAuction(auctionID string, endTime time.Time) model.Auction {
	return model.Auction{
		AuctionID:     auctionID,
		SellerID:      "seller",
		Title:         fmt.Sprintf("%s title", auctionID),
		StartingPrice: decimal.NewFromInt(100),
		CurrentPrice:  decimal.NewFromInt(100),
		MinIncrement:  decimal.NewFromInt(10),
		EndTime:       endTime,
		Status:        model.AuctionOpen,
		CreatedAt:     base,
	}
}

// nextBid builds the bid and auction state ApplyBid expects for amount
func nextBid(a model.Auction, bidID, bidderID string, amount int64) (model.Bid, model.Auction) {
	next := a
	next.CurrentPrice = decimal.NewFromInt(amount)
	next.WinningBidderID = bidderID
	next.BidCount++
	next.Version++
	return model.Bid{
		BidID:     bidID,
		AuctionID: a.AuctionID,
		BidderID:  bidderID,
		Amount:    next.CurrentPrice,
		Sequence:  next.BidCount,
		CreatedAt: base,
	}, next
}

func TestAuctionDB_CreateAndGet(t *testing.T) {
	t.Parallel()

	for name, newRepo := range auctionStores(t) {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			repo := newRepo()
			ctx := context.Background()

			require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", base.Add(time.Hour))))
			require.ErrorIs(t, repo.CreateAuction(ctx, newAuction("a1", base.Add(time.Hour))), biddingerrors.ErrInvalidAuction)

			got, err := repo.GetAuction(ctx, "a1")
			require.NoError(t, err)
			require.Equal(t, "a1", got.AuctionID)
			require.True(t, decimal.NewFromInt(100).Equal(got.CurrentPrice))
			require.True(t, decimal.NewFromInt(10).Equal(got.MinIncrement))
			require.True(t, base.Add(time.Hour).Equal(got.EndTime))
			require.Equal(t, model.AuctionOpen, got.Status)

			_, err = repo.GetAuction(ctx, "missing")
			require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)
		})
	}
}

func TestAuctionDB_ApplyBid(t *testing.T) {
	t.Parallel()

	for name, newRepo := range auctionStores(t) {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			repo := newRepo()
			ctx := context.Background()

			auction := newAuction("a1", base.Add(time.Hour))
			require.NoError(t, repo.CreateAuction(ctx, auction))

			bid1, next1 := nextBid(auction, "b1", "x", 110)
			require.NoError(t, repo.ApplyBid(ctx, bid1, next1, 0))

			// a writer that still holds version 0 loses
			stale, staleNext := nextBid(auction, "b-stale", "y", 110)
			require.ErrorIs(t, repo.ApplyBid(ctx, stale, staleNext, 0), biddingerrors.ErrContention)

			bid2, next2 := nextBid(next1, "b2", "y", 120)
			require.NoError(t, repo.ApplyBid(ctx, bid2, next2, 1))

			got, err := repo.GetAuction(ctx, "a1")
			require.NoError(t, err)
			require.Equal(t, int64(2), got.Version)
			require.Equal(t, 2, got.BidCount)
			require.Equal(t, "y", got.WinningBidderID)
			require.True(t, decimal.NewFromInt(120).Equal(got.CurrentPrice))

			bids, err := repo.GetBidsByAuction(ctx, "a1")
			require.NoError(t, err)
			require.Len(t, bids, 2)
			require.Equal(t, "b1", bids[0].BidID)
			require.Equal(t, "b2", bids[1].BidID)

			missing, missingNext := nextBid(newAuction("nope", base), "b3", "x", 110)
			require.ErrorIs(t, repo.ApplyBid(ctx, missing, missingNext, 0), biddingerrors.ErrAuctionNotFound)
		})
	}
}

func TestAuctionDB_GetBidsByAuction_NoBids(t *testing.T) {
	t.Parallel()

	for name, newRepo := range auctionStores(t) {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			repo := newRepo()
			ctx := context.Background()

			require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", base.Add(time.Hour))))
			_, err := repo.GetBidsByAuction(ctx, "a1")
			require.ErrorIs(t, err, biddingerrors.ErrNoBids)
		})
	}
}

func TestAuctionDB_GetAuctionsByUser(t *testing.T) {
	t.Parallel()

	for name, newRepo := range auctionStores(t) {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			repo := newRepo()
			ctx := context.Background()

			a1 := newAuction("a1", base.Add(time.Hour))
			a2 := newAuction("a2", base.Add(time.Hour))
			require.NoError(t, repo.CreateAuction(ctx, a1))
			require.NoError(t, repo.CreateAuction(ctx, a2))
			require.NoError(t, repo.CreateAuction(ctx, newAuction("a3", base.Add(time.Hour))))

			bid, next := nextBid(a1, "b1", "x", 110)
			require.NoError(t, repo.ApplyBid(ctx, bid, next, 0))
			bid, next = nextBid(next, "b2", "x", 120)
			require.NoError(t, repo.ApplyBid(ctx, bid, next, 1))
			bid, next = nextBid(a2, "b3", "x", 110)
			require.NoError(t, repo.ApplyBid(ctx, bid, next, 0))

			auctions, err := repo.GetAuctionsByUser(ctx, "x")
			require.NoError(t, err)
			ids := make([]string, 0, len(auctions))
			for _, a := range auctions {
				ids = append(ids, a.AuctionID)
			}
			require.ElementsMatch(t, []string{"a1", "a2"}, ids)

			_, err = repo.GetAuctionsByUser(ctx, "nobody")
			require.ErrorIs(t, err, biddingerrors.ErrUserNoBids)
		})
	}
}

func TestSQLRepo_GetAuctionsByUserHonoursContext(t *testing.T) {
	t.Parallel()

	repo := newSQLiteRepo(t)
	a1 := newAuction("a1", base.Add(time.Hour))
	require.NoError(t, repo.CreateAuction(context.Background(), a1))
	bid, next := nextBid(a1, "b1", "x", 110)
	require.NoError(t, repo.ApplyBid(context.Background(), bid, next, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.GetAuctionsByUser(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
}

func TestAuctionDB_StandingBids(t *testing.T) {
	t.Parallel()

	for name, newRepo := range auctionStores(t) {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			repo := newRepo()
			ctx := context.Background()

			require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", base.Add(time.Hour))))

			for _, sb := range []model.StandingAutoBid{
				{AuctionID: "a1", BidderID: "z", MaxAmount: decimal.NewFromInt(160), Active: true, UpdatedAt: base},
				{AuctionID: "a1", BidderID: "x", MaxAmount: decimal.NewFromInt(200), Active: true, UpdatedAt: base},
				{AuctionID: "a1", BidderID: "x", MaxAmount: decimal.NewFromInt(250), Active: true, UpdatedAt: base.Add(time.Minute)},
			} {
				require.NoError(t, repo.UpsertStandingBid(ctx, sb))
			}

			standing, err := repo.GetStandingBids(ctx, "a1")
			require.NoError(t, err)
			require.Len(t, standing, 2)
			require.Equal(t, "x", standing[0].BidderID)
			require.True(t, decimal.NewFromInt(250).Equal(standing[0].MaxAmount))
			require.True(t, base.Add(time.Minute).Equal(standing[0].UpdatedAt))
			require.Equal(t, "z", standing[1].BidderID)

			empty, err := repo.GetStandingBids(ctx, "other")
			require.NoError(t, err)
			require.Empty(t, empty)
		})
	}
}

func TestAuctionDB_CloseAuction(t *testing.T) {
	t.Parallel()

	for name, newRepo := range auctionStores(t) {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			repo := newRepo()
			ctx := context.Background()

			auction := newAuction("a1", base.Add(time.Hour))
			require.NoError(t, repo.CreateAuction(ctx, auction))
			require.NoError(t, repo.UpsertStandingBid(ctx, model.StandingAutoBid{
				AuctionID: "a1", BidderID: "x", MaxAmount: decimal.NewFromInt(200), Active: true, UpdatedAt: base,
			}))

			closed, err := repo.CloseAuction(ctx, "a1")
			require.NoError(t, err)
			require.Equal(t, model.AuctionClosed, closed.Status)
			require.Equal(t, int64(1), closed.Version)

			again, err := repo.CloseAuction(ctx, "a1")
			require.NoError(t, err)
			require.Equal(t, int64(1), again.Version)

			standing, err := repo.GetStandingBids(ctx, "a1")
			require.NoError(t, err)
			require.Len(t, standing, 1)
			require.False(t, standing[0].Active)

			// closing bumps the version, so a bid prepared before it is refused
			bid, next := nextBid(auction, "late", "y", 110)
			require.ErrorIs(t, repo.ApplyBid(ctx, bid, next, 0), biddingerrors.ErrContention)

			_, err = repo.CloseAuction(ctx, "missing")
			require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)
		})
	}
}

func TestAuctionDB_ListExpiredAuctions(t *testing.T) {
	t.Parallel()

	for name, newRepo := range auctionStores(t) {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			repo := newRepo()
			ctx := context.Background()

			require.NoError(t, repo.CreateAuction(ctx, newAuction("ended", base.Add(-time.Minute))))
			require.NoError(t, repo.CreateAuction(ctx, newAuction("ends-now", base)))
			require.NoError(t, repo.CreateAuction(ctx, newAuction("running", base.Add(time.Hour))))
			require.NoError(t, repo.CreateAuction(ctx, newAuction("closed", base.Add(-time.Hour))))
			_, err := repo.CloseAuction(ctx, "closed")
			require.NoError(t, err)

			expired, err := repo.ListExpiredAuctions(ctx, base)
			require.NoError(t, err)
			ids := make([]string, 0, len(expired))
			for _, a := range expired {
				ids = append(ids, a.AuctionID)
			}
			require.ElementsMatch(t, []string{"ended", "ends-now"}, ids)
		})
	}
}

// Test concurrent writers racing on the same version
func TestAuctionDB_ConcurrentApplyBid(t *testing.T) {
	t.Parallel()

	for name, newRepo := range auctionStores(t) {
		newRepo := newRepo
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			repo := newRepo()
			ctx := context.Background()

			auction := newAuction("a1", base.Add(time.Hour))
			require.NoError(t, repo.CreateAuction(ctx, auction))

			const writers = 20
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				wins int
			)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					bid, next := nextBid(auction, fmt.Sprintf("b%d", i), fmt.Sprintf("user%d", i), 110)
					if err := repo.ApplyBid(ctx, bid, next, 0); err == nil {
						mu.Lock()
						wins++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()

			require.Equal(t, 1, wins)
			bids, err := repo.GetBidsByAuction(ctx, "a1")
			require.NoError(t, err)
			require.Len(t, bids, 1)
		})
	}
}
