package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	bidding "bidding-engine/internal/biddingService"
	repository "bidding-engine/internal/repository"

	"github.com/shopspring/decimal"
)

// LoadScenario defines configurable benchmark parameters
type LoadScenario struct {
	Name            string
	NumAuctions     int
	ReadRatio       int
	MaxBidIncrement int
	AutoBidders     int  // standing instructions per auction
	Burst           bool // if true, no delay between ops
}

// OperationMetrics collects latencies safely
type OperationMetrics struct {
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(d time.Duration) {
	om.mu.Lock()
	om.latencies = append(om.latencies, d)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (min, max, avg, p95, p99 time.Duration) {
	om.mu.Lock()
	latencies := append([]time.Duration(nil), om.latencies...)
	om.mu.Unlock()
	if len(latencies) == 0 {
		return
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	min = latencies[0]
	max = latencies[len(latencies)-1]

	var total time.Duration
	for _, d := range latencies {
		total += d
	}
	avg = total / time.Duration(len(latencies))
	p95 = latencies[int(0.95*float64(len(latencies)))]
	p99 = latencies[int(0.99*float64(len(latencies)))]
	return
}

// setupService creates a bidding service with open auctions
func setupService(b *testing.B, s LoadScenario) (*bidding.BiddingService, []string) {
	b.Helper()
	ctx := context.Background()
	svc := bidding.NewBiddingService(repository.NewMemoryRepo())

	ids := make([]string, s.NumAuctions)
	for i := range ids {
		a, err := svc.CreateAuction(ctx, bidding.CreateAuctionInput{
			SellerID:      "load_seller",
			Title:         fmt.Sprintf("title_%d", i),
			StartingPrice: decimal.NewFromInt(100),
			MinIncrement:  decimal.NewFromInt(1),
			EndTime:       time.Now().UTC().Add(time.Hour),
		})
		if err != nil {
			b.Fatalf("failed to create auction: %v", err)
		}
		ids[i] = a.AuctionID

		for j := 0; j < s.AutoBidders; j++ {
			ceiling := decimal.NewFromInt(int64(150 + 10*j))
			if _, err := svc.SetAutoBid(ctx, a.AuctionID, fmt.Sprintf("proxy_%d", j), ceiling); err != nil {
				b.Fatalf("failed to set auto-bid: %v", err)
			}
		}
	}
	return svc, ids
}

// Benchmark_Load_BiddingSystem runs multiple scenarios
func Benchmark_Load_BiddingSystem(b *testing.B) {
	scenarios := []LoadScenario{
		{Name: "Low-Contention-WriteHeavy", NumAuctions: 200, ReadRatio: 0, MaxBidIncrement: 50},
		{Name: "High-Contention-WriteHeavy", NumAuctions: 10, ReadRatio: 0, MaxBidIncrement: 20},
		{Name: "Mixed-Workload", NumAuctions: 50, ReadRatio: 7, MaxBidIncrement: 30},
		{Name: "ReadHeavy", NumAuctions: 50, ReadRatio: 9, MaxBidIncrement: 20},
		{Name: "Edge-Case-SingleAuction", NumAuctions: 1, ReadRatio: 5, MaxBidIncrement: 10},
		{Name: "With-AutoBidders", NumAuctions: 20, ReadRatio: 3, MaxBidIncrement: 40, AutoBidders: 3},
		{Name: "Peak-Burst", NumAuctions: 50, ReadRatio: 0, MaxBidIncrement: 20, Burst: true},
	}

	for _, s := range scenarios {
		b.Run(s.Name, func(b *testing.B) {
			runParallelScenario(b, s)
		})
	}
}

func runParallelScenario(b *testing.B, s LoadScenario) {
	b.ReportAllocs()

	svc, ids := setupService(b, s)
	ctx := context.Background()

	var totalOps, acceptedBids, rejectedBids, autoBids, totalReads int64
	auctionSuccess := make([]int64, s.NumAuctions)
	metrics := &OperationMetrics{}

	b.ResetTimer()
	start := time.Now()

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

		for pb.Next() {
			idx := rnd.Intn(s.NumAuctions)
			auctionID := ids[idx]

			opStart := time.Now()
			if rnd.Intn(10) < s.ReadRatio {
				_, _ = svc.GetWinningBid(ctx, auctionID)
				atomic.AddInt64(&totalReads, 1)
			} else {
				amount := decimal.NewFromInt(int64(100 + rnd.Intn(s.MaxBidIncrement*10)))
				userID := fmt.Sprintf("user_%d", rnd.Int())
				outcome, err := svc.SubmitBid(ctx, auctionID, userID, amount)
				if err != nil {
					// too-low and contention rejections are expected under load
					atomic.AddInt64(&rejectedBids, 1)
				} else {
					atomic.AddInt64(&acceptedBids, 1)
					atomic.AddInt64(&autoBids, int64(len(outcome.AutoBids)))
					atomic.AddInt64(&auctionSuccess[idx], 1)
				}
			}

			metrics.Record(time.Since(opStart))
			atomic.AddInt64(&totalOps, 1)

			if !s.Burst {
				time.Sleep(time.Millisecond)
			}
		}
	})

	elapsed := time.Since(start)
	throughput := float64(totalOps) / elapsed.Seconds()
	min, max, avg, p95, p99 := metrics.Stats()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	b.Logf(
		"Scenario: %s | Auctions: %d | Total Ops: %d | Accepted Bids: %d | Rejected Bids: %d | Auto Bids: %d | Reads: %d | Elapsed: %s | Throughput: %.2f ops/sec | Latency(us) min: %.2f avg: %.2f max: %.2f p95: %.2f p99: %.2f | Memory Alloc: %.2f MB",
		s.Name, s.NumAuctions, totalOps, acceptedBids, rejectedBids, autoBids, totalReads, elapsed,
		throughput,
		float64(min.Microseconds()), float64(avg.Microseconds()), float64(max.Microseconds()),
		float64(p95.Microseconds()), float64(p99.Microseconds()),
		float64(mem.Alloc)/1024/1024,
	)

	for i, v := range auctionSuccess {
		if v > 0 {
			b.Logf("Auction %d accepted bids: %d", i, v)
		}
	}
}
