package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	auction "auction-marketplace/internal/auctionService"
	bidding "auction-marketplace/internal/biddingService"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/notification"
	repository "auction-marketplace/internal/repository"

	"code.cloudfoundry.org/clock"
)

const saleWindow = 24 * time.Hour

// newServices wires the bidding service over a fresh in-memory repo with a real clock
func newServices() (*repository.MemoryRepo, *bidding.BiddingService) {
	repo := repository.NewMemoryRepo()
	clk := clock.NewClock()
	auctionSvc := auction.NewAuctionService(repo, clk, saleWindow)
	return repo, bidding.NewBiddingService(repo, auctionSvc, clk)
}

// openItem is an item whose sale window is still open
func openItem(itemID, name string, startingAmount float64) model.AuctionItem {
	now := time.Now().UTC()
	return model.AuctionItem{
		ItemID:         itemID,
		Name:           name,
		Description:    "benchmark item",
		StartTime:      now,
		EndTime:        now.Add(saleWindow),
		StartingAmount: startingAmount,
		UserID:         "seller",
	}
}

// Benchmark 1: PlaceBid - Isolated Items (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	ctx := context.Background()
	repo, svc := newServices()

	for i := 0; i < b.N; i++ {
		repo.AddItem(openItem(fmt.Sprintf("item_%d", i), fmt.Sprintf("Low-Contention Item%d", i), 50))
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		userID := fmt.Sprintf("user_%d", i)
		itemID := fmt.Sprintf("item_%d", i)
		bidAmount := float64(50 + rand.Intn(100))
		if _, err := svc.PlaceBid(ctx, itemID, userID, bidAmount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Item (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentSharedItem(b *testing.B) {
	ctx := context.Background()
	repo, svc := newServices()

	item := openItem("shared_item_1", "High-Contention Item", 50)
	repo.AddItem(item)

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			userID := fmt.Sprintf("user_parallel_%d", rnd.Int())
			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			_, _ = svc.PlaceBid(ctx, item.ItemID, userID, float64(nextBid))
		}
	})
}

// Benchmark 3: DetermineWinner - Single-Threaded (Low Contention)
func Benchmark_DetermineWinner_SingleThreaded(b *testing.B) {
	ctx := context.Background()
	repo, svc := newServices()

	for i := 0; i < b.N; i++ {
		item := openItem(fmt.Sprintf("item_%d", i), fmt.Sprintf("Low-Contention Item%d", i), 50)
		repo.AddItem(item)

		for j := 0; j < 10; j++ {
			userID := fmt.Sprintf("user_%d_%d", i, j)
			_, _ = svc.PlaceBid(ctx, item.ItemID, userID, float64(50+j*10))
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		itemID := fmt.Sprintf("item_%d", i)
		if _, err := svc.DetermineWinner(ctx, itemID); err != nil {
			b.Fatalf("failed to determine winner: %v", err)
		}
	}
}

// Benchmark 4: ResolveWinner - pure ledger scan
func Benchmark_ResolveWinner_LargeLedger(b *testing.B) {
	bids := make([]model.Bid, 10_000)
	start := time.Now().UTC()
	for i := range bids {
		bids[i] = model.Bid{
			BidID:     fmt.Sprintf("bid_%d", i),
			ItemID:    "item",
			UserID:    fmt.Sprintf("user_%d", i%500),
			Amount:    float64(50 + rand.Intn(10_000)),
			CreatedAt: start.Add(time.Duration(i) * time.Millisecond),
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := bidding.ResolveWinner(bids); err != nil {
			b.Fatalf("failed to resolve winner: %v", err)
		}
	}
}

// Benchmark 5: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_SharedItem(b *testing.B) {
	ctx := context.Background()
	repo, svc := newServices()

	item := openItem("shared_item_1", "Shared Item", 50)
	repo.AddItem(item)

	for j := 0; j < 50; j++ {
		userID := fmt.Sprintf("user_seed_%d", j)
		_, _ = svc.PlaceBid(ctx, item.ItemID, userID, float64(50+j*2))
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 150

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			if rnd.Intn(10) < 3 {
				userID := fmt.Sprintf("user_writer_%d", rnd.Int())
				nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = svc.PlaceBid(ctx, item.ItemID, userID, float64(nextBid))
				continue
			}
			if _, err := svc.GetBidsForItem(ctx, item.ItemID); err != nil {
				b.Errorf("failed to read ledger: %v", err)
			}
		}
	})
}

type nopMailer struct{}

func (nopMailer) Send(ctx context.Context, _ notification.Message) error {
	return ctx.Err()
}

// Benchmark 6: result fan-out over many bidders
func Benchmark_Dispatch_ManyBidders(b *testing.B) {
	ctx := context.Background()
	dispatcher := notification.NewDispatcher(nopMailer{}, 8, time.Second)

	item := openItem("settled", "Settled Item", 50)
	item.Winner = "user_0"
	bids := make([]model.Bid, 1_000)
	for i := range bids {
		bids[i] = model.Bid{BidID: fmt.Sprintf("bid_%d", i), ItemID: item.ItemID, UserID: fmt.Sprintf("user_%d", i), Amount: 60}
	}
	resolve := func(_ context.Context, userID string) (string, error) {
		return userID + "@bench.local", nil
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		result, err := dispatcher.Dispatch(ctx, &item, bids, resolve)
		if err != nil {
			b.Fatalf("failed to dispatch: %v", err)
		}
		if result.Attempted != len(bids) {
			b.Fatalf("attempted %d sends, want %d", result.Attempted, len(bids))
		}
	}
}
