package perftests

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"auction-marketplace/internal/biddingerrors"
	bidding "auction-marketplace/internal/biddingService"
)

// loadProfile describes one mix of bidders and resolvers hitting a set of items
type loadProfile struct {
	name       string
	items      int
	resolvePct int // share of operations that resolve a winner, 0-100
	spread     int // bids are drawn from [95, 95+spread), straddling the starting amount
	pause      time.Duration
}

// loadCounters are updated by every worker
type loadCounters struct {
	accepted, tooLow, resolved, noBids, otherErrors atomic.Int64
	perItem                                         []atomic.Int64
}

// latencyLog gathers per-worker samples and merges them once the run ends
type latencyLog struct {
	mu      sync.Mutex
	samples []time.Duration
}

func (l *latencyLog) merge(samples []time.Duration) {
	l.mu.Lock()
	l.samples = append(l.samples, samples...)
	l.mu.Unlock()
}

func (l *latencyLog) percentile(p float64) time.Duration {
	if len(l.samples) == 0 {
		return 0
	}
	return l.samples[int(p*float64(len(l.samples)-1))]
}

func (l *latencyLog) summary() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.samples) == 0 {
		return "no samples"
	}
	slices.Sort(l.samples)

	var sum time.Duration
	for _, d := range l.samples {
		sum += d
	}
	return fmt.Sprintf("p50=%s p95=%s p99=%s max=%s mean=%s",
		l.percentile(0.50), l.percentile(0.95), l.percentile(0.99),
		l.samples[len(l.samples)-1], sum/time.Duration(len(l.samples)))
}

func seededService(items int) *bidding.BiddingService {
	repo, svc := newServices()
	for i := 0; i < items; i++ {
		repo.AddItem(openItem(fmt.Sprintf("item_%d", i), fmt.Sprintf("title_%d", i), 100))
	}
	return svc
}

// Benchmark_Load_Auctions drives PlaceBid and DetermineWinner concurrently under several profiles
func Benchmark_Load_Auctions(b *testing.B) {
	profiles := []loadProfile{
		{name: "Spread-Items-Bidding", items: 200, spread: 50, pause: time.Millisecond},
		{name: "Hot-Items-Bidding", items: 10, spread: 20, pause: time.Millisecond},
		{name: "Mixed", items: 50, resolvePct: 30, spread: 30, pause: time.Millisecond},
		{name: "Resolve-Heavy", items: 50, resolvePct: 90, spread: 20, pause: time.Millisecond},
		{name: "Single-Item", items: 1, resolvePct: 50, spread: 10, pause: time.Millisecond},
		{name: "Burst", items: 50, spread: 20},
	}

	for _, p := range profiles {
		b.Run(p.name, func(b *testing.B) {
			runProfile(b, p)
		})
	}
}

func runProfile(b *testing.B, p loadProfile) {
	b.ReportAllocs()

	ctx := context.Background()
	svc := seededService(p.items)
	counters := &loadCounters{perItem: make([]atomic.Int64, p.items)}
	latencies := &latencyLog{}

	began := time.Now()
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		var local []time.Duration

		for pb.Next() {
			idx := rnd.Intn(p.items)
			itemID := fmt.Sprintf("item_%d", idx)

			opStart := time.Now()
			if rnd.Intn(100) < p.resolvePct {
				_, err := svc.DetermineWinner(ctx, itemID)
				switch {
				case err == nil:
					counters.resolved.Add(1)
				case errors.Is(err, biddingerrors.ErrNoBids):
					counters.noBids.Add(1)
				default:
					counters.otherErrors.Add(1)
				}
			} else {
				amount := float64(95 + rnd.Intn(p.spread))
				_, err := svc.PlaceBid(ctx, itemID, fmt.Sprintf("user_%d", rnd.Int()), amount)
				switch {
				case err == nil:
					counters.accepted.Add(1)
					counters.perItem[idx].Add(1)
				case errors.Is(err, biddingerrors.ErrBidTooLow):
					counters.tooLow.Add(1)
				default:
					counters.otherErrors.Add(1)
				}
			}
			local = append(local, time.Since(opStart))

			if p.pause > 0 {
				time.Sleep(p.pause)
			}
		}
		latencies.merge(local)
	})
	elapsed := time.Since(began)

	ops := counters.accepted.Load() + counters.tooLow.Load() + counters.resolved.Load() + counters.noBids.Load() + counters.otherErrors.Load()
	b.ReportMetric(float64(ops)/elapsed.Seconds(), "ops/s")
	b.Logf("%s: items=%d accepted=%d too_low=%d resolved=%d errors=%d elapsed=%s latency[%s]",
		p.name, p.items, counters.accepted.Load(), counters.tooLow.Load(), counters.resolved.Load(),
		counters.otherErrors.Load(), elapsed, latencies.summary())

	if counters.otherErrors.Load() > 0 {
		b.Errorf("%s: %d unexpected errors", p.name, counters.otherErrors.Load())
	}

	busiest := 0
	for i := range counters.perItem {
		if counters.perItem[i].Load() > counters.perItem[busiest].Load() {
			busiest = i
		}
	}
	b.Logf("%s: busiest item_%d with %d accepted bids", p.name, busiest, counters.perItem[busiest].Load())
}
