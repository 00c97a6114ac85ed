package notification

import (
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/utils"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"code.cloudfoundry.org/workpool"
)

const (
	resultSubject = "Thanks for dealing with us"
	winnerBody    = "Congratulations your bid for item %s has been successful"
	loserBody     = "You are receiving this email because your bid was not successful"
)

// EmailResolver looks up the address of a user
type EmailResolver func(ctx context.Context, userID string) (string, error)

// DispatchResult counts the sends of one batch
type DispatchResult struct {
	Attempted int `json:"attempted"`
	Failed    int `json:"failed"`
}

// Dispatcher fans result emails out to an item's participants
type Dispatcher struct {
	mailer  Mailer
	workers int
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher running at most workers sends at once,
// each bounded by timeout.
func NewDispatcher(mailer Mailer, workers int, timeout time.Duration) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		mailer:  mailer,
		workers: workers,
		timeout: timeout,
	}
}

// Dispatch emails the winner of a settled item and every other bidder.
// Individual send failures are logged and counted; they never abort the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, item *models.AuctionItem, bids []models.Bid, resolveEmail EmailResolver) (DispatchResult, error) {
	if item == nil {
		return DispatchResult{}, fmt.Errorf("dispatch: %w", biddingerrors.ErrItemNotFound)
	}
	if item.Winner == "" {
		return DispatchResult{}, fmt.Errorf("dispatch: item %s: %w", item.ItemID, biddingerrors.ErrPendingResolution)
	}

	plan, err := buildPlan(ctx, item, bids, resolveEmail)
	if err != nil {
		return DispatchResult{}, err
	}

	var failed atomic.Int64
	works := make([]func(), 0, len(plan))
	for _, msg := range plan {
		msg := msg
		works = append(works, func() {
			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			if err := d.mailer.Send(sendCtx, msg); err != nil {
				failed.Add(1)
				utils.Warn("Failed to send result email", map[string]any{
					"item_id": item.ItemID,
					"to":      msg.To,
					"error":   err.Error(),
				})
			}
		})
	}

	throttler, err := workpool.NewThrottler(d.workers, works)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("dispatch: failed to create throttler: %w", err)
	}
	throttler.Work()

	result := DispatchResult{Attempted: len(plan), Failed: int(failed.Load())}
	utils.Info("Result emails dispatched", map[string]any{
		"item_id":   item.ItemID,
		"attempted": result.Attempted,
		"failed":    result.Failed,
	})
	return result, nil
}

// buildPlan resolves every recipient before anything is sent. Bidders are
// collapsed by user id; addresses are compared only against the winner's.
func buildPlan(ctx context.Context, item *models.AuctionItem, bids []models.Bid, resolveEmail EmailResolver) ([]Message, error) {
	winnerEmail, err := resolveEmail(ctx, item.Winner)
	if err != nil {
		return nil, fmt.Errorf("dispatch: failed to resolve winner %s of item %s: %w", item.Winner, item.ItemID, err)
	}

	plan := []Message{{
		To:      winnerEmail,
		Subject: resultSubject,
		Body:    fmt.Sprintf(winnerBody, item.Name),
	}}

	seen := map[string]struct{}{item.Winner: {}}
	for _, bid := range bids {
		if _, ok := seen[bid.UserID]; ok {
			continue
		}
		seen[bid.UserID] = struct{}{}

		email, err := resolveEmail(ctx, bid.UserID)
		if err != nil {
			utils.Warn("Skipping bidder without resolvable email", map[string]any{
				"item_id": item.ItemID,
				"user_id": bid.UserID,
				"error":   err.Error(),
			})
			continue
		}
		if email == winnerEmail {
			continue
		}
		plan = append(plan, Message{To: email, Subject: resultSubject, Body: loserBody})
	}
	return plan, nil
}
