package notification

import (
	"auction-marketplace/internal/repository"
	"context"
	"fmt"
)

// Service loads an item's outcome from the store and dispatches result emails
type Service struct {
	repo       repository.AuctionDB
	dispatcher *Dispatcher
}

// NewService creates a new notification Service
func NewService(repo repository.AuctionDB, dispatcher *Dispatcher) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
	}
}

// SendResults emails the winner and the other bidders of a settled item
func (s *Service) SendResults(ctx context.Context, itemID string) (DispatchResult, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}

	bids, err := s.repo.GetBidsByItem(ctx, itemID)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("service: failed to get bids for item %s: %w", itemID, err)
	}

	result, err := s.dispatcher.Dispatch(ctx, &item, bids, s.resolveEmail)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("service: failed to dispatch results for item %s: %w", itemID, err)
	}
	return result, nil
}

func (s *Service) resolveEmail(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Email == "" {
		return "", fmt.Errorf("user %s has no email", userID)
	}
	return user.Email, nil
}
