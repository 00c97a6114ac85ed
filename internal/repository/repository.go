package repository

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

import (
	"auction-marketplace/internal/biddingerrors"
	model "auction-marketplace/internal/models"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// AuctionDB defines the storage interface for the auction system.
// GetBidsByItem returns bids in ledger order: ascending CreatedAt, then insertion order.
type AuctionDB interface {
	CreateItem(ctx context.Context, item model.AuctionItem) error
	GetItem(ctx context.Context, itemID string) (model.AuctionItem, error)
	ListItems(ctx context.Context) ([]model.AuctionItem, error)
	// UpdateItem writes the editable fields of an item. Winner and WinnerBid are left untouched.
	UpdateItem(ctx context.Context, item model.AuctionItem) error
	// SettleItem writes only the settlement fields of an item.
	SettleItem(ctx context.Context, itemID, winner, winnerBid string) error
	DeleteItem(ctx context.Context, itemID string) error

	RecordBidForItem(ctx context.Context, bid model.Bid) error
	GetBidsByItem(ctx context.Context, itemID string) ([]model.Bid, error)
	GetBid(ctx context.Context, bidID string) (model.Bid, error)
	UpdateBid(ctx context.Context, bid model.Bid) error
	DeleteBid(ctx context.Context, bidID string) error
	GetItemsByUser(ctx context.Context, userID string) ([]model.AuctionItem, error)

	CreateUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, userID string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user model.User) error
}

type ledgerEntry struct {
	seq uint64
	bid model.Bid
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu    sync.RWMutex
	seq   uint64
	items map[string]model.AuctionItem // key: itemID -> value: item
	bids  map[string]ledgerEntry       // key: bidID -> value: bid and its insertion sequence
	users map[string]model.User        // key: userID -> value: user
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		items: make(map[string]model.AuctionItem),
		bids:  make(map[string]ledgerEntry),
		users: make(map[string]model.User),
	}
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// CreateItem stores a new item; names are unique case-insensitively
func (r *MemoryRepo) CreateItem(ctx context.Context, item model.AuctionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ItemID]; ok {
		return fmt.Errorf("create item %s: %w", item.ItemID, biddingerrors.ErrDuplicateName)
	}
	for _, existing := range r.items {
		if sameName(existing.Name, item.Name) {
			return fmt.Errorf("create item %q: %w", item.Name, biddingerrors.ErrDuplicateName)
		}
	}
	r.items[item.ItemID] = copyItem(item)
	return nil
}

// GetItem returns a single item
func (r *MemoryRepo) GetItem(ctx context.Context, itemID string) (model.AuctionItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.AuctionItem{}, fmt.Errorf("get item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	return copyItem(item), nil
}

// ListItems returns every item ordered by start time
func (r *MemoryRepo) ListItems(ctx context.Context) ([]model.AuctionItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.AuctionItem, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, copyItem(item))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].StartTime.Equal(items[j].StartTime) {
			return items[i].ItemID < items[j].ItemID
		}
		return items[i].StartTime.Before(items[j].StartTime)
	})
	return items, nil
}

// UpdateItem replaces the editable fields of a stored item, keeping its settlement
func (r *MemoryRepo) UpdateItem(ctx context.Context, item model.AuctionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[item.ItemID]
	if !ok {
		return fmt.Errorf("update item %s: %w", item.ItemID, biddingerrors.ErrItemNotFound)
	}
	for id, existing := range r.items {
		if id != item.ItemID && sameName(existing.Name, item.Name) {
			return fmt.Errorf("update item %q: %w", item.Name, biddingerrors.ErrDuplicateName)
		}
	}
	item.Winner = stored.Winner
	item.WinnerBid = stored.WinnerBid
	item.StartTime = stored.StartTime
	item.EndTime = stored.EndTime
	r.items[item.ItemID] = copyItem(item)
	return nil
}

// SettleItem records the winner of an item
func (r *MemoryRepo) SettleItem(ctx context.Context, itemID, winner, winnerBid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return fmt.Errorf("settle item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	item.Winner = winner
	item.WinnerBid = winnerBid
	r.items[itemID] = item
	return nil
}

// DeleteItem removes an item. Bids recorded against it are kept.
func (r *MemoryRepo) DeleteItem(ctx context.Context, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[itemID]; !ok {
		return fmt.Errorf("delete item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	delete(r.items, itemID)
	return nil
}

// RecordBidForItem records a user's bid on an item
func (r *MemoryRepo) RecordBidForItem(ctx context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[bid.ItemID]; !ok {
		return fmt.Errorf("record bid for item %s: %w", bid.ItemID, biddingerrors.ErrItemNotFound)
	}

	r.seq++
	r.bids[bid.BidID] = ledgerEntry{seq: r.seq, bid: bid}
	return nil
}

// GetBidsByItem returns all bids for an item in ledger order
func (r *MemoryRepo) GetBidsByItem(ctx context.Context, itemID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []ledgerEntry
	for _, e := range r.bids {
		if e.bid.ItemID == itemID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.bid.CreatedAt.Equal(b.bid.CreatedAt) {
			return a.seq < b.seq
		}
		return a.bid.CreatedAt.Before(b.bid.CreatedAt)
	})

	bids := make([]model.Bid, 0, len(entries))
	for _, e := range entries {
		bids = append(bids, e.bid)
	}
	return bids, nil
}

// GetBid returns a single bid
func (r *MemoryRepo) GetBid(ctx context.Context, bidID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.bids[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	return e.bid, nil
}

// UpdateBid replaces a stored bid, keeping its ledger position
func (r *MemoryRepo) UpdateBid(ctx context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.bids[bid.BidID]
	if !ok {
		return fmt.Errorf("update bid %s: %w", bid.BidID, biddingerrors.ErrBidNotFound)
	}
	e.bid = bid
	r.bids[bid.BidID] = e
	return nil
}

// DeleteBid removes a bid
func (r *MemoryRepo) DeleteBid(ctx context.Context, bidID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bids[bidID]; !ok {
		return fmt.Errorf("delete bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	delete(r.bids, bidID)
	return nil
}

// GetItemsByUser returns all items a user has bid on, in order of the user's first bid
func (r *MemoryRepo) GetItemsByUser(ctx context.Context, userID string) ([]model.AuctionItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []ledgerEntry
	for _, e := range r.bids {
		if e.bid.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	seen := make(map[string]bool)
	items := make([]model.AuctionItem, 0)
	for _, e := range entries {
		if seen[e.bid.ItemID] {
			continue
		}
		seen[e.bid.ItemID] = true
		if item, exists := r.items[e.bid.ItemID]; exists {
			items = append(items, copyItem(item))
		}
	}
	return items, nil
}

// CreateUser stores a new user; emails are unique
func (r *MemoryRepo) CreateUser(ctx context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("create user %s: %w", user.Email, biddingerrors.ErrDuplicateEmail)
		}
	}
	r.users[user.UserID] = copyUser(user)
	return nil
}

// GetUser returns a single user
func (r *MemoryRepo) GetUser(ctx context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUserNotFound)
	}
	return copyUser(user), nil
}

// ListUsers returns every user ordered by username
func (r *MemoryRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// UpdateUser replaces a stored user
func (r *MemoryRepo) UpdateUser(ctx context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserID]; !ok {
		return fmt.Errorf("update user %s: %w", user.UserID, biddingerrors.ErrUserNotFound)
	}
	r.users[user.UserID] = copyUser(user)
	return nil
}

// AddItem adds an item to the repository, bypassing validation. Used for seeding and tests.
func (r *MemoryRepo) AddItem(item model.AuctionItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ItemID] = copyItem(item)
}

// AddUser adds a user to the repository, bypassing validation. Used for seeding and tests.
func (r *MemoryRepo) AddUser(user model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = copyUser(user)
}

func copyItem(item model.AuctionItem) model.AuctionItem {
	if item.Amount != nil {
		amount := *item.Amount
		item.Amount = &amount
	}
	return item
}

func copyUser(user model.User) model.User {
	user.Followers = append([]model.UserRef(nil), user.Followers...)
	user.Following = append([]model.UserRef(nil), user.Following...)
	return user
}
