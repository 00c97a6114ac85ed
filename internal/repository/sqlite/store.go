// Package sqlite provides a SQLite-backed implementation of repository.AuctionDB.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"auction-marketplace/internal/biddingerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/repository/sqlite/migrations"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists items, bids and users in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ repository.AuctionDB = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

const itemColumns = `item_id, name, description, image_url, start_time, end_time,
        starting_amount, amount, user_id, winner, winner_bid`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.AuctionItem, error) {
	var item model.AuctionItem
	var startTime, endTime int64
	var amount sql.NullFloat64
	if err := row.Scan(
		&item.ItemID,
		&item.Name,
		&item.Description,
		&item.ImageURL,
		&startTime,
		&endTime,
		&item.StartingAmount,
		&amount,
		&item.UserID,
		&item.Winner,
		&item.WinnerBid,
	); err != nil {
		return model.AuctionItem{}, err
	}
	item.StartTime = fromMillis(startTime)
	item.EndTime = fromMillis(endTime)
	if amount.Valid {
		value := amount.Float64
		item.Amount = &value
	}
	return item, nil
}

func nullAmount(amount *float64) sql.NullFloat64 {
	if amount == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *amount, Valid: true}
}

// CreateItem inserts one item.
func (s *Store) CreateItem(ctx context.Context, item model.AuctionItem) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO auction_items (`+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ItemID,
		strings.TrimSpace(item.Name),
		item.Description,
		item.ImageURL,
		toMillis(item.StartTime),
		toMillis(item.EndTime),
		item.StartingAmount,
		nullAmount(item.Amount),
		item.UserID,
		item.Winner,
		item.WinnerBid,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create item %q: %w", item.Name, biddingerrors.ErrDuplicateName)
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// GetItem returns one item by id.
func (s *Store) GetItem(ctx context.Context, itemID string) (model.AuctionItem, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM auction_items WHERE item_id = ?`, itemID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AuctionItem{}, fmt.Errorf("get item %s: %w", itemID, biddingerrors.ErrItemNotFound)
		}
		return model.AuctionItem{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// ListItems returns every item ordered by start time.
func (s *Store) ListItems(ctx context.Context) ([]model.AuctionItem, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+itemColumns+` FROM auction_items ORDER BY start_time ASC, item_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]model.AuctionItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// UpdateItem rewrites the editable columns of an item. The sale window and the
// settlement columns are never updated here.
func (s *Store) UpdateItem(ctx context.Context, item model.AuctionItem) error {
	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE auction_items
		    SET name = ?, description = ?, image_url = ?, amount = ?
		  WHERE item_id = ?`,
		strings.TrimSpace(item.Name),
		item.Description,
		item.ImageURL,
		nullAmount(item.Amount),
		item.ItemID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update item %q: %w", item.Name, biddingerrors.ErrDuplicateName)
		}
		return fmt.Errorf("update item: %w", err)
	}
	return requireAffected(res, fmt.Errorf("update item %s: %w", item.ItemID, biddingerrors.ErrItemNotFound))
}

// SettleItem writes the winner columns of an item.
func (s *Store) SettleItem(ctx context.Context, itemID, winner, winnerBid string) error {
	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE auction_items SET winner = ?, winner_bid = ? WHERE item_id = ?`,
		winner, winnerBid, itemID,
	)
	if err != nil {
		return fmt.Errorf("settle item: %w", err)
	}
	return requireAffected(res, fmt.Errorf("settle item %s: %w", itemID, biddingerrors.ErrItemNotFound))
}

// DeleteItem removes an item. Bids are left in place.
func (s *Store) DeleteItem(ctx context.Context, itemID string) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM auction_items WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireAffected(res, fmt.Errorf("delete item %s: %w", itemID, biddingerrors.ErrItemNotFound))
}

// RecordBidForItem appends a bid to the ledger of an existing item.
func (s *Store) RecordBidForItem(ctx context.Context, bid model.Bid) error {
	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO bids (bid_id, item_id, user_id, amount, created_at)
		 SELECT ?, ?, ?, ?, ?
		  WHERE EXISTS (SELECT 1 FROM auction_items WHERE item_id = ?)`,
		bid.BidID,
		bid.ItemID,
		bid.UserID,
		bid.Amount,
		toMillis(bid.CreatedAt),
		bid.ItemID,
	)
	if err != nil {
		return fmt.Errorf("record bid: %w", err)
	}
	return requireAffected(res, fmt.Errorf("record bid for item %s: %w", bid.ItemID, biddingerrors.ErrItemNotFound))
}

func scanBids(rows *sql.Rows) ([]model.Bid, error) {
	defer rows.Close()

	bids := make([]model.Bid, 0)
	for rows.Next() {
		var bid model.Bid
		var createdAt int64
		if err := rows.Scan(&bid.BidID, &bid.ItemID, &bid.UserID, &bid.Amount, &createdAt); err != nil {
			return nil, err
		}
		bid.CreatedAt = fromMillis(createdAt)
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

// GetBidsByItem returns an item's bids ordered by created_at, then insertion sequence.
func (s *Store) GetBidsByItem(ctx context.Context, itemID string) ([]model.Bid, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT bid_id, item_id, user_id, amount, created_at
		   FROM bids
		  WHERE item_id = ?
		  ORDER BY created_at ASC, seq ASC`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("get bids for item %s: %w", itemID, err)
	}
	bids, err := scanBids(rows)
	if err != nil {
		return nil, fmt.Errorf("get bids for item %s: %w", itemID, err)
	}
	return bids, nil
}

// GetBid returns one bid by id.
func (s *Store) GetBid(ctx context.Context, bidID string) (model.Bid, error) {
	var bid model.Bid
	var createdAt int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT bid_id, item_id, user_id, amount, created_at FROM bids WHERE bid_id = ?`,
		bidID,
	).Scan(&bid.BidID, &bid.ItemID, &bid.UserID, &bid.Amount, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
		}
		return model.Bid{}, fmt.Errorf("get bid: %w", err)
	}
	bid.CreatedAt = fromMillis(createdAt)
	return bid, nil
}

// UpdateBid rewrites a bid's amount. The ledger position is unchanged.
func (s *Store) UpdateBid(ctx context.Context, bid model.Bid) error {
	res, err := s.sqlDB.ExecContext(ctx, `UPDATE bids SET amount = ? WHERE bid_id = ?`, bid.Amount, bid.BidID)
	if err != nil {
		return fmt.Errorf("update bid: %w", err)
	}
	return requireAffected(res, fmt.Errorf("update bid %s: %w", bid.BidID, biddingerrors.ErrBidNotFound))
}

// DeleteBid removes a bid.
func (s *Store) DeleteBid(ctx context.Context, bidID string) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM bids WHERE bid_id = ?`, bidID)
	if err != nil {
		return fmt.Errorf("delete bid: %w", err)
	}
	return requireAffected(res, fmt.Errorf("delete bid %s: %w", bidID, biddingerrors.ErrBidNotFound))
}

// GetItemsByUser returns the items a user has bid on, in order of the user's first bid.
func (s *Store) GetItemsByUser(ctx context.Context, userID string) ([]model.AuctionItem, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+prefixed("i.", itemColumns)+`
		   FROM auction_items i
		   JOIN (SELECT item_id, MIN(seq) AS first_seq FROM bids WHERE user_id = ? GROUP BY item_id) b
		     ON b.item_id = i.item_id
		  ORDER BY b.first_seq ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get items for user %s: %w", userID, err)
	}
	defer rows.Close()

	items := make([]model.AuctionItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("get items for user %s: %w", userID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get items for user %s: %w", userID, err)
	}
	return items, nil
}

// CreateUser inserts one user.
func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	followers, following, err := encodeRefs(user)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (user_id, username, email, role, followers, following) VALUES (?, ?, ?, ?, ?, ?)`,
		user.UserID, user.Username, user.Email, user.Role, followers, following,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", user.Email, biddingerrors.ErrDuplicateEmail)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (model.User, error) {
	var user model.User
	var followers, following string
	if err := row.Scan(&user.UserID, &user.Username, &user.Email, &user.Role, &followers, &following); err != nil {
		return model.User{}, err
	}
	if err := json.Unmarshal([]byte(followers), &user.Followers); err != nil {
		return model.User{}, fmt.Errorf("decode followers: %w", err)
	}
	if err := json.Unmarshal([]byte(following), &user.Following); err != nil {
		return model.User{}, fmt.Errorf("decode following: %w", err)
	}
	if len(user.Followers) == 0 {
		user.Followers = nil
	}
	if len(user.Following) == 0 {
		user.Following = nil
	}
	return user, nil
}

// GetUser returns one user by id.
func (s *Store) GetUser(ctx context.Context, userID string) (model.User, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT user_id, username, email, role, followers, following FROM users WHERE user_id = ?`,
		userID,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUserNotFound)
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT user_id, username, email, role, followers, following FROM users ORDER BY username ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser rewrites a user record including its follower lists.
func (s *Store) UpdateUser(ctx context.Context, user model.User) error {
	followers, following, err := encodeRefs(user)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	res, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE users SET username = ?, email = ?, role = ?, followers = ?, following = ? WHERE user_id = ?`,
		user.Username, user.Email, user.Role, followers, following, user.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user %s: %w", user.Email, biddingerrors.ErrDuplicateEmail)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res, fmt.Errorf("update user %s: %w", user.UserID, biddingerrors.ErrUserNotFound))
}

func encodeRefs(user model.User) (string, string, error) {
	followers := user.Followers
	if followers == nil {
		followers = []model.UserRef{}
	}
	following := user.Following
	if following == nil {
		following = []model.UserRef{}
	}
	f1, err := json.Marshal(followers)
	if err != nil {
		return "", "", err
	}
	f2, err := json.Marshal(following)
	if err != nil {
		return "", "", err
	}
	return string(f1), string(f2), nil
}

func prefixed(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
