package models

import "time"

// Roles a user can hold
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserRef is the denormalized copy of a user stored in follower/following lists
type UserRef struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// User represents a participant in the auction
type User struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Followers []UserRef `json:"followers"`
	Following []UserRef `json:"following"`
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Ref returns the denormalized reference for u
func (u User) Ref() UserRef {
	return UserRef{UserID: u.UserID, Username: u.Username, Email: u.Email}
}

// AuctionItem represents an item open for bids until EndTime.
// EndTime is fixed when the item is created.
type AuctionItem struct {
	ItemID         string    `json:"item_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	ImageURL       string    `json:"image_url,omitempty"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	StartingAmount float64   `json:"starting_amount"`
	Amount         *float64  `json:"amount,omitempty"`
	UserID         string    `json:"user_id"`
	Winner         string    `json:"winner,omitempty"`
	WinnerBid      string    `json:"winner_bid,omitempty"`
}

// IsSettled reports whether a winner has been written onto the item
func (i AuctionItem) IsSettled() bool {
	return i.Winner != ""
}

// Bid represents a user's bid on an item
type Bid struct {
	BidID     string    `json:"bid_id"`
	ItemID    string    `json:"item_id"`
	UserID    string    `json:"user_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
