package biddingerrors

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services wraps exactly one of these.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrUnauthenticated   = errors.New("not authenticated")
	ErrUnauthorized      = errors.New("not authorized")
	ErrAuctionClosed     = errors.New("auction is closed")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrNoBids            = errors.New("no bids found for item")
	ErrPendingResolution = errors.New("auction item has no winner yet")
	ErrSelfFollow        = errors.New("user cannot follow themselves")
	ErrAlreadyFollowing  = errors.New("user is already followed")
)

// Repository-level errors
var (
	ErrItemNotFound   = fmt.Errorf("item %w", ErrNotFound)
	ErrBidNotFound    = fmt.Errorf("bid %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrDuplicateName  = fmt.Errorf("%w: item name already taken", ErrValidation)
	ErrDuplicateEmail = fmt.Errorf("%w: email already registered", ErrValidation)
)

// business logic errors
var (
	ErrInvalidItem   = fmt.Errorf("%w: invalid item", ErrValidation)
	ErrInvalidBid    = fmt.Errorf("%w: invalid bid", ErrValidation)
	ErrInvalidUser   = fmt.Errorf("%w: invalid user", ErrValidation)
	ErrNotAuthorized = fmt.Errorf("actor %w", ErrUnauthorized)
	ErrInvalidToken  = fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrValidation, "validation_error"},
	{ErrNotFound, "not_found"},
	{ErrUnauthenticated, "authentication_error"},
	{ErrUnauthorized, "authorization_error"},
	{ErrAuctionClosed, "auction_closed"},
	{ErrBidTooLow, "bid_too_low"},
	{ErrNoBids, "no_bids"},
	{ErrPendingResolution, "pending_resolution"},
	{ErrSelfFollow, "self_follow"},
	{ErrAlreadyFollowing, "already_following"},
}

// Kind returns the machine-readable kind of err, or "internal" when err
// does not wrap a known kind.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
