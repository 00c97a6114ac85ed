package notification

import (
	"auction-marketplace/internal/biddingerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
}

func (r *recordingMailer) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingMailer) byRecipient() map[string][]Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string][]Message{}
	for _, m := range r.sent {
		out[m.To] = append(out[m.To], m)
	}
	return out
}

func directory(emails map[string]string) EmailResolver {
	return func(_ context.Context, userID string) (string, error) {
		email, ok := emails[userID]
		if !ok {
			return "", biddingerrors.ErrUserNotFound
		}
		return email, nil
	}
}

func settledItem() *model.AuctionItem {
	return &model.AuctionItem{ItemID: "item1", Name: "Vase", Winner: "w", WinnerBid: "b1"}
}

func bidsBy(users ...string) []model.Bid {
	bids := make([]model.Bid, 0, len(users))
	for i, u := range users {
		bids = append(bids, model.Bid{BidID: fmt.Sprintf("b%d", i+1), ItemID: "item1", UserID: u, Amount: float64(100 + i)})
	}
	return bids
}

func TestDispatch_WinnerAndLosers(t *testing.T) {
	t.Parallel()

	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, 2, time.Second)
	emails := directory(map[string]string{"w": "w@x.com", "a": "a@x.com", "b": "b@x.com"})

	result, err := d.Dispatch(context.Background(), settledItem(), bidsBy("w", "a", "b", "a", "w"), emails)
	require.NoError(t, err)
	require.Equal(t, DispatchResult{Attempted: 3, Failed: 0}, result)

	sent := mailer.byRecipient()
	require.Len(t, sent, 3)
	require.Equal(t, []Message{{To: "w@x.com", Subject: "Thanks for dealing with us", Body: "Congratulations your bid for item Vase has been successful"}}, sent["w@x.com"])
	for _, loser := range []string{"a@x.com", "b@x.com"} {
		require.Len(t, sent[loser], 1)
		require.Equal(t, "You are receiving this email because your bid was not successful", sent[loser][0].Body)
	}
}

func TestDispatch_Recipients(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		bids       []model.Bid
		emails     map[string]string
		recipients []string
	}{
		{
			name:       "winner_only",
			bids:       bidsBy("w"),
			emails:     map[string]string{"w": "w@x.com"},
			recipients: []string{"w@x.com"},
		},
		{
			name:       "loser_sharing_winner_address_is_skipped",
			bids:       bidsBy("w", "a"),
			emails:     map[string]string{"w": "w@x.com", "a": "w@x.com"},
			recipients: []string{"w@x.com"},
		},
		{
			name:       "losers_sharing_an_address_each_get_mail",
			bids:       bidsBy("w", "a", "b"),
			emails:     map[string]string{"w": "w@x.com", "a": "shared@x.com", "b": "shared@x.com"},
			recipients: []string{"shared@x.com", "shared@x.com", "w@x.com"},
		},
		{
			name:       "unresolvable_bidder_is_skipped",
			bids:       bidsBy("w", "ghost", "a"),
			emails:     map[string]string{"w": "w@x.com", "a": "a@x.com"},
			recipients: []string{"a@x.com", "w@x.com"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mailer := &recordingMailer{}
			result, err := NewDispatcher(mailer, 4, time.Second).Dispatch(context.Background(), settledItem(), tc.bids, directory(tc.emails))
			require.NoError(t, err)
			require.Equal(t, len(tc.recipients), result.Attempted)

			got := make([]string, 0, len(mailer.sent))
			for _, m := range mailer.sent {
				got = append(got, m.To)
			}
			sort.Strings(got)
			require.Equal(t, tc.recipients, got)
		})
	}
}

func TestDispatch_Preconditions(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mailer := NewMockMailer(ctrl) // no sends expected
	d := NewDispatcher(mailer, 2, time.Second)
	emails := directory(map[string]string{"a": "a@x.com"})

	_, err := d.Dispatch(context.Background(), nil, nil, emails)
	require.ErrorIs(t, err, biddingerrors.ErrItemNotFound)

	pending := settledItem()
	pending.Winner = ""
	_, err = d.Dispatch(context.Background(), pending, bidsBy("a"), emails)
	require.ErrorIs(t, err, biddingerrors.ErrPendingResolution)

	// winner cannot be resolved, nothing is sent
	_, err = d.Dispatch(context.Background(), settledItem(), bidsBy("w", "a"), emails)
	require.ErrorIs(t, err, biddingerrors.ErrUserNotFound)
}

func TestDispatch_FailuresAreCounted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mailer := NewMockMailer(ctrl)
	emails := directory(map[string]string{"w": "w@x.com", "a": "a@x.com", "b": "b@x.com"})

	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg Message) error {
		if msg.To == "a@x.com" {
			return errors.New("mailbox unavailable")
		}
		return nil
	}).Times(3)

	result, err := NewDispatcher(mailer, 3, time.Second).Dispatch(context.Background(), settledItem(), bidsBy("w", "a", "b"), emails)
	require.NoError(t, err)
	require.Equal(t, DispatchResult{Attempted: 3, Failed: 1}, result)
}

func TestDispatch_SlowSendTimesOut(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mailer := NewMockMailer(ctrl)
	emails := directory(map[string]string{"w": "w@x.com", "a": "a@x.com"})

	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, msg Message) error {
		if msg.To == "a@x.com" {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}).Times(2)

	start := time.Now()
	result, err := NewDispatcher(mailer, 2, 50*time.Millisecond).Dispatch(context.Background(), settledItem(), bidsBy("w", "a"), emails)
	require.NoError(t, err)
	require.Equal(t, DispatchResult{Attempted: 2, Failed: 1}, result)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestDispatch_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	const workers = 2
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	ctrl := gomock.NewController(t)
	mailer := NewMockMailer(ctrl)
	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, Message) error {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	}).Times(8)

	users := []string{"w", "u1", "u2", "u3", "u4", "u5", "u6", "u7"}
	emails := map[string]string{}
	for _, u := range users {
		emails[u] = u + "@x.com"
	}

	result, err := NewDispatcher(mailer, workers, time.Second).Dispatch(context.Background(), settledItem(), bidsBy(users...), directory(emails))
	require.NoError(t, err)
	require.Equal(t, 8, result.Attempted)
	require.LessOrEqual(t, maxSeen, workers)
}

func TestService_SendResults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	repo.AddUser(model.User{UserID: "w", Username: "winner", Email: "w@x.com", Role: model.RoleUser})
	repo.AddUser(model.User{UserID: "a", Username: "alice", Email: "a@x.com", Role: model.RoleUser})

	item := model.AuctionItem{ItemID: "item1", Name: "Vase", Description: "d", StartingAmount: 1, UserID: "owner"}
	repo.AddItem(item)
	for _, b := range bidsBy("a", "w") {
		require.NoError(t, repo.RecordBidForItem(ctx, b))
	}

	mailer := &recordingMailer{}
	service := NewService(repo, NewDispatcher(mailer, 2, time.Second))

	_, err := service.SendResults(ctx, "item1")
	require.ErrorIs(t, err, biddingerrors.ErrPendingResolution)
	require.Empty(t, mailer.sent)

	item.Winner, item.WinnerBid = "w", "b2"
	require.NoError(t, repo.UpdateItem(ctx, item))

	result, err := service.SendResults(ctx, "item1")
	require.NoError(t, err)
	require.Equal(t, DispatchResult{Attempted: 2}, result)
	require.Len(t, mailer.byRecipient(), 2)

	_, err = service.SendResults(ctx, "missing")
	require.ErrorIs(t, err, biddingerrors.ErrItemNotFound)
}

func TestLogMailer_Send(t *testing.T) {
	t.Parallel()

	require.NoError(t, LogMailer{}.Send(context.Background(), Message{To: "a@x.com", Subject: "s", Body: "b"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, LogMailer{}.Send(ctx, Message{To: "a@x.com"}), context.Canceled)
}
