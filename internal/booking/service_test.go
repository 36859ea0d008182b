package booking

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/item-share-backend/internal/item"
	"github.com/nekogravitycat/item-share-backend/internal/pkg/clock"
	"github.com/nekogravitycat/item-share-backend/internal/pkg/request"
	"github.com/nekogravitycat/item-share-backend/internal/user"
)

// fakeUserService resolves users from a fixed map. Only GetByID is exercised
// by the booking service.
type fakeUserService struct {
	users map[string]*user.User
}

func (f *fakeUserService) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserService) Register(context.Context, string, string, string) (*user.User, error) {
	panic("not used")
}
func (f *fakeUserService) Login(context.Context, string, string) (*user.User, error) {
	panic("not used")
}
func (f *fakeUserService) Update(context.Context, string, user.UpdateRequest) (*user.User, error) {
	panic("not used")
}
func (f *fakeUserService) Delete(context.Context, string) error { panic("not used") }

type fakeItemService struct {
	items map[string]*item.Item
}

func (f *fakeItemService) GetByID(_ context.Context, id string) (*item.Item, error) {
	i, ok := f.items[id]
	if !ok {
		return nil, item.ErrNotFound
	}
	return i, nil
}

func (f *fakeItemService) Create(context.Context, item.CreateRequest) (*item.Item, error) {
	panic("not used")
}
func (f *fakeItemService) Update(context.Context, string, string, item.UpdateRequest) (*item.Item, error) {
	panic("not used")
}
func (f *fakeItemService) ListByOwner(context.Context, string, request.PageParams) ([]*item.Item, error) {
	panic("not used")
}
func (f *fakeItemService) Search(context.Context, string, request.PageParams) ([]*item.Item, error) {
	panic("not used")
}
func (f *fakeItemService) Delete(context.Context, string, string) error { panic("not used") }

// fakeRepo is an in-memory Repository. beforeApprove runs right before the
// guarded approval write, so tests can slip in a concurrent approval.
type fakeRepo struct {
	bookings      map[string]*Booking
	seq           int
	beforeApprove func(r *fakeRepo)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[string]*Booking)}
}

func (r *fakeRepo) Create(_ context.Context, b *Booking) error {
	r.seq++
	b.ID = fmt.Sprintf("booking-%d", r.seq)
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeRepo) GetByIDForOwner(_ context.Context, bookingID, ownerID string) (*Booking, error) {
	b, ok := r.bookings[bookingID]
	if !ok || b.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepo) GetByIDForParticipant(_ context.Context, bookingID, userID string) (*Booking, error) {
	b, ok := r.bookings[bookingID]
	if !ok || (b.BookerID != userID && b.OwnerID != userID) {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRepo) ListByBooker(_ context.Context, bookerID string, q Query) ([]*Booking, error) {
	return r.list(func(b *Booking) bool { return b.BookerID == bookerID }, q), nil
}

func (r *fakeRepo) ListByOwner(_ context.Context, ownerID string, q Query) ([]*Booking, error) {
	return r.list(func(b *Booking) bool { return b.OwnerID == ownerID }, q), nil
}

func (r *fakeRepo) list(match func(*Booking) bool, q Query) []*Booking {
	var out []*Booking
	for _, b := range r.bookings {
		if match(b) && q.State.Matches(b, q.Now) {
			copied := *b
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })

	offset := int(q.Page.Offset())
	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if limit := int(q.Page.Limit()); len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *fakeRepo) HasOverlap(_ context.Context, itemID string, start, end time.Time, excludeBookingID string) (bool, error) {
	for _, b := range r.bookings {
		if b.ItemID != itemID || b.Status != StatusApproved || b.ID == excludeBookingID {
			continue
		}
		if Overlaps(b.StartTime, b.EndTime, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) UpdateStatusFrom(_ context.Context, bookingID string, from, to Status) (bool, error) {
	b, ok := r.bookings[bookingID]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (r *fakeRepo) ApproveIfFree(ctx context.Context, b *Booking) (bool, error) {
	if r.beforeApprove != nil {
		r.beforeApprove(r)
	}
	conflict, err := r.HasOverlap(ctx, b.ItemID, b.StartTime, b.EndTime, b.ID)
	if err != nil || conflict {
		return false, err
	}
	return r.UpdateStatusFrom(ctx, b.ID, StatusWaiting, StatusApproved)
}

func (r *fakeRepo) LastApprovedBefore(_ context.Context, itemIDs []string, t time.Time) ([]*Booking, error) {
	return r.approvedWhere(itemIDs, func(b *Booking) bool { return b.StartTime.Before(t) }), nil
}

func (r *fakeRepo) NextApprovedAfter(_ context.Context, itemIDs []string, t time.Time) ([]*Booking, error) {
	return r.approvedWhere(itemIDs, func(b *Booking) bool { return b.StartTime.After(t) }), nil
}

func (r *fakeRepo) approvedWhere(itemIDs []string, match func(*Booking) bool) []*Booking {
	ids := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		ids[id] = true
	}

	var out []*Booking
	for _, b := range r.bookings {
		if ids[b.ItemID] && b.Status == StatusApproved && match(b) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out
}

func (r *fakeRepo) CountPastApproved(_ context.Context, itemID, bookerID string, t time.Time) (int64, error) {
	var count int64
	for _, b := range r.bookings {
		if b.ItemID == itemID && b.BookerID == bookerID && b.Status == StatusApproved && b.EndTime.Before(t) {
			count++
		}
	}
	return count, nil
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *fakeRepo
	service Service
}

// newFixture wires a service over fakes with two users: "owner" holding
// "item-1" (available) and "item-2" (unavailable), and "booker".
func newFixture() *fixture {
	ownerName := "Owner"
	bookerName := "Booker"

	users := &fakeUserService{users: map[string]*user.User{
		"owner":  {ID: "owner", Email: "owner@example.com", DisplayName: &ownerName, IsActive: true},
		"booker": {ID: "booker", Email: "booker@example.com", DisplayName: &bookerName, IsActive: true},
	}}
	items := &fakeItemService{items: map[string]*item.Item{
		"item-1": {ID: "item-1", OwnerID: "owner", Name: "Power Drill", Available: true},
		"item-2": {ID: "item-2", OwnerID: "owner", Name: "Broken Ladder", Available: false},
	}}

	repo := newFakeRepo()
	return &fixture{
		repo:    repo,
		service: NewService(repo, users, items, clock.Fixed{T: testNow}),
	}
}

func (f *fixture) createWaiting(t *testing.T, start, end time.Time) *Booking {
	t.Helper()
	b, err := f.service.Create(context.Background(), CreateRequest{
		BookerID:  "booker",
		ItemID:    "item-1",
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	return b
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)
	end := start.Add(48 * time.Hour)

	t.Run("Happy Path", func(t *testing.T) {
		f := newFixture()
		b, err := f.service.Create(ctx, CreateRequest{
			BookerID:  "booker",
			ItemID:    "item-1",
			StartTime: start,
			EndTime:   end,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, StatusWaiting, b.Status)
		assert.Equal(t, "Power Drill", b.ItemName)
		assert.Equal(t, "Booker", b.BookerName)
		assert.Equal(t, "owner", b.OwnerID)
	})

	t.Run("Start Must Precede End", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Create(ctx, CreateRequest{
			BookerID: "booker", ItemID: "item-1", StartTime: end, EndTime: start,
		})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)

		// Zero-length windows are rejected too.
		_, err = f.service.Create(ctx, CreateRequest{
			BookerID: "booker", ItemID: "item-1", StartTime: start, EndTime: start,
		})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("Start In The Past", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Create(ctx, CreateRequest{
			BookerID:  "booker",
			ItemID:    "item-1",
			StartTime: testNow.Add(-time.Hour),
			EndTime:   end,
		})
		assert.ErrorIs(t, err, ErrStartTimePast)
	})

	t.Run("Unknown Booker", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Create(ctx, CreateRequest{
			BookerID: "ghost", ItemID: "item-1", StartTime: start, EndTime: end,
		})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("Unknown Item", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Create(ctx, CreateRequest{
			BookerID: "booker", ItemID: "missing", StartTime: start, EndTime: end,
		})
		assert.ErrorIs(t, err, item.ErrNotFound)
	})

	t.Run("Unavailable Item", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Create(ctx, CreateRequest{
			BookerID: "booker", ItemID: "item-2", StartTime: start, EndTime: end,
		})
		assert.ErrorIs(t, err, ErrItemUnavailable)
	})

	t.Run("Owner Cannot Book Own Item", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Create(ctx, CreateRequest{
			BookerID: "owner", ItemID: "item-1", StartTime: start, EndTime: end,
		})
		assert.ErrorIs(t, err, ErrOwnItem)
	})

	t.Run("Conflicts With Approved Booking", func(t *testing.T) {
		f := newFixture()
		b := f.createWaiting(t, start, end)
		_, err := f.service.Respond(ctx, "owner", b.ID, true)
		require.NoError(t, err)

		_, err = f.service.Create(ctx, CreateRequest{
			BookerID:  "booker",
			ItemID:    "item-1",
			StartTime: start.Add(time.Hour),
			EndTime:   end.Add(time.Hour),
		})
		assert.ErrorIs(t, err, ErrTimeConflict)
	})

	t.Run("Waiting Bookings May Overlap", func(t *testing.T) {
		f := newFixture()
		f.createWaiting(t, start, end)

		// A second candidate for the same window is fine; the owner decides.
		b2, err := f.service.Create(ctx, CreateRequest{
			BookerID: "booker", ItemID: "item-1", StartTime: start, EndTime: end,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusWaiting, b2.Status)
	})

	t.Run("Adjacent Windows Do Not Conflict", func(t *testing.T) {
		f := newFixture()
		b := f.createWaiting(t, start, end)
		_, err := f.service.Respond(ctx, "owner", b.ID, true)
		require.NoError(t, err)

		// New window starts exactly when the approved one ends.
		b2, err := f.service.Create(ctx, CreateRequest{
			BookerID: "booker", ItemID: "item-1", StartTime: end, EndTime: end.Add(24 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, StatusWaiting, b2.Status)
	})
}

func TestRespond(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)
	end := start.Add(48 * time.Hour)

	t.Run("Approve", func(t *testing.T) {
		f := newFixture()
		b := f.createWaiting(t, start, end)

		decided, err := f.service.Respond(ctx, "owner", b.ID, true)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, decided.Status)
		assert.Equal(t, StatusApproved, f.repo.bookings[b.ID].Status)
	})

	t.Run("Reject", func(t *testing.T) {
		f := newFixture()
		b := f.createWaiting(t, start, end)

		decided, err := f.service.Respond(ctx, "owner", b.ID, false)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, decided.Status)
	})

	t.Run("Only The Owner Resolves The Booking", func(t *testing.T) {
		f := newFixture()
		b := f.createWaiting(t, start, end)

		// The booker probing the respond operation gets "not found", not
		// "forbidden".
		_, err := f.service.Respond(ctx, "booker", b.ID, true)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Second Decision Is Locked", func(t *testing.T) {
		f := newFixture()
		b := f.createWaiting(t, start, end)

		_, err := f.service.Respond(ctx, "owner", b.ID, false)
		require.NoError(t, err)

		_, err = f.service.Respond(ctx, "owner", b.ID, true)
		assert.ErrorIs(t, err, ErrStatusLocked)

		// Rejecting twice is locked as well, not idempotent.
		_, err = f.service.Respond(ctx, "owner", b.ID, false)
		assert.ErrorIs(t, err, ErrStatusLocked)
	})

	t.Run("Approval Loses To Existing Approved Overlap", func(t *testing.T) {
		f := newFixture()
		first := f.createWaiting(t, start, end)
		second := f.createWaiting(t, start.Add(time.Hour), end.Add(time.Hour))

		_, err := f.service.Respond(ctx, "owner", first.ID, true)
		require.NoError(t, err)

		_, err = f.service.Respond(ctx, "owner", second.ID, true)
		assert.ErrorIs(t, err, ErrTimeConflict)

		// The losing booking stays WAITING; the owner may still reject it.
		assert.Equal(t, StatusWaiting, f.repo.bookings[second.ID].Status)
	})

	t.Run("Concurrent Approval Caught By Guarded Write", func(t *testing.T) {
		f := newFixture()
		first := f.createWaiting(t, start, end)
		second := f.createWaiting(t, start, end)

		// Approve the rival between the service's pre-check and the guarded
		// write of the first booking.
		f.repo.beforeApprove = func(r *fakeRepo) {
			r.beforeApprove = nil
			r.bookings[second.ID].Status = StatusApproved
		}

		_, err := f.service.Respond(ctx, "owner", first.ID, true)
		assert.ErrorIs(t, err, ErrTimeConflict)
		assert.Equal(t, StatusWaiting, f.repo.bookings[first.ID].Status)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)
	end := start.Add(48 * time.Hour)

	t.Run("Booker Withdraws Waiting Booking", func(t *testing.T) {
		f := newFixture()
		b := f.createWaiting(t, start, end)

		cancelled, err := f.service.Cancel(ctx, "booker", b.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
	})

	t.Run("Owner Cannot Cancel", func(t *testing.T) {
		f := newFixture()
		b := f.createWaiting(t, start, end)

		_, err := f.service.Cancel(ctx, "owner", b.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Decided Booking Cannot Be Cancelled", func(t *testing.T) {
		f := newFixture()
		b := f.createWaiting(t, start, end)
		_, err := f.service.Respond(ctx, "owner", b.ID, true)
		require.NoError(t, err)

		_, err = f.service.Cancel(ctx, "booker", b.ID)
		assert.ErrorIs(t, err, ErrStatusLocked)
	})
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)
	end := start.Add(48 * time.Hour)

	f := newFixture()
	b := f.createWaiting(t, start, end)

	t.Run("Booker And Owner See The Booking", func(t *testing.T) {
		for _, userID := range []string{"booker", "owner"} {
			got, err := f.service.GetByID(ctx, userID, b.ID)
			require.NoError(t, err)
			assert.Equal(t, b.ID, got.ID)
		}
	})

	t.Run("Stranger Gets Not Found", func(t *testing.T) {
		_, err := f.service.GetByID(ctx, "ghost", b.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListViews(t *testing.T) {
	ctx := context.Background()
	page := request.PageParams{}

	seed := func(f *fixture) map[string]*Booking {
		// One booking per temporal bucket plus a rejected one. Past and
		// current windows bypass the service's time validation by seeding the
		// repo directly.
		mk := func(id string, start, end time.Time, status Status) *Booking {
			b := &Booking{
				ID: id, ItemID: "item-1", ItemName: "Power Drill",
				OwnerID: "owner", BookerID: "booker", BookerName: "Booker",
				StartTime: start, EndTime: end, Status: status,
			}
			f.repo.bookings[id] = b
			return b
		}
		return map[string]*Booking{
			"past":     mk("past", testNow.Add(-72*time.Hour), testNow.Add(-48*time.Hour), StatusApproved),
			"current":  mk("current", testNow.Add(-time.Hour), testNow.Add(time.Hour), StatusApproved),
			"future":   mk("future", testNow.Add(24*time.Hour), testNow.Add(48*time.Hour), StatusWaiting),
			"rejected": mk("rejected", testNow.Add(72*time.Hour), testNow.Add(96*time.Hour), StatusRejected),
		}
	}

	t.Run("All Ordered By Start Descending", func(t *testing.T) {
		f := newFixture()
		seed(f)

		got, err := f.service.ListByBooker(ctx, "booker", "", page)
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i := 1; i < len(got); i++ {
			assert.True(t, !got[i-1].StartTime.Before(got[i].StartTime), "start times must descend")
		}
	})

	t.Run("State Filters", func(t *testing.T) {
		f := newFixture()
		seed(f)

		cases := map[string][]string{
			"PAST":     {"past"},
			"CURRENT":  {"current"},
			"FUTURE":   {"future", "rejected"},
			"WAITING":  {"future"},
			"REJECTED": {"rejected"},
		}
		for state, wantIDs := range cases {
			got, err := f.service.ListByOwner(ctx, "owner", state, page)
			require.NoError(t, err, state)

			gotIDs := make([]string, len(got))
			for i, b := range got {
				gotIDs[i] = b.ID
			}
			assert.ElementsMatch(t, wantIDs, gotIDs, state)
		}
	})

	t.Run("Unknown State", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.ListByBooker(ctx, "booker", "SOMETIMES", page)
		assert.ErrorIs(t, err, ErrUnsupportedState)
	})

	t.Run("Unknown Subject", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.ListByBooker(ctx, "ghost", "", page)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("Pagination Snaps To Page Boundaries", func(t *testing.T) {
		f := newFixture()
		for i := 0; i < 5; i++ {
			start := testNow.Add(time.Duration(24*(i+1)) * time.Hour)
			f.createWaiting(t, start, start.Add(time.Hour))
		}

		// from=3, size=2 resolves to the second page (offset 2), not offset 3.
		got, err := f.service.ListByBooker(ctx, "booker", "", request.PageParams{From: 3, Size: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)

		all, err := f.service.ListByBooker(ctx, "booker", "", request.PageParams{Size: 10})
		require.NoError(t, err)
		assert.Equal(t, all[2].ID, got[0].ID)
		assert.Equal(t, all[3].ID, got[1].ID)
	})
}

func TestSummaryForItems(t *testing.T) {
	ctx := context.Background()

	t.Run("Picks Closest On Both Sides", func(t *testing.T) {
		f := newFixture()
		mk := func(id string, start time.Time) {
			f.repo.bookings[id] = &Booking{
				ID: id, ItemID: "item-1", OwnerID: "owner", BookerID: "booker",
				StartTime: start, EndTime: start.Add(time.Hour), Status: StatusApproved,
			}
		}
		mk("old", testNow.Add(-96*time.Hour))
		mk("recent", testNow.Add(-24*time.Hour))
		mk("soon", testNow.Add(24*time.Hour))
		mk("far", testNow.Add(96*time.Hour))

		summaries, err := f.service.SummaryForItems(ctx, []string{"item-1"})
		require.NoError(t, err)

		s := summaries["item-1"]
		require.NotNil(t, s.Last)
		require.NotNil(t, s.Next)
		assert.Equal(t, "recent", s.Last.ID)
		assert.Equal(t, "soon", s.Next.ID)
	})

	t.Run("No Approved Bookings", func(t *testing.T) {
		f := newFixture()
		f.createWaiting(t, testNow.Add(24*time.Hour), testNow.Add(48*time.Hour))

		summaries, err := f.service.SummaryForItems(ctx, []string{"item-1"})
		require.NoError(t, err)

		s := summaries["item-1"]
		assert.Nil(t, s.Last)
		assert.Nil(t, s.Next)
	})

	t.Run("Empty Input", func(t *testing.T) {
		f := newFixture()
		summaries, err := f.service.SummaryForItems(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})
}

func TestHasCompletedBooking(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.repo.bookings["done"] = &Booking{
		ID: "done", ItemID: "item-1", OwnerID: "owner", BookerID: "booker",
		StartTime: testNow.Add(-72 * time.Hour),
		EndTime:   testNow.Add(-48 * time.Hour),
		Status:    StatusApproved,
	}
	f.repo.bookings["ongoing"] = &Booking{
		ID: "ongoing", ItemID: "item-2", OwnerID: "owner", BookerID: "booker",
		StartTime: testNow.Add(-time.Hour),
		EndTime:   testNow.Add(time.Hour),
		Status:    StatusApproved,
	}

	ok, err := f.service.HasCompletedBooking(ctx, "item-1", "booker")
	require.NoError(t, err)
	assert.True(t, ok)

	// An ongoing rental does not count as completed.
	ok, err = f.service.HasCompletedBooking(ctx, "item-2", "booker")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.service.HasCompletedBooking(ctx, "item-1", "owner")
	require.NoError(t, err)
	assert.False(t, ok)
}
