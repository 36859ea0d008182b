package booking

import (
	"context"
	"errors"
	"time"

	"github.com/nekogravitycat/item-share-backend/internal/item"
	"github.com/nekogravitycat/item-share-backend/internal/pkg/clock"
	"github.com/nekogravitycat/item-share-backend/internal/pkg/request"
	"github.com/nekogravitycat/item-share-backend/internal/user"
)

type CreateRequest struct {
	BookerID  string
	ItemID    string
	StartTime time.Time
	EndTime   time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Respond(ctx context.Context, ownerID, bookingID string, approved bool) (*Booking, error)
	GetByID(ctx context.Context, userID, bookingID string) (*Booking, error)
	Cancel(ctx context.Context, bookerID, bookingID string) (*Booking, error)
	ListByBooker(ctx context.Context, bookerID, state string, page request.PageParams) ([]*Booking, error)
	ListByOwner(ctx context.Context, ownerID, state string, page request.PageParams) ([]*Booking, error)

	// SummaryForItems derives the last/next approved booking per item
	// relative to now. Absent bookings are a normal outcome.
	SummaryForItems(ctx context.Context, itemIDs []string) (map[string]Summary, error)

	// HasCompletedBooking reports whether the booker has an approved booking
	// of the item that already ended. Gates post-rental comments.
	HasCompletedBooking(ctx context.Context, itemID, bookerID string) (bool, error)
}

type service struct {
	repo        Repository
	userService user.Service
	itemService item.Service
	clock       clock.Clock
}

func NewService(repo Repository, userService user.Service, itemService item.Service, clk clock.Clock) Service {
	return &service{
		repo:        repo,
		userService: userService,
		itemService: itemService,
		clock:       clk,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	now := s.clock.Now()

	// 1. Validate the time window
	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrInvalidTimeRange
	}
	if req.StartTime.Before(now) {
		return nil, ErrStartTimePast
	}

	// 2. Resolve booker and item
	booker, err := s.userService.GetByID(ctx, req.BookerID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	it, err := s.itemService.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !it.Available {
		return nil, ErrItemUnavailable
	}
	if it.OwnerID == req.BookerID {
		return nil, ErrOwnItem
	}

	// 3. Reject only when an APPROVED booking occupies the window. WAITING
	// bookings may overlap freely: several prospective borrowers can compete
	// for the same dates and the owner picks one at approval time.
	conflict, err := s.repo.HasOverlap(ctx, req.ItemID, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrTimeConflict
	}

	// 4. Persist in WAITING
	b := &Booking{
		ItemID:     it.ID,
		ItemName:   it.Name,
		OwnerID:    it.OwnerID,
		BookerID:   booker.ID,
		BookerName: displayName(booker),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     StatusWaiting,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *service) Respond(ctx context.Context, ownerID, bookingID string, approved bool) (*Booking, error) {
	// Owner-scoped lookup: a booking on someone else's item resolves to
	// "not found" rather than "forbidden".
	b, err := s.repo.GetByIDForOwner(ctx, bookingID, ownerID)
	if err != nil {
		return nil, err
	}

	next, err := Transition(b.Status, approved)
	if err != nil {
		return nil, err
	}

	if next == StatusApproved {
		// Same conflict check as at creation, excluding the booking under
		// decision so it never conflicts with itself.
		conflict, err := s.repo.HasOverlap(ctx, b.ItemID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrTimeConflict
		}

		ok, err := s.repo.ApproveIfFree(ctx, b)
		if err != nil {
			return nil, err
		}
		if !ok {
			// A concurrent approval slipped in between the check and the
			// guarded write.
			return nil, ErrTimeConflict
		}
	} else {
		// Rejection frees the slot; no availability recheck needed.
		ok, err := s.repo.UpdateStatusFrom(ctx, b.ID, StatusWaiting, next)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrStatusLocked
		}
	}

	b.Status = next
	return b, nil
}

func (s *service) GetByID(ctx context.Context, userID, bookingID string) (*Booking, error) {
	return s.repo.GetByIDForParticipant(ctx, bookingID, userID)
}

func (s *service) Cancel(ctx context.Context, bookerID, bookingID string) (*Booking, error) {
	b, err := s.repo.GetByIDForParticipant(ctx, bookingID, bookerID)
	if err != nil {
		return nil, err
	}
	// Only the booker may withdraw; the owner looking at the same booking
	// gets "not found" for a cancel attempt.
	if b.BookerID != bookerID {
		return nil, ErrNotFound
	}
	if b.Status != StatusWaiting {
		return nil, ErrStatusLocked
	}

	ok, err := s.repo.UpdateStatusFrom(ctx, b.ID, StatusWaiting, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStatusLocked
	}

	b.Status = StatusCancelled
	return b, nil
}

func (s *service) ListByBooker(ctx context.Context, bookerID, state string, page request.PageParams) ([]*Booking, error) {
	q, err := s.buildQuery(ctx, bookerID, state, page)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByBooker(ctx, bookerID, q)
}

func (s *service) ListByOwner(ctx context.Context, ownerID, state string, page request.PageParams) ([]*Booking, error) {
	q, err := s.buildQuery(ctx, ownerID, state, page)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, ownerID, q)
}

func (s *service) buildQuery(ctx context.Context, subjectID, state string, page request.PageParams) (Query, error) {
	st, err := ParseState(state)
	if err != nil {
		return Query{}, err
	}

	if _, err := s.userService.GetByID(ctx, subjectID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Query{}, ErrUserNotFound
		}
		return Query{}, err
	}

	page.Normalize()
	return Query{State: st, Now: s.clock.Now(), Page: page}, nil
}

func (s *service) SummaryForItems(ctx context.Context, itemIDs []string) (map[string]Summary, error) {
	summaries := make(map[string]Summary, len(itemIDs))
	if len(itemIDs) == 0 {
		return summaries, nil
	}

	now := s.clock.Now()

	// One grouped query per direction, then reduce each item's group in
	// memory, instead of two queries per item.
	lastCandidates, err := s.repo.LastApprovedBefore(ctx, itemIDs, now)
	if err != nil {
		return nil, err
	}
	nextCandidates, err := s.repo.NextApprovedAfter(ctx, itemIDs, now)
	if err != nil {
		return nil, err
	}

	for _, b := range lastCandidates {
		cur := summaries[b.ItemID]
		if cur.Last == nil || b.StartTime.After(cur.Last.StartTime) {
			cur.Last = b
		}
		summaries[b.ItemID] = cur
	}
	for _, b := range nextCandidates {
		cur := summaries[b.ItemID]
		if cur.Next == nil || b.StartTime.Before(cur.Next.StartTime) {
			cur.Next = b
		}
		summaries[b.ItemID] = cur
	}

	return summaries, nil
}

func (s *service) HasCompletedBooking(ctx context.Context, itemID, bookerID string) (bool, error) {
	count, err := s.repo.CountPastApproved(ctx, itemID, bookerID, s.clock.Now())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func displayName(u *user.User) string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Email
}
