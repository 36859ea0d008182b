package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/item-share-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "booking not found")
	ErrUserNotFound = apperror.New(http.StatusNotFound, "booking user not found")
	// ErrOwnItem is deliberately a 404: an owner probing their own item for
	// booking gets the same answer as for a missing item.
	ErrOwnItem          = apperror.New(http.StatusNotFound, "owner cannot book their own item")
	ErrItemUnavailable  = apperror.New(http.StatusBadRequest, "item is not available for booking")
	ErrTimeConflict     = apperror.New(http.StatusConflict, "item is already booked for this time window")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrStartTimePast    = apperror.New(http.StatusBadRequest, "cannot create booking in the past")
	ErrStatusLocked     = apperror.New(http.StatusBadRequest, "booking status has already been decided")
	ErrUnsupportedState = apperror.New(http.StatusBadRequest, "unknown booking state filter")
)

// Booking is a request by a booker to borrow an item for [StartTime, EndTime).
// ItemName, OwnerID and BookerName are join projections; the booking row
// itself only stores the item and booker references.
type Booking struct {
	ID         string
	ItemID     string
	ItemName   string
	OwnerID    string
	BookerID   string
	BookerName string
	StartTime  time.Time
	EndTime    time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Overlaps reports whether the half-open windows [aStart, aEnd) and
// [bStart, bEnd) intersect. A window ending exactly when another starts does
// not overlap it.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Summary is the last/next approved booking projection shown on an owner's
// item views. Either side may be nil when no such booking exists.
type Summary struct {
	Last *Booking
	Next *Booking
}
