package booking

import (
	"strings"
	"time"
)

// State is a filter view over a subject's bookings. PAST, CURRENT and FUTURE
// classify against "now"; WAITING and REJECTED filter by stored status.
type State string

const (
	StateAll      State = "ALL"
	StatePast     State = "PAST"
	StateCurrent  State = "CURRENT"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// ParseState parses a state query token. An empty token defaults to ALL;
// anything unrecognized fails with ErrUnsupportedState.
func ParseState(s string) (State, error) {
	if s == "" {
		return StateAll, nil
	}
	switch State(strings.ToUpper(s)) {
	case StateAll:
		return StateAll, nil
	case StatePast:
		return StatePast, nil
	case StateCurrent:
		return StateCurrent, nil
	case StateFuture:
		return StateFuture, nil
	case StateWaiting:
		return StateWaiting, nil
	case StateRejected:
		return StateRejected, nil
	}
	return "", ErrUnsupportedState
}

// Matches reports whether a booking falls into the view at the given instant.
// PAST is end < now, FUTURE is start > now and CURRENT is everything between,
// endpoints included, so the three partition any set of bookings.
func (s State) Matches(b *Booking, now time.Time) bool {
	switch s {
	case StateAll:
		return true
	case StatePast:
		return b.EndTime.Before(now)
	case StateCurrent:
		return !b.StartTime.After(now) && !b.EndTime.Before(now)
	case StateFuture:
		return b.StartTime.After(now)
	case StateWaiting:
		return b.Status == StatusWaiting
	case StateRejected:
		return b.Status == StatusRejected
	}
	return false
}
