package booking

// Status is the lifecycle state of a booking. A booking is created WAITING
// and decided exactly once by the item's owner; CANCELLED is reachable only
// through the booker withdrawing a still-waiting booking.
type Status string

const (
	StatusWaiting   Status = "WAITING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// Transition returns the status an owner response moves a booking to.
// Only WAITING bookings can be decided; responding to an already-decided
// booking fails with ErrStatusLocked.
func Transition(current Status, approved bool) (Status, error) {
	if current != StatusWaiting {
		return current, ErrStatusLocked
	}
	if approved {
		return StatusApproved, nil
	}
	return StatusRejected, nil
}
