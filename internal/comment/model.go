package comment

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/item-share-backend/internal/pkg/apperror"
)

var (
	// ErrNotBooked gates comments: only borrowers who completed a rental may
	// leave one.
	ErrNotBooked      = apperror.New(http.StatusBadRequest, "only users who completed a booking of this item may comment")
	ErrEmptyText      = apperror.New(http.StatusBadRequest, "comment text cannot be empty")
	ErrAuthorNotFound = apperror.New(http.StatusNotFound, "comment author not found")
)

// Comment is feedback a borrower leaves on an item after a completed booking.
type Comment struct {
	ID         string
	ItemID     string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}
