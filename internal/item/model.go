package item

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/item-share-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "item not found")
	ErrOwnerNotFound = apperror.New(http.StatusNotFound, "owner user not found")
	// ErrNotFoundForOwner covers both a missing item and an item belonging to
	// someone else; non-owners cannot tell the two apart.
	ErrNotFoundForOwner = apperror.New(http.StatusNotFound, "item not found for this owner")
	ErrEmptyName        = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrEmptyDescription = apperror.New(http.StatusBadRequest, "description cannot be empty")
)

// Item is a thing a user has listed for others to borrow.
type Item struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Available   bool
	// RequestID links the item to the "wanted item" request it answers, if any.
	RequestID *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
