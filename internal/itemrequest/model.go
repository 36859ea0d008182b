package itemrequest

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/item-share-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "item request not found")
	ErrUserNotFound     = apperror.New(http.StatusNotFound, "user not found")
	ErrEmptyDescription = apperror.New(http.StatusBadRequest, "description cannot be empty")
)

// ItemRequest is a "wanted item" post: a user describes something they would
// like to borrow, and owners may list items answering it.
type ItemRequest struct {
	ID          string
	RequesterID string
	Description string
	CreatedAt   time.Time
}
