package photo

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/item-share-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "photo not found")
	ErrNotAnImage   = apperror.New(http.StatusBadRequest, "uploaded file is not an image")
	ErrNoThumbnail  = apperror.New(http.StatusNotFound, "thumbnail not available for this photo")
	ErrItemNotOwned = apperror.New(http.StatusNotFound, "item not found for this owner")
)

// Photo is an image attached to an item listing.
type Photo struct {
	ID            string
	ItemID        string
	UploaderID    string
	Filename      string
	StoragePath   string  // internal, never serialized
	ThumbnailPath *string // internal, never serialized
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// URL returns the public download path for a photo.
func URL(id string) string {
	return "/v1/photos/" + id
}

// ThumbnailURL returns the public download path for a photo's thumbnail.
func ThumbnailURL(id string) string {
	return "/v1/photos/" + id + "/thumbnail"
}
