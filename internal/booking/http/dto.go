package http

import (
	"time"

	"github.com/nekogravitycat/item-share-backend/internal/booking"
	itemHttp "github.com/nekogravitycat/item-share-backend/internal/item/http"
	"github.com/nekogravitycat/item-share-backend/internal/pkg/request"
	userHttp "github.com/nekogravitycat/item-share-backend/internal/user/http"
)

type CreateBookingRequest struct {
	ItemID    string    `json:"item_id" binding:"required,uuid"`
	StartTime time.Time `json:"start_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   time.Time `json:"end_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// RespondQuery carries the owner's decision. A pointer keeps
// "approved=false" distinguishable from a missing parameter.
type RespondQuery struct {
	Approved *bool `form:"approved" binding:"required"`
}

// ListBookingsRequest defines query parameters for the filtered views.
type ListBookingsRequest struct {
	request.PageParams
	State string `form:"state"`
}

type BookingResponse struct {
	ID        string              `json:"id"`
	Item      itemHttp.ItemTag    `json:"item"`
	Booker    userHttp.UserTag    `json:"booker"`
	StartTime time.Time           `json:"start_time"`
	EndTime   time.Time           `json:"end_time"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		Item:      itemHttp.ItemTag{ID: b.ItemID, Name: b.ItemName},
		Booker:    userHttp.UserTag{ID: b.BookerID, Name: b.BookerName},
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
