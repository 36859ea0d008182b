package http

import (
	"time"

	itemHttp "github.com/nekogravitycat/item-share-backend/internal/item/http"
	"github.com/nekogravitycat/item-share-backend/internal/itemrequest"
)

type CreateItemRequestRequest struct {
	Description string `json:"description" binding:"required"`
}

type ItemRequestResponse struct {
	ID          string                  `json:"id"`
	RequesterID string                  `json:"requester_id"`
	Description string                  `json:"description"`
	CreatedAt   time.Time               `json:"created_at"`
	Items       []itemHttp.ItemResponse `json:"items"`
}

func NewItemRequestResponse(w *itemrequest.WithItems) ItemRequestResponse {
	items := make([]itemHttp.ItemResponse, len(w.Items))
	for i, it := range w.Items {
		items[i] = itemHttp.NewItemResponse(it)
	}
	return ItemRequestResponse{
		ID:          w.Request.ID,
		RequesterID: w.Request.RequesterID,
		Description: w.Request.Description,
		CreatedAt:   w.Request.CreatedAt,
		Items:       items,
	}
}
