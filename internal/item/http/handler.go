package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/item-share-backend/internal/auth"
	"github.com/nekogravitycat/item-share-backend/internal/booking"
	"github.com/nekogravitycat/item-share-backend/internal/comment"
	"github.com/nekogravitycat/item-share-backend/internal/item"
	"github.com/nekogravitycat/item-share-backend/internal/photo"
	"github.com/nekogravitycat/item-share-backend/internal/pkg/request"
	"github.com/nekogravitycat/item-share-backend/internal/pkg/response"
)

type Handler struct {
	itemService    item.Service
	bookingService booking.Service
	commentService comment.Service
	photoService   photo.Service
}

func NewHandler(itemService item.Service, bookingService booking.Service, commentService comment.Service, photoService photo.Service) *Handler {
	return &Handler{
		itemService:    itemService,
		bookingService: bookingService,
		commentService: commentService,
		photoService:   photoService,
	}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	i, err := h.itemService.Create(c.Request.Context(), item.CreateRequest{
		OwnerID:     auth.GetUserID(c),
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewItemResponse(i))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	i, err := h.itemService.Update(c.Request.Context(), uri.ID, auth.GetUserID(c), item.UpdateRequest{
		Name:        body.Name,
		Description: body.Description,
		Available:   body.Available,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewItemResponse(i))
}

// Get serves the item detail view. The last/next booking summaries are
// included only when the requester owns the item.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()

	i, err := h.itemService.GetByID(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	detail := ItemDetailResponse{ItemResponse: NewItemResponse(i)}

	comments, err := h.commentService.ListByItem(ctx, i.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	detail.Comments = newCommentResponses(comments)

	photos, err := h.photoService.ListByItem(ctx, i.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	detail.Photos = newPhotoResponses(photos)

	if i.OwnerID == auth.GetUserID(c) {
		summaries, err := h.bookingService.SummaryForItems(ctx, []string{i.ID})
		if err != nil {
			response.Error(c, err)
			return
		}
		s := summaries[i.ID]
		detail.LastBooking = newBookingTag(s.Last)
		detail.NextBooking = newBookingTag(s.Next)
	}

	c.JSON(http.StatusOK, detail)
}

// ListOwn serves the authenticated owner's items with booking summaries and
// comments attached in bulk.
func (h *Handler) ListOwn(c *gin.Context) {
	var page request.PageParams
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	page.Normalize()

	ctx := c.Request.Context()
	ownerID := auth.GetUserID(c)

	items, err := h.itemService.ListByOwner(ctx, ownerID, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	summaries, err := h.bookingService.SummaryForItems(ctx, ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	commentsByItem, err := h.commentService.ListByItems(ctx, ids)
	if err != nil {
		response.Error(c, err)
		return
	}

	details := make([]ItemDetailResponse, len(items))
	for i, it := range items {
		s := summaries[it.ID]
		details[i] = ItemDetailResponse{
			ItemResponse: NewItemResponse(it),
			LastBooking:  newBookingTag(s.Last),
			NextBooking:  newBookingTag(s.Next),
			Comments:     newCommentResponses(commentsByItem[it.ID]),
			Photos:       []PhotoResponse{},
		}
	}

	c.JSON(http.StatusOK, response.NewPageResponse(details, page.From, page.Size))
}

// Search serves the public text search over available items.
func (h *Handler) Search(c *gin.Context) {
	var q SearchItemsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	q.Normalize()

	items, err := h.itemService.Search(c.Request.Context(), q.Text, q.PageParams)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = NewItemResponse(it)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(out, q.From, q.Size))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateComment posts a comment on an item after a completed rental.
func (h *Handler) CreateComment(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body CreateCommentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	cm, err := h.commentService.Create(c.Request.Context(), uri.ID, auth.GetUserID(c), body.Text)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, CommentResponse{
		ID:         cm.ID,
		AuthorName: cm.AuthorName,
		Text:       cm.Text,
		CreatedAt:  cm.CreatedAt,
	})
}
