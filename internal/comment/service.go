package comment

import (
	"context"
	"errors"
	"strings"

	"github.com/nekogravitycat/item-share-backend/internal/booking"
	"github.com/nekogravitycat/item-share-backend/internal/item"
	"github.com/nekogravitycat/item-share-backend/internal/user"
)

type Service interface {
	// Create posts a comment on an item. The author must have an APPROVED
	// booking of the item that already ended.
	Create(ctx context.Context, itemID, authorID, text string) (*Comment, error)
	ListByItem(ctx context.Context, itemID string) ([]*Comment, error)
	ListByItems(ctx context.Context, itemIDs []string) (map[string][]*Comment, error)
}

type service struct {
	repo           Repository
	userService    user.Service
	itemService    item.Service
	bookingService booking.Service
}

func NewService(repo Repository, userService user.Service, itemService item.Service, bookingService booking.Service) Service {
	return &service{
		repo:           repo,
		userService:    userService,
		itemService:    itemService,
		bookingService: bookingService,
	}
}

func (s *service) Create(ctx context.Context, itemID, authorID, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	author, err := s.userService.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	if _, err := s.itemService.GetByID(ctx, itemID); err != nil {
		return nil, err
	}

	eligible, err := s.bookingService.HasCompletedBooking(ctx, itemID, authorID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrNotBooked
	}

	c := &Comment{
		ItemID:     itemID,
		AuthorID:   author.ID,
		AuthorName: authorDisplayName(author),
		Text:       text,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) ListByItem(ctx context.Context, itemID string) ([]*Comment, error) {
	return s.repo.ListByItem(ctx, itemID)
}

func (s *service) ListByItems(ctx context.Context, itemIDs []string) (map[string][]*Comment, error) {
	return s.repo.ListByItems(ctx, itemIDs)
}

func authorDisplayName(u *user.User) string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Email
}
