package itemrequest

import (
	"context"
	"errors"
	"strings"

	"github.com/nekogravitycat/item-share-backend/internal/item"
	"github.com/nekogravitycat/item-share-backend/internal/pkg/request"
	"github.com/nekogravitycat/item-share-backend/internal/user"
)

// WithItems pairs a request with the items listed in answer to it.
type WithItems struct {
	Request *ItemRequest
	Items   []*item.Item
}

type Service interface {
	Create(ctx context.Context, requesterID, description string) (*ItemRequest, error)
	GetByID(ctx context.Context, userID, id string) (*WithItems, error)
	ListOwn(ctx context.Context, requesterID string) ([]*WithItems, error)
	ListOthers(ctx context.Context, userID string, page request.PageParams) ([]*WithItems, error)

	// Exists satisfies item.RequestChecker for validating item→request links.
	Exists(ctx context.Context, id string) (bool, error)
}

type service struct {
	repo        Repository
	userService user.Service
	itemRepo    item.Repository
}

func NewService(repo Repository, userService user.Service, itemRepo item.Repository) Service {
	return &service{
		repo:        repo,
		userService: userService,
		itemRepo:    itemRepo,
	}
}

func (s *service) Create(ctx context.Context, requesterID, description string) (*ItemRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}
	if err := s.checkUser(ctx, requesterID); err != nil {
		return nil, err
	}

	req := &ItemRequest{
		RequesterID: requesterID,
		Description: description,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) GetByID(ctx context.Context, userID, id string) (*WithItems, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	withItems, err := s.attachItems(ctx, []*ItemRequest{req})
	if err != nil {
		return nil, err
	}
	return withItems[0], nil
}

func (s *service) ListOwn(ctx context.Context, requesterID string) ([]*WithItems, error) {
	if err := s.checkUser(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.repo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *service) ListOthers(ctx context.Context, userID string, page request.PageParams) ([]*WithItems, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	page.Normalize()
	requests, err := s.repo.ListOthers(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *service) checkUser(ctx context.Context, id string) error {
	if _, err := s.userService.GetByID(ctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// attachItems loads the answering items for a batch of requests with a
// single query.
func (s *service) attachItems(ctx context.Context, requests []*ItemRequest) ([]*WithItems, error) {
	ids := make([]string, len(requests))
	for i, req := range requests {
		ids[i] = req.ID
	}

	items, err := s.itemRepo.ListByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]*item.Item, len(requests))
	for _, it := range items {
		if it.RequestID == nil {
			continue
		}
		grouped[*it.RequestID] = append(grouped[*it.RequestID], it)
	}

	result := make([]*WithItems, len(requests))
	for i, req := range requests {
		result[i] = &WithItems{Request: req, Items: grouped[req.ID]}
	}
	return result, nil
}
