package item

import (
	"context"
	"errors"
	"strings"

	"github.com/nekogravitycat/item-share-backend/internal/pkg/request"
	"github.com/nekogravitycat/item-share-backend/internal/user"
)

type CreateRequest struct {
	OwnerID     string
	Name        string
	Description string
	Available   bool
	RequestID   *string
}

type UpdateRequest struct {
	Name        *string
	Description *string
	Available   *bool
}

// RequestChecker resolves whether a "wanted item" request exists.
// Implemented by the itemrequest service; declared here to keep the
// dependency pointing one way.
type RequestChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	// Update applies partial changes; only the owner resolves the item at all.
	Update(ctx context.Context, id, ownerID string, req UpdateRequest) (*Item, error)
	ListByOwner(ctx context.Context, ownerID string, page request.PageParams) ([]*Item, error)
	Search(ctx context.Context, text string, page request.PageParams) ([]*Item, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type service struct {
	repo        Repository
	userService user.Service
	reqChecker  RequestChecker
}

func NewService(repo Repository, userService user.Service, reqChecker RequestChecker) Service {
	return &service{
		repo:        repo,
		userService: userService,
		reqChecker:  reqChecker,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Item, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrEmptyDescription
	}

	// Owner must be an existing user.
	if _, err := s.userService.GetByID(ctx, req.OwnerID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	// A linked request must exist if given.
	if req.RequestID != nil {
		ok, err := s.reqChecker.Exists(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotFound
		}
	}

	i := &Item{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		Available:   req.Available,
		RequestID:   req.RequestID,
	}

	if err := s.repo.Create(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id, ownerID string, req UpdateRequest) (*Item, error) {
	// Owner-scoped lookup: a non-owner gets the same "not found" a missing
	// item would produce.
	i, err := s.repo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		i.Name = *req.Name
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, ErrEmptyDescription
		}
		i.Description = *req.Description
	}
	if req.Available != nil {
		i.Available = *req.Available
	}

	if err := s.repo.Update(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID string, page request.PageParams) ([]*Item, error) {
	page.Normalize()
	return s.repo.ListByOwner(ctx, ownerID, page)
}

func (s *service) Search(ctx context.Context, text string, page request.PageParams) ([]*Item, error) {
	// Blank search text is a normal no-match, not an error.
	if strings.TrimSpace(text) == "" {
		return []*Item{}, nil
	}
	page.Normalize()
	return s.repo.Search(ctx, text, page)
}

func (s *service) Delete(ctx context.Context, id, ownerID string) error {
	return s.repo.Delete(ctx, id, ownerID)
}
