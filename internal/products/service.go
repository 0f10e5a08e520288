package products

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/mercato-app/mercato/internal/cache"
	"github.com/mercato-app/mercato/internal/platform/httpx"
	"github.com/mercato-app/mercato/internal/shared"
)

// Collection is the cache collection name for product listings.
const Collection = "products"

// ListResult pairs rows with their pagination metadata.
type ListResult struct {
	Rows []Product       `json:"rows"`
	Meta shared.PageMeta `json:"metadata"`
}

// Service wraps product listing business rules.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

// Add creates a listing in Pending status, owned by userID.
func (s *Service) Add(ctx context.Context, userID int64, req AddProductRequest) (Product, error) {
	product, err := s.repo.Create(ctx, Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Quantity:    req.Quantity,
		Status:      StatusPending,
		UserID:      userID,
	})
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return product, nil
}

// Get fetches a single product. When userID is non-nil the lookup is scoped
// to that owner, so other users' listings read as not found.
func (s *Service) Get(ctx context.Context, id int64, userID *int64) (*Product, error) {
	product, err := s.repo.Get(ctx, id, userID)
	if errors.Is(err, httpx.ErrNotFound) {
		return nil, httpx.Fail(httpx.ErrNotFound, "Product not found")
	}
	return product, err
}

// List returns a cached page of products matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) (ListResult, error) {
	signature := listSignature(filters)
	var result ListResult
	err := s.cache.FetchPage(ctx, Collection, signature, &result, func(ctx context.Context) (any, bool, error) {
		rows, total, err := s.repo.List(ctx, filters)
		if err != nil {
			return nil, false, err
		}
		value := ListResult{Rows: rows, Meta: shared.NewPageMeta(filters.Page, filters.Limit, total)}
		return value, len(rows) > 0, nil
	})
	return result, err
}

// Update applies a partial update to a listing owned by userID.
func (s *Service) Update(ctx context.Context, id, userID int64, req UpdateProductRequest) (*Product, error) {
	product, err := s.repo.Get(ctx, id, &userID)
	if errors.Is(err, httpx.ErrNotFound) {
		return nil, httpx.Fail(httpx.ErrNotFound, "Product not found")
	}
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if err := s.repo.Update(ctx, id, *product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product, nil
}

// ChangeStatus approves or suspends a listing. Moderation is not owner
// scoped.
func (s *Service) ChangeStatus(ctx context.Context, id int64, status Status) error {
	err := s.repo.UpdateStatus(ctx, id, status)
	if errors.Is(err, httpx.ErrNotFound) {
		return httpx.Fail(httpx.ErrNotFound, "Product not found")
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes a listing. When userID is non-nil only the owner's listing
// is deleted.
func (s *Service) Delete(ctx context.Context, id int64, userID *int64) error {
	err := s.repo.Delete(ctx, id, userID)
	if errors.Is(err, httpx.ErrNotFound) {
		return httpx.Fail(httpx.ErrNotFound, "Product not found")
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, Collection); err != nil && s.logger != nil {
		s.logger.Warn("invalidate cache", slog.String("collection", Collection), slog.Any("error", err))
	}
}

func listSignature(filters ListFilters) string {
	user := ""
	if filters.UserID != nil {
		user = strconv.FormatInt(*filters.UserID, 10)
	}
	minPrice, maxPrice := "", ""
	if filters.MinPrice != nil {
		minPrice = strconv.FormatFloat(*filters.MinPrice, 'f', -1, 64)
	}
	if filters.MaxPrice != nil {
		maxPrice = strconv.FormatFloat(*filters.MaxPrice, 'f', -1, 64)
	}
	return cache.Signature(
		"user="+user,
		"search="+filters.SearchTerm,
		"status="+filters.Status,
		"min="+minPrice,
		"max="+maxPrice,
		"page="+strconv.Itoa(filters.Page),
		"limit="+strconv.Itoa(filters.Limit),
	)
}
