package products_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercato-app/mercato/internal/cache"
	"github.com/mercato-app/mercato/internal/platform/httpx"
	"github.com/mercato-app/mercato/internal/products"
	"github.com/mercato-app/mercato/internal/shared"
	_ "github.com/mercato-app/mercato/testing"
)

type stubRepo struct {
	rows      map[int64]*products.Product
	nextID    int64
	listCalls int
}

func newStubRepo() *stubRepo {
	return &stubRepo{rows: map[int64]*products.Product{}, nextID: 1}
}

func (s *stubRepo) add(p products.Product) *products.Product {
	p.ID = s.nextID
	s.nextID++
	stored := p
	s.rows[p.ID] = &stored
	return &stored
}

func (s *stubRepo) matches(p *products.Product, f products.ListFilters) bool {
	if f.UserID != nil && p.UserID != *f.UserID {
		return false
	}
	if f.Status != "" && string(p.Status) != f.Status {
		return false
	}
	if f.MinPrice != nil && f.MaxPrice != nil {
		if p.Price < *f.MinPrice || p.Price > *f.MaxPrice {
			return false
		}
	}
	return true
}

func (s *stubRepo) List(ctx context.Context, f products.ListFilters) ([]products.Product, int, error) {
	s.listCalls++
	var all []products.Product
	for _, p := range s.rows {
		if s.matches(p, f) {
			all = append(all, *p)
		}
	}
	total := len(all)
	start := f.Offset()
	if start > len(all) {
		return nil, total, nil
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64, userID *int64) (*products.Product, error) {
	p, ok := s.rows[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	if userID != nil && p.UserID != *userID {
		return nil, httpx.ErrNotFound
	}
	return p, nil
}

func (s *stubRepo) Create(ctx context.Context, p products.Product) (products.Product, error) {
	return *s.add(p), nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, p products.Product) error {
	stored, ok := s.rows[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.ID = id
	p.UserID = stored.UserID
	*stored = p
	return nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id int64, status products.Status) error {
	p, ok := s.rows[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.Status = status
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64, userID *int64) error {
	p, ok := s.rows[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if userID != nil && p.UserID != *userID {
		return httpx.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func newService(t *testing.T, repo products.Repository) *products.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return products.NewService(repo, cache.New(client, time.Minute, nil), nil)
}

func TestAddCreatesPendingListing(t *testing.T) {
	repo := newStubRepo()
	svc := newService(t, repo)

	created, err := svc.Add(context.Background(), 7, products.AddProductRequest{
		Name:        "Electric Motor",
		Price:       10000000,
		Description: "White",
		Quantity:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, products.StatusPending, created.Status)
	assert.Equal(t, int64(7), created.UserID)
	assert.NotZero(t, created.ID)
}

func TestGetScopedToOwner(t *testing.T) {
	repo := newStubRepo()
	stored := repo.add(products.Product{Name: "Bike", UserID: 1, Status: products.StatusApproved})
	svc := newService(t, repo)
	ctx := context.Background()

	owner := int64(1)
	got, err := svc.Get(ctx, stored.ID, &owner)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)

	other := int64(2)
	_, err = svc.Get(ctx, stored.ID, &other)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	assert.Equal(t, "Product not found", httpx.UserMessage(err))

	// Moderation reads without an owner scope.
	_, err = svc.Get(ctx, stored.ID, nil)
	require.NoError(t, err)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	repo := newStubRepo()
	stored := repo.add(products.Product{Name: "Bike", Price: 100, Description: "Red", Quantity: 1, UserID: 1})
	svc := newService(t, repo)

	newPrice := 250.0
	updated, err := svc.Update(context.Background(), stored.ID, 1, products.UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 250.0, updated.Price)
	assert.Equal(t, "Bike", updated.Name, "unset fields keep their values")

	_, err = svc.Update(context.Background(), stored.ID, 2, products.UpdateProductRequest{Price: &newPrice})
	require.ErrorIs(t, err, httpx.ErrNotFound, "non-owners cannot update")
}

func TestDeleteScopedToOwner(t *testing.T) {
	repo := newStubRepo()
	stored := repo.add(products.Product{Name: "Bike", UserID: 1})
	svc := newService(t, repo)
	ctx := context.Background()

	other := int64(2)
	require.ErrorIs(t, svc.Delete(ctx, stored.ID, &other), httpx.ErrNotFound)

	owner := int64(1)
	require.NoError(t, svc.Delete(ctx, stored.ID, &owner))
}

func TestListCachesPerFilterSignature(t *testing.T) {
	repo := newStubRepo()
	repo.add(products.Product{Name: "Bike", Price: 100, UserID: 1, Status: products.StatusApproved})
	repo.add(products.Product{Name: "Car", Price: 900, UserID: 2, Status: products.StatusApproved})
	svc := newService(t, repo)
	ctx := context.Background()

	approved := products.ListFilters{PageRequest: shared.PageRequest{
		Page: 1, Limit: 20, Status: string(products.StatusApproved),
	}}
	first, err := svc.List(ctx, approved)
	require.NoError(t, err)
	assert.Len(t, first.Rows, 2)

	_, err = svc.List(ctx, approved)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "identical filters must hit the cache")

	// A different owner scope is a different entry.
	owner := int64(1)
	scoped := approved
	scoped.UserID = &owner
	result, err := svc.List(ctx, scoped)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
	assert.Equal(t, 2, repo.listCalls)

	// So is a different price range.
	minPrice, maxPrice := 500.0, 1000.0
	priced := approved
	priced.MinPrice = &minPrice
	priced.MaxPrice = &maxPrice
	result, err = svc.List(ctx, priced)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
	assert.Equal(t, 3, repo.listCalls)
}

func TestEmptyListingNotCached(t *testing.T) {
	repo := newStubRepo()
	svc := newService(t, repo)
	ctx := context.Background()

	filters := products.ListFilters{PageRequest: shared.PageRequest{Page: 1, Limit: 20}}
	for i := 0; i < 2; i++ {
		result, err := svc.List(ctx, filters)
		require.NoError(t, err)
		assert.Empty(t, result.Rows)
		assert.Equal(t, 0, result.Meta.PageCount)
	}
	assert.Equal(t, 2, repo.listCalls, "empty pages must not be pinned in the cache")
}

func TestMutationsInvalidateListing(t *testing.T) {
	repo := newStubRepo()
	stored := repo.add(products.Product{Name: "Bike", UserID: 1, Status: products.StatusPending})
	svc := newService(t, repo)
	ctx := context.Background()

	filters := products.ListFilters{PageRequest: shared.PageRequest{Page: 1, Limit: 20}}
	_, err := svc.List(ctx, filters)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	require.NoError(t, svc.ChangeStatus(ctx, stored.ID, products.StatusApproved))

	result, err := svc.List(ctx, filters)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	assert.Equal(t, products.StatusApproved, result.Rows[0].Status)
}
