package users

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/mercato-app/mercato/internal/cache"
	"github.com/mercato-app/mercato/internal/platform/httpx"
	"github.com/mercato-app/mercato/internal/shared"
)

// Collection is the cache collection name for user listings.
const Collection = "users"

// RegisterRequest carries a new account registration.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// ListResult pairs rows with their pagination metadata; this is the unit the
// cache layer stores and returns.
type ListResult struct {
	Rows []User          `json:"rows"`
	Meta shared.PageMeta `json:"metadata"`
}

// Service wraps user account business rules.
type Service struct {
	repo   Repository
	tokens *shared.TokenManager
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *shared.TokenManager, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, cache: c, logger: logger}
}

// Register creates a new account in Pending status.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return httpx.Fail(httpx.ErrDuplicate, "User exists with the email")
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.repo.Create(ctx, User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Status:       StatusPending,
	})
	if errors.Is(err, httpx.ErrDuplicate) {
		return httpx.Fail(httpx.ErrDuplicate, "User exists with the email")
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, Collection)
	return nil
}

// Login validates credentials and issues a user-kind token. A user token
// carries no elevated roles. Suspension is checked after the password so a
// wrong password never reveals account state.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return "", httpx.Fail(httpx.ErrNotFound, "Wrong email!")
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", httpx.Fail(httpx.ErrValidation, "Invalid login credential")
	}
	if user.Status == StatusSuspended {
		return "", httpx.Fail(httpx.ErrUnauthorized, "Your account has been suspended")
	}
	return s.tokens.Issue(shared.Principal{ID: user.ID, Kind: shared.KindUser})
}

// Get fetches a single user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, httpx.ErrNotFound) {
		return nil, httpx.Fail(httpx.ErrNotFound, "User not found")
	}
	return user, err
}

// List returns a cached page of users matching the filters.
func (s *Service) List(ctx context.Context, req shared.PageRequest) (ListResult, error) {
	signature := listSignature(req)
	var result ListResult
	err := s.cache.FetchPage(ctx, Collection, signature, &result, func(ctx context.Context) (any, bool, error) {
		rows, total, err := s.repo.List(ctx, req)
		if err != nil {
			return nil, false, err
		}
		value := ListResult{Rows: rows, Meta: shared.NewPageMeta(req.Page, req.Limit, total)}
		return value, len(rows) > 0, nil
	})
	return result, err
}

// ChangeStatus suspends or unsuspends an account.
func (s *Service) ChangeStatus(ctx context.Context, id int64, status Status) error {
	err := s.repo.UpdateStatus(ctx, id, status)
	if errors.Is(err, httpx.ErrNotFound) {
		return httpx.Fail(httpx.ErrNotFound, "User not found")
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, Collection)
	return nil
}

// Delete removes an account. Products cascade at the database level, so the
// product listings are invalidated as well.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, httpx.ErrNotFound) {
		return httpx.Fail(httpx.ErrNotFound, "User not found")
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, Collection)
	s.invalidate(ctx, "products")
	return nil
}

func (s *Service) invalidate(ctx context.Context, collection string) {
	if err := s.cache.Invalidate(ctx, collection); err != nil && s.logger != nil {
		s.logger.Warn("invalidate cache", slog.String("collection", collection), slog.Any("error", err))
	}
}

func listSignature(req shared.PageRequest) string {
	return cache.Signature(
		"search="+req.SearchTerm,
		"status="+req.Status,
		"page="+strconv.Itoa(req.Page),
		"limit="+strconv.Itoa(req.Limit),
	)
}
