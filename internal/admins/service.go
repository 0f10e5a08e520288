package admins

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/mercato-app/mercato/internal/platform/httpx"
	"github.com/mercato-app/mercato/internal/shared"
)

// Service wraps admin authentication rules.
type Service struct {
	repo   Repository
	tokens *shared.TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *shared.TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login validates credentials and issues an admin-kind token carrying the
// stored role set.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return "", httpx.Fail(httpx.ErrNotFound, "Wrong email!")
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", httpx.Fail(httpx.ErrValidation, "Invalid login credential")
	}
	return s.tokens.Issue(shared.Principal{ID: admin.ID, Kind: shared.KindAdmin, Roles: admin.Roles})
}

// Get fetches a single admin account.
func (s *Service) Get(ctx context.Context, id int64) (*Admin, error) {
	return s.repo.FindByID(ctx, id)
}
