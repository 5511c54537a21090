package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

// ListLimit caps every user listing.
const ListLimit = 100

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*User, error) {
	createdAt, err := store.ParseTimestamp(req.CreatedAt, s.now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	u := &User{
		Name:      req.Name,
		Bio:       req.Bio,
		Role:      req.Role,
		CreatedAt: createdAt,
	}
	if u.Role == "" {
		u.Role = DefaultRole
	}
	if req.Password != "" {
		hashedPwd, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.Password = string(hashedPwd)
	}

	if _, err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id store.ID) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx, ListLimit)
}
