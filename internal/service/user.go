package service

import (
	"context"
	"fmt"

	"github.com/formlab/formgen/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService handles administrative user management
type UserService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UserPage is one page of users with the overall total
type UserPage struct {
	Items  []domain.User `json:"items"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// List retrieves one page of all users
func (s *UserService) List(ctx context.Context, limit, offset int) (*UserPage, error) {
	items, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &UserPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// GetByID retrieves a single user
func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// SetActive activates or deactivates a user. Deactivating the last active
// admin is rejected so the instance cannot lock itself out.
func (s *UserService) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		return user, nil
	}

	if !active && user.IsAdmin {
		if err := s.checkNotLastAdmin(ctx); err != nil {
			return nil, err
		}
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetAdmin grants or revokes admin rights. Revoking the last active
// admin is rejected.
func (s *UserService) SetAdmin(ctx context.Context, id primitive.ObjectID, admin bool) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin == admin {
		return user, nil
	}

	if !admin && user.IsActive {
		if err := s.checkNotLastAdmin(ctx); err != nil {
			return nil, err
		}
	}

	user.IsAdmin = admin
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) checkNotLastAdmin(ctx context.Context) error {
	count, err := s.userRepo.CountActiveAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count <= 1 {
		return domain.ErrLastAdmin
	}
	return nil
}
