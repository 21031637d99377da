package service

import (
	"context"
	"fmt"
	"time"

	"github.com/formlab/formgen/internal/domain"
	"github.com/formlab/formgen/internal/security"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TxRunner runs a function inside a store transaction
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuthService handles registration, sign-in, and account updates
type AuthService struct {
	userRepo      domain.UserRepository
	workspaceRepo domain.WorkspaceRepository
	tx            TxRunner
	jwtManager    *security.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	workspaceRepo domain.WorkspaceRepository,
	tx TxRunner,
	jwtManager *security.JWTManager,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
		tx:            tx,
		jwtManager:    jwtManager,
	}
}

// Register creates a new user account together with its personal workspace,
// atomically. The very first account becomes an active admin.
func (s *AuthService) Register(ctx context.Context, input domain.UserCreate) (*domain.User, error) {
	exists, err := s.userRepo.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	now := time.Now()
	userID := primitive.NewObjectID()
	workspace := &domain.Workspace{
		ID:         primitive.NewObjectID(),
		Name:       input.Name,
		IsPersonal: true,
		UserIDs:    []primitive.ObjectID{userID},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	user := &domain.User{
		ID:                  userID,
		Email:               input.Email,
		PasswordHash:        hash,
		Name:                input.Name,
		IsActive:            true,
		IsAdmin:             total == 0,
		PersonalWorkspaceID: workspace.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
			return err
		}
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns the user. Unknown emails and wrong
// passwords produce the same error; deactivated accounts are refused.
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(user.PasswordHash, input.Password) {
		return nil, domain.ErrInvalidPassword
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

// IssueTokens authenticates and returns a JWT pair for programmatic clients
func (s *AuthService) IssueTokens(ctx context.Context, input domain.UserLogin) (*domain.TokenPair, error) {
	user, err := s.Login(ctx, input)
	if err != nil {
		return nil, err
	}

	access, refresh, expiresIn, err := s.jwtManager.GenerateTokenPair(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	}, nil
}

// RefreshTokens exchanges a refresh token for a new pair
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	subject, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	userID, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}

	access, refresh, expiresIn, err := s.jwtManager.GenerateTokenPair(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	}, nil
}

// UpdateProfile changes a user's name and email
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, input domain.UserProfileUpdate) (*domain.User, error) {
	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, *input.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if existing != nil && existing.ID != user.ID {
			return nil, domain.ErrEmailTaken
		}
		user.Email = *input.Email
	}
	if input.Name != nil {
		user.Name = *input.Name
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword changes a user's password after verifying the current one
func (s *AuthService) UpdatePassword(ctx context.Context, user *domain.User, input domain.UserPasswordUpdate) error {
	if !security.CheckPassword(user.PasswordHash, input.CurrentPassword) {
		return domain.ErrInvalidPassword
	}

	hash, err := security.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	return s.userRepo.Update(ctx, user)
}
