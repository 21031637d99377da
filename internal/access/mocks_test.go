package access

import (
	"context"

	"github.com/formlab/formgen/internal/domain"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountActiveAdmins(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockWorkspaceRepository mocks the WorkspaceRepository interface
type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) Create(ctx context.Context, workspace *domain.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workspace, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) Update(ctx context.Context, workspace *domain.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) IsMember(ctx context.Context, workspaceID, userID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, workspaceID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkspaceRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPrototypeRepository mocks the PrototypeRepository interface
type MockPrototypeRepository struct {
	mock.Mock
}

func (m *MockPrototypeRepository) Create(ctx context.Context, prototype *domain.Prototype) error {
	args := m.Called(ctx, prototype)
	return args.Error(0)
}

func (m *MockPrototypeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Prototype, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Prototype), args.Error(1)
}

func (m *MockPrototypeRepository) ListByWorkspaces(ctx context.Context, workspaceIDs []primitive.ObjectID, filter domain.PrototypeFilter, limit, offset int) ([]domain.Prototype, error) {
	args := m.Called(ctx, workspaceIDs, filter, limit, offset)
	return args.Get(0).([]domain.Prototype), args.Error(1)
}

func (m *MockPrototypeRepository) CountByWorkspaces(ctx context.Context, workspaceIDs []primitive.ObjectID, filter domain.PrototypeFilter) (int64, error) {
	args := m.Called(ctx, workspaceIDs, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPrototypeRepository) ListSharedWith(ctx context.Context, userID primitive.ObjectID) ([]domain.Prototype, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Prototype), args.Error(1)
}

func (m *MockPrototypeRepository) Update(ctx context.Context, prototype *domain.Prototype) error {
	args := m.Called(ctx, prototype)
	return args.Error(0)
}

func (m *MockPrototypeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
