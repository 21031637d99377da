package service

import (
	"context"
	"fmt"
	"time"

	"github.com/formlab/formgen/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkspaceService handles workspace operations
type WorkspaceService struct {
	workspaceRepo domain.WorkspaceRepository
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(workspaceRepo domain.WorkspaceRepository) *WorkspaceService {
	return &WorkspaceService{workspaceRepo: workspaceRepo}
}

// WorkspaceUpdateResult reports the outcome of an update. RemovedSelf is set
// when the updater took themselves off the member list, so the handler can
// show a "removed from workspace" notice instead of a generic success.
type WorkspaceUpdateResult struct {
	Workspace   *domain.Workspace
	RemovedSelf bool
}

// Create creates a shared workspace with the creator as first member
func (s *WorkspaceService) Create(ctx context.Context, userID primitive.ObjectID, input domain.WorkspaceCreate) (*domain.Workspace, error) {
	now := time.Now()
	workspace := &domain.Workspace{
		ID:         primitive.NewObjectID(),
		Name:       input.Name,
		IsPersonal: false,
		UserIDs:    []primitive.ObjectID{userID},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return workspace, nil
}

// GetByID retrieves a workspace the user is a member of. Absent and denied
// both come back as not found.
func (s *WorkspaceService) GetByID(ctx context.Context, userID, workspaceID primitive.ObjectID) (*domain.Workspace, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil || !workspace.HasMember(userID) {
		return nil, domain.ErrNotFound
	}
	return workspace, nil
}

// ListByUser retrieves all workspaces the user is a member of
func (s *WorkspaceService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workspace, error) {
	workspaces, err := s.workspaceRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// Update renames a workspace and replaces its member set. A personal
// workspace keeps its single member no matter what was submitted; a shared
// workspace must keep at least one member. The updater may remove
// themselves, which the result reports so access can be re-checked.
func (s *WorkspaceService) Update(ctx context.Context, userID, workspaceID primitive.ObjectID, input domain.WorkspaceUpdate) (*WorkspaceUpdateResult, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil || !workspace.HasMember(userID) {
		return nil, domain.ErrNotFound
	}

	if input.Name != nil {
		workspace.Name = *input.Name
	}

	if workspace.IsPersonal {
		// Membership of a personal workspace is immutable: exactly its
		// owner, whatever the request said.
		workspace.UserIDs = []primitive.ObjectID{userID}
	} else if input.UserIDs != nil {
		members, err := parseMemberIDs(input.UserIDs)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			return nil, domain.ErrEmptyMemberList
		}
		workspace.UserIDs = members
	}

	if err := s.workspaceRepo.Update(ctx, workspace); err != nil {
		return nil, err
	}

	return &WorkspaceUpdateResult{
		Workspace:   workspace,
		RemovedSelf: !workspace.HasMember(userID),
	}, nil
}

// Delete removes a shared workspace. Personal workspaces live and die with
// their owner and cannot be deleted here.
func (s *WorkspaceService) Delete(ctx context.Context, userID, workspaceID primitive.ObjectID) error {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil || !workspace.HasMember(userID) {
		return domain.ErrNotFound
	}
	if workspace.IsPersonal {
		return domain.ErrForbidden
	}

	return s.workspaceRepo.Delete(ctx, workspaceID)
}

func parseMemberIDs(hexIDs []string) ([]primitive.ObjectID, error) {
	seen := make(map[primitive.ObjectID]bool, len(hexIDs))
	members := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, hexID := range hexIDs {
		id, err := primitive.ObjectIDFromHex(hexID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", hexID, err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}
	return members, nil
}
