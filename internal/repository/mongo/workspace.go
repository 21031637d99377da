package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/formlab/formgen/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workspacesCollection = "workspaces"

// WorkspaceRepository handles workspace data access
type WorkspaceRepository struct {
	db *DB
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) collection() *mongo.Collection {
	return r.db.Collection(workspacesCollection)
}

// Create inserts a new workspace
func (r *WorkspaceRepository) Create(ctx context.Context, workspace *domain.Workspace) error {
	if _, err := r.collection().InsertOne(ctx, workspace); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	return nil
}

// GetByID retrieves a workspace by ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workspace, error) {
	var workspace domain.Workspace
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&workspace)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return &workspace, nil
}

// ListByUserID retrieves all workspaces a user is a member of, personal
// workspace first, then newest first
func (r *WorkspaceRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workspace, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "isPersonalWorkspace", Value: -1},
		{Key: "createdAt", Value: -1},
	})

	cursor, err := r.collection().Find(ctx, bson.M{"userIds": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer cursor.Close(ctx)

	var workspaces []domain.Workspace
	if err := cursor.All(ctx, &workspaces); err != nil {
		return nil, fmt.Errorf("failed to decode workspaces: %w", err)
	}
	return workspaces, nil
}

// Update replaces a workspace document
func (r *WorkspaceRepository) Update(ctx context.Context, workspace *domain.Workspace) error {
	workspace.UpdatedAt = time.Now()

	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": workspace.ID}, workspace)
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IsMember checks if a user is in the workspace member set
func (r *WorkspaceRepository) IsMember(ctx context.Context, workspaceID, userID primitive.ObjectID) (bool, error) {
	opts := options.Count().SetLimit(1)

	count, err := r.collection().CountDocuments(ctx, bson.M{"_id": workspaceID, "userIds": userID}, opts)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// Delete removes a workspace
func (r *WorkspaceRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
