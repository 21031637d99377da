package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workspace represents a sharing boundary. A personal workspace belongs to
// exactly one user and its member list never changes; a shared workspace
// must keep at least one member after any update.
type Workspace struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id"`
	Name       string               `json:"name" bson:"name"`
	IsPersonal bool                 `json:"is_personal" bson:"isPersonalWorkspace"`
	UserIDs    []primitive.ObjectID `json:"user_ids" bson:"userIds"`
	CreatedAt  time.Time            `json:"created_at" bson:"createdAt"`
	UpdatedAt  time.Time            `json:"updated_at" bson:"updatedAt"`
}

// HasMember reports whether userID is in the workspace member set.
func (w *Workspace) HasMember(userID primitive.ObjectID) bool {
	for _, id := range w.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// WorkspaceCreate represents workspace creation data
type WorkspaceCreate struct {
	Name string `json:"name" validate:"required,max=255"`
}

// WorkspaceUpdate represents workspace update data. UserIDs, when present,
// replaces the member set (hex object ids).
type WorkspaceUpdate struct {
	Name    *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	UserIDs []string `json:"user_ids,omitempty" validate:"omitempty,dive,len=24,hexadecimal"`
}

// WorkspaceRepository defines the interface for workspace storage
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *Workspace) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Workspace, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]Workspace, error)
	Update(ctx context.Context, workspace *Workspace) error
	IsMember(ctx context.Context, workspaceID, userID primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
