package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Prototype represents a generated form definition. Access is driven by the
// owning workspace's member set and the shared-with list; the creator id is
// metadata only and grants nothing once the creator leaves the workspace.
type Prototype struct {
	ID                primitive.ObjectID   `json:"id" bson:"_id"`
	CreatorUserID     primitive.ObjectID   `json:"creator_user_id" bson:"creatorUserId"`
	WorkspaceID       primitive.ObjectID   `json:"workspace_id" bson:"workspaceId"`
	SharedWithUserIDs []primitive.ObjectID `json:"shared_with_user_ids" bson:"sharedWithUserIds"`
	LivePublic        bool                 `json:"live_public" bson:"livePrototypePublic"`
	// LivePassword is empty when the public live link needs no password.
	// Encrypted at rest by the repository.
	LivePassword string             `json:"-" bson:"-"`
	PreviousID   primitive.ObjectID `json:"previous_id,omitempty" bson:"previousId,omitempty"`
	Prompt       string             `json:"prompt" bson:"prompt"`
	Definition   FormDefinition     `json:"definition" bson:"json"`
	CreatedAt    time.Time          `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updatedAt"`
}

// IsSharedWith reports whether userID is on the individual sharing list.
func (p *Prototype) IsSharedWith(userID primitive.ObjectID) bool {
	for _, id := range p.SharedWithUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// PrototypeCreate represents a generation request
type PrototypeCreate struct {
	Prompt      string `json:"prompt" validate:"required,max=4000"`
	WorkspaceID string `json:"workspace_id" validate:"omitempty,len=24,hexadecimal"`
	Provider    string `json:"provider,omitempty"`
	Model       string `json:"model,omitempty"`
}

// PrototypeRevise represents a revision request against an existing prototype
type PrototypeRevise struct {
	Prompt   string `json:"prompt" validate:"required,max=4000"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// PrototypeShareUpdate represents sharing and live-link changes. Nil fields
// are left untouched.
type PrototypeShareUpdate struct {
	SharedWithUserIDs []string `json:"shared_with_user_ids,omitempty" validate:"omitempty,dive,len=24,hexadecimal"`
	LivePublic        *bool    `json:"live_public,omitempty"`
	LivePassword      *string  `json:"live_password,omitempty" validate:"omitempty,max=72"`
}

// PrototypeFilter narrows prototype listings
type PrototypeFilter struct {
	WorkspaceID   *primitive.ObjectID
	CreatorUserID *primitive.ObjectID
}

// PrototypePage is one page of a prototype listing
type PrototypePage struct {
	Items  []Prototype `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// PrototypeRepository defines the interface for prototype storage
type PrototypeRepository interface {
	Create(ctx context.Context, prototype *Prototype) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Prototype, error)
	ListByWorkspaces(ctx context.Context, workspaceIDs []primitive.ObjectID, filter PrototypeFilter, limit, offset int) ([]Prototype, error)
	CountByWorkspaces(ctx context.Context, workspaceIDs []primitive.ObjectID, filter PrototypeFilter) (int64, error)
	ListSharedWith(ctx context.Context, userID primitive.ObjectID) ([]Prototype, error)
	Update(ctx context.Context, prototype *Prototype) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
