package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a platform user. The personal workspace is created in the
// same transaction as the user and is never shared.
type User struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id"`
	Email               string             `json:"email" bson:"email"`
	PasswordHash        string             `json:"-" bson:"passwordHash"`
	Name                string             `json:"name" bson:"name"`
	IsActive            bool               `json:"is_active" bson:"isActive"`
	IsAdmin             bool               `json:"is_admin" bson:"isAdmin"`
	PersonalWorkspaceID primitive.ObjectID `json:"personal_workspace_id" bson:"personalWorkspaceId"`
	CreatedAt           time.Time          `json:"created_at" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updated_at" bson:"updatedAt"`
}

// UserCreate represents user registration data
type UserCreate struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=255"`
}

// UserLogin represents sign-in credentials
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserProfileUpdate represents profile update data
type UserProfileUpdate struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

// UserPasswordUpdate represents a password change request
type UserPasswordUpdate struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// TokenPair represents the JWT pair issued to programmatic clients
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context, limit, offset int) ([]User, error)
	Count(ctx context.Context) (int64, error)
	CountActiveAdmins(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
