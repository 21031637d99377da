package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is the per-client server-side session, keyed by an opaque cookie
// value. LivePrototypePasswords maps prototype hex id to the password last
// entered for that prototype's live link.
type Session struct {
	ID                     string             `json:"id"`
	CurrentUserID          primitive.ObjectID `json:"current_user_id,omitempty"`
	LivePrototypePasswords map[string]string  `json:"live_prototype_passwords,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
}

// Authenticated reports whether a user is bound to the session.
func (s *Session) Authenticated() bool {
	return s != nil && !s.CurrentUserID.IsZero()
}

// PasswordFor returns the password recorded for a prototype, if any.
func (s *Session) PasswordFor(prototypeID primitive.ObjectID) string {
	if s == nil || s.LivePrototypePasswords == nil {
		return ""
	}
	return s.LivePrototypePasswords[prototypeID.Hex()]
}

// SessionStore defines the interface for session persistence
type SessionStore interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}
