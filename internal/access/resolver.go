// Package access decides whether a principal may view a workspace or
// prototype, and by what avenue. All operations are read-only against the
// store; nothing here mutates authorization state.
package access

import (
	"context"
	"fmt"

	"github.com/formlab/formgen/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outcome is the result of a live-access resolution
type Outcome int

const (
	Granted Outcome = iota
	// NotFound covers both "does not exist" and "exists but the caller may
	// not know that", so private prototypes cannot be enumerated.
	NotFound
	Unauthenticated
	Forbidden
	PasswordRequired
)

func (o Outcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case NotFound:
		return "not_found"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case PasswordRequired:
		return "password_required"
	default:
		return "unknown"
	}
}

// LiveDecision is the result of resolving a live-prototype request
type LiveDecision struct {
	Outcome     Outcome
	ViaPassword bool
	Prototype   *domain.Prototype
}

// Resolver computes access decisions over the store
type Resolver struct {
	users      domain.UserRepository
	workspaces domain.WorkspaceRepository
	prototypes domain.PrototypeRepository
}

// NewResolver creates a new access resolver
func NewResolver(users domain.UserRepository, workspaces domain.WorkspaceRepository, prototypes domain.PrototypeRepository) *Resolver {
	return &Resolver{
		users:      users,
		workspaces: workspaces,
		prototypes: prototypes,
	}
}

// CanUserAccessWorkspace reports whether the user is in the workspace's
// member set. There is no owner bypass; the owner is always a member.
func (r *Resolver) CanUserAccessWorkspace(ctx context.Context, userID, workspaceID primitive.ObjectID) (bool, error) {
	ok, err := r.workspaces.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check workspace access: %w", err)
	}
	return ok, nil
}

// CanUserAccessPrototype reports whether the user may view the prototype:
// member of the owning workspace, or on the shared-with list. Being the
// creator grants nothing on its own; a creator removed from the workspace
// loses access.
func (r *Resolver) CanUserAccessPrototype(ctx context.Context, userID, prototypeID primitive.ObjectID) (bool, error) {
	prototype, err := r.AccessiblePrototype(ctx, userID, prototypeID)
	if err != nil {
		return false, err
	}
	return prototype != nil, nil
}

// AccessiblePrototype loads a prototype the user may view. A missing id and
// a denied one both return (nil, nil), so callers cannot distinguish the
// two.
func (r *Resolver) AccessiblePrototype(ctx context.Context, userID, prototypeID primitive.ObjectID) (*domain.Prototype, error) {
	prototype, err := r.prototypes.GetByID(ctx, prototypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prototype: %w", err)
	}
	if prototype == nil {
		return nil, nil
	}
	ok, err := r.canAccessPrototype(ctx, userID, prototype)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return prototype, nil
}

func (r *Resolver) canAccessPrototype(ctx context.Context, userID primitive.ObjectID, prototype *domain.Prototype) (bool, error) {
	ok, err := r.CanUserAccessWorkspace(ctx, userID, prototype.WorkspaceID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return prototype.IsSharedWith(userID), nil
}

// ResolveLive runs the live-prototype access state machine. Evaluation is
// ordered and the first matching state wins:
//
//  1. anonymous, prototype unknown or not public -> Unauthenticated
//  2. signed-in but inactive     -> Forbidden, even for public prototypes
//  3. unknown prototype          -> NotFound, the same shape step 6 gives
//     an unauthorized user, so probing ids reveals nothing
//  4. public, no password        -> Granted
//  5. public with password       -> Granted when the session holds the
//     matching password or the user independently passes
//     CanUserAccessPrototype; otherwise PasswordRequired
//  6. not public                 -> Granted for authorized users, otherwise
//     NotFound (indistinguishable from a missing id)
//
// A session whose user record has disappeared is treated as anonymous.
func (r *Resolver) ResolveLive(ctx context.Context, session *domain.Session, prototypeID primitive.ObjectID) (LiveDecision, error) {
	prototype, err := r.prototypes.GetByID(ctx, prototypeID)
	if err != nil {
		return LiveDecision{}, fmt.Errorf("failed to load prototype: %w", err)
	}

	var user *domain.User
	if session.Authenticated() {
		user, err = r.users.GetByID(ctx, session.CurrentUserID)
		if err != nil {
			return LiveDecision{}, fmt.Errorf("failed to load user: %w", err)
		}
	}

	if prototype == nil {
		switch {
		case user == nil:
			return LiveDecision{Outcome: Unauthenticated}, nil
		case !user.IsActive:
			return LiveDecision{Outcome: Forbidden}, nil
		default:
			return LiveDecision{Outcome: NotFound}, nil
		}
	}

	if user == nil && !prototype.LivePublic {
		return LiveDecision{Outcome: Unauthenticated}, nil
	}

	if user != nil && !user.IsActive {
		return LiveDecision{Outcome: Forbidden}, nil
	}

	if prototype.LivePublic {
		if prototype.LivePassword == "" {
			return LiveDecision{Outcome: Granted, Prototype: prototype}, nil
		}

		if session.PasswordFor(prototype.ID) == prototype.LivePassword {
			return LiveDecision{Outcome: Granted, ViaPassword: true, Prototype: prototype}, nil
		}

		if user != nil {
			ok, err := r.canAccessPrototype(ctx, user.ID, prototype)
			if err != nil {
				return LiveDecision{}, err
			}
			if ok {
				return LiveDecision{Outcome: Granted, Prototype: prototype}, nil
			}
		}

		return LiveDecision{Outcome: PasswordRequired, Prototype: prototype}, nil
	}

	if user != nil {
		ok, err := r.canAccessPrototype(ctx, user.ID, prototype)
		if err != nil {
			return LiveDecision{}, err
		}
		if ok {
			return LiveDecision{Outcome: Granted, Prototype: prototype}, nil
		}
	}

	return LiveDecision{Outcome: NotFound}, nil
}
