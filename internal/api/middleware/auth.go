package middleware

import (
	"net/http"
	"strings"

	"github.com/formlab/formgen/internal/access"
	"github.com/formlab/formgen/internal/api/response"
	"github.com/formlab/formgen/internal/domain"
	"github.com/formlab/formgen/internal/security"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthMiddleware establishes the request principal and enforces the access
// guards. Denials go through the shared responder; access-denied and
// missing-resource cases are indistinguishable on the wire.
type AuthMiddleware struct {
	sessions   domain.SessionStore
	users      domain.UserRepository
	resolver   *access.Resolver
	jwtManager *security.JWTManager
	cookieName string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(
	sessions domain.SessionStore,
	users domain.UserRepository,
	resolver *access.Resolver,
	jwtManager *security.JWTManager,
	cookieName string,
) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:   sessions,
		users:      users,
		resolver:   resolver,
		jwtManager: jwtManager,
		cookieName: cookieName,
	}
}

// WithSession loads the browser session from the session cookie, or
// synthesizes a transient principal from a Bearer token for programmatic
// clients. It never creates a session; sign-in does that.
func (m *AuthMiddleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := &RequestContext{}

		if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
			session, err := m.sessions.Get(r.Context(), cookie.Value)
			if err != nil {
				log.Error().Err(err).Msg("failed to load session")
				response.Deny(w, r, http.StatusInternalServerError, "something went wrong")
				return
			}
			rc.Session = session
		}

		if rc.Session == nil {
			if token := bearerToken(r); token != "" {
				if claims, err := m.jwtManager.ValidateAccessToken(token); err == nil {
					if userID, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
						rc.Session = &domain.Session{CurrentUserID: userID}
					}
				}
			}
		}

		next.ServeHTTP(w, r.WithContext(WithRequestContext(r.Context(), rc)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// RequireUser loads and checks the acting user. Stale sessions (user record
// gone) are cleared before the denial so the client stops presenting them.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := FromContext(r.Context())

		if !rc.Session.Authenticated() {
			response.Deny(w, r, http.StatusUnauthorized, "you need to sign in")
			return
		}

		user, err := m.users.GetByID(r.Context(), rc.Session.CurrentUserID)
		if err != nil {
			log.Error().Err(err).Msg("failed to load user")
			response.Deny(w, r, http.StatusInternalServerError, "something went wrong")
			return
		}
		if user == nil {
			// Stale session pointing at a deleted account.
			if rc.Session.ID != "" {
				rc.Session.CurrentUserID = primitive.NilObjectID
				if err := m.sessions.Save(r.Context(), rc.Session); err != nil {
					log.Error().Err(err).Msg("failed to clear stale session")
				}
			}
			response.Deny(w, r, http.StatusUnauthorized, "you need to sign in")
			return
		}
		if !user.IsActive {
			response.Deny(w, r, http.StatusForbidden, "your account is deactivated")
			return
		}

		rc.User = user
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates admin-only routes. Non-admins get a 404, never a 403,
// so the routes' existence is not revealed.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := FromContext(r.Context())
		if rc.User == nil || !rc.User.IsAdmin {
			response.Deny(w, r, http.StatusNotFound, "page not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAnonymous is the inverse guard for sign-in and registration pages
func (m *AuthMiddleware) RequireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := FromContext(r.Context())
		if rc.Session.Authenticated() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePrototype resolves the prototype named in the URL and checks the
// acting user's access. Runs after RequireUser. Denial and absence are both
// a 404; malformed ids too, so probing ids learns nothing.
func (m *AuthMiddleware) RequirePrototype(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := FromContext(r.Context())

		prototypeID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "prototypeID"))
		if err != nil {
			response.Deny(w, r, http.StatusNotFound, "page not found")
			return
		}

		prototype, err := m.resolver.AccessiblePrototype(r.Context(), rc.User.ID, prototypeID)
		if err != nil {
			log.Error().Err(err).Msg("failed to resolve prototype access")
			response.Deny(w, r, http.StatusInternalServerError, "something went wrong")
			return
		}
		if prototype == nil {
			response.Deny(w, r, http.StatusNotFound, "page not found")
			return
		}

		rc.Prototype = prototype
		next.ServeHTTP(w, r)
	})
}

// VerifyLive runs the live-prototype state machine. Authentication is not
// required; the resolver decides what an anonymous visitor may see.
func (m *AuthMiddleware) VerifyLive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := FromContext(r.Context())

		prototypeID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "prototypeID"))
		if err != nil {
			response.Deny(w, r, http.StatusNotFound, "page not found")
			return
		}

		decision, err := m.resolver.ResolveLive(r.Context(), rc.Session, prototypeID)
		if err != nil {
			log.Error().Err(err).Msg("failed to resolve live access")
			response.Deny(w, r, http.StatusInternalServerError, "something went wrong")
			return
		}

		switch decision.Outcome {
		case access.Granted:
			rc.Prototype = decision.Prototype
			rc.ViaPassword = decision.ViaPassword
			next.ServeHTTP(w, r)
		case access.Unauthenticated:
			response.Deny(w, r, http.StatusUnauthorized, "you need to sign in")
		case access.Forbidden:
			response.Deny(w, r, http.StatusForbidden, "your account is deactivated")
		case access.PasswordRequired:
			response.PasswordChallenge(w, r, prototypeID.Hex())
		default:
			response.Deny(w, r, http.StatusNotFound, "page not found")
		}
	})
}
