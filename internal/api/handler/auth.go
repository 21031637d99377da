package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/formlab/formgen/internal/api/middleware"
	"github.com/formlab/formgen/internal/api/response"
	"github.com/formlab/formgen/internal/domain"
	"github.com/formlab/formgen/internal/service"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, sign-in and account endpoints
type AuthHandler struct {
	authService *service.AuthService
	sessions    domain.SessionStore
	cookieName  string
	sessionTTL  time.Duration
	secure      bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService *service.AuthService,
	sessions domain.SessionStore,
	cookieName string,
	sessionTTL time.Duration,
	secure bool,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		cookieName:  cookieName,
		sessionTTL:  sessionTTL,
		secure:      secure,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			response.Error(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		log.Error().Err(err).Msg("registration failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.Created(w, map[string]any{
		"id":    user.ID,
		"email": user.Email,
	})
}

// SignIn authenticates with email and password and starts a fresh session.
// Any pre-existing session is discarded so its id never survives sign-in.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPassword):
			response.Unauthorized(w, "invalid email or password")
		case errors.Is(err, domain.ErrForbidden):
			response.Forbidden(w, "your account is deactivated")
		default:
			log.Error().Err(err).Msg("sign-in failed")
			response.InternalError(w, "something went wrong")
		}
		return
	}

	rc := middleware.FromContext(r.Context())
	if rc.Session != nil && rc.Session.ID != "" {
		if err := h.sessions.Delete(r.Context(), rc.Session.ID); err != nil {
			log.Error().Err(err).Msg("failed to discard old session")
		}
	}

	session, err := h.sessions.Create(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		response.InternalError(w, "something went wrong")
		return
	}
	session.CurrentUserID = user.ID
	if err := h.sessions.Save(r.Context(), session); err != nil {
		log.Error().Err(err).Msg("failed to save session")
		response.InternalError(w, "something went wrong")
		return
	}

	h.setSessionCookie(w, session.ID)
	response.OK(w, map[string]any{
		"id":       user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"is_admin": user.IsAdmin,
	})
}

// SignOut ends the session and clears the cookie
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())
	if rc.Session != nil && rc.Session.ID != "" {
		if err := h.sessions.Delete(r.Context(), rc.Session.ID); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}
	h.clearSessionCookie(w)

	if response.FetchContextFrom(r) == response.Document {
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}
	response.NoContent(w)
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())
	response.OK(w, rc.User)
}

// UpdateProfile updates the current user's name or email
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	var input domain.UserProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), rc.User, input)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			response.Error(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		log.Error().Err(err).Msg("profile update failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.OK(w, user)
}

// UpdatePassword changes the current user's password
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	var input domain.UserPasswordUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	if err := h.authService.UpdatePassword(r.Context(), rc.User, input); err != nil {
		if errors.Is(err, domain.ErrInvalidPassword) {
			response.Unauthorized(w, "current password is incorrect")
			return
		}
		log.Error().Err(err).Msg("password update failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.NoContent(w)
}

// Token issues a JWT pair for programmatic clients
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	tokens, err := h.authService.IssueTokens(r.Context(), input)
	if err != nil {
		response.Unauthorized(w, "invalid email or password")
		return
	}

	response.OK(w, tokens)
}

// Refresh exchanges a refresh token for a new pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	tokens, err := h.authService.RefreshTokens(r.Context(), input.RefreshToken)
	if err != nil {
		response.Unauthorized(w, "invalid refresh token")
		return
	}

	response.OK(w, tokens)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
