package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formlab/formgen/internal/api/response"
	"github.com/formlab/formgen/internal/domain"
	"github.com/formlab/formgen/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler handles administrative user management endpoints
type AdminHandler struct {
	userService *service.UserService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(userService *service.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// ListUsers returns one page of all users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	page, err := h.userService.List(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("user listing failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.OK(w, page)
}

// GetUser returns a single user
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		response.Deny(w, r, http.StatusNotFound, "page not found")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.Deny(w, r, http.StatusNotFound, "page not found")
			return
		}
		log.Error().Err(err).Msg("user lookup failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.OK(w, user)
}

// SetActive activates or deactivates a user
func (h *AdminHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, func(r *http.Request, id primitive.ObjectID, value bool) (*domain.User, error) {
		return h.userService.SetActive(r.Context(), id, value)
	}, "active")
}

// SetAdmin grants or revokes admin rights
func (h *AdminHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, func(r *http.Request, id primitive.ObjectID, value bool) (*domain.User, error) {
		return h.userService.SetAdmin(r.Context(), id, value)
	}, "admin")
}

func (h *AdminHandler) setFlag(
	w http.ResponseWriter,
	r *http.Request,
	apply func(r *http.Request, id primitive.ObjectID, value bool) (*domain.User, error),
	field string,
) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		response.Deny(w, r, http.StatusNotFound, "page not found")
		return
	}

	var body map[string]bool
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	value, ok := body[field]
	if !ok {
		response.BadRequest(w, "missing "+field+" field")
		return
	}

	user, err := apply(r, userID, value)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			response.Deny(w, r, http.StatusNotFound, "page not found")
		case errors.Is(err, domain.ErrLastAdmin):
			response.Error(w, http.StatusConflict, "at least one active admin is required")
		default:
			log.Error().Err(err).Msg("user update failed")
			response.InternalError(w, "something went wrong")
		}
		return
	}

	response.OK(w, user)
}
