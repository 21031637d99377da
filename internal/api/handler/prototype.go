package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/formlab/formgen/internal/api/middleware"
	"github.com/formlab/formgen/internal/api/response"
	"github.com/formlab/formgen/internal/domain"
	"github.com/formlab/formgen/internal/service"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PrototypeHandler handles prototype endpoints
type PrototypeHandler struct {
	prototypeService *service.PrototypeService
}

// NewPrototypeHandler creates a new prototype handler
func NewPrototypeHandler(prototypeService *service.PrototypeService) *PrototypeHandler {
	return &PrototypeHandler{prototypeService: prototypeService}
}

// Create generates a new prototype from a prompt
func (h *PrototypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	var input domain.PrototypeCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	result, err := h.prototypeService.Generate(r.Context(), rc.User, input)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.Deny(w, r, http.StatusNotFound, "page not found")
			return
		}
		log.Error().Err(err).Msg("prototype generation failed")
		response.Error(w, http.StatusBadGateway, "generation failed, try again")
		return
	}

	response.Created(w, result)
}

// List returns one page of prototypes across the user's workspaces.
// Supports workspace_id and mine=true filters plus limit/offset paging.
func (h *PrototypeHandler) List(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	var filter domain.PrototypeFilter
	if raw := r.URL.Query().Get("workspace_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			response.Deny(w, r, http.StatusNotFound, "page not found")
			return
		}
		filter.WorkspaceID = &id
	}
	if r.URL.Query().Get("mine") == "true" {
		filter.CreatorUserID = &rc.User.ID
	}

	limit, offset := pageParams(r)
	page, err := h.prototypeService.List(r.Context(), rc.User.ID, filter, limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.Deny(w, r, http.StatusNotFound, "page not found")
			return
		}
		log.Error().Err(err).Msg("prototype listing failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.OK(w, page)
}

// ListShared returns prototypes individually shared with the user
func (h *PrototypeHandler) ListShared(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	prototypes, err := h.prototypeService.ListSharedWith(r.Context(), rc.User.ID)
	if err != nil {
		log.Error().Err(err).Msg("shared listing failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.OK(w, prototypes)
}

// Get returns the prototype resolved by the route guard
func (h *PrototypeHandler) Get(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())
	response.OK(w, rc.Prototype)
}

// Share updates the sharing list and live-link settings
func (h *PrototypeHandler) Share(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	var input domain.PrototypeShareUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	prototype, err := h.prototypeService.UpdateSharing(r.Context(), rc.Prototype, input)
	if err != nil {
		log.Error().Err(err).Msg("sharing update failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.OK(w, prototype)
}

// Revise generates a new revision of the resolved prototype
func (h *PrototypeHandler) Revise(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	var input domain.PrototypeRevise
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	result, err := h.prototypeService.Revise(r.Context(), rc.User, rc.Prototype, input)
	if err != nil {
		log.Error().Err(err).Msg("prototype revision failed")
		response.Error(w, http.StatusBadGateway, "generation failed, try again")
		return
	}

	response.Created(w, result)
}

// History returns the revision chain, newest first
func (h *PrototypeHandler) History(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	history, err := h.prototypeService.History(r.Context(), rc.Prototype)
	if err != nil {
		log.Error().Err(err).Msg("history lookup failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.OK(w, history)
}

// Delete removes the resolved prototype
func (h *PrototypeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	if err := h.prototypeService.Delete(r.Context(), rc.Prototype); err != nil {
		log.Error().Err(err).Msg("prototype deletion failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.NoContent(w)
}

func pageParams(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
