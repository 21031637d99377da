package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formlab/formgen/internal/api/middleware"
	"github.com/formlab/formgen/internal/api/response"
	"github.com/formlab/formgen/internal/domain"
	"github.com/formlab/formgen/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkspaceHandler handles workspace endpoints
type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaceService *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

// Create handles shared workspace creation
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	var input domain.WorkspaceCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	workspace, err := h.workspaceService.Create(r.Context(), rc.User.ID, input)
	if err != nil {
		log.Error().Err(err).Msg("workspace creation failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.Created(w, workspace)
}

// List returns the workspaces the current user belongs to
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	workspaces, err := h.workspaceService.ListByUser(r.Context(), rc.User.ID)
	if err != nil {
		log.Error().Err(err).Msg("workspace listing failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.OK(w, workspaces)
}

// Get returns a single workspace the current user belongs to
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	workspaceID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.Deny(w, r, http.StatusNotFound, "page not found")
		return
	}

	workspace, err := h.workspaceService.GetByID(r.Context(), rc.User.ID, workspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.Deny(w, r, http.StatusNotFound, "page not found")
			return
		}
		log.Error().Err(err).Msg("workspace lookup failed")
		response.InternalError(w, "something went wrong")
		return
	}

	response.OK(w, workspace)
}

// Update renames a workspace or replaces its member list. The response
// carries a removed_self flag when the update took the caller out of the
// member list.
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	workspaceID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.Deny(w, r, http.StatusNotFound, "page not found")
		return
	}

	var input domain.WorkspaceUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	result, err := h.workspaceService.Update(r.Context(), rc.User.ID, workspaceID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			response.Deny(w, r, http.StatusNotFound, "page not found")
		case errors.Is(err, domain.ErrEmptyMemberList):
			response.BadRequest(w, "a workspace needs at least one member")
		default:
			log.Error().Err(err).Msg("workspace update failed")
			response.InternalError(w, "something went wrong")
		}
		return
	}

	response.OK(w, map[string]any{
		"workspace":    result.Workspace,
		"removed_self": result.RemovedSelf,
	})
}

// Delete removes a shared workspace. Personal workspaces cannot be deleted.
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rc := middleware.FromContext(r.Context())

	workspaceID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.Deny(w, r, http.StatusNotFound, "page not found")
		return
	}

	if err := h.workspaceService.Delete(r.Context(), rc.User.ID, workspaceID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			response.Deny(w, r, http.StatusNotFound, "page not found")
		case errors.Is(err, domain.ErrForbidden):
			response.Forbidden(w, "personal workspaces cannot be deleted")
		default:
			log.Error().Err(err).Msg("workspace deletion failed")
			response.InternalError(w, "something went wrong")
		}
		return
	}

	response.NoContent(w)
}
