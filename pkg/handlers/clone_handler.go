package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitecraft-inc/sitecraft-engine/pkg/apperrors"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/auth"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/models"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/services"
)

// CloneRequest is the request body for POST /api/organizations/{oid}/clone.
type CloneRequest struct {
	Name string `json:"name"`
}

// OrgSummary is the organization shape returned by the clone endpoint.
type OrgSummary struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Kind             string    `json:"kind"`
	BaseURL          string    `json:"base_url,omitempty"`
	DeploymentStatus string    `json:"deployment_status,omitempty"`
}

// CloneResponse is the success payload of the clone endpoint. A 200 means
// the operation ran; per-type results inside CloneResults may still carry
// failures.
type CloneResponse struct {
	Success            bool                     `json:"success"`
	Organization       OrgSummary               `json:"organization"`
	SourceOrganization OrgSummary               `json:"source_organization"`
	CloneResults       *models.CloneReport      `json:"clone_results"`
	Deployment         *models.DeploymentResult `json:"deployment"`
	DeploymentError    *string                  `json:"deployment_error"`
}

// CloneHandler handles organization clone HTTP requests.
type CloneHandler struct {
	cloneService services.CloneService
	logger       *zap.Logger
}

// NewCloneHandler creates a new clone handler.
func NewCloneHandler(cloneService services.CloneService, logger *zap.Logger) *CloneHandler {
	return &CloneHandler{
		cloneService: cloneService,
		logger:       logger,
	}
}

// RegisterRoutes registers the clone handler's routes on the given mux.
func (h *CloneHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/organizations/{oid}/clone", authMiddleware.RequireAuth(h.Clone))
}

// Clone handles POST /api/organizations/{oid}/clone.
func (h *CloneHandler) Clone(w http.ResponseWriter, r *http.Request) {
	sourceOrgID, err := uuid.Parse(r.PathValue("oid"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_organization_id", "Invalid organization ID format")
		return
	}

	var req CloneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	result, err := h.cloneService.Clone(r.Context(), sourceOrgID, req.Name)
	if err != nil {
		h.writeCloneError(w, sourceOrgID, err)
		return
	}

	response := CloneResponse{
		Success: true,
		Organization: OrgSummary{
			ID:               result.Organization.ID,
			Name:             result.Organization.Name,
			Kind:             result.Organization.Kind,
			BaseURL:          result.Organization.BaseURL,
			DeploymentStatus: result.Organization.DeploymentStatus,
		},
		SourceOrganization: OrgSummary{
			ID:   result.SourceOrganization.ID,
			Name: result.SourceOrganization.Name,
			Kind: result.SourceOrganization.Kind,
		},
		CloneResults: result.Report,
		Deployment:   result.Deployment,
	}
	if result.DeploymentError != "" {
		response.DeploymentError = &result.DeploymentError
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeCloneError maps service errors to HTTP statuses.
func (h *CloneHandler) writeCloneError(w http.ResponseWriter, sourceOrgID uuid.UUID, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
	case errors.Is(err, apperrors.ErrForbidden):
		h.writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "not_found", "Source organization not found")
	case errors.Is(err, apperrors.ErrValidation):
		h.writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		h.logger.Error("Clone request failed",
			zap.String("source_org", sourceOrgID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Clone operation failed")
	}
}

func (h *CloneHandler) writeError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	if err := ErrorResponse(w, statusCode, errorCode, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
