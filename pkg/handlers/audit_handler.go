package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitecraft-inc/sitecraft-engine/pkg/apperrors"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/auth"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/models"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/services"
)

// AuditResponse is the payload of the activity log endpoint.
type AuditResponse struct {
	Entries []*models.AuditLogEntry `json:"entries"`
}

// AuditHandler serves the organization activity log.
type AuditHandler struct {
	auditService services.AuditService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditService services.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// RegisterRoutes registers the audit handler's routes on the given mux.
func (h *AuditHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/organizations/{oid}/audit", authMiddleware.RequireAuth(h.History))
}

// History handles GET /api/organizations/{oid}/audit.
func (h *AuditHandler) History(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.PathValue("oid"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_organization_id", "Invalid organization ID format")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid_limit", "Limit must be a non-negative integer")
			return
		}
	}

	entries, err := h.auditService.History(r.Context(), orgID, limit)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnauthenticated):
			h.writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		case errors.Is(err, apperrors.ErrForbidden):
			h.writeError(w, http.StatusForbidden, "forbidden", err.Error())
		default:
			h.logger.Error("Audit history request failed",
				zap.String("org_id", orgID.String()),
				zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load activity log")
		}
		return
	}

	if entries == nil {
		entries = []*models.AuditLogEntry{}
	}
	if err := WriteJSON(w, http.StatusOK, AuditResponse{Entries: entries}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *AuditHandler) writeError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	if err := ErrorResponse(w, statusCode, errorCode, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
