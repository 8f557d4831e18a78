package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	coreuser "github.com/talentpipe/crm/modules/core/domain/aggregates/user"
	"github.com/talentpipe/crm/modules/crm/domain/aggregates/assignment"
	"github.com/talentpipe/crm/modules/crm/presentation/controllers/dtos"
	"github.com/talentpipe/crm/modules/crm/services"
	"github.com/talentpipe/crm/pkg/application"
	"github.com/talentpipe/crm/pkg/composables"
	"github.com/talentpipe/crm/pkg/middleware"
)

type AssignmentAPIController struct {
	app         application.Application
	assignments *services.AssignmentService
	basePath    string
}

func NewAssignmentAPIController(app application.Application) application.Controller {
	return &AssignmentAPIController{
		app:         app,
		assignments: app.Service(services.AssignmentService{}).(*services.AssignmentService),
		basePath:    "/api/assignments",
	}
}

func (c *AssignmentAPIController) Key() string {
	return c.basePath
}

func (c *AssignmentAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/team-members", c.TeamMembers).Methods(http.MethodGet)
	router.HandleFunc("/history/{entityType}/{entityId}", c.History).Methods(http.MethodGet)

	adminRouter := r.PathPrefix(c.basePath).Subrouter()
	adminRouter.Use(middleware.RequireAdmin())
	adminRouter.HandleFunc("/stats", c.Stats).Methods(http.MethodGet)

	writeRouter := r.PathPrefix(c.basePath).Subrouter()
	writeRouter.Use(middleware.WithTransaction())
	writeRouter.HandleFunc("/assign", c.Assign).Methods(http.MethodPost)
	writeRouter.HandleFunc("/bulk-assign", c.BulkAssign).Methods(http.MethodPost)

	adminWriteRouter := r.PathPrefix(c.basePath).Subrouter()
	adminWriteRouter.Use(middleware.RequireAdmin(), middleware.WithTransaction())
	adminWriteRouter.HandleFunc("/reassign-orphaned", c.ReassignOrphaned).Methods(http.MethodPost)
}

func (c *AssignmentAPIController) TeamMembers(w http.ResponseWriter, r *http.Request) {
	members, err := c.assignments.TeamMembers(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	out := make([]dtos.TeamMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, dtos.TeamMemberFromDomain(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *AssignmentAPIController) Assign(w http.ResponseWriter, r *http.Request) {
	var dto dtos.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ASSIGN_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeAPIError(w, r, http.StatusBadRequest, "ASSIGN_INVALID_INPUT", firstError(errs))
		return
	}
	entityType, err := assignment.ParseEntityType(dto.EntityType)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ASSIGN_INVALID_INPUT", err.Error())
		return
	}

	result, err := c.assignments.Assign(r.Context(), services.AssignCommand{
		EntityType: entityType,
		EntityID:   dto.EntityID,
		NewOwnerID: dto.NewOwnerID,
		AssignedBy: dto.AssignedBy,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": result.Message,
		"data": map[string]any{
			"entityId":   result.EntityID,
			"newOwnerId": result.NewOwnerID,
		},
	})
}

func (c *AssignmentAPIController) BulkAssign(w http.ResponseWriter, r *http.Request) {
	var dto dtos.BulkAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ASSIGN_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeAPIError(w, r, http.StatusBadRequest, "ASSIGN_INVALID_INPUT", firstError(errs))
		return
	}
	entityType, err := assignment.ParseEntityType(dto.EntityType)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ASSIGN_INVALID_INPUT", err.Error())
		return
	}

	result, err := c.assignments.BulkAssign(r.Context(), services.BulkAssignCommand{
		EntityIDs:  dto.EntityIDs,
		EntityType: entityType,
		NewOwnerID: dto.NewOwnerID,
		AssignedBy: dto.AssignedBy,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"updated_count":    result.UpdatedCount,
		"total_requested":  result.TotalRequested,
		"invalid_entities": result.InvalidEntities,
	})
}

func (c *AssignmentAPIController) History(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entityType, err := assignment.ParseEntityType(vars["entityType"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ASSIGN_INVALID_INPUT", err.Error())
		return
	}

	entries, err := c.assignments.History(r.Context(), entityType, vars["entityId"])
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	out := make([]dtos.LogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dtos.LogEntryFromDomain(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *AssignmentAPIController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.assignments.Stats(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.StatsFromDomain(stats))
}

func (c *AssignmentAPIController) ReassignOrphaned(w http.ResponseWriter, r *http.Request) {
	var dto dtos.ReassignOrphanedRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "ASSIGN_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeAPIError(w, r, http.StatusBadRequest, "ASSIGN_INVALID_INPUT", firstError(errs))
		return
	}

	result, err := c.assignments.ReassignOrphaned(r.Context(), dto.DeletedUserID, dto.NewOwnerID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Orphaned records reassigned",
		"data": map[string]any{
			"total_records": result.TotalRecords,
		},
	})
}

func (c *AssignmentAPIController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, assignment.ErrEntityNotFound):
		writeAPIError(w, r, http.StatusNotFound, assignment.ErrEntityNotFound.Code, "entity not found")
	case errors.Is(err, assignment.ErrInvalidUser):
		writeAPIError(w, r, http.StatusBadRequest, assignment.ErrInvalidUser.Code, "target user missing or inactive")
	case errors.Is(err, assignment.ErrInvalidInput):
		writeAPIError(w, r, http.StatusBadRequest, assignment.ErrInvalidInput.Code, err.Error())
	case errors.Is(err, coreuser.ErrNotFound):
		writeAPIError(w, r, http.StatusBadRequest, coreuser.ErrNotFound.Code, "user not found")
	case errors.Is(err, composables.ErrForbidden), errors.Is(err, composables.ErrNoUser):
		writeAPIError(w, r, http.StatusForbidden, "FORBIDDEN", "admin role required")
	default:
		if logger, ok := composables.TryUseLogger(r.Context()); ok {
			logger.WithError(err).Error("assignment request failed")
		}
		writeAPIError(w, r, http.StatusInternalServerError, "ASSIGN_INTERNAL", "internal error")
	}
}

func firstError(errs map[string]string) string {
	for _, field := range []string{"EntityType", "EntityID", "EntityIDs", "NewOwnerID", "AssignedBy", "DeletedUserID"} {
		if v := strings.TrimSpace(errs[field]); v != "" {
			return v
		}
	}
	for _, v := range errs {
		return v
	}
	return "validation failed"
}
