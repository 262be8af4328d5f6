package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/draft"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/orgtree"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/treepatch"
	"github.com/iota-uz/orgchart/modules/orgchart/presentation/controllers/dtos"
	"github.com/iota-uz/orgchart/modules/orgchart/services"
	"github.com/iota-uz/orgchart/pkg/application"
	"github.com/iota-uz/orgchart/pkg/httpapi"
	"github.com/iota-uz/orgchart/pkg/middleware"
	"github.com/iota-uz/orgchart/pkg/serrors"
)

type OrgChartAPIController struct {
	app       application.Application
	drafts    *services.DraftService
	org       *services.OrgService
	apiPrefix string
}

func NewOrgChartAPIController(app application.Application) application.Controller {
	return &OrgChartAPIController{
		app:       app,
		drafts:    app.Service(services.DraftService{}).(*services.DraftService),
		org:       app.Service(services.OrgService{}).(*services.OrgService),
		apiPrefix: "/orgchart/api",
	}
}

func (c *OrgChartAPIController) Key() string {
	return c.apiPrefix
}

func (c *OrgChartAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(middleware.RequireTenant())

	api.HandleFunc("/tree", c.GetTree).Methods(http.MethodGet)
	api.HandleFunc("/squads", c.GetSquads).Methods(http.MethodGet)
	api.HandleFunc("/departments", c.GetDepartments).Methods(http.MethodGet)

	api.HandleFunc("/drafts", c.ListDrafts).Methods(http.MethodGet)
	api.HandleFunc("/drafts", c.CreateDraft).Methods(http.MethodPost)
	api.HandleFunc("/drafts/{id}", c.GetDraft).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{id}", c.RenameDraft).Methods(http.MethodPatch)
	api.HandleFunc("/drafts/{id}", c.DeleteDraft).Methods(http.MethodDelete)
	api.HandleFunc("/drafts/{id}/changes", c.AddChange).Methods(http.MethodPost)
	api.HandleFunc("/drafts/{id}/changes/{userID}", c.RemoveChange).Methods(http.MethodDelete)
	api.HandleFunc("/drafts/{id}/preview", c.PreviewDraft).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{id}/publish", c.PublishDraft).Methods(http.MethodPost)
	api.HandleFunc("/drafts/{id}/archive", c.ArchiveDraft).Methods(http.MethodPost)
}

func (c *OrgChartAPIController) GetTree(w http.ResponseWriter, r *http.Request) {
	forest, err := c.org.GetOrgTree(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, forest)
}

func (c *OrgChartAPIController) GetSquads(w http.ResponseWriter, r *http.Request) {
	squads, err := c.org.GetSquads(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if squads == nil {
		squads = []orgtree.Squad{}
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, squads)
}

func (c *OrgChartAPIController) GetDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := c.org.GetDepartments(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if departments == nil {
		departments = []string{}
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, departments)
}

func (c *OrgChartAPIController) ListDrafts(w http.ResponseWriter, r *http.Request) {
	params := draft.FindParams{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	for _, status := range r.URL.Query()["status"] {
		s := draft.Status(status)
		if !s.IsValid() {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_STATUS", "unknown draft status: "+status, nil)
			return
		}
		params.Statuses = append(params.Statuses, s)
	}

	summaries, total, err := c.drafts.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if summaries == nil {
		summaries = []*draft.Summary{}
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"drafts": summaries,
		"total":  total,
	})
}

func (c *OrgChartAPIController) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CreateDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if err := dto.Ok(); err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error(), nil)
		return
	}
	creatorID, err := uuid.Parse(dto.CreatorID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "creator_id is not a valid uuid", nil)
		return
	}

	created, err := c.drafts.Create(r.Context(), services.CreateDraftParams{
		Name:        dto.Name,
		Description: dto.Description,
		CreatorID:   creatorID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, draftPayload(created))
}

func (c *OrgChartAPIController) GetDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	d, err := c.drafts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, draftPayload(d))
}

func (c *OrgChartAPIController) RenameDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var dto dtos.RenameDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if err := dto.Ok(); err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error(), nil)
		return
	}
	if err := c.drafts.Rename(r.Context(), id, dto.Name, dto.Description); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *OrgChartAPIController) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	force := r.URL.Query().Get("force") == "true"
	if err := c.drafts.Delete(r.Context(), id, force); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *OrgChartAPIController) AddChange(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var dto dtos.ChangeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	if err := dto.Ok(); err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error(), nil)
		return
	}
	userID, err := uuid.Parse(dto.UserID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "user_id is not a valid uuid", nil)
		return
	}
	fields, err := dto.Fields()
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error(), nil)
		return
	}

	change, err := c.drafts.AddChange(r.Context(), id, fields, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, change)
}

func (c *OrgChartAPIController) RemoveChange(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	userID, err := uuid.Parse(mux.Vars(r)["userID"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "userID is not a valid uuid", nil)
		return
	}
	if err := c.drafts.RemoveChange(r.Context(), id, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *OrgChartAPIController) PreviewDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	forest, warnings, err := c.drafts.Preview(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if warnings == nil {
		warnings = []treepatch.Warning{}
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tree":     forest,
		"warnings": warnings,
	})
}

func (c *OrgChartAPIController) PublishDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	published, err := c.drafts.Publish(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, draftPayload(published))
}

func (c *OrgChartAPIController) ArchiveDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	archived, err := c.drafts.Archive(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, draftPayload(archived))
}

// draftPayload serializes a draft together with its changes, which are
// excluded from the entity's own JSON shape.
func draftPayload(d *draft.Draft) map[string]interface{} {
	return map[string]interface{}{
		"draft":   d,
		"changes": d.ChangeSet().All(),
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", name+" is not a valid uuid", nil)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

func isFieldRequired(err error) bool {
	var base *serrors.BaseError
	return errors.As(err, &base) && base.Code == "FIELD_REQUIRED"
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draft.ErrNotFound), errors.Is(err, services.ErrUserNotFound):
		_ = httpapi.WriteDomainError(w, http.StatusNotFound, err)
	case errors.Is(err, draft.ErrInvalidState):
		_ = httpapi.WriteDomainError(w, http.StatusConflict, err)
	case errors.Is(err, orgtree.ErrCycleDetected):
		_ = httpapi.WriteDomainError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, orgtree.ErrInvalidRole), errors.Is(err, orgtree.ErrUnknownSquad), errors.Is(err, orgtree.ErrDuplicateUser):
		_ = httpapi.WriteDomainError(w, http.StatusUnprocessableEntity, err)
	case isFieldRequired(err):
		_ = httpapi.WriteDomainError(w, http.StatusUnprocessableEntity, err)
	default:
		_ = httpapi.WriteDomainError(w, http.StatusInternalServerError, err)
	}
}
