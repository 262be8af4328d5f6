package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/changeset"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/draft"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/orgtree"
	"github.com/iota-uz/orgchart/modules/orgchart/services"
	"github.com/iota-uz/orgchart/pkg/application"
	"github.com/iota-uz/orgchart/pkg/eventbus"
	"github.com/iota-uz/orgchart/pkg/httpapi"
)

var (
	testTenantID     = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	testAdminID      = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testSupervisorID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	testEmployeeID   = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	testCreatorID    = uuid.MustParse("66666666-6666-6666-6666-666666666666")
)

type stubOrgRepo struct{}

func (stubOrgRepo) GetUsers(context.Context) ([]orgtree.User, error) {
	return []orgtree.User{
		{ID: testAdminID, DisplayName: "Ada", Role: orgtree.RoleAdmin},
		{ID: testSupervisorID, DisplayName: "Sam", Role: orgtree.RoleSupervisor, SupervisorID: &testAdminID},
		{ID: testEmployeeID, DisplayName: "Eve", Role: orgtree.RoleEmployee, SupervisorID: &testSupervisorID},
	}, nil
}

func (stubOrgRepo) GetSquads(context.Context) ([]orgtree.Squad, error) {
	return []orgtree.Squad{}, nil
}

func (stubOrgRepo) GetDepartments(context.Context) ([]string, error) {
	return []string{"Engineering"}, nil
}

type stubDraftRepo struct {
	drafts map[uuid.UUID]*draft.Draft
	order  []uuid.UUID
}

func newStubDraftRepo() *stubDraftRepo {
	return &stubDraftRepo{drafts: map[uuid.UUID]*draft.Draft{}}
}

func (r *stubDraftRepo) Create(_ context.Context, d *draft.Draft) (*draft.Draft, error) {
	stored := *d
	stored.ID = uuid.New()
	stored.TenantID = testTenantID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.drafts[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	return &stored, nil
}

func (r *stubDraftRepo) GetByID(_ context.Context, id uuid.UUID) (*draft.Draft, error) {
	d, ok := r.drafts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", draft.ErrNotFound, id)
	}
	copied := *d
	copied.Changes = d.ChangeSet().Clone()
	return &copied, nil
}

func (r *stubDraftRepo) List(_ context.Context, params draft.FindParams) ([]*draft.Summary, int64, error) {
	var out []*draft.Summary
	for _, id := range r.order {
		d := r.drafts[id]
		if len(params.Statuses) > 0 {
			matched := false
			for _, s := range params.Statuses {
				if s == d.Status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, &draft.Summary{Draft: *d, ChangeCount: d.ChangeSet().Len()})
	}
	return out, int64(len(out)), nil
}

func (r *stubDraftRepo) Rename(_ context.Context, id uuid.UUID, name string, description *string) error {
	d, ok := r.drafts[id]
	if !ok {
		return fmt.Errorf("%w: %s", draft.ErrNotFound, id)
	}
	d.Name = name
	d.Description = description
	return nil
}

func (r *stubDraftRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.drafts[id]; !ok {
		return fmt.Errorf("%w: %s", draft.ErrNotFound, id)
	}
	delete(r.drafts, id)
	return nil
}

func (r *stubDraftRepo) SaveChange(_ context.Context, draftID uuid.UUID, change *changeset.Change) error {
	d, ok := r.drafts[draftID]
	if !ok {
		return fmt.Errorf("%w: %s", draft.ErrNotFound, draftID)
	}
	d.Changes = changeset.FromChanges(append(d.ChangeSet().All(), change))
	return nil
}

func (r *stubDraftRepo) DeleteChange(_ context.Context, draftID, userID uuid.UUID) error {
	d, ok := r.drafts[draftID]
	if !ok {
		return fmt.Errorf("%w: %s", draft.ErrNotFound, draftID)
	}
	d.ChangeSet().Remove(userID)
	return nil
}

func (r *stubDraftRepo) Publish(_ context.Context, id uuid.UUID) (*draft.Draft, error) {
	d, ok := r.drafts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", draft.ErrNotFound, id)
	}
	now := time.Now()
	d.Status = draft.StatusPublished
	d.PublishedAt = &now
	return r.GetByID(context.Background(), id)
}

func (r *stubDraftRepo) Archive(_ context.Context, id uuid.UUID) (*draft.Draft, error) {
	d, ok := r.drafts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", draft.ErrNotFound, id)
	}
	d.Status = draft.StatusArchived
	return r.GetByID(context.Background(), id)
}

func setupRouter(t *testing.T) *mux.Router {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	app.RegisterServices(
		services.NewOrgService(stubOrgRepo{}),
		services.NewDraftService(newStubDraftRepo(), stubOrgRepo{}, app.EventPublisher()),
	)

	router := mux.NewRouter()
	NewOrgChartAPIController(app).Register(router)
	return router
}

func doRequest(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Tenant-ID", testTenantID.String())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpapi.ErrorEnvelope {
	t.Helper()
	var envelope httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func createDraftViaAPI(t *testing.T, router *mux.Router) uuid.UUID {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/orgchart/api/drafts", map[string]any{
		"name":       "Q3 reorg",
		"creator_id": testCreatorID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var payload struct {
		Draft draft.Draft `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEqual(t, uuid.Nil, payload.Draft.ID)
	return payload.Draft.ID
}

func TestOrgChartAPITenantScoping(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/orgchart/api/tree", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/orgchart/api/tree", nil)
	req.Header.Set("X-Tenant-ID", "not-a-uuid")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrgChartAPITree(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/orgchart/api/tree", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var forest orgtree.Forest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forest))
	require.Len(t, forest.Roots, 1)
	require.Equal(t, testAdminID, forest.Roots[0].User.ID)
}

func TestOrgChartAPIDirectories(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/orgchart/api/squads", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/orgchart/api/departments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `["Engineering"]`, rec.Body.String())
}

func TestOrgChartAPICreateDraft(t *testing.T) {
	router := setupRouter(t)

	t.Run("created", func(t *testing.T) {
		createDraftViaAPI(t, router)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orgchart/api/drafts", bytes.NewBufferString("{"))
		req.Header.Set("X-Tenant-ID", testTenantID.String())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "INVALID_BODY", decodeError(t, rec).Code)
	})

	t.Run("missing name", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/orgchart/api/drafts", map[string]any{
			"creator_id": testCreatorID.String(),
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, "VALIDATION_FAILED", decodeError(t, rec).Code)
	})
}

func TestOrgChartAPIGetDraft(t *testing.T) {
	router := setupRouter(t)

	t.Run("malformed id", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/orgchart/api/drafts/nope", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "INVALID_ID", decodeError(t, rec).Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/orgchart/api/drafts/"+uuid.NewString(), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "ORG_DRAFT_NOT_FOUND", decodeError(t, rec).Code)
	})
}

func TestOrgChartAPIListDrafts(t *testing.T) {
	router := setupRouter(t)
	createDraftViaAPI(t, router)

	t.Run("lists with totals", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/orgchart/api/drafts", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var payload struct {
			Drafts []draft.Summary `json:"drafts"`
			Total  int64           `json:"total"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		require.EqualValues(t, 1, payload.Total)
		require.Len(t, payload.Drafts, 1)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/orgchart/api/drafts?status=pending", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "INVALID_STATUS", decodeError(t, rec).Code)
	})
}

func TestOrgChartAPIChanges(t *testing.T) {
	router := setupRouter(t)
	draftID := createDraftViaAPI(t, router)
	base := "/orgchart/api/drafts/" + draftID.String()

	t.Run("rejects cycle", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, base+"/changes", map[string]any{
			"user_id":           testSupervisorID.String(),
			"new_supervisor_id": testEmployeeID.String(),
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, "ORG_CYCLE_DETECTED", decodeError(t, rec).Code)
	})

	t.Run("adds change", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, base+"/changes", map[string]any{
			"user_id":           testEmployeeID.String(),
			"new_supervisor_id": testAdminID.String(),
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var change changeset.Change
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &change))
		require.Equal(t, testEmployeeID, change.UserID)
		require.Equal(t, testAdminID, *change.NewSupervisorID)
		require.Equal(t, testSupervisorID, *change.OriginalSupervisorID)
	})

	t.Run("rejects admin role", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, base+"/changes", map[string]any{
			"user_id":  testEmployeeID.String(),
			"new_role": "admin",
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, "VALIDATION_FAILED", decodeError(t, rec).Code)
	})

	t.Run("preview reflects pending changes", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, base+"/preview", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var payload struct {
			Tree     orgtree.Forest `json:"tree"`
			Warnings []any          `json:"warnings"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		require.Empty(t, payload.Warnings)

		moved := payload.Tree.Find(testEmployeeID)
		require.NotNil(t, moved)
		require.Equal(t, testAdminID, *moved.User.SupervisorID)
	})

	t.Run("removes change", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodDelete, base+"/changes/"+testEmployeeID.String(), nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestOrgChartAPIPublish(t *testing.T) {
	router := setupRouter(t)
	draftID := createDraftViaAPI(t, router)
	base := "/orgchart/api/drafts/" + draftID.String()

	rec := doRequest(t, router, http.MethodPost, base+"/publish", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Publishing is one-way; the second attempt conflicts.
	rec = doRequest(t, router, http.MethodPost, base+"/publish", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "ORG_DRAFT_INVALID_STATE", decodeError(t, rec).Code)

	// Changes are frozen after publish.
	rec = doRequest(t, router, http.MethodPost, base+"/changes", map[string]any{
		"user_id":        testEmployeeID.String(),
		"new_department": "Platform",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestOrgChartAPIArchiveAndDelete(t *testing.T) {
	router := setupRouter(t)
	draftID := createDraftViaAPI(t, router)
	base := "/orgchart/api/drafts/" + draftID.String()

	rec := doRequest(t, router, http.MethodPost, base+"/archive", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Draft draft.Draft `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, draft.StatusArchived, payload.Draft.Status)

	// Archived drafts survive deletion attempts without force.
	rec = doRequest(t, router, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, base+"?force=true", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
