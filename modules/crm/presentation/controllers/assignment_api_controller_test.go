package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpipe/crm/modules/core/domain/aggregates/user"
	"github.com/talentpipe/crm/modules/crm/domain/aggregates/assignment"
	"github.com/talentpipe/crm/modules/crm/presentation/controllers"
	"github.com/talentpipe/crm/modules/crm/services"
	"github.com/talentpipe/crm/pkg/application"
	"github.com/talentpipe/crm/pkg/composables"
	"github.com/talentpipe/crm/pkg/eventbus"
)

var testTenant = uuid.MustParse("0d3cb1f2-7a88-4a0d-9a63-54c8e2b9d101")

type stubTx struct{ pgx.Tx }

type memUserRepo struct {
	users map[string]user.User
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetActive(_ context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		if u.IsActive() {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	m.users[u.ID()] = u
	return u, nil
}

func (m *memUserRepo) Deactivate(_ context.Context, id string) error {
	u, ok := m.users[id]
	if !ok {
		return user.ErrNotFound
	}
	m.users[id] = u.Deactivated()
	return nil
}

type memAssignmentRepo struct {
	entities map[assignment.EntityType]map[string]*string
	logs     []assignment.LogEntry
	nextID   int64
}

func newMemAssignmentRepo() *memAssignmentRepo {
	entities := make(map[assignment.EntityType]map[string]*string)
	for _, et := range assignment.EntityTypes() {
		entities[et] = make(map[string]*string)
	}
	return &memAssignmentRepo{entities: entities}
}

func (m *memAssignmentRepo) EntityExists(_ context.Context, et assignment.EntityType, id string) (bool, error) {
	_, ok := m.entities[et][id]
	return ok, nil
}

func (m *memAssignmentRepo) GetOwner(_ context.Context, et assignment.EntityType, id string) (*string, error) {
	owner, ok := m.entities[et][id]
	if !ok {
		return nil, assignment.ErrEntityNotFound
	}
	return owner, nil
}

func (m *memAssignmentRepo) SetOwner(_ context.Context, et assignment.EntityType, id string, ownerID *string) error {
	if _, ok := m.entities[et][id]; !ok {
		return assignment.ErrEntityNotFound
	}
	m.entities[et][id] = ownerID
	return nil
}

func (m *memAssignmentRepo) BulkSetOwner(_ context.Context, et assignment.EntityType, ids []string, ownerID string) ([]assignment.OwnerChange, error) {
	changes := make([]assignment.OwnerChange, 0, len(ids))
	for _, id := range ids {
		old, ok := m.entities[et][id]
		if !ok {
			continue
		}
		v := ownerID
		m.entities[et][id] = &v
		changes = append(changes, assignment.OwnerChange{EntityID: id, OldOwnerID: old})
	}
	return changes, nil
}

func (m *memAssignmentRepo) ReassignOwned(_ context.Context, et assignment.EntityType, fromUserID, toUserID string) ([]assignment.OwnerChange, error) {
	var changes []assignment.OwnerChange
	for id, owner := range m.entities[et] {
		if owner == nil || *owner != fromUserID {
			continue
		}
		v := toUserID
		m.entities[et][id] = &v
		changes = append(changes, assignment.OwnerChange{EntityID: id, OldOwnerID: owner})
	}
	return changes, nil
}

func (m *memAssignmentRepo) AppendLog(_ context.Context, entry assignment.LogEntry) (assignment.LogEntry, error) {
	m.nextID++
	hydrated := assignment.HydrateLogEntry(
		entry.TenantID(), m.nextID, entry.EntityType(), entry.EntityID(),
		entry.OldOwnerID(), entry.NewOwnerID(), entry.AssignedBy(), time.Now(),
	)
	m.logs = append(m.logs, hydrated)
	return hydrated, nil
}

func (m *memAssignmentRepo) AppendLogs(ctx context.Context, entries []assignment.LogEntry) error {
	for _, e := range entries {
		if _, err := m.AppendLog(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (m *memAssignmentRepo) HistoryFor(_ context.Context, et assignment.EntityType, id string) ([]assignment.LogEntry, error) {
	out := make([]assignment.LogEntry, 0)
	for i := len(m.logs) - 1; i >= 0; i-- {
		e := m.logs[i]
		if e.EntityType() == et && e.EntityID() == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAssignmentRepo) Stats(_ context.Context) (assignment.Stats, error) {
	stats := assignment.Stats{}
	counts := make(map[string]int64)
	for _, table := range m.entities {
		for _, owner := range table {
			if owner == nil {
				stats.Unassigned++
				continue
			}
			stats.TotalAssigned++
			counts[*owner]++
		}
	}
	for id, count := range counts {
		stats.ByUser = append(stats.ByUser, assignment.UserStat{UserID: id, Count: count})
	}
	return stats, nil
}

type apiFixture struct {
	router *mux.Router
	repo   *memAssignmentRepo
	users  *memUserRepo
	actor  user.User
}

func newAPIFixture(t *testing.T, actor user.User) *apiFixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := newMemAssignmentRepo()
	users := &memUserRepo{users: map[string]user.User{
		"u-alice": user.New(testTenant, "u-alice", "Alice Sattarova", "alice@example.com", user.RoleUser),
		"u-admin": user.New(testTenant, "u-admin", "Admin", "admin@example.com", user.RoleAdmin),
	}}

	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	app.RegisterServices(services.NewAssignmentService(repo, users, app.EventPublisher()))

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := composables.WithTx(r.Context(), stubTx{})
			ctx = composables.WithTenantID(ctx, testTenant)
			ctx = composables.WithUser(ctx, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	controllers.NewAssignmentAPIController(app).Register(router)

	return &apiFixture{router: router, repo: repo, users: users, actor: actor}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAssignEndpoint(t *testing.T) {
	f := newAPIFixture(t, user.New(testTenant, "u-admin", "Admin", "admin@example.com", user.RoleAdmin))
	f.repo.entities[assignment.EntityTypePeople]["p-1"] = nil

	rec := f.do(t, http.MethodPost, "/api/assignments/assign", map[string]any{
		"entityType": "people",
		"entityId":   "p-1",
		"newOwnerId": "u-alice",
		"assignedBy": "u-admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Record assigned to Alice Sattarova", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "p-1", data["entityId"])
	assert.Equal(t, "u-alice", data["newOwnerId"])
}

func TestAssignEndpoint_EmptyOwnerUnassigns(t *testing.T) {
	f := newAPIFixture(t, user.New(testTenant, "u-admin", "Admin", "admin@example.com", user.RoleAdmin))
	owner := "u-alice"
	f.repo.entities[assignment.EntityTypePeople]["p-1"] = &owner

	rec := f.do(t, http.MethodPost, "/api/assignments/assign", map[string]any{
		"entityType": "people",
		"entityId":   "p-1",
		"newOwnerId": "",
		"assignedBy": "u-admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Record unassigned", body["message"])
	assert.Nil(t, f.repo.entities[assignment.EntityTypePeople]["p-1"])
}

func TestAssignEndpoint_Errors(t *testing.T) {
	f := newAPIFixture(t, user.New(testTenant, "u-admin", "Admin", "admin@example.com", user.RoleAdmin))
	f.repo.entities[assignment.EntityTypePeople]["p-1"] = nil

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/assignments/assign", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "ASSIGN_INVALID_JSON", decodeBody(t, rec)["code"])
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/assignments/assign", map[string]any{
			"entityType": "people",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "ASSIGN_INVALID_INPUT", decodeBody(t, rec)["code"])
	})

	t.Run("unknown entity type", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/assignments/assign", map[string]any{
			"entityType": "campaigns",
			"entityId":   "p-1",
			"assignedBy": "u-admin",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("entity not found", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/assignments/assign", map[string]any{
			"entityType": "people",
			"entityId":   "missing",
			"newOwnerId": "u-alice",
			"assignedBy": "u-admin",
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "ASSIGN_ENTITY_NOT_FOUND", decodeBody(t, rec)["code"])
	})

	t.Run("invalid owner", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/assignments/assign", map[string]any{
			"entityType": "people",
			"entityId":   "p-1",
			"newOwnerId": "u-nobody",
			"assignedBy": "u-admin",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "ASSIGN_INVALID_USER", decodeBody(t, rec)["code"])
	})
}

func TestBulkAssignEndpoint(t *testing.T) {
	f := newAPIFixture(t, user.New(testTenant, "u-admin", "Admin", "admin@example.com", user.RoleAdmin))
	f.repo.entities[assignment.EntityTypeJobs]["j-1"] = nil
	f.repo.entities[assignment.EntityTypeJobs]["j-2"] = nil

	rec := f.do(t, http.MethodPost, "/api/assignments/bulk-assign", map[string]any{
		"entityIds":  []string{"j-1", "j-ghost", "j-2"},
		"entityType": "jobs",
		"newOwnerId": "u-alice",
		"assignedBy": "u-admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["updated_count"])
	assert.Equal(t, float64(3), body["total_requested"])
	assert.Equal(t, []any{"j-ghost"}, body["invalid_entities"])
}

func TestBulkAssignEndpoint_EmptyIDs(t *testing.T) {
	f := newAPIFixture(t, user.New(testTenant, "u-admin", "Admin", "admin@example.com", user.RoleAdmin))

	rec := f.do(t, http.MethodPost, "/api/assignments/bulk-assign", map[string]any{
		"entityIds":  []string{},
		"entityType": "jobs",
		"newOwnerId": "u-alice",
		"assignedBy": "u-admin",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ASSIGN_INVALID_INPUT", decodeBody(t, rec)["code"])
}

func TestTeamMembersEndpoint(t *testing.T) {
	f := newAPIFixture(t, user.New(testTenant, "u-alice", "Alice Sattarova", "alice@example.com", user.RoleUser))

	rec := f.do(t, http.MethodGet, "/api/assignments/team-members", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var members []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	assert.Len(t, members, 2)
}

func TestHistoryEndpoint(t *testing.T) {
	f := newAPIFixture(t, user.New(testTenant, "u-admin", "Admin", "admin@example.com", user.RoleAdmin))
	f.repo.entities[assignment.EntityTypeCompanies]["c-1"] = nil

	rec := f.do(t, http.MethodPost, "/api/assignments/assign", map[string]any{
		"entityType": "companies",
		"entityId":   "c-1",
		"newOwnerId": "u-alice",
		"assignedBy": "u-admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/assignments/history/companies/c-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "c-1", entries[0]["entity_id"])
	assert.Equal(t, "u-alice", entries[0]["new_owner_id"])
	assert.Nil(t, entries[0]["old_owner_id"])

	rec = f.do(t, http.MethodGet, "/api/assignments/history/companies/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsEndpoint_AdminGate(t *testing.T) {
	owner := "u-alice"

	adminFixture := newAPIFixture(t, user.New(testTenant, "u-admin", "Admin", "admin@example.com", user.RoleAdmin))
	adminFixture.repo.entities[assignment.EntityTypePeople]["p-1"] = &owner
	adminFixture.repo.entities[assignment.EntityTypePeople]["p-2"] = nil

	rec := adminFixture.do(t, http.MethodGet, "/api/assignments/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["totalAssigned"])
	assert.Equal(t, float64(1), body["unassigned"])

	memberFixture := newAPIFixture(t, user.New(testTenant, "u-alice", "Alice Sattarova", "alice@example.com", user.RoleUser))
	rec = memberFixture.do(t, http.MethodGet, "/api/assignments/stats", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReassignOrphanedEndpoint(t *testing.T) {
	f := newAPIFixture(t, user.New(testTenant, "u-admin", "Admin", "admin@example.com", user.RoleAdmin))
	gone := "u-gone"
	f.repo.entities[assignment.EntityTypePeople]["p-1"] = &gone
	f.repo.entities[assignment.EntityTypeJobs]["j-1"] = &gone

	rec := f.do(t, http.MethodPost, "/api/assignments/reassign-orphaned", map[string]any{
		"deletedUserId": "u-gone",
		"newOwnerId":    "u-alice",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total_records"])
	assert.Equal(t, "u-alice", *f.repo.entities[assignment.EntityTypePeople]["p-1"])

	memberFixture := newAPIFixture(t, user.New(testTenant, "u-alice", "Alice Sattarova", "alice@example.com", user.RoleUser))
	rec = memberFixture.do(t, http.MethodPost, "/api/assignments/reassign-orphaned", map[string]any{
		"deletedUserId": "u-gone",
		"newOwnerId":    "u-alice",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}
