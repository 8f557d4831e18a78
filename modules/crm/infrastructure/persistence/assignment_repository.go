package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/talentpipe/crm/modules/crm/domain/aggregates/assignment"
	"github.com/talentpipe/crm/pkg/composables"
	"github.com/talentpipe/crm/pkg/repo"
)

const (
	logInsertQuery = `
        INSERT INTO assignment_logs (tenant_id, entity_type, entity_id, old_owner_id, new_owner_id, assigned_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	logBatchInsertQuery = `
        INSERT INTO assignment_logs (tenant_id, entity_type, entity_id, old_owner_id, new_owner_id, assigned_by) VALUES`

	logHistoryQuery = `
        SELECT id, tenant_id, entity_type, entity_id, old_owner_id, new_owner_id, assigned_by, created_at
        FROM assignment_logs
        WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
        ORDER BY created_at DESC, id DESC`
)

// entityTables binds each entity type to its table. All three share the
// (id, tenant_id, owner_id) shape this repository relies on.
var entityTables = map[assignment.EntityType]string{
	assignment.EntityTypePeople:    "people",
	assignment.EntityTypeCompanies: "companies",
	assignment.EntityTypeJobs:      "jobs",
}

type PgAssignmentRepository struct{}

func NewAssignmentRepository() assignment.Repository {
	return &PgAssignmentRepository{}
}

func (g *PgAssignmentRepository) EntityExists(ctx context.Context, entityType assignment.EntityType, entityID string) (bool, error) {
	table, err := tableFor(entityType)
	if err != nil {
		return false, err
	}
	tenantID, tx, err := tenantTx(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	q := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND tenant_id = $2)", table)
	if err := tx.QueryRow(ctx, q, entityID, tenantID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "entity exists")
	}
	return exists, nil
}

func (g *PgAssignmentRepository) GetOwner(ctx context.Context, entityType assignment.EntityType, entityID string) (*string, error) {
	table, err := tableFor(entityType)
	if err != nil {
		return nil, err
	}
	tenantID, tx, err := tenantTx(ctx)
	if err != nil {
		return nil, err
	}

	var owner pgtype.Text
	q := fmt.Sprintf("SELECT owner_id FROM %s WHERE id = $1 AND tenant_id = $2", table)
	if err := tx.QueryRow(ctx, q, entityID, tenantID).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, assignment.ErrEntityNotFound
		}
		return nil, errors.Wrap(err, "get owner")
	}
	return textPtr(owner), nil
}

func (g *PgAssignmentRepository) SetOwner(ctx context.Context, entityType assignment.EntityType, entityID string, ownerID *string) error {
	table, err := tableFor(entityType)
	if err != nil {
		return err
	}
	tenantID, tx, err := tenantTx(ctx)
	if err != nil {
		return err
	}

	q := fmt.Sprintf("UPDATE %s SET owner_id = $1, updated_at = NOW() WHERE id = $2 AND tenant_id = $3", table)
	tag, err := tx.Exec(ctx, q, ptrText(ownerID), entityID, tenantID)
	if err != nil {
		return errors.Wrap(err, "set owner")
	}
	if tag.RowsAffected() == 0 {
		return assignment.ErrEntityNotFound
	}
	return nil
}

func (g *PgAssignmentRepository) BulkSetOwner(ctx context.Context, entityType assignment.EntityType, entityIDs []string, ownerID string) ([]assignment.OwnerChange, error) {
	table, err := tableFor(entityType)
	if err != nil {
		return nil, err
	}
	tenantID, tx, err := tenantTx(ctx)
	if err != nil {
		return nil, err
	}

	// One set-based write; previous owners come back from the locked
	// subselect so the audit entries can record them.
	q := fmt.Sprintf(`
        UPDATE %[1]s t
        SET owner_id = $1, updated_at = NOW()
        FROM (
            SELECT id, owner_id AS old_owner_id
            FROM %[1]s
            WHERE id = ANY($2) AND tenant_id = $3
            FOR UPDATE
        ) prev
        WHERE t.id = prev.id AND t.tenant_id = $3
        RETURNING t.id, prev.old_owner_id`, table)

	rows, err := tx.Query(ctx, q, ownerID, entityIDs, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "bulk set owner")
	}
	defer rows.Close()

	var changes []assignment.OwnerChange
	for rows.Next() {
		var (
			id  string
			old pgtype.Text
		)
		if err := rows.Scan(&id, &old); err != nil {
			return nil, errors.Wrap(err, "scan owner change")
		}
		changes = append(changes, assignment.OwnerChange{EntityID: id, OldOwnerID: textPtr(old)})
	}
	return changes, rows.Err()
}

func (g *PgAssignmentRepository) ReassignOwned(ctx context.Context, entityType assignment.EntityType, fromUserID, toUserID string) ([]assignment.OwnerChange, error) {
	table, err := tableFor(entityType)
	if err != nil {
		return nil, err
	}
	tenantID, tx, err := tenantTx(ctx)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
        UPDATE %s
        SET owner_id = $1, updated_at = NOW()
        WHERE owner_id = $2 AND tenant_id = $3
        RETURNING id`, table)

	rows, err := tx.Query(ctx, q, toUserID, fromUserID, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "reassign owned")
	}
	defer rows.Close()

	var changes []assignment.OwnerChange
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan reassigned id")
		}
		from := fromUserID
		changes = append(changes, assignment.OwnerChange{EntityID: id, OldOwnerID: &from})
	}
	return changes, rows.Err()
}

func (g *PgAssignmentRepository) AppendLog(ctx context.Context, entry assignment.LogEntry) (assignment.LogEntry, error) {
	tenantID, tx, err := tenantTx(ctx)
	if err != nil {
		return assignment.LogEntry{}, err
	}

	var (
		id        int64
		createdAt pgtype.Timestamptz
	)
	err = tx.QueryRow(ctx, logInsertQuery,
		tenantID,
		string(entry.EntityType()),
		entry.EntityID(),
		ptrText(entry.OldOwnerID()),
		ptrText(entry.NewOwnerID()),
		entry.AssignedBy(),
	).Scan(&id, &createdAt)
	if err != nil {
		return assignment.LogEntry{}, errors.Wrap(err, "append log")
	}

	return assignment.HydrateLogEntry(
		tenantID,
		id,
		entry.EntityType(),
		entry.EntityID(),
		entry.OldOwnerID(),
		entry.NewOwnerID(),
		entry.AssignedBy(),
		createdAt.Time,
	), nil
}

func (g *PgAssignmentRepository) AppendLogs(ctx context.Context, entries []assignment.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tenantID, tx, err := tenantTx(ctx)
	if err != nil {
		return err
	}

	values := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		values = append(values, []interface{}{
			tenantID,
			string(e.EntityType()),
			e.EntityID(),
			ptrText(e.OldOwnerID()),
			ptrText(e.NewOwnerID()),
			e.AssignedBy(),
		})
	}
	q, args := repo.BatchInsertQueryN(strings.TrimSpace(logBatchInsertQuery), values)
	if _, err := tx.Exec(ctx, q, args...); err != nil {
		return errors.Wrap(err, "append logs")
	}
	return nil
}

func (g *PgAssignmentRepository) HistoryFor(ctx context.Context, entityType assignment.EntityType, entityID string) ([]assignment.LogEntry, error) {
	tenantID, tx, err := tenantTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, logHistoryQuery, tenantID, string(entityType), entityID)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	out := make([]assignment.LogEntry, 0)
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (g *PgAssignmentRepository) Stats(ctx context.Context) (assignment.Stats, error) {
	tenantID, tx, err := tenantTx(ctx)
	if err != nil {
		return assignment.Stats{}, err
	}

	union := make([]string, 0, len(entityTables))
	for _, t := range assignment.EntityTypes() {
		union = append(union, fmt.Sprintf("SELECT owner_id FROM %s WHERE tenant_id = $1", entityTables[t]))
	}
	allOwners := strings.Join(union, " UNION ALL ")

	var stats assignment.Stats
	countQuery := fmt.Sprintf(`
        SELECT
            COUNT(*) FILTER (WHERE owner_id IS NOT NULL),
            COUNT(*) FILTER (WHERE owner_id IS NULL)
        FROM (%s) owners`, allOwners)
	if err := tx.QueryRow(ctx, countQuery, tenantID).Scan(&stats.TotalAssigned, &stats.Unassigned); err != nil {
		return assignment.Stats{}, errors.Wrap(err, "count assignments")
	}

	byUserQuery := fmt.Sprintf(`
        SELECT u.id, u.full_name, COUNT(*)
        FROM (%s) owners
        JOIN user_profiles u ON u.id = owners.owner_id AND u.tenant_id = $1
        WHERE owners.owner_id IS NOT NULL
        GROUP BY u.id, u.full_name
        ORDER BY COUNT(*) DESC, u.full_name`, allOwners)
	rows, err := tx.Query(ctx, byUserQuery, tenantID)
	if err != nil {
		return assignment.Stats{}, errors.Wrap(err, "count by user")
	}
	defer rows.Close()

	for rows.Next() {
		var s assignment.UserStat
		if err := rows.Scan(&s.UserID, &s.UserName, &s.Count); err != nil {
			return assignment.Stats{}, errors.Wrap(err, "scan user stat")
		}
		stats.ByUser = append(stats.ByUser, s)
	}
	return stats, rows.Err()
}

func tableFor(entityType assignment.EntityType) (string, error) {
	table, ok := entityTables[entityType]
	if !ok {
		return "", assignment.ErrInvalidInput.WithDetails("unknown entity type: " + string(entityType))
	}
	return table, nil
}

func tenantTx(ctx context.Context) (uuid.UUID, repo.Tx, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return uuid.Nil, nil, errors.Wrap(err, "failed to get tenant from context")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return tenantID, tx, nil
}

func scanLogEntry(row pgx.Row) (assignment.LogEntry, error) {
	var (
		id         int64
		tenantID   pgtype.UUID
		entityType string
		entityID   string
		oldOwner   pgtype.Text
		newOwner   pgtype.Text
		assignedBy string
		createdAt  pgtype.Timestamptz
	)
	if err := row.Scan(&id, &tenantID, &entityType, &entityID, &oldOwner, &newOwner, &assignedBy, &createdAt); err != nil {
		return assignment.LogEntry{}, errors.Wrap(err, "scan log entry")
	}
	tid := uuid.Nil
	if tenantID.Valid {
		tid = tenantID.Bytes
	}
	return assignment.HydrateLogEntry(
		tid,
		id,
		assignment.EntityType(entityType),
		entityID,
		textPtr(oldOwner),
		textPtr(newOwner),
		assignedBy,
		createdAt.Time,
	), nil
}

func textPtr(v pgtype.Text) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func ptrText(v *string) pgtype.Text {
	if v == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *v, Valid: true}
}
