package persistence

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/talentpipe/crm/modules/core/domain/aggregates/user"
	"github.com/talentpipe/crm/pkg/composables"
)

const (
	userFindQuery = `
        SELECT
            u.tenant_id,
            u.id,
            u.full_name,
            u.email,
            u.role,
            u.is_active,
            u.avatar_url,
            u.created_at,
            u.updated_at
        FROM user_profiles u`

	userInsertQuery = `
        INSERT INTO user_profiles (tenant_id, id, full_name, email, role, is_active, avatar_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING tenant_id, id, full_name, email, role, is_active, avatar_url, created_at, updated_at`

	userDeactivateQuery = `UPDATE user_profiles SET is_active = false, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (g *PgUserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to get tenant from context")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}

	row := tx.QueryRow(ctx, userFindQuery+" WHERE u.id = $1 AND u.tenant_id = $2", strings.TrimSpace(id), tenantID)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "query user")
	}
	return u, nil
}

func (g *PgUserRepository) GetActive(ctx context.Context) ([]user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tenant from context")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, userFindQuery+" WHERE u.is_active = true AND u.tenant_id = $1 ORDER BY u.full_name", tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "query active users")
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (g *PgUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to get tenant from context")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}

	row := tx.QueryRow(ctx, userInsertQuery,
		tenantID,
		u.ID(),
		u.FullName(),
		u.Email(),
		string(u.Role()),
		u.IsActive(),
		nullString(u.AvatarURL()),
	)
	created, err := scanUser(row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "create user")
	}
	return created, nil
}

func (g *PgUserRepository) Deactivate(ctx context.Context, id string) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get tenant from context")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, userDeactivateQuery, strings.TrimSpace(id), tenantID)
	if err != nil {
		return errors.Wrap(err, "deactivate user")
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		tenantID  pgtype.UUID
		id        string
		fullName  string
		email     string
		role      string
		isActive  bool
		avatarURL pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&tenantID, &id, &fullName, &email, &role, &isActive, &avatarURL, &createdAt, &updatedAt); err != nil {
		return user.User{}, err
	}
	tid := uuid.Nil
	if tenantID.Valid {
		tid = tenantID.Bytes
	}
	return user.Hydrate(
		tid,
		id,
		fullName,
		email,
		user.Role(role),
		isActive,
		avatarURL.String,
		createdAt.Time,
		updatedAt.Time,
	), nil
}

func nullString(v string) pgtype.Text {
	if strings.TrimSpace(v) == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: v, Valid: true}
}
