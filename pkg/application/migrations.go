package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

const migrationsTableQuery = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		name       TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// MigrationManager applies the schema files each module registers via an
// embedded filesystem. Files run in lexical order and each file is applied
// at most once, tracked in schema_migrations.
type MigrationManager interface {
	RegisterSchema(fsys ...*embed.FS)
	Apply(ctx context.Context) error
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{pool: pool}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	schemas []*embed.FS
}

func (m *migrationManager) RegisterSchema(fsys ...*embed.FS) {
	m.schemas = append(m.schemas, fsys...)
}

func (m *migrationManager) Apply(ctx context.Context) error {
	if m.pool == nil {
		return errors.New("migrations: no database pool")
	}
	if _, err := m.pool.Exec(ctx, migrationsTableQuery); err != nil {
		return errors.Wrap(err, "create schema_migrations")
	}

	type schemaFile struct {
		name    string
		content []byte
	}
	var files []schemaFile
	for _, fsys := range m.schemas {
		err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			content, err := fsys.ReadFile(path)
			if err != nil {
				return err
			}
			files = append(files, schemaFile{name: path, content: content})
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "walk schema fs")
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	for _, f := range files {
		var applied bool
		err := m.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)", f.name,
		).Scan(&applied)
		if err != nil {
			return errors.Wrap(err, "check migration state")
		}
		if applied {
			continue
		}
		tx, err := m.pool.Begin(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, string(f.content)); err != nil {
			_ = tx.Rollback(ctx)
			return errors.Wrap(err, fmt.Sprintf("apply %s", f.name))
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", f.name); err != nil {
			_ = tx.Rollback(ctx)
			return errors.Wrap(err, "record migration")
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}
