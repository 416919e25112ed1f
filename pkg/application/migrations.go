package application

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/pressly/goose/v3"

	// Postgres driver for the migration connection; runtime queries use pgx.
	_ "github.com/lib/pq"
)

// MigrationManager collects the goose migration filesystems modules register.
// Modules own disjoint version ranges so the shared version table stays
// consistent (org 001xx, evaluation 002xx).
type MigrationManager struct {
	schemas []fs.FS
}

func NewMigrationManager() *MigrationManager {
	return &MigrationManager{}
}

func (m *MigrationManager) RegisterSchema(fsys fs.FS) {
	m.schemas = append(m.schemas, fsys)
}

// Apply runs every registered migration set against the database.
func (m *MigrationManager) Apply(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	for _, fsys := range m.schemas {
		provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
		if err != nil {
			return err
		}
		if _, err := provider.Up(ctx); err != nil {
			return err
		}
	}
	return nil
}
