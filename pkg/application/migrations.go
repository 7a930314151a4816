package application

import (
	"context"
	"database/sql"
	"io/fs"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/sirupsen/logrus"
)

// MigrationStatus is one migration of one module.
type MigrationStatus struct {
	Module    string
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

type MigrationManager interface {
	// RegisterSchema adds a module's goose migrations. Each module keeps its
	// own version table so module version numbers never collide.
	RegisterSchema(module string, fsys fs.FS)
	Run(ctx context.Context) error
	Rollback(ctx context.Context) error
	Status(ctx context.Context) ([]MigrationStatus, error)
}

type schema struct {
	module string
	fsys   fs.FS
}

type migrationManager struct {
	pool    *pgxpool.Pool
	logger  *logrus.Logger
	schemas []schema
}

func NewMigrationManager(pool *pgxpool.Pool, logger *logrus.Logger) MigrationManager {
	return &migrationManager{pool: pool, logger: logger}
}

func (m *migrationManager) RegisterSchema(module string, fsys fs.FS) {
	m.schemas = append(m.schemas, schema{module: module, fsys: fsys})
}

func (m *migrationManager) provider(db *sql.DB, s schema) (*goose.Provider, error) {
	store, err := database.NewStore(database.DialectPostgres, "goose_"+s.module+"_version")
	if err != nil {
		return nil, errors.Wrap(err, "goose store")
	}
	p, err := goose.NewProvider("", db, s.fsys, goose.WithStore(store))
	if err != nil {
		return nil, errors.Wrapf(err, "goose provider for %s", s.module)
	}
	return p, nil
}

func (m *migrationManager) each(schemas []schema, fn func(s schema, p *goose.Provider) error) error {
	if m.pool == nil {
		m.logger.Info("no database configured, skipping migrations")
		return nil
	}
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()
	for _, s := range schemas {
		p, err := m.provider(db, s)
		if err != nil {
			return err
		}
		if err := fn(s, p); err != nil {
			return err
		}
	}
	return nil
}

func (m *migrationManager) Run(ctx context.Context) error {
	return m.each(m.schemas, func(s schema, p *goose.Provider) error {
		results, err := p.Up(ctx)
		if err != nil {
			return errors.Wrapf(err, "migrate %s", s.module)
		}
		for _, res := range results {
			m.logger.WithFields(logrus.Fields{
				"module":   s.module,
				"version":  res.Source.Version,
				"duration": res.Duration,
			}).Info("migration applied")
		}
		return nil
	})
}

// Rollback undoes the latest migration of every module, last registered first.
func (m *migrationManager) Rollback(ctx context.Context) error {
	reversed := make([]schema, len(m.schemas))
	for i, s := range m.schemas {
		reversed[len(m.schemas)-1-i] = s
	}
	return m.each(reversed, func(s schema, p *goose.Provider) error {
		res, err := p.Down(ctx)
		if err != nil {
			if errors.Is(err, goose.ErrNoNextVersion) {
				return nil
			}
			return errors.Wrapf(err, "rollback %s", s.module)
		}
		m.logger.WithFields(logrus.Fields{
			"module":  s.module,
			"version": res.Source.Version,
		}).Info("migration rolled back")
		return nil
	})
}

func (m *migrationManager) Status(ctx context.Context) ([]MigrationStatus, error) {
	var out []MigrationStatus
	err := m.each(m.schemas, func(s schema, p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return errors.Wrapf(err, "status %s", s.module)
		}
		for _, st := range statuses {
			out = append(out, MigrationStatus{
				Module:    s.module,
				Version:   st.Source.Version,
				Path:      st.Source.Path,
				Applied:   st.State == goose.StateApplied,
				AppliedAt: st.AppliedAt,
			})
		}
		return nil
	})
	return out, err
}
