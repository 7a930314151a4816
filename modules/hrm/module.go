package hrm

import (
	"embed"
	"io/fs"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/modules/hrm/infrastructure/persistence"
	"github.com/iota-uz/hrdesk/modules/hrm/presentation/controllers"
	"github.com/iota-uz/hrdesk/modules/hrm/presentation/resources"
	"github.com/iota-uz/hrdesk/modules/hrm/seed"
	"github.com/iota-uz/hrdesk/modules/hrm/services"
	"github.com/iota-uz/hrdesk/pkg/application"
	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/querycache"
)

//go:embed presentation/locales/*.toml
var localeFiles embed.FS

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

// LocaleFiles holds the HR message files at the root of the FS.
func LocaleFiles() fs.FS {
	sub, err := fs.Sub(localeFiles, "presentation/locales")
	if err != nil {
		panic(err)
	}
	return sub
}

// MigrationFiles holds the goose migrations at the root of the FS.
func MigrationFiles() fs.FS {
	sub, err := fs.Sub(migrationFiles, "infrastructure/persistence/schema")
	if err != nil {
		panic(err)
	}
	return sub
}

type ModuleOptions struct {
	// Authorizer guards every record operation; nil allows everything.
	Authorizer services.Authorizer
	// Memory keeps records in process instead of PostgreSQL.
	Memory *persistence.MemoryStore
	// Audit receives record change events; defaults to the PostgreSQL
	// audit log, or an in-memory one when Memory is set.
	Audit        persistence.AuditStore
	Clock        clockwork.Clock
	PageSize     int
	MaxPageSize  int
	Debounce     time.Duration
	FetchTimeout time.Duration
}

func NewModule(opts *ModuleOptions) *Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{opts: opts}
}

type Module struct {
	opts     *ModuleOptions
	registry *resources.Registry
}

func (m *Module) Register(app application.Application) error {
	if err := app.RegisterLocaleFiles(LocaleFiles()); err != nil {
		return err
	}
	if m.opts.Memory == nil {
		app.Migrations().RegisterSchema(m.Name(), MigrationFiles())
	}

	var cacheOpts []querycache.Option
	if m.opts.FetchTimeout > 0 {
		cacheOpts = append(cacheOpts, querycache.WithFetchTimeout(m.opts.FetchTimeout))
	}
	if m.opts.Clock != nil {
		cacheOpts = append(cacheOpts, querycache.WithClock(m.opts.Clock))
	}
	cacheOpts = append(cacheOpts, querycache.WithLogger(app.Logger().WithField("module", m.Name())))

	m.registry = resources.NewCatalog(resources.Deps{
		Authorizer: m.opts.Authorizer,
		Publisher:  app.EventPublisher(),
		Pool:       app.DB(),
		Memory:     m.opts.Memory,
		Logger:     app.Logger(),
		Clock:      m.opts.Clock,
		PageSize:   m.opts.PageSize,
		Debounce:   m.opts.Debounce,
		Cache:      cacheOpts,
	})

	audit := m.opts.Audit
	if audit == nil {
		if m.opts.Memory != nil {
			audit = &persistence.MemoryAuditStore{Limit: 1000}
		} else {
			audit = persistence.NewPgAuditStore(app.DB())
		}
	}
	auditLog := services.NewAuditLog(audit, app.Logger())
	app.EventPublisher().Subscribe(auditLog.Handle)
	app.EventPublisher().Subscribe(notifyTenant(app.Websocket()))

	app.RegisterServices(m.registry, auditLog)
	app.RegisterNavItems(NavItems(m.registry)...)

	ctrlOpts := controllers.Options{PageSize: m.opts.PageSize, MaxPageSize: m.opts.MaxPageSize}
	app.RegisterControllers(
		controllers.NewAPIController(app, ctrlOpts),
		controllers.NewPageController(app, ctrlOpts),
		controllers.NewLiveController(app),
		controllers.NewLoginController(app),
	)
	app.Seeder().Register(seed.Demo(m.registry))
	return nil
}

// notifyTenant tells open sockets of the tenant which resource changed.
func notifyTenant(hub *application.Hub) func(*record.ChangedEvent) {
	return func(ev *record.ChangedEvent) {
		channel := application.TenantChannel(authn.AuthState{TenantID: ev.TenantID})
		hub.Broadcast(channel, resources.ServerMessage{Type: resources.MsgChanged, Resource: ev.Resource})
	}
}

// Registry returns the resources built by Register.
func (m *Module) Registry() *resources.Registry {
	return m.registry
}

func (m *Module) Name() string {
	return "hrm"
}
