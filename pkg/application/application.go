package application

import (
	"context"
	"fmt"
	"io/fs"
	"reflect"
	"runtime"
	"sort"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrdesk/pkg/eventbus"
	"github.com/iota-uz/hrdesk/pkg/intl"
	"github.com/iota-uz/hrdesk/pkg/types"
)

func visibleItems(items []types.NavigationItem, translate func(string) string, can func(object, action string) bool) []types.NavigationItem {
	translated := make([]types.NavigationItem, 0, len(items))
	for _, item := range items {
		if !item.Visible(can) {
			continue
		}
		name := item.Name
		if translate != nil {
			name = translate(item.Name)
		}
		translated = append(translated, types.NavigationItem{
			Name:        name,
			Href:        item.Href,
			Children:    visibleItems(item.Children, translate, can),
			AuthzObject: item.AuthzObject,
			AuthzAction: item.AuthzAction,
		})
	}
	return translated
}

// ---- Seeder implementation ----

func NewSeeder(logger *logrus.Logger) Seeder {
	return &seeder{logger: logger}
}

type seeder struct {
	logger    *logrus.Logger
	seedFuncs []SeedFunc
}

func (s *seeder) Seed(ctx context.Context, app Application) error {
	for _, seedFunc := range s.seedFuncs {
		s.logger.Infof("Seeding %s", runtime.FuncForPC(reflect.ValueOf(seedFunc).Pointer()).Name())
		if err := seedFunc(ctx, app); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) Register(seedFuncs ...SeedFunc) {
	s.seedFuncs = append(s.seedFuncs, seedFuncs...)
}

// ---- Application implementation ----

type ApplicationOptions struct {
	Pool               *pgxpool.Pool
	EventBus           eventbus.EventBus
	Logger             *logrus.Logger
	Bundle             *i18n.Bundle
	Hub                *Hub
	SupportedLanguages []string
}

func New(opts *ApplicationOptions) Application {
	supportedLanguages := opts.SupportedLanguages
	if len(supportedLanguages) == 0 {
		supportedLanguages = intl.Codes()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	bundle := opts.Bundle
	if bundle == nil {
		bundle = intl.NewBundle()
	}
	bus := opts.EventBus
	if bus == nil {
		bus = eventbus.NewEventPublisher(logger)
	}
	hub := opts.Hub
	if hub == nil {
		hub = NewHub(&HubOptions{Logger: logger})
	}

	return &application{
		pool:               opts.Pool,
		logger:             logger,
		eventPublisher:     bus,
		websocket:          hub,
		controllers:        make(map[string]Controller),
		services:           make(map[reflect.Type]any),
		bundle:             bundle,
		migrations:         NewMigrationManager(opts.Pool, logger),
		seeder:             NewSeeder(logger),
		supportedLanguages: supportedLanguages,
	}
}

type application struct {
	pool               *pgxpool.Pool
	logger             *logrus.Logger
	eventPublisher     eventbus.EventBus
	websocket          *Hub
	services           map[reflect.Type]any
	controllers        map[string]Controller
	middleware         []mux.MiddlewareFunc
	bundle             *i18n.Bundle
	migrations         MigrationManager
	seeder             Seeder
	navItems           []types.NavigationItem
	supportedLanguages []string
}

func (app *application) Websocket() *Hub {
	return app.websocket
}

func (app *application) Logger() *logrus.Logger {
	return app.logger
}

func (app *application) NavItems(translate func(string) string, can func(object, action string) bool) []types.NavigationItem {
	return visibleItems(app.navItems, translate, can)
}

func (app *application) RegisterNavItems(items ...types.NavigationItem) {
	app.navItems = append(app.navItems, items...)
}

func (app *application) Middleware() []mux.MiddlewareFunc {
	return app.middleware
}

func (app *application) DB() *pgxpool.Pool {
	return app.pool
}

func (app *application) EventPublisher() eventbus.EventBus {
	return app.eventPublisher
}

func (app *application) Seeder() Seeder {
	return app.seeder
}

// Controllers returns the registered controllers ordered by key so routes
// are mounted deterministically.
func (app *application) Controllers() []Controller {
	keys := make([]string, 0, len(app.controllers))
	for k := range app.controllers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	controllers := make([]Controller, 0, len(keys))
	for _, k := range keys {
		controllers = append(controllers, app.controllers[k])
	}
	return controllers
}

func (app *application) Migrations() MigrationManager {
	return app.migrations
}

func (app *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		app.controllers[c.Key()] = c
	}
}

func (app *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	app.middleware = append(app.middleware, middleware...)
}

func (app *application) RegisterLocaleFiles(fsys ...fs.FS) error {
	for _, localeFs := range fsys {
		if err := intl.LoadLocaleFiles(app.bundle, localeFs); err != nil {
			return errors.Wrap(err, "register locale files")
		}
	}
	return nil
}

// RegisterServices registers a new service in the application by its type
func (app *application) RegisterServices(services ...any) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		app.services[serviceType] = service
	}
}

// Service retrieves a service by its type
func (app *application) Service(service any) any {
	serviceType := reflect.TypeOf(service)
	svc, exists := app.services[serviceType]
	if !exists {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (app *application) Services() map[reflect.Type]any {
	return app.services
}

func (app *application) Bundle() *i18n.Bundle {
	return app.bundle
}

func (app *application) GetSupportedLanguages() []string {
	return app.supportedLanguages
}
