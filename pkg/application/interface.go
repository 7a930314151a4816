package application

import (
	"context"
	"io/fs"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrdesk/pkg/eventbus"
	"github.com/iota-uz/hrdesk/pkg/types"
)

type Controller interface {
	Register(r *mux.Router)
	Key() string
}

// Module wires a bounded context into the application.
type Module interface {
	Name() string
	Register(app Application) error
}

type SeedFunc func(ctx context.Context, app Application) error

type Seeder interface {
	Seed(ctx context.Context, app Application) error
	Register(seedFuncs ...SeedFunc)
}

// Application with a dynamically extendable service registry
type Application interface {
	DB() *pgxpool.Pool
	Logger() *logrus.Logger
	EventPublisher() eventbus.EventBus
	Websocket() *Hub
	Migrations() MigrationManager
	Bundle() *i18n.Bundle
	GetSupportedLanguages() []string
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	NavItems(translate func(string) string, can func(object, action string) bool) []types.NavigationItem
	RegisterNavItems(items ...types.NavigationItem)
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterLocaleFiles(fsys ...fs.FS) error
	RegisterServices(services ...any)
	Service(service any) any
	Services() map[reflect.Type]any
	Seeder() Seeder
}

// RegisterModules registers every module in order, stopping at the first error.
func RegisterModules(app Application, modules ...Module) error {
	for _, m := range modules {
		app.Logger().WithField("module", m.Name()).Debug("registering module")
		if err := m.Register(app); err != nil {
			return err
		}
	}
	return nil
}
