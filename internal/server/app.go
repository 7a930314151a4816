package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/hrdesk/modules"
	"github.com/iota-uz/hrdesk/modules/hrm"
	"github.com/iota-uz/hrdesk/modules/hrm/infrastructure/persistence"
	"github.com/iota-uz/hrdesk/pkg/application"
	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/authz"
	"github.com/iota-uz/hrdesk/pkg/configuration"
	"github.com/iota-uz/hrdesk/pkg/eventbus"
	"github.com/iota-uz/hrdesk/pkg/intl"
)

// Runtime is a fully wired application.
type Runtime struct {
	App  application.Application
	HRM  *hrm.Module
	Pool *pgxpool.Pool
}

func (r *Runtime) Close() {
	if r.Pool != nil {
		r.Pool.Close()
	}
}

// NewRuntime connects storage, builds the authorization and token services
// and registers the built-in modules.
func NewRuntime(ctx context.Context, conf *configuration.Configuration) (*Runtime, error) {
	logger := conf.Logger()

	var pool *pgxpool.Pool
	var mem *persistence.MemoryStore
	if conf.Storage == "memory" {
		mem = persistence.NewMemoryStore(nil)
	} else {
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		var err error
		pool, err = pgxpool.New(connectCtx, conf.Database.Opts)
		if err != nil {
			return nil, errors.Wrap(err, "connect database")
		}
	}

	authorizer, err := authz.NewService(authz.DefaultConfig())
	if err != nil {
		return nil, errors.Wrap(err, "authz service")
	}
	issuer := authn.NewIssuer(conf.Auth.JWTSecret, conf.Auth.Issuer, conf.Auth.TokenTTL)

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		Bundle:   intl.NewBundle(),
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
		Hub: application.NewHub(&application.HubOptions{
			Logger: logger,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == conf.Origin || originAllowed(conf.CORSOrigins, origin)
			},
		}),
	})
	app.RegisterServices(issuer, authorizer)

	hrmModule := hrm.NewModule(&hrm.ModuleOptions{
		Authorizer:   authorizer,
		Memory:       mem,
		PageSize:     conf.PageSize,
		MaxPageSize:  conf.MaxPageSize,
		Debounce:     conf.SearchDebounce,
		FetchTimeout: conf.Cache.FetchTimeout,
	})
	if err := modules.Load(app, hrmModule); err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, errors.Wrap(err, "load modules")
	}
	return &Runtime{App: app, HRM: hrmModule, Pool: pool}, nil
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
