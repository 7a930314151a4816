package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/hrdesk/modules/hrm/presentation/resources"
	"github.com/iota-uz/hrdesk/pkg/application"
	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/authz"
	"github.com/iota-uz/hrdesk/pkg/composables"
	"github.com/iota-uz/hrdesk/pkg/middleware"
)

// LiveController upgrades /hrm/live/{resource} to a websocket live table
// session.
type LiveController struct {
	app      application.Application
	registry *resources.Registry
	issuer   *authn.Issuer
	basePath string
}

func NewLiveController(app application.Application) application.Controller {
	return &LiveController{
		app:      app,
		registry: app.Service(resources.Registry{}).(*resources.Registry),
		issuer:   app.Service(authn.Issuer{}).(*authn.Issuer),
		basePath: "/hrm/live",
	}
}

func (c *LiveController) Key() string {
	return c.basePath
}

func (c *LiveController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.Authorize(c.issuer),
		middleware.RequireAuth(),
		middleware.ProvideLocalizer(c.app.Bundle(), c.app.GetSupportedLanguages()),
		middleware.ProvidePool(c.app.DB()),
	)
	router.HandleFunc("/{resource}", c.Serve).Methods(http.MethodGet)
}

func (c *LiveController) Serve(w http.ResponseWriter, r *http.Request) {
	h, ok := c.registry.Get(mux.Vars(r)["resource"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.Authorize(r.Context(), authz.ActionList); err != nil {
		writeFailure(w, r, err)
		return
	}
	conn, err := c.app.Websocket().Upgrade(w, r)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Warn("live session upgrade failed")
		return
	}
	defer conn.Close()

	logger := composables.UseLogger(r.Context()).WithField("resource", h.Name())
	logger.Debug("live session opened")
	if err := h.Serve(r.Context(), conn, dictionary(r.Context())); err != nil && !application.IsClosedError(err) {
		logger.WithError(err).Warn("live session ended")
		return
	}
	logger.Debug("live session closed")
}
