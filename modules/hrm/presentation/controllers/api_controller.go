package controllers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/iota-uz/hrdesk/modules/hrm/presentation/resources"
	"github.com/iota-uz/hrdesk/pkg/application"
	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/httpapi"
	"github.com/iota-uz/hrdesk/pkg/listview"
	"github.com/iota-uz/hrdesk/pkg/middleware"
)

// APIController serves the REST endpoints of every resource under
// /hrm/api/{resource}.
type APIController struct {
	app      application.Application
	registry *resources.Registry
	issuer   *authn.Issuer
	opts     Options
	basePath string
}

func NewAPIController(app application.Application, opts Options) application.Controller {
	return &APIController{
		app:      app,
		registry: app.Service(resources.Registry{}).(*resources.Registry),
		issuer:   app.Service(authn.Issuer{}).(*authn.Issuer),
		opts:     opts.normalized(),
		basePath: middleware.APIPrefix,
	}
}

func (c *APIController) Key() string {
	return c.basePath
}

func (c *APIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath + "/{resource}").Subrouter()
	router.Use(
		middleware.Authorize(c.issuer),
		middleware.RequireAuth(),
		middleware.ProvideLocalizer(c.app.Bundle(), c.app.GetSupportedLanguages()),
		middleware.ProvidePool(c.app.DB()),
	)
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/table", c.Table).Methods(http.MethodGet)
	router.HandleFunc("/export.xlsx", c.Export).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
}

func (c *APIController) resource(w http.ResponseWriter, r *http.Request) (resources.Handle, bool) {
	h, ok := c.registry.Get(mux.Vars(r)["resource"])
	if !ok {
		_ = httpapi.WriteFailure(w, http.StatusNotFound, dictionary(r.Context()).T("Content.NotFound"), nil)
	}
	return h, ok
}

func (c *APIController) state(r *http.Request) listview.State {
	return resources.StateFromQuery(r.URL.Query(), c.opts.PageSize, c.opts.MaxPageSize)
}

func (c *APIController) List(w http.ResponseWriter, r *http.Request) {
	h, ok := c.resource(w, r)
	if !ok {
		return
	}
	rows, err := h.List(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	var data any = rows
	if key := h.NestedKey(); key != "" {
		data = map[string]any{key: rows}
	}
	_ = httpapi.WriteData(w, http.StatusOK, data, "")
}

func (c *APIController) Get(w http.ResponseWriter, r *http.Request) {
	h, ok := c.resource(w, r)
	if !ok {
		return
	}
	id, ok := recordID(r)
	if !ok {
		writeFailure(w, r, resources.ErrMalformedBody)
		return
	}
	row, err := h.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	_ = httpapi.WriteData(w, http.StatusOK, row, "")
}

func (c *APIController) Table(w http.ResponseWriter, r *http.Request) {
	h, ok := c.resource(w, r)
	if !ok {
		return
	}
	view, err := h.Table(r.Context(), c.state(r), dictionary(r.Context()))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, view)
}

func (c *APIController) Export(w http.ResponseWriter, r *http.Request) {
	h, ok := c.resource(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.Export(r.Context(), c.state(r), dictionary(r.Context()), &buf); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.Name()+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(resources.ErrMalformedBody, err.Error())
	}
	return body, nil
}

// mutated invalidates the tenant list once and answers the mutation.
func (c *APIController) mutated(w http.ResponseWriter, r *http.Request, h resources.Handle, row any, message string) {
	if err := h.Invalidate(r.Context()); err != nil {
		writeFailure(w, r, err)
		return
	}
	_ = httpapi.WriteData(w, http.StatusOK, row, dictionary(r.Context()).T(message))
}

func (c *APIController) Create(w http.ResponseWriter, r *http.Request) {
	h, ok := c.resource(w, r)
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	row, err := h.Create(r.Context(), body)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	c.mutated(w, r, h, row, listview.KeySaved)
}

func (c *APIController) Update(w http.ResponseWriter, r *http.Request) {
	h, ok := c.resource(w, r)
	if !ok {
		return
	}
	id, ok := recordID(r)
	if !ok {
		writeFailure(w, r, resources.ErrMalformedBody)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	row, err := h.Update(r.Context(), id, body)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	c.mutated(w, r, h, row, listview.KeySaved)
}

func (c *APIController) Delete(w http.ResponseWriter, r *http.Request) {
	h, ok := c.resource(w, r)
	if !ok {
		return
	}
	id, ok := recordID(r)
	if !ok {
		writeFailure(w, r, resources.ErrMalformedBody)
		return
	}
	row, err := h.Delete(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	c.mutated(w, r, h, row, listview.KeyDeleted)
}
