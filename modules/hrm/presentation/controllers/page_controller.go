package controllers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/hrdesk/modules/hrm/presentation/resources"
	"github.com/iota-uz/hrdesk/modules/hrm/presentation/templates"
	"github.com/iota-uz/hrdesk/pkg/application"
	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/authz"
	"github.com/iota-uz/hrdesk/pkg/intl"
	"github.com/iota-uz/hrdesk/pkg/listview"
	"github.com/iota-uz/hrdesk/pkg/middleware"
	"github.com/iota-uz/hrdesk/pkg/types"
)

type navLink struct {
	Label  string
	Href   string
	Active bool
}

type headerLink struct {
	Label string
	Href  string
	Sort  string
}

type pageData struct {
	Lang       string
	Title      string
	Nav        []navLink
	Resource   string
	Path       string
	View       listview.View
	Headers    []headerLink
	PrevHref   string
	NextHref   string
	ExportHref string
	LiveURL    string
	Error      string
	Labels     map[string]string
}

// PageController renders the HTML screens. Requests carrying Hx-Request get
// the table fragment only.
type PageController struct {
	app       application.Application
	registry  *resources.Registry
	issuer    *authn.Issuer
	templates *template.Template
	opts      Options
	basePath  string
}

func NewPageController(app application.Application, opts Options) application.Controller {
	return &PageController{
		app:       app,
		registry:  app.Service(resources.Registry{}).(*resources.Registry),
		issuer:    app.Service(authn.Issuer{}).(*authn.Issuer),
		templates: template.Must(templates.Parse()),
		opts:      opts.normalized(),
		basePath:  "/hrm",
	}
}

func (c *PageController) Key() string {
	return c.basePath
}

func (c *PageController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.Authorize(c.issuer),
		middleware.RequireAuth(),
		middleware.ProvideLocalizer(c.app.Bundle(), c.app.GetSupportedLanguages()),
		middleware.ProvidePool(c.app.DB()),
	)
	router.HandleFunc("", c.Index).Methods(http.MethodGet)
	router.HandleFunc("/{resource:[a-z_]+}", c.Resource).Methods(http.MethodGet)
}

func (c *PageController) labels(dict listview.Dictionary) map[string]string {
	keys := []string{"Search", "All", "Apply", "ClearFilters", "Export", "Previous", "Next", "Welcome"}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = dict.T("Content." + k)
	}
	return out
}

func (c *PageController) page(r *http.Request, active string) pageData {
	ctx := r.Context()
	dict := dictionary(ctx)
	translate := func(key string) string { return dict.T(key) }
	can := func(object, action string) bool { return c.registry.Can(ctx, object, action) }

	data := pageData{
		Lang:   intl.UseLocale(ctx).String(),
		Title:  dict.T("NavigationLinks.HRM"),
		Labels: c.labels(dict),
	}
	for _, item := range c.app.NavItems(translate, can) {
		links := item.Children
		if len(links) == 0 {
			links = []types.NavigationItem{item}
		}
		for _, child := range links {
			data.Nav = append(data.Nav, navLink{
				Label:  child.Name,
				Href:   child.Href,
				Active: child.Href == c.basePath+"/"+active,
			})
		}
	}
	return data
}

func (c *PageController) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (c *PageController) Index(w http.ResponseWriter, r *http.Request) {
	c.render(w, "layout", c.page(r, ""))
}

func (c *PageController) Resource(w http.ResponseWriter, r *http.Request) {
	h, ok := c.registry.Get(mux.Vars(r)["resource"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.Authorize(r.Context(), authz.ActionList); err != nil {
		http.Error(w, resources.MutationMessage(dictionary(r.Context()), err), statusOf(err))
		return
	}

	data := c.page(r, h.Name())
	dict := dictionary(r.Context())
	data.Title = dict.T(h.Label())
	data.Resource = h.Name()
	data.Path = c.basePath + "/" + h.Name()
	data.LiveURL = c.basePath + "/live/" + h.Name()

	state := resources.StateFromQuery(r.URL.Query(), c.opts.PageSize, c.opts.MaxPageSize)
	data.ExportHref = middleware.APIPrefix + "/" + h.Name() + "/export.xlsx?" + resources.Query(state).Encode()

	view, err := h.Table(r.Context(), state, dict)
	if err != nil {
		data.Error = dict.T(listview.KeyFailedToLoad)
	} else {
		data.View = view
		data.Headers = headerLinks(data.Path, state, view)
		data.PrevHref, data.NextHref = pageLinks(data.Path, state, view.Footer)
	}

	if r.Header.Get("Hx-Request") != "" {
		c.render(w, "table", data)
		return
	}
	c.render(w, "layout", data)
}

func href(path string, s listview.State) string {
	q := resources.Query(s)
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func headerLinks(path string, state listview.State, view listview.View) []headerLink {
	out := make([]headerLink, len(view.Headers))
	for i, h := range view.Headers {
		out[i] = headerLink{Label: h.Label, Sort: h.Sort}
		if !h.Sortable {
			continue
		}
		next := state
		next.Sort = state.Sort.Toggle(h.ID)
		next.Page.PageIndex = 0
		out[i].Href = href(path, next)
	}
	return out
}

func pageLinks(path string, state listview.State, footer listview.FooterInfo) (string, string) {
	var prev, next string
	if footer.HasPrev {
		s := state
		s.Page.PageIndex = footer.PageIndex - 1
		prev = href(path, s)
	}
	if footer.HasNext {
		s := state
		s.Page.PageIndex = footer.PageIndex + 1
		next = href(path, s)
	}
	return prev, next
}
