package controllers

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/hrdesk/modules/hrm/presentation/templates"
	"github.com/iota-uz/hrdesk/pkg/application"
	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/composables"
	"github.com/iota-uz/hrdesk/pkg/intl"
	"github.com/iota-uz/hrdesk/pkg/middleware"
)

type LoginDTO struct {
	Token string
	Next  string
}

type loginData struct {
	Lang       string
	Title      string
	TokenLabel string
	Submit     string
	Next       string
	Error      string
}

// LoginController exchanges a bearer token, minted with `hrmctl token`, for
// a session cookie.
type LoginController struct {
	app       application.Application
	issuer    *authn.Issuer
	templates *template.Template
}

func NewLoginController(app application.Application) application.Controller {
	return &LoginController{
		app:       app,
		issuer:    app.Service(authn.Issuer{}).(*authn.Issuer),
		templates: template.Must(templates.Parse()),
	}
}

func (c *LoginController) Key() string {
	return middleware.LoginPath
}

func (c *LoginController) Register(r *mux.Router) {
	router := r.PathPrefix(middleware.LoginPath).Subrouter()
	router.Use(middleware.ProvideLocalizer(c.app.Bundle(), c.app.GetSupportedLanguages()))
	router.HandleFunc("", c.Get).Methods(http.MethodGet)
	router.HandleFunc("", c.Post).Methods(http.MethodPost)
}

// safeNext keeps redirects on this host.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/hrm"
	}
	return next
}

func (c *LoginController) render(w http.ResponseWriter, r *http.Request, status int, next, errMsg string) {
	dict := dictionary(r.Context())
	data := loginData{
		Lang:       intl.UseLocale(r.Context()).String(),
		Title:      dict.T("Login.Title"),
		TokenLabel: dict.T("Login.Token"),
		Submit:     dict.T("Login.Submit"),
		Next:       next,
		Error:      errMsg,
	}
	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, "login", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (c *LoginController) Get(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, safeNext(r.URL.Query().Get("next")), "")
}

func (c *LoginController) Post(w http.ResponseWriter, r *http.Request) {
	dto, err := composables.UseForm(&LoginDTO{}, r)
	if err != nil {
		c.render(w, r, http.StatusBadRequest, "/hrm", dictionary(r.Context()).T("Login.InvalidToken"))
		return
	}
	next := safeNext(dto.Next)
	token := strings.TrimSpace(dto.Token)
	if _, err := c.issuer.Parse(token); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Info("login rejected")
		c.render(w, r, http.StatusUnauthorized, next, dictionary(r.Context()).T("Login.InvalidToken"))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	http.Redirect(w, r, next, http.StatusFound)
}
