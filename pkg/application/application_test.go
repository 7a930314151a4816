package application

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/composables"
	"github.com/iota-uz/hrdesk/pkg/types"
)

type stubController struct{ key string }

func (c stubController) Key() string            { return c.key }
func (c stubController) Register(r *mux.Router) {}

type greeter struct{ name string }

func newTestApp() Application {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(&ApplicationOptions{Logger: logger})
}

func TestServiceRegistry(t *testing.T) {
	app := newTestApp()
	app.RegisterServices(&greeter{name: "hr"})

	svc := app.Service(greeter{}).(*greeter)
	assert.Equal(t, "hr", svc.name)
	assert.Panics(t, func() { app.Service(stubController{}) })
}

func TestControllersSortedByKey(t *testing.T) {
	app := newTestApp()
	app.RegisterControllers(stubController{"/b"}, stubController{"/a"}, stubController{"/b"})

	keys := make([]string, 0)
	for _, c := range app.Controllers() {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []string{"/a", "/b"}, keys)
}

func TestNavItemsFilteredAndTranslated(t *testing.T) {
	app := newTestApp()
	app.RegisterNavItems(types.NavigationItem{
		Name: "NavigationLinks.HRM",
		Href: "/hrm",
		Children: []types.NavigationItem{
			{Name: "NavigationLinks.Employees", Href: "/hrm/employees", AuthzObject: "hrm.employees", AuthzAction: "list"},
			{Name: "NavigationLinks.Payslips", Href: "/hrm/payslips", AuthzObject: "hrm.payslips", AuthzAction: "list"},
		},
	})

	items := app.NavItems(strings.ToUpper, func(object, action string) bool {
		return object == "hrm.employees"
	})
	require.Len(t, items, 1)
	assert.Equal(t, "NAVIGATIONLINKS.HRM", items[0].Name)
	require.Len(t, items[0].Children, 1)
	assert.Equal(t, "/hrm/employees", items[0].Children[0].Href)
}

func TestRegisterLocaleFiles(t *testing.T) {
	app := newTestApp()
	err := app.RegisterLocaleFiles(fstest.MapFS{
		"en.toml": {Data: []byte("[Content]\nNoDataAvailable = \"No data available\"\n")},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, app.Bundle().LanguageTags())

	err = app.RegisterLocaleFiles(fstest.MapFS{"en.toml": {Data: []byte("not = [toml")}})
	require.Error(t, err)
}

func TestSeederRunsInOrder(t *testing.T) {
	app := newTestApp()
	var calls []string
	app.Seeder().Register(
		func(ctx context.Context, app Application) error { calls = append(calls, "a"); return nil },
		func(ctx context.Context, app Application) error { calls = append(calls, "b"); return nil },
	)
	require.NoError(t, app.Seeder().Seed(context.Background(), app))
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestMigrationsWithoutPool(t *testing.T) {
	app := newTestApp()
	app.Migrations().RegisterSchema("hrm", fstest.MapFS{})
	require.NoError(t, app.Migrations().Run(context.Background()))
	statuses, err := app.Migrations().Status(context.Background())
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestHubChannels(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hub := NewHub(&HubOptions{Logger: logger})
	state := authn.AuthState{UserID: uuid.New(), TenantID: uuid.New(), Roles: []string{authn.RoleHR}}

	connected := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(composables.WithAuthState(r.Context(), state))
		conn, err := hub.Upgrade(w, r)
		if !assert.NoError(t, err) {
			return
		}
		connected <- conn
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	var conn *Connection
	select {
	case conn = <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("no connection")
	}
	got, ok := conn.AuthState()
	require.True(t, ok)
	assert.Equal(t, state.TenantID, got.TenantID)
	assert.Equal(t, 1, hub.Len())
	assert.Len(t, hub.ConnectionsInChannel(TenantChannel(state)), 1)

	hub.Broadcast(TenantChannel(state), map[string]string{"type": "ping"})
	var msg map[string]string
	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, "ping", msg["type"])

	hub.Shutdown()
	assert.Equal(t, 0, hub.Len())
	_, _, err = client.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}
