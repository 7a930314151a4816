package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeesServer(t *testing.T, deletes *atomic.Int32) *httptest.Server {
	t.Helper()
	rows := []map[string]any{
		{"id": 1, "first_name": "Alice", "last_name": "Smith", "email": "alice@example.com", "department": "Engineering", "status": "active", "salary": "4200"},
		{"id": 2, "first_name": "Bob", "last_name": "Jones", "email": "bob@example.com", "department": "Sales", "status": "active", "salary": "3900"},
		{"id": 3, "first_name": "Alicia", "last_name": "Keys", "email": "alicia@example.com", "department": "Finance", "status": "inactive", "salary": "3800"},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /hrm/api/employees", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": map[string]any{"employees": rows}})
	})
	mux.HandleFunc("GET /hrm/api/employees/2", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": rows[1]})
	})
	mux.HandleFunc("DELETE /hrm/api/employees/2", func(w http.ResponseWriter, r *http.Request) {
		deletes.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": rows[1], "message": "Deleted successfully"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config-dir", t.TempDir()}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestListFuzzySearch(t *testing.T) {
	var deletes atomic.Int32
	srv := employeesServer(t, &deletes)

	out, err := run(t, "", "list", "employees", "--server", srv.URL, "--token", "secret", "-q", "ali")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice Smith")
	assert.Contains(t, out, "Alicia Keys")
	assert.NotContains(t, out, "Bob Jones")
	assert.Contains(t, out, "Showing 1 to 2 of 2")
	assert.Less(t, strings.Index(out, "Alice Smith"), strings.Index(out, "Alicia Keys"))
}

func TestListFilterAndPage(t *testing.T) {
	var deletes atomic.Int32
	srv := employeesServer(t, &deletes)

	out, err := run(t, "", "list", "employees", "--server", srv.URL, "--token", "secret",
		"--sort", "name", "--size", "1", "--page", "2", "-f", "status=active")
	require.NoError(t, err)
	assert.Contains(t, out, "Bob Jones")
	assert.NotContains(t, out, "Alice Smith")
	assert.Contains(t, out, "Showing 2 to 2 of 2")
}

func TestListEmpty(t *testing.T) {
	var deletes atomic.Int32
	srv := employeesServer(t, &deletes)

	out, err := run(t, "", "list", "employees", "--server", srv.URL, "--token", "secret", "-q", "zzzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No data available")
	assert.Contains(t, out, "Showing 0 to 0 of 0")
}

func TestListRejectsBadInput(t *testing.T) {
	_, err := run(t, "", "list", "payroll")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown resource "payroll"`)

	_, err = run(t, "", "list", "employees", "-f", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected name=value")
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	var deletes atomic.Int32
	srv := employeesServer(t, &deletes)

	out, err := run(t, "n\n", "delete", "employees", "2", "--server", srv.URL, "--token", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to delete Bob Jones?")
	assert.Zero(t, deletes.Load())

	out, err = run(t, "y\n", "delete", "employees", "2", "--server", srv.URL, "--token", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted successfully")
	assert.Equal(t, int32(1), deletes.Load())
}

func TestListOptionsState(t *testing.T) {
	s, err := listOptions{query: "x", sort: "name", desc: true, page: 3, size: 5, filters: []string{"status=active"}}.state()
	require.NoError(t, err)
	assert.Equal(t, "x", s.Global)
	assert.Equal(t, 2, s.Page.PageIndex)
	assert.Equal(t, 5, s.Page.PageSize)
	assert.Equal(t, "active", s.Filters["status"])
	assert.Equal(t, "desc", s.Sort.Direction.String())

	s, err = listOptions{page: 0}.state()
	require.NoError(t, err)
	assert.Equal(t, 0, s.Page.PageIndex)
}
