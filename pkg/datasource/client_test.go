package datasource

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type employee struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/hrm/api", WithToken("secret"))
	require.NoError(t, err)
	return c
}

func TestListFlatArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/hrm/api/branches", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get(RequestIDHeader))
		_, _ = io.WriteString(w, `{"status":true,"data":[{"id":1,"name":"HQ"},{"id":2,"name":"Depot"}]}`)
	})

	raw, err := c.List(context.Background(), "branches", nil, "")
	require.NoError(t, err)
	rows, err := Decode[employee](raw)
	require.NoError(t, err)
	require.Equal(t, []employee{{1, "HQ"}, {2, "Depot"}}, rows)
}

func TestListNestedArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":true,"data":{"total":1,"employees":[{"id":7,"name":"Alice"}]}}`)
	})

	for _, key := range []string{"employees", ""} {
		raw, err := c.List(context.Background(), "employees", nil, key)
		require.NoError(t, err)
		rows, err := Decode[employee](raw)
		require.NoError(t, err)
		require.Equal(t, []employee{{7, "Alice"}}, rows)
	}

	_, err := c.List(context.Background(), "employees", nil, "missing")
	require.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestListStatusFalse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"status":false,"message":"database unavailable"}`)
	})

	_, err := c.List(context.Background(), "leaves", nil, "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.Equal(t, "database unavailable", apiErr.Message)
}

func TestListEmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":true,"data":null}`)
	})
	raw, err := c.List(context.Background(), "leaves", nil, "")
	require.NoError(t, err)
	require.Empty(t, raw)
}

func TestMutations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "Alice", body["name"])
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"status":true,"message":"Employee created"}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"status":false,"message":"cannot delete"}`)
		default:
			_, _ = io.WriteString(w, `not json`)
		}
	})
	ctx := context.Background()

	res, err := c.Create(ctx, "employees", employee{Name: "Alice"})
	require.NoError(t, err)
	require.True(t, res.Status)
	require.Equal(t, "Employee created", res.Message)

	res, err = c.Delete(ctx, "employees/1")
	require.NoError(t, err)
	require.False(t, res.Status)
	require.Equal(t, "cannot delete", res.Message)

	_, err = c.Update(ctx, "employees/1", employee{Name: "Bob"})
	require.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestTransportError(t *testing.T) {
	c, err := New("http://127.0.0.1:1")
	require.NoError(t, err)
	_, err = c.List(context.Background(), "employees", nil, "")
	require.Error(t, err)
}

func TestFetcher(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":true,"data":{"employees":[{"id":1,"name":"Alice"}]}}`)
	})
	fetch := Fetcher[employee](c, "employees", "employees")
	rows, err := fetch(context.Background(), "t1/employees")
	require.NoError(t, err)
	require.Equal(t, []employee{{1, "Alice"}}, rows)
}

func TestGet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":true,"data":{"id":3,"name":"Carol"}}`)
	})
	var e employee
	require.NoError(t, c.Get(context.Background(), "employees/3", &e))
	require.Equal(t, employee{3, "Carol"}, e)
}
