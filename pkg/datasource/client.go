// Package datasource talks to the HR REST API. Every response is wrapped in
// a {status, data, message} envelope; list data is either an array or an
// object holding the array one level down.
package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/iota-uz/hrdesk/pkg/listview"
	"github.com/iota-uz/hrdesk/pkg/querycache"
)

const RequestIDHeader = "X-Request-Id"

var ErrMalformedEnvelope = errors.New("datasource: malformed response envelope")

// APIError is a response with status false or a non-2xx code.
type APIError struct {
	StatusCode int
	Message    string
	Errors     map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("datasource: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("datasource: %s (status %d)", e.Message, e.StatusCode)
}

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	logger  logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(cl *Client) { cl.logger = l }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches a collection. nestedKey selects the array when data is an
// object; when empty the first array-valued member is used.
func (c *Client) List(ctx context.Context, path string, query url.Values, nestedKey string) ([]json.RawMessage, error) {
	body, status, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if err := checkEnvelope(body, status); err != nil {
		return nil, err
	}
	return extractRows(body, nestedKey)
}

// Get decodes the data member of a single-record response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	body, status, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	if err := checkEnvelope(body, status); err != nil {
		return err
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return ErrMalformedEnvelope
	}
	if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
		return errors.Wrap(err, "decode data")
	}
	return nil
}

func (c *Client) Create(ctx context.Context, path string, payload any) (listview.Result, error) {
	return c.mutate(ctx, http.MethodPost, path, payload)
}

func (c *Client) Update(ctx context.Context, path string, payload any) (listview.Result, error) {
	return c.mutate(ctx, http.MethodPut, path, payload)
}

func (c *Client) Delete(ctx context.Context, path string) (listview.Result, error) {
	return c.mutate(ctx, http.MethodDelete, path, nil)
}

// mutate returns the server's verdict as a Result. Only transport failures
// and unreadable bodies are errors.
func (c *Client) mutate(ctx context.Context, method, path string, payload any) (listview.Result, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return listview.Result{}, errors.Wrap(err, "encode payload")
		}
		body = bytes.NewReader(b)
	}
	raw, status, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return listview.Result{}, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return listview.Result{}, errors.Wrapf(ErrMalformedEnvelope, "status %d", status)
	}
	if status >= http.StatusBadRequest {
		env.Status = false
	}
	return listview.Result{Status: env.Status, Message: env.Message}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) ([]byte, int, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "build request")
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	logger := c.logger.WithFields(logrus.Fields{
		"method":     method,
		"path":       u.Path,
		"request_id": requestID,
	})
	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithError(err).Warn("datasource: request failed")
		return nil, 0, errors.Wrapf(err, "%s %s", method, u.Path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.WithError(err).Warn("datasource: read body")
		return nil, resp.StatusCode, errors.Wrap(err, "read body")
	}
	logger.WithField("status", resp.StatusCode).Debug("datasource: response")
	return raw, resp.StatusCode, nil
}

func checkEnvelope(body []byte, status int) error {
	if !gjson.ValidBytes(body) {
		if status >= http.StatusBadRequest {
			return &APIError{StatusCode: status}
		}
		return ErrMalformedEnvelope
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Wrap(ErrMalformedEnvelope, err.Error())
	}
	if !env.Status || status >= http.StatusBadRequest {
		return &APIError{StatusCode: status, Message: env.Message, Errors: env.Errors}
	}
	return nil
}

func extractRows(body []byte, nestedKey string) ([]json.RawMessage, error) {
	data := gjson.GetBytes(body, "data")
	switch {
	case !data.Exists(), data.Type == gjson.Null:
		return []json.RawMessage{}, nil
	case data.IsArray():
		return rawItems(data), nil
	case data.IsObject():
		if nestedKey != "" {
			inner := data.Get(nestedKey)
			if !inner.IsArray() {
				return nil, errors.Wrapf(ErrMalformedEnvelope, "data.%s is not an array", nestedKey)
			}
			return rawItems(inner), nil
		}
		var found *gjson.Result
		data.ForEach(func(_, v gjson.Result) bool {
			if v.IsArray() {
				found = &v
				return false
			}
			return true
		})
		if found == nil {
			return nil, errors.Wrap(ErrMalformedEnvelope, "data holds no array")
		}
		return rawItems(*found), nil
	default:
		return nil, errors.Wrap(ErrMalformedEnvelope, "data is neither an array nor an object")
	}
}

func rawItems(arr gjson.Result) []json.RawMessage {
	items := arr.Array()
	out := make([]json.RawMessage, len(items))
	for i, it := range items {
		out[i] = json.RawMessage(it.Raw)
	}
	return out
}

// Decode unmarshals each raw row into T.
func Decode[T any](raw []json.RawMessage) ([]T, error) {
	out := make([]T, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &out[i]); err != nil {
			return nil, errors.Wrapf(err, "decode row %d", i)
		}
	}
	return out, nil
}

// Fetcher adapts a list endpoint to a cache fetcher. The cache key is not
// sent; path alone selects the collection.
func Fetcher[T any](c *Client, path, nestedKey string) querycache.Fetcher[T] {
	return func(ctx context.Context, _ string) ([]T, error) {
		raw, err := c.List(ctx, path, nil, nestedKey)
		if err != nil {
			return nil, err
		}
		return Decode[T](raw)
	}
}
