// Package resources binds each HR resource to its table definition and
// exposes it to controllers through the type-erased Handle.
package resources

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/modules/hrm/services"
	"github.com/iota-uz/hrdesk/pkg/authz"
	"github.com/iota-uz/hrdesk/pkg/listview"
	"github.com/iota-uz/hrdesk/pkg/querycache"
)

var ErrMalformedBody = errors.New("malformed request body")

// Handle is a resource as seen by controllers, independent of its row type.
type Handle interface {
	Name() string
	// Label is the dictionary key of the resource title.
	Label() string
	// NestedKey, when set, wraps list data as {<key>: rows}.
	NestedKey() string
	Object() string
	Authorize(ctx context.Context, action string) error
	List(ctx context.Context) (any, error)
	Get(ctx context.Context, id int64) (any, error)
	Create(ctx context.Context, body []byte) (any, error)
	Update(ctx context.Context, id int64, body []byte) (any, error)
	Delete(ctx context.Context, id int64) (any, error)
	// Invalidate drops the list of the tenant in ctx.
	Invalidate(ctx context.Context) error
	Table(ctx context.Context, state listview.State, dict listview.Dictionary) (listview.View, error)
	Export(ctx context.Context, state listview.State, dict listview.Dictionary, w io.Writer) error
	Serve(ctx context.Context, conn Conn, dict listview.Dictionary) error
	Cache() querycache.Target
	StartRefresh(ctx context.Context, interval time.Duration)
}

// Definition declares a resource once: its columns, filters and how a row
// is named in the delete confirmation.
type Definition[T record.Entity] struct {
	Name      string
	NestedKey string
	Columns   []listview.Column[T]
	Filters   []listview.FilterDef[T]
	Describe  func(T) string
}

type Options struct {
	PageSize int
	Debounce time.Duration
	Clock    clockwork.Clock
	Logger   *logrus.Logger
}

type Resource[T record.Entity] struct {
	def  Definition[T]
	svc  *services.RecordService[T]
	opts Options
}

func NewResource[T record.Entity](def Definition[T], svc *services.RecordService[T], opts Options) *Resource[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = listview.DefaultPageSize
	}
	if opts.Debounce <= 0 {
		opts.Debounce = listview.DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Resource[T]{def: def, svc: svc, opts: opts}
}

func (r *Resource[T]) Name() string      { return r.def.Name }
func (r *Resource[T]) Label() string     { return "NavigationLinks." + r.def.Name }
func (r *Resource[T]) NestedKey() string { return r.def.NestedKey }
func (r *Resource[T]) Object() string    { return r.svc.Object() }

func (r *Resource[T]) Service() *services.RecordService[T] { return r.svc }

func (r *Resource[T]) Cache() querycache.Target { return r.svc.Cache() }

func (r *Resource[T]) StartRefresh(ctx context.Context, interval time.Duration) {
	r.svc.Cache().StartRefresh(ctx, interval)
}

// Config is the table configuration rendered with dict.
func (r *Resource[T]) Config(dict listview.Dictionary) listview.Config[T] {
	return listview.Config[T]{
		Columns:    r.def.Columns,
		Filters:    r.def.Filters,
		RowID:      func(row T) string { return row.RowID() },
		PageSize:   r.opts.PageSize,
		Selectable: true,
		Dictionary: dict,
	}
}

func (r *Resource[T]) Authorize(ctx context.Context, action string) error {
	_, err := r.svc.Authorize(ctx, action)
	return err
}

func (r *Resource[T]) List(ctx context.Context) (any, error) {
	return r.svc.List(ctx)
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (any, error) {
	return r.svc.Get(ctx, id)
}

func (r *Resource[T]) decode(body []byte) (T, error) {
	var row T
	if err := json.Unmarshal(body, &row); err != nil {
		return row, errors.Wrap(ErrMalformedBody, err.Error())
	}
	return row, nil
}

func (r *Resource[T]) Create(ctx context.Context, body []byte) (any, error) {
	row, err := r.decode(body)
	if err != nil {
		return nil, err
	}
	return r.svc.Create(ctx, row)
}

func (r *Resource[T]) Update(ctx context.Context, id int64, body []byte) (any, error) {
	row, err := r.decode(body)
	if err != nil {
		return nil, err
	}
	return r.svc.Update(ctx, id, row)
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) (any, error) {
	return r.svc.Delete(ctx, id)
}

func (r *Resource[T]) Invalidate(ctx context.Context) error {
	key, err := r.svc.CacheKey(ctx)
	if err != nil {
		return err
	}
	r.svc.Invalidate(key)
	return nil
}

// Table renders one page of the tenant's rows for state.
func (r *Resource[T]) Table(ctx context.Context, state listview.State, dict listview.Dictionary) (listview.View, error) {
	rows, err := r.svc.List(ctx)
	if err != nil {
		return listview.View{}, err
	}
	view, _, err := listview.Render(r.Config(dict), rows, state)
	return view, err
}

// Confirmation is the delete confirmation of row.
func (r *Resource[T]) Confirmation(dict listview.Dictionary, row T) listview.Confirmation {
	name := row.RowID()
	if r.def.Describe != nil {
		name = r.def.Describe(row)
	}
	return listview.Confirmation{
		Title:          dict.T("Content.DeleteTitle"),
		Body:           dict.T("Content.DeleteConfirm", map[string]any{"Name": name}),
		SuccessMessage: dict.T(listview.KeyDeleted),
	}
}

// MutationMessage is the toast text for a failed create, update or delete.
func MutationMessage(dict listview.Dictionary, err error) string {
	var verr *listview.ValidationError
	switch {
	case errors.As(err, &verr):
		return dict.T(listview.KeyValidationFailed)
	case errors.Is(err, record.ErrInUse):
		return dict.T("Content.CannotDelete")
	case errors.Is(err, record.ErrNotFound):
		return dict.T("Content.NotFound")
	case errors.Is(err, authz.ErrForbidden):
		return dict.T("Content.Forbidden")
	case errors.Is(err, ErrMalformedBody):
		return dict.T("Content.MalformedRequest")
	default:
		return dict.T(listview.KeyOperationFailed)
	}
}
