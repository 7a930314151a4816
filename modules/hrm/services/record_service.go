package services

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/authz"
	"github.com/iota-uz/hrdesk/pkg/composables"
	"github.com/iota-uz/hrdesk/pkg/constants"
	"github.com/iota-uz/hrdesk/pkg/eventbus"
	"github.com/iota-uz/hrdesk/pkg/intl"
	"github.com/iota-uz/hrdesk/pkg/listview"
	"github.com/iota-uz/hrdesk/pkg/querycache"
)

const authzModule = "hrm"

var ErrMalformedKey = errors.New("malformed cache key")

// Authorizer decides whether a principal may act on an object.
type Authorizer interface {
	AuthorizeState(ctx context.Context, state authn.AuthState, object, action string) error
}

// DeleteGuard refuses a delete by returning an error, typically wrapping
// record.ErrInUse.
type DeleteGuard[T record.Entity] func(ctx context.Context, row T) error

type RecordServiceOptions[T record.Entity] struct {
	Resource   string
	Repository record.Repository[T]
	Authorizer Authorizer
	Publisher  eventbus.EventBus
	// Pool is attached to background fetches, which run outside a request.
	Pool        *pgxpool.Pool
	Logger      *logrus.Logger
	Clock       clockwork.Clock
	DeleteGuard DeleteGuard[T]
	Cache       []querycache.Option
}

// RecordService is the application service of one HR resource. Reads go
// through a cache keyed <tenant>/<resource>; the caller that initiated a
// successful mutation invalidates that key.
type RecordService[T record.Entity] struct {
	resource  string
	object    string
	repo      record.Repository[T]
	authz     Authorizer
	publisher eventbus.EventBus
	pool      *pgxpool.Pool
	logger    *logrus.Logger
	clock     clockwork.Clock
	guard     DeleteGuard[T]
	cache     *querycache.Cache[T]
}

func NewRecordService[T record.Entity](opts RecordServiceOptions[T]) *RecordService[T] {
	s := &RecordService[T]{
		resource:  opts.Resource,
		object:    authz.ObjectName(authzModule, opts.Resource),
		repo:      opts.Repository,
		authz:     opts.Authorizer,
		publisher: opts.Publisher,
		pool:      opts.Pool,
		logger:    opts.Logger,
		clock:     opts.Clock,
		guard:     opts.DeleteGuard,
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	cacheOpts := append([]querycache.Option{querycache.WithLogger(s.logger)}, opts.Cache...)
	s.cache = querycache.New[T](s.object, s.fetch, cacheOpts...)
	return s
}

func (s *RecordService[T]) Resource() string { return s.resource }

// Object is the authorization object, hrm.<resource>.
func (s *RecordService[T]) Object() string { return s.object }

func (s *RecordService[T]) Cache() *querycache.Cache[T] { return s.cache }

// Authorize checks the caller in ctx against action on this resource.
func (s *RecordService[T]) Authorize(ctx context.Context, action string) (authn.AuthState, error) {
	state, err := composables.UseAuthState(ctx)
	if err != nil {
		return authn.AuthState{}, err
	}
	if s.authz == nil {
		return state, nil
	}
	if err := s.authz.AuthorizeState(ctx, state, s.object, action); err != nil {
		return authn.AuthState{}, err
	}
	return state, nil
}

// CacheKey returns the list key for the tenant in ctx.
func (s *RecordService[T]) CacheKey(ctx context.Context) (string, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return "", err
	}
	return querycache.Key(tenantID.String(), s.resource), nil
}

// Invalidate drops the list key so subscribers refetch.
func (s *RecordService[T]) Invalidate(key string) {
	s.cache.Invalidate(key)
}

func (s *RecordService[T]) withPool(ctx context.Context) context.Context {
	if s.pool == nil {
		return ctx
	}
	if _, err := composables.UsePool(ctx); err == nil {
		return ctx
	}
	return composables.WithPool(ctx, s.pool)
}

func (s *RecordService[T]) fetch(ctx context.Context, key string) ([]T, error) {
	tenant, resource, ok := strings.Cut(key, "/")
	if !ok || resource != s.resource {
		return nil, errors.Wrap(ErrMalformedKey, key)
	}
	tenantID, err := uuid.Parse(tenant)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedKey, key)
	}
	ctx = composables.WithTenantID(s.withPool(ctx), tenantID)
	return s.repo.List(ctx)
}

// List returns every row of the tenant in ctx.
func (s *RecordService[T]) List(ctx context.Context) ([]T, error) {
	if _, err := s.Authorize(ctx, authz.ActionList); err != nil {
		return nil, err
	}
	key, err := s.CacheKey(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return snap.Rows, nil
}

func (s *RecordService[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if _, err := s.Authorize(ctx, authz.ActionView); err != nil {
		return zero, err
	}
	return s.repo.Get(s.withPool(ctx), id)
}

func dictionary(ctx context.Context) listview.Dictionary {
	if d, ok := intl.UseDictionary(ctx); ok {
		return d
	}
	return listview.DefaultDictionary()
}

// Validate returns localized field errors of row, nil when it is valid.
func (s *RecordService[T]) Validate(dict listview.Dictionary, row T) map[string]string {
	if dict == nil {
		dict = listview.DefaultDictionary()
	}
	fields := listview.StructValidator[T](constants.Validate, dict)(row)
	checker, ok := any(row).(record.Checker)
	if !ok {
		return fields
	}
	for field, msgID := range checker.Check() {
		if fields == nil {
			fields = make(map[string]string)
		}
		if _, exists := fields[field]; !exists {
			fields[field] = dict.T(msgID, map[string]any{"Field": field})
		}
	}
	return fields
}

func (s *RecordService[T]) validate(ctx context.Context, row T) error {
	if fields := s.Validate(dictionary(ctx), row); len(fields) > 0 {
		return &listview.ValidationError{Fields: fields}
	}
	return nil
}

func (s *RecordService[T]) Create(ctx context.Context, row T) (T, error) {
	var zero T
	state, err := s.Authorize(ctx, authz.ActionCreate)
	if err != nil {
		return zero, err
	}
	if err := s.validate(ctx, row); err != nil {
		return zero, err
	}
	created, err := composables.InTxResult(s.withPool(ctx), func(txCtx context.Context) (T, error) {
		return s.repo.Create(txCtx, row)
	})
	if err != nil {
		return zero, err
	}
	s.publish(state, record.ActionCreated, created.RecordMeta().ID)
	return created, nil
}

func (s *RecordService[T]) Update(ctx context.Context, id int64, row T) (T, error) {
	var zero T
	state, err := s.Authorize(ctx, authz.ActionUpdate)
	if err != nil {
		return zero, err
	}
	if err := s.validate(ctx, row); err != nil {
		return zero, err
	}
	updated, err := composables.InTxResult(s.withPool(ctx), func(txCtx context.Context) (T, error) {
		return s.repo.Update(txCtx, id, row)
	})
	if err != nil {
		return zero, err
	}
	s.publish(state, record.ActionUpdated, id)
	return updated, nil
}

// Delete removes the row and returns it as it was before deletion.
func (s *RecordService[T]) Delete(ctx context.Context, id int64) (T, error) {
	var zero T
	state, err := s.Authorize(ctx, authz.ActionDelete)
	if err != nil {
		return zero, err
	}
	deleted, err := composables.InTxResult(s.withPool(ctx), func(txCtx context.Context) (T, error) {
		row, err := s.repo.Get(txCtx, id)
		if err != nil {
			return zero, err
		}
		if s.guard != nil {
			if err := s.guard(txCtx, row); err != nil {
				return zero, err
			}
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return zero, err
		}
		return row, nil
	})
	if err != nil {
		return zero, err
	}
	s.publish(state, record.ActionDeleted, id)
	return deleted, nil
}

func (s *RecordService[T]) publish(state authn.AuthState, action record.Action, id int64) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(&record.ChangedEvent{
		Resource: s.resource,
		Action:   action,
		RecordID: id,
		TenantID: state.TenantID,
		UserID:   state.UserID,
		At:       s.clock.Now().UTC(),
	})
}
