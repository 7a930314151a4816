package services

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/entities"
	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/modules/hrm/infrastructure/persistence"
	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/authz"
	"github.com/iota-uz/hrdesk/pkg/composables"
	"github.com/iota-uz/hrdesk/pkg/eventbus"
	"github.com/iota-uz/hrdesk/pkg/listview"
)

type stubAuthorizer struct {
	mu     sync.Mutex
	deny   map[string]bool
	checks []string
}

func (s *stubAuthorizer) AuthorizeState(_ context.Context, _ authn.AuthState, object, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, object+":"+action)
	if s.deny[action] {
		return &authz.ForbiddenError{Object: object, Action: action}
	}
	return nil
}

type countingRepo[T record.Entity] struct {
	record.Repository[T]
	mu    sync.Mutex
	lists int
}

func (r *countingRepo[T]) List(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	r.lists++
	r.mu.Unlock()
	return r.Repository.List(ctx)
}

func (r *countingRepo[T]) Lists() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lists
}

type fixture struct {
	svc   *RecordService[entities.Leave]
	repo  *countingRepo[entities.Leave]
	authz *stubAuthorizer
	bus   eventbus.EventBus
	audit *persistence.MemoryAuditStore
	ctx   context.Context
	state authn.AuthState
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	store := persistence.NewMemoryStore(clockwork.NewFakeClock())
	repo := &countingRepo[entities.Leave]{
		Repository: persistence.NewMemoryRecordRepository[entities.Leave](store, "leaves"),
	}
	az := &stubAuthorizer{deny: map[string]bool{}}
	bus := eventbus.NewEventPublisher(logger)
	audit := &persistence.MemoryAuditStore{Limit: 10}
	bus.Subscribe(NewAuditLog(audit, logger).Handle)

	state := authn.AuthState{UserID: uuid.New(), TenantID: uuid.New(), Roles: []string{"hr"}}
	return &fixture{
		svc: NewRecordService(RecordServiceOptions[entities.Leave]{
			Resource:   "leaves",
			Repository: repo,
			Authorizer: az,
			Publisher:  bus,
			Logger:     logger,
			Clock:      clockwork.NewFakeClock(),
		}),
		repo:  repo,
		authz: az,
		bus:   bus,
		audit: audit,
		ctx:   composables.WithAuthState(context.Background(), state),
		state: state,
	}
}

func validLeave() entities.Leave {
	return entities.Leave{
		EmployeeID:   1,
		EmployeeName: "Alice Smith",
		LeaveType:    "sick",
		StartDate:    "2024-03-01",
		EndDate:      "2024-03-03",
		Status:       "pending",
	}
}

func TestRecordService_CreateAndList(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(f.ctx, validLeave())
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	rows, err := f.svc.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Alice Smith", rows[0].EmployeeName)

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, record.ActionCreated, entries[0].Action)
	require.Equal(t, "leaves", entries[0].Resource)
	require.Equal(t, created.ID, entries[0].RecordID)
	require.Equal(t, f.state.TenantID, entries[0].TenantID)
	require.Equal(t, f.state.UserID, entries[0].UserID)
}

func TestRecordService_ListServedFromCacheUntilInvalidated(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(f.ctx)
	require.NoError(t, err)
	_, err = f.svc.List(f.ctx)
	require.NoError(t, err)
	require.Equal(t, 1, f.repo.Lists())

	_, err = f.svc.Create(f.ctx, validLeave())
	require.NoError(t, err)

	rows, err := f.svc.List(f.ctx)
	require.NoError(t, err)
	require.Empty(t, rows, "the service never invalidates on its own")

	key, err := f.svc.CacheKey(f.ctx)
	require.NoError(t, err)
	require.Equal(t, f.state.TenantID.String()+"/leaves", key)

	f.svc.Invalidate(key)
	rows, err = f.svc.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 2, f.repo.Lists())
	require.Equal(t, uint64(1), f.svc.Cache().Invalidations(key))
}

func TestRecordService_ValidationSkipsRepository(t *testing.T) {
	f := newFixture(t)

	leave := validLeave()
	leave.EmployeeName = ""
	leave.EndDate = "2024-02-01"

	_, err := f.svc.Create(f.ctx, leave)
	var verr *listview.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "employee_name")
	require.Contains(t, verr.Fields, "end_date")
	require.Empty(t, f.audit.Entries())

	key, err := f.svc.CacheKey(f.ctx)
	require.NoError(t, err)
	snap, err := f.svc.Cache().Get(f.ctx, key)
	require.NoError(t, err)
	require.Empty(t, snap.Rows)
}

func TestRecordService_ValidateMoney(t *testing.T) {
	logger := logrus.New()
	svc := NewRecordService(RecordServiceOptions[entities.Overtime]{Resource: "overtime", Logger: logger})

	fields := svc.Validate(nil, entities.Overtime{
		EmployeeID:   1,
		EmployeeName: "Bob",
		Date:         "2024-01-10",
		Hours:        decimal.NewFromInt(-2),
		Rate:         decimal.RequireFromString("12.50"),
		Status:       "pending",
	})
	require.Contains(t, fields, "hours")
	require.NotContains(t, fields, "rate")
}

func TestRecordService_Forbidden(t *testing.T) {
	f := newFixture(t)
	f.authz.deny[authz.ActionCreate] = true

	_, err := f.svc.Create(f.ctx, validLeave())
	require.ErrorIs(t, err, authz.ErrForbidden)
	require.Equal(t, []string{"hrm.leaves:create"}, f.authz.checks)
	require.Empty(t, f.audit.Entries())
}

func TestRecordService_NoAuthState(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(context.Background())
	require.ErrorIs(t, err, composables.ErrNoAuthState)
	require.Zero(t, f.repo.Lists())
}

func TestRecordService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(f.ctx, validLeave())
	require.NoError(t, err)

	change := validLeave()
	change.Status = "approved"
	updated, err := f.svc.Update(f.ctx, created.ID, change)
	require.NoError(t, err)
	require.Equal(t, "approved", updated.Status)

	got, err := f.svc.Get(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "approved", got.Status)

	deleted, err := f.svc.Delete(f.ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, deleted.ID)

	_, err = f.svc.Get(f.ctx, created.ID)
	require.ErrorIs(t, err, record.ErrNotFound)

	actions := make([]record.Action, 0, 3)
	for _, e := range f.audit.Entries() {
		actions = append(actions, e.Action)
	}
	require.Equal(t, []record.Action{record.ActionCreated, record.ActionUpdated, record.ActionDeleted}, actions)
}

func TestRecordService_DeleteGuard(t *testing.T) {
	f := newFixture(t)
	guarded := NewRecordService(RecordServiceOptions[entities.Leave]{
		Resource:   "leaves",
		Repository: f.repo,
		Publisher:  f.bus,
		DeleteGuard: func(context.Context, entities.Leave) error {
			return errors.Wrap(record.ErrInUse, "leave")
		},
	})
	created, err := guarded.Create(f.ctx, validLeave())
	require.NoError(t, err)

	_, err = guarded.Delete(f.ctx, created.ID)
	require.ErrorIs(t, err, record.ErrInUse)

	_, err = guarded.Get(f.ctx, created.ID)
	require.NoError(t, err)
}

func TestRecordService_DeleteMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Delete(f.ctx, 42)
	require.ErrorIs(t, err, record.ErrNotFound)
}

func TestRecordService_FetchRejectsForeignKey(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.fetch(context.Background(), "not-a-uuid/leaves")
	require.ErrorIs(t, err, ErrMalformedKey)
	_, err = f.svc.fetch(context.Background(), uuid.NewString()+"/tasks")
	require.ErrorIs(t, err, ErrMalformedKey)

	rows, err := f.svc.fetch(context.Background(), f.state.TenantID.String()+"/leaves")
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestBranchInUse(t *testing.T) {
	store := persistence.NewMemoryStore(clockwork.NewFakeClock())
	employees := persistence.NewMemoryRecordRepository[entities.Employee](store, "employees")
	ctx := composables.WithTenantID(context.Background(), uuid.New())

	_, err := employees.Create(ctx, entities.Employee{FirstName: "Ann", BranchID: 7})
	require.NoError(t, err)

	guard := BranchInUse(employees)
	require.ErrorIs(t, guard(ctx, entities.Branch{Meta: record.Meta{ID: 7}}), record.ErrInUse)
	require.NoError(t, guard(ctx, entities.Branch{Meta: record.Meta{ID: 8}}))
}
