package resources

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/entities"
	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/modules/hrm/infrastructure/persistence"
	"github.com/iota-uz/hrdesk/modules/hrm/services"
	"github.com/iota-uz/hrdesk/pkg/eventbus"
	"github.com/iota-uz/hrdesk/pkg/querycache"
)

// Deps are shared by every resource of a registry.
type Deps struct {
	Authorizer services.Authorizer
	Publisher  eventbus.EventBus
	Pool       *pgxpool.Pool
	// Memory selects the in-memory store instead of PostgreSQL.
	Memory   *persistence.MemoryStore
	Logger   *logrus.Logger
	Clock    clockwork.Clock
	PageSize int
	Debounce time.Duration
	Cache    []querycache.Option
}

// Registry holds the resources in declaration order.
type Registry struct {
	deps   Deps
	order  []string
	byName map[string]Handle
}

func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &Registry{deps: deps, byName: make(map[string]Handle)}
}

// Add builds the service and resource of def and registers it.
func Add[T record.Entity](reg *Registry, def Definition[T], guard services.DeleteGuard[T]) *Resource[T] {
	svc := services.NewRecordService(services.RecordServiceOptions[T]{
		Resource:    def.Name,
		Repository:  persistence.NewRepository[T](reg.deps.Memory, def.Name),
		Authorizer:  reg.deps.Authorizer,
		Publisher:   reg.deps.Publisher,
		Pool:        reg.deps.Pool,
		Logger:      reg.deps.Logger,
		Clock:       reg.deps.Clock,
		DeleteGuard: guard,
		Cache:       reg.deps.Cache,
	})
	res := NewResource(def, svc, Options{
		PageSize: reg.deps.PageSize,
		Debounce: reg.deps.Debounce,
		Clock:    reg.deps.Clock,
		Logger:   reg.deps.Logger,
	})
	if _, exists := reg.byName[def.Name]; !exists {
		reg.order = append(reg.order, def.Name)
	}
	reg.byName[def.Name] = res
	return res
}

// NewCatalog registers every HR resource.
func NewCatalog(deps Deps) *Registry {
	reg := NewRegistry(deps)
	employees := persistence.NewRepository[entities.Employee](reg.deps.Memory, EmployeesTable.Name)

	Add(reg, EmployeesTable, nil)
	Add(reg, BranchesTable, services.BranchInUse(employees))
	Add(reg, LeavesTable, nil)
	Add(reg, AttendanceTable, nil)
	Add(reg, OvertimeTable, nil)
	Add(reg, PayslipsTable, nil)
	Add(reg, AssetsTable, nil)
	Add(reg, ReimbursementsTable, nil)
	Add(reg, WarningsTable, nil)
	Add(reg, TerminationsTable, nil)
	Add(reg, ComplaintsTable, nil)
	Add(reg, ResignationsTable, nil)
	Add(reg, RewardsTable, nil)
	Add(reg, ProjectsTable, nil)
	Add(reg, TasksTable, nil)
	return reg
}

func (r *Registry) Get(name string) (Handle, bool) {
	h, ok := r.byName[name]
	return h, ok
}

func (r *Registry) All() []Handle {
	out := make([]Handle, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// StartRefresh revalidates the subscribed keys of every resource each
// interval and blocks until ctx is done.
func (r *Registry) StartRefresh(ctx context.Context, interval time.Duration) {
	var wg sync.WaitGroup
	for _, h := range r.All() {
		wg.Add(1)
		go func(h Handle) {
			defer wg.Done()
			h.StartRefresh(ctx, interval)
		}(h)
	}
	wg.Wait()
}

// AttachBridge propagates invalidations of every resource cache through b.
func (r *Registry) AttachBridge(b *querycache.RedisBridge) {
	for _, h := range r.All() {
		b.Attach(h.Cache())
	}
}

// Can reports whether the caller in ctx may perform action on the resource
// whose authorization object is object.
func (r *Registry) Can(ctx context.Context, object, action string) bool {
	for _, h := range r.All() {
		if h.Object() == object {
			return h.Authorize(ctx, action) == nil
		}
	}
	return false
}
