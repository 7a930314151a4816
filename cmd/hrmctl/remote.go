package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/modules/hrm/presentation/resources"
	"github.com/iota-uz/hrdesk/pkg/datasource"
	"github.com/iota-uz/hrdesk/pkg/listview"
	"github.com/iota-uz/hrdesk/pkg/middleware"
	"github.com/iota-uz/hrdesk/pkg/querycache"
)

type remote interface {
	name() string
	list(ctx context.Context, c *datasource.Client, state listview.State, dict listview.Dictionary) (listview.View, error)
	remove(ctx context.Context, c *datasource.Client, id int64, dict listview.Dictionary, confirm func(listview.Confirmation) bool, n listview.Notifier) error
}

type remoteResource[T record.Entity] struct {
	def resources.Definition[T]
}

func newRemote[T record.Entity](def resources.Definition[T]) remote {
	return &remoteResource[T]{def: def}
}

func (r *remoteResource[T]) name() string {
	return r.def.Name
}

func (r *remoteResource[T]) path() string {
	return middleware.APIPrefix + "/" + r.def.Name
}

func (r *remoteResource[T]) cache(c *datasource.Client) *querycache.Cache[T] {
	return querycache.New[T](r.def.Name, datasource.Fetcher[T](c, r.path(), r.def.NestedKey))
}

func (r *remoteResource[T]) list(ctx context.Context, c *datasource.Client, state listview.State, dict listview.Dictionary) (listview.View, error) {
	snap, err := r.cache(c).Get(ctx, r.def.Name)
	if err != nil {
		return listview.View{}, err
	}
	cfg := listview.Config[T]{
		Columns:    r.def.Columns,
		Filters:    r.def.Filters,
		RowID:      func(row T) string { return row.RowID() },
		PageSize:   state.Page.PageSize,
		SortByRank: true,
		Dictionary: dict,
	}
	view, _, err := listview.Render(cfg, snap.Rows, state)
	return view, err
}

// remove drives the delete confirmation dialog against the API.
func (r *remoteResource[T]) remove(ctx context.Context, c *datasource.Client, id int64, dict listview.Dictionary, confirm func(listview.Confirmation) bool, n listview.Notifier) error {
	path := r.path() + "/" + strconv.FormatInt(id, 10)
	var row T
	if err := c.Get(ctx, path, &row); err != nil {
		return err
	}
	cache := r.cache(c)
	confirmation := func(target T) listview.Confirmation {
		label := target.RowID()
		if r.def.Describe != nil {
			label = r.def.Describe(target)
		}
		return listview.Confirmation{
			Title:          dict.T("Content.DeleteTitle"),
			Body:           dict.T("Content.DeleteConfirm", map[string]any{"Name": label}),
			SuccessMessage: dict.T(listview.KeyDeleted),
		}
	}
	dialog := listview.NewDialog(listview.DialogConfig[T]{
		CacheKey: r.def.Name,
		Delete: func(ctx context.Context, _ T) (listview.Result, error) {
			return c.Delete(ctx, path)
		},
		Confirmation: confirmation,
		Notifier:     n,
		Invalidator:  cache,
		Dictionary:   dict,
	})
	if err := dialog.OpenDelete(row); err != nil {
		return err
	}
	if !confirm(confirmation(row)) {
		return dialog.Cancel()
	}
	return dialog.Confirm(ctx)
}

func cells[E any](in []E) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func renderView(w io.Writer, view listview.View) error {
	if view.Empty {
		_, err := fmt.Fprintf(w, "%s\n%s\n", view.EmptyText, view.FooterLabel)
		return err
	}
	table := tablewriter.NewWriter(w)
	headers := make([]string, len(view.Headers))
	for i, h := range view.Headers {
		headers[i] = h.Label
		if h.Sort != "" {
			headers[i] += " (" + h.Sort + ")"
		}
	}
	table.Header(cells(headers)...)
	for _, row := range view.Rows {
		texts := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			texts[i] = cell.Text
		}
		if err := table.Append(cells(texts)...); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, view.FooterLabel)
	return err
}

var catalog = indexRemotes(
	newRemote(resources.EmployeesTable),
	newRemote(resources.BranchesTable),
	newRemote(resources.LeavesTable),
	newRemote(resources.AttendanceTable),
	newRemote(resources.OvertimeTable),
	newRemote(resources.PayslipsTable),
	newRemote(resources.AssetsTable),
	newRemote(resources.ReimbursementsTable),
	newRemote(resources.WarningsTable),
	newRemote(resources.TerminationsTable),
	newRemote(resources.ComplaintsTable),
	newRemote(resources.ResignationsTable),
	newRemote(resources.RewardsTable),
	newRemote(resources.ProjectsTable),
	newRemote(resources.TasksTable),
)

func indexRemotes(rs ...remote) map[string]remote {
	out := make(map[string]remote, len(rs))
	for _, r := range rs {
		out[r.name()] = r
	}
	return out
}

func lookup(name string) (remote, error) {
	r, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", name)
	}
	return r, nil
}
