package resources

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/pkg/authz"
	"github.com/iota-uz/hrdesk/pkg/listview"
	"github.com/iota-uz/hrdesk/pkg/querycache"
)

// Conn is the message transport of a live session.
type Conn interface {
	ReadJSON(v any) error
	SendJSON(v any) error
}

// ClientMessage is what the browser sends over a live session.
type ClientMessage struct {
	Type   string          `json:"type"`
	Value  string          `json:"value,omitempty"`
	Name   string          `json:"name,omitempty"`
	Column string          `json:"column,omitempty"`
	Index  *int            `json:"index,omitempty"`
	Size   int             `json:"size,omitempty"`
	ID     string          `json:"id,omitempty"`
	Form   json.RawMessage `json:"form,omitempty"`
}

type ServerMessage struct {
	Type     string         `json:"type"`
	Resource string         `json:"resource,omitempty"`
	View     *listview.View `json:"view,omitempty"`
	Dialog   any            `json:"dialog,omitempty"`
	Level    string         `json:"level,omitempty"`
	Message  string         `json:"message,omitempty"`
}

const (
	MsgView   = "view"
	MsgDialog = "dialog"
	MsgToast  = "toast"
	MsgError  = "error"
	// MsgChanged is broadcast to every socket of a tenant after a record
	// of Resource changes.
	MsgChanged = "changed"

	LevelSuccess = "success"
	LevelError   = "error"
)

type session[T record.Entity] struct {
	ctx    context.Context
	conn   Conn
	dict   listview.Dictionary
	logger *logrus.Entry
	cache  *querycache.Cache[T]
	key    string

	table  *listview.Table[T]
	dialog *listview.Dialog[T]
	search *listview.Debouncer

	sendMu sync.Mutex
	mu     sync.Mutex
	failed bool
	editID int64
}

func (s *session[T]) send(msg ServerMessage) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.conn.SendJSON(msg); err != nil {
		s.logger.WithError(err).Debug("live session: send failed")
	}
}

func (s *session[T]) sendView() {
	s.mu.Lock()
	failed := s.failed
	s.mu.Unlock()
	if failed {
		s.send(ServerMessage{Type: MsgError, Message: s.dict.T(listview.KeyFailedToLoad)})
		return
	}
	view := s.table.View()
	s.send(ServerMessage{Type: MsgView, View: &view})
}

func (s *session[T]) sendDialog() {
	s.send(ServerMessage{Type: MsgDialog, Dialog: s.dialog.State()})
}

func (s *session[T]) toast(level, message string) {
	s.send(ServerMessage{Type: MsgToast, Level: level, Message: message})
}

func (s *session[T]) Success(message string) { s.toast(LevelSuccess, message) }
func (s *session[T]) Error(message string)   { s.toast(LevelError, message) }

// load replaces the table rows with snap. A failed fetch replaces the table
// with an error message and keeps no stale rows.
func (s *session[T]) load(snap querycache.Snapshot[T]) {
	s.mu.Lock()
	s.failed = snap.Err != nil
	s.mu.Unlock()
	if snap.Err != nil {
		s.table.SetRows(nil)
	} else {
		s.table.SetRows(snap.Rows)
	}
	s.sendView()
}

// Serve runs a live table session on conn until the connection fails or ctx
// is done. Every successful mutation invalidates the list key once; the
// session then re-renders from the refetched snapshot.
func (r *Resource[T]) Serve(ctx context.Context, conn Conn, dict listview.Dictionary) error {
	if dict == nil {
		dict = listview.DefaultDictionary()
	}
	if _, err := r.svc.Authorize(ctx, authz.ActionList); err != nil {
		return err
	}
	key, err := r.svc.CacheKey(ctx)
	if err != nil {
		return err
	}
	table, err := listview.NewTable(r.Config(dict))
	if err != nil {
		return err
	}

	s := &session[T]{
		ctx:    ctx,
		conn:   conn,
		dict:   dict,
		logger: r.opts.Logger.WithField("resource", r.def.Name),
		cache:  r.svc.Cache(),
		key:    key,
		table:  table,
	}
	s.dialog = listview.NewDialog(listview.DialogConfig[T]{
		CacheKey: key,
		Create: func(ctx context.Context, form T) (listview.Result, error) {
			if _, err := r.svc.Create(ctx, form); err != nil {
				return listview.Result{Message: MutationMessage(dict, err)}, err
			}
			return listview.Result{Status: true}, nil
		},
		Update: func(ctx context.Context, form T) (listview.Result, error) {
			s.mu.Lock()
			id := s.editID
			s.mu.Unlock()
			if _, err := r.svc.Update(ctx, id, form); err != nil {
				return listview.Result{Message: MutationMessage(dict, err)}, err
			}
			return listview.Result{Status: true}, nil
		},
		Delete: func(ctx context.Context, target T) (listview.Result, error) {
			if _, err := r.svc.Delete(ctx, target.RecordMeta().ID); err != nil {
				return listview.Result{Message: MutationMessage(dict, err)}, err
			}
			return listview.Result{Status: true}, nil
		},
		Confirmation: func(target T) listview.Confirmation { return r.Confirmation(dict, target) },
		Validate:     func(form T) map[string]string { return r.svc.Validate(dict, form) },
		Notifier:     s,
		Invalidator:  r.svc,
		Dictionary:   dict,
	})
	s.search = listview.NewDebouncer(r.opts.Debounce, func(q string) {
		s.table.SetGlobalFilter(q)
		s.sendView()
	}, listview.WithClock(r.opts.Clock))
	defer s.search.Close()

	unsubscribe := s.cache.Subscribe(key, s.load)
	defer unsubscribe()

	snap, _ := s.cache.Get(ctx, key)
	s.load(snap)

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.handle(msg)
	}
}

func (s *session[T]) handle(msg ClientMessage) {
	switch msg.Type {
	case "query":
		s.search.Type(msg.Value)
	case "filter":
		s.viewOrToast(s.table.SetFilter(msg.Name, msg.Value))
	case "clear_filters":
		s.table.ClearFilters()
		s.search.Sync("")
		s.table.SetGlobalFilter("")
		s.sendView()
	case "sort":
		s.viewOrToast(s.table.ToggleSort(msg.Column))
	case "page":
		s.page(msg)
	case "page_size":
		s.viewOrToast(s.table.SetPageSize(msg.Size))
	case "select":
		s.table.ToggleRow(msg.ID)
		s.sendView()
	case "select_all":
		s.table.ToggleAll()
		s.sendView()
	case "open_add":
		s.dialogOrToast(s.dialog.OpenAdd())
	case "open_edit", "open_delete":
		row, ok := s.table.Find(msg.ID)
		if !ok {
			s.Error(s.dict.T("Content.NotFound"))
			return
		}
		if msg.Type == "open_edit" {
			s.dialogOrToast(s.dialog.OpenEdit(row))
		} else {
			s.dialogOrToast(s.dialog.OpenDelete(row))
		}
	case "submit":
		s.submit(msg.Form)
	case "confirm":
		s.mutated(s.dialog.Confirm(s.ctx))
	case "cancel":
		s.dialogOrToast(s.dialog.Cancel())
	case "revalidate":
		s.cache.Revalidate(s.ctx, s.key)
	default:
		s.Error(s.dict.T("Content.UnknownMessage", map[string]any{"Type": msg.Type}))
	}
}

func (s *session[T]) page(msg ClientMessage) {
	switch msg.Value {
	case "first":
		s.table.FirstPage()
	case "prev":
		s.table.PrevPage()
	case "next":
		s.table.NextPage()
	case "last":
		s.table.LastPage()
	default:
		if msg.Index == nil {
			s.Error(s.dict.T(listview.KeyOperationFailed))
			return
		}
		if err := s.table.SetPageIndex(*msg.Index); err != nil {
			s.Error(err.Error())
			return
		}
	}
	s.sendView()
}

func (s *session[T]) submit(raw json.RawMessage) {
	var form T
	if err := json.Unmarshal(raw, &form); err != nil {
		s.Error(s.dict.T("Content.MalformedRequest"))
		return
	}
	if st := s.dialog.State(); st.Mode == listview.ModeEdit && st.Target != nil {
		s.mu.Lock()
		s.editID = (*st.Target).RecordMeta().ID
		s.mu.Unlock()
	}
	s.mutated(s.dialog.Submit(s.ctx, form))
}

// mutated reports a dialog transition. Mutation failures were already
// toasted by the dialog notifier.
func (s *session[T]) mutated(err error) {
	var merr *listview.MutationError
	var verr *listview.ValidationError
	switch {
	case err == nil, errors.As(err, &merr), errors.As(err, &verr):
	default:
		s.Error(err.Error())
	}
	s.sendDialog()
}

func (s *session[T]) viewOrToast(err error) {
	if err != nil {
		s.Error(err.Error())
		return
	}
	s.sendView()
}

func (s *session[T]) dialogOrToast(err error) {
	if err != nil {
		s.Error(err.Error())
	}
	s.sendDialog()
}
