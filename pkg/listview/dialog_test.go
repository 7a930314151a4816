package listview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu          sync.Mutex
	successes   []string
	failures    []string
	invalidated []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	r.successes = append(r.successes, msg)
	r.mu.Unlock()
}
func (r *recorder) Error(msg string) {
	r.mu.Lock()
	r.failures = append(r.failures, msg)
	r.mu.Unlock()
}
func (r *recorder) Invalidate(key string) {
	r.mu.Lock()
	r.invalidated = append(r.invalidated, key)
	r.mu.Unlock()
}

type leaveForm struct {
	Employee string `json:"employee" validate:"required"`
	Days     int    `json:"days" validate:"min=1"`
}

func newLeaveDialog(rec *recorder, create SubmitFunc[leaveForm], del DeleteFunc[leaveForm]) *Dialog[leaveForm] {
	v := validator.New()
	v.RegisterTagNameFunc(JSONTagName)
	return NewDialog(DialogConfig[leaveForm]{
		CacheKey: "tenant/leaves",
		Create:   create,
		Update:   create,
		Delete:   del,
		Confirmation: func(f leaveForm) Confirmation {
			return Confirmation{Title: "Delete leave", Body: "Delete leave of " + f.Employee + "?", SuccessMessage: "Leave deleted"}
		},
		Validate:    StructValidator[leaveForm](v, nil),
		Notifier:    rec,
		Invalidator: rec,
	})
}

func okSubmit(context.Context, leaveForm) (Result, error) { return Result{Status: true}, nil }

func TestDialogAddSuccessInvalidatesOnce(t *testing.T) {
	rec := &recorder{}
	calls := 0
	d := newLeaveDialog(rec, func(ctx context.Context, f leaveForm) (Result, error) {
		calls++
		return Result{Status: true, Message: "Leave created"}, nil
	}, nil)

	require.NoError(t, d.OpenAdd())
	require.Equal(t, ModeAdd, d.Mode())
	require.NoError(t, d.Submit(context.Background(), leaveForm{Employee: "Alice", Days: 2}))

	require.Equal(t, 1, calls)
	require.Equal(t, ModeClosed, d.Mode())
	require.Equal(t, []string{"tenant/leaves"}, rec.invalidated)
	require.Equal(t, []string{"Leave created"}, rec.successes)
}

func TestDialogValidationSkipsHandler(t *testing.T) {
	rec := &recorder{}
	called := false
	d := newLeaveDialog(rec, func(context.Context, leaveForm) (Result, error) {
		called = true
		return Result{Status: true}, nil
	}, nil)

	require.NoError(t, d.OpenAdd())
	err := d.Submit(context.Background(), leaveForm{Days: 0})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "employee is required", verr.Fields["employee"])
	require.Equal(t, "days must be at least 1", verr.Fields["days"])
	require.False(t, called)
	require.Equal(t, ModeAdd, d.Mode())
	require.Equal(t, 0, d.State().Form.Days)
	require.Empty(t, rec.invalidated)
}

func TestDialogSubmitFailureKeepsForm(t *testing.T) {
	rec := &recorder{}
	d := newLeaveDialog(rec, func(context.Context, leaveForm) (Result, error) {
		return Result{Status: false, Message: "overlapping leave"}, nil
	}, nil)

	require.NoError(t, d.OpenEdit(leaveForm{Employee: "Bob", Days: 1}))
	err := d.Submit(context.Background(), leaveForm{Employee: "Bob", Days: 3})

	var merr *MutationError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, "overlapping leave", merr.Message)
	st := d.State()
	require.Equal(t, ModeEdit, st.Mode)
	require.False(t, st.Busy)
	require.Equal(t, 3, st.Form.Days)
	require.Equal(t, "overlapping leave", st.Error)
	require.Equal(t, []string{"overlapping leave"}, rec.failures)
	require.Empty(t, rec.invalidated)
}

func TestDialogDeleteFailureStaysOpen(t *testing.T) {
	rec := &recorder{}
	d := newLeaveDialog(rec, okSubmit, func(context.Context, leaveForm) (Result, error) {
		return Result{Status: false, Message: "cannot delete"}, nil
	})

	require.NoError(t, d.OpenDelete(leaveForm{Employee: "Alice"}))
	require.Equal(t, "Delete leave of Alice?", d.State().Confirmation.Body)

	err := d.Confirm(context.Background())
	require.Error(t, err)
	require.Equal(t, ModeDelete, d.Mode())
	require.False(t, d.Busy())
	require.Equal(t, []string{"cannot delete"}, rec.failures)
	require.Empty(t, rec.invalidated)
}

func TestDialogDeleteTransportError(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("connection refused")
	d := newLeaveDialog(rec, okSubmit, func(context.Context, leaveForm) (Result, error) {
		return Result{}, boom
	})

	require.NoError(t, d.OpenDelete(leaveForm{Employee: "Alice"}))
	err := d.Confirm(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"Operation failed"}, rec.failures)
}

func TestDialogDeleteSuccess(t *testing.T) {
	rec := &recorder{}
	d := newLeaveDialog(rec, okSubmit, func(context.Context, leaveForm) (Result, error) {
		return Result{Status: true}, nil
	})

	require.NoError(t, d.OpenDelete(leaveForm{Employee: "Alice"}))
	require.NoError(t, d.Confirm(context.Background()))
	require.Equal(t, ModeClosed, d.Mode())
	require.Equal(t, []string{"Leave deleted"}, rec.successes)
	require.Equal(t, []string{"tenant/leaves"}, rec.invalidated)
}

func TestDialogBusyRejectsTransitions(t *testing.T) {
	rec := &recorder{}
	entered := make(chan struct{})
	release := make(chan struct{})
	d := newLeaveDialog(rec, func(context.Context, leaveForm) (Result, error) {
		close(entered)
		<-release
		return Result{Status: true}, nil
	}, nil)

	require.NoError(t, d.OpenAdd())
	done := make(chan error, 1)
	go func() { done <- d.Submit(context.Background(), leaveForm{Employee: "Alice", Days: 1}) }()
	<-entered

	require.True(t, d.Busy())
	require.ErrorIs(t, d.Cancel(), ErrBusy)
	require.ErrorIs(t, d.Submit(context.Background(), leaveForm{Employee: "Alice", Days: 1}), ErrBusy)
	require.ErrorIs(t, d.OpenAdd(), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, []string{"tenant/leaves"}, rec.invalidated)
}

func TestDialogCancelDiscards(t *testing.T) {
	rec := &recorder{}
	d := newLeaveDialog(rec, okSubmit, nil)

	require.NoError(t, d.OpenEdit(leaveForm{Employee: "Bob", Days: 2}))
	require.NoError(t, d.Cancel())
	st := d.State()
	require.Equal(t, ModeClosed, st.Mode)
	require.Nil(t, st.Form)
	require.Empty(t, rec.successes)
	require.Empty(t, rec.failures)
	require.Empty(t, rec.invalidated)
}

func TestDialogInvalidTransitions(t *testing.T) {
	rec := &recorder{}
	d := newLeaveDialog(rec, okSubmit, nil)

	require.ErrorIs(t, d.Submit(context.Background(), leaveForm{}), ErrInvalidTransition)
	require.ErrorIs(t, d.Confirm(context.Background()), ErrInvalidTransition)
	require.NoError(t, d.OpenAdd())
	require.ErrorIs(t, d.OpenDelete(leaveForm{}), ErrInvalidTransition)
	require.ErrorIs(t, d.Confirm(context.Background()), ErrInvalidTransition)
}
