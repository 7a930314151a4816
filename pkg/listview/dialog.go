package listview

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/go-faster/errors"
)

type Mode int

const (
	ModeClosed Mode = iota
	ModeAdd
	ModeEdit
	ModeDelete
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeEdit:
		return "edit"
	case ModeDelete:
		return "delete"
	default:
		return "closed"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

var (
	ErrBusy              = errors.New("listview: a mutation is already in flight")
	ErrInvalidTransition = errors.New("listview: invalid dialog transition")
)

// Result is what a mutation endpoint answers.
type Result struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
}

// ValidationError carries per-field messages. The mutation was not attempted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("listview: %d invalid field(s)", len(e.Fields))
}

// MutationError is a failed or rejected create, update or delete.
type MutationError struct {
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *MutationError) Unwrap() error { return e.Err }

// Confirmation is the content of the delete confirmation, resolved by the
// caller.
type Confirmation struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	SuccessMessage string `json:"-"`
}

type Notifier interface {
	Success(message string)
	Error(message string)
}

type Invalidator interface {
	Invalidate(key string)
}

type (
	SubmitFunc[T any] func(ctx context.Context, form T) (Result, error)
	DeleteFunc[T any] func(ctx context.Context, target T) (Result, error)
)

type DialogConfig[T any] struct {
	// CacheKey is invalidated after every successful mutation.
	CacheKey     string
	Create       SubmitFunc[T]
	Update       SubmitFunc[T]
	Delete       DeleteFunc[T]
	Confirmation func(target T) Confirmation
	Validate     func(T) map[string]string
	NewForm      func() T
	Notifier     Notifier
	Invalidator  Invalidator
	Dictionary   Dictionary
}

// DialogState is a snapshot for rendering.
type DialogState[T any] struct {
	Mode         Mode              `json:"mode"`
	Target       *T                `json:"target,omitempty"`
	Form         *T                `json:"form,omitempty"`
	Busy         bool              `json:"busy"`
	FieldErrors  map[string]string `json:"field_errors,omitempty"`
	Error        string            `json:"error,omitempty"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
}

// Dialog drives the add/edit form and the delete confirmation of one table.
// Only one mutation may be in flight at a time.
type Dialog[T any] struct {
	mu   sync.Mutex
	cfg  DialogConfig[T]
	dict Dictionary

	mode        Mode
	target      T
	form        T
	busy        bool
	fieldErrors map[string]string
	lastError   string
}

func NewDialog[T any](cfg DialogConfig[T]) *Dialog[T] {
	return &Dialog[T]{cfg: cfg, dict: orDefault(cfg.Dictionary)}
}

func (d *Dialog[T]) OpenAdd() error {
	var form T
	if d.cfg.NewForm != nil {
		form = d.cfg.NewForm()
	}
	return d.open(ModeAdd, form, form)
}

func (d *Dialog[T]) OpenEdit(row T) error {
	return d.open(ModeEdit, row, row)
}

func (d *Dialog[T]) OpenDelete(row T) error {
	return d.open(ModeDelete, row, row)
}

func (d *Dialog[T]) open(mode Mode, target, form T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy {
		return ErrBusy
	}
	if d.mode != ModeClosed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.mode, mode)
	}
	d.mode = mode
	d.target = target
	d.form = form
	d.fieldErrors = nil
	d.lastError = ""
	return nil
}

// Cancel closes the dialog and discards the form.
func (d *Dialog[T]) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy {
		return ErrBusy
	}
	d.resetLocked()
	return nil
}

// Submit validates form and sends it to the create or update handler. On
// failure the dialog stays open with the form kept.
func (d *Dialog[T]) Submit(ctx context.Context, form T) error {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return ErrBusy
	}
	mode := d.mode
	var handler SubmitFunc[T]
	switch mode {
	case ModeAdd:
		handler = d.cfg.Create
	case ModeEdit:
		handler = d.cfg.Update
	default:
		d.mu.Unlock()
		return fmt.Errorf("%w: submit in %s", ErrInvalidTransition, mode)
	}
	d.form = form
	if d.cfg.Validate != nil {
		if fields := d.cfg.Validate(form); len(fields) > 0 {
			d.fieldErrors = fields
			d.lastError = d.dict.T(KeyValidationFailed)
			d.mu.Unlock()
			return &ValidationError{Fields: maps.Clone(fields)}
		}
	}
	if handler == nil {
		d.mu.Unlock()
		return fmt.Errorf("%w: no %s handler", ErrInvalidTransition, mode)
	}
	d.fieldErrors = nil
	d.busy = true
	d.mu.Unlock()

	res, err := handler(ctx, form)
	return d.complete(res, err, d.dict.T(KeySaved))
}

// Confirm runs the delete handler for the target row.
func (d *Dialog[T]) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return ErrBusy
	}
	if d.mode != ModeDelete {
		mode := d.mode
		d.mu.Unlock()
		return fmt.Errorf("%w: confirm in %s", ErrInvalidTransition, mode)
	}
	if d.cfg.Delete == nil {
		d.mu.Unlock()
		return fmt.Errorf("%w: no delete handler", ErrInvalidTransition)
	}
	target := d.target
	success := d.dict.T(KeyDeleted)
	if d.cfg.Confirmation != nil {
		if msg := d.cfg.Confirmation(target).SuccessMessage; msg != "" {
			success = msg
		}
	}
	d.busy = true
	d.mu.Unlock()

	res, err := d.cfg.Delete(ctx, target)
	return d.complete(res, err, success)
}

func (d *Dialog[T]) complete(res Result, err error, success string) error {
	d.mu.Lock()
	d.busy = false
	if err != nil || !res.Status {
		msg := res.Message
		if msg == "" {
			msg = d.dict.T(KeyOperationFailed)
		}
		d.lastError = msg
		d.mu.Unlock()
		if d.cfg.Notifier != nil {
			d.cfg.Notifier.Error(msg)
		}
		return &MutationError{Message: msg, Err: err}
	}
	d.resetLocked()
	d.mu.Unlock()

	if res.Message != "" {
		success = res.Message
	}
	if d.cfg.Notifier != nil {
		d.cfg.Notifier.Success(success)
	}
	if d.cfg.Invalidator != nil {
		d.cfg.Invalidator.Invalidate(d.cfg.CacheKey)
	}
	return nil
}

func (d *Dialog[T]) resetLocked() {
	var zero T
	d.mode = ModeClosed
	d.target = zero
	d.form = zero
	d.fieldErrors = nil
	d.lastError = ""
}

func (d *Dialog[T]) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

func (d *Dialog[T]) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

func (d *Dialog[T]) State() DialogState[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := DialogState[T]{
		Mode:        d.mode,
		Busy:        d.busy,
		FieldErrors: maps.Clone(d.fieldErrors),
		Error:       d.lastError,
	}
	if d.mode == ModeClosed {
		return s
	}
	target, form := d.target, d.form
	if d.mode != ModeAdd {
		s.Target = &target
	}
	if d.mode != ModeDelete {
		s.Form = &form
	}
	if d.mode == ModeDelete && d.cfg.Confirmation != nil {
		c := d.cfg.Confirmation(target)
		s.Confirmation = &c
	}
	return s
}
