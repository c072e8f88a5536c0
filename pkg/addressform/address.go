package addressform

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/addressform/pkg/features/form"
)

// Submitter receives the value tree of a valid submission.
type Submitter interface {
	Submit(ctx context.Context, values Values) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, values Values) error

func (f SubmitterFunc) Submit(ctx context.Context, values Values) error {
	return f(ctx, values)
}

// Submit outcomes reported to an Observer.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Observer is notified of aggregation runs and submissions.
type Observer interface {
	ObserveErrors(errors ErrorMap)
	ObserveSubmit(outcome string, elapsed time.Duration)
}

// Cleaner normalizes a raw input value before it is stored and validated.
type Cleaner interface {
	Clean(value string) string
}

// Option configures a Form.
type Option func(*Form)

// WithSubmitter sets the destination for valid submissions.
// Without one, submissions are logged.
func WithSubmitter(s Submitter) Option {
	return func(f *Form) {
		f.submitter = s
	}
}

// WithMessages replaces the message table.
func WithMessages(m *Messages) Option {
	return func(f *Form) {
		if m != nil {
			f.messages = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithCleaner cleans every value on Set and SetAll. Validation and
// submission see only cleaned values.
func WithCleaner(c Cleaner) Option {
	return func(f *Form) {
		f.cleaner = c
	}
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(f *Form) {
		f.observer = o
	}
}

// Form is one instance of the address form. Each instance owns its control
// tree and error map. Methods are safe to call from multiple goroutines;
// they are serialized.
type Form struct {
	mu sync.Mutex

	root   *form.Group
	fields [fieldCount]*form.Field

	messages *Messages
	errors   ErrorMap

	submitter Submitter
	observer  Observer
	cleaner   Cleaner
	logger    *slog.Logger
}

// New builds a form with empty, untouched, pristine fields.
func New(opts ...Option) *Form {
	f := &Form{
		messages: DefaultMessages(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.root, f.fields = newTree()

	// Every value change reaches the root; the callback runs on the
	// goroutine that holds f.mu.
	f.root.Subscribe(f.aggregate)

	return f
}

// aggregate refreshes the error map. Callers hold f.mu.
func (f *Form) aggregate() {
	Aggregate(f.root, f.messages, &f.errors)
	if f.observer != nil {
		f.observer.ObserveErrors(f.errors)
	}
}

// Set records a user edit of one field.
func (f *Form) Set(id FieldID, value string) {
	if id >= fieldCount {
		return
	}
	value = f.clean(value)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.fields[id].SetValue(value)
}

// Touch records that the user focused and left a field.
func (f *Form) Touch(id FieldID) {
	if id >= fieldCount {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fields[id].MarkAsTouched()
	f.aggregate()
}

func (f *Form) clean(value string) string {
	if f.cleaner == nil {
		return value
	}
	return f.cleaner.Clean(value)
}

// SetAll records a user edit of every field at once.
func (f *Form) SetAll(v Values) {
	for _, id := range Fields() {
		v.Set(id, f.clean(v.Get(id)))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.root.SetValue(v.Tree())
}

// Aggregate reruns the error aggregation. It is idempotent.
func (f *Form) Aggregate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.aggregate()
}

// Errors returns a copy of the error map.
func (f *Form) Errors() ErrorMap {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.errors
}

// Error returns the message of one field.
func (f *Form) Error(id FieldID) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.errors.Get(id)
}

// Valid reports whether every field passes validation, regardless of
// whether errors are displayed.
func (f *Form) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.root.Valid()
}

// Values returns the current value tree.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.values()
}

func (f *Form) values() Values {
	var v Values
	for id := FieldID(0); id < fieldCount; id++ {
		v.Set(id, f.fields[id].Text())
	}
	return v
}

// Submit marks every field touched and refreshes the errors. If the form is
// invalid it returns false and delivers nothing. Otherwise the value tree is
// handed to the submitter once. The error is non-nil only when delivery
// fails.
func (f *Form) Submit(ctx context.Context) (bool, error) {
	start := time.Now()

	f.mu.Lock()
	f.root.MarkAllAsTouched()
	f.aggregate()
	if f.root.Invalid() {
		shown := f.errors.Map()
		f.mu.Unlock()
		f.logger.Debug("submission rejected", "errors", shown)
		f.observeSubmit(OutcomeRejected, start)
		return false, nil
	}
	values := f.values()
	f.mu.Unlock()

	if f.submitter == nil {
		f.logger.Info("data submitted", "values", values)
		f.observeSubmit(OutcomeAccepted, start)
		return true, nil
	}

	if err := f.submitter.Submit(ctx, values); err != nil {
		f.logger.Error("submission failed", "error", err)
		f.observeSubmit(OutcomeFailed, start)
		return false, err
	}

	f.observeSubmit(OutcomeAccepted, start)
	return true, nil
}

func (f *Form) observeSubmit(outcome string, start time.Time) {
	if f.observer != nil {
		f.observer.ObserveSubmit(outcome, time.Since(start))
	}
}

// Reset restores every field to empty, untouched and pristine and clears
// all messages.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.root.Reset()
	f.errors = ErrorMap{}
}

// FieldState is the view of one field at a point in time.
type FieldState struct {
	ID      FieldID `json:"-"`
	Field   string  `json:"field"`
	Path    string  `json:"path"`
	Value   string  `json:"value"`
	Touched bool    `json:"touched"`
	Dirty   bool    `json:"dirty"`
	Valid   bool    `json:"valid"`
	Message string  `json:"message,omitempty"`
}

// Snapshot returns the state of every field in declared order.
func (f *Form) Snapshot() []FieldState {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]FieldState, 0, fieldCount)
	for id := FieldID(0); id < fieldCount; id++ {
		fld := f.fields[id]
		out = append(out, FieldState{
			ID:      id,
			Field:   id.String(),
			Path:    id.Path(),
			Value:   fld.Text(),
			Touched: fld.Touched(),
			Dirty:   fld.Dirty(),
			Valid:   fld.Valid(),
			Message: f.errors[id],
		})
	}
	return out
}
