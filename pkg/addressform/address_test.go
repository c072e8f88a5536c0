package addressform

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// recorder is a Submitter that stores every delivery.
type recorder struct {
	calls []Values
	err   error
}

func (r *recorder) Submit(_ context.Context, v Values) error {
	r.calls = append(r.calls, v)
	return r.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validValues() Values {
	return Values{
		Name:  "Asha",
		Email: "asha@example.com",
		Address: Address{
			Area:    "Koregaon Park",
			Street:  "Lane 5",
			Pincode: "411001",
		},
	}
}

func newTestForm(opts ...Option) *Form {
	return New(append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func TestNewFormIsClean(t *testing.T) {
	f := newTestForm()

	errs := f.Errors()
	if !errs.Empty() {
		t.Errorf("new form shows errors: %v", errs.Map())
	}
	if f.Valid() {
		t.Error("new form with empty required fields should be invalid")
	}
	for _, s := range f.Snapshot() {
		if s.Touched || s.Dirty || s.Value != "" {
			t.Errorf("%s not pristine: %+v", s.Field, s)
		}
	}
}

func TestSetShowsErrorsForDirtyField(t *testing.T) {
	f := newTestForm()

	f.Set(Email, "nope")

	if got := f.Error(Email); got != "Email invalid" {
		t.Errorf("email message = %q, want %q", got, "Email invalid")
	}
	if got := f.Error(Name); got != "" {
		t.Errorf("untouched name should stay silent, got %q", got)
	}
}

func TestClearingRequiredFieldShowsRequired(t *testing.T) {
	f := newTestForm()

	f.Set(Name, "x")
	f.Set(Name, "")

	if got := f.Error(Name); got != "Name required" {
		t.Errorf("name message = %q, want %q", got, "Name required")
	}
}

func TestTouchShowsLatentError(t *testing.T) {
	f := newTestForm()

	f.Touch(Area)

	if got := f.Error(Area); got != "Area required" {
		t.Errorf("area message = %q, want %q", got, "Area required")
	}
	if got := f.Error(Street); got != "" {
		t.Errorf("street has no required rule, got %q", got)
	}
}

func TestFixingValueClearsError(t *testing.T) {
	f := newTestForm()

	f.Set(Pincode, "12")
	if f.Error(Pincode) == "" {
		t.Fatal("expected pincode error")
	}

	f.Set(Pincode, "560001")
	if got := f.Error(Pincode); got != "" {
		t.Errorf("expected no pincode error, got %q", got)
	}
}

func TestTouchedFieldsShowEveryActiveRule(t *testing.T) {
	tests := []struct {
		id    FieldID
		value string
		want  string
	}{
		{Name, "", "Name required"},
		{Email, "", "Email required"},
		{Email, "a@", "Email invalid"},
		{Area, "", "Area required"},
		{Area, strings.Repeat("a", 16), "Length must not be more than 15 characters"},
		{Street, strings.Repeat("s", 11), "Length must not be more than 10 characters"},
		{Pincode, "", "Pincode required"},
		{Pincode, "12345", "Invalid Pincode"},
		{Pincode, "1234567", "Invalid Pincode"},
	}

	for _, tc := range tests {
		t.Run(tc.id.String()+"="+tc.value, func(t *testing.T) {
			f := newTestForm()
			f.Set(tc.id, tc.value)
			f.Touch(tc.id)

			got := f.Error(tc.id)
			if got == "" || !strings.Contains(got, tc.want) {
				t.Errorf("message = %q, want it to contain %q", got, tc.want)
			}
		})
	}
}

func TestSubmitPincodeLength(t *testing.T) {
	tests := []struct {
		pincode   string
		wantError bool
	}{
		{"12345", true},
		{"123456", false},
	}

	for _, tc := range tests {
		t.Run(tc.pincode, func(t *testing.T) {
			rec := &recorder{}
			f := newTestForm(WithSubmitter(rec))

			v := validValues()
			v.Address.Pincode = tc.pincode
			f.SetAll(v)

			ok, err := f.Submit(context.Background())
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}

			hasError := f.Error(Pincode) != ""
			if hasError != tc.wantError {
				t.Errorf("pincode error present = %v, want %v (%q)", hasError, tc.wantError, f.Error(Pincode))
			}
			if ok == tc.wantError {
				t.Errorf("Submit ok = %v", ok)
			}
			if tc.wantError && len(rec.calls) != 0 {
				t.Error("invalid form must not be delivered")
			}
		})
	}
}

func TestSubmitDeliversExactlyOnce(t *testing.T) {
	rec := &recorder{}
	f := newTestForm(WithSubmitter(rec))
	f.SetAll(validValues())

	ok, err := f.Submit(context.Background())
	if err != nil || !ok {
		t.Fatalf("Submit = (%v, %v), errors %v", ok, err, f.Errors().Map())
	}

	if len(rec.calls) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(rec.calls))
	}
	if diff := cmp.Diff(validValues(), rec.calls[0]); diff != "" {
		t.Errorf("delivered values mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitWithoutInteractionSurfacesErrors(t *testing.T) {
	rec := &recorder{}
	f := newTestForm(WithSubmitter(rec))

	ok, err := f.Submit(context.Background())
	if err != nil || ok {
		t.Fatalf("Submit = (%v, %v), want (false, nil)", ok, err)
	}

	want := map[string]string{
		"name":    "Name required",
		"email":   "Email required",
		"area":    "Area required",
		"street":  "",
		"pincode": "Pincode required",
	}
	errs := f.Errors()
	if diff := cmp.Diff(want, errs.Map()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if len(rec.calls) != 0 {
		t.Error("nothing should be delivered")
	}
}

func TestSubmitDeliveryFailure(t *testing.T) {
	boom := errors.New("boom")
	f := newTestForm(WithSubmitter(&recorder{err: boom}))
	f.SetAll(validValues())

	ok, err := f.Submit(context.Background())
	if ok {
		t.Error("failed delivery should report ok=false")
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestSubmitWithoutSubmitterLogs(t *testing.T) {
	var buf strings.Builder
	f := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	f.SetAll(validValues())

	ok, err := f.Submit(context.Background())
	if !ok || err != nil {
		t.Fatalf("Submit = (%v, %v)", ok, err)
	}
	if !strings.Contains(buf.String(), "data submitted") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestAreaAndStreetMaxLength(t *testing.T) {
	sixteen := strings.Repeat("x", 16)

	f := newTestForm()
	f.Set(Area, sixteen)
	f.Set(Street, sixteen)

	if got := f.Error(Area); got != "Length must not be more than 15 characters" {
		t.Errorf("area = %q", got)
	}
	if got := f.Error(Street); got != "Length must not be more than 10 characters" {
		t.Errorf("street = %q", got)
	}

	ten := strings.Repeat("x", 10)
	f.Set(Street, ten)
	if got := f.Error(Street); got != "" {
		t.Errorf("street within bound should be clean, got %q", got)
	}
}

func TestResetClearsEverything(t *testing.T) {
	rec := &recorder{}
	f := newTestForm(WithSubmitter(rec))
	f.Set(Email, "bad")
	f.Set(Pincode, "1")
	f.Submit(context.Background())

	f.Reset()

	errs := f.Errors()
	if !errs.Empty() {
		t.Errorf("errors after reset: %v", errs.Map())
	}
	for _, s := range f.Snapshot() {
		if s.Touched || s.Dirty || s.Value != "" || s.Message != "" {
			t.Errorf("%s not reset: %+v", s.Field, s)
		}
	}

	// Reset does not count as an edit: aggregating again stays clean.
	f.Aggregate()
	errs = f.Errors()
	if !errs.Empty() {
		t.Errorf("errors after re-aggregation: %v", errs.Map())
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	f := newTestForm()
	f.Set(Email, "bad")
	f.Set(Area, strings.Repeat("a", 20))
	f.Touch(Name)

	f.Aggregate()
	first := f.Errors()
	f.Aggregate()
	second := f.Errors()

	if first != second {
		t.Errorf("aggregate not idempotent:\n%v\n%v", first.Map(), second.Map())
	}
}

func TestSetIgnoresUnknownField(t *testing.T) {
	f := newTestForm()
	f.Set(FieldID(42), "x")
	f.Touch(FieldID(42))

	errs := f.Errors()
	if !errs.Empty() {
		t.Errorf("unexpected errors: %v", errs.Map())
	}
}

func TestWithMessages(t *testing.T) {
	m := DefaultMessages()
	m.set(Name, "required", "Please tell us your name")

	f := newTestForm(WithMessages(m))
	f.Touch(Name)

	if got := f.Error(Name); got != "Please tell us your name" {
		t.Errorf("message = %q", got)
	}
}

// countingObserver records observer callbacks.
type countingObserver struct {
	aggregations int
	outcomes     []string
}

func (o *countingObserver) ObserveErrors(ErrorMap) { o.aggregations++ }

func (o *countingObserver) ObserveSubmit(outcome string, _ time.Duration) {
	o.outcomes = append(o.outcomes, outcome)
}

func TestObserver(t *testing.T) {
	obs := &countingObserver{}
	f := newTestForm(WithObserver(obs), WithSubmitter(&recorder{}))

	f.Submit(context.Background())
	f.SetAll(validValues())
	f.Submit(context.Background())

	if diff := cmp.Diff([]string{OutcomeRejected, OutcomeAccepted}, obs.outcomes); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}
	// Two submits plus one batched SetAll.
	if obs.aggregations != 3 {
		t.Errorf("aggregations = %d, want 3", obs.aggregations)
	}
}

func TestValues(t *testing.T) {
	f := newTestForm()
	f.SetAll(validValues())

	if diff := cmp.Diff(validValues(), f.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
}
