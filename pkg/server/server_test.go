package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/addressform/pkg/addressform"
	"github.com/vango-dev/addressform/pkg/middleware"
	"github.com/vango-dev/addressform/pkg/submit"
)

const validJSON = `{"name":"Asha","email":"asha@example.com","address":{"area":"Koregaon Park","street":"Lane 5","pincode":"411001"}}`

var noErrors = map[string]string{
	"name": "", "email": "", "area": "", "street": "", "pincode": "",
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, config *Config, opts ...Option) *Server {
	t.Helper()
	if config == nil {
		config = DefaultConfig()
		config.RateLimit = 0
	}
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s, err := New(config, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func postJSON(s *Server, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func postForm(s *Server, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) result {
	t.Helper()
	var res result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return res
}

func TestIndexRendersEmptyForm(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`<!DOCTYPE html>`, `id="address-form"`, `name="address.pincode"`, `<legend>Address</legend>`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, `class="field-error"`) {
		t.Error("empty form shows errors")
	}
}

func TestSubmitJSONValid(t *testing.T) {
	mem := submit.NewMemory()
	s := newTestServer(t, nil, WithFormOptions(addressform.WithSubmitter(mem)))

	w := postJSON(s, "/submit", validJSON)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	res := decodeResult(t, w)
	if !res.Valid || !res.Submitted || res.Values == nil {
		t.Fatalf("result = %+v", res)
	}
	if diff := cmp.Diff(noErrors, res.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if mem.Len() != 1 {
		t.Fatalf("delivered %d times, want 1", mem.Len())
	}
	if got := mem.Records()[0].Values.Address.Pincode; got != "411001" {
		t.Errorf("pincode = %q", got)
	}
}

func TestSubmitJSONInvalidPincode(t *testing.T) {
	mem := submit.NewMemory()
	s := newTestServer(t, nil, WithFormOptions(addressform.WithSubmitter(mem)))

	body := strings.Replace(validJSON, "411001", "12345", 1)
	w := postJSON(s, "/submit", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}

	res := decodeResult(t, w)
	want := map[string]string{
		"name": "", "email": "", "area": "", "street": "", "pincode": "Invalid Pincode",
	}
	if diff := cmp.Diff(want, res.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if res.Valid || res.Submitted {
		t.Errorf("result = %+v", res)
	}
	if mem.Len() != 0 {
		t.Error("invalid form was delivered")
	}
}

func TestSubmitFormRendersErrors(t *testing.T) {
	s := newTestServer(t, nil)

	w := postForm(s, "/submit", url.Values{
		"name":            {"Asha"},
		"email":           {"asha@example.com"},
		"address.area":    {strings.Repeat("a", 16)},
		"address.street":  {strings.Repeat("a", 16)},
		"address.pincode": {"411001"},
		"submit":          {""},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"Length must not be more than 15 characters",
		"Length must not be more than 10 characters",
		`aria-invalid="true"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestSubmitEmptyFormShowsRequiredMessages(t *testing.T) {
	s := newTestServer(t, nil)

	res := decodeResult(t, postJSON(s, "/submit", `{}`))
	want := map[string]string{
		"name":    "Name required",
		"email":   "Email required",
		"area":    "Area required",
		"street":  "",
		"pincode": "Pincode required",
	}
	if diff := cmp.Diff(want, res.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitBadInput(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"name":`},
		{"non-string", `{"name":42}`},
		{"unknown field", `{"nickname":"x"}`},
		{"unknown nested field", `{"address":{"city":"x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(s, "/submit", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if res := decodeResult(t, w); res.Error == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestSubmitSinkFailure(t *testing.T) {
	failing := addressform.SubmitterFunc(func(ctx context.Context, v addressform.Values) error {
		return errors.New("bucket unavailable")
	})
	s := newTestServer(t, nil, WithFormOptions(addressform.WithSubmitter(failing)))

	w := postJSON(s, "/submit", validJSON)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	res := decodeResult(t, w)
	if res.Submitted || res.Error == "" {
		t.Errorf("result = %+v", res)
	}
	if strings.Contains(w.Body.String(), "bucket unavailable") {
		t.Error("sink error leaked to client")
	}
}

func TestValidateOnlyShowsPostedFields(t *testing.T) {
	s := newTestServer(t, nil)

	w := postJSON(s, "/validate", `{"name":"","email":"not-an-email"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	res := decodeResult(t, w)
	want := map[string]string{
		"name":    "Name required",
		"email":   "Email invalid",
		"area":    "",
		"street":  "",
		"pincode": "",
	}
	if diff := cmp.Diff(want, res.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if res.Valid || res.Submitted {
		t.Errorf("result = %+v", res)
	}
}

func TestResetJSON(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	res := decodeResult(t, w)
	if diff := cmp.Diff(noErrors, res.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestResetPage(t *testing.T) {
	s := newTestServer(t, nil)

	w := postForm(s, "/reset", url.Values{"name": {"Asha"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), `value="Asha"`) {
		t.Error("reset page kept a posted value")
	}
}

func TestRateLimit(t *testing.T) {
	config := DefaultConfig()
	config.RateLimit = 1
	config.RateBurst = 1
	m := middleware.NewMetrics(middleware.WithRegistry(prometheus.NewRegistry()))
	s := newTestServer(t, config, WithMetrics(m))

	if w := postJSON(s, "/validate", `{}`); w.Code != http.StatusOK {
		t.Fatalf("first status = %d", w.Code)
	}
	w := postJSON(s, "/validate", `{}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	// Pages are not limited.
	page := httptest.NewRecorder()
	s.ServeHTTP(page, httptest.NewRequest(http.MethodGet, "/", nil))
	if page.Code != http.StatusOK {
		t.Errorf("index status = %d", page.Code)
	}

	metrics := httptest.NewRecorder()
	s.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(metrics.Body.String(), "addressform_rate_limited_total 1") {
		t.Errorf("rate limit not counted:\n%s", metrics.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := middleware.NewMetrics(middleware.WithRegistry(prometheus.NewRegistry()))
	s := newTestServer(t, nil, WithMetrics(m))

	postJSON(s, "/submit", validJSON)

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	for _, want := range []string{
		`addressform_http_requests_total{method="POST",route="/submit",status="202"} 1`,
		`addressform_submissions_total{outcome="accepted"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetricsDisabledWithoutMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	addr := "http://" + ln.Addr().String() + "/"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(addr)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestConfigDefaults(t *testing.T) {
	c := (&Config{Address: ":9000", RateLimit: 2}).withDefaults()

	if c.Address != ":9000" {
		t.Errorf("Address = %q", c.Address)
	}
	if c.Title != "Address" || c.MaxBodySize != 64*1024 || c.CheckOrigin == nil {
		t.Errorf("defaults not applied: %+v", c)
	}
	if c.RateBurst != 1 {
		t.Errorf("RateBurst = %d, want 1", c.RateBurst)
	}
}

func TestSameOriginCheck(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://example.com", true},
		{"http://evil.com", false},
		{"://bad", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "http://example.com/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := SameOriginCheck(req); got != tt.want {
			t.Errorf("SameOriginCheck(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
