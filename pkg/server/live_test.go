package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/addressform/pkg/addressform"
	"github.com/vango-dev/addressform/pkg/middleware"
	"github.com/vango-dev/addressform/pkg/submit"
)

func dialLive(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, msg liveMessage) result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	conn.SetWriteDeadline(deadline)
	conn.SetReadDeadline(deadline)
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	var res result
	if err := conn.ReadJSON(&res); err != nil {
		t.Fatalf("read: %v", err)
	}
	return res
}

func TestLiveValidation(t *testing.T) {
	mem := submit.NewMemory()
	s := newTestServer(t, nil, WithFormOptions(addressform.WithSubmitter(mem)))
	conn := dialLive(t, s)

	// Focus and leave pincode without typing.
	res := exchange(t, conn, liveMessage{Op: opBlur, Field: "address.pincode"})
	if got := res.Errors["pincode"]; got != "Pincode required" {
		t.Errorf("pincode = %q", got)
	}
	if res.Errors["name"] != "" {
		t.Errorf("untouched name shows %q", res.Errors["name"])
	}

	res = exchange(t, conn, liveMessage{Op: opInput, Field: "address.pincode", Value: "12345"})
	if got := res.Errors["pincode"]; got != "Invalid Pincode" {
		t.Errorf("pincode = %q", got)
	}

	// Submit touches everything.
	res = exchange(t, conn, liveMessage{Op: opSubmit})
	if res.Submitted || res.Errors["name"] != "Name required" {
		t.Errorf("submit result = %+v", res)
	}

	for field, value := range map[string]string{
		"name":            "Asha",
		"email":           "asha@example.com",
		"address.area":    "Koregaon Park",
		"address.pincode": "411001",
	} {
		exchange(t, conn, liveMessage{Op: opInput, Field: field, Value: value})
	}
	res = exchange(t, conn, liveMessage{Op: opSubmit})
	if !res.Submitted || !res.Valid {
		t.Fatalf("submit result = %+v", res)
	}
	if mem.Len() != 1 {
		t.Errorf("delivered %d, want 1", mem.Len())
	}

	res = exchange(t, conn, liveMessage{Op: opReset})
	for field, msg := range res.Errors {
		if msg != "" {
			t.Errorf("after reset %s = %q", field, msg)
		}
	}
}

func TestLiveSubmitRateLimit(t *testing.T) {
	config := DefaultConfig()
	config.RateLimit = 0.01
	config.RateBurst = 1
	mem := submit.NewMemory()
	m := middleware.NewMetrics(middleware.WithRegistry(prometheus.NewRegistry()))
	s := newTestServer(t, config, WithMetrics(m), WithFormOptions(addressform.WithSubmitter(mem)))
	conn := dialLive(t, s)

	for field, value := range map[string]string{
		"name":            "Asha",
		"email":           "asha@example.com",
		"address.area":    "Koregaon Park",
		"address.pincode": "411001",
	} {
		exchange(t, conn, liveMessage{Op: opInput, Field: field, Value: value})
	}

	res := exchange(t, conn, liveMessage{Op: opSubmit})
	if !res.Submitted {
		t.Fatalf("first submit = %+v", res)
	}
	for i := 0; i < 3; i++ {
		res = exchange(t, conn, liveMessage{Op: opSubmit})
		if res.Submitted || res.Error != "rate limit exceeded" {
			t.Errorf("submit %d = %+v", i+2, res)
		}
	}
	if mem.Len() != 1 {
		t.Errorf("delivered %d, want 1", mem.Len())
	}

	// Edits are not limited.
	res = exchange(t, conn, liveMessage{Op: opInput, Field: "address.street", Value: "Lane 5"})
	if res.Error != "" {
		t.Errorf("input after limit: %q", res.Error)
	}

	// A second connection from the same client shares the bucket.
	other := dialLive(t, s)
	exchange(t, other, liveMessage{Op: opInput, Field: "name", Value: "Ravi"})
	if res := exchange(t, other, liveMessage{Op: opSubmit}); res.Error != "rate limit exceeded" {
		t.Errorf("second connection submit = %+v", res)
	}

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "addressform_rate_limited_total 4") {
		t.Errorf("rate limit not counted:\n%s", w.Body.String())
	}
}

func TestLiveRejectsBadMessages(t *testing.T) {
	s := newTestServer(t, nil)
	conn := dialLive(t, s)

	res := exchange(t, conn, liveMessage{Op: opInput, Field: "address.city", Value: "x"})
	if res.Error == "" {
		t.Error("unknown field accepted")
	}

	res = exchange(t, conn, liveMessage{Op: "explode"})
	if !strings.Contains(res.Error, "unknown op") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestLiveRejectsCrossOrigin(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s)
	defer ts.Close()

	header := http.Header{"Origin": {"http://evil.example"}}
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("cross-origin dial succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("resp = %v", resp)
	}
}
