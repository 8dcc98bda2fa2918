package promo

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/luxereward/internal/celebrate"
	"github.com/louisbranch/luxereward/internal/issuance"
	"github.com/louisbranch/luxereward/internal/services/promo/routepath"
	"github.com/louisbranch/luxereward/internal/services/shared/htmx"
	"github.com/louisbranch/luxereward/internal/services/shared/httpx"
	"github.com/louisbranch/luxereward/internal/visibility"
)

type testService struct {
	handler http.Handler
	store   *SessionStore
	gate    *gate
}

func newTestService(t *testing.T) testService {
	t.Helper()
	g := newGate()
	store, _ := newTestStore(t, g, nil)
	handler, err := NewHandler(Config{Logger: log.New(io.Discard, "", 0)}, store)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return testService{handler: handler, store: store, gate: g}
}

func (s testService) do(t *testing.T, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(htmx.RequestHeaderKey, "true")
	if method == http.MethodPost && body == nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s testService) newSession(t *testing.T) *Session {
	t.Helper()
	session, err := s.store.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return session
}

func assertBody(t *testing.T, rr *httptest.ResponseRecorder, markers ...string) {
	t.Helper()
	body := rr.Body.String()
	for _, marker := range markers {
		if !strings.Contains(body, marker) {
			t.Fatalf("body missing %q:\n%s", marker, body)
		}
	}
}

func TestPageCreatesSession(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	svc.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := svc.store.Len(); got != 1 {
		t.Fatalf("sessions = %d, want 1", got)
	}
	assertBody(t, rr, "<!DOCTYPE html>", `data-status="idle"`, "Get Exclusive Coupon", `data-reveal="about-limited"`)
	if rr.Header().Get(httpx.RequestIDHeader) == "" {
		t.Fatal("missing request id header")
	}
}

func TestPageEachLoadIsIndependent(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	for i := 0; i < 2; i++ {
		svc.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if got := svc.store.Len(); got != 2 {
		t.Fatalf("sessions = %d, want 2", got)
	}
}

func TestPageLocalizedByQuery(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	rr := httptest.NewRecorder()
	svc.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?lang=pt-BR", nil))

	assertBody(t, rr, `<html lang="pt-BR">`, "Pegar Cupom Exclusivo")
	if cookies := rr.Result().Cookies(); len(cookies) == 0 {
		t.Fatal("language cookie not set")
	}
}

func TestCelebrationOnlyTravelsWithFulfilledFragment(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	session := svc.newSession(t)
	svc.do(t, http.MethodPost, routepath.CouponIssueFor(session.ID), nil)
	svc.gate.release <- result{code: "LUXE-2024-EXCL"}

	triggers := 0
	deadline := time.Now().Add(5 * time.Second)
	for {
		rr := svc.do(t, http.MethodGet, routepath.CouponFor(session.ID), nil)
		fulfilled := strings.Contains(rr.Body.String(), `data-status="fulfilled"`)
		if rr.Header().Get(htmx.TriggerHeaderKey) != "" {
			if !fulfilled {
				t.Fatalf("celebration sent with fragment:\n%s", rr.Body.String())
			}
			triggers++
		}
		if fulfilled {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("coupon never rendered fulfilled")
		}
	}
	if triggers != 1 {
		t.Fatalf("celebrations = %d, want 1", triggers)
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	rr := svc.do(t, http.MethodGet, "/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestIssueFlowFulfillsAndCelebratesOnce(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	session := svc.newSession(t)

	rr := svc.do(t, http.MethodPost, routepath.CouponIssueFor(session.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("issue status = %d, want %d", rr.Code, http.StatusOK)
	}
	assertBody(t, rr, `data-status="pending"`, "Processing Excellence...", `hx-trigger="every 500ms"`)

	// A second click while pending is ignored.
	rr = svc.do(t, http.MethodPost, routepath.CouponIssueFor(session.ID), nil)
	assertBody(t, rr, `data-status="pending"`)

	svc.gate.release <- result{code: "LUXE-2024-EXCL"}
	waitSettled(t, session.Machine)

	rr = svc.do(t, http.MethodGet, routepath.CouponFor(session.ID), nil)
	assertBody(t, rr, "Coupon Issued Successfully", "LUXE-2024-EXCL", "Expires in 30 days. Use at checkout.")
	header := rr.Header().Get(htmx.TriggerHeaderKey)
	if header == "" {
		t.Fatal("missing celebration trigger")
	}
	var payload map[string]celebrate.Effect
	if err := json.Unmarshal([]byte(header), &payload); err != nil {
		t.Fatalf("decode trigger %q: %v", header, err)
	}
	if diff := cmp.Diff(celebrate.Default(), payload[celebrate.TriggerEvent]); diff != "" {
		t.Fatalf("effect mismatch (-want +got):\n%s", diff)
	}

	rr = svc.do(t, http.MethodGet, routepath.CouponFor(session.ID), nil)
	if got := rr.Header().Get(htmx.TriggerHeaderKey); got != "" {
		t.Fatalf("celebration repeated: %q", got)
	}
	rr = svc.do(t, http.MethodPost, routepath.CouponIssueFor(session.ID), nil)
	assertBody(t, rr, `data-status="fulfilled"`)

	if got := svc.gate.Calls(); got != 1 {
		t.Fatalf("issuer calls = %d, want 1", got)
	}
}

func TestIssueFailureOffersRetry(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	session := svc.newSession(t)

	svc.do(t, http.MethodPost, routepath.CouponIssueFor(session.ID), nil)
	svc.gate.release <- result{err: issuance.Fail("The reward desk is closed.")}
	waitSettled(t, session.Machine)

	rr := svc.do(t, http.MethodGet, routepath.CouponFor(session.ID), nil)
	assertBody(t, rr, `data-status="failed"`, "The reward desk is closed.", "Try Again", routepath.CouponRetryFor(session.ID))
	if got := rr.Header().Get(htmx.TriggerHeaderKey); got != "" {
		t.Fatalf("failure raised a celebration: %q", got)
	}

	rr = svc.do(t, http.MethodPost, routepath.CouponRetryFor(session.ID), nil)
	assertBody(t, rr, `data-status="pending"`)
	svc.gate.release <- result{code: "LUXE-2024-EXCL"}
	waitSettled(t, session.Machine)

	rr = svc.do(t, http.MethodGet, routepath.CouponFor(session.ID), nil)
	assertBody(t, rr, `data-status="fulfilled"`)
	if got := rr.Header().Get(htmx.TriggerHeaderKey); got == "" {
		t.Fatal("missing celebration after retry")
	}
}

func TestIssueFailureWithoutReasonIsLocalized(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	session := svc.newSession(t)

	svc.do(t, http.MethodPost, routepath.CouponIssueFor(session.ID), nil)
	svc.gate.release <- result{err: io.ErrUnexpectedEOF}
	waitSettled(t, session.Machine)

	rr := svc.do(t, http.MethodGet, routepath.CouponFor(session.ID), nil)
	assertBody(t, rr, "The reward service could not issue a coupon right now.")
}

func TestRetryWhileIdleIsIgnored(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	session := svc.newSession(t)

	rr := svc.do(t, http.MethodPost, routepath.CouponRetryFor(session.ID), nil)
	assertBody(t, rr, `data-status="idle"`)
	if got := svc.gate.Calls(); got != 0 {
		t.Fatalf("issuer calls = %d, want 0", got)
	}
}

func TestCouponUnknownPage(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	rr := svc.do(t, http.MethodPost, routepath.CouponIssueFor("gone"), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	assertBody(t, rr, "This page has expired. Reload to continue.")

	rr = svc.do(t, http.MethodGet, routepath.Coupon, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing page status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCouponIssueAcceptsFormBody(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	session := svc.newSession(t)
	form := url.Values{routepath.PageParam: {session.ID}}
	// Without a form content type the body is not parsed.
	rr := svc.do(t, http.MethodPost, routepath.CouponIssue, strings.NewReader(form.Encode()))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	req := httptest.NewRequest(http.MethodPost, routepath.CouponIssue, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	svc.handler.ServeHTTP(rec, req)
	assertBody(t, rec, `data-status="pending"`)
}

func postViewport(t *testing.T, svc testService, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, routepath.Viewport, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	svc.handler.ServeHTTP(rr, req)
	return rr
}

func decodeFlags(t *testing.T, rr *httptest.ResponseRecorder) visibility.Flags {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	var flags visibility.Flags
	if err := json.Unmarshal(rr.Body.Bytes(), &flags); err != nil {
		t.Fatalf("decode flags: %v", err)
	}
	return flags
}

func TestViewportScrollAndReveal(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	session := svc.newSession(t)

	flags := decodeFlags(t, postViewport(t, svc, `{"page":"`+session.ID+`","offset":200,"regions":{"about-limited":true}}`))
	want := visibility.Flags{
		NavScrolled: true,
		Revealed:    map[string]bool{"about-limited": true, "about-premium": false, "about-secure": false},
	}
	if diff := cmp.Diff(want, flags); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}

	flags = decodeFlags(t, postViewport(t, svc, `{"page":"`+session.ID+`","offset":0,"regions":{"about-limited":false}}`))
	want.NavScrolled = false
	if diff := cmp.Diff(want, flags); diff != "" {
		t.Fatalf("flags after scroll up mismatch (-want +got):\n%s", diff)
	}
}

func TestViewportThresholdBoundary(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	session := svc.newSession(t)

	if flags := decodeFlags(t, postViewport(t, svc, `{"page":"`+session.ID+`","offset":50}`)); flags.NavScrolled {
		t.Fatal("offset 50 marked nav scrolled")
	}
	if flags := decodeFlags(t, postViewport(t, svc, `{"page":"`+session.ID+`","offset":51}`)); !flags.NavScrolled {
		t.Fatal("offset 51 did not mark nav scrolled")
	}
}

func TestViewportErrors(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	session := svc.newSession(t)

	tests := []struct {
		name    string
		payload string
		status  int
		code    string
	}{
		{name: "malformed", payload: `{"page":`, status: http.StatusBadRequest, code: "VIEWPORT_MALFORMED"},
		{name: "empty", payload: ``, status: http.StatusBadRequest, code: "VIEWPORT_MALFORMED"},
		{name: "unknown_page", payload: `{"page":"gone"}`, status: http.StatusNotFound, code: "PAGE_SESSION_NOT_FOUND"},
		{name: "unknown_region", payload: `{"page":"` + session.ID + `","regions":{"hero":true}}`, status: http.StatusBadRequest, code: "VIEWPORT_UNKNOWN_REGION"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := postViewport(t, svc, tc.payload)
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			var body map[string]httpx.ErrorBody
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if got := body["error"].Code; got != tc.code {
				t.Fatalf("error code = %q, want %q", got, tc.code)
			}
			if body["error"].Message == "" {
				t.Fatal("error message is empty")
			}
		})
	}
}

func TestHealthAndStatic(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	rr := svc.do(t, http.MethodGet, routepath.Health, nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("health = %d %q", rr.Code, rr.Body.String())
	}

	for _, asset := range []string{"promo.js", "promo.css"} {
		rr = svc.do(t, http.MethodGet, routepath.Static("", asset), nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want %d", asset, rr.Code, http.StatusOK)
		}
	}
}

func TestNewHandlerRequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("NewHandler(nil store) error = nil")
	}
}
