// Package htmx renders templ components for HTMX and full-page requests.
package htmx

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

const (
	// RequestHeaderKey is the HTMX request header used to detect partial updates.
	RequestHeaderKey = "HX-Request"
	// TriggerHeaderKey carries client-side events raised by a response.
	TriggerHeaderKey = "HX-Trigger"
)

// IsHTMXRequest reports whether the request was initiated by HTMX.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(RequestHeaderKey), "true")
}

// SetTrigger sets the HX-Trigger header to payload, a JSON event map.
func SetTrigger(w http.ResponseWriter, payload string) {
	if w == nil {
		return
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return
	}
	w.Header().Set(TriggerHeaderKey, payload)
}

// Render writes component with status. The component renders into a buffer
// first so a render error leaves the response untouched for the caller.
func Render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) error {
	if w == nil || component == nil {
		return nil
	}
	var body bytes.Buffer
	if err := component.Render(requestContext(r), &body); err != nil {
		return err
	}
	if status <= 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Add("Vary", RequestHeaderKey)
	w.WriteHeader(status)
	_, err := w.Write(body.Bytes())
	return err
}

// RenderPage renders fragment for HTMX requests and full otherwise. A nil
// fragment falls back to full and the reverse.
func RenderPage(w http.ResponseWriter, r *http.Request, status int, fragment, full templ.Component) error {
	target := full
	if IsHTMXRequest(r) {
		target = fragment
	}
	if target == nil {
		target = fragment
		if target == nil {
			target = full
		}
	}
	return Render(w, r, status, target)
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}
