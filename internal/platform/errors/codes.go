// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Issuance errors
	CodeIssuanceFailed      Code = "ISSUANCE_FAILED"
	CodeIssuanceUnavailable Code = "ISSUANCE_UNAVAILABLE"

	// Page session errors
	CodePageSessionNotFound Code = "PAGE_SESSION_NOT_FOUND"
	CodePageSessionMissing  Code = "PAGE_SESSION_MISSING"

	// Viewport errors
	CodeViewportUnknownRegion Code = "VIEWPORT_UNKNOWN_REGION"
	CodeViewportMalformed     Code = "VIEWPORT_MALFORMED"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - validation failures, bad input
	case CodePageSessionMissing,
		CodeViewportUnknownRegion,
		CodeViewportMalformed:
		return http.StatusBadRequest

	// NotFound - resource doesn't exist (or was evicted)
	case CodePageSessionNotFound:
		return http.StatusNotFound

	// BadGateway / ServiceUnavailable - collaborator outcomes
	case CodeIssuanceFailed:
		return http.StatusBadGateway
	case CodeIssuanceUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
