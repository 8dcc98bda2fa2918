package issuance

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/louisbranch/luxereward/internal/platform/errors"
	"github.com/louisbranch/luxereward/internal/platform/timeouts"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Issuer obtains a reward code. A nil error is success(code); any error
// is failure(reason). Each call must resolve exactly once.
type Issuer interface {
	Issue(ctx context.Context) (string, error)
}

// IssuerFunc adapts a function to Issuer.
type IssuerFunc func(ctx context.Context) (string, error)

// Issue calls f.
func (f IssuerFunc) Issue(ctx context.Context) (string, error) {
	return f(ctx)
}

// Failure is an issuer error carrying a reason safe to show users.
type Failure struct {
	Reason string
	Cause  error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return "issuance failed: " + f.Reason + ": " + f.Cause.Error()
	}
	return "issuance failed: " + f.Reason
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Fail returns a Failure with the given user-facing reason.
func Fail(reason string) error {
	return &Failure{Reason: strings.TrimSpace(reason)}
}

// FailureReason extracts the user-facing reason from err, or "" when the
// issuer did not supply one.
func FailureReason(err error) string {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Reason
	}
	return ""
}

// normalizeFailure guarantees the stored error carries a platform code so
// the render layer can always localize it.
func normalizeFailure(err error) error {
	if apperrors.GetCode(err) != apperrors.CodeUnknown {
		return err
	}
	return apperrors.Wrap(apperrors.CodeIssuanceFailed, "issue coupon", err)
}

// SimulatedIssuer stands in for a remote reward service: it waits Latency
// and then hands out the same Code to every caller.
type SimulatedIssuer struct {
	Code    string
	Latency time.Duration
}

// NewSimulatedIssuer returns the reference issuer: code after 2s.
func NewSimulatedIssuer(code string) SimulatedIssuer {
	return SimulatedIssuer{Code: code, Latency: timeouts.SimulatedIssue}
}

// Issue waits for the configured latency, honouring ctx.
func (s SimulatedIssuer) Issue(ctx context.Context) (string, error) {
	code := strings.TrimSpace(s.Code)
	if code == "" {
		return "", apperrors.New(apperrors.CodeIssuanceUnavailable, "simulated issuer has no code configured")
	}
	if s.Latency <= 0 {
		return code, nil
	}
	timer := time.NewTimer(s.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", apperrors.Wrap(apperrors.CodeIssuanceUnavailable, "simulated issue interrupted", ctx.Err())
	case <-timer.C:
		return code, nil
	}
}

// Traced wraps next so every call records an "issuance.issue" span.
func Traced(next Issuer, tracer trace.Tracer, attrs ...attribute.KeyValue) Issuer {
	if next == nil || tracer == nil {
		return next
	}
	return IssuerFunc(func(ctx context.Context) (string, error) {
		ctx, span := tracer.Start(ctx, "issuance.issue", trace.WithAttributes(attrs...))
		defer span.End()

		code, err := next.Issue(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(
				attribute.String("issuance.outcome", string(StatusFailed)),
				attribute.String("issuance.error_code", string(apperrors.GetCode(normalizeFailure(err)))),
			)
			return "", err
		}
		span.SetAttributes(attribute.String("issuance.outcome", string(StatusFulfilled)))
		return code, nil
	})
}
