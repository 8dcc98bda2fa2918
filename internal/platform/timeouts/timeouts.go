// Package timeouts defines shared timeout constants used across the service.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// SimulatedIssue is the stand-in latency of the reference coupon issuer.
const SimulatedIssue = 2 * time.Second

// PendingPoll is how often a pending coupon fragment asks for a refresh.
const PendingPoll = 500 * time.Millisecond

// PageSessionTTL bounds how long an idle page session is kept in memory.
const PageSessionTTL = 30 * time.Minute
