// Package issuance owns the lifecycle of one coupon issuance attempt.
//
// A Machine starts Idle, moves to Pending when triggered, and settles in
// Fulfilled (terminal) or Failed once its Issuer resolves. Failed can be
// retried. Trigger and Retry are safe to call from any goroutine: at most
// one Issuer call is ever in flight, and repeated calls while Pending or
// Fulfilled are no-ops.
//
// Transitions are delivered to subscribers in the order they happened,
// one dispatcher at a time, so listeners observe Idle→Pending before
// Pending→Fulfilled even when the Issuer resolves immediately. OnFulfilled
// listeners fire on the edge into Fulfilled, never on later reads.
//
// A pending attempt cannot be cancelled. Close ends the page session that
// owns the machine: it abandons any in-flight Issuer call without a state
// transition or notification.
package issuance
