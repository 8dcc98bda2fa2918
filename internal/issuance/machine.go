package issuance

import (
	"context"
	"strings"
	"sync"
	"time"

	apperrors "github.com/louisbranch/luxereward/internal/platform/errors"
)

// Option configures a Machine.
type Option func(*Machine)

// WithContext sets the parent context for Issuer calls. Cancelling it has
// the same effect as Close on in-flight calls.
func WithContext(ctx context.Context) Option {
	return func(m *Machine) {
		if ctx != nil {
			m.parent = ctx
		}
	}
}

// WithCallTimeout bounds each Issuer call. A call that exceeds it fails
// with whatever error the Issuer returns for a cancelled context.
func WithCallTimeout(d time.Duration) Option {
	return func(m *Machine) {
		m.callTimeout = d
	}
}

// Machine is the issuance state machine for one page session.
type Machine struct {
	issuer      Issuer
	parent      context.Context
	callTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	snap        Snapshot
	closed      bool
	settled     *settledSignal
	queue       []queuedTransition
	dispatching bool
	nextID      int
	listeners   []transitionListener
	onFulfilled []fulfilledListener
}

type transitionListener struct {
	id int
	fn func(Transition)
}

type fulfilledListener struct {
	id int
	fn func(code string)
}

type queuedTransition struct {
	transition Transition
	// settled is closed once every listener has seen the transition.
	settled *settledSignal
}

type settledSignal struct {
	ch   chan struct{}
	once sync.Once
}

func newSettledSignal() *settledSignal {
	return &settledSignal{ch: make(chan struct{})}
}

func (s *settledSignal) close() {
	if s == nil {
		return
	}
	s.once.Do(func() { close(s.ch) })
}

// New returns a Machine in StatusIdle that issues through issuer.
func New(issuer Issuer, opts ...Option) *Machine {
	m := &Machine{
		issuer: issuer,
		parent: context.Background(),
		snap:   Snapshot{Status: StatusIdle},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.ctx, m.cancel = context.WithCancel(m.parent)
	m.settled = newSettledSignal()
	m.settled.close()
	return m
}

// Trigger starts an attempt when the machine is Idle. In any other state
// it does nothing. It reports whether an attempt was started.
func (m *Machine) Trigger() bool {
	return m.start(StatusIdle)
}

// Retry starts a new attempt when the machine is Failed. In any other
// state it does nothing. It reports whether an attempt was started.
func (m *Machine) Retry() bool {
	return m.start(StatusFailed)
}

// CurrentState returns the present snapshot.
func (m *Machine) CurrentState() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Settled returns a channel that is closed once no attempt is in flight
// and every listener has observed the settling transition. Before the
// first Trigger the channel is already closed. Listeners must not wait on
// it.
func (m *Machine) Settled() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settled.ch
}

// Subscribe registers fn for every subsequent transition and returns a
// function that removes it.
func (m *Machine) Subscribe(fn func(Transition)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return func() {}
	}
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, transitionListener{id: id, fn: fn})
	return m.remover(id)
}

// OnFulfilled registers fn to run once, on the transition into
// StatusFulfilled. Registering after the machine is already Fulfilled
// never fires fn.
func (m *Machine) OnFulfilled(fn func(code string)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return func() {}
	}
	m.nextID++
	id := m.nextID
	m.onFulfilled = append(m.onFulfilled, fulfilledListener{id: id, fn: fn})
	return m.remover(id)
}

// Close abandons any in-flight Issuer call, drops every listener, and
// waits for the call goroutine to return. The snapshot is left as is.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.listeners = nil
	m.onFulfilled = nil
	for _, item := range m.queue {
		item.settled.close()
	}
	m.queue = nil
	m.settled.close()
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

func (m *Machine) remover(id int) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, l := range m.listeners {
				if l.id == id {
					m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
					return
				}
			}
			for i, l := range m.onFulfilled {
				if l.id == id {
					m.onFulfilled = append(m.onFulfilled[:i:i], m.onFulfilled[i+1:]...)
					return
				}
			}
		})
	}
}

func (m *Machine) start(from Status) bool {
	m.mu.Lock()
	if m.closed || m.snap.Status != from || m.issuer == nil {
		m.mu.Unlock()
		return false
	}
	next := Snapshot{Status: StatusPending, Attempt: m.snap.Attempt + 1}
	m.settled = newSettledSignal()
	m.enqueueLocked(from, next, nil)
	m.snap = next
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(next.Attempt)
	m.dispatch()
	return true
}

// run performs one Issuer call. The goroutine leaves the wait group before
// delivering notifications so a listener may call Close.
func (m *Machine) run(attempt int) {
	code, err := m.issue()
	m.resolve(attempt, code, err)
	m.wg.Done()
	m.dispatch()
}

func (m *Machine) issue() (string, error) {
	ctx := m.ctx
	if m.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.callTimeout)
		defer cancel()
	}
	return m.issuer.Issue(ctx)
}

func (m *Machine) resolve(attempt int, code string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.snap.Status != StatusPending || m.snap.Attempt != attempt {
		return
	}
	code = strings.TrimSpace(code)
	if err == nil && code == "" {
		err = apperrors.New(apperrors.CodeIssuanceFailed, "issuer returned an empty code")
	}

	next := Snapshot{Status: StatusFulfilled, Code: code, Attempt: attempt}
	if err != nil {
		next = Snapshot{
			Status:  StatusFailed,
			Reason:  FailureReason(err),
			Err:     normalizeFailure(err),
			Attempt: attempt,
		}
	}
	m.enqueueLocked(StatusPending, next, m.settled)
	m.snap = next
}

func (m *Machine) enqueueLocked(from Status, next Snapshot, settled *settledSignal) {
	m.queue = append(m.queue, queuedTransition{
		transition: Transition{From: from, To: next.Status, Snapshot: next},
		settled:    settled,
	})
}

// dispatch drains the transition queue. Only one goroutine drains at a
// time; a listener that triggers another transition enqueues it and the
// active dispatcher delivers it after the current one.
func (m *Machine) dispatch() {
	m.mu.Lock()
	if m.dispatching {
		m.mu.Unlock()
		return
	}
	m.dispatching = true
	for len(m.queue) > 0 {
		item := m.queue[0]
		m.queue = m.queue[1:]
		listeners := append([]transitionListener(nil), m.listeners...)
		var fulfilled []fulfilledListener
		if item.transition.To == StatusFulfilled {
			fulfilled = append(fulfilled, m.onFulfilled...)
		}
		m.mu.Unlock()

		for _, l := range listeners {
			l.fn(item.transition)
		}
		for _, l := range fulfilled {
			l.fn(item.transition.Snapshot.Code)
		}
		item.settled.close()

		m.mu.Lock()
	}
	m.dispatching = false
	m.mu.Unlock()
}
