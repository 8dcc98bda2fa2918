package promo

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/luxereward/internal/celebrate"
	"github.com/louisbranch/luxereward/internal/issuance"
	apperrors "github.com/louisbranch/luxereward/internal/platform/errors"
	"github.com/louisbranch/luxereward/internal/platform/id"
	"github.com/louisbranch/luxereward/internal/platform/timeouts"
	"github.com/louisbranch/luxereward/internal/visibility"
)

// Observed page regions, in page order.
const (
	RegionAboutLimited = "about-limited"
	RegionAboutPremium = "about-premium"
	RegionAboutSecure  = "about-secure"
)

// DefaultRegions lists the reveal regions mounted on every page session.
func DefaultRegions() []string {
	return []string{RegionAboutLimited, RegionAboutPremium, RegionAboutSecure}
}

// Session is the server-side state of one page load.
type Session struct {
	ID       string
	Machine  *issuance.Machine
	Observer *visibility.Observer

	celebrations *celebrate.Queue
	unsubscribe  []func()
}

// CelebrationFor returns the queued effect when snap shows the coupon as
// Fulfilled. Any other snapshot leaves the effect queued for the first
// response that renders Fulfilled.
func (s *Session) CelebrationFor(snap issuance.Snapshot) (celebrate.Effect, bool) {
	if snap.Status != issuance.StatusFulfilled {
		return celebrate.Effect{}, false
	}
	return s.celebrations.Drain()
}

// SettledSnapshot returns the machine state. When no attempt is pending it
// waits until listeners have seen the settling transition, so a queued
// celebration is visible to the caller.
func (s *Session) SettledSnapshot(ctx context.Context) issuance.Snapshot {
	settled := s.Machine.Settled()
	snap := s.Machine.CurrentState()
	if snap.Status == issuance.StatusPending {
		return snap
	}
	select {
	case <-settled:
	case <-ctx.Done():
	}
	return s.Machine.CurrentState()
}

func (s *Session) close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.Machine.Close()
	s.Observer.Close()
}

// SessionStoreConfig configures page session creation and eviction.
type SessionStoreConfig struct {
	// TTL evicts sessions idle for longer than this.
	TTL          time.Duration
	NavThreshold float64
	Regions      []string
	// NewIssuer returns the issuer used by one page session.
	NewIssuer   func(pageID string) issuance.Issuer
	CallTimeout time.Duration
	Logger      *log.Logger
	Now         func() time.Time
}

type storedSession struct {
	session  *Session
	lastSeen time.Time
}

// SessionStore keeps page sessions in memory.
type SessionStore struct {
	cfg SessionStoreConfig

	mu       sync.Mutex
	sessions map[string]*storedSession
	closed   bool
}

// NewSessionStore returns an empty store.
func NewSessionStore(cfg SessionStoreConfig) *SessionStore {
	if cfg.TTL <= 0 {
		cfg.TTL = timeouts.PageSessionTTL
	}
	if cfg.Regions == nil {
		cfg.Regions = DefaultRegions()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SessionStore{cfg: cfg, sessions: map[string]*storedSession{}}
}

// Create starts a page session with an Idle machine and a fresh observer.
func (s *SessionStore) Create() (*Session, error) {
	if s.cfg.NewIssuer == nil {
		return nil, apperrors.New(apperrors.CodeIssuanceUnavailable, "no issuer configured")
	}
	pageID, err := id.NewID()
	if err != nil {
		return nil, fmt.Errorf("new page id: %w", err)
	}

	var opts []issuance.Option
	if s.cfg.CallTimeout > 0 {
		opts = append(opts, issuance.WithCallTimeout(s.cfg.CallTimeout))
	}
	session := &Session{
		ID:           pageID,
		Machine:      issuance.New(s.cfg.NewIssuer(pageID), opts...),
		Observer:     visibility.NewObserver(s.cfg.NavThreshold),
		celebrations: &celebrate.Queue{},
	}
	for _, region := range s.cfg.Regions {
		if _, err := session.Observer.Mount(region); err != nil {
			session.close()
			return nil, fmt.Errorf("mount region %q: %w", region, err)
		}
	}

	logger := s.cfg.Logger
	launcher := celebrate.NewOnce(session.celebrations)
	session.unsubscribe = append(session.unsubscribe,
		session.Machine.Subscribe(func(t issuance.Transition) {
			if t.To == issuance.StatusFailed {
				logger.Printf("issuance page=%s %s -> %s attempt=%d err=%v", pageID, t.From, t.To, t.Snapshot.Attempt, t.Snapshot.Err)
				return
			}
			logger.Printf("issuance page=%s %s -> %s attempt=%d", pageID, t.From, t.To, t.Snapshot.Attempt)
		}),
		session.Machine.OnFulfilled(func(string) {
			launcher.Launch(celebrate.Default())
		}),
	)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		session.close()
		return nil, apperrors.New(apperrors.CodeIssuanceUnavailable, "session store is closed")
	}
	s.sessions[pageID] = &storedSession{session: session, lastSeen: s.cfg.Now()}
	s.mu.Unlock()
	return session, nil
}

// Lookup returns the live session for pageID and marks it active.
func (s *SessionStore) Lookup(pageID string) (*Session, error) {
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return nil, apperrors.New(apperrors.CodePageSessionMissing, "page id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[pageID]
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodePageSessionNotFound, "page session not found", map[string]string{"PageID": pageID})
	}
	stored.lastSeen = s.cfg.Now()
	return stored.session, nil
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle longer than the TTL and returns how many.
func (s *SessionStore) Sweep() int {
	cutoff := s.cfg.Now().Add(-s.cfg.TTL)
	var evicted []*Session
	s.mu.Lock()
	for pageID, stored := range s.sessions {
		if stored.lastSeen.Before(cutoff) {
			evicted = append(evicted, stored.session)
			delete(s.sessions, pageID)
		}
	}
	s.mu.Unlock()

	for _, session := range evicted {
		session.close()
	}
	return len(evicted)
}

// RunJanitor sweeps expired sessions until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context) error {
	interval := s.cfg.TTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.cfg.Logger.Printf("page sessions evicted=%d live=%d", n, s.Len())
			}
		}
	}
}

// Close ends every session and rejects new ones.
func (s *SessionStore) Close() {
	s.mu.Lock()
	s.closed = true
	sessions := s.sessions
	s.sessions = map[string]*storedSession{}
	s.mu.Unlock()

	for _, stored := range sessions {
		stored.session.close()
	}
}
