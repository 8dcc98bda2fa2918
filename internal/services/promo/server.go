// Package promo hosts the promotional reward page and its coupon and
// viewport endpoints.
package promo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/luxereward/internal/issuance"
	"github.com/louisbranch/luxereward/internal/platform/branding"
	"github.com/louisbranch/luxereward/internal/platform/timeouts"
	"github.com/louisbranch/luxereward/internal/services/promo/routepath"
	promostatic "github.com/louisbranch/luxereward/internal/services/promo/static"
	"github.com/louisbranch/luxereward/internal/services/shared/httpx"
	"github.com/louisbranch/luxereward/internal/visibility"
)

// Config defines startup inputs for the promo service.
type Config struct {
	HTTPAddr         string
	AssetBaseURL     string
	CouponCode       string
	CouponExpiryDays int
	// IssueLatency delays the simulated issuer; zero uses timeouts.SimulatedIssue.
	IssueLatency     time.Duration
	NavThreshold     float64
	SessionTTL       time.Duration
	// Issuer overrides the simulated issuer for every page session.
	Issuer issuance.Issuer
	// Tracer records an issuance span per issuer call when set.
	Tracer trace.Tracer
	Logger *log.Logger
}

func (cfg Config) withDefaults() Config {
	if strings.TrimSpace(cfg.CouponCode) == "" {
		cfg.CouponCode = branding.CouponCode
	}
	if cfg.CouponExpiryDays <= 0 {
		cfg.CouponExpiryDays = branding.CouponExpiryDays
	}
	if cfg.IssueLatency <= 0 {
		cfg.IssueLatency = timeouts.SimulatedIssue
	}
	if cfg.NavThreshold <= 0 {
		cfg.NavThreshold = visibility.DefaultNavThreshold
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = timeouts.PageSessionTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return cfg
}

// newIssuerFactory returns the per-page issuer: the configured one or the
// simulated reward service, traced when a tracer is configured.
func (cfg Config) newIssuerFactory() func(pageID string) issuance.Issuer {
	return func(pageID string) issuance.Issuer {
		issuer := cfg.Issuer
		if issuer == nil {
			issuer = issuance.SimulatedIssuer{Code: cfg.CouponCode, Latency: cfg.IssueLatency}
		}
		return issuance.Traced(issuer, cfg.Tracer, attribute.String("page.id", pageID))
	}
}

// NewSessionStoreFromConfig builds the page session store cfg describes.
func NewSessionStoreFromConfig(cfg Config) *SessionStore {
	cfg = cfg.withDefaults()
	return NewSessionStore(SessionStoreConfig{
		TTL:          cfg.SessionTTL,
		NavThreshold: cfg.NavThreshold,
		Regions:      DefaultRegions(),
		NewIssuer:    cfg.newIssuerFactory(),
		Logger:       cfg.Logger,
	})
}

// NewHandler builds the root handler serving page sessions from sessions.
func NewHandler(cfg Config, sessions *SessionStore) (http.Handler, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	cfg = cfg.withDefaults()
	h := &handlers{
		sessions:     sessions,
		assetBaseURL: strings.TrimSpace(cfg.AssetBaseURL),
		expiryDays:   cfg.CouponExpiryDays,
		navThreshold: cfg.NavThreshold,
		pollInterval: timeouts.PendingPoll,
		regions:      DefaultRegions(),
	}
	mux := http.NewServeMux()
	mux.Handle(http.MethodGet+" "+routepath.StaticPrefix, http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(promostatic.FS))))
	h.mount(mux)
	return httpx.Chain(mux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		httpx.RequestLogger(cfg.Logger),
	), nil
}

// Server hosts the promo HTTP surface and its page session store.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	sessions   *SessionStore
}

// NewServer validates config and constructs a promo server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	sessions := NewSessionStoreFromConfig(cfg)
	handler, err := NewHandler(cfg, sessions)
	if err != nil {
		sessions.Close()
		return nil, fmt.Errorf("compose promo handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		sessions: sessions,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// Sessions exposes the page session store.
func (s *Server) Sessions() *SessionStore {
	if s == nil {
		return nil
	}
	return s.sessions
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("promo server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()
	log.Printf("promo listening addr=%s", s.httpAddr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown promo http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve promo http: %w", err)
	}
}

// Close closes the listener and ends every page session.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.sessions != nil {
		s.sessions.Close()
	}
}
