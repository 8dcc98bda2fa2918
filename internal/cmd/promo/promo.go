// Package promo parses promo command flags and runs the page service.
package promo

import (
	"context"
	"flag"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	entrypoint "github.com/louisbranch/luxereward/internal/platform/cmd"
	"github.com/louisbranch/luxereward/internal/platform/otel"
	promoservice "github.com/louisbranch/luxereward/internal/services/promo"
)

// Config holds promo command configuration.
type Config struct {
	HTTPAddr         string        `env:"PROMO_HTTP_ADDR"          envDefault:"localhost:8080"`
	IssueLatency     time.Duration `env:"PROMO_ISSUE_LATENCY"      envDefault:"2s"`
	CouponCode       string        `env:"PROMO_COUPON_CODE"        envDefault:"LUXE-2024-EXCL"`
	CouponExpiryDays int           `env:"PROMO_COUPON_EXPIRY_DAYS" envDefault:"30"`
	NavThreshold     float64       `env:"PROMO_NAV_THRESHOLD"      envDefault:"50"`
	SessionTTL       time.Duration `env:"PROMO_SESSION_TTL"        envDefault:"30m"`
	AssetBaseURL     string        `env:"PROMO_ASSET_BASE_URL"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args, bindFlags); err != nil {
		return Config{}, err
	}
	if cfg.IssueLatency < 0 {
		return Config{}, fmt.Errorf("issue latency must not be negative: %s", cfg.IssueLatency)
	}
	return cfg, nil
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "promo HTTP listen address")
	fs.DurationVar(&cfg.IssueLatency, "issue-latency", cfg.IssueLatency, "simulated coupon issuance latency")
	fs.StringVar(&cfg.CouponCode, "coupon-code", cfg.CouponCode, "coupon code handed out by the simulated issuer")
	fs.IntVar(&cfg.CouponExpiryDays, "coupon-expiry-days", cfg.CouponExpiryDays, "coupon validity shown to visitors, in days")
	fs.Float64Var(&cfg.NavThreshold, "nav-threshold", cfg.NavThreshold, "scroll offset past which the navigation bar changes chrome")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "idle time before a page session is evicted")
	fs.StringVar(&cfg.AssetBaseURL, "asset-base-url", cfg.AssetBaseURL, "external base URL for static assets")
}

// Run serves the promo page and sweeps expired page sessions until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePromo, func(ctx context.Context) error {
		server, err := promoservice.NewServer(ctx, promoservice.Config{
			HTTPAddr:         cfg.HTTPAddr,
			AssetBaseURL:     cfg.AssetBaseURL,
			CouponCode:       cfg.CouponCode,
			CouponExpiryDays: cfg.CouponExpiryDays,
			IssueLatency:     cfg.IssueLatency,
			NavThreshold:     cfg.NavThreshold,
			SessionTTL:       cfg.SessionTTL,
			Tracer:           otel.Tracer("issuance"),
		})
		if err != nil {
			return fmt.Errorf("init promo server: %w", err)
		}
		defer server.Close()

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			return server.ListenAndServe(groupCtx)
		})
		group.Go(func() error {
			return server.Sessions().RunJanitor(groupCtx)
		})
		if err := group.Wait(); err != nil {
			return fmt.Errorf("serve promo: %w", err)
		}
		return nil
	})
}
