// Package simulator parses simulator command flags and runs the HTTP service.
package simulator

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/cypress-simulator/internal/platform/cmd"
	"github.com/louisbranch/cypress-simulator/internal/platform/config"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/storage"
	"github.com/louisbranch/cypress-simulator/internal/services/simulator/storage/sqlite"
	"github.com/louisbranch/cypress-simulator/internal/simulator/page"
	"github.com/louisbranch/cypress-simulator/internal/simulator/session"
)

// Config holds simulator command configuration.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:"localhost:8080"`
	// DBPath selects SQLite persistence; empty keeps state in memory.
	DBPath string `env:"DB_PATH" envDefault:"data/simulator.db"`
	// SessionSecret signs session tokens. When empty a random secret is
	// generated and sessions do not survive a restart.
	SessionSecret    string        `env:"SESSION_SECRET"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	RunDelay         time.Duration `env:"RUN_DELAY" envDefault:"1s"`
	CaptchaErrorRate float64       `env:"CAPTCHA_ERROR_RATE" envDefault:"0"`
	PageIdleTTL      time.Duration `env:"PAGE_IDLE_TTL" envDefault:"30m"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return bindFlags(fs, args, cfg)
}

func parseConfigFrom(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := config.ParseEnvFrom(&cfg, environ); err != nil {
		return Config{}, err
	}
	return bindFlags(fs, args, cfg)
}

func bindFlags(fs *flag.FlagSet, args []string, cfg Config) (Config, error) {
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path (empty keeps state in memory)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "session lifetime")
	fs.DurationVar(&cfg.RunDelay, "run-delay", cfg.RunDelay, "length of the Running phase")
	fs.Float64Var(&cfg.CaptchaErrorRate, "captcha-error-rate", cfg.CaptchaErrorRate, "default probability of rejecting a correct captcha answer")
	fs.DurationVar(&cfg.PageIdleTTL, "page-idle-ttl", cfg.PageIdleTTL, "idle time before a page is discarded")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.CaptchaErrorRate < 0 || cfg.CaptchaErrorRate > 1 {
		return Config{}, fmt.Errorf("captcha error rate %v is outside [0, 1]", cfg.CaptchaErrorRate)
	}
	return cfg, nil
}

// Run starts the simulator HTTP service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSimulator, func(ctx context.Context) error {
		secret, err := sessionSecret(cfg.SessionSecret)
		if err != nil {
			return err
		}

		store, err := openStore(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close store: %v", err)
			}
		}()

		server, err := simulator.NewServer(ctx, serviceConfig(cfg, store, secret))
		if err != nil {
			return err
		}
		defer server.Close()

		log.Printf("simulator listening at %s", server.Addr())
		return server.ListenAndServe(ctx)
	})
}

func serviceConfig(cfg Config, store storage.Store, secret []byte) simulator.Config {
	return simulator.Config{
		HTTPAddr:         cfg.HTTPAddr,
		Store:            store,
		SessionSecret:    secret,
		SessionTTL:       cfg.SessionTTL,
		RunDelay:         runDelay(cfg.RunDelay),
		CaptchaErrorRate: cfg.CaptchaErrorRate,
		PageIdleTTL:      pageIdleTTL(cfg.PageIdleTTL),
	}
}

func openStore(ctx context.Context, path string) (storage.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		log.Printf("no database path configured, keeping state in memory")
		return storage.NewMemory(), nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}

func sessionSecret(configured string) ([]byte, error) {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		log.Printf("no session secret configured, sessions will not survive a restart")
		return session.GenerateSecret()
	}
	if len(configured) < session.MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", session.MinSecretLength)
	}
	return []byte(configured), nil
}

// runDelay maps zero to an immediate resolution, so RUN_DELAY=0 skips the
// Running phase instead of falling back to the controller default.
func runDelay(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

func pageIdleTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return page.DefaultIdleTTL
	}
	return d
}
