// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/cypress-simulator/internal/platform/cmd"
	"github.com/louisbranch/cypress-simulator/internal/platform/config"
	"github.com/louisbranch/cypress-simulator/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr  string `env:"MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport string `env:"MCP_TRANSPORT" envDefault:"stdio"`
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
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return service.Run(ctx, service.Config{
			Transport: service.TransportKind(cfg.Transport),
			HTTPAddr:  cfg.HTTPAddr,
		})
	})
}
