package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/linearmesh/internal/api"
	"github.com/matzehuels/linearmesh/pkg/observability"
)

// serveCommand creates the serve command that exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and renders over HTTP",
		Long: `Serve layouts and renders over HTTP.

Routes:
  POST /v1/layout     flow data in, layout JSON out
  POST /v1/render     flow data in, artifact out (?format=svg|png|json|dot)
  POST /v1/snapshot   flow data in, mesh snapshot out
  GET  /healthz       liveness check
  GET  /metrics       Prometheus metrics

The server shares the cache configured for the CLI. Use a redis or mongo
backend when several instances run side by side.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe wires metrics into the observability hooks and serves until ctx
// is cancelled.
func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetAPIHooks(hooks)
	defer observability.Reset()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	printKeyValue("Listening", c.cfg.Server.Addr)
	printKeyValue("Cache", cacheLabel(c.cfg.Cache.Backend, noCache))

	return api.New(runner, c.cfg, loggerFromContext(ctx), reg).Run(ctx)
}

func cacheLabel(backend string, noCache bool) string {
	switch {
	case noCache:
		return "disabled"
	case backend == "":
		return "file"
	}
	return backend
}
