package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/modkit/bootstrap"
	"github.com/kbukum/modkit/internal/demo"
	"github.com/kbukum/modkit/module"
	"github.com/kbukum/modkit/observability"
	"github.com/kbukum/modkit/version"
)

type rootOptions struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "modkit",
		Short: "Load dependency-aware modules into a DI kernel",
		Long: `modkit loads configured root modules into a kernel. Each module
registers the modules it depends on; dependencies already loaded are
skipped and the rest load in one batch before the module binds its own
services.

Examples:
  modkit catalog            List available modules
  modkit load               Load the configured modules and list them
  modkit serve              Load modules and serve the inspect endpoints`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: cmd/modkit/config.yml or ./config.yml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newCatalogCmd(opts),
		newLoadCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// newApp builds the application for cfg: observability providers, kernel
// metrics and the root modules from the demo catalog.
func newApp(ctx context.Context, cfg *AppConfig, summary io.Writer) (*bootstrap.App[*AppConfig], error) {
	providers, err := observability.Init(ctx, cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}

	metrics, err := observability.NewKernelMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, err
	}

	app, err := bootstrap.NewApp(cfg,
		bootstrap.WithMetrics(metrics),
		bootstrap.WithSummaryOutput(summary),
	)
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, err
	}

	mods, err := catalog(cfg).Build(cfg.Modules)
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, err
	}
	app.UseModules(mods...)
	app.OnStop(providers.Shutdown)

	return app, nil
}

func catalog(cfg *AppConfig) *module.Catalog {
	return demo.Catalog(demo.Options{
		Greeting: cfg.Greeting,
		Inspect:  cfg.Inspect,
	})
}
