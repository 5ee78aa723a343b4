package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/modkit/di"
	"github.com/kbukum/modkit/internal/demo"
	"github.com/kbukum/modkit/kernel"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the modules that can be named in the config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadAppConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range catalog(cfg).Names() {
				marker := " "
				if slices.Contains(cfg.Modules, name) {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
			}
			return nil
		},
	}
}

func newLoadCmd(opts *rootOptions) *cobra.Command {
	var greet []string

	cmd := &cobra.Command{
		Use:   "load [module...]",
		Short: "Load modules, print what was loaded, then unload",
		Long: `Load the configured root modules (or the ones given as arguments),
print the loaded modules in load order and shut down.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig(opts)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Modules = args
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			app, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				if err := printModules(cmd, app.Kernel.Modules()); err != nil {
					return err
				}
				if len(greet) == 0 {
					return nil
				}
				g, err := di.Resolve[*demo.Greeter](app.Container, demo.KeyGreeter)
				if err != nil {
					return fmt.Errorf("--greet needs the greeter module: %w", err)
				}
				for _, name := range greet {
					fmt.Fprintln(cmd.OutOrStdout(), g.Greet(name))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&greet, "greet", nil, "names to greet once the greeter module is loaded")
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load modules and serve the inspect endpoints until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadAppConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Inspect.Enabled && !slices.Contains(cfg.Modules, "inspect") {
				cfg.Modules = append(cfg.Modules, "inspect")
			}

			app, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}

func printModules(cmd *cobra.Command, infos []kernel.Info) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tMODULE\tREQUIRED BY\tBINDINGS")
	for _, info := range infos {
		requiredBy := info.RequiredBy
		if requiredBy == "" {
			requiredBy = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", info.Order, info.ID, requiredBy, strings.Join(info.Bindings, ","))
	}
	return w.Flush()
}
