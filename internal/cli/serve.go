package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/binlid/internal/api"
	"github.com/mesh-intelligence/binlid/internal/metrics"
	"github.com/mesh-intelligence/binlid/pkg/types"
)

func (a *app) newServeCmd() *cobra.Command {
	var (
		addr string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inventory over HTTP",
		Long: `Serve the JSON API under /api, with /healthz and /metrics, until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.GetString(cfgKeyAddr)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withInventory(ctx, func(ctx context.Context, inv types.Inventory) error {
				m := metrics.New()
				handler := api.NewRouter(metrics.Instrument(inv, m), a.log, m, api.Options{
					CORSOrigins: a.cfg.GetString(cfgKeyCORSOrigins),
					RateLimit:   a.cfg.GetInt(cfgKeyRateLimit),
					Development: dev,
				})
				srv := api.NewServer(listenAddr(addr), handler)
				if err := api.Serve(ctx, srv, a.log); err != nil {
					return systemErr(err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, PORT, or :3456)")
	cmd.Flags().BoolVar(&dev, "dev", false, "relax security headers for local plain-HTTP use")
	return cmd
}
