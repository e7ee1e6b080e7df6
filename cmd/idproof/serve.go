package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"idproof/internal/platform/httpserver"
	"idproof/internal/platform/logger"
	httptransport "idproof/internal/transport/http"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept proofing invocations over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := logger.New(cfg.Log.Level, cfg.Log.Format)
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))
			stopWorkers := a.runWorkers(context.WithoutCancel(ctx))
			defer stopWorkers()

			handler := httptransport.NewHandler(a.service, log)
			router := httptransport.NewRouter(handler, log, a.healthOptions()...)

			log.Info("starting idproof", "addr", cfg.Server.Addr, "vendors", cfg.Vendors.Mode, "parameter_store", cfg.ParameterStore.Kind)
			err = httpserver.New(cfg.Server, router, log).Run(ctx)

			// Background invocations still own their callbacks.
			handler.Wait()
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	return cmd
}
