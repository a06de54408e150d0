package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/abhisek/mathsheet/internal/batch"
	"github.com/abhisek/mathsheet/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the worksheet HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		metrics := server.NewMetrics()
		svc := batch.NewService(cfg.WorksheetConfig(), s.EventRepo(), metrics)
		srv := server.New(cfg, svc, s.PresetRepo(), s.EventRepo(), metrics)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides MATHSHEET_ADDR, default :8000)")
}
