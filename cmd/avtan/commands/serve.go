package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DrSkyle/avtan/internal/app"
	"github.com/DrSkyle/avtan/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := app.New(ctx, cfg, app.WithLogOutput(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := svc.Close(closeCtx); err != nil {
				svc.Logger.Warn("close failed", "error", err)
			}
		}()

		return svc.Run(ctx)
	},
}

func init() {
	d := config.Default()
	f := serveCmd.Flags()
	f.String("addr", d.Server.Addr, "HTTP listen address")
	f.String("kv-backend", d.KV.Backend, "Key-value backend: memory or redis")
	f.String("redis-url", d.KV.RedisURL, "Redis URL for the redis backend")
	f.String("otel-endpoint", d.Telemetry.Endpoint, "OTLP/HTTP trace collector URL")
	f.Int("max-depth", d.Traversal.MaxDepth, "Largest traversal depth a request may ask for")

	_ = viper.BindPFlag("server.addr", f.Lookup("addr"))
	_ = viper.BindPFlag("kv.backend", f.Lookup("kv-backend"))
	_ = viper.BindPFlag("kv.redis_url", f.Lookup("redis-url"))
	_ = viper.BindPFlag("telemetry.endpoint", f.Lookup("otel-endpoint"))
	_ = viper.BindPFlag("traversal.max_depth", f.Lookup("max-depth"))
}
