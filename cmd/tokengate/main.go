// tokengate serves the authorization-subrequest endpoint consulted by a
// reverse proxy (nginx auth_request, Traefik forwardAuth) before it forwards
// a request to the protected API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/jonwraymond/tokengate/config"
	"github.com/jonwraymond/tokengate/gateway"
	"github.com/jonwraymond/tokengate/observe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	var configPath, listen, adminListen string

	flagSet := pflag.NewFlagSet("tokengate", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config (default: $"+config.EnvConfig+")")
	flagSet.StringVar(&listen, "listen", "", "listen address, overrides config (default :8080)")
	flagSet.StringVar(&adminListen, "admin-listen", "", "separate address for health and metrics, overrides config")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	cfg, secret, err := config.LoadGateway(ctx, configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if adminListen != "" {
		cfg.AdminListen = adminListen
	}

	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Std())
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(stderr, "warning: flushing telemetry: %v\n", err)
		}
	}()

	srv, err := gateway.FromConfig(ctx, cfg, secret, obs)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
