package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/vango-dev/addressform/internal/config"
	"github.com/vango-dev/addressform/internal/errors"
	"github.com/vango-dev/addressform/pkg/addressform"
	"github.com/vango-dev/addressform/pkg/middleware"
	"github.com/vango-dev/addressform/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the address form over HTTP",
		Long: `Serve the address form.

Routes:
  GET  /              the form page
  POST /submit        submit (form or JSON body)
  POST /validate      validate without submitting
  POST /reset         a fresh form
  GET  /ws            live validation
  GET  /openapi.json  the API description
  GET  /metrics       Prometheus metrics (when enabled)

Examples:
  addressform serve
  addressform serve --port=9000
  addressform serve --config=deploy/addressform.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Port = port
			}
			if host != "" {
				cfg.Host = host
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := newServer(ctx, cfg)
			if err != nil {
				return err
			}
			return runServer(ctx, srv, cfg.Address(), cmd)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}

// newServer wires config, logging, messages, the sink and metrics into a
// server.
func newServer(ctx context.Context, cfg *config.Config) (*server.Server, error) {
	logger := newLogger(cfg, os.Stderr)

	messages, err := loadMessages(cfg)
	if err != nil {
		return nil, err
	}
	sink, err := newSubmitter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	sc := serverConfig(cfg)
	opts := []server.Option{
		server.WithLogger(logger),
		server.WithFormOptions(append(formOptions(cfg, messages),
			addressform.WithSubmitter(sink),
		)...),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, server.WithMetrics(middleware.NewMetrics(
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)))
	}

	srv, err := server.New(sc, opts...)
	if err != nil {
		return nil, errors.New(errors.CodeServerStart).Wrap(err)
	}
	return srv, nil
}

// serverConfig maps the file config onto the server's.
func serverConfig(cfg *config.Config) *server.Config {
	sc := server.DefaultConfig()
	sc.Address = cfg.Address()
	sc.Title = cfg.Title
	sc.TrustedProxies = cfg.TrustedProxies
	sc.Tracing = cfg.Tracing
	sc.MetricsPath = cfg.Metrics.Path
	if !cfg.Metrics.Enabled {
		sc.MetricsPath = ""
	}
	if cfg.RateLimit.Enabled {
		sc.RateLimit = rate.Limit(cfg.RateLimit.PerSecond)
		sc.RateBurst = cfg.RateLimit.Burst
	} else {
		sc.RateLimit = 0
	}
	return sc
}

func runServer(ctx context.Context, srv *server.Server, addr string, cmd *cobra.Command) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.New(errors.CodeServerStart).
			WithDetail("Cannot listen on " + addr).
			Wrap(err)
	}

	out := cmd.OutOrStdout()
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	host, _, _ := net.SplitHostPort(addr)
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	success(out, "Serving the address form")
	fmt.Fprintf(out, "  %s\n\n", "http://"+net.JoinHostPort(host, port)+"/")

	if err := srv.Serve(ctx, ln); err != nil {
		return errors.New(errors.CodeServerStart).Wrap(err)
	}
	fmt.Fprintln(out, "\n  Shut down.")
	return nil
}
