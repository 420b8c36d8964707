package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/posture/pkg/cli/config"
	httpctrl "github.com/secmon-lab/posture/pkg/controller/http"
	"github.com/secmon-lab/posture/pkg/domain/interfaces"
	"github.com/secmon-lab/posture/pkg/repository/memory"
	"github.com/secmon-lab/posture/pkg/service/metrics"
	"github.com/secmon-lab/posture/pkg/service/worker"
	"github.com/secmon-lab/posture/pkg/usecase"
	"github.com/secmon-lab/posture/pkg/utils/errutil"
	"github.com/secmon-lab/posture/pkg/utils/logging"
)

func newRepository() interfaces.Repository {
	return memory.New()
}

func cmdServe() *cli.Command {
	var addr string
	var allowedOrigins []string
	var seedCfg config.Seed
	var dashCfg config.Dashboard
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("POSTURE_ADDR"),
			Destination: &addr,
		},
		&cli.StringSliceFlag{
			Name:        "allowed-origin",
			Usage:       "Origin allowed to open the websocket render stream, in addition to same-origin",
			Sources:     cli.EnvVars("POSTURE_ALLOWED_ORIGINS"),
			Destination: &allowedOrigins,
		},
	}

	// Add shared config flags
	flags = append(flags, seedCfg.Flags()...)
	flags = append(flags, dashCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flush, err := sentryCfg.Configure(c.Root().Version)
			if err != nil {
				return err
			}
			defer flush()

			seed, err := seedCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load seed")
			}
			mode, err := dashCfg.HeadlineMode()
			if err != nil {
				return err
			}
			if err := dashCfg.Validate(); err != nil {
				return err
			}

			logging.Default().Info("Configuration loaded",
				"seed", seedCfg.Path(),
				slog.Attr{Key: "dashboard", Value: slog.GroupValue(dashCfg.LogAttrs()...)},
				slog.Attr{Key: "sentry", Value: slog.GroupValue(sentryCfg.LogAttrs()...)},
			)

			recorder, err := metrics.New(prometheus.DefaultRegisterer)
			if err != nil {
				return goerr.Wrap(err, "failed to register metrics")
			}
			hub := httpctrl.NewHub(httpctrl.WithAllowedOrigins(allowedOrigins...))

			uc := usecase.New(newRepository,
				usecase.WithSeed(seed),
				usecase.WithHeadlineMode(mode),
				usecase.WithObserver(hub),
				usecase.WithObserver(recorder),
			)

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(uc.Dashboard,
					httpctrl.WithHub(hub),
					httpctrl.WithMetrics(promhttp.Handler()),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			eg, ctx := errgroup.WithContext(ctx)

			reaper := worker.NewSessionReaper(uc.Dashboard, dashCfg.SessionTTL(), dashCfg.ReapInterval())
			if err := reaper.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start session reaper")
			}

			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})

			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down")

				reaper.Stop()
				hub.Close()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			})

			if err := eg.Wait(); err != nil {
				return errutil.Handle(ctx, err, "server stopped with error")
			}
			return nil
		},
	}
}
