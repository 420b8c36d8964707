package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds configuration for error reporting
type Sentry struct {
	DSN         string `masq:"secret"`
	Environment string
}

// Flags returns CLI flags for Sentry configuration
func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Category:    "Sentry",
			Usage:       "Sentry DSN for error reporting (disabled when empty)",
			Sources:     cli.EnvVars("POSTURE_SENTRY_DSN"),
			Destination: &x.DSN,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Category:    "Sentry",
			Usage:       "Sentry environment",
			Value:       "production",
			Sources:     cli.EnvVars("POSTURE_SENTRY_ENV"),
			Destination: &x.Environment,
		},
	}
}

// LogAttrs returns log attributes for the Sentry configuration
func (x *Sentry) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Bool("enabled", x.DSN != ""),
		slog.String("environment", x.Environment),
	}
}

// Configure initialises the Sentry client. The returned function flushes
// pending events. Nothing is initialised when DSN is empty.
func (x *Sentry) Configure(release string) (func(), error) {
	if x.DSN == "" {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         x.DSN,
		Environment: x.Environment,
		Release:     release,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sentry", goerr.V("environment", x.Environment))
	}

	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}
