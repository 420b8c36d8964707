package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Dashboard holds session and rendering settings
type Dashboard struct {
	headlineMode string
	sessionTTL   time.Duration
	reapInterval time.Duration
}

// Flags returns CLI flags for dashboard configuration
func (x *Dashboard) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "headline-mode",
			Usage:       "Headline metrics mode [static|derived]",
			Value:       types.HeadlineModeStatic.String(),
			Sources:     cli.EnvVars("POSTURE_HEADLINE_MODE"),
			Destination: &x.headlineMode,
		},
		&cli.DurationFlag{
			Name:        "session-ttl",
			Usage:       "End sessions idle for longer than this",
			Value:       30 * time.Minute,
			Sources:     cli.EnvVars("POSTURE_SESSION_TTL"),
			Destination: &x.sessionTTL,
		},
		&cli.DurationFlag{
			Name:        "session-reap-interval",
			Usage:       "How often idle sessions are looked for",
			Value:       time.Minute,
			Sources:     cli.EnvVars("POSTURE_SESSION_REAP_INTERVAL"),
			Destination: &x.reapInterval,
		},
	}
}

// LogAttrs returns log attributes for the dashboard configuration
func (x *Dashboard) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("headline_mode", x.headlineMode),
		slog.Duration("session_ttl", x.sessionTTL),
		slog.Duration("session_reap_interval", x.reapInterval),
	}
}

// HeadlineMode returns the parsed headline mode
func (x *Dashboard) HeadlineMode() (types.HeadlineMode, error) {
	mode, err := types.ParseHeadlineMode(x.headlineMode)
	if err != nil {
		return "", goerr.Wrap(ErrInvalidConfig, "invalid headline mode", goerr.V("value", x.headlineMode))
	}
	return mode, nil
}

// SessionTTL returns how long a session may stay idle
func (x *Dashboard) SessionTTL() time.Duration {
	return x.sessionTTL
}

// ReapInterval returns the idle session sweep interval
func (x *Dashboard) ReapInterval() time.Duration {
	return x.reapInterval
}

// Validate checks the durations
func (x *Dashboard) Validate() error {
	if x.sessionTTL <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "session TTL must be positive", goerr.V("value", x.sessionTTL))
	}
	if x.reapInterval <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "session reap interval must be positive", goerr.V("value", x.reapInterval))
	}
	return nil
}
