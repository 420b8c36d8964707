package cli

import (
	"context"

	"github.com/secmon-lab/posture/pkg/cli/config"
	"github.com/secmon-lab/posture/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Run executes the posture command line. The logger is configured before any
// subcommand runs and its output is closed when Run returns.
func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	closeLog := func() {}
	defer func() { closeLog() }()

	app := &cli.Command{
		Name:    "posture",
		Usage:   "Hospital cybersecurity posture dashboard",
		Version: version,
		Suggest: true,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closeLog = f

			logging.Default().Debug("posture starting",
				"version", version,
				"logger", loggerCfg,
			)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdSummary(),
			cmdValidate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("posture failed", "error", err)
		return err
	}
	return nil
}
