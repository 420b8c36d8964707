package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/cli/config"
	"github.com/secmon-lab/posture/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var path string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a seed dataset file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "seed",
				Usage:       "Seed dataset TOML file",
				Required:    true,
				Sources:     cli.EnvVars("POSTURE_SEED"),
				Destination: &path,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			seed, err := config.LoadSeed(path)
			if err != nil {
				return goerr.Wrap(err, "seed validation failed")
			}

			logging.Default().Info("Seed validation passed",
				"path", path,
				"risk_categories", len(seed.Risks),
				"vulnerabilities", len(seed.Vulnerabilities),
				"tasks", len(seed.Tasks),
				"recommendations", len(seed.Recommendations),
				"systems", len(seed.Info.Systems),
			)
			return nil
		},
	}
}
