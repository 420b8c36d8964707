package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/posture/pkg/cli/config"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

const validSeed = `
[info]
title = "Riverside Clinic"
subtitle = "Security Posture"
date = "2025-03-01"
systems = ["EHR", "Imaging"]

  [[info.team]]
  role = "CISO"
  name = "A. Example"

  [info.headline.overall_risk_score]
  value = "64/100"
  delta = "Medium Risk"

[[risk]]
name = "Network Security"
risk_score = 75
priority = "High"

[[vulnerability]]
name = "SQL Injection"
severity = "Critical"
status = "Open"
discovery_date = "2025-02-27"

[[task]]
phase = "Short-term"
task_name = "Segment imaging network"
progress = 40

[[recommendation]]
text = "Rotate service credentials"
priority = "Critical"
status = "In Progress"
estimated_completion = "2025-04-15"
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadSeed(t *testing.T) {
	t.Run("valid seed", func(t *testing.T) {
		seed, err := config.LoadSeed(writeSeed(t, validSeed))
		gt.NoError(t, err).Required()

		gt.Value(t, seed.Info.Title).Equal("Riverside Clinic")
		gt.Value(t, seed.Info.Date).Equal(types.NewDate(2025, time.March, 1))
		gt.Value(t, seed.Info.Systems).Equal([]string{"EHR", "Imaging"})
		gt.Value(t, seed.Info.Team).Equal([]model.TeamMember{{Role: "CISO", Name: "A. Example"}})
		gt.Value(t, seed.Info.Headline.OverallRiskScore.Value).Equal("64/100")

		gt.Array(t, seed.Risks).Length(1)
		gt.Value(t, seed.Risks[0].Priority).Equal(types.PriorityHigh)
		gt.Value(t, seed.Vulnerabilities[0].DiscoveryDate).Equal(types.NewDate(2025, time.February, 27))
		gt.Value(t, seed.Tasks[0].Phase).Equal(types.PhaseShortTerm)
		gt.Value(t, seed.Recommendations[0].Status).Equal(types.RecommendationStatusInProgress)
	})

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "unknown priority",
			content: `
[[risk]]
name = "x"
risk_score = 10
priority = "Low"
`,
			wantErr: config.ErrInvalidSeed,
		},
		{
			name: "score out of range",
			content: `
[[risk]]
name = "x"
risk_score = 120
priority = "High"
`,
			wantErr: config.ErrInvalidSeed,
		},
		{
			name: "bad date",
			content: `
[[vulnerability]]
name = "x"
severity = "High"
status = "Open"
discovery_date = "12/04/2024"
`,
			wantErr: config.ErrInvalidSeed,
		},
		{
			name: "empty recommendation text",
			content: `
[[recommendation]]
text = " "
priority = "High"
status = "Planned"
estimated_completion = "2025-01-01"
`,
			wantErr: config.ErrInvalidSeed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadSeed(writeSeed(t, tt.content))
			gt.Error(t, err).Is(tt.wantErr)
		})
	}

	t.Run("broken TOML", func(t *testing.T) {
		_, err := config.LoadSeed(writeSeed(t, "[[risk]\nname ="))
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadSeed(filepath.Join(t.TempDir(), "none.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})
}

func TestSeed_ConfigureDefault(t *testing.T) {
	var cfg config.Seed
	seed, err := cfg.Configure()
	gt.NoError(t, err).Required()
	gt.Array(t, seed.Risks).Length(4)
	gt.Value(t, cfg.Path()).Equal("")
}

func TestSeed_ExampleFile(t *testing.T) {
	seed, err := config.LoadSeed(filepath.Join("..", "..", "..", "examples", "seed.toml"))
	gt.NoError(t, err).Required()

	def := model.DefaultSeed()
	gt.Array(t, seed.Risks).Length(len(def.Risks))
	gt.Array(t, seed.Vulnerabilities).Length(len(def.Vulnerabilities))
	gt.Array(t, seed.Tasks).Length(len(def.Tasks))
	gt.Array(t, seed.Recommendations).Length(len(def.Recommendations))
	gt.Value(t, seed.Info.Systems).Equal(def.Info.Systems)
}
