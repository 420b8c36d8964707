package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Seed selects the dataset every new session starts from
type Seed struct {
	path string
}

// Flags returns CLI flags for the seed file
func (x *Seed) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "seed",
			Usage:       "Seed dataset TOML file (built-in dataset when empty)",
			Sources:     cli.EnvVars("POSTURE_SEED"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured seed file path
func (x *Seed) Path() string {
	return x.path
}

// Configure loads the seed file, or returns the built-in dataset when no file
// is configured
func (x *Seed) Configure() (*model.Seed, error) {
	if x.path == "" {
		return model.DefaultSeed(), nil
	}
	return LoadSeed(x.path)
}

// SeedFile is the TOML form of a seed dataset
type SeedFile struct {
	Info            InfoSection           `toml:"info"`
	Risks           []RiskCategoryEntry   `toml:"risk"`
	Vulnerabilities []VulnerabilityEntry  `toml:"vulnerability"`
	Tasks           []PhaseTaskEntry      `toml:"task"`
	Recommendations []RecommendationEntry `toml:"recommendation"`
}

type InfoSection struct {
	Title      string          `toml:"title"`
	Subtitle   string          `toml:"subtitle"`
	Course     string          `toml:"course"`
	Instructor string          `toml:"instructor"`
	Date       string          `toml:"date"`
	Systems    []string        `toml:"systems"`
	Team       []TeamEntry     `toml:"team"`
	Headline   HeadlineSection `toml:"headline"`
}

type TeamEntry struct {
	Role string `toml:"role"`
	Name string `toml:"name"`
}

type HeadlineSection struct {
	OverallRiskScore        MetricEntry `toml:"overall_risk_score"`
	CriticalVulnerabilities MetricEntry `toml:"critical_vulnerabilities"`
	SecurityIncidents       MetricEntry `toml:"security_incidents"`
}

type MetricEntry struct {
	Value string `toml:"value"`
	Delta string `toml:"delta"`
	Help  string `toml:"help"`
}

type RiskCategoryEntry struct {
	Name      string `toml:"name"`
	RiskScore int    `toml:"risk_score"`
	Priority  string `toml:"priority"`
}

type VulnerabilityEntry struct {
	Name          string `toml:"name"`
	Severity      string `toml:"severity"`
	Status        string `toml:"status"`
	DiscoveryDate string `toml:"discovery_date"`
}

type PhaseTaskEntry struct {
	Phase    string `toml:"phase"`
	TaskName string `toml:"task_name"`
	Progress int    `toml:"progress"`
}

type RecommendationEntry struct {
	Text                string `toml:"text"`
	Priority            string `toml:"priority"`
	Status              string `toml:"status"`
	EstimatedCompletion string `toml:"estimated_completion"`
}

// LoadSeed loads and validates a seed dataset from a TOML file
func LoadSeed(path string) (*model.Seed, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "seed file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read seed file", goerr.V(ConfigPathKey, path))
	}

	var file SeedFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML seed", goerr.V(ConfigPathKey, path))
	}

	seed, err := file.ToDomain()
	if err != nil {
		return nil, goerr.Wrap(err, "seed conversion failed", goerr.V(ConfigPathKey, path))
	}

	if err := seed.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidSeed, "seed validation failed",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	return seed, nil
}

func parseDate(s, section string, index int) (types.Date, error) {
	d, err := types.ParseDate(s)
	if err != nil {
		return types.Date{}, goerr.Wrap(ErrInvalidSeed, "invalid date",
			goerr.V(SectionKey, section), goerr.V(IndexKey, index), goerr.V("value", s))
	}
	return d, nil
}

func invalidEntry(err error, section string, index int) error {
	return goerr.Wrap(ErrInvalidSeed, "invalid seed entry",
		goerr.V(SectionKey, section), goerr.V(IndexKey, index), goerr.V("cause", err.Error()))
}

// ToDomain converts the TOML form to a domain seed. Enum values and dates are
// parsed here; ranges are checked by Seed.Validate.
func (f *SeedFile) ToDomain() (*model.Seed, error) {
	seed := &model.Seed{
		Info: model.DashboardInfo{
			Title:      f.Info.Title,
			Subtitle:   f.Info.Subtitle,
			Course:     f.Info.Course,
			Instructor: f.Info.Instructor,
			Systems:    f.Info.Systems,
			Headline: model.StaticHeadline{
				OverallRiskScore:        model.StaticMetric(f.Info.Headline.OverallRiskScore),
				CriticalVulnerabilities: model.StaticMetric(f.Info.Headline.CriticalVulnerabilities),
				SecurityIncidents:       model.StaticMetric(f.Info.Headline.SecurityIncidents),
			},
		},
	}

	if f.Info.Date != "" {
		d, err := parseDate(f.Info.Date, "info", 0)
		if err != nil {
			return nil, err
		}
		seed.Info.Date = d
	}
	for _, m := range f.Info.Team {
		seed.Info.Team = append(seed.Info.Team, model.TeamMember{Role: m.Role, Name: m.Name})
	}

	for i, e := range f.Risks {
		p, err := types.ParsePriority(e.Priority)
		if err != nil {
			return nil, invalidEntry(err, "risk", i)
		}
		seed.Risks = append(seed.Risks, model.RiskCategory{Name: e.Name, RiskScore: e.RiskScore, Priority: p})
	}

	for i, e := range f.Vulnerabilities {
		sev, err := types.ParseSeverity(e.Severity)
		if err != nil {
			return nil, invalidEntry(err, "vulnerability", i)
		}
		status, err := types.ParseVulnerabilityStatus(e.Status)
		if err != nil {
			return nil, invalidEntry(err, "vulnerability", i)
		}
		d, err := parseDate(e.DiscoveryDate, "vulnerability", i)
		if err != nil {
			return nil, err
		}
		seed.Vulnerabilities = append(seed.Vulnerabilities, model.Vulnerability{
			Name: e.Name, Severity: sev, Status: status, DiscoveryDate: d,
		})
	}

	for i, e := range f.Tasks {
		phase, err := types.ParsePhase(e.Phase)
		if err != nil {
			return nil, invalidEntry(err, "task", i)
		}
		seed.Tasks = append(seed.Tasks, model.PhaseTask{Phase: phase, TaskName: e.TaskName, Progress: e.Progress})
	}

	for i, e := range f.Recommendations {
		p, err := types.ParsePriority(e.Priority)
		if err != nil {
			return nil, invalidEntry(err, "recommendation", i)
		}
		status, err := types.ParseRecommendationStatus(e.Status)
		if err != nil {
			return nil, invalidEntry(err, "recommendation", i)
		}
		d, err := parseDate(e.EstimatedCompletion, "recommendation", i)
		if err != nil {
			return nil, err
		}
		seed.Recommendations = append(seed.Recommendations, model.Recommendation{
			Text: e.Text, Priority: p, Status: status, EstimatedCompletion: d,
		})
	}

	return seed, nil
}
