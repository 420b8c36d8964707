package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/posture/pkg/cli/config"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
	"github.com/secmon-lab/posture/pkg/usecase"
)

func cmdSummary() *cli.Command {
	var seedCfg config.Seed
	var dashCfg config.Dashboard
	var filter []string
	var noColor bool

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "filter",
			Usage:       "Recommendation priorities to show",
			Value:       []string{types.PriorityCritical.String(), types.PriorityHigh.String()},
			Destination: &filter,
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable coloured output",
			Sources:     cli.EnvVars("NO_COLOR"),
			Destination: &noColor,
		},
	}
	flags = append(flags, seedCfg.Flags()...)
	flags = append(flags, dashCfg.Flags()...)

	return &cli.Command{
		Name:  "summary",
		Usage: "Render a fresh dashboard session to the terminal",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			seed, err := seedCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load seed")
			}
			mode, err := dashCfg.HeadlineMode()
			if err != nil {
				return err
			}
			priorities, err := types.ParsePriorities(filter)
			if err != nil {
				return goerr.Wrap(err, "invalid filter")
			}

			uc := usecase.New(newRepository, usecase.WithSeed(seed), usecase.WithHeadlineMode(mode))
			d, err := uc.Dashboard.InitSession(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = uc.Dashboard.EndSession(ctx, d.SessionID)
			}()

			d, err = uc.Dashboard.SetFilter(ctx, d.SessionID, types.CollectionRecommendations, priorities)
			if err != nil {
				return err
			}

			if noColor {
				color.NoColor = true
			}

			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			return printDashboard(w, d)
		},
	}
}

var priorityColors = map[types.Priority]*color.Color{
	types.PriorityCritical: color.New(color.FgHiRed, color.Bold),
	types.PriorityHigh:     color.New(color.FgYellow),
	types.PriorityMedium:   color.New(color.FgHiYellow),
}

var severityColors = map[types.Severity]*color.Color{
	types.SeverityCritical: color.New(color.FgHiRed, color.Bold),
	types.SeverityHigh:     color.New(color.FgYellow),
	types.SeverityMedium:   color.New(color.FgHiYellow),
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(width, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// printDashboard writes the render model as plain text tables. Coloured
// columns are kept last so that escape codes do not shift tab stops.
func printDashboard(out io.Writer, d *model.Dashboard) error {
	heading := color.New(color.Bold, color.Underline)
	var b strings.Builder

	heading.Fprintln(&b, d.Info.Title)
	fmt.Fprintln(&b, d.Info.Subtitle)
	if d.SelectedSystem != "" {
		fmt.Fprintf(&b, "System: %s\n", d.SelectedSystem)
	}

	fmt.Fprintln(&b)
	heading.Fprintln(&b, "Risk Assessment")
	fmt.Fprintf(&b, "Overall Risk Score: %s (%s)\n", d.Headline.OverallRiskScore.Value, d.Headline.OverallRiskScore.Delta)
	fmt.Fprintf(&b, "Critical Vulnerabilities: %s (%s)\n", d.Headline.CriticalVulnerabilities.Value, d.Headline.CriticalVulnerabilities.Delta)
	fmt.Fprintf(&b, "Security Incidents: %s (%s)\n", d.Headline.SecurityIncidents.Value, d.Headline.SecurityIncidents.Delta)

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCATEGORY\tSCORE\tPRIORITY")
	for _, row := range d.Risks {
		r := row.Record
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", row.Position, r.Name, r.RiskScore, priorityColors[r.Priority].Sprint(r.Priority))
	}
	if err := tw.Flush(); err != nil {
		return goerr.Wrap(err, "failed to write risk table")
	}

	fmt.Fprintln(&b)
	heading.Fprintln(&b, "Vulnerability Analysis")
	tw = tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tVULNERABILITY\tSTATUS\tDISCOVERED\tSEVERITY")
	for _, row := range d.Vulnerabilities {
		v := row.Record
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", row.Position, v.Name, v.Status, v.DiscoveryDate, severityColors[v.Severity].Sprint(v.Severity))
	}
	if err := tw.Flush(); err != nil {
		return goerr.Wrap(err, "failed to write vulnerability table")
	}
	for _, bucket := range d.SeverityBuckets {
		fmt.Fprintf(&b, "  %s: %d\n", bucket.Label, bucket.Count)
	}

	fmt.Fprintln(&b)
	heading.Fprintln(&b, "Implementation Timeline")
	for _, g := range d.Phases {
		fmt.Fprintf(&b, "%s %s %.1f%%\n", g.Label, progressBar(g.Average, 20), g.Average)
		for _, row := range g.Tasks {
			fmt.Fprintf(&b, "  %d. %s %s %d%%\n", row.Position, row.Record.TaskName, progressBar(float64(row.Record.Progress), 10), row.Record.Progress)
		}
	}

	fmt.Fprintln(&b)
	heading.Fprintln(&b, "Security Recommendations")
	filter := make([]string, len(d.Filter))
	for i, p := range d.Filter {
		filter[i] = p.String()
	}
	fmt.Fprintf(&b, "Showing %d of %d (priority: %s)\n", len(d.Recommendations), d.RecommendationTotal, strings.Join(filter, ", "))
	tw = tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tRECOMMENDATION\tSTATUS\tDUE\tPRIORITY")
	for _, row := range d.Recommendations {
		r := row.Record
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", row.Position, r.Text, r.Status, r.EstimatedCompletion, priorityColors[r.Priority].Sprint(r.Priority))
	}
	if err := tw.Flush(); err != nil {
		return goerr.Wrap(err, "failed to write recommendation table")
	}

	if _, err := io.WriteString(out, b.String()); err != nil {
		return goerr.Wrap(err, "failed to write summary")
	}
	return nil
}
