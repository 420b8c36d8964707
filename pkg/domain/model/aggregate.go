package model

import (
	"fmt"
	"math"

	"github.com/secmon-lab/posture/pkg/domain/types"
)

// PhaseSummary is the mean progress of the tasks of one phase
type PhaseSummary struct {
	Phase     types.Phase
	Average   float64
	TaskCount int
}

// PhaseProgress returns one summary per phase in timeline order. A phase with
// no tasks has an average of 0.
func PhaseProgress(tasks []PhaseTask) []PhaseSummary {
	sums := make(map[types.Phase]int)
	counts := make(map[types.Phase]int)
	for _, t := range tasks {
		sums[t.Phase] += t.Progress
		counts[t.Phase]++
	}

	phases := types.AllPhases()
	out := make([]PhaseSummary, 0, len(phases))
	for _, p := range phases {
		s := PhaseSummary{Phase: p, TaskCount: counts[p]}
		if s.TaskCount > 0 {
			s.Average = float64(sums[p]) / float64(s.TaskCount)
		}
		out = append(out, s)
	}
	return out
}

// SeverityCounts groups vulnerabilities by severity. Severities with no
// vulnerabilities are absent.
func SeverityCounts(vulns []Vulnerability) map[types.Severity]int {
	counts := make(map[types.Severity]int)
	for _, v := range vulns {
		counts[v.Severity]++
	}
	return counts
}

// StatusCounts groups vulnerabilities by status. Statuses with no
// vulnerabilities are absent.
func StatusCounts(vulns []Vulnerability) map[types.VulnerabilityStatus]int {
	counts := make(map[types.VulnerabilityStatus]int)
	for _, v := range vulns {
		counts[v.Status]++
	}
	return counts
}

// Bucket is one slice of a pie chart
type Bucket struct {
	Label string
	Color string
	Count int
}

// SeverityBuckets returns SeverityCounts as pie slices in severity order
func SeverityBuckets(vulns []Vulnerability) []Bucket {
	counts := SeverityCounts(vulns)
	var out []Bucket
	for _, s := range types.AllSeverities() {
		if n := counts[s]; n > 0 {
			out = append(out, Bucket{Label: s.String(), Color: s.Color(), Count: n})
		}
	}
	return out
}

// StatusBuckets returns StatusCounts as pie slices in status order
func StatusBuckets(vulns []Vulnerability) []Bucket {
	counts := StatusCounts(vulns)
	var out []Bucket
	for _, s := range types.AllVulnerabilityStatuses() {
		if n := counts[s]; n > 0 {
			out = append(out, Bucket{Label: s.String(), Color: s.Color(), Count: n})
		}
	}
	return out
}

// HeadlineMetrics are the three metrics shown under the risk chart
type HeadlineMetrics struct {
	Mode                    types.HeadlineMode
	OverallRiskScore        StaticMetric
	CriticalVulnerabilities StaticMetric
	SecurityIncidents       StaticMetric
}

// Headline produces the headline metrics. In static mode the configured values
// are returned unchanged. In derived mode the risk score is the rounded mean
// of all risk scores and the critical count is the number of Critical
// vulnerabilities; incidents are not tracked by any collection and stay static.
func Headline(mode types.HeadlineMode, static StaticHeadline, risks []RiskCategory, vulns []Vulnerability) HeadlineMetrics {
	h := HeadlineMetrics{
		Mode:                    mode,
		OverallRiskScore:        static.OverallRiskScore,
		CriticalVulnerabilities: static.CriticalVulnerabilities,
		SecurityIncidents:       static.SecurityIncidents,
	}
	if mode != types.HeadlineModeDerived {
		h.Mode = types.HeadlineModeStatic
		return h
	}

	score := MeanRiskScore(risks)
	h.OverallRiskScore.Value = fmt.Sprintf("%d/100", score)
	h.OverallRiskScore.Delta = RiskRating(score, len(risks) > 0)

	h.CriticalVulnerabilities.Value = fmt.Sprintf("%d", SeverityCounts(vulns)[types.SeverityCritical])
	h.CriticalVulnerabilities.Delta = ""

	return h
}

// MeanRiskScore returns the rounded mean risk score, or 0 with no categories
func MeanRiskScore(risks []RiskCategory) int {
	if len(risks) == 0 {
		return 0
	}
	total := 0
	for _, r := range risks {
		total += r.RiskScore
	}
	return int(math.Round(float64(total) / float64(len(risks))))
}

// RiskRating labels an overall risk score
func RiskRating(score int, hasData bool) string {
	switch {
	case !hasData:
		return "No Data"
	case score >= 80:
		return "Critical Risk"
	case score >= 60:
		return "High Risk"
	case score >= 40:
		return "Medium Risk"
	default:
		return "Low Risk"
	}
}
