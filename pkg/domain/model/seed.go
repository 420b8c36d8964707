package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

// TeamMember is a person listed in the dashboard sidebar
type TeamMember struct {
	Role string
	Name string
}

// StaticMetric is a headline metric shown as configured text
type StaticMetric struct {
	Value string
	Delta string
	Help  string
}

// StaticHeadline holds the configured headline metrics of the risk tab
type StaticHeadline struct {
	OverallRiskScore        StaticMetric
	CriticalVulnerabilities StaticMetric
	SecurityIncidents       StaticMetric
}

// DashboardInfo is descriptive content of the dashboard that is not part of any collection
type DashboardInfo struct {
	Title      string
	Subtitle   string
	Team       []TeamMember
	Course     string
	Instructor string
	Date       types.Date
	Systems    []string
	Headline   StaticHeadline
}

// Seed is the dataset every new session starts from
type Seed struct {
	Info            DashboardInfo
	Risks           []RiskCategory
	Vulnerabilities []Vulnerability
	Tasks           []PhaseTask
	Recommendations []Recommendation
}

// Validate checks every record of the seed
func (s *Seed) Validate() error {
	for i, r := range s.Risks {
		if err := r.Validate(); err != nil {
			return goerr.Wrap(err, "invalid seed risk category", goerr.V(CollectionKey, types.CollectionRisks), goerr.V("index", i))
		}
	}
	for i, v := range s.Vulnerabilities {
		if err := v.Validate(); err != nil {
			return goerr.Wrap(err, "invalid seed vulnerability", goerr.V(CollectionKey, types.CollectionVulnerabilities), goerr.V("index", i))
		}
	}
	for i, t := range s.Tasks {
		if err := t.Validate(); err != nil {
			return goerr.Wrap(err, "invalid seed phase task", goerr.V(CollectionKey, types.CollectionTasks), goerr.V("index", i))
		}
	}
	for i, r := range s.Recommendations {
		if err := r.Validate(); err != nil {
			return goerr.Wrap(err, "invalid seed recommendation", goerr.V(CollectionKey, types.CollectionRecommendations), goerr.V("index", i))
		}
	}
	return nil
}

// DefaultSeed returns the built-in dataset for Detroit Metropolitan Hospital.
// A new value is built on every call so callers may modify it freely.
func DefaultSeed() *Seed {
	return &Seed{
		Info: DashboardInfo{
			Title:    "Detroit Metropolitan Hospital",
			Subtitle: "Cybersecurity Risk Management Dashboard",
			Team: []TeamMember{
				{Role: "Project Lead", Name: "Mamun Ahmed (CIO)"},
				{Role: "Security Analyst", Name: "JP Marvin"},
				{Role: "IT Manager", Name: "Paul Borner"},
				{Role: "Cybersecurity Specialist", Name: "Lassana Bility"},
			},
			Course:     "Cybersecurity Risk Management",
			Instructor: "Professor Manoj Akula",
			Date:       types.NewDate(2024, time.December, 6),
			Systems: []string{
				"Network Infrastructure",
				"Patient Records",
				"Payment Systems",
				"IoT Devices",
			},
			Headline: StaticHeadline{
				OverallRiskScore: StaticMetric{
					Value: "79/100",
					Delta: "High Risk",
					Help:  "Overall security risk score based on all factors",
				},
				CriticalVulnerabilities: StaticMetric{
					Value: "3",
					Delta: "+1 from last month",
					Help:  "Number of critical security issues identified",
				},
				SecurityIncidents: StaticMetric{
					Value: "12",
					Delta: "-3 from last month",
					Help:  "Total reported security events",
				},
			},
		},
		Risks: []RiskCategory{
			{Name: "Network Security", RiskScore: 75, Priority: types.PriorityHigh},
			{Name: "Access Control", RiskScore: 70, Priority: types.PriorityHigh},
			{Name: "Data Protection", RiskScore: 55, Priority: types.PriorityMedium},
			{Name: "Employee Training", RiskScore: 85, Priority: types.PriorityCritical},
		},
		Vulnerabilities: []Vulnerability{
			{Name: "SQL Injection", Severity: types.SeverityCritical, Status: types.VulnerabilityStatusOpen, DiscoveryDate: types.NewDate(2024, time.December, 4)},
			{Name: "Weak Passwords", Severity: types.SeverityMedium, Status: types.VulnerabilityStatusResolved, DiscoveryDate: types.NewDate(2024, time.December, 3)},
			{Name: "Unpatched Systems", Severity: types.SeverityMedium, Status: types.VulnerabilityStatusOpen, DiscoveryDate: types.NewDate(2024, time.December, 2)},
			{Name: "Phishing", Severity: types.SeverityMedium, Status: types.VulnerabilityStatusOpen, DiscoveryDate: types.NewDate(2024, time.December, 1)},
		},
		Tasks: []PhaseTask{
			{Phase: types.PhaseImmediate, TaskName: "Emergency patch management", Progress: 85},
			{Phase: types.PhaseImmediate, TaskName: "Temporary access restriction", Progress: 90},
			{Phase: types.PhaseImmediate, TaskName: "Initial training deployment", Progress: 70},
			{Phase: types.PhaseShortTerm, TaskName: "Advanced security tool implementation", Progress: 45},
			{Phase: types.PhaseShortTerm, TaskName: "Comprehensive training program", Progress: 30},
			{Phase: types.PhaseShortTerm, TaskName: "Initial policy refinement", Progress: 60},
			{Phase: types.PhaseLongTerm, TaskName: "Continuous monitoring systems", Progress: 20},
			{Phase: types.PhaseLongTerm, TaskName: "Advanced threat hunting", Progress: 15},
			{Phase: types.PhaseLongTerm, TaskName: "Regular security assessments", Progress: 10},
		},
		Recommendations: []Recommendation{
			{Text: "Implement Multi-Factor Authentication", Priority: types.PriorityCritical, Status: types.RecommendationStatusInProgress, EstimatedCompletion: types.NewDate(2024, time.December, 15)},
			{Text: "Update Firewall Rules", Priority: types.PriorityHigh, Status: types.RecommendationStatusPlanned, EstimatedCompletion: types.NewDate(2024, time.December, 30)},
			{Text: "Deploy EDR Solution", Priority: types.PriorityHigh, Status: types.RecommendationStatusCompleted, EstimatedCompletion: types.NewDate(2024, time.December, 1)},
			{Text: "Conduct Security Training", Priority: types.PriorityMedium, Status: types.RecommendationStatusInProgress, EstimatedCompletion: types.NewDate(2025, time.January, 15)},
			{Text: "Implement Zero Trust Architecture", Priority: types.PriorityCritical, Status: types.RecommendationStatusPlanned, EstimatedCompletion: types.NewDate(2025, time.January, 30)},
		},
	}
}
