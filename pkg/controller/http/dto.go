package http

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

type metricResponse struct {
	Value string `json:"value"`
	Delta string `json:"delta,omitempty"`
	Help  string `json:"help,omitempty"`
}

type headlineResponse struct {
	Mode                    string         `json:"mode"`
	OverallRiskScore        metricResponse `json:"overall_risk_score"`
	CriticalVulnerabilities metricResponse `json:"critical_vulnerabilities"`
	SecurityIncidents       metricResponse `json:"security_incidents"`
}

type teamMemberResponse struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

type infoResponse struct {
	Title      string               `json:"title"`
	Subtitle   string               `json:"subtitle"`
	Team       []teamMemberResponse `json:"team"`
	Course     string               `json:"course,omitempty"`
	Instructor string               `json:"instructor,omitempty"`
	Date       types.Date           `json:"date"`
	Systems    []string             `json:"systems"`
}

type riskResponse struct {
	Position  int    `json:"position"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	RiskScore int    `json:"risk_score"`
	Priority  string `json:"priority"`
	Color     string `json:"color"`
}

type vulnerabilityResponse struct {
	Position      int        `json:"position"`
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Severity      string     `json:"severity"`
	Status        string     `json:"status"`
	DiscoveryDate types.Date `json:"discovery_date"`
}

type taskResponse struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Phase    string `json:"phase"`
	TaskName string `json:"task_name"`
	Progress int    `json:"progress"`
}

type recommendationResponse struct {
	Position            int        `json:"position"`
	ID                  string     `json:"id"`
	Text                string     `json:"text"`
	Priority            string     `json:"priority"`
	Status              string     `json:"status"`
	EstimatedCompletion types.Date `json:"estimated_completion"`
	Highlight           string     `json:"highlight,omitempty"`
}

type bucketResponse struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

type phaseResponse struct {
	Phase   string         `json:"phase"`
	Label   string         `json:"label"`
	Average float64        `json:"average"`
	Tasks   []taskResponse `json:"tasks"`
}

type recommendationsResponse struct {
	Filter []string                 `json:"filter"`
	Total  int                      `json:"total"`
	Rows   []recommendationResponse `json:"rows"`
}

type dashboardResponse struct {
	SessionID       string                  `json:"session_id"`
	Version         uint64                  `json:"version"`
	RenderedAt      time.Time               `json:"rendered_at"`
	Info            infoResponse            `json:"info"`
	SelectedSystem  string                  `json:"selected_system"`
	Headline        headlineResponse        `json:"headline"`
	Risks           []riskResponse          `json:"risks"`
	Vulnerabilities []vulnerabilityResponse `json:"vulnerabilities"`
	SeverityChart   []bucketResponse        `json:"severity_chart"`
	StatusChart     []bucketResponse        `json:"status_chart"`
	Phases          []phaseResponse         `json:"phases"`
	TaskCount       int                     `json:"task_count"`
	Recommendations recommendationsResponse `json:"recommendations"`
}

type mutationResponse struct {
	Message   string             `json:"message"`
	Record    any                `json:"record"`
	Dashboard *dashboardResponse `json:"dashboard"`
}

func toMetricResponse(m model.StaticMetric) metricResponse {
	return metricResponse{Value: m.Value, Delta: m.Delta, Help: m.Help}
}

// toRiskResponse converts a risk category row to its JSON form
func toRiskResponse(row model.Row[model.RiskCategory]) riskResponse {
	r := row.Record
	return riskResponse{
		Position:  row.Position,
		ID:        r.ID.String(),
		Name:      r.Name,
		RiskScore: r.RiskScore,
		Priority:  r.Priority.String(),
		Color:     r.Priority.Color(),
	}
}

func toVulnerabilityResponse(row model.Row[model.Vulnerability]) vulnerabilityResponse {
	v := row.Record
	return vulnerabilityResponse{
		Position:      row.Position,
		ID:            v.ID.String(),
		Name:          v.Name,
		Severity:      v.Severity.String(),
		Status:        v.Status.String(),
		DiscoveryDate: v.DiscoveryDate,
	}
}

func toTaskResponse(row model.Row[model.PhaseTask]) taskResponse {
	t := row.Record
	return taskResponse{
		Position: row.Position,
		ID:       t.ID.String(),
		Phase:    t.Phase.String(),
		TaskName: t.TaskName,
		Progress: t.Progress,
	}
}

func toRecommendationResponse(row model.Row[model.Recommendation]) recommendationResponse {
	r := row.Record
	return recommendationResponse{
		Position:            row.Position,
		ID:                  r.ID.String(),
		Text:                r.Text,
		Priority:            r.Priority.String(),
		Status:              r.Status.String(),
		EstimatedCompletion: r.EstimatedCompletion,
		Highlight:           r.Priority.Highlight(),
	}
}

func toBucketResponses(buckets []model.Bucket) []bucketResponse {
	out := make([]bucketResponse, len(buckets))
	for i, b := range buckets {
		out[i] = bucketResponse{Label: b.Label, Color: b.Color, Count: b.Count}
	}
	return out
}

func convertRows[T, R any](rows []model.Row[T], conv func(model.Row[T]) R) []R {
	out := make([]R, len(rows))
	for i, row := range rows {
		out[i] = conv(row)
	}
	return out
}

// toDashboardResponse converts the render model to its JSON form
func toDashboardResponse(d *model.Dashboard) *dashboardResponse {
	team := make([]teamMemberResponse, len(d.Info.Team))
	for i, m := range d.Info.Team {
		team[i] = teamMemberResponse{Role: m.Role, Name: m.Name}
	}

	phases := make([]phaseResponse, len(d.Phases))
	for i, g := range d.Phases {
		phases[i] = phaseResponse{
			Phase:   g.Phase.String(),
			Label:   g.Label,
			Average: g.Average,
			Tasks:   convertRows(g.Tasks, toTaskResponse),
		}
	}

	filter := make([]string, len(d.Filter))
	for i, p := range d.Filter {
		filter[i] = p.String()
	}

	systems := d.Info.Systems
	if systems == nil {
		systems = []string{}
	}

	return &dashboardResponse{
		SessionID:  d.SessionID.String(),
		Version:    d.Version,
		RenderedAt: d.RenderedAt,
		Info: infoResponse{
			Title:      d.Info.Title,
			Subtitle:   d.Info.Subtitle,
			Team:       team,
			Course:     d.Info.Course,
			Instructor: d.Info.Instructor,
			Date:       d.Info.Date,
			Systems:    systems,
		},
		SelectedSystem: d.SelectedSystem,
		Headline: headlineResponse{
			Mode:                    d.Headline.Mode.String(),
			OverallRiskScore:        toMetricResponse(d.Headline.OverallRiskScore),
			CriticalVulnerabilities: toMetricResponse(d.Headline.CriticalVulnerabilities),
			SecurityIncidents:       toMetricResponse(d.Headline.SecurityIncidents),
		},
		Risks:           convertRows(d.Risks, toRiskResponse),
		Vulnerabilities: convertRows(d.Vulnerabilities, toVulnerabilityResponse),
		SeverityChart:   toBucketResponses(d.SeverityBuckets),
		StatusChart:     toBucketResponses(d.StatusBuckets),
		Phases:          phases,
		TaskCount:       d.TaskCount,
		Recommendations: recommendationsResponse{
			Filter: filter,
			Total:  d.RecommendationTotal,
			Rows:   convertRows(d.Recommendations, toRecommendationResponse),
		},
	}
}

type riskInput struct {
	Name      string `json:"name"`
	RiskScore int    `json:"risk_score"`
	Priority  string `json:"priority"`
}

func (in *riskInput) toModel() (model.RiskCategory, error) {
	p, err := types.ParsePriority(in.Priority)
	if err != nil {
		return model.RiskCategory{}, goerr.Wrap(err, "invalid risk category input")
	}
	return model.RiskCategory{Name: in.Name, RiskScore: in.RiskScore, Priority: p}, nil
}

type vulnerabilityInput struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
}

func (in *vulnerabilityInput) toModel() (model.Vulnerability, error) {
	sev, err := types.ParseSeverity(in.Severity)
	if err != nil {
		return model.Vulnerability{}, goerr.Wrap(err, "invalid vulnerability input")
	}
	status, err := types.ParseVulnerabilityStatus(in.Status)
	if err != nil {
		return model.Vulnerability{}, goerr.Wrap(err, "invalid vulnerability input")
	}
	return model.Vulnerability{Name: in.Name, Severity: sev, Status: status}, nil
}

type taskInput struct {
	Phase    string `json:"phase"`
	TaskName string `json:"task_name"`
	Progress int    `json:"progress"`
}

func (in *taskInput) toModel() (model.PhaseTask, error) {
	phase, err := types.ParsePhase(in.Phase)
	if err != nil {
		return model.PhaseTask{}, goerr.Wrap(err, "invalid task input")
	}
	return model.PhaseTask{Phase: phase, TaskName: in.TaskName, Progress: in.Progress}, nil
}

type recommendationInput struct {
	Text                string     `json:"text"`
	Priority            string     `json:"priority"`
	Status              string     `json:"status"`
	EstimatedCompletion types.Date `json:"estimated_completion"`
}

func (in *recommendationInput) toModel() (model.Recommendation, error) {
	p, err := types.ParsePriority(in.Priority)
	if err != nil {
		return model.Recommendation{}, goerr.Wrap(err, "invalid recommendation input")
	}
	status, err := types.ParseRecommendationStatus(in.Status)
	if err != nil {
		return model.Recommendation{}, goerr.Wrap(err, "invalid recommendation input")
	}
	return model.Recommendation{
		Text:                in.Text,
		Priority:            p,
		Status:              status,
		EstimatedCompletion: in.EstimatedCompletion,
	}, nil
}

type filterInput struct {
	Priorities []string `json:"priorities"`
}

type systemInput struct {
	System string `json:"system"`
}
