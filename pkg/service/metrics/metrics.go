package metrics

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/secmon-lab/posture/pkg/domain/interfaces"
	"github.com/secmon-lab/posture/pkg/domain/types"
)

const namespace = "posture"

// Recorder is a RenderObserver that exports intent counts, live sessions and
// the size of each rendered collection
type Recorder struct {
	intents  *prometheus.CounterVec
	sessions prometheus.Gauge
	records  *prometheus.GaugeVec
}

// New creates a Recorder and registers its collectors with reg
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intents_total",
				Help:      "Total number of intents applied to sessions",
			},
			[]string{"intent", "collection"},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of live dashboard sessions",
			},
		),
		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_render_records",
				Help:      "Number of records per collection in the most recent render",
			},
			[]string{"collection"},
		),
	}

	for _, c := range []prometheus.Collector{r.intents, r.sessions, r.records} {
		if err := reg.Register(c); err != nil {
			return nil, goerr.Wrap(err, "failed to register collector")
		}
	}
	return r, nil
}

// OnRender implements interfaces.RenderObserver
func (r *Recorder) OnRender(ctx context.Context, event *interfaces.RenderEvent) {
	r.intents.WithLabelValues(event.Intent.String(), event.Collection.String()).Inc()

	switch event.Intent {
	case types.IntentInit:
		r.sessions.Inc()
	case types.IntentEnd:
		r.sessions.Dec()
	}

	if d := event.Dashboard; d != nil {
		r.records.WithLabelValues(types.CollectionRisks.String()).Set(float64(len(d.Risks)))
		r.records.WithLabelValues(types.CollectionVulnerabilities.String()).Set(float64(len(d.Vulnerabilities)))
		r.records.WithLabelValues(types.CollectionTasks.String()).Set(float64(d.TaskCount))
		r.records.WithLabelValues(types.CollectionRecommendations.String()).Set(float64(d.RecommendationTotal))
	}
}
