package metrics

import "github.com/prometheus/client_golang/prometheus"

func (r *Recorder) Intents() *prometheus.CounterVec { return r.intents }
func (r *Recorder) Sessions() prometheus.Gauge { return r.sessions }
func (r *Recorder) Records() *prometheus.GaugeVec { return r.records }
