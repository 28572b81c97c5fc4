package services

import "github.com/prometheus/client_golang/prometheus"

// ProcessorMetrics collects counters for the two background processors.
type ProcessorMetrics struct {
	GeneratorRuns    prometheus.Counter
	InstancesCreated prometheus.Counter
	TemplatesSkipped prometheus.Counter
	CarryForwardRuns prometheus.Counter
	TasksCarried     prometheus.Counter
	RunDuration      *prometheus.HistogramVec
}

// NewProcessorMetrics registers the processor metrics on the given
// registerer.
func NewProcessorMetrics(reg prometheus.Registerer) *ProcessorMetrics {
	m := &ProcessorMetrics{
		GeneratorRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybook_generator_runs_total",
			Help: "Total number of recurrence generator runs",
		}),
		InstancesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybook_instances_created_total",
			Help: "Total number of task instances materialized from templates",
		}),
		TemplatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybook_templates_skipped_total",
			Help: "Total number of templates skipped due to undecodable or corrupt records",
		}),
		CarryForwardRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybook_carry_forward_runs_total",
			Help: "Total number of anchor carry-forward runs",
		}),
		TasksCarried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybook_tasks_carried_total",
			Help: "Total number of anchor tasks carried forward",
		}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "daybook_processor_run_duration_seconds",
			Help:    "Processor run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"processor"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.GeneratorRuns, m.InstancesCreated, m.TemplatesSkipped,
			m.CarryForwardRuns, m.TasksCarried, m.RunDuration,
		)
	}

	return m
}
