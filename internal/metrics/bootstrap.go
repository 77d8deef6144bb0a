// Package metrics defines the Prometheus collectors recorded while
// repositories are bootstrapped.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder groups the bootstrap collectors. A nil *Recorder records nothing.
type Recorder struct {
	RepositoriesRegistered *prometheus.CounterVec
	FragmentsRegistered    *prometheus.CounterVec
	StrictRejections       *prometheus.CounterVec
	ScanDuration           *prometheus.HistogramVec
}

// NewRecorder creates unregistered collectors.
func NewRecorder() *Recorder {
	return &Recorder{
		RepositoriesRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repokit_repositories_registered_total",
			Help: "Repository factory beans registered, by module",
		}, []string{"module"}),
		FragmentsRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repokit_fragments_registered_total",
			Help: "Repository fragment beans registered, by module",
		}, []string{"module"}),
		StrictRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repokit_strict_rejections_total",
			Help: "Repository candidates skipped by strict configuration mode, by module",
		}, []string{"module"}),
		ScanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "repokit_scan_duration_seconds",
			Help:    "Duration of repository scanning and registration, by module",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"module"}),
	}
}

// Register registers the collectors on reg (or the default registerer if
// nil). Collectors that are already registered are tolerated.
func (r *Recorder) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		r.RepositoriesRegistered, r.FragmentsRegistered, r.StrictRejections, r.ScanDuration,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// RepositoryRegistered counts one repository for module.
func (r *Recorder) RepositoryRegistered(module string) {
	if r == nil {
		return
	}
	r.RepositoriesRegistered.WithLabelValues(module).Inc()
}

// FragmentRegistered counts one fragment bean for module.
func (r *Recorder) FragmentRegistered(module string) {
	if r == nil {
		return
	}
	r.FragmentsRegistered.WithLabelValues(module).Inc()
}

// StrictRejection counts one candidate skipped in strict mode.
func (r *Recorder) StrictRejection(module string) {
	if r == nil {
		return
	}
	r.StrictRejections.WithLabelValues(module).Inc()
}

// ObserveScan records the duration of a bootstrap pass started at start.
func (r *Recorder) ObserveScan(module string, start time.Time) {
	if r == nil {
		return
	}
	r.ScanDuration.WithLabelValues(module).Observe(time.Since(start).Seconds())
}
