// Package threat turns raw detection signals into a normalized score.
package threat

import (
	"time"

	"github.com/argus-sec/argus/internal/models"
)

// Signal names understood by the default weight configuration.
const (
	SignalPattern  = "pattern"
	SignalRate     = "rate"
	SignalBehavior = "behavior"
)

// BehavioralSource supplies an externally computed [0,1] signal for an
// event, typically from a behavioral or ML analyzer. Implementations must
// not block the scoring path for long; the pipeline calls them inside the
// bounded background context.
type BehavioralSource interface {
	Score(ev *models.RequestEvent) float64
}

// NoopSource is the default behavioral source: no signal, zero contribution.
type NoopSource struct{}

func (NoopSource) Score(*models.RequestEvent) float64 { return 0 }

// Scorer aggregates named signals into a [0,1] score via a weighted sum.
// Weights come from configuration so tuning never needs a code change.
type Scorer struct {
	weights   map[string]float64
	threshold float64
	now       func() time.Time
}

// NewScorer builds a scorer. Negative weights are treated as zero so the
// score stays monotonic in every signal.
func NewScorer(weights map[string]float64, threshold float64) *Scorer {
	w := make(map[string]float64, len(weights))
	for name, v := range weights {
		if v > 0 {
			w[name] = v
		}
	}
	return &Scorer{weights: w, threshold: threshold, now: time.Now}
}

// WithClock overrides the wall clock, for deterministic tests.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Score combines the signals into an assessment. Signals are clamped into
// [0,1] before weighting; unknown signal names contribute nothing. An empty
// or nil signal set produces the defined minimum score of 0.0 so downstream
// correlation always receives a well-formed assessment.
func (s *Scorer) Score(ev *models.RequestEvent, signals map[string]float64) models.ThreatAssessment {
	clamped := make(map[string]float64, len(signals))
	total := 0.0
	for name, v := range signals {
		v = clamp01(v)
		clamped[name] = v
		total += s.weights[name] * v
	}
	return models.ThreatAssessment{
		CorrelationID: ev.CorrelationID,
		Identity:      ev.Identity,
		Score:         clamp01(total),
		Signals:       clamped,
		CreatedAt:     s.now(),
	}
}

// Escalates reports whether an assessment crosses the escalation threshold.
func (s *Scorer) Escalates(a models.ThreatAssessment) bool {
	return a.Score >= s.threshold
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
