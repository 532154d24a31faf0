// Package correlate groups flagged events close in time and identity into
// alert groups and candidate attack chains.
package correlate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/argus-sec/argus/internal/models"
)

// ErrMalformedInput signals a caller bug: an element missing required
// fields. The whole call fails; no partial grouping is produced.
var ErrMalformedInput = errors.New("malformed alert input")

// Correlator groups flagged events that fall within the correlation window
// and share an identity. Stateless; safe for concurrent use.
type Correlator struct {
	window time.Duration
	now    func() time.Time
}

// New builds a correlator with the given temporal window.
func New(window time.Duration) *Correlator {
	return &Correlator{window: window, now: time.Now}
}

// WithClock overrides the wall clock, for deterministic tests.
func (c *Correlator) WithClock(now func() time.Time) *Correlator {
	c.now = now
	return c
}

// Correlate produces the full report. Empty input yields a well-formed
// report with empty groups, empty chains, and the lowest risk level; the
// attack-chain ordering is best-effort heuristic output, advisory only.
func (c *Correlator) Correlate(events []models.FlaggedEvent) (*models.CorrelationReport, error) {
	for i, ev := range events {
		if ev.Identity == "" || ev.Timestamp.IsZero() {
			return nil, fmt.Errorf("%w: element %d missing identity or timestamp", ErrMalformedInput, i)
		}
	}

	report := &models.CorrelationReport{
		Groups:          []models.AlertGroup{},
		AttackChains:    [][]string{},
		Risk:            models.RiskLow,
		Recommendations: []string{},
		MitigationPlan:  []string{},
		CreatedAt:       c.now(),
	}
	if len(events) == 0 {
		return report, nil
	}

	sorted := make([]models.FlaggedEvent, len(events))
	copy(sorted, events)
	// Timestamp ascending; identical timestamps fall back to correlation id
	// so grouping is stable and deterministic.
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].CorrelationID < sorted[j].CorrelationID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	// One pass per identity: an event joins the identity's open group when
	// it falls inside the window measured from the group's first event.
	open := make(map[string]int) // identity -> index into report.Groups
	for _, ev := range sorted {
		gi, ok := open[ev.Identity]
		if ok && ev.Timestamp.Sub(report.Groups[gi].WindowStart) <= c.window {
			g := &report.Groups[gi]
			g.Events = append(g.Events, ev)
			g.WindowEnd = ev.Timestamp
			continue
		}
		report.Groups = append(report.Groups, models.AlertGroup{
			ID:          uuid.NewString(),
			Identity:    ev.Identity,
			WindowStart: ev.Timestamp,
			WindowEnd:   ev.Timestamp,
			Events:      []models.FlaggedEvent{ev},
		})
		open[ev.Identity] = len(report.Groups) - 1
	}

	for i := range report.Groups {
		g := &report.Groups[i]
		g.Risk = riskFor(g)
		if g.Risk > report.Risk {
			report.Risk = g.Risk
		}

		chain := make([]string, len(g.Events))
		for j, ev := range g.Events {
			chain[j] = ev.CorrelationID
		}
		report.AttackChains = append(report.AttackChains, chain)
		report.Recommendations = append(report.Recommendations, recommendationFor(g))
	}
	report.MitigationPlan = mitigationFor(report.Risk)

	return report, nil
}

func riskFor(g *models.AlertGroup) models.RiskLevel {
	maxScore := 0.0
	for _, ev := range g.Events {
		if ev.Score > maxScore {
			maxScore = ev.Score
		}
	}
	switch {
	case maxScore >= 0.9 || len(g.Events) >= 5:
		return models.RiskCritical
	case maxScore >= 0.7 || len(g.Events) >= 3:
		return models.RiskHigh
	case maxScore >= 0.4:
		return models.RiskMedium
	}
	return models.RiskLow
}

func recommendationFor(g *models.AlertGroup) string {
	switch g.Risk {
	case models.RiskCritical:
		return fmt.Sprintf("block %s and review the %d correlated events immediately", g.Identity, len(g.Events))
	case models.RiskHigh:
		return fmt.Sprintf("investigate the activity from %s within the correlation window", g.Identity)
	case models.RiskMedium:
		return fmt.Sprintf("monitor %s for repeated suspicious activity", g.Identity)
	}
	return fmt.Sprintf("no action required for %s", g.Identity)
}

func mitigationFor(risk models.RiskLevel) []string {
	switch risk {
	case models.RiskCritical:
		return []string{
			"confirm the offending identities are blocked",
			"verify audit records for the correlated events",
			"notify the on-call security contact",
		}
	case models.RiskHigh:
		return []string{
			"review recent decisions for the affected identities",
			"tighten rate limits if pressure signals persist",
		}
	case models.RiskMedium:
		return []string{"keep the affected identities under observation"}
	}
	return []string{}
}
