// Package pipeline wires the rate limiter, block list, pattern matcher,
// audit trail, and threat scorer into the per-request control flow.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/argus-sec/argus/internal/audit"
	"github.com/argus-sec/argus/internal/blocklist"
	"github.com/argus-sec/argus/internal/config"
	"github.com/argus-sec/argus/internal/correlate"
	"github.com/argus-sec/argus/internal/logger"
	"github.com/argus-sec/argus/internal/metrics"
	"github.com/argus-sec/argus/internal/models"
	"github.com/argus-sec/argus/internal/ratelimit"
	"github.com/argus-sec/argus/internal/services"
	"github.com/argus-sec/argus/internal/threat"
	"github.com/argus-sec/argus/internal/waf"
)

// Outcome is the terminal state of one pipeline evaluation. The three
// rejection kinds are routine results, not errors; Evaluate never fails.
type Outcome int

const (
	Allow Outcome = iota
	RejectRateLimited
	RejectBlocked
	RejectSuspicious
)

func (o Outcome) String() string {
	switch o {
	case RejectRateLimited:
		return "rate_limited"
	case RejectBlocked:
		return "blocked"
	case RejectSuspicious:
		return "suspicious_content"
	default:
		return "allow"
	}
}

// Decision is what Evaluate returns to the server layer.
type Decision struct {
	Outcome Outcome
	// RuleID names the matched rule for suspicious rejections.
	RuleID string
	// CorrelationID echoes the id assigned to the event at entry.
	CorrelationID string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Deps are the injected collaborators. All are constructed once at process
// start and shared across invocations; nothing here is a global.
type Deps struct {
	Tracker    *ratelimit.Tracker
	Blocks     *blocklist.BlockList
	Matcher    *waf.Matcher
	Trail      *audit.Trail
	Scorer     *threat.Scorer
	Correlator *correlate.Correlator
	Behavior   threat.BehavioralSource
	Decisions  *services.DecisionService
	Notifier   *services.NotificationService
}

// Pipeline evaluates requests. The allow/deny decision completes
// synchronously on the rate, block, and pattern checks; scoring and audit
// for allowed requests run on a bounded background pool that never adds
// latency to, or propagates failures into, the in-flight request.
type Pipeline struct {
	deps Deps
	now  func() time.Time

	correlationWindow time.Duration
	bgTimeout         time.Duration
	sem               chan struct{}
	wg                sync.WaitGroup

	flaggedMu sync.Mutex
	flagged   []models.FlaggedEvent
}

// New builds a pipeline from configuration and collaborators. A nil
// behavioral source defaults to a zero contribution.
func New(cfg config.SecurityConfig, deps Deps) *Pipeline {
	if deps.Behavior == nil {
		deps.Behavior = threat.NoopSource{}
	}
	workers := cfg.BackgroundWorkers
	if workers <= 0 {
		workers = 32
	}
	bgTimeout := cfg.BackgroundTimeout
	if bgTimeout <= 0 {
		bgTimeout = 5 * time.Second
	}
	return &Pipeline{
		deps:              deps,
		now:               time.Now,
		correlationWindow: cfg.CorrelationWindow,
		bgTimeout:         bgTimeout,
		sem:               make(chan struct{}, workers),
	}
}

// WithClock overrides the wall clock, for deterministic tests.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Evaluate runs one request through the pipeline. Rejection short-circuits
// the remaining stages.
func (p *Pipeline) Evaluate(ctx context.Context, ev *models.RequestEvent) Decision {
	if ev.CorrelationID == "" {
		ev.CorrelationID = uuid.NewString()
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = p.now()
	}
	metrics.IncEvaluated()

	rate := p.deps.Tracker.Record(ev.Identity, ev.ReceivedAt)
	if !rate.Allowed {
		return p.reject(ev, Decision{Outcome: RejectRateLimited, CorrelationID: ev.CorrelationID}, "ratelimit", "")
	}

	if p.deps.Blocks.IsBlocked(ev.Identity) {
		return p.reject(ev, Decision{Outcome: RejectBlocked, CorrelationID: ev.CorrelationID}, "blocklist", "")
	}

	res := p.deps.Matcher.Inspect(ev.Method, ev.URL, ev.Body)
	if res.Unparsable {
		logger.WithFields(map[string]interface{}{
			"correlation_id": ev.CorrelationID,
			"identity":       ev.Identity,
		}).Debug("request body unparsable, skipped for pattern inspection")
	}
	if res.Matched {
		p.deps.Blocks.Block(ev.Identity, "suspicious_content:"+res.RuleID, ev.ReceivedAt)

		// Evidentiary completeness beats latency on an already-failing
		// request: the audit write is synchronous here. A failed write is
		// surfaced, but the detection stands and the rejection holds.
		if _, err := p.deps.Trail.Log(ctx, ev, "suspicious_content"); err != nil {
			metrics.IncAuditFailure()
			logger.WithFields(map[string]interface{}{
				"correlation_id": ev.CorrelationID,
				"identity":       ev.Identity,
			}).Errorf("audit write failed on rejection path: %v", err)
		}

		dec := Decision{Outcome: RejectSuspicious, RuleID: res.RuleID, CorrelationID: ev.CorrelationID}
		p.reject(ev, dec, "waf", res.RuleID)
		// Feed the detection into scoring/correlation off the request path.
		p.dispatch(func(bgCtx context.Context) {
			p.score(bgCtx, ev, 1.0, rate.Pressure(), res.RuleID)
		})
		return dec
	}

	p.dispatch(func(bgCtx context.Context) {
		p.score(bgCtx, ev, 0.0, rate.Pressure(), "")
	})
	return Decision{Outcome: Allow, CorrelationID: ev.CorrelationID}
}

// GetAuditRecord exposes stored audit records to the server layer.
func (p *Pipeline) GetAuditRecord(ctx context.Context, logID string) (*models.AuditRecord, error) {
	return p.deps.Trail.GetRecord(ctx, logID)
}

// VerifyAuditRecord re-checks a stored record's integrity. Integrity
// violations are security incidents and are counted apart from plain
// lookup failures.
func (p *Pipeline) VerifyAuditRecord(ctx context.Context, logID string) (bool, error) {
	ok, err := p.deps.Trail.Verify(ctx, logID)
	if errors.Is(err, audit.ErrIntegrity) {
		metrics.IncIntegrityViolation()
		logger.WithFields(map[string]interface{}{
			"log_id": logID,
		}).Error("audit record failed integrity verification")
	}
	return ok, err
}

// Close drains the background pool. Call on shutdown.
func (p *Pipeline) Close() {
	p.wg.Wait()
}

// reject records the decision for observability and returns it unchanged.
func (p *Pipeline) reject(ev *models.RequestEvent, dec Decision, source, ruleID string) Decision {
	metrics.IncRejected(dec.Outcome.String())
	p.dispatch(func(context.Context) {
		err := p.deps.Decisions.Log(&models.Decision{
			UUID:     dec.CorrelationID,
			Source:   source,
			Action:   "reject",
			Identity: ev.Identity,
			RuleID:   ruleID,
			Details:  dec.Outcome.String(),
		})
		if err != nil {
			logger.Log().Warnf("decision log write failed: %v", err)
		}
	})
	return dec
}

// dispatch hands a task to the bounded background pool. When the pool is
// saturated the task is dropped with a logged warning rather than blocking
// the request path.
func (p *Pipeline) dispatch(task func(ctx context.Context)) {
	select {
	case p.sem <- struct{}{}:
	default:
		metrics.IncBackgroundDropped()
		logger.Log().Warn("background task dropped: worker pool saturated")
		return
	}
	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		ctx, cancel := context.WithTimeout(context.Background(), p.bgTimeout)
		defer cancel()
		task(ctx)
	}()
}

// score runs the asynchronous scoring/escalation path. Failures here are
// observed but never reach the caller.
func (p *Pipeline) score(ctx context.Context, ev *models.RequestEvent, patternSignal, pressure float64, ruleID string) {
	signals := map[string]float64{
		threat.SignalPattern:  patternSignal,
		threat.SignalRate:     pressure,
		threat.SignalBehavior: p.deps.Behavior.Score(ev),
	}
	assessment := p.deps.Scorer.Score(ev, signals)
	if !p.deps.Scorer.Escalates(assessment) {
		return
	}
	metrics.IncAlertEscalated()

	if _, err := p.deps.Trail.LogAssessment(ctx, &assessment); err != nil {
		metrics.IncAuditFailure()
		logger.WithFields(map[string]interface{}{
			"correlation_id": ev.CorrelationID,
		}).Warnf("assessment audit write failed: %v", err)
	}

	flagged := p.appendFlagged(models.FlaggedEvent{
		CorrelationID: ev.CorrelationID,
		Identity:      ev.Identity,
		RuleID:        ruleID,
		Score:         assessment.Score,
		Timestamp:     ev.ReceivedAt,
	})
	report, err := p.deps.Correlator.Correlate(flagged)
	if err != nil {
		logger.Log().Errorf("alert correlation failed: %v", err)
		return
	}
	if report.Risk >= models.RiskHigh && p.deps.Notifier != nil {
		p.deps.Notifier.NotifyEscalation(report)
	}
}

// appendFlagged adds an event to the rolling flagged buffer, trims entries
// older than the correlation window, and returns a snapshot.
func (p *Pipeline) appendFlagged(ev models.FlaggedEvent) []models.FlaggedEvent {
	p.flaggedMu.Lock()
	defer p.flaggedMu.Unlock()

	p.flagged = append(p.flagged, ev)
	cutoff := ev.Timestamp.Add(-p.correlationWindow)
	idx := 0
	for idx < len(p.flagged) && p.flagged[idx].Timestamp.Before(cutoff) {
		idx++
	}
	p.flagged = p.flagged[idx:]

	out := make([]models.FlaggedEvent, len(p.flagged))
	copy(out, p.flagged)
	return out
}
