package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/div0rce/gradpath/pkg/engine"
	"github.com/div0rce/gradpath/pkg/requirements"
	"github.com/div0rce/gradpath/pkg/telemetry/logging"
	"github.com/div0rce/gradpath/pkg/telemetry/tracing"
)

// DefaultStoreTimeout bounds a single storage write.
const DefaultStoreTimeout = 5 * time.Second

// Recorder receives audit metrics. metrics.Collector implements it.
type Recorder interface {
	RecordEvaluation(kind, outcome string, nodes int, duration time.Duration)
	RecordAudit(setID string, ready bool, duration time.Duration)
	RecordRequirementStatus(status string)
}

// Auditor computes audits and optionally persists them.
type Auditor struct {
	storage      Storage
	recorder     Recorder
	tracer       trace.Tracer
	evaluator    *engine.Evaluator
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
	storeTimeout time.Duration
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithStorage persists every audit to s.
func WithStorage(s Storage) Option {
	return func(a *Auditor) { a.storage = s }
}

// WithRecorder reports metrics to r.
func WithRecorder(r Recorder) Option {
	return func(a *Auditor) { a.recorder = r }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(a *Auditor) { a.tracer = t }
}

// WithEvaluator sets the rule evaluator.
func WithEvaluator(e *engine.Evaluator) Option {
	return func(a *Auditor) { a.evaluator = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Auditor) { a.logger = l.With("component", "audit.auditor") }
}

// WithClock sets the time source for ComputedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Auditor) { a.now = now }
}

// WithIDGenerator sets the audit ID source.
func WithIDGenerator(newID func() string) Option {
	return func(a *Auditor) { a.newID = newID }
}

// WithStoreTimeout bounds each storage write. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(a *Auditor) { a.storeTimeout = d }
}

// NewAuditor creates an auditor. Without options it computes audits with a
// sequential evaluator and stores nothing.
func NewAuditor(opts ...Option) *Auditor {
	a := &Auditor{
		tracer:       otel.Tracer(tracing.InstrumentationName),
		evaluator:    engine.NewEvaluator(),
		logger:       slog.Default().With("component", "audit.auditor"),
		now:          time.Now,
		newID:        uuid.NewString,
		storeTimeout: DefaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run audits plan against set, derives readiness and stores the result when
// a storage backend is configured. The plan must name set, or name none.
func (a *Auditor) Run(ctx context.Context, plan *Plan, set *requirements.Set) (*Audit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if plan == nil || set == nil {
		return nil, fmt.Errorf("audit: plan and requirement set are required")
	}
	if plan.RequirementSetID != "" && plan.RequirementSetID != set.ID {
		return nil, fmt.Errorf("%w: plan %s names %q, got %q", ErrSetMismatch, plan.ID, plan.RequirementSetID, set.ID)
	}

	start := a.now()
	id := a.newID()

	ctx = logging.WithAuditID(ctx, id)
	ctx = logging.WithPlanID(ctx, plan.ID)
	ctx = logging.WithRequirementSet(ctx, set.ID)

	ctx, span := a.tracer.Start(ctx, "audit.run",
		trace.WithAttributes(tracing.PlanAttributes(plan.ID, set.ID, set.ProgramVersion)...))
	defer span.End()

	result := compute(plan, set, func(node *requirements.Node, evidence engine.Evidence) evaluation {
		return a.evaluate(ctx, node, evidence)
	})
	result.ID = id
	result.ComputedAt = start.UTC()

	readiness := Readiness(result, plan.InvalidItems())
	result.Readiness = &readiness

	tracing.SetAuditAttributes(span, id, readiness.OK,
		result.Summary.Satisfied, result.Summary.Pending, result.Summary.Missing, result.Summary.Unknown)

	if a.recorder != nil {
		for _, r := range result.Requirements {
			a.recorder.RecordRequirementStatus(string(r.Status))
		}
		a.recorder.RecordAudit(set.ID, readiness.OK, a.now().Sub(start))
	}

	a.logger.DebugContext(ctx, "Audit computed",
		"requirements", result.Summary.TotalCount,
		"ready", readiness.OK,
		"blockers", len(readiness.Blockers),
	)

	if a.storage != nil {
		if err := a.store(ctx, result); err != nil {
			tracing.SetError(span, err)
			a.logger.ErrorContext(ctx, "Failed to store audit", "error", err)
			return result, fmt.Errorf("store audit %s: %w", id, err)
		}
		a.logger.InfoContext(ctx, "Audit stored", "ready", readiness.OK)
	}

	return result, nil
}

func (a *Auditor) evaluate(ctx context.Context, node *requirements.Node, evidence engine.Evidence) evaluation {
	_, span := a.tracer.Start(ctx, "requirement.evaluate",
		trace.WithAttributes(tracing.RequirementAttribute(node.ID)))
	defer span.End()

	begin := time.Now()
	result := a.evaluator.Run(node.Rule, evidence)
	ev := evaluation{
		result:   result,
		nodes:    node.Rule.Size(),
		duration: time.Since(begin),
	}

	kind := string(result.Kind())
	outcome := string(result.Outcome())
	tracing.SetRuleAttributes(span, kind, ev.nodes, outcome)
	if a.recorder != nil {
		a.recorder.RecordEvaluation(kind, outcome, ev.nodes, ev.duration)
	}
	return ev
}

func (a *Auditor) store(ctx context.Context, result *Audit) error {
	if a.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.storeTimeout)
		defer cancel()
	}
	return a.storage.Store(ctx, result)
}
