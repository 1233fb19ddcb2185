package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// AuditIDKey is the context key for audit IDs.
	AuditIDKey contextKey = "audit_id"

	// PlanIDKey is the context key for plan IDs.
	PlanIDKey contextKey = "plan_id"

	// RequirementSetKey is the context key for requirement set IDs.
	RequirementSetKey contextKey = "requirement_set"
)

// WithAuditID adds an audit ID to the context.
func WithAuditID(ctx context.Context, auditID string) context.Context {
	return context.WithValue(ctx, AuditIDKey, auditID)
}

// GetAuditID retrieves the audit ID from the context.
func GetAuditID(ctx context.Context) string {
	if id, ok := ctx.Value(AuditIDKey).(string); ok {
		return id
	}
	return ""
}

// WithPlanID adds a plan ID to the context.
func WithPlanID(ctx context.Context, planID string) context.Context {
	return context.WithValue(ctx, PlanIDKey, planID)
}

// GetPlanID retrieves the plan ID from the context.
func GetPlanID(ctx context.Context) string {
	if id, ok := ctx.Value(PlanIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequirementSet adds a requirement set ID to the context.
func WithRequirementSet(ctx context.Context, setID string) context.Context {
	return context.WithValue(ctx, RequirementSetKey, setID)
}

// GetRequirementSet retrieves the requirement set ID from the context.
func GetRequirementSet(ctx context.Context) string {
	if id, ok := ctx.Value(RequirementSetKey).(string); ok {
		return id
	}
	return ""
}

// extractContextFields extracts logging fields from the context, including
// the active trace and span IDs.
func extractContextFields(ctx context.Context) []slog.Attr {
	var fields []slog.Attr

	if id := GetAuditID(ctx); id != "" {
		fields = append(fields, slog.String("audit_id", id))
	}
	if id := GetPlanID(ctx); id != "" {
		fields = append(fields, slog.String("plan_id", id))
	}
	if id := GetRequirementSet(ctx); id != "" {
		fields = append(fields, slog.String("requirement_set", id))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	return fields
}

// contextHandler adds context fields to every record logged with a context.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		r.AddAttrs(extractContextFields(ctx)...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
