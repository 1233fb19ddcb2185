package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys use the "gradpath.*" namespace.
const (
	AttrAuditID        = "gradpath.audit.id"
	AttrPlanID         = "gradpath.plan.id"
	AttrRequirementSet = "gradpath.requirement_set.id"
	AttrProgramVersion = "gradpath.requirement_set.program_version"
	AttrRequirementID  = "gradpath.requirement.id"

	AttrRuleKind    = "gradpath.rule.kind"
	AttrRuleNodes   = "gradpath.rule.nodes"
	AttrRuleOutcome = "gradpath.rule.outcome"

	AttrAuditReady     = "gradpath.audit.ready"
	AttrAuditSatisfied = "gradpath.audit.satisfied"
	AttrAuditPending   = "gradpath.audit.pending"
	AttrAuditMissing   = "gradpath.audit.missing"
	AttrAuditUnknown   = "gradpath.audit.unknown"
)

// PlanAttributes returns the attributes identifying an audit input.
func PlanAttributes(planID, setID, programVersion string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrPlanID, planID),
		attribute.String(AttrRequirementSet, setID),
		attribute.String(AttrProgramVersion, programVersion),
	}
}

// SetRuleAttributes records the shape and result of an evaluated rule.
func SetRuleAttributes(span trace.Span, kind string, nodes int, outcome string) {
	span.SetAttributes(
		attribute.String(AttrRuleKind, kind),
		attribute.Int(AttrRuleNodes, nodes),
		attribute.String(AttrRuleOutcome, outcome),
	)
}

// SetAuditAttributes records the summary of a finished audit.
func SetAuditAttributes(span trace.Span, auditID string, ready bool, satisfied, pending, missing, unknown int) {
	span.SetAttributes(
		attribute.String(AttrAuditID, auditID),
		attribute.Bool(AttrAuditReady, ready),
		attribute.Int(AttrAuditSatisfied, satisfied),
		attribute.Int(AttrAuditPending, pending),
		attribute.Int(AttrAuditMissing, missing),
		attribute.Int(AttrAuditUnknown, unknown),
	)
}

// RequirementAttribute identifies the requirement node being evaluated.
func RequirementAttribute(nodeID string) attribute.KeyValue {
	return attribute.String(AttrRequirementID, nodeID)
}
