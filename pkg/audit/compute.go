package audit

import (
	"sort"
	"time"

	"github.com/div0rce/gradpath/pkg/engine"
	"github.com/div0rce/gradpath/pkg/requirements"
)

// Evidence splits a plan into completed and in-progress course codes and
// sums their credits. Only VALID items with a canonical code count.
type Evidence struct {
	Completed        engine.EvidenceSet
	Pending          engine.EvidenceSet
	CompletedCredits int
	PendingCredits   int
}

// CollectEvidence builds the evidence sets of a plan.
func CollectEvidence(plan *Plan) Evidence {
	ev := Evidence{
		Completed: engine.NewEvidenceSet(),
		Pending:   engine.NewEvidenceSet(),
	}
	for _, item := range plan.Items {
		if item.Status != ItemValid {
			continue
		}
		code, ok := item.CanonicalCode()
		if !ok {
			continue
		}
		switch item.Completion {
		case CompletionYes:
			ev.Completed.Add(code)
			ev.CompletedCredits += item.Credits
		case CompletionInProgress:
			ev.Pending.Add(code)
			ev.PendingCredits += item.Credits
		}
	}
	return ev
}

// evaluation is one engine run made while computing an audit.
type evaluation struct {
	result   *engine.FinalizedNode
	nodes    int
	duration time.Duration
}

type evalFunc func(node *requirements.Node, evidence engine.Evidence) evaluation

// Compute audits a plan against a requirement set. Nodes are visited by
// Order, then ID; the set itself is not modified. ID and ComputedAt are
// left for the caller.
func Compute(plan *Plan, set *requirements.Set, evaluator *engine.Evaluator) *Audit {
	if evaluator == nil {
		evaluator = engine.NewEvaluator()
	}
	return compute(plan, set, func(node *requirements.Node, evidence engine.Evidence) evaluation {
		return evaluation{result: evaluator.Run(node.Rule, evidence)}
	})
}

func compute(plan *Plan, set *requirements.Set, eval evalFunc) *Audit {
	ev := CollectEvidence(plan)
	withPending := ev.Completed.Union(ev.Pending)

	a := &Audit{
		PlanID:           plan.ID,
		RequirementSetID: set.ID,
		ProgramVersion:   set.ProgramVersion,
		Requirements:     make([]RequirementResult, 0, len(set.Nodes)),
	}
	a.Summary.CompletedCredits = ev.CompletedCredits
	a.Summary.PendingCredits = ev.PendingCredits

	for _, node := range sortedNodes(set.Nodes) {
		r := RequirementResult{NodeID: node.ID, Title: node.Title}

		completed := eval(node, ev.Completed).result
		switch {
		case completed.Unsupported:
			r.Status = StatusUnknown
			r.Detail = unsupportedDetail(completed)
		case completed.Satisfied:
			r.Status = StatusSatisfied
		default:
			projected := eval(node, withPending).result
			switch {
			case projected.Unsupported:
				r.Status = StatusUnknown
				r.Detail = unsupportedDetail(projected)
			case projected.Satisfied:
				r.Status = StatusPending
				r.Detail = missingDetail(completed)
			default:
				r.Status = StatusMissing
				r.Detail = missingDetail(completed)
			}
		}

		a.Requirements = append(a.Requirements, r)
		a.Summary.add(r.Status)
	}

	a.HasUnsupportedRules = a.Summary.Unknown > 0
	a.Summary.TotalCount = len(a.Requirements)
	a.Summary.KnownCount = a.Summary.TotalCount - a.Summary.Unknown
	if a.Summary.KnownCount > 0 {
		a.Summary.PercentComplete = float64(a.Summary.Satisfied) / float64(a.Summary.KnownCount)
	}
	return a
}

func (s *Summary) add(status RequirementStatus) {
	switch status {
	case StatusSatisfied:
		s.Satisfied++
	case StatusPending:
		s.Pending++
	case StatusMissing:
		s.Missing++
	case StatusUnknown:
		s.Unknown++
	}
}

func unsupportedDetail(f *engine.FinalizedNode) *Detail {
	return &Detail{
		Reason:       ReasonUnsupportedRule,
		Explanations: append([]engine.ExplanationCode(nil), f.ExplanationCodes...),
	}
}

func missingDetail(f *engine.FinalizedNode) *Detail {
	return &Detail{
		MissingCourses: append([]string(nil), f.MissingCourses...),
		Explanations:   append([]engine.ExplanationCode(nil), f.ExplanationCodes...),
	}
}

func sortedNodes(nodes []*requirements.Node) []*requirements.Node {
	sorted := append([]*requirements.Node(nil), nodes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
