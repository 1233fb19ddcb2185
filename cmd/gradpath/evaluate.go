package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/div0rce/gradpath/pkg/cli"
	"github.com/div0rce/gradpath/pkg/dsl/ast"
	"github.com/div0rce/gradpath/pkg/dsl/parser"
	"github.com/div0rce/gradpath/pkg/engine"
	"github.com/div0rce/gradpath/pkg/telemetry/tracing"
)

var evaluateFlags struct {
	rule         string
	evidence     string
	evidenceFile string
	format       string
	schema       bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one rule against completed courses",
	Long: `Evaluate a single requirement rule against a set of completed courses.

The rule file may be v2 or legacy shorthand, in YAML or JSON. Invalid nodes
are quarantined as UNSUPPORTED rather than rejected, so the result always
shows what could and could not be judged.

Evidence tokens are separated by commas or whitespace. Each token must
contain a canonical course code (NN:NNN:NNN); surrounding text is ignored.

Examples:
  # Inline evidence
  gradpath evaluate --rule rule.yaml --evidence "01:198:111,01:198:112"

  # Evidence file, one course per line
  gradpath evaluate --rule rule.yaml --evidence-file transcript.txt

  # JSON result for tooling
  gradpath evaluate --rule rule.yaml --evidence 01:198:111 --format json`,
	RunE: evaluateRule,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.rule, "rule", "r", "", "rule file to evaluate")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.evidence, "evidence", "e", "", "completed course codes")
	evaluateCmd.Flags().StringVar(&evaluateFlags.evidenceFile, "evidence-file", "", "file of completed courses, one per line")
	evaluateCmd.Flags().StringVar(&evaluateFlags.format, "format", "text", "output format: text, json")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.schema, "schema", false, "check the rule against its wire schema first")
}

func evaluateRule(cmd *cobra.Command, args []string) error {
	if evaluateFlags.rule == "" {
		return cli.NewConfigError("rule", "--rule must be specified")
	}
	format, err := cli.ParseFormat(evaluateFlags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}

	a, err := getApp()
	if err != nil {
		return err
	}

	evidence, err := readEvidence(evaluateFlags.evidence, evaluateFlags.evidenceFile)
	if err != nil {
		return err
	}

	p := parser.NewParser().
		WithMaxSize(a.config.Requirements.MaxFileSize).
		WithSchemaValidation(evaluateFlags.schema || a.config.Requirements.SchemaValidation).
		WithQuarantine(true)
	rule, err := p.ParseFile(evaluateFlags.rule)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	ctx, span := a.tracer.Start(cmdContext(cmd), "rule.evaluate")
	defer span.End()

	nodes := rule.Node.Size()
	begin := time.Now()
	result := a.evaluator().Run(rule.Node, evidence)
	duration := time.Since(begin)

	kind := string(result.Kind())
	outcome := string(result.Outcome())
	tracing.SetRuleAttributes(span, kind, nodes, outcome)
	a.collector.RecordEvaluation(kind, outcome, nodes, duration)
	a.logger.DebugContext(ctx, "Rule evaluated",
		"rule", rule.Source,
		"version", rule.Version,
		"evidence", len(evidence),
		"outcome", outcome,
		"duration", duration,
	)

	w := outWriter(cmd)
	if format == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(w, result)
	}
	return writeResultTree(w, result)
}

// readEvidence collects canonical course codes from the inline flag and the
// evidence file. A token without a canonical code is an error.
func readEvidence(inline, path string) (engine.EvidenceSet, error) {
	evidence := engine.NewEvidenceSet()

	tokens := strings.FieldsFunc(inline, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	for _, token := range tokens {
		code, ok := ast.ExtractCanonicalCourseCode(token)
		if !ok {
			return nil, cli.NewConfigError("evidence", fmt.Sprintf("no course code in %q", token))
		}
		evidence.Add(code)
	}

	if path == "" {
		return evidence, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, cli.NewConfigError("evidence-file", err.Error())
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		code, ok := ast.ExtractCanonicalCourseCode(text)
		if !ok {
			return nil, cli.NewConfigError("evidence-file", fmt.Sprintf("line %d: no course code in %q", line, text))
		}
		evidence.Add(code)
	}
	if err := scanner.Err(); err != nil {
		return nil, cli.NewConfigError("evidence-file", err.Error())
	}
	return evidence, nil
}

// writeResultTree prints the result tree one node per line, indented by
// depth, followed by the root's explanation.
func writeResultTree(w io.Writer, result *engine.FinalizedNode) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	result.Walk(func(node *engine.FinalizedNode, path ast.Path) bool {
		printf("%s%s\n", strings.Repeat("  ", len(path)), describeNode(node))
		return true
	})

	printf("\nOutcome: %s\n", result.Outcome())
	printf("Explanation: %s\n", joinCodes(result.ExplanationCodes))
	if len(result.MissingCourses) > 0 {
		printf("Missing courses: %s\n", strings.Join(result.MissingCourses, ", "))
	}
	return err
}

func describeNode(node *engine.FinalizedNode) string {
	switch kind := node.Kind(); {
	case kind == ast.KindUnsupported:
		reason := ""
		if node.Node != nil {
			reason = node.Node.Reason
		}
		return fmt.Sprintf("UNSUPPORTED ? (%s)", reason)
	case kind == ast.KindCourseSet:
		return fmt.Sprintf("%s %s", strings.Join(node.Node.Courses, ","), mark(node))
	default:
		return fmt.Sprintf("%s %d/%d %s", kind, node.SatisfiedCount, node.Required, mark(node))
	}
}

func mark(node *engine.FinalizedNode) string {
	switch node.Outcome() {
	case engine.OutcomeSatisfied:
		return "✓"
	case engine.OutcomeFailed:
		return "✗"
	default:
		return "?"
	}
}

func joinCodes(codes []engine.ExplanationCode) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
