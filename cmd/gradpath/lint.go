package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/div0rce/gradpath/pkg/cli"
	"github.com/div0rce/gradpath/pkg/requirements"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	schema bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate requirement-set files",
	Long: `Validate requirement-set files for syntax, structure and rule errors.

The lint command loads each file the way audits do and reports:
  - YAML/JSON syntax and missing set or requirement ids
  - Rule structure (empty children, forbidden fields)
  - Rule semantics (n > len(children), malformed course codes)
  - Wire-schema violations (--schema)
  - Unsupported legacy rules (--strict)

Examples:
  # Lint single file
  gradpath lint --file requirements/cs.yaml

  # Lint directory
  gradpath lint --dir requirements/

  # Strict mode (unsupported rules are errors)
  gradpath lint --dir requirements/ --strict

  # JSON output for CI/CD
  gradpath lint --dir requirements/ --format json`,
	RunE: lintRequirements,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "requirement-set file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of requirement-set files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "report unsupported rules as errors")
	lintCmd.Flags().BoolVar(&lintFlags.schema, "schema", false, "check rules against their wire schema")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the validation result for one requirement-set file.
type LintResult struct {
	File   string      `json:"file"`
	SetID  string      `json:"set_id,omitempty"`
	Valid  bool        `json:"valid"`
	Errors []LintError `json:"errors,omitempty"`
}

// LintError is one problem found in a file.
type LintError struct {
	Requirement string `json:"requirement,omitempty"`
	Path        string `json:"path,omitempty"`
	Field       string `json:"field,omitempty"`
	Constraint  string `json:"constraint,omitempty"`
	Message     string `json:"message"`
	Type        string `json:"type,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
}

func lintRequirements(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return cli.NewConfigError("file", "either --file or --dir must be specified")
	}
	format, err := cli.ParseFormat(lintFlags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}

	a, err := getApp()
	if err != nil {
		return err
	}
	loader := requirements.NewLoader(a.loaderConfig(lintFlags.strict, lintFlags.schema), a.logger)

	var results []LintResult

	if lintFlags.file != "" {
		set, err := loader.LoadFile(lintFlags.file)
		if err != nil {
			results = append(results, failedResult(lintFlags.file, err))
		} else {
			results = append(results, setResult(set))
		}
	}

	if lintFlags.dir != "" {
		sets, err := loader.LoadDir(lintFlags.dir)
		for _, set := range sets {
			results = append(results, setResult(set))
		}
		if err != nil {
			var list *requirements.ErrorList
			if errors.As(err, &list) {
				for _, e := range list.Errors {
					results = append(results, failedResult(lintFlags.dir, e))
				}
			} else {
				results = append(results, failedResult(lintFlags.dir, err))
			}
		}
	}

	if len(results) == 0 {
		return cli.NewCommandError("lint", fmt.Errorf("no requirement-set files found"))
	}

	w := outWriter(cmd)
	if format == cli.FormatJSON {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(w, results); err != nil {
			return err
		}
	} else if err := writeLintText(w, results); err != nil {
		return err
	}

	for _, r := range results {
		if !r.Valid {
			return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
		}
	}
	return nil
}

func setResult(set *requirements.Set) LintResult {
	result := LintResult{File: set.Source, SetID: set.ID, Valid: len(set.Problems) == 0}
	for _, p := range set.Problems {
		result.Errors = append(result.Errors, LintError{
			Requirement: p.NodeID,
			Path:        p.Err.Path,
			Field:       p.Err.Field,
			Constraint:  p.Err.Constraint,
			Message:     p.Err.Message,
			Type:        string(p.Err.Type),
			Suggestion:  p.Err.Suggestion,
		})
	}
	return result
}

// failedResult reports a file that could not be loaded at all. Load errors
// carry their own file path.
func failedResult(path string, err error) LintResult {
	var loadErr *requirements.LoadError
	if errors.As(err, &loadErr) && loadErr.FilePath != "" {
		path = loadErr.FilePath
	}
	return LintResult{
		File:   path,
		Valid:  false,
		Errors: []LintError{{Message: err.Error(), Type: "load"}},
	}
}

func writeLintText(w io.Writer, results []LintResult) error {
	totalErrors := 0

	for _, result := range results {
		fmt.Fprintf(w, "Validating %s...\n", result.File)

		if len(result.Errors) == 0 {
			fmt.Fprintf(w, "✓ Set %s is valid\n", result.SetID)
		}

		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ Error: %s", e.Message)
			if e.Requirement != "" {
				fmt.Fprintf(w, " (requirement %s", e.Requirement)
				if e.Path != "" {
					fmt.Fprintf(w, " at %s", e.Path)
				}
				fmt.Fprint(w, ")")
			}
			if e.Type != "" {
				fmt.Fprintf(w, " [%s]", e.Type)
			}
			fmt.Fprintln(w)
			if e.Suggestion != "" {
				fmt.Fprintf(w, "  suggestion: %s\n", e.Suggestion)
			}
			totalErrors++
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Summary:")
	_, err := fmt.Fprintf(w, "  %d file(s), %d error(s)\n", len(results), totalErrors)
	return err
}
