package requirements

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/div0rce/gradpath/pkg/dsl/ast"
	dslErrors "github.com/div0rce/gradpath/pkg/dsl/errors"
	"github.com/div0rce/gradpath/pkg/dsl/legacy"
	"github.com/div0rce/gradpath/pkg/dsl/parser"
	"github.com/div0rce/gradpath/pkg/dsl/validator"
)

// fileSet is the on-disk shape of a requirement set. JSON files decode
// through the same YAML decoder.
type fileSet struct {
	ID             string     `yaml:"id"`
	Name           string     `yaml:"name"`
	ProgramVersion string     `yaml:"program_version"`
	Status         string     `yaml:"status"`
	Requirements   []fileNode `yaml:"requirements"`
}

type fileNode struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
	Rule  any    `yaml:"rule"`
}

// decodeSet builds a Set from file contents. Rules are mapped and
// quarantined; their validation errors are kept as Problems. With schema
// validation on, a rule that fails parser.CheckCompat is quarantined whole.
func decodeSet(data []byte, path string, config *LoaderConfig) (*Set, error) {
	var fs fileSet
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, &LoadError{FilePath: path, Message: "invalid YAML/JSON", Cause: err}
	}

	if fs.ID == "" {
		return nil, &LoadError{FilePath: path, Message: "missing required field 'id'"}
	}

	status := Status(strings.ToUpper(fs.Status))
	if status == "" {
		status = StatusDraft
	}
	if !status.IsValid() {
		return nil, &LoadError{FilePath: path, Message: fmt.Sprintf("unknown status %q", fs.Status)}
	}

	set := &Set{
		ID:             fs.ID,
		Name:           fs.Name,
		ProgramVersion: fs.ProgramVersion,
		Status:         status,
		Source:         path,
		Nodes:          make([]*Node, 0, len(fs.Requirements)),
	}

	var opts []validator.Option
	if config.Strict {
		opts = append(opts, validator.WithRejectUnsupported())
	}
	v := validator.New(opts...)

	seen := make(map[string]bool, len(fs.Requirements))
	for i, fn := range fs.Requirements {
		if fn.ID == "" {
			return nil, &LoadError{FilePath: path, Message: fmt.Sprintf("requirement %d has no id", i)}
		}
		if seen[fn.ID] {
			return nil, &LoadError{FilePath: path, Message: fmt.Sprintf("duplicate requirement id %q", fn.ID)}
		}
		seen[fn.ID] = true

		raw, err := parser.Normalize(fn.Rule)
		if err != nil {
			return nil, &LoadError{FilePath: path, Message: fmt.Sprintf("requirement %q", fn.ID), Cause: err}
		}

		if config.SchemaValidation {
			if list, failed := checkSchema(raw); failed {
				for _, e := range list.Errors {
					set.Problems = append(set.Problems, Problem{NodeID: fn.ID, Err: e})
				}
				set.Nodes = append(set.Nodes, &Node{
					ID:    fn.ID,
					Title: fn.Title,
					Order: fn.Order,
					Rule:  ast.Unsupported(raw, "rule failed its ingest compatibility check"),
					Raw:   raw,
				})
				continue
			}
		}

		rule, errs := v.Quarantine(legacy.Map(raw))
		for _, e := range errs.Errors {
			set.Problems = append(set.Problems, Problem{NodeID: fn.ID, Err: e})
		}

		set.Nodes = append(set.Nodes, &Node{
			ID:    fn.ID,
			Title: fn.Title,
			Order: fn.Order,
			Rule:  rule,
			Raw:   raw,
		})
	}

	set.SortNodes()
	return set, nil
}

// checkSchema runs the ingest compatibility check on raw.
func checkSchema(raw any) (*dslErrors.ErrorList, bool) {
	err := parser.CheckCompat(raw)
	if err == nil {
		return nil, false
	}
	if list, ok := dslErrors.AsList(err); ok {
		return list, true
	}
	list := dslErrors.NewErrorList()
	list.AddError(dslErrors.ErrorTypeSchema, "", "", "", err.Error())
	return list, true
}

// WriteFile writes a set to path as YAML. Rules are written in their stored
// (Raw) shape.
func WriteFile(path string, set *Set) error {
	fs := fileSet{
		ID:             set.ID,
		Name:           set.Name,
		ProgramVersion: set.ProgramVersion,
		Status:         string(set.Status),
		Requirements:   make([]fileNode, 0, len(set.Nodes)),
	}
	for _, n := range set.Nodes {
		fs.Requirements = append(fs.Requirements, fileNode{ID: n.ID, Title: n.Title, Order: n.Order, Rule: yamlValue(n.Raw)})
	}

	data, err := yaml.Marshal(&fs)
	if err != nil {
		return fmt.Errorf("marshal requirement set %q: %w", set.ID, err)
	}

	// Write through a temp file so watchers never see a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gradpath-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// yamlValue converts json.Number values to plain numbers so they are written
// as YAML numbers.
func yamlValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = yamlValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = yamlValue(item)
		}
		return out
	default:
		return v
	}
}

// Rules returns the nodes as legacy.Rule values for migration.
func (s *Set) Rules() []legacy.Rule {
	out := make([]legacy.Rule, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		out = append(out, legacy.Rule{ID: n.ID, Raw: n.Raw})
	}
	return out
}

// ApplyMigration replaces the stored shape of migrated nodes and re-maps
// their rules.
func (s *Set) ApplyMigration(report *legacy.MigrationReport) {
	for _, m := range report.Rules {
		n, ok := s.Node(m.ID)
		if !ok {
			continue
		}
		raw, err := parser.Normalize(m.Rule)
		if err != nil {
			continue
		}
		n.Raw = raw
		n.Rule = legacy.Map(raw)
	}
}

// ProblemErrors returns the set's problems as a dsl ErrorList with paths
// prefixed by the requirement ID.
func (s *Set) ProblemErrors() *dslErrors.ErrorList {
	out := dslErrors.NewErrorList()
	for _, p := range s.Problems {
		e := *p.Err
		e.Path = p.NodeID + ":" + e.Path
		out.Add(&e)
	}
	return out
}
