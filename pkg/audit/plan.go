package audit

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadPlan reads a plan from a YAML or JSON file. Status defaults to VALID
// and completion to BLANK; both are case-insensitive.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes and normalizes a plan.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if plan.ID == "" {
		return nil, fmt.Errorf("parse plan: missing required field 'id'")
	}

	for i := range plan.Items {
		item := &plan.Items[i]
		item.Status = ItemStatus(strings.ToUpper(strings.TrimSpace(string(item.Status))))
		if item.Status == "" {
			item.Status = ItemValid
		}
		item.Completion = Completion(strings.ToUpper(strings.TrimSpace(string(item.Completion))))
		if item.Completion == "" {
			item.Completion = CompletionBlank
		}

		switch item.Status {
		case ItemValid, ItemInvalid, ItemDraft:
		default:
			return nil, fmt.Errorf("parse plan: item %d: unknown status %q", i, item.Status)
		}
		switch item.Completion {
		case CompletionYes, CompletionInProgress, CompletionNo, CompletionBlank:
		default:
			return nil, fmt.Errorf("parse plan: item %d: unknown completion %q", i, item.Completion)
		}
		if item.Credits < 0 {
			return nil, fmt.Errorf("parse plan: item %d: credits must be >= 0", i)
		}
	}
	return &plan, nil
}
