package legacy

// Rule is a stored requirement rule to be migrated.
type Rule struct {
	ID  string
	Raw any
}

// MigratedRule is a rule whose legacy shape was converted to v2.
type MigratedRule struct {
	ID   string `json:"id"`
	Rule any    `json:"rule"`
}

// MigrationReport summarizes a legacy-to-v2 migration run. JSON field order
// is alphabetical so printed reports are stable.
type MigrationReport struct {
	AlreadyV2   int            `json:"already_v2"`
	Apply       bool           `json:"apply"`
	Converted   int            `json:"converted"`
	Scanned     int            `json:"scanned"`
	Unsupported int            `json:"unsupported"`
	Rules       []MigratedRule `json:"-"`
}

// Migrate converts legacy rules to the v2 wire shape.
//
// Rules already in v2 are counted and left alone. A legacy rule whose mapped
// tree still contains an unsupported node is counted as unsupported and left
// alone; it keeps evaluating as unsupported. Every other legacy rule is
// converted. When apply is true the converted rules are returned in input
// order so the caller can persist them.
func Migrate(rules []Rule, apply bool) *MigrationReport {
	report := &MigrationReport{Apply: apply}

	for _, rule := range rules {
		report.Scanned++

		if SchemaVersion(rule.Raw) == 2 {
			report.AlreadyV2++
			continue
		}

		mapped := Map(rule.Raw)
		if mapped.HasUnsupported() {
			report.Unsupported++
			continue
		}

		report.Converted++
		if apply {
			report.Rules = append(report.Rules, MigratedRule{ID: rule.ID, Rule: mapped.Wire()})
		}
	}

	return report
}
