// Package requirements loads degree requirement sets from YAML or JSON files
// and keeps them in a hot-reloadable registry.
//
// A requirement-set file looks like:
//
//	id: cs-bs-2024
//	name: Computer Science BS
//	program_version: "2024"
//	status: APPROVED
//	requirements:
//	  - id: intro
//	    title: Introductory sequence
//	    order: 1
//	    rule:
//	      type: ALL_OF
//	      children: ["01:198:111", "01:198:112"]
//	  - id: math
//	    order: 2
//	    rule:
//	      any: ["01:640:151", "01:640:135"]
//
// Rules may use legacy shorthand. Each rule is mapped and quarantined on
// load: invalid nodes become unsupported and are reported as Problems
// instead of failing the whole set.
//
// Registry.Reload swaps all sets at once, and Watcher calls it when files
// change.
package requirements
