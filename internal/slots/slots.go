// Package slots resolves the variables an intent needs before its gated
// responses can render.
package slots

import (
	"strings"
	"unicode"

	"lgexport/internal/graph"
	"lgexport/internal/project"
)

// Requirement is a variable that must be set, keyed by its template name.
type Requirement struct {
	Variable string
	Prompt   string
}

// Gap is a slot skipped because its variable does not exist.
type Gap struct {
	IntentID   string
	VariableID string
}

// Map holds the requirements of every intent in the project. Intents without
// slots map to an empty, non-nil slice.
type Map map[string][]Requirement

// Resolve builds the requirement map in authored slot order.
func Resolve(p *project.Project, ix *graph.Index) (Map, []Gap) {
	m := make(Map, len(p.Intents))
	var gaps []Gap
	for _, intent := range p.Intents {
		reqs := make([]Requirement, 0, len(intent.Slots))
		for _, s := range intent.Slots {
			v, ok := ix.Variable(s.VariableID)
			if !ok {
				gaps = append(gaps, Gap{IntentID: intent.ID, VariableID: s.VariableID})
				continue
			}
			reqs = append(reqs, Requirement{Variable: TemplateName(v.Name), Prompt: s.Prompt})
		}
		if _, dup := m[intent.ID]; dup {
			continue
		}
		m[intent.ID] = reqs
	}
	return m, gaps
}

// Union merges the requirements of intentIDs in first-seen order. A variable
// required by more than one intent keeps the prompt of the first.
func (m Map) Union(intentIDs []string) []Requirement {
	var out []Requirement
	seen := make(map[string]struct{})
	for _, id := range intentIDs {
		for _, r := range m[id] {
			if _, dup := seen[r.Variable]; dup {
				continue
			}
			seen[r.Variable] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// TemplateName strips whitespace so the name is usable inside @{...}.
func TemplateName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}
