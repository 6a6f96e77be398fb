// Package segment groups the intents that lead into each message.
package segment

import (
	"lgexport/internal/graph"
)

// Map is an insertion-ordered mapping from target message id to the distinct
// intent ids whose transitions arrive there. Messages reached only by
// unconditional transitions are not keys.
type Map struct {
	keys    []string
	intents map[string][]string
}

// Build indexes every conditional transition by target, then deduplicates
// the intents collected per target. Keys and intents keep first-discovery order.
func Build(ix *graph.Index) *Map {
	// pass 1: target -> intent ids, duplicates included
	var order []string
	byTarget := make(map[string][]string)
	for _, e := range ix.Edges() {
		if e.IntentID == "" {
			continue
		}
		if _, ok := byTarget[e.To]; !ok {
			order = append(order, e.To)
		}
		byTarget[e.To] = append(byTarget[e.To], e.IntentID)
	}

	// pass 2: dedupe per target
	m := &Map{
		keys:    order,
		intents: make(map[string][]string, len(order)),
	}
	for _, target := range order {
		seen := make(map[string]struct{})
		ids := make([]string, 0, len(byTarget[target]))
		for _, id := range byTarget[target] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		m.intents[target] = ids
	}
	return m
}

// Keys returns the target message ids in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Intents returns the intent ids leading into messageID. The boolean is false
// when no conditional transition targets the message.
func (m *Map) Intents(messageID string) ([]string, bool) {
	ids, ok := m.intents[messageID]
	if !ok {
		return nil, false
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, true
}

func (m *Map) Len() int {
	return len(m.keys)
}

// Each visits entries in insertion order until fn returns false.
func (m *Map) Each(fn func(messageID string, intentIDs []string) bool) {
	for _, k := range m.keys {
		if !fn(k, m.intents[k]) {
			return
		}
	}
}
