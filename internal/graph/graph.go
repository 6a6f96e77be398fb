package graph

import (
	"lgexport/internal/project"
)

// Edge is a transition flattened out of its source message.
type Edge struct {
	From     string
	To       string
	IntentID string
}

// Index is a read-only lookup view over a project snapshot.
type Index struct {
	messages  map[string]*project.Message
	variables map[string]*project.Variable
	intents   map[string]*project.Intent
	edges     []Edge
	order     []string
}

// New indexes the project. When ids repeat the first occurrence wins;
// project.Validate rejects duplicate message ids before compilation.
func New(p *project.Project) *Index {
	ix := &Index{
		messages:  make(map[string]*project.Message, len(p.Graph.Messages)),
		variables: make(map[string]*project.Variable, len(p.Variables)),
		intents:   make(map[string]*project.Intent, len(p.Intents)),
	}
	for i := range p.Graph.Messages {
		m := &p.Graph.Messages[i]
		if _, ok := ix.messages[m.ID]; !ok {
			ix.messages[m.ID] = m
			ix.order = append(ix.order, m.ID)
		}
		for _, t := range m.Transitions {
			ix.edges = append(ix.edges, Edge{From: m.ID, To: t.Target, IntentID: t.IntentID})
		}
	}
	for i := range p.Variables {
		v := &p.Variables[i]
		if _, ok := ix.variables[v.ID]; !ok {
			ix.variables[v.ID] = v
		}
	}
	for i := range p.Intents {
		in := &p.Intents[i]
		if _, ok := ix.intents[in.ID]; !ok {
			ix.intents[in.ID] = in
		}
	}
	return ix
}

// Message resolves a message by id.
func (ix *Index) Message(id string) (*project.Message, bool) {
	m, ok := ix.messages[id]
	return m, ok
}

// Variable resolves a variable by id.
func (ix *Index) Variable(id string) (*project.Variable, bool) {
	v, ok := ix.variables[id]
	return v, ok
}

// Intent resolves an intent by id.
func (ix *Index) Intent(id string) (*project.Intent, bool) {
	in, ok := ix.intents[id]
	return in, ok
}

// Edges returns every transition in graph order.
func (ix *Index) Edges() []Edge {
	out := make([]Edge, len(ix.edges))
	copy(out, ix.edges)
	return out
}

// DanglingEdges returns transitions whose target message does not exist.
func (ix *Index) DanglingEdges() []Edge {
	var out []Edge
	for _, e := range ix.edges {
		if _, ok := ix.messages[e.To]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// UnknownIntentEdges returns conditional transitions whose intent does not exist.
func (ix *Index) UnknownIntentEdges() []Edge {
	var out []Edge
	for _, e := range ix.edges {
		if e.IntentID == "" {
			continue
		}
		if _, ok := ix.intents[e.IntentID]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// Unreachable returns, in graph order, the messages no path from roots
// reaches. Roots that do not exist are ignored. An empty roots slice
// yields nil since there is nothing to measure from.
func (ix *Index) Unreachable(roots []string) []string {
	if len(roots) == 0 {
		return nil
	}
	adj := make(map[string][]string)
	for _, e := range ix.edges {
		adj[e.From] = append(adj[e.From], e.To)
	}

	visited := make(map[string]bool, len(ix.messages))
	queue := make([]string, 0, len(roots))
	for _, id := range roots {
		if _, ok := ix.messages[id]; ok && !visited[id] {
			visited[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	var out []string
	for _, e := range ix.order {
		if !visited[e] {
			out = append(out, e)
		}
	}
	return out
}
