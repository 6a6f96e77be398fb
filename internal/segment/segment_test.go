package segment

import (
	"testing"

	"lgexport/internal/graph"
	"lgexport/internal/project"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id string, transitions ...project.Transition) project.Message {
	return project.Message{ID: id, Type: project.TypeText, Transitions: transitions}
}

func to(target, intentID string) project.Transition {
	return project.Transition{Target: target, IntentID: intentID}
}

func build(messages ...project.Message) *Map {
	return Build(graph.New(&project.Project{Name: "bot", Graph: project.Graph{Messages: messages}}))
}

func TestBuild_FanInAcrossSources(t *testing.T) {
	m := build(
		msg("a", to("target", "i-a")),
		msg("b", to("target", "i-b"), to("other", "i-a")),
		msg("target"),
		msg("other"),
	)

	assert.Equal(t, []string{"target", "other"}, m.Keys())

	ids, ok := m.Intents("target")
	require.True(t, ok)
	assert.Equal(t, []string{"i-a", "i-b"}, ids)

	ids, ok = m.Intents("other")
	require.True(t, ok)
	assert.Equal(t, []string{"i-a"}, ids)
}

func TestBuild_DeduplicatesRegardlessOfOrder(t *testing.T) {
	m := build(
		msg("a", to("t", "i-b"), to("t", "i-a")),
		msg("b", to("t", "i-a"), to("t", "i-b")),
		msg("t"),
	)
	ids, ok := m.Intents("t")
	require.True(t, ok)
	assert.Equal(t, []string{"i-b", "i-a"}, ids)
}

func TestBuild_UnconditionalTargetsAreAbsent(t *testing.T) {
	m := build(
		msg("start", to("plain", ""), to("gated", "i1")),
		msg("plain", to("gated", "")),
		msg("gated"),
	)

	_, ok := m.Intents("plain")
	assert.False(t, ok)
	_, ok = m.Intents("start")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestBuild_SelfLoopAndDanglingTargets(t *testing.T) {
	m := build(
		msg("loop", to("loop", "again"), to("nowhere", "i1")),
	)
	assert.Equal(t, []string{"loop", "nowhere"}, m.Keys())

	ids, _ := m.Intents("loop")
	assert.Equal(t, []string{"again"}, ids)
}

func TestBuild_MembershipMatchesConditionalTargets(t *testing.T) {
	messages := []project.Message{
		msg("a", to("b", "x"), to("c", ""), to("d", "y")),
		msg("b", to("a", ""), to("d", "x")),
		msg("c", to("c", "z")),
		msg("d"),
	}
	m := build(messages...)

	want := map[string]bool{}
	for _, mm := range messages {
		for _, tr := range mm.Transitions {
			if tr.Conditional() {
				want[tr.Target] = true
			}
		}
	}
	got := map[string]bool{}
	for _, k := range m.Keys() {
		got[k] = true
	}
	assert.Equal(t, want, got)
}

func TestMap_ReturnsCopies(t *testing.T) {
	m := build(msg("a", to("b", "x")), msg("b"))
	ids, _ := m.Intents("b")
	ids[0] = "mutated"
	again, _ := m.Intents("b")
	assert.Equal(t, []string{"x"}, again)

	var visited []string
	m.Each(func(id string, _ []string) bool {
		visited = append(visited, id)
		return true
	})
	assert.Equal(t, []string{"b"}, visited)
}
