package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `{
  "project": {"id": "p1", "name": "My Bot"},
  "intents": [
    {
      "id": "i-greet",
      "name": "greeting",
      "utterances": [
        {"text": "hi"},
        {"text": "my name is Ana", "variables": [{"variable_id": "v-name", "start_index": 11, "length": 3}]}
      ],
      "slots": [{"variable_id": "v-name", "prompt": "What's your name?"}]
    }
  ],
  "variables": [{"id": "v-name", "name": "name"}],
  "entities": [{"id": "e1", "name": "city", "data": [{"value": "Paris", "synonyms": ["paname"]}]}],
  "board": {
    "board": {
      "root_messages": ["start"],
      "messages": [
        {
          "message_id": "start",
          "message_type": "text",
          "payload": {"text": "welcome", "nodeName": "Start"},
          "next_message_ids": [
            {"message_id": "m1", "intent": {"value": "i-greet"}},
            {"message_id": "m2", "intent": ""},
            {"message_id": "m3", "intent": null},
            {"message_id": "m1", "intent": "i-bare"}
          ]
        },
        {"message_id": "m1", "message_type": "text", "payload": {"text": "hello %name%", "nodeName": "Hello"}},
        {"message_id": "m2", "message_type": "button", "payload": {"text": "pick", "buttons": [{"title": "a"}]}},
        {"message_id": "m3", "message_type": "jump", "payload": {"selectedResult": {"value": "board-2"}}}
      ]
    }
  }
}`

func TestDecode_BuildsProject(t *testing.T) {
	p, err := Decode([]byte(sampleSnapshot))
	require.NoError(t, err)

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "My Bot", p.Name)
	require.Len(t, p.Intents, 1)
	assert.Equal(t, "greeting", p.Intents[0].Name)
	require.Len(t, p.Intents[0].Utterances, 2)
	assert.Equal(t, []VariableSpan{{VariableID: "v-name", Start: 11, Length: 3}}, p.Intents[0].Utterances[1].Spans)
	assert.Equal(t, []Slot{{VariableID: "v-name", Prompt: "What's your name?"}}, p.Intents[0].Slots)
	require.Len(t, p.Entities, 1)
	assert.Equal(t, []string{"paname"}, p.Entities[0].Values[0].Synonyms)
	assert.Equal(t, []string{"start"}, p.Graph.RootMessages)
	require.Len(t, p.Graph.Messages, 4)

	start := p.Graph.Messages[0]
	assert.Equal(t, "Start", start.NodeName)
	assert.Equal(t, []Transition{
		{Target: "m1", IntentID: "i-greet"},
		{Target: "m2"},
		{Target: "m3"},
		{Target: "m1", IntentID: "i-bare"},
	}, start.Transitions)
	assert.True(t, start.Transitions[0].Conditional())
	assert.False(t, start.Transitions[1].Conditional())
}

func TestDecode_PayloadVariants(t *testing.T) {
	p, err := Decode([]byte(sampleSnapshot))
	require.NoError(t, err)

	text, ok := p.Graph.Messages[1].Payload.(TextPayload)
	require.True(t, ok)
	assert.Equal(t, "hello %name%", text.Text)
	assert.Empty(t, text.Common().Missing)

	buttons, ok := p.Graph.Messages[2].Payload.(ButtonsPayload)
	require.True(t, ok)
	assert.JSONEq(t, `[{"title": "a"}]`, string(buttons.Buttons))

	jump, ok := p.Graph.Messages[3].Payload.(JumpPayload)
	require.True(t, ok)
	assert.Equal(t, "board-2", jump.TargetLiteral())
}

func TestDecode_StructuralErrors(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"project":`,
		"missing project": `{"intents": []}`,
		"empty name":      `{"project": {"name": "  "}}`,
		"no messages":     `{"project": {"name": "x"}, "intents": [{"id": "i", "name": "n"}]}`,
		"duplicate ids": `{"project": {"name": "x"}, "board": {"board": {"messages": [
			{"message_id": "a", "message_type": "text", "payload": {}},
			{"message_id": "a", "message_type": "text", "payload": {}}]}}}`,
		"bad intent ref": `{"project": {"name": "x"}, "board": {"board": {"messages": [
			{"message_id": "a", "next_message_ids": [{"message_id": "a", "intent": 7}]}]}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrStructural)
		})
	}
}

func TestDecode_EmptyGraphWithoutIntentsIsAllowed(t *testing.T) {
	p, err := Decode([]byte(`{"project": {"name": "empty"}}`))
	require.NoError(t, err)
	assert.Empty(t, p.Graph.Messages)
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleSnapshot), 0644))

	p, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "My Bot", p.Name)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
