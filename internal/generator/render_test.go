package generator

import (
	"encoding/json"
	"testing"

	"lgexport/internal/graph"
	"lgexport/internal/project"
	"lgexport/internal/segment"
	"lgexport/internal/slots"

	"github.com/stretchr/testify/assert"
)

func newTestCompiler() *Compiler {
	p := &project.Project{Name: "bot"}
	ix := graph.New(p)
	return New(p, ix, segment.Build(ix), slots.Map{}, nil, testOptions())
}

func TestVariation_PayloadDispatch(t *testing.T) {
	c := newTestCompiler()

	cases := []struct {
		name    string
		payload project.Payload
		want    string
	}{
		{
			name:    "text wraps markers",
			payload: project.TextPayload{Text: "hello %name%", HasText: true},
			want:    "- hello {name}",
		},
		{
			name:    "text missing",
			payload: project.TextPayload{},
			want:    "- ",
		},
		{
			name:    "buttons",
			payload: project.ButtonsPayload{Text: "pick %color%", HasText: true, Buttons: json.RawMessage(`[{"title":"Red"}]`)},
			want:    "- ```\npick {color}\n[\n  {\n    \"title\": \"Red\"\n  }\n]\n```",
		},
		{
			name:    "buttons without text dump the payload",
			payload: project.ButtonsPayload{Base: project.Base{Raw: json.RawMessage(`{"buttons":[]}`)}, Buttons: json.RawMessage(`[]`)},
			want:    "- ```\n{\n  \"buttons\": []\n}\n[]\n```",
		},
		{
			name:    "multi-line text",
			payload: project.TextPayload{Text: "one\ntwo", HasText: true},
			want:    "- one\ntwo",
		},
		{
			name:    "quick replies without options",
			payload: project.QuickRepliesPayload{Text: "choose", HasText: true},
			want:    "- ```\nchoose\n[]\n```",
		},
		{
			name:    "image is not wrapped",
			payload: project.ImagePayload{URL: "https://cdn.example.com/%a%.png"},
			want:    "- https://cdn.example.com/%a%.png",
		},
		{
			name:    "generic dumps the whole payload",
			payload: project.GenericPayload{Base: project.Base{Raw: json.RawMessage(`{"elements":[1]}`)}},
			want:    "- ```\n{\n  \"elements\": [\n    1\n  ]\n}\n```",
		},
		{
			name:    "jump",
			payload: project.JumpPayload{Target: json.RawMessage(`"board-2"`)},
			want:    "- ```\nboard-2\n```",
		},
		{
			name:    "other with alternates",
			payload: project.OtherPayload{Kind: "api", Text: "main", HasText: true, Alternates: []string{"alt %x%", "second"}},
			want:    "- main\n- alt {x}\n- second",
		},
		{
			name:    "other without text",
			payload: project.OtherPayload{Kind: "api", Base: project.Base{Raw: json.RawMessage(`{"a":1}`)}},
			want:    "- ```\n{\n  \"a\": 1\n}\n```",
		},
		{
			name: "nil payload",
			want: "- ",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &project.Message{ID: "m", Payload: tc.payload}
			assert.Equal(t, tc.want, renderItems(c.variation(m), ""))
		})
	}
}

func TestConditional(t *testing.T) {
	c := newTestCompiler()

	assert.Equal(t, "- body", c.conditional(nil, []item{line("body")}))

	got := c.conditional([]slots.Requirement{
		{Variable: "a", Prompt: "A?"},
		{Variable: "b", Prompt: "Tell me %b%"},
	}, []item{fenced("x", "y")})
	assert.Equal(t, "- IF: @{!a}\n"+
		"    - A?\n"+
		"- ELSEIF: @{!b}\n"+
		"    - Tell me {b}\n"+
		"- ELSE:\n"+
		"    - ```\n"+
		"x\n"+
		"y\n"+
		"    ```", got)
}

func TestIndentJSON(t *testing.T) {
	assert.Equal(t, "[]", indentJSON(nil, "[]"))
	assert.Equal(t, "{}", indentJSON(json.RawMessage(" null "), "{}"))
	assert.Equal(t, "not json", indentJSON(json.RawMessage("not json"), "{}"))
	assert.Equal(t, "\"<b>\"", indentJSON(json.RawMessage(`"<b>"`), ""))
}

func TestConditional_FenceMarkersInTextDoNotEscapeBranch(t *testing.T) {
	c := newTestCompiler()

	got := c.conditional([]slots.Requirement{{Variable: "a", Prompt: "A?"}}, []item{
		line("see ```"),
		line("```"),
		line("two\nlines"),
		fenced("```", "inside"),
	})
	assert.Equal(t, "- IF: @{!a}\n"+
		"    - A?\n"+
		"- ELSE:\n"+
		"    - see ```\n"+
		"    - ```\n"+
		"    - two\n"+
		"    lines\n"+
		"    - ```\n"+
		"```\n"+
		"inside\n"+
		"    ```", got)
}
