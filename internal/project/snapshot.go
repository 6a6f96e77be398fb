package project

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed snapshot.schema.json
var snapshotSchemaSource string

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *jsonschema.Schema
	snapshotSchemaErr  error
)

// Source delivers a fully materialized project snapshot.
type Source interface {
	Load(ctx context.Context) (*Project, error)
}

// FileSource reads a snapshot previously exported from the project service.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Decode(data)
}

// Decode parses, schema-checks and validates a snapshot document.
func Decode(data []byte) (*Project, error) {
	if err := validateAgainstSchema(data); err != nil {
		return nil, err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: failed to decode snapshot: %v", ErrStructural, err)
	}

	p := snap.toProject()
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func validateAgainstSchema(data []byte) error {
	snapshotSchemaOnce.Do(func() {
		snapshotSchema, snapshotSchemaErr = jsonschema.CompileString("snapshot.schema.json", snapshotSchemaSource)
	})
	if snapshotSchemaErr != nil {
		return fmt.Errorf("failed to compile snapshot schema: %w", snapshotSchemaErr)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: snapshot is not valid JSON: %v", ErrStructural, err)
	}
	if err := snapshotSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: snapshot schema validation failed: %v", ErrStructural, err)
	}
	return nil
}

type snapshot struct {
	Project struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"project"`
	Intents   []wireIntent   `json:"intents"`
	Variables []wireVariable `json:"variables"`
	Entities  []wireEntity   `json:"entities"`
	Board     struct {
		Board struct {
			RootMessages []string      `json:"root_messages"`
			Messages     []wireMessage `json:"messages"`
		} `json:"board"`
	} `json:"board"`
}

type wireIntent struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Utterances []wireUtterance `json:"utterances"`
	Slots      []wireSlot      `json:"slots"`
}

type wireUtterance struct {
	Text      string        `json:"text"`
	Variables []wireVarSpan `json:"variables"`
}

type wireVarSpan struct {
	VariableID string `json:"variable_id"`
	StartIndex int    `json:"start_index"`
	Length     int    `json:"length"`
}

type wireSlot struct {
	VariableID string `json:"variable_id"`
	Prompt     string `json:"prompt"`
}

type wireVariable struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Data []struct {
		Value    string   `json:"value"`
		Synonyms []string `json:"synonyms"`
	} `json:"data"`
}

type wireMessage struct {
	MessageID      string           `json:"message_id"`
	MessageType    string           `json:"message_type"`
	Payload        json.RawMessage  `json:"payload"`
	NextMessageIDs []wireTransition `json:"next_message_ids"`
}

type wireTransition struct {
	MessageID string    `json:"message_id"`
	Intent    intentRef `json:"intent"`
}

// intentRef accepts every shape the board export uses for a transition's
// intent: "", null, a bare id, or {"value": id}.
type intentRef string

func (r *intentRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = ""
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*r = intentRef(s)
		return nil
	case '{':
		var obj struct {
			Value *string `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		if obj.Value == nil {
			*r = ""
		} else {
			*r = intentRef(*obj.Value)
		}
		return nil
	default:
		return fmt.Errorf("unsupported intent reference %s", string(trimmed))
	}
}

func (s *snapshot) toProject() *Project {
	p := &Project{
		ID:   s.Project.ID,
		Name: s.Project.Name,
	}

	for _, wi := range s.Intents {
		intent := Intent{ID: wi.ID, Name: wi.Name}
		for _, wu := range wi.Utterances {
			u := Utterance{Text: wu.Text}
			for _, v := range wu.Variables {
				u.Spans = append(u.Spans, VariableSpan{
					VariableID: v.VariableID,
					Start:      v.StartIndex,
					Length:     v.Length,
				})
			}
			intent.Utterances = append(intent.Utterances, u)
		}
		for _, ws := range wi.Slots {
			intent.Slots = append(intent.Slots, Slot{VariableID: ws.VariableID, Prompt: ws.Prompt})
		}
		p.Intents = append(p.Intents, intent)
	}

	for _, wv := range s.Variables {
		p.Variables = append(p.Variables, Variable{ID: wv.ID, Name: wv.Name})
	}

	for _, we := range s.Entities {
		e := Entity{ID: we.ID, Name: we.Name}
		for _, d := range we.Data {
			e.Values = append(e.Values, EntityValue{Value: d.Value, Synonyms: d.Synonyms})
		}
		p.Entities = append(p.Entities, e)
	}

	p.Graph.RootMessages = s.Board.Board.RootMessages
	for _, wm := range s.Board.Board.Messages {
		kind := MessageType(wm.MessageType)
		payload, nodeName := decodePayload(kind, wm.Payload)
		m := Message{
			ID:       wm.MessageID,
			Type:     kind,
			NodeName: nodeName,
			Payload:  payload,
		}
		for _, t := range wm.NextMessageIDs {
			m.Transitions = append(m.Transitions, Transition{Target: t.MessageID, IntentID: string(t.Intent)})
		}
		p.Graph.Messages = append(p.Graph.Messages, m)
	}

	return p
}
