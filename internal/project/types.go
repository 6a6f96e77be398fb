package project

// Project is the snapshot a single compilation run consumes.
// It is read-only once decoded.
type Project struct {
	ID        string
	Name      string
	Intents   []Intent
	Variables []Variable
	Entities  []Entity
	Graph     Graph
}

// Graph is the authored conversation: messages and the transitions between them.
type Graph struct {
	RootMessages []string
	Messages     []Message
}

// Message is a bot message node.
type Message struct {
	ID          string
	Type        MessageType
	NodeName    string
	Payload     Payload
	Transitions []Transition
}

// Transition is a directed edge to another message. An empty IntentID means
// the transition is unconditional.
type Transition struct {
	Target   string
	IntentID string
}

// Conditional reports whether the transition is gated by an intent.
func (t Transition) Conditional() bool {
	return t.IntentID != ""
}

type Intent struct {
	ID         string
	Name       string
	Utterances []Utterance
	Slots      []Slot
}

type Utterance struct {
	Text  string
	Spans []VariableSpan
}

// VariableSpan marks a variable occurrence in utterance text.
// Start and Length count characters (runes), not bytes.
type VariableSpan struct {
	VariableID string
	Start      int
	Length     int
}

type Variable struct {
	ID   string
	Name string
}

// Slot is a variable an intent needs before its gated responses can render.
type Slot struct {
	VariableID string
	Prompt     string
}

type Entity struct {
	ID     string
	Name   string
	Values []EntityValue
}

type EntityValue struct {
	Value    string
	Synonyms []string
}
