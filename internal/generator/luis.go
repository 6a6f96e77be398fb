package generator

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// LuisApp is the LUIS application import format, schema 3.2.0.
type LuisApp struct {
	SchemaVersion      string            `json:"luis_schema_version"`
	VersionID          string            `json:"versionId"`
	Name               string            `json:"name"`
	Desc               string            `json:"desc"`
	Culture            string            `json:"culture"`
	TokenizerVersion   string            `json:"tokenizerVersion"`
	Intents            []LuisIntent      `json:"intents"`
	Entities           []LuisEntity      `json:"entities"`
	Composites         []json.RawMessage `json:"composites"`
	ClosedLists        []json.RawMessage `json:"closedLists"`
	PatternAnyEntities []json.RawMessage `json:"patternAnyEntities"`
	RegexEntities      []json.RawMessage `json:"regex_entities"`
	PrebuiltEntities   []json.RawMessage `json:"prebuiltEntities"`
	ModelFeatures      []json.RawMessage `json:"model_features"`
	RegexFeatures      []json.RawMessage `json:"regex_features"`
	Patterns           []json.RawMessage `json:"patterns"`
	Utterances         []LuisUtterance   `json:"utterances"`
	Settings           []LuisSetting     `json:"settings"`
}

type LuisIntent struct {
	Name string `json:"name"`
}

type LuisEntity struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

type LuisUtterance struct {
	Text     string      `json:"text"`
	Intent   string      `json:"intent"`
	Entities []LuisLabel `json:"entities"`
}

// LuisLabel marks an entity inside an utterance. Positions are inclusive
// character offsets.
type LuisLabel struct {
	Entity   string `json:"entity"`
	StartPos int    `json:"startPos"`
	EndPos   int    `json:"endPos"`
}

type LuisSetting struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// BuildLuisApp assembles the import document. Utterance spans become entity
// labels only when the spanned variable shares its name with a declared entity.
func (c *Compiler) BuildLuisApp() LuisApp {
	app := LuisApp{
		SchemaVersion:      "3.2.0",
		VersionID:          "0.2",
		Name:               "project-" + c.opts.NewID(),
		Culture:            c.opts.Culture,
		TokenizerVersion:   "1.0.0",
		Intents:            []LuisIntent{},
		Entities:           []LuisEntity{},
		Composites:         []json.RawMessage{},
		ClosedLists:        []json.RawMessage{},
		PatternAnyEntities: []json.RawMessage{},
		RegexEntities:      []json.RawMessage{},
		PrebuiltEntities:   []json.RawMessage{},
		ModelFeatures:      []json.RawMessage{},
		RegexFeatures:      []json.RawMessage{},
		Patterns:           []json.RawMessage{},
		Utterances:         []LuisUtterance{},
		Settings: []LuisSetting{
			{Name: "NormalizeDiacritics", Value: "false"},
			{Name: "NormalizePunctuation", Value: "false"},
		},
	}

	entities := make(map[string]string, len(c.project.Entities))
	for _, e := range c.project.Entities {
		app.Entities = append(app.Entities, LuisEntity{Name: e.Name, Roles: []string{}})
		entities[strings.ToLower(e.Name)] = e.Name
	}

	for _, intent := range c.project.Intents {
		app.Intents = append(app.Intents, LuisIntent{Name: intent.Name})
		for _, u := range intent.Utterances {
			lu := LuisUtterance{Text: u.Text, Intent: intent.Name, Entities: []LuisLabel{}}
			n := utf8.RuneCountInString(u.Text)
			for _, s := range u.Spans {
				if s.Length <= 0 || s.Start < 0 || s.Start > n || s.Length > n-s.Start {
					continue
				}
				v, ok := c.index.Variable(s.VariableID)
				if !ok {
					continue
				}
				name, ok := entities[strings.ToLower(v.Name)]
				if !ok {
					continue
				}
				lu.Entities = append(lu.Entities, LuisLabel{Entity: name, StartPos: s.Start, EndPos: s.Start + s.Length - 1})
			}
			app.Utterances = append(app.Utterances, lu)
		}
	}
	return app
}

// LuisApp renders BuildLuisApp as an indented JSON document.
func (c *Compiler) LuisApp() (Document, error) {
	data, err := json.MarshalIndent(c.BuildLuisApp(), "", "  ")
	if err != nil {
		return Document{}, fmt.Errorf("failed to encode luis app: %w", err)
	}
	return Document{Name: Filename(c.project.Name, LuisExt), Content: string(data) + "\n"}, nil
}
