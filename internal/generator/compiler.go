package generator

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"lgexport/internal/graph"
	"lgexport/internal/project"
	"lgexport/internal/segment"
	"lgexport/internal/slots"
	"lgexport/internal/spans"

	"github.com/google/uuid"
)

const (
	CorpusExt    = "lu"
	TemplatesExt = "lg"
	LuisExt      = "json"

	DefaultDelimiter     = '{'
	DefaultMinUtterances = 10
	DefaultCulture       = "en-us"
)

// Document is one generated output file.
type Document struct {
	Name    string
	Content string
}

type Options struct {
	// Delimiter opens a wrapped entity span. Defaults to '{'.
	Delimiter rune
	// MinUtterances below which the project gets a few_utterances warning.
	// Zero or negative disables the check.
	MinUtterances int
	// Luis adds the LUIS application import document to the output.
	Luis    bool
	Culture string
	Now     func() time.Time
	NewID   func() string
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = DefaultDelimiter
	}
	if o.Culture == "" {
		o.Culture = DefaultCulture
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Output is everything a successful compilation produces.
type Output struct {
	Corpus    Document
	Templates Document
	Luis      *Document
	Report    *Report
}

// Documents lists the files to write.
func (o *Output) Documents() []Document {
	docs := []Document{o.Corpus, o.Templates}
	if o.Luis != nil {
		docs = append(docs, *o.Luis)
	}
	return docs
}

// Compiler renders documents from a project and its derived views. None of
// its inputs are modified.
type Compiler struct {
	project     *project.Project
	index       *graph.Index
	segments    *segment.Map
	slots       slots.Map
	opts        Options
	report      *Report
	generatedAt time.Time
}

// New composes a compiler. Signals and counters land in report; a nil
// report gets a fresh one.
func New(p *project.Project, ix *graph.Index, seg *segment.Map, sm slots.Map, report *Report, opts Options) *Compiler {
	opts = opts.withDefaults()
	if report == nil {
		report = NewReport(p.Name)
	}
	return &Compiler{
		project:     p,
		index:       ix,
		segments:    seg,
		slots:       sm,
		opts:        opts,
		report:      report,
		generatedAt: opts.Now(),
	}
}

// Compile validates p, derives the segmentation and slot maps and renders
// every document. Errors are structural; data-quality gaps end up in the
// report instead.
func Compile(p *project.Project, opts Options) (*Output, error) {
	if err := project.Validate(p); err != nil {
		return nil, err
	}

	ix := graph.New(p)

	report := NewReport(p.Name)
	h := report.BeginStage("segment")
	seg := segment.Build(ix)
	for _, e := range ix.DanglingEdges() {
		report.Warn(SignalDanglingTransition, "segment", e.From,
			fmt.Sprintf("transition from %s targets unknown message %s", e.From, e.To))
	}
	for _, e := range ix.UnknownIntentEdges() {
		report.Warn(SignalUnknownIntent, "segment", e.From,
			fmt.Sprintf("transition from %s to %s uses unknown intent %s", e.From, e.To, e.IntentID))
	}
	for _, id := range ix.Unreachable(p.Graph.RootMessages) {
		report.AddSignal(SignalUnreachable, "segment", SeverityInfo, id,
			fmt.Sprintf("message %s cannot be reached from any root message", id))
	}
	report.EndStage(h, map[string]float64{"targets": float64(seg.Len())}, nil)

	h = report.BeginStage("slots")
	sm, gaps := slots.Resolve(p, ix)
	for _, g := range gaps {
		report.Warn(SignalUnresolvedSlot, "slots", g.IntentID,
			fmt.Sprintf("slot of intent %s references unknown variable %s", g.IntentID, g.VariableID))
	}
	report.EndStage(h, map[string]float64{"intents": float64(len(sm)), "skipped": float64(len(gaps))}, nil)

	c := New(p, ix, seg, sm, report, opts)

	out := &Output{Report: report}

	h = report.BeginStage("corpus")
	out.Corpus = c.Corpus()
	report.EndStage(h, map[string]float64{"utterances": float64(report.Summary.Utterances)}, nil)

	h = report.BeginStage("templates")
	out.Templates = c.Templates()
	report.EndStage(h, map[string]float64{
		"templates": float64(report.Summary.Templates),
		"skipped":   float64(report.Summary.SkippedTemplates),
	}, nil)

	if c.opts.Luis {
		h = report.BeginStage("luis")
		doc, err := c.LuisApp()
		report.EndStage(h, nil, err)
		if err != nil {
			return nil, err
		}
		out.Luis = &doc
	}

	report.Finalize()
	return out, nil
}

// Corpus renders the training corpus: one block per intent, one line per
// utterance.
func (c *Compiler) Corpus() Document {
	var b strings.Builder
	b.WriteString(Banner(c.generatedAt))
	b.WriteString("\n")

	total := 0
	for _, intent := range c.project.Intents {
		fmt.Fprintf(&b, "# %s\n", intent.Name)
		for _, u := range intent.Utterances {
			b.WriteString(line(c.wrapUtterance(u)).render(""))
			b.WriteString("\n")
		}
		total += len(intent.Utterances)
	}

	c.report.Summary.Intents = len(c.project.Intents)
	c.report.Summary.Utterances = total
	if c.opts.MinUtterances > 0 && total < c.opts.MinUtterances {
		c.report.Warn(SignalFewUtterances, "corpus", c.project.Name,
			fmt.Sprintf("project has %d utterances, fewer than %d", total, c.opts.MinUtterances))
	}

	return Document{Name: Filename(c.project.Name, CorpusExt), Content: b.String()}
}

// Templates renders one response template per segmentation entry. Entries
// whose message cannot be resolved are skipped and reported.
func (c *Compiler) Templates() Document {
	var b strings.Builder
	b.WriteString(Banner(c.generatedAt))
	b.WriteString("\n")

	rendered, skipped := 0, 0
	c.segments.Each(func(messageID string, intentIDs []string) bool {
		m, ok := c.index.Message(messageID)
		if !ok {
			skipped++
			c.report.Warn(SignalUnresolvedMessage, "templates", messageID,
				fmt.Sprintf("message %s is targeted by intents %s but does not exist", messageID, strings.Join(intentIDs, ", ")))
			return true
		}
		if m.Payload != nil {
			if missing := m.Payload.Common().Missing; len(missing) > 0 {
				c.report.Warn(SignalMalformedPayload, "templates", messageID,
					fmt.Sprintf("%s message %s is missing %s", m.Type, messageID, strings.Join(missing, ", ")))
			}
		}

		body := c.conditional(c.slots.Union(intentIDs), c.variation(m))
		fmt.Fprintf(&b, "> %s\n# %s\n%s\n", m.NodeName, m.ID, body)
		rendered++
		return true
	})

	c.report.Summary.Templates = rendered
	c.report.Summary.SkippedTemplates = skipped

	return Document{Name: Filename(c.project.Name, TemplatesExt), Content: b.String()}
}

func (c *Compiler) wrapText(text string) string {
	return spans.WrapMarkers(text, c.opts.Delimiter)
}

// wrapUtterance uses the authored spans when present and falls back to
// %name% markers in the text otherwise.
func (c *Compiler) wrapUtterance(u project.Utterance) string {
	if len(u.Spans) == 0 {
		return c.wrapText(u.Text)
	}
	ss := make([]spans.Span, 0, len(u.Spans))
	for _, s := range u.Spans {
		ss = append(ss, spans.Span{Start: s.Start, Length: s.Length})
	}
	return spans.Wrap(u.Text, ss, c.opts.Delimiter)
}

// Banner heads every generated document.
func Banner(t time.Time) string {
	return "> generated " + t.Format("2006-01-02 15:04:05")
}

// BaseName folds a project name into a file stem: whitespace removed,
// lower case.
func BaseName(projectName string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, projectName))
}

func Filename(projectName, ext string) string {
	return BaseName(projectName) + "." + ext
}
