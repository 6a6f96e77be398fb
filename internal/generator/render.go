package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"lgexport/internal/project"
	"lgexport/internal/slots"
)

const (
	fence       = "```"
	indentation = "    "
)

// item is one "- " entry of a template body. Fenced items hold multi-line
// content between ``` markers; that content is never re-indented.
type item struct {
	text   string
	fenced bool
}

func line(text string) item {
	return item{text: text}
}

func fenced(parts ...string) item {
	return item{text: strings.Join(parts, "\n"), fenced: true}
}

func (it item) render(prefix string) string {
	if it.fenced {
		return prefix + "- " + fence + "\n" + it.text + "\n" + prefix + fence
	}
	lines := strings.Split(it.text, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = prefix + "- " + lines[i]
		} else {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func renderItems(items []item, prefix string) string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.render(prefix))
	}
	return strings.Join(out, "\n")
}

// variation renders the response body of a message by payload type.
func (c *Compiler) variation(m *project.Message) []item {
	switch p := m.Payload.(type) {
	case project.TextPayload:
		return []item{line(c.wrapText(p.Text))}
	case project.ButtonsPayload:
		return []item{fenced(c.leadText(p.HasText, p.Text, p.Raw), indentJSON(p.Buttons, "[]"))}
	case project.QuickRepliesPayload:
		return []item{fenced(c.leadText(p.HasText, p.Text, p.Raw), indentJSON(p.Replies, "[]"))}
	case project.ImagePayload:
		return []item{line(p.URL)}
	case project.GenericPayload:
		return []item{fenced(indentJSON(p.Raw, "{}"))}
	case project.JumpPayload:
		return []item{fenced(p.TargetLiteral())}
	case project.OtherPayload:
		var items []item
		if p.HasText {
			items = append(items, line(c.wrapText(p.Text)))
		} else {
			items = append(items, fenced(indentJSON(p.Raw, "{}")))
		}
		for _, alt := range p.Alternates {
			items = append(items, line(c.wrapText(alt)))
		}
		return items
	default:
		return []item{line("")}
	}
}

// leadText is the wrapped text of an option message, or the whole payload
// when the message has no text.
func (c *Compiler) leadText(hasText bool, text string, raw json.RawMessage) string {
	if hasText {
		return c.wrapText(text)
	}
	return indentJSON(raw, "{}")
}

// conditional gates body behind the required variables: the first missing
// variable is asked for, and body renders only once all are set.
func (c *Compiler) conditional(reqs []slots.Requirement, body []item) string {
	if len(reqs) == 0 {
		return renderItems(body, "")
	}
	var b strings.Builder
	for i, r := range reqs {
		keyword := "IF"
		if i > 0 {
			keyword = "ELSEIF"
		}
		fmt.Fprintf(&b, "- %s: @{!%s}\n", keyword, r.Variable)
		b.WriteString(line(c.wrapText(r.Prompt)).render(indentation))
		b.WriteString("\n")
	}
	b.WriteString("- ELSE:\n")
	b.WriteString(renderItems(body, indentation))
	return b.String()
}

// indentJSON pretty-prints raw with two-space indentation. Empty input
// renders as fallback; input that is not JSON is returned verbatim.
func indentJSON(raw json.RawMessage, fallback string) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fallback
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
