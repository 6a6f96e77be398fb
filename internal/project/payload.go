package project

import (
	"bytes"
	"encoding/json"
	"strings"
)

type MessageType string

const (
	TypeText         MessageType = "text"
	TypeButton       MessageType = "button"
	TypeQuickReplies MessageType = "quick_replies"
	TypeImage        MessageType = "image"
	TypeGeneric      MessageType = "generic"
	TypeJump         MessageType = "jump"
)

// Payload is the type-specific content of a message. The set of variants is
// closed: TextPayload, ButtonsPayload, QuickRepliesPayload, ImagePayload,
// GenericPayload, JumpPayload and OtherPayload.
type Payload interface {
	Type() MessageType
	Common() Base
	isPayload()
}

// Base carries what every payload variant shares.
type Base struct {
	// Raw is the payload exactly as it appeared in the snapshot.
	Raw json.RawMessage
	// Missing lists expected fields that were absent or had the wrong shape.
	Missing []string
}

func (b Base) Common() Base { return b }
func (Base) isPayload()     {}

type TextPayload struct {
	Base
	Text    string
	HasText bool
}

func (TextPayload) Type() MessageType { return TypeText }

type ButtonsPayload struct {
	Base
	Text    string
	HasText bool
	Buttons json.RawMessage
}

func (ButtonsPayload) Type() MessageType { return TypeButton }

type QuickRepliesPayload struct {
	Base
	Text    string
	HasText bool
	Replies json.RawMessage
}

func (QuickRepliesPayload) Type() MessageType { return TypeQuickReplies }

type ImagePayload struct {
	Base
	URL string
}

func (ImagePayload) Type() MessageType { return TypeImage }

type GenericPayload struct {
	Base
}

func (GenericPayload) Type() MessageType { return TypeGeneric }

// JumpPayload points at another project or board. Target is the raw
// selectedResult.value literal.
type JumpPayload struct {
	Base
	Target json.RawMessage
}

func (JumpPayload) Type() MessageType { return TypeJump }

// TargetLiteral returns the jump target as text: strings unquoted, anything
// else as compact JSON.
func (p JumpPayload) TargetLiteral() string {
	if len(p.Target) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(p.Target, &s); err == nil {
		return s
	}
	return compact(p.Target)
}

// OtherPayload is the fallback for message types without a dedicated variant.
type OtherPayload struct {
	Base
	Kind       MessageType
	Text       string
	HasText    bool
	Alternates []string
}

func (p OtherPayload) Type() MessageType { return p.Kind }

// decodePayload never fails: fields it cannot read are recorded in Missing.
func decodePayload(kind MessageType, raw json.RawMessage) (Payload, string) {
	base := Base{Raw: raw}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		fields = map[string]json.RawMessage{}
		base.Missing = append(base.Missing, "payload")
	}
	nodeName, _ := stringField(fields, "nodeName")

	text, hasText := stringField(fields, "text")
	switch kind {
	case TypeText:
		if !hasText {
			base.Missing = append(base.Missing, "text")
		}
		return TextPayload{Base: base, Text: text, HasText: hasText}, nodeName
	case TypeButton:
		buttons, ok := arrayField(fields, "buttons")
		if !ok {
			base.Missing = append(base.Missing, "buttons")
		}
		return ButtonsPayload{Base: base, Text: text, HasText: hasText, Buttons: buttons}, nodeName
	case TypeQuickReplies:
		replies, ok := arrayField(fields, "quick_replies")
		if !ok {
			base.Missing = append(base.Missing, "quick_replies")
		}
		return QuickRepliesPayload{Base: base, Text: text, HasText: hasText, Replies: replies}, nodeName
	case TypeImage:
		url, ok := stringField(fields, "image_url")
		if !ok {
			base.Missing = append(base.Missing, "image_url")
		}
		return ImagePayload{Base: base, URL: url}, nodeName
	case TypeGeneric:
		return GenericPayload{Base: base}, nodeName
	case TypeJump:
		var selected struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(fields["selectedResult"], &selected); err != nil || len(selected.Value) == 0 {
			base.Missing = append(base.Missing, "selectedResult.value")
		}
		return JumpPayload{Base: base, Target: selected.Value}, nodeName
	default:
		var alternates []string
		if rawAlts, ok := fields["alternate_replies"]; ok {
			var items []json.RawMessage
			if err := json.Unmarshal(rawAlts, &items); err != nil {
				base.Missing = append(base.Missing, "alternate_replies")
			}
			for _, item := range items {
				if alt, ok := alternateText(item); ok {
					alternates = append(alternates, alt)
				}
			}
		}
		return OtherPayload{
			Base:       base,
			Kind:       kind,
			Text:       text,
			HasText:    hasText,
			Alternates: alternates,
		}, nodeName
	}
}

// alternateText digs the reply text out of an alternate entry. Entries are
// either objects with a text field or strings that may themselves hold
// serialized JSON.
func alternateText(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "\"") {
			if inner, ok := alternateText(json.RawMessage(trimmed)); ok {
				return inner, true
			}
		}
		return s, s != ""
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	for _, key := range []string{"text", "body", "value"} {
		v, ok := obj[key]
		if !ok {
			continue
		}
		if text, ok := alternateText(v); ok {
			return text, true
		}
	}
	return "", false
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func arrayField(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok {
		return nil, false
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	return trimmed, true
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
