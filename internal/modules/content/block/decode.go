package block

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nadi-health/core/internal/pkg/apperr"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindBool
	kindStrings
)

type field struct {
	name     string
	kind     fieldKind
	optional bool
}

// fieldTable lists the legal fields of every block type. Parse and
// UpdateFields both consult it, so a key absent here is never settable.
var fieldTable = map[Type][]field{
	TypeLead:       {{name: "text"}},
	TypeText:       {{name: "text"}},
	TypeHeading:    {{name: "text"}},
	TypePullquote:  {{name: "text"}},
	TypeHighlight:  {{name: "text"}},
	TypeQuote:      {{name: "text"}, {name: "attribution", optional: true}},
	TypeTwoColumn:  {{name: "left"}, {name: "right"}},
	TypeAsymmetric: {{name: "left"}, {name: "right"}, {name: "offsetRight", kind: kindBool, optional: true}},
	TypeCallout:    {{name: "label"}, {name: "text"}},
	TypeList:       {{name: "items", kind: kindStrings}},
	TypeStat:       {{name: "value"}, {name: "label"}},
	TypeDivider:    {},
}

// Fields returns the names of the fields legal for t.
func Fields(t Type) []string {
	fs := fieldTable[t]
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.name
	}
	return names
}

func lookupField(t Type, name string) (field, bool) {
	for _, f := range fieldTable[t] {
		if f.name == name {
			return f, true
		}
	}
	return field{}, false
}

// Parse decodes one block from its wire form. Unknown types, unknown or
// foreign keys, missing required keys, nulls on required keys and wrong
// JSON kinds are all rejected with a SchemaError. A null optional key is
// treated as absent.
func Parse(raw []byte) (Block, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return Block{}, &apperr.SchemaError{Index: -1, Reason: "block must be a JSON object"}
	}

	rawType, ok := obj["type"]
	if !ok {
		return Block{}, &apperr.SchemaError{Index: -1, Field: "type", Reason: "missing"}
	}
	var t Type
	if isNull(rawType) || json.Unmarshal(rawType, &t) != nil {
		return Block{}, &apperr.SchemaError{Index: -1, Field: "type", Reason: "must be a string"}
	}
	if !t.Known() {
		return Block{}, &apperr.SchemaError{Index: -1, Type: string(t), Field: "type", Reason: "unknown block type"}
	}

	for key := range obj {
		if key == "type" {
			continue
		}
		if _, legal := lookupField(t, key); !legal {
			return Block{}, &apperr.SchemaError{Index: -1, Type: string(t), Field: key, Reason: "not allowed"}
		}
	}

	values := make(map[string]any, len(obj))
	for _, f := range fieldTable[t] {
		rawVal, present := obj[f.name]
		if present && f.optional && isNull(rawVal) {
			present = false
		}
		if !present {
			if f.optional {
				continue
			}
			return Block{}, &apperr.SchemaError{Index: -1, Type: string(t), Field: f.name, Reason: "missing"}
		}
		v, err := decodeValue(f, rawVal)
		if err != nil {
			return Block{}, &apperr.SchemaError{Index: -1, Type: string(t), Field: f.name, Reason: err.Error()}
		}
		values[f.name] = v
	}

	b := assemble(t, values)
	if err := b.Validate(); err != nil {
		return Block{}, err
	}
	return b, nil
}

func decodeValue(f field, raw json.RawMessage) (any, error) {
	if isNull(raw) {
		return nil, fmt.Errorf("must not be null")
	}
	switch f.kind {
	case kindBool:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("must be a boolean")
		}
		return v, nil
	case kindStrings:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("must be an array of strings")
		}
		out := make([]string, len(items))
		for i, item := range items {
			if isNull(item) || json.Unmarshal(item, &out[i]) != nil {
				return nil, fmt.Errorf("entry %d must be a string", i)
			}
		}
		return out, nil
	default:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("must be a string")
		}
		return v, nil
	}
}

// coerceValue converts a loosely typed Go value (as produced by decoding a
// JSON request body into map[string]any) into the kind f expects.
func coerceValue(f field, v any) (any, error) {
	if v == nil {
		if f.optional {
			return nil, nil
		}
		return nil, fmt.Errorf("must not be null")
	}
	switch f.kind {
	case kindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("must be a boolean")
		}
		return b, nil
	case kindStrings:
		switch items := v.(type) {
		case []string:
			return append([]string(nil), items...), nil
		case []any:
			out := make([]string, len(items))
			for i, item := range items {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("entry %d must be a string", i)
				}
				out[i] = s
			}
			return out, nil
		default:
			return nil, fmt.Errorf("must be an array of strings")
		}
	default:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string")
		}
		return s, nil
	}
}

// assemble builds a block of type t from already type-checked values.
func assemble(t Type, values map[string]any) Block {
	str := func(name string) string {
		s, _ := values[name].(string)
		return s
	}
	optStr := func(name string) *string {
		if s, ok := values[name].(string); ok {
			return &s
		}
		return nil
	}

	switch t {
	case TypeLead, TypeText, TypeHeading, TypePullquote, TypeHighlight:
		return textBlock(t, str("text"))
	case TypeQuote:
		return Quote(str("text"), optStr("attribution"))
	case TypeTwoColumn:
		return TwoColumn(str("left"), str("right"))
	case TypeAsymmetric:
		var offset *bool
		if v, ok := values["offsetRight"].(bool); ok {
			offset = &v
		}
		return Asymmetric(str("left"), str("right"), offset)
	case TypeCallout:
		return Callout(str("label"), str("text"))
	case TypeList:
		items, _ := values["items"].([]string)
		return List(items...)
	case TypeStat:
		return Stat(str("value"), str("label"))
	default:
		return Block{Type: t}
	}
}

// values is the inverse of assemble.
func (b Block) values() map[string]any {
	out := map[string]any{}
	switch {
	case b.Text != nil:
		out["text"] = b.Text.Text
	case b.Quote != nil:
		out["text"] = b.Quote.Text
		if b.Quote.Attribution != nil {
			out["attribution"] = *b.Quote.Attribution
		}
	case b.Columns != nil:
		out["left"] = b.Columns.Left
		out["right"] = b.Columns.Right
		if b.Columns.OffsetRight != nil {
			out["offsetRight"] = *b.Columns.OffsetRight
		}
	case b.Callout != nil:
		out["label"] = b.Callout.Label
		out["text"] = b.Callout.Text
	case b.List != nil:
		out["items"] = append([]string(nil), b.List.Items...)
	case b.Stat != nil:
		out["value"] = b.Stat.Value
		out["label"] = b.Stat.Label
	}
	return out
}

// WithFields returns a copy of b with the given fields replaced. Only keys
// legal for b's type are accepted and the result is validated.
func (b Block) WithFields(updates map[string]any) (Block, error) {
	if !b.Type.Known() {
		return Block{}, b.schemaErr("type", "unknown block type")
	}
	values := b.values()
	for key, v := range updates {
		if key == "type" {
			if s, _ := v.(string); Type(s) == b.Type {
				continue
			}
			return Block{}, b.schemaErr("type", "cannot change block type in place; replace the block")
		}
		f, legal := lookupField(b.Type, key)
		if !legal {
			return Block{}, b.schemaErr(key, "not allowed")
		}
		cv, err := coerceValue(f, v)
		if err != nil {
			return Block{}, b.schemaErr(key, err.Error())
		}
		if cv == nil {
			delete(values, key)
			continue
		}
		values[key] = cv
	}
	out := assemble(b.Type, values)
	if err := out.Validate(); err != nil {
		return Block{}, err
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
