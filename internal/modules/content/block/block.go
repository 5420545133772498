// Package block defines the closed set of layout blocks an article body is
// made of, together with their strict wire codec and sequence editing.
package block

import (
	"encoding/json"

	"github.com/nadi-health/core/internal/pkg/apperr"
)

// Type is the discriminator carried by every block.
type Type string

const (
	TypeLead       Type = "lead"
	TypeText       Type = "text"
	TypeHeading    Type = "heading"
	TypeQuote      Type = "quote"
	TypePullquote  Type = "pullquote"
	TypeTwoColumn  Type = "two-column"
	TypeAsymmetric Type = "asymmetric"
	TypeHighlight  Type = "highlight"
	TypeCallout    Type = "callout"
	TypeList       Type = "list"
	TypeStat       Type = "stat"
	TypeDivider    Type = "divider"
)

// Types lists every known block type in editor palette order.
var Types = []Type{
	TypeLead, TypeText, TypeHeading, TypeQuote, TypePullquote, TypeTwoColumn,
	TypeAsymmetric, TypeHighlight, TypeCallout, TypeList, TypeStat, TypeDivider,
}

// Known reports whether t is one of the supported block types.
func (t Type) Known() bool {
	_, ok := fieldTable[t]
	return ok
}

// TextBody is the payload of lead, text, heading, pullquote and highlight blocks.
type TextBody struct {
	Text string
}

type QuoteBody struct {
	Text        string
	Attribution *string
}

// ColumnsBody is shared by two-column and asymmetric blocks. OffsetRight is
// only legal on asymmetric.
type ColumnsBody struct {
	Left        string
	Right       string
	OffsetRight *bool
}

type CalloutBody struct {
	Label string
	Text  string
}

type ListBody struct {
	Items []string
}

type StatBody struct {
	Value string
	Label string
}

// Block is one content block. Exactly the payload matching Type is set;
// divider carries none.
type Block struct {
	Type    Type
	Text    *TextBody
	Quote   *QuoteBody
	Columns *ColumnsBody
	Callout *CalloutBody
	List    *ListBody
	Stat    *StatBody
}

func Lead(text string) Block      { return textBlock(TypeLead, text) }
func Paragraph(text string) Block { return textBlock(TypeText, text) }
func Heading(text string) Block   { return textBlock(TypeHeading, text) }
func Pullquote(text string) Block { return textBlock(TypePullquote, text) }
func Highlight(text string) Block { return textBlock(TypeHighlight, text) }

func Quote(text string, attribution *string) Block {
	return Block{Type: TypeQuote, Quote: &QuoteBody{Text: text, Attribution: attribution}}
}

func TwoColumn(left, right string) Block {
	return Block{Type: TypeTwoColumn, Columns: &ColumnsBody{Left: left, Right: right}}
}

func Asymmetric(left, right string, offsetRight *bool) Block {
	return Block{Type: TypeAsymmetric, Columns: &ColumnsBody{Left: left, Right: right, OffsetRight: offsetRight}}
}

func Callout(label, text string) Block {
	return Block{Type: TypeCallout, Callout: &CalloutBody{Label: label, Text: text}}
}

func List(items ...string) Block {
	return Block{Type: TypeList, List: &ListBody{Items: items}}
}

func Stat(value, label string) Block {
	return Block{Type: TypeStat, Stat: &StatBody{Value: value, Label: label}}
}

func Divider() Block { return Block{Type: TypeDivider} }

func textBlock(t Type, text string) Block {
	return Block{Type: t, Text: &TextBody{Text: text}}
}

// Validate checks that b holds exactly the payload its type requires.
func (b Block) Validate() error {
	switch b.Type {
	case TypeLead, TypeText, TypeHeading, TypePullquote, TypeHighlight:
		return b.expectPayload(b.Text != nil)
	case TypeQuote:
		return b.expectPayload(b.Quote != nil)
	case TypeTwoColumn:
		if err := b.expectPayload(b.Columns != nil); err != nil {
			return err
		}
		if b.Columns.OffsetRight != nil {
			return b.schemaErr("offsetRight", "not allowed on two-column")
		}
		return nil
	case TypeAsymmetric:
		return b.expectPayload(b.Columns != nil)
	case TypeCallout:
		return b.expectPayload(b.Callout != nil)
	case TypeList:
		if err := b.expectPayload(b.List != nil); err != nil {
			return err
		}
		if len(b.List.Items) == 0 {
			return b.schemaErr("items", "must contain at least one entry")
		}
		return nil
	case TypeStat:
		return b.expectPayload(b.Stat != nil)
	case TypeDivider:
		return b.expectPayload(true)
	default:
		return b.schemaErr("type", "unknown block type")
	}
}

func (b Block) expectPayload(present bool) error {
	want := 1
	if b.Type == TypeDivider {
		want = 0
	}
	if !present {
		return b.schemaErr("", "missing payload")
	}
	if b.payloadCount() != want {
		return b.schemaErr("", "carries fields of another block type")
	}
	return nil
}

func (b Block) payloadCount() int {
	n := 0
	for _, set := range []bool{b.Text != nil, b.Quote != nil, b.Columns != nil, b.Callout != nil, b.List != nil, b.Stat != nil} {
		if set {
			n++
		}
	}
	return n
}

func (b Block) schemaErr(field, reason string) error {
	return &apperr.SchemaError{Index: -1, Type: string(b.Type), Field: field, Reason: reason}
}

// MarshalJSON emits the flat wire shape {"type": ..., <fields>}.
func (b Block) MarshalJSON() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	switch b.Type {
	case TypeLead, TypeText, TypeHeading, TypePullquote, TypeHighlight:
		return json.Marshal(struct {
			Type Type   `json:"type"`
			Text string `json:"text"`
		}{b.Type, b.Text.Text})
	case TypeQuote:
		return json.Marshal(struct {
			Type        Type    `json:"type"`
			Text        string  `json:"text"`
			Attribution *string `json:"attribution,omitempty"`
		}{b.Type, b.Quote.Text, b.Quote.Attribution})
	case TypeTwoColumn, TypeAsymmetric:
		return json.Marshal(struct {
			Type        Type   `json:"type"`
			Left        string `json:"left"`
			Right       string `json:"right"`
			OffsetRight *bool  `json:"offsetRight,omitempty"`
		}{b.Type, b.Columns.Left, b.Columns.Right, b.Columns.OffsetRight})
	case TypeCallout:
		return json.Marshal(struct {
			Type  Type   `json:"type"`
			Label string `json:"label"`
			Text  string `json:"text"`
		}{b.Type, b.Callout.Label, b.Callout.Text})
	case TypeList:
		return json.Marshal(struct {
			Type  Type     `json:"type"`
			Items []string `json:"items"`
		}{b.Type, b.List.Items})
	case TypeStat:
		return json.Marshal(struct {
			Type  Type   `json:"type"`
			Value string `json:"value"`
			Label string `json:"label"`
		}{b.Type, b.Stat.Value, b.Stat.Label})
	default:
		return json.Marshal(struct {
			Type Type `json:"type"`
		}{b.Type})
	}
}

// UnmarshalJSON decodes strictly; see Parse.
func (b *Block) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Clone returns a deep copy of b.
func (b Block) Clone() Block {
	out := Block{Type: b.Type}
	if b.Text != nil {
		t := *b.Text
		out.Text = &t
	}
	if b.Quote != nil {
		q := *b.Quote
		if q.Attribution != nil {
			a := *q.Attribution
			q.Attribution = &a
		}
		out.Quote = &q
	}
	if b.Columns != nil {
		c := *b.Columns
		if c.OffsetRight != nil {
			o := *c.OffsetRight
			c.OffsetRight = &o
		}
		out.Columns = &c
	}
	if b.Callout != nil {
		c := *b.Callout
		out.Callout = &c
	}
	if b.List != nil {
		out.List = &ListBody{Items: append([]string(nil), b.List.Items...)}
	}
	if b.Stat != nil {
		s := *b.Stat
		out.Stat = &s
	}
	return out
}
