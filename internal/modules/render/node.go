// Package render projects article blocks into view nodes and renders them
// as HTML or Markdown.
package render

import "github.com/nadi-health/core/internal/modules/content/block"

// Node is the presentation form of one block. Only the fields meaningful
// for Type are set.
type Node struct {
	Type        block.Type `json:"type"`
	Text        string     `json:"text,omitempty"`
	Attribution string     `json:"attribution,omitempty"`
	Left        string     `json:"left,omitempty"`
	Right       string     `json:"right,omitempty"`
	OffsetRight bool       `json:"offsetRight,omitempty"`
	Label       string     `json:"label,omitempty"`
	Value       string     `json:"value,omitempty"`
	Items       []string   `json:"items,omitempty"`
}

// Nodes returns one node per block in order. Blocks that fail validation
// never reach storage, so the default branch is unreachable in practice.
func Nodes(blocks []block.Block) []Node {
	out := make([]Node, 0, len(blocks))
	for _, b := range blocks {
		n, ok := node(b)
		if !ok {
			continue
		}
		out = append(out, n)
	}
	return out
}

func node(b block.Block) (Node, bool) {
	n := Node{Type: b.Type}
	switch b.Type {
	case block.TypeLead, block.TypeText, block.TypeHeading, block.TypePullquote, block.TypeHighlight:
		if b.Text == nil {
			return n, false
		}
		n.Text = b.Text.Text
	case block.TypeQuote:
		if b.Quote == nil {
			return n, false
		}
		n.Text = b.Quote.Text
		if b.Quote.Attribution != nil {
			n.Attribution = *b.Quote.Attribution
		}
	case block.TypeTwoColumn, block.TypeAsymmetric:
		if b.Columns == nil {
			return n, false
		}
		n.Left, n.Right = b.Columns.Left, b.Columns.Right
		n.OffsetRight = b.Columns.OffsetRight != nil && *b.Columns.OffsetRight
	case block.TypeCallout:
		if b.Callout == nil {
			return n, false
		}
		n.Label, n.Text = b.Callout.Label, b.Callout.Text
	case block.TypeList:
		if b.List == nil {
			return n, false
		}
		n.Items = append([]string{}, b.List.Items...)
	case block.TypeStat:
		if b.Stat == nil {
			return n, false
		}
		n.Value, n.Label = b.Stat.Value, b.Stat.Label
	case block.TypeDivider:
	default:
		return n, false
	}
	return n, true
}
