package block

import "github.com/nadi-health/core/internal/pkg/apperr"

// DefaultCalloutLabel is the caption a fresh callout starts with.
const DefaultCalloutLabel = "KEY FINDING"

// NewEmpty returns the minimal legal block of type t, as the editor inserts it.
func NewEmpty(t Type) (Block, error) {
	switch t {
	case TypeLead, TypeText, TypeHeading, TypePullquote, TypeHighlight:
		return textBlock(t, ""), nil
	case TypeQuote:
		empty := ""
		return Quote("", &empty), nil
	case TypeTwoColumn:
		return TwoColumn("", ""), nil
	case TypeAsymmetric:
		offset := true
		return Asymmetric("", "", &offset), nil
	case TypeCallout:
		return Callout(DefaultCalloutLabel, ""), nil
	case TypeList:
		return List(""), nil
	case TypeStat:
		return Stat("", ""), nil
	case TypeDivider:
		return Divider(), nil
	default:
		return Block{}, &apperr.SchemaError{Index: -1, Type: string(t), Field: "type", Reason: "unknown block type"}
	}
}
