package article

import (
	"encoding/json"

	"github.com/nadi-health/core/internal/modules/content/block"
)

// InsertBlockDTO inserts either a fresh empty block of Type or the given
// Block. Index defaults to the end of the body.
type InsertBlockDTO struct {
	Index *int            `json:"index"`
	Type  block.Type      `json:"type"`
	Block json.RawMessage `json:"block"`
}

type MoveBlockDTO struct {
	To *int `json:"to" binding:"required"`
}

type LatestQuery struct {
	N int `form:"n"`
}

// detailResponse is an article as returned to admin editors.
type detailResponse struct {
	Article
	BlockTypes []block.Type `json:"blockTypes,omitempty"`
}
