package block

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nadi-health/core/internal/pkg/apperr"
)

// Sequence is the ordered body of an article. Order is render order.
type Sequence []Block

// ParseList decodes a JSON array of blocks. A failing block is reported with
// its position; nothing is coerced.
func ParseList(raw []byte) (Sequence, error) {
	if isNull(raw) || len(bytes.TrimSpace(raw)) == 0 {
		return Sequence{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &apperr.SchemaError{Index: -1, Field: "blocks", Reason: "must be an array"}
	}
	seq := make(Sequence, 0, len(items))
	for i, item := range items {
		b, err := Parse(item)
		if err != nil {
			return nil, apperr.AtIndex(err, i)
		}
		seq = append(seq, b)
	}
	return seq, nil
}

func (s Sequence) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Block(s))
}

func (s *Sequence) UnmarshalJSON(data []byte) error {
	seq, err := ParseList(data)
	if err != nil {
		return err
	}
	*s = seq
	return nil
}

// Validate checks every block, reporting the first failure with its index.
func (s Sequence) Validate() error {
	for i, b := range s {
		if err := b.Validate(); err != nil {
			return apperr.AtIndex(err, i)
		}
	}
	return nil
}

func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	for i, b := range s {
		out[i] = b.Clone()
	}
	return out
}

// Insert places b at index i, shifting later blocks down. i == len appends.
func (s *Sequence) Insert(i int, b Block) error {
	if i < 0 || i > len(*s) {
		return indexErr(i, len(*s))
	}
	if err := b.Validate(); err != nil {
		return apperr.AtIndex(err, i)
	}
	seq := append(*s, Block{})
	copy(seq[i+1:], seq[i:])
	seq[i] = b
	*s = seq
	return nil
}

func (s *Sequence) Append(b Block) error {
	return s.Insert(len(*s), b)
}

func (s *Sequence) Remove(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	*s = append((*s)[:i], (*s)[i+1:]...)
	return nil
}

// Move relocates the block at from so that it ends up at index to.
func (s *Sequence) Move(from, to int) error {
	if err := s.check(from); err != nil {
		return err
	}
	if err := s.check(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	seq := *s
	b := seq[from]
	if from < to {
		copy(seq[from:to], seq[from+1:to+1])
	} else {
		copy(seq[to+1:from+1], seq[to:from])
	}
	seq[to] = b
	return nil
}

// Replace swaps the block at i for b wholesale. This is the only way to
// change a block's type.
func (s *Sequence) Replace(i int, b Block) error {
	if err := s.check(i); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return apperr.AtIndex(err, i)
	}
	(*s)[i] = b
	return nil
}

// UpdateFields patches fields of the block at i; see Block.WithFields.
func (s *Sequence) UpdateFields(i int, updates map[string]any) error {
	if err := s.check(i); err != nil {
		return err
	}
	b, err := (*s)[i].WithFields(updates)
	if err != nil {
		return apperr.AtIndex(err, i)
	}
	(*s)[i] = b
	return nil
}

func (s Sequence) check(i int) error {
	if i < 0 || i >= len(s) {
		return indexErr(i, len(s))
	}
	return nil
}

func indexErr(i, n int) error {
	return apperr.Validation("index", fmt.Sprintf("%d out of range [0,%d)", i, n))
}
