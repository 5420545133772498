package block

import (
	"encoding/json"
	"testing"

	"github.com/nadi-health/core/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(s Sequence) []string {
	out := make([]string, len(s))
	for i, b := range s {
		out[i] = b.Text.Text
	}
	return out
}

func TestSequenceEditing(t *testing.T) {
	seq := Sequence{Paragraph("a"), Paragraph("b"), Paragraph("c")}

	require.NoError(t, seq.Insert(1, Paragraph("x")))
	assert.Equal(t, []string{"a", "x", "b", "c"}, texts(seq))

	require.NoError(t, seq.Append(Paragraph("z")))
	assert.Equal(t, []string{"a", "x", "b", "c", "z"}, texts(seq))

	require.NoError(t, seq.Move(0, 3))
	assert.Equal(t, []string{"x", "b", "c", "a", "z"}, texts(seq))

	require.NoError(t, seq.Move(4, 0))
	assert.Equal(t, []string{"z", "x", "b", "c", "a"}, texts(seq))

	require.NoError(t, seq.Remove(2))
	assert.Equal(t, []string{"z", "x", "c", "a"}, texts(seq))

	require.NoError(t, seq.UpdateFields(0, map[string]any{"text": "first"}))
	assert.Equal(t, "first", seq[0].Text.Text)
}

func TestSequenceReplaceChangesType(t *testing.T) {
	seq := Sequence{Quote("q", nil)}
	require.NoError(t, seq.Replace(0, Stat("63%", "coverage")))
	assert.Equal(t, TypeStat, seq[0].Type)
	assert.Nil(t, seq[0].Quote)
}

func TestSequenceIndexErrors(t *testing.T) {
	seq := Sequence{Paragraph("a")}
	for name, err := range map[string]error{
		"insert":  seq.Insert(3, Paragraph("x")),
		"remove":  seq.Remove(1),
		"move":    seq.Move(0, 5),
		"replace": seq.Replace(-1, Divider()),
		"update":  seq.UpdateFields(2, map[string]any{"text": "y"}),
	} {
		assert.ErrorIs(t, err, apperr.ErrValidation, name)
	}
	assert.Len(t, seq, 1)
}

func TestSequenceRejectsInvalidBlock(t *testing.T) {
	seq := Sequence{}
	err := seq.Append(Block{Type: "carousel"})
	assert.ErrorIs(t, err, apperr.ErrSchemaViolation)
	assert.Empty(t, seq)
}

func TestSequenceJSONPreservesOrder(t *testing.T) {
	in := Sequence{Lead("l"), Heading("h"), Divider(), List("1", "2"), Stat("9", "s")}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Sequence
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	raw, err = json.Marshal(Sequence(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
