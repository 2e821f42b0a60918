package chardiff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reconstruct concatenates op text for the given kinds.
func reconstruct(ops []Op, kinds ...Kind) string {
	var sb strings.Builder
	for _, op := range ops {
		for _, k := range kinds {
			if op.Kind == k {
				sb.WriteString(op.Text)
			}
		}
	}
	return sb.String()
}

func TestDiff_ReconstructionIdentities(t *testing.T) {
	tests := []struct {
		name     string
		original string
		corrected string
	}{
		{"identical", "hello world", "hello world"},
		{"empty to text", "", "hello"},
		{"text to empty", "hello", ""},
		{"substitution", "cat", "cut"},
		{"insertion middle", "helo", "hello"},
		{"deletion middle", "heello", "hello"},
		{"full rewrite", "abc", "xyz"},
		{"multiline", "one\ntwo", "one\nthree\nfour"},
		{"cjk", "猫吃鱼", "狗吃鱼了"},
		{"mixed scripts", "hello 世界", "hullo 世界!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := Diff(tt.original, tt.corrected)

			assert.Equal(t, tt.original, reconstruct(ops, KindEqual, KindDelete))
			assert.Equal(t, tt.corrected, reconstruct(ops, KindEqual, KindInsert))
		})
	}
}

func TestDiff_IdenticalInput(t *testing.T) {
	t.Run("non-empty yields a single equal run", func(t *testing.T) {
		ops := Diff("same text", "same text")
		require.Len(t, ops, 1)
		assert.Equal(t, Op{Kind: KindEqual, Text: "same text"}, ops[0])
	})

	t.Run("empty yields no ops", func(t *testing.T) {
		assert.Empty(t, Diff("", ""))
	})
}

func TestDiff_CJKInsert(t *testing.T) {
	ops := Diff("猫吃鱼", "猫吃鱼了")

	require.Len(t, ops, 2)
	assert.Equal(t, Op{Kind: KindEqual, Text: "猫吃鱼"}, ops[0])
	assert.Equal(t, Op{Kind: KindInsert, Text: "了"}, ops[1])
}

func TestDiff_SubstitutionEmitsDeleteBeforeInsert(t *testing.T) {
	ops := Diff("cat", "cut")

	require.Len(t, ops, 4)
	assert.Equal(t, Op{Kind: KindEqual, Text: "c"}, ops[0])
	assert.Equal(t, Op{Kind: KindDelete, Text: "a"}, ops[1])
	assert.Equal(t, Op{Kind: KindInsert, Text: "u"}, ops[2])
	assert.Equal(t, Op{Kind: KindEqual, Text: "t"}, ops[3])
}

func TestDiff_AdjacentRunsMerged(t *testing.T) {
	ops := Diff("abc", "abcdef")

	require.Len(t, ops, 2)
	assert.Equal(t, Op{Kind: KindEqual, Text: "abc"}, ops[0])
	assert.Equal(t, Op{Kind: KindInsert, Text: "def"}, ops[1])

	for i := 1; i < len(ops); i++ {
		assert.NotEqual(t, ops[i-1].Kind, ops[i].Kind, "adjacent ops must not share a kind")
	}
}

func TestDiff_Deterministic(t *testing.T) {
	a := Diff("the quick brown fox", "the quikc brown foxes")
	b := Diff("the quick brown fox", "the quikc brown foxes")
	assert.Equal(t, a, b)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "equal", KindEqual.String())
	assert.Equal(t, "delete", KindDelete.String())
	assert.Equal(t, "insert", KindInsert.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
