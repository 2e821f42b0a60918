package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Basic(t *testing.T) {
	res := Split("a\n\nb\n\nc")

	require.Len(t, res.Pieces, 3)

	assert.Equal(t, Piece{Content: "a", StartLine: 0, EndLine: 0, TrailingEmptyLines: 1}, res.Pieces[0])
	assert.Equal(t, Piece{Content: "b", StartLine: 2, EndLine: 2, TrailingEmptyLines: 1}, res.Pieces[1])
	assert.Equal(t, Piece{Content: "c", StartLine: 4, EndLine: 4, TrailingEmptyLines: 0}, res.Pieces[2])
	assert.Equal(t, 0, res.TrailingEmptyLines)
}

func TestSplit_Empty(t *testing.T) {
	res := Split("")
	assert.Empty(t, res.Pieces)
	assert.Equal(t, 0, res.TrailingEmptyLines)
}

func TestSplit_SingleLine(t *testing.T) {
	res := Split("hello world")

	require.Len(t, res.Pieces, 1)
	assert.Equal(t, "hello world", res.Pieces[0].Content)
	assert.Equal(t, 0, res.Pieces[0].StartLine)
	assert.Equal(t, 0, res.Pieces[0].EndLine)
}

func TestSplit_MultiLineParagraph(t *testing.T) {
	res := Split("line one\nline two\n\nnext")

	require.Len(t, res.Pieces, 2)
	assert.Equal(t, "line one\nline two", res.Pieces[0].Content)
	assert.Equal(t, 0, res.Pieces[0].StartLine)
	assert.Equal(t, 1, res.Pieces[0].EndLine)
	assert.Equal(t, 1, res.Pieces[0].TrailingEmptyLines)
	assert.Equal(t, "next", res.Pieces[1].Content)
	assert.Equal(t, 3, res.Pieces[1].StartLine)
}

func TestSplit_LeadingBlanks(t *testing.T) {
	res := Split("\n\nfirst")

	require.Len(t, res.Pieces, 1)
	assert.Equal(t, "first", res.Pieces[0].Content, "leading blanks must not enter content")
	assert.Equal(t, 2, res.Pieces[0].StartLine)
}

func TestSplit_TrailingBlanks(t *testing.T) {
	res := Split("last\n\n\n")

	require.Len(t, res.Pieces, 1)
	assert.Equal(t, "last", res.Pieces[0].Content)
	assert.Equal(t, 3, res.Pieces[0].TrailingEmptyLines)
	assert.Equal(t, 3, res.TrailingEmptyLines)
}

func TestSplit_AllBlank(t *testing.T) {
	res := Split("\n\n")

	assert.Empty(t, res.Pieces)
	assert.Equal(t, 3, res.TrailingEmptyLines)
}

func TestSplit_WhitespaceOnlyLineIsBlank(t *testing.T) {
	res := Split("a\n  \t\nb")

	require.Len(t, res.Pieces, 2)
	assert.Equal(t, "a", res.Pieces[0].Content)
	assert.Equal(t, "b", res.Pieces[1].Content)
}

func TestSplit_NormalizesLineEndings(t *testing.T) {
	res := Split("a\r\n\r\nb\rc")

	require.Len(t, res.Pieces, 2)
	assert.Equal(t, "a", res.Pieces[0].Content)
	assert.Equal(t, "b\nc", res.Pieces[1].Content)
	assert.Equal(t, 2, res.Pieces[1].StartLine, "normalization must not shift line numbers")
	assert.Equal(t, 3, res.Pieces[1].EndLine)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n", Normalize("a\r\nb\rc\n"))
}
