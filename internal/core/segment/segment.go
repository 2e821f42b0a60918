// Package segment splits raw document text into ordered paragraph pieces.
// Segmentation is a total function: any input string, including the empty
// string, produces a well-formed result.
package segment

import "strings"

// Piece is one paragraph of the source document: a maximal run of non-blank
// lines with internal newlines preserved verbatim.
type Piece struct {
	// Content is the paragraph text without any surrounding blank lines.
	Content string
	// StartLine and EndLine are inclusive 0-indexed line numbers in the
	// normalized document.
	StartLine int
	EndLine   int
	// TrailingEmptyLines counts the blank lines between this paragraph and
	// the next one (or the end of the document, for the last paragraph).
	TrailingEmptyLines int
}

// Result holds the pieces of a segmented document in ascending order.
type Result struct {
	Pieces []Piece
	// TrailingEmptyLines counts blank lines after the last paragraph. It
	// mirrors the last piece's count and covers the all-blank document case.
	TrailingEmptyLines int
}

// Normalize rewrites CRLF and lone CR line endings to LF. The rewrite maps
// lines one-to-one, so line numbers computed on the normalized text are
// valid for the original.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Split segments text into paragraphs on blank-line boundaries. A line is
// blank when it is empty after trimming spaces and tabs. Leading and
// trailing blank lines never become paragraph content: leading blanks are
// reflected in the first piece's StartLine, trailing blanks in the previous
// piece's TrailingEmptyLines.
func Split(text string) Result {
	if text == "" {
		return Result{}
	}

	lines := strings.Split(Normalize(text), "\n")

	var res Result
	start := -1 // first line of the paragraph being collected, -1 if none

	flush := func(end int) {
		if start < 0 {
			return
		}
		res.Pieces = append(res.Pieces, Piece{
			Content:   strings.Join(lines[start:end+1], "\n"),
			StartLine: start,
			EndLine:   end,
		})
		start = -1
	}

	for i, line := range lines {
		if isBlank(line) {
			flush(i - 1)
			if n := len(res.Pieces); n > 0 {
				res.Pieces[n-1].TrailingEmptyLines++
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(lines) - 1)

	if n := len(res.Pieces); n > 0 {
		res.TrailingEmptyLines = res.Pieces[n-1].TrailingEmptyLines
	} else {
		res.TrailingEmptyLines = len(lines)
	}

	return res
}

func isBlank(line string) bool {
	return strings.TrimRight(line, " \t") == ""
}
