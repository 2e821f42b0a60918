// Package chardiff computes a minimal character-level edit script between
// two strings using the classic edit-distance table. It operates on Unicode
// code points so multi-byte scripts diff correctly.
//
// Cost is O(len(a)*len(b)) in time and space. Callers are expected to diff
// paragraph-sized strings, never whole documents.
package chardiff

// Kind classifies a diff operation.
type Kind uint8

const (
	// KindEqual is a run of characters present in both strings.
	KindEqual Kind = iota
	// KindDelete is a run present only in the original string.
	KindDelete
	// KindInsert is a run present only in the corrected string.
	KindInsert
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindEqual:
		return "equal"
	case KindDelete:
		return "delete"
	case KindInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Op is one run of a diff script.
type Op struct {
	Kind Kind
	Text string
}

// Diff computes the edit script that transforms original into corrected.
//
// The output satisfies two reconstruction identities: concatenating Text
// over ops with kind in {equal, delete} yields original, and over ops with
// kind in {equal, insert} yields corrected. A substitution always appears
// as a delete run immediately followed by an insert run, and adjacent ops
// of the same kind are merged.
func Diff(original, corrected string) []Op {
	o := []rune(original)
	c := []rune(corrected)
	n, m := len(o), len(c)

	if n == 0 && m == 0 {
		return nil
	}

	// d[i][j] is the edit distance between o[:i] and c[:j].
	d := make([][]int, n+1)
	for i := range d {
		d[i] = make([]int, m+1)
		d[i][0] = i
	}
	for j := 1; j <= m; j++ {
		d[0][j] = j
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if o[i-1] == c[j-1] {
				d[i][j] = d[i-1][j-1]
				continue
			}
			d[i][j] = 1 + min(d[i-1][j-1], d[i-1][j], d[i][j-1])
		}
	}

	// Backtrack from (n,m) to (0,0). Ops come out reversed; the tie-break
	// order (match, substitution, deletion, insertion) fixes a
	// deterministic script. A substitution must surface as delete before
	// insert, so it is emitted insert-first into the reversed stream.
	rev := make([]Op, 0, n+m)
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && o[i-1] == c[j-1] && d[i][j] == d[i-1][j-1]:
			rev = append(rev, Op{Kind: KindEqual, Text: string(o[i-1])})
			i--
			j--
		case i > 0 && j > 0 && d[i][j] == d[i-1][j-1]+1:
			rev = append(rev, Op{Kind: KindInsert, Text: string(c[j-1])})
			rev = append(rev, Op{Kind: KindDelete, Text: string(o[i-1])})
			i--
			j--
		case i > 0 && d[i][j] == d[i-1][j]+1:
			rev = append(rev, Op{Kind: KindDelete, Text: string(o[i-1])})
			i--
		default:
			rev = append(rev, Op{Kind: KindInsert, Text: string(c[j-1])})
			j--
		}
	}

	return mergeRuns(rev)
}

// mergeRuns reverses the backtracked op stream and merges adjacent ops of
// the same kind into runs.
func mergeRuns(rev []Op) []Op {
	var ops []Op
	for i := len(rev) - 1; i >= 0; i-- {
		op := rev[i]
		if n := len(ops); n > 0 && ops[n-1].Kind == op.Kind {
			ops[n-1].Text += op.Text
			continue
		}
		ops = append(ops, op)
	}
	return ops
}
