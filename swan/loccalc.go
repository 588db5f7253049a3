package swan

import "sort"

// locCalculator maps an offset local to some fragment back to an absolute
// (offset, line, column) in the original source, honouring CRLF gaps
// (§4.4). The document keeps one root calculator; expression processors
// derive nested calculators via getSubCalculatorAfter/getSubCalculatorShift
// so a script parser's own zero-based offsets land in the template's
// coordinate system.
// locCalculator reads gaps/lineTerminators through pointers rather than
// copied slices: the reader keeps appending to both while parsing runs, and
// a calculator constructed early (e.g. the document's root calculator,
// built right after the tokenizer) must see every append made by the time
// it is asked to resolve a position, not just the ones that existed at
// construction (§4.4).
type locCalculator struct {
	baseOffset      int
	gaps            *[]int
	lineTerminators *[]int
}

func newLocCalculator(gaps, lineTerminators *[]int) *locCalculator {
	return &locCalculator{gaps: gaps, lineTerminators: lineTerminators}
}

// getOffsetWithGap returns baseOffset + o, plus the number of gaps at or
// before that position -- each elided CRLF LF shifts everything after it
// one further along in the original source (§4.4).
func (c *locCalculator) getOffsetWithGap(o int) int {
	abs := c.baseOffset + o
	gaps := *c.gaps
	k := sort.Search(len(gaps), func(i int) bool { return gaps[i] > abs })
	return abs + k
}

// getLocation binary-searches lineTerminators for the line/column of an
// absolute offset (§4.4).
func (c *locCalculator) getLocation(absOffset int) Position {
	lts := *c.lineTerminators
	idx := sort.Search(len(lts), func(i int) bool { return lts[i] >= absOffset })
	if idx == 0 {
		return Position{Line: 1, Column: absOffset}
	}
	return Position{Line: idx + 1, Column: absOffset - lts[idx-1] - 1}
}

// fixLocation rewrites n's range/loc in place from fragment-local
// coordinates to the absolute source coordinate system.
func (c *locCalculator) fixLocation(n XNode) {
	r := n.NodeRange()
	start := c.getOffsetWithGap(r[0])
	end := c.getOffsetWithGap(r[1])
	n.setRange(Range{start, end})
	n.setLoc(Loc{c.getLocation(start), c.getLocation(end)})
}

// fixErrorLocation performs the same translation for an error produced by
// the external script parser, whose Index is expressed in fragment-local
// offsets (§4.4, §7).
func (c *locCalculator) fixErrorLocation(e *ParseError) {
	abs := c.getOffsetWithGap(e.Index)
	e.Index = abs
	pos := c.getLocation(abs)
	e.Line, e.Column = pos.Line, pos.Column
}

// getSubCalculatorAfter returns a calculator whose base sits o further
// along than c's, for splicing a nested fragment (e.g. an expression
// payload) that starts partway through c's own fragment.
func (c *locCalculator) getSubCalculatorAfter(o int) *locCalculator {
	return &locCalculator{
		baseOffset:      c.baseOffset + o,
		gaps:            c.gaps,
		lineTerminators: c.lineTerminators,
	}
}

// getSubCalculatorShift returns a calculator shifted by delta relative to
// c's own base. Shift(-2) compensates for the synthetic "0(" prefix used to
// wrap mustache payloads before handing them to the script parser (§4.4,
// §4.6, §9).
func (c *locCalculator) getSubCalculatorShift(delta int) *locCalculator {
	return &locCalculator{
		baseOffset:      c.baseOffset + delta,
		gaps:            c.gaps,
		lineTerminators: c.lineTerminators,
	}
}
