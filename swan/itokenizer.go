// Copyright 2024 Daniel Potapov. Adapted 2025 for the Swan parsing engine:
// the token-merging pass between the low-level tokenizer and the tree
// builder.

package swan

import "unicode/utf16"

// irStartTag, irEndTag, irText and irMustacheRecord are the coarser record
// types the intermediate tokenizer hands to the tree builder (§4.3).
type irStartTag struct {
	Name        string
	RawName     string
	SelfClosing bool
	Attrs       []*irAttr
	Range       Range
	Loc         Loc
}

type irAttr struct {
	NameTok  Token
	AssocTok *Token
	Pieces   []irAttrPiece
}

// irAttrPiece is *irLiteral or *irMustache.
type irAttrPiece interface{ isIrAttrPiece() }

type irLiteral struct{ Tok Token }

func (*irLiteral) isIrAttrPiece() {}

// irMustache is a mustache occurring either inline in an attribute value or
// as a top-level record; Incomplete marks one that hit EOF before its
// XMustacheEnd (§4.3, missing-expression-end-tag).
type irMustache struct {
	StartTok   Token
	EndTok     Token
	Text       string
	TextRange  Range
	Incomplete bool
}

func (*irMustache) isIrAttrPiece() {}

type irEndTag struct {
	Name  string
	Range Range
	Loc   Loc
}

type irText struct {
	Tok Token
}

// intermediateTokenizer wraps a tokenizer, pulling its flat token stream
// into StartTag/EndTag/Text/Mustache records. It shares its underlying
// tokenizer with the tree builder so the builder can call SetContentState
// before the next record is requested (§4.5).
type intermediateTokenizer struct {
	tok    *tokenizer
	errs   *errorList
	tokens *[]Token
}

func newIntermediateTokenizer(tok *tokenizer, errs *errorList, tokens *[]Token) *intermediateTokenizer {
	return &intermediateTokenizer{tok: tok, errs: errs, tokens: tokens}
}

// pull fetches the next raw token and records it into the document's flat
// token list (§3 "XDocument owns... flat tokens"), before any record
// assembly happens on top of it.
func (it *intermediateTokenizer) pull() (Token, bool) {
	tok, ok := it.tok.nextToken()
	if ok {
		*it.tokens = append(*it.tokens, tok)
	}
	return tok, ok
}

// next returns the next record (*irStartTag | *irEndTag | *irText |
// *irMustache), or (nil, false) at EOF.
//
// The underlying tokenizer already accumulates a maximal contiguous run of
// text/whitespace/RCDATA/RAWTEXT code points into a single token before
// flushing (see tokenizer.appendTextRune/closeOpenTextRun); the run-merging
// this layer performs in the reference design therefore degenerates here to
// a pass-through of one token per Text record.
func (it *intermediateTokenizer) next() (any, bool) {
	tok, ok := it.pull()
	if !ok {
		return nil, false
	}
	switch tok.Type {
	case HTMLTagOpen:
		return it.buildStartTag(tok), true
	case HTMLEndTagOpen:
		return it.buildEndTag(tok), true
	case HTMLText, HTMLWhitespace, HTMLRCDataText, HTMLRawText:
		return &irText{Tok: tok}, true
	case XMustacheStart:
		return it.buildMustacheRecord(tok), true
	default:
		// Stray token at top level (shouldn't occur with a well-behaved
		// tokenizer); surface it as text so nothing is silently dropped.
		return &irText{Tok: tok}, true
	}
}

func (it *intermediateTokenizer) buildStartTag(open Token) *irStartTag {
	st := &irStartTag{Name: open.Value, RawName: open.Value, Range: open.Range, Loc: open.Loc}
	// open.Value is case-folded; RawName is sliced from the source after '<'.
	if src := it.tok.r.src; open.Range[0]+1 <= open.Range[1] && open.Range[1] <= len(src) {
		st.RawName = string(utf16.Decode(src[open.Range[0]+1 : open.Range[1]]))
	}
	var cur *irAttr
	for {
		tok, ok := it.pull()
		if !ok {
			return st
		}
		switch tok.Type {
		case HTMLIdentifier:
			cur = &irAttr{NameTok: tok}
			st.Attrs = append(st.Attrs, cur)
		case HTMLAssociation:
			if cur != nil {
				a := tok
				cur.AssocTok = &a
			}
		case HTMLQuote:
			// Quotes only delimit; the literal/mustache pieces between them
			// carry the actual range information.
		case HTMLLiteral, HTMLAttrLiteral:
			if cur != nil {
				cur.Pieces = append(cur.Pieces, &irLiteral{Tok: tok})
			}
		case XMustacheStart:
			m := it.buildMustacheInline(tok)
			if cur != nil {
				cur.Pieces = append(cur.Pieces, m)
			}
		case HTMLTagClose:
			st.SelfClosing = false
			st.Range[1] = tok.Range[1]
			st.Loc.End = tok.Loc.End
			return st
		case HTMLSelfClosingTagClose:
			st.SelfClosing = true
			st.Range[1] = tok.Range[1]
			st.Loc.End = tok.Loc.End
			return st
		}
	}
}

func (it *intermediateTokenizer) buildEndTag(open Token) *irEndTag {
	et := &irEndTag{Name: open.Value, Range: open.Range, Loc: open.Loc}
	for {
		tok, ok := it.pull()
		if !ok {
			return et
		}
		switch tok.Type {
		case HTMLTagClose, HTMLSelfClosingTagClose:
			et.Range[1] = tok.Range[1]
			et.Loc.End = tok.Loc.End
			return et
		default:
			// End tags carrying attributes are malformed; the tokenizer has
			// already reported end-tag-with-attributes. Discard the pieces.
		}
	}
}

// buildMustacheInline consumes an attribute-value mustache body up to its
// XMustacheEnd (or EOF).
func (it *intermediateTokenizer) buildMustacheInline(start Token) *irMustache {
	m := &irMustache{StartTok: start}
	haveText := false
	for {
		tok, ok := it.pull()
		if !ok {
			it.reportMissingEnd(start)
			m.Incomplete = true
			if !haveText {
				m.TextRange = Range{start.Range[1], start.Range[1]}
			}
			return m
		}
		switch tok.Type {
		case HTMLText:
			if !haveText {
				m.TextRange[0] = tok.Range[0]
				haveText = true
			}
			m.TextRange[1] = tok.Range[1]
			m.Text += tok.Value
		case XMustacheEnd:
			m.EndTok = tok
			if !haveText {
				m.TextRange = Range{start.Range[1], start.Range[1]}
			}
			return m
		}
	}
}

func (it *intermediateTokenizer) buildMustacheRecord(start Token) any {
	m := it.buildMustacheInline(start)
	if m.Incomplete {
		// §8 scenario 7: the buffered content becomes a literal text node
		// rather than a Mustache record; the tree is still returned.
		val := start.Value + m.Text
		end := m.TextRange[1]
		if end < start.Range[1] {
			end = start.Range[1]
		}
		return &irText{Tok: Token{Type: HTMLText, Value: val, Range: Range{start.Range[0], end}, Loc: Loc{start.Loc.Start, start.Loc.Start}}}
	}
	return m
}

func (it *intermediateTokenizer) reportMissingEnd(start Token) {
	it.errs.add(&ParseError{
		Code:    ErrMissingExpressionEndTag,
		Message: "missing expression end tag",
		Index:   start.Range[0],
		Line:    start.Loc.Start.Line,
		Column:  start.Loc.Start.Column,
	})
}
