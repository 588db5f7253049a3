// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.
//
// Modifications:
// Copyright 2025 The Swan Authors
//  - Rewritten as a hand-rolled state machine (rather than delegating to
//    golang.org/x/net/html.Tokenizer) so it can support SWAN's mustache
//    delimiters, provisional RCDATA/RAWTEXT end-tag matching, and
//    author-defined self-closing tags (§4.2).

package swan

import (
	"strings"
	"unicode"
)

// tstate is one member of the tokenizer's finite state set (§4.2).
type tstate int

const (
	tsData tstate = iota
	tsTagOpen
	tsEndTagOpen
	tsTagName
	tsRCData
	tsRawText
	tsBeforeAttributeName
	tsAttributeName
	tsAfterAttributeName
	tsBeforeAttributeValue
	tsAttributeValueDoubleQuoted
	tsAttributeValueSingleQuoted
	tsAttributeValueUnquoted
	tsAfterAttributeValueQuoted
	tsSelfClosingStartTag
	tsBogusComment
	tsMarkupDeclarationOpen
	tsComment
)

// cpRec is one code point pulled from the reader together with the source
// position it started at, so the tokenizer can freely look ahead without
// losing the ability to compute token ranges.
type cpRec struct {
	cp     rune
	offset int
	line   int
	col    int
}

// tokenizer drives tstate over code points from a codePointReader, emitting
// Tokens. It never panics on malformed input; problems are reported via
// errs and the state machine keeps going (§4.2, §7).
type tokenizer struct {
	r   *codePointReader
	buf []cpRec

	state    tstate
	errs     *errorList
	comments *[]Token

	// lastTagOpenValue is the lower-cased name of the most recently opened
	// start tag; used to match provisional RCDATA/RAWTEXT end tags.
	lastTagOpenValue string

	// contentState is tsRCData or tsRawText while inside a <textarea> or
	// <filter>/<import-sjs> body; tsData otherwise. Set by the tree
	// builder via SetContentState once it sees the start tag (§4.5).
	contentState tstate

	// expressionDepth gates '<' tag-open recognition off while a
	// mustache is open (§4.2, §9 Open Question: RAWTEXT gates on this
	// flag too, matching the canonical "more featureful" variant).
	expressionDepth int

	pending []Token

	// tag-building state
	tagStart    int
	tagStartPos Position
	tagName     strings.Builder
	tagIsEnd    bool
	tagHadAttrs bool

	attrNameStart int
	attrNamePos   Position
	attrName      strings.Builder
	seenAttrs     map[string]bool

	quote rune

	textStart    int
	textPos      Position
	text         strings.Builder
	textAllSpace bool

	mustacheOpenIsTwoWay bool
	mustacheBraceDepth   int

	// attrHadMustache marks that the attribute value currently being
	// scanned has already produced a mustache, so its remaining literal
	// chunks are typed HTMLAttrLiteral rather than HTMLLiteral (§4.3).
	attrHadMustache bool

	// provisional holds a tentative end-tag token under construction while
	// matching an RCDATA/RAWTEXT closing tag name (§4.2, §9 design notes:
	// "an explicit Option<Token> slot over exception-driven rewind").
	provisional *Token

	closed bool

	// ltOffset/ltPos remember the position of the most recently consumed
	// '<' so TagOpen/EndTagOpen tokens can start there.
	ltOffset int
	ltPos    Position
}

func newTokenizer(src string, errs *errorList, comments *[]Token) *tokenizer {
	t := &tokenizer{
		errs:         errs,
		comments:     comments,
		state:        tsData,
		contentState: tsData,
		seenAttrs:    map[string]bool{},
	}
	t.r = newCodePointReader(src, t.onReaderError)
	return t
}

func (t *tokenizer) onReaderError(code ErrorCode, index, line, column int, msg string) {
	t.errs.add(&ParseError{Code: code, Message: msg, Index: index, Line: line, Column: column})
}

func (t *tokenizer) reportAt(code ErrorCode, index, line, column int, msg string) {
	t.errs.add(&ParseError{Code: code, Message: msg, Index: index, Line: line, Column: column})
}

func (t *tokenizer) fill(n int) {
	for len(t.buf) <= n {
		off, ln, col := t.curPos()
		cp := t.r.consumeNext()
		t.buf = append(t.buf, cpRec{cp, off, ln, col})
	}
}

// curPos returns the position of the next code point to be consumed.
func (t *tokenizer) curPos() (int, int, int) {
	if len(t.buf) > 0 {
		c := t.buf[0]
		return c.offset, c.line, c.col
	}
	return t.r.offset, t.r.line, t.r.column
}

func (t *tokenizer) peek(n int) cpRec {
	t.fill(n)
	return t.buf[n]
}

func (t *tokenizer) advance() cpRec {
	t.fill(0)
	c := t.buf[0]
	t.buf = t.buf[1:]
	return c
}

func (t *tokenizer) pos() Position {
	_, ln, col := t.curPos()
	return Position{Line: ln, Column: col}
}

func (t *tokenizer) offset() int {
	off, _, _ := t.curPos()
	return off
}

// setContentState is called by the tree builder before consuming an
// RCDATA/RAWTEXT element's body (§4.5).
func (t *tokenizer) setContentState(s tstate) {
	t.contentState = s
	t.state = s
}

// SetContentState is the exported form used by the tree builder.
func (t *tokenizer) SetContentState(rcdata, rawtext bool) {
	switch {
	case rcdata:
		t.setContentState(tsRCData)
	case rawtext:
		t.setContentState(tsRawText)
	default:
		t.setContentState(tsData)
	}
}

func isSpaceCP(cp rune) bool {
	return cp == ' ' || cp == '\t' || cp == '\n' || cp == '\f'
}

func isAsciiAlpha(cp rune) bool {
	return (cp >= 'a' && cp <= 'z') || (cp >= 'A' && cp <= 'Z')
}

// nextToken returns the next token, or (Token{}, false) at true EOF (§4.2).
func (t *tokenizer) nextToken() (Token, bool) {
	if len(t.pending) > 0 {
		tok := t.pending[0]
		t.pending = t.pending[1:]
		return tok, true
	}
	for {
		if t.step() {
			if len(t.pending) > 0 {
				tok := t.pending[0]
				t.pending = t.pending[1:]
				return tok, true
			}
			continue
		}
		if len(t.pending) > 0 {
			tok := t.pending[0]
			t.pending = t.pending[1:]
			return tok, true
		}
		return Token{}, false
	}
}

// step advances the state machine by (approximately) one code point.
// It returns true while there is still work to do (even if nothing was
// queued this round), and false once EOF has been fully drained.
func (t *tokenizer) step() bool {
	if t.closed {
		return false
	}

	c := t.peek(0)
	if c.cp == eofRune {
		t.closeAtEOF()
		t.closed = true
		return false
	}

	// Mustache recognition applies uniformly across the "outer" content
	// states, independent of the concrete tstate dispatch below (§4.2).
	if t.tryOpenMustache() {
		return true
	}

	switch t.state {
	case tsData:
		t.stepData()
	case tsRCData, tsRawText:
		t.stepRCDataLike()
	case tsTagOpen:
		t.stepTagOpen()
	case tsEndTagOpen:
		t.stepEndTagOpen()
	case tsTagName:
		t.stepTagName()
	case tsBeforeAttributeName:
		t.stepBeforeAttributeName()
	case tsAttributeName:
		t.stepAttributeName()
	case tsAfterAttributeName:
		t.stepAfterAttributeName()
	case tsBeforeAttributeValue:
		t.stepBeforeAttributeValue()
	case tsAttributeValueDoubleQuoted:
		t.stepAttributeValueQuoted('"')
	case tsAttributeValueSingleQuoted:
		t.stepAttributeValueQuoted('\'')
	case tsAttributeValueUnquoted:
		t.stepAttributeValueUnquoted()
	case tsAfterAttributeValueQuoted:
		t.stepAfterAttributeValueQuoted()
	case tsSelfClosingStartTag:
		t.stepSelfClosingStartTag()
	case tsMarkupDeclarationOpen:
		t.stepMarkupDeclarationOpen()
	case tsComment:
		t.stepComment()
	case tsBogusComment:
		t.stepBogusComment()
	default:
		t.stepData()
	}
	return true
}

// inAttributeValue reports whether the current state is one of the
// attribute-value states (mustache/{=...=} recognition differs there).
func (t *tokenizer) inAttributeValue() bool {
	switch t.state {
	case tsAttributeValueDoubleQuoted, tsAttributeValueSingleQuoted, tsAttributeValueUnquoted:
		return true
	}
	return false
}

func (t *tokenizer) inQuotedAttributeValue() bool {
	return t.state == tsAttributeValueDoubleQuoted || t.state == tsAttributeValueSingleQuoted
}

// tryOpenMustache implements the X_EXPRESSION_START transition: "{" is
// speculatively checked against a following "{" (any context) or "=" (only
// inside a quoted attribute value) (§4.2, §6).
func (t *tokenizer) tryOpenMustache() bool {
	if t.expressionDepth > 0 {
		return t.scanMustacheBody()
	}
	if t.state == tsTagOpen || t.state == tsEndTagOpen || t.state == tsTagName ||
		t.state == tsBeforeAttributeName || t.state == tsAttributeName ||
		t.state == tsAfterAttributeName || t.state == tsBeforeAttributeValue ||
		t.state == tsSelfClosingStartTag || t.state == tsAfterAttributeValueQuoted ||
		t.state == tsComment || t.state == tsBogusComment || t.state == tsMarkupDeclarationOpen {
		return false
	}
	c0 := t.peek(0)
	if c0.cp != '{' {
		return false
	}
	c1 := t.peek(1)
	twoWay := false
	if c1.cp == '{' {
		twoWay = false
	} else if c1.cp == '=' && t.inQuotedAttributeValue() {
		twoWay = true
	} else {
		return false
	}

	if t.inAttributeValue() {
		t.attrHadMustache = true
		t.flushLiteralRun(HTMLAttrLiteral)
	} else {
		t.closeOpenTextRun()
	}

	start := c0.offset
	pos := Position{c0.line, c0.col}
	t.advance()
	t.advance()
	val := "{{"
	if twoWay {
		val = "{="
	}
	tok := Token{Type: XMustacheStart, Value: val, Range: Range{start, t.offset()}, Loc: Loc{pos, t.pos()}}
	t.pending = append(t.pending, tok)

	t.expressionDepth++
	t.mustacheOpenIsTwoWay = twoWay
	t.mustacheBraceDepth = 0
	t.textStart = t.offset()
	t.textPos = t.pos()
	t.text.Reset()
	return true
}

// scanMustacheBody consumes payload content between XMustacheStart and
// XMustacheEnd, tracking nested braces so inline-object literals like
// "{{ a: 1, b: {c: 2} }}" don't close prematurely (§4.6).
func (t *tokenizer) scanMustacheBody() bool {
	c0 := t.peek(0)

	isClose := false
	if !t.mustacheOpenIsTwoWay {
		if c0.cp == '}' && t.mustacheBraceDepth == 0 {
			c1 := t.peek(1)
			if c1.cp == '}' {
				isClose = true
			}
		}
	} else {
		if c0.cp == '=' && t.mustacheBraceDepth == 0 {
			c1 := t.peek(1)
			if c1.cp == '}' {
				isClose = true
			}
		}
	}

	if isClose {
		t.flushMustacheText()
		start := c0.offset
		pos := Position{c0.line, c0.col}
		t.advance()
		t.advance()
		val := "}}"
		if t.mustacheOpenIsTwoWay {
			val = "=}"
		}
		tok := Token{Type: XMustacheEnd, Value: val, Range: Range{start, t.offset()}, Loc: Loc{pos, t.pos()}}
		t.pending = append(t.pending, tok)
		t.expressionDepth--
		t.textStart = t.offset()
		t.textPos = t.pos()
		t.text.Reset()
		return true
	}

	if c0.cp == '{' {
		t.mustacheBraceDepth++
	} else if c0.cp == '}' && t.mustacheBraceDepth > 0 {
		t.mustacheBraceDepth--
	}
	if c0.cp == 0 {
		t.reportAt(ErrUnexpectedNullCharacter, c0.offset, c0.line, c0.col, "unexpected null character")
		t.text.WriteRune(runeError)
	} else {
		t.text.WriteRune(c0.cp)
	}
	t.advance()
	return true
}

func (t *tokenizer) flushMustacheText() {
	if t.text.Len() == 0 {
		return
	}
	tok := Token{
		Type:  HTMLText,
		Value: t.text.String(),
		Range: Range{t.textStart, t.offset()},
		Loc:   Loc{t.textPos, t.pos()},
	}
	t.pending = append(t.pending, tok)
	t.text.Reset()
}

// closeAtEOF finalises whatever the state machine was in the middle of when
// the input ran out: an unterminated tag reports eof-in-tag and still emits
// its open-tag token if one was pending, an unterminated comment reports
// eof-in-comment and flushes it, and plain text is flushed as usual (§4.2,
// §7).
func (t *tokenizer) closeAtEOF() {
	switch t.state {
	case tsTagName:
		t.reportAt(ErrEOFInTag, t.offset(), t.pos().Line, t.pos().Column, "unexpected end of file in tag")
		t.emitTagOpenToken()
	case tsTagOpen, tsEndTagOpen, tsBeforeAttributeName, tsAttributeName, tsAfterAttributeName,
		tsBeforeAttributeValue, tsAttributeValueDoubleQuoted, tsAttributeValueSingleQuoted,
		tsAttributeValueUnquoted, tsAfterAttributeValueQuoted, tsSelfClosingStartTag,
		tsMarkupDeclarationOpen:
		t.reportAt(ErrEOFInTag, t.offset(), t.pos().Line, t.pos().Column, "unexpected end of file in tag")
	case tsComment:
		t.reportAt(ErrEOFInComment, t.offset(), t.pos().Line, t.pos().Column, "unexpected end of file in comment")
		t.emitComment()
	case tsBogusComment:
		tok := Token{Type: HTMLBogusComment, Value: t.text.String(), Range: Range{t.tagStart, t.offset()}, Loc: Loc{t.tagStartPos, t.pos()}}
		*t.comments = append(*t.comments, tok)
		t.text.Reset()
	default:
		t.closeOpenTextRun()
	}
}

// closeOpenTextRun flushes whatever text has accumulated in DATA/RCDATA/
// RAWTEXT scanning before a tag or mustache interrupts the run.
func (t *tokenizer) closeOpenTextRun() {
	if t.expressionDepth > 0 {
		t.flushMustacheText()
		return
	}
	if t.text.Len() == 0 {
		return
	}
	typ := HTMLText
	switch t.contentState {
	case tsRCData:
		typ = HTMLRCDataText
	case tsRawText:
		typ = HTMLRawText
	default:
		if t.textAllSpace {
			typ = HTMLWhitespace
		}
	}
	tok := Token{
		Type:  typ,
		Value: t.text.String(),
		Range: Range{t.textStart, t.offset()},
		Loc:   Loc{t.textPos, t.pos()},
	}
	t.pending = append(t.pending, tok)
	t.text.Reset()
	t.textAllSpace = true
}

func (t *tokenizer) appendTextRune(cp rune) {
	if t.text.Len() == 0 {
		t.textStart = t.offset()
		t.textPos = t.pos()
		t.textAllSpace = true
	}
	if cp == 0 {
		t.reportAt(ErrUnexpectedNullCharacter, t.offset(), t.pos().Line, t.pos().Column, "unexpected null character")
		cp = runeError
	}
	if !isSpaceCP(cp) {
		t.textAllSpace = false
	}
	t.text.WriteRune(cp)
}

// stepData handles the DATA state: plain top-level text.
func (t *tokenizer) stepData() {
	c := t.peek(0)
	if c.cp == '<' {
		t.closeOpenTextRun()
		t.ltOffset, t.ltPos = c.offset, Position{c.line, c.col}
		t.advance()
		t.state = tsTagOpen
		return
	}
	t.appendTextRune(c.cp)
	t.advance()
}

// stepRCDataLike handles RCDATA and RAWTEXT: like DATA but '<' only opens a
// tag if it is the start of this element's own closing tag (§4.2, §9).
func (t *tokenizer) stepRCDataLike() {
	c := t.peek(0)
	if c.cp == '<' {
		c1 := t.peek(1)
		if c1.cp == '/' {
			if t.tryProvisionalEndTag() {
				return
			}
		}
	}
	t.appendTextRune(c.cp)
	t.advance()
}

// tryProvisionalEndTag speculatively matches "</name" against
// lastTagOpenValue by peeking, without consuming anything (§4.2, §9). On a
// mismatch it returns false and nothing is consumed or emitted; on a match
// it builds the HTMLEndTagOpen token in the provisional slot, consumes
// "</name", and commits and emits the token.
func (t *tokenizer) tryProvisionalEndTag() bool {
	start := t.peek(0)
	// Peek past "</" and the candidate name without consuming.
	i := 2
	var name strings.Builder
	for {
		c := t.peek(i)
		if !isAsciiAlpha(c.cp) && !(name.Len() > 0 && (unicode.IsDigit(c.cp) || c.cp == '-')) {
			break
		}
		name.WriteRune(unicode.ToLower(c.cp))
		i++
	}
	next := t.peek(i)
	matches := name.Len() > 0 &&
		strings.EqualFold(name.String(), t.lastTagOpenValue) &&
		(isSpaceCP(next.cp) || next.cp == '/' || next.cp == '>' || next.cp == eofRune)

	if !matches {
		return false
	}

	prov := Token{
		Type:  HTMLEndTagOpen,
		Value: name.String(),
		Range: Range{start.offset, 0},
		Loc:   Loc{Position{start.line, start.col}, Position{}},
	}
	prov.provisional = true
	t.provisional = &prov

	t.closeOpenTextRun()
	for j := 0; j < i; j++ {
		t.advance()
	}
	end := t.offset()
	prov.Range[1] = end
	prov.Loc.End = t.pos()
	prov.provisional = false
	t.provisional = nil
	t.pending = append(t.pending, prov)

	t.tagIsEnd = true
	t.tagHadAttrs = false
	t.tagName.Reset()
	t.tagName.WriteString(name.String())
	t.state = tsBeforeAttributeName
	t.attrNameStart, t.attrNamePos = 0, Position{}
	return true
}

func (t *tokenizer) stepTagOpen() {
	c := t.peek(0)
	switch {
	case c.cp == '/':
		t.advance()
		t.state = tsEndTagOpen
	case isAsciiAlpha(c.cp):
		t.tagStart = t.priorLtOffset()
		t.tagStartPos = t.priorLtPos()
		t.tagIsEnd = false
		t.tagHadAttrs = false
		t.tagName.Reset()
		t.beginTagName()
	case c.cp == '!':
		t.tagStart = t.priorLtOffset()
		t.tagStartPos = t.priorLtPos()
		t.advance()
		t.state = tsMarkupDeclarationOpen
	case c.cp == '?':
		t.tagStart = t.priorLtOffset()
		t.tagStartPos = t.priorLtPos()
		t.state = tsBogusComment
		t.text.Reset()
	default:
		// "<" not followed by a valid tag-open construct: treat as text.
		t.appendTextRune('<')
		t.state = t.contentState
	}
}

// priorLtOffset/priorLtPos recover the position of the '<' that put us into
// tsTagOpen; stepData records it in ltOffset/ltPos before consuming it.
func (t *tokenizer) priorLtOffset() int { return t.ltOffset }
func (t *tokenizer) priorLtPos() Position { return t.ltPos }

func (t *tokenizer) beginTagName() {
	t.state = tsTagName
}

func (t *tokenizer) stepEndTagOpen() {
	c := t.peek(0)
	if isAsciiAlpha(c.cp) {
		t.tagStart = t.ltOffset
		t.tagStartPos = t.ltPos
		t.tagIsEnd = true
		t.tagHadAttrs = false
		t.tagName.Reset()
		t.state = tsTagName
		return
	}
	// Malformed end tag; consume as bogus comment.
	t.reportAt(ErrInvalidEndTag, t.ltOffset, t.ltPos.Line, t.ltPos.Column, "invalid end tag")
	t.tagStart = t.ltOffset
	t.tagStartPos = t.ltPos
	t.state = tsBogusComment
	t.text.Reset()
}

func (t *tokenizer) stepTagName() {
	c := t.peek(0)
	switch {
	case isSpaceCP(c.cp):
		t.emitTagOpenToken()
		t.advance()
		t.state = tsBeforeAttributeName
	case c.cp == '/':
		t.emitTagOpenToken()
		t.advance()
		t.state = tsSelfClosingStartTag
	case c.cp == '>':
		t.emitTagOpenToken()
		t.emitTagClose()
		t.advance()
		t.afterTagClose()
	case c.cp == eofRune:
		t.emitTagOpenToken()
	default:
		t.tagName.WriteRune(unicode.ToLower(c.cp))
		t.advance()
	}
}

func (t *tokenizer) emitTagOpenToken() {
	if t.tagIsEnd {
		tok := Token{
			Type:  HTMLEndTagOpen,
			Value: t.tagName.String(),
			Range: Range{t.tagStart, t.offset()},
			Loc:   Loc{t.tagStartPos, t.pos()},
		}
		t.pending = append(t.pending, tok)
		return
	}
	tok := Token{
		Type:  HTMLTagOpen,
		Value: t.tagName.String(),
		Range: Range{t.tagStart, t.offset()},
		Loc:   Loc{t.tagStartPos, t.pos()},
	}
	t.pending = append(t.pending, tok)
	t.lastTagOpenValue = t.tagName.String()
}

func (t *tokenizer) emitTagClose() {
	tok := Token{Type: HTMLTagClose, Value: ">", Range: Range{t.offset(), t.offset() + 1}}
	tok.Loc = Loc{t.pos(), t.pos()}
	t.pending = append(t.pending, tok)
}

func (t *tokenizer) afterTagClose() {
	if t.tagIsEnd && t.tagHadAttrs {
		t.reportAt(ErrEndTagWithAttributes, t.tagStart, t.tagStartPos.Line, t.tagStartPos.Column, "end tag with attributes")
	}
	t.state = t.contentState
	t.seenAttrs = map[string]bool{}
}

func (t *tokenizer) stepBeforeAttributeName() {
	c := t.peek(0)
	switch {
	case isSpaceCP(c.cp):
		t.advance()
	case c.cp == '/':
		t.advance()
		t.state = tsSelfClosingStartTag
	case c.cp == '>':
		t.emitTagClose()
		t.advance()
		t.afterTagClose()
	case c.cp == eofRune:
		// handled by caller
	default:
		t.attrNameStart = t.offset()
		t.attrNamePos = t.pos()
		t.attrName.Reset()
		t.state = tsAttributeName
	}
}

func (t *tokenizer) stepAttributeName() {
	c := t.peek(0)
	switch {
	case isSpaceCP(c.cp) || c.cp == '/' || c.cp == '>' || c.cp == eofRune:
		t.emitAttrName()
		t.state = tsAfterAttributeName
	case c.cp == '=':
		t.emitAttrName()
		t.advance()
		t.emitAssoc()
		t.state = tsBeforeAttributeValue
	default:
		t.attrName.WriteRune(unicode.ToLower(c.cp))
		t.advance()
	}
}

func (t *tokenizer) emitAttrName() {
	name := t.attrName.String()
	if t.seenAttrs[name] {
		t.reportAt(ErrDuplicateAttribute, t.attrNameStart, t.attrNamePos.Line, t.attrNamePos.Column, "duplicate attribute")
	}
	t.seenAttrs[name] = true
	t.tagHadAttrs = true
	tok := Token{Type: HTMLIdentifier, Value: name, Range: Range{t.attrNameStart, t.offset()}, Loc: Loc{t.attrNamePos, t.pos()}}
	t.pending = append(t.pending, tok)
}

func (t *tokenizer) emitAssoc() {
	tok := Token{Type: HTMLAssociation, Value: "=", Range: Range{t.offset() - 1, t.offset()}}
	tok.Loc = Loc{Position{t.pos().Line, t.pos().Column - 1}, t.pos()}
	t.pending = append(t.pending, tok)
}

func (t *tokenizer) stepAfterAttributeName() {
	c := t.peek(0)
	switch {
	case isSpaceCP(c.cp):
		t.advance()
	case c.cp == '/':
		t.advance()
		t.state = tsSelfClosingStartTag
	case c.cp == '=':
		t.advance()
		t.emitAssoc()
		t.state = tsBeforeAttributeValue
	case c.cp == '>':
		t.emitTagClose()
		t.advance()
		t.afterTagClose()
	default:
		t.attrNameStart = t.offset()
		t.attrNamePos = t.pos()
		t.attrName.Reset()
		t.state = tsAttributeName
	}
}

func (t *tokenizer) stepBeforeAttributeValue() {
	c := t.peek(0)
	switch {
	case isSpaceCP(c.cp):
		t.advance()
	case c.cp == '"':
		t.attrHadMustache = false
		t.emitQuote('"')
		t.advance()
		t.state = tsAttributeValueDoubleQuoted
		t.beginLiteralRun()
	case c.cp == '\'':
		t.attrHadMustache = false
		t.emitQuote('\'')
		t.advance()
		t.state = tsAttributeValueSingleQuoted
		t.beginLiteralRun()
	case c.cp == '>':
		t.emitTagClose()
		t.advance()
		t.afterTagClose()
	default:
		t.attrHadMustache = false
		t.state = tsAttributeValueUnquoted
		t.beginLiteralRun()
	}
}

func (t *tokenizer) emitQuote(q rune) {
	tok := Token{Type: HTMLQuote, Value: string(q), Range: Range{t.offset(), t.offset() + 1}}
	tok.Loc = Loc{t.pos(), t.pos()}
	t.pending = append(t.pending, tok)
	t.quote = q
}

func (t *tokenizer) beginLiteralRun() {
	t.text.Reset()
	t.textStart = t.offset()
	t.textPos = t.pos()
}

// flushLiteralRun emits the accumulated attribute-value literal chunk.
// It is called with HTMLAttrLiteral when the chunk sits next to a mustache
// (or a mustache already appeared earlier in this attribute's value) and
// HTMLLiteral for a plain, mustache-free value (§4.3).
func (t *tokenizer) flushLiteralRun(preferred TokenType) {
	if t.text.Len() == 0 {
		return
	}
	typ := preferred
	if t.attrHadMustache {
		typ = HTMLAttrLiteral
	}
	tok := Token{Type: typ, Value: t.text.String(), Range: Range{t.textStart, t.offset()}, Loc: Loc{t.textPos, t.pos()}}
	t.pending = append(t.pending, tok)
	t.text.Reset()
}

func (t *tokenizer) stepAttributeValueQuoted(q rune) {
	c := t.peek(0)
	if c.cp == q {
		t.flushLiteralRun(HTMLLiteral)
		t.emitQuote(q)
		t.advance()
		t.state = tsAfterAttributeValueQuoted
		return
	}
	if c.cp == 0 {
		t.reportAt(ErrUnexpectedNullCharacter, c.offset, c.line, c.col, "unexpected null character in attribute value")
	}
	if t.text.Len() == 0 {
		t.textStart = c.offset
		t.textPos = Position{c.line, c.col}
	}
	t.text.WriteRune(c.cp)
	t.advance()
}

func (t *tokenizer) stepAttributeValueUnquoted() {
	c := t.peek(0)
	if isSpaceCP(c.cp) {
		t.flushLiteralRun(HTMLLiteral)
		t.advance()
		t.state = tsBeforeAttributeName
		return
	}
	if c.cp == '>' {
		t.flushLiteralRun(HTMLLiteral)
		t.emitTagClose()
		t.advance()
		t.afterTagClose()
		return
	}
	if c.cp == 0 {
		t.reportAt(ErrUnexpectedNullCharacter, c.offset, c.line, c.col, "unexpected null character in attribute value")
	}
	if t.text.Len() == 0 {
		t.textStart = c.offset
		t.textPos = Position{c.line, c.col}
	}
	t.text.WriteRune(c.cp)
	t.advance()
}

func (t *tokenizer) stepAfterAttributeValueQuoted() {
	c := t.peek(0)
	switch {
	case isSpaceCP(c.cp):
		t.advance()
		t.state = tsBeforeAttributeName
	case c.cp == '/':
		t.advance()
		t.state = tsSelfClosingStartTag
	case c.cp == '>':
		t.emitTagClose()
		t.advance()
		t.afterTagClose()
	default:
		t.reportAt(ErrMissingWhitespaceBetweenAttrs, t.offset(), t.pos().Line, t.pos().Column, "missing whitespace between attributes")
		t.state = tsBeforeAttributeName
	}
}

// stepSelfClosingStartTag: SWAN accepts "/>" on any tag (§4.2 "Void-element
// policy": self-closing is author-defined, not restricted to a void set).
func (t *tokenizer) stepSelfClosingStartTag() {
	c := t.peek(0)
	if c.cp == '>' {
		if t.tagIsEnd {
			t.reportAt(ErrEndTagWithTrailingSolidus, t.offset(), t.pos().Line, t.pos().Column, "end tag with trailing solidus")
		}
		tok := Token{Type: HTMLSelfClosingTagClose, Value: "/>", Range: Range{t.offset() - 1, t.offset() + 1}}
		tok.Loc = Loc{Position{t.pos().Line, t.pos().Column - 1}, t.pos()}
		t.pending = append(t.pending, tok)
		t.advance()
		t.afterTagClose()
		return
	}
	t.state = tsBeforeAttributeName
}

func (t *tokenizer) stepMarkupDeclarationOpen() {
	if t.peek(0).cp == '-' && t.peek(1).cp == '-' {
		t.advance()
		t.advance()
		t.state = tsComment
		t.text.Reset()
		t.textStart = t.offset()
		t.textPos = t.pos()
		return
	}
	t.state = tsBogusComment
	t.text.Reset()
	t.textStart = t.offset()
	t.textPos = t.pos()
}

func (t *tokenizer) stepComment() {
	c := t.peek(0)
	if c.cp == eofRune {
		t.reportAt(ErrEOFInComment, t.offset(), t.pos().Line, t.pos().Column, "unexpected end of file in comment")
		t.emitComment()
		return
	}
	if c.cp == '-' && t.peek(1).cp == '-' {
		if t.peek(2).cp == '>' {
			t.emitComment()
			t.advance()
			t.advance()
			t.advance()
			t.state = t.contentState
			return
		}
		if t.peek(2).cp == '!' && t.peek(3).cp == '>' {
			t.reportAt(ErrIncorrectlyClosedComment, t.offset(), t.pos().Line, t.pos().Column, "incorrectly closed comment")
			t.emitComment()
			t.advance()
			t.advance()
			t.advance()
			t.advance()
			t.state = t.contentState
			return
		}
	}
	if c.cp == '<' && t.peek(1).cp == '!' && t.peek(2).cp == '-' && t.peek(3).cp == '-' {
		t.reportAt(ErrNestedComment, c.offset, c.line, c.col, "nested comment")
	}
	if c.cp == 0 {
		t.reportAt(ErrUnexpectedNullCharacter, c.offset, c.line, c.col, "unexpected null character")
		t.text.WriteRune(runeError)
	} else {
		t.text.WriteRune(c.cp)
	}
	t.advance()
}

func (t *tokenizer) emitComment() {
	tok := Token{Type: HTMLComment, Value: t.text.String(), Range: Range{t.textStart - 4, t.offset()}, Loc: Loc{t.textPos, t.pos()}}
	*t.comments = append(*t.comments, tok)
	t.text.Reset()
}

func (t *tokenizer) stepBogusComment() {
	c := t.peek(0)
	if c.cp == '>' || c.cp == eofRune {
		tok := Token{Type: HTMLBogusComment, Value: t.text.String(), Range: Range{t.tagStart, t.offset()}, Loc: Loc{t.tagStartPos, t.pos()}}
		*t.comments = append(*t.comments, tok)
		t.text.Reset()
		if c.cp == '>' {
			t.advance()
		}
		t.state = t.contentState
		return
	}
	t.text.WriteRune(c.cp)
	t.advance()
}

