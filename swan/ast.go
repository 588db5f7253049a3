// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// Modifications:
// Copyright 2025 The Swan Authors
//  - Replaced golang.org/x/net/html.Node's sibling-linked generic node
//    with a typed variant hierarchy carrying UTF-16 code-unit ranges and
//    locations, per the SWAN template data model (§3).

package swan

import (
	"strings"
	"unicode/utf8"
)

// XNode is implemented by every node in a parsed document (§3).
type XNode interface {
	NodeRange() Range
	NodeLoc() Loc
	NodeParent() XNode
	setParent(XNode)
	setRange(Range)
	setLoc(Loc)
}

// base is embedded by every concrete node type; it supplies the range/loc/
// parent bookkeeping common to all of them (§3 invariant 1, "Lifecycle").
type base struct {
	Range  Range
	Loc    Loc
	Parent XNode
}

func (b *base) NodeRange() Range  { return b.Range }
func (b *base) NodeLoc() Loc      { return b.Loc }
func (b *base) NodeParent() XNode { return b.Parent }
func (b *base) setParent(p XNode) { b.Parent = p }
func (b *base) setRange(r Range)  { b.Range = r }
func (b *base) setLoc(l Loc)      { b.Loc = l }

// XDocument is the root of a parsed document.
type XDocument struct {
	base
	Children []XNode
	Tokens   []Token
	Comments []Token
	Errors   []*ParseError
	XMLType  string // "swan" | "unknown", per FilePath (§6)
	Source   string
}

// XElement is a tag and everything between its start and end tags.
type XElement struct {
	base
	Name      string // lower-cased tag name
	RawName   string // original-case source slice
	StartTag  *XStartTag
	EndTag    *XEndTag
	Children  []XNode
	Variables []*Variable // scope declarations introduced by s-for (§3 invariant 5)
	Void      bool
}

// XStartTag holds the opening "<name ...>" or "<name .../>" of an element.
type XStartTag struct {
	base
	SelfClosing bool
	Attributes  []XAttributeOrDirective
}

// XEndTag is positional only ("</name>").
type XEndTag struct {
	base
	Name string
}

// XAttributeOrDirective is implemented by *XAttribute and *XDirective.
type XAttributeOrDirective interface {
	XNode
	attrKeyRange() Range
	attrValue() *XAttributeValue
}

// XIdentifier is a plain (non-directive) attribute name.
type XIdentifier struct {
	base
	Name string
}

// XAttribute is a plain HTML attribute: key="value pieces".
type XAttribute struct {
	base
	Key   *XIdentifier
	Value XAttributeValue
}

func (a *XAttribute) attrKeyRange() Range         { return a.Key.Range }
func (a *XAttribute) attrValue() *XAttributeValue { return &a.Value }

// XDirectiveKey is the parsed form of a directive attribute name, e.g.
// "capture-bind:tap" -> {Prefix: "capture-bind", Name: "tap"} (§6).
type XDirectiveKey struct {
	base
	Prefix    string // normalised, colon-less prefix: "s-", "bind", "catch", "capture-bind", "capture-catch"
	RawPrefix string // prefix with its colon as written; letter case is the tokenizer's lower-cased form
	Name      string
	RawName   string
}

// XDirective is an attribute whose key matches the directive grammar (§6).
type XDirective struct {
	base
	Key   *XDirectiveKey
	Value XAttributeValue
}

func (d *XDirective) attrKeyRange() Range         { return d.Key.Range }
func (d *XDirective) attrValue() *XAttributeValue { return &d.Value }

// XAttrValuePiece is implemented by *XLiteral, *XMustache and *XExpression;
// an attribute value is an ordered sequence of such pieces (§3).
type XAttrValuePiece interface {
	XNode
	isAttrValuePiece()
}

// XAttributeValue is the ordered sequence of literal/mustache/expression
// pieces making up an attribute's value.
type XAttributeValue struct {
	Pieces []XAttrValuePiece
}

// XLiteral is a literal text piece, either a whole unparsed attribute value
// (parseExpression: false) or the literal segment between mustaches.
type XLiteral struct {
	base
	Value string // decoded value
	Raw   string // as it appeared in source
}

func (*XLiteral) isAttrValuePiece() {}

// XText is a literal text run between tags.
type XText struct {
	base
	Value string
}

func (*XText) isAttrValuePiece() {} // satisfies the interface; the tree builder puts no XText in attribute values

// XMustache is a {{ ... }} or {= ... =} delimited expression.
type XMustache struct {
	base
	StartToken Token
	EndToken   Token
	Value      *XExpression
}

func (*XMustache) isAttrValuePiece() {}

// XExpression wraps the script-AST node returned by the external script
// parser (or a SwanForExpression for s-for headers), plus the references
// resolved against enclosing element scopes (§3 invariant 6).
type XExpression struct {
	base
	Expression any // <script-AST node> | *SwanForExpression | nil
	References []*Reference
}

func (*XExpression) isAttrValuePiece() {}

// SwanForExpression is the parsed form of an s-for header:
// "item, index in list trackBy expr" (§3, §4.6).
type SwanForExpression struct {
	Left    any // Identifier
	Index   any // Identifier, optional
	Right   any // Identifier/Expression
	TrackBy any // Identifier/Expression, optional
}

// XModule is the script body embedded in <import-sjs>/<filter> (§3).
type XModule struct {
	base
	Body       []any // <script statement list>
	References []*Reference
}

// Variable is a scope declaration introduced by s-for on an XElement.
type Variable struct {
	Name       string
	Node       *XElement
	References []*Reference
}

// Reference is an identifier use inside an expression that may resolve to
// an enclosing element's Variable (§3 invariant 6).
type Reference struct {
	Name     string
	Range    Range
	Resolved *Variable
}

// Serialize reconstructs source text from a document's token ranges,
// supporting the idempotence-of-reparse property (§8 property 4): calling
// Parse on Serialize's output should yield a structurally identical tree.
// doc.Tokens does not cover every unit of the source (whitespace inside a
// tag and comments produce no entry in it), so Serialize copies each
// token's slice of doc.Source and also the source between and after
// tokens -- once the ranges (UTF-16 code-unit offsets, per codePointReader)
// are translated to the UTF-8 byte offsets doc.Source is actually indexed by.
func Serialize(doc *XDocument) string {
	if doc == nil {
		return ""
	}
	if len(doc.Tokens) == 0 {
		return doc.Source
	}
	units := make([]int, 0, len(doc.Tokens)*2)
	for _, t := range doc.Tokens {
		units = append(units, t.Range[0], t.Range[1])
	}
	bytes := utf16UnitsToByteOffsets(doc.Source, units)

	var sb strings.Builder
	pos := 0
	for i := range doc.Tokens {
		start, end := bytes[2*i], bytes[2*i+1]
		if start > pos && start <= len(doc.Source) {
			sb.WriteString(doc.Source[pos:start])
		}
		if end > len(doc.Source) {
			end = len(doc.Source)
		}
		if start >= 0 && start <= end {
			sb.WriteString(doc.Source[start:end])
		}
		pos = end
	}
	if pos < len(doc.Source) {
		sb.WriteString(doc.Source[pos:])
	}
	return sb.String()
}

// utf16UnitsToByteOffsets converts a non-decreasing sequence of UTF-16
// code-unit offsets into the source's UTF-8 byte offsets, in one pass over
// source's runes. Every node/token Range in this package is a pair of such
// code-unit offsets (codePointReader counts surrogate pairs as two units),
// matching the convention espree/ESLint tooling expects; doc.Source itself
// is a plain Go (UTF-8) string, so any code indexing it by a Range must
// translate through this function first.
func utf16UnitsToByteOffsets(source string, units []int) []int {
	out := make([]int, len(units))
	unit, bytePos, oi := 0, 0, 0
	for oi < len(units) && units[oi] <= unit {
		out[oi] = bytePos
		oi++
	}
	for _, r := range source {
		w := 1
		if r > 0xFFFF {
			w = 2
		}
		unit += w
		bytePos += utf8.RuneLen(r)
		for oi < len(units) && units[oi] <= unit {
			out[oi] = bytePos
			oi++
		}
	}
	for oi < len(units) {
		out[oi] = bytePos
		oi++
	}
	return out
}
