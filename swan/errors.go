// Copyright 2024 Daniel Potapov. Adapted 2025 for the Swan parsing engine:
// component-error sibling-context rendering becomes ParseError's node-context
// rendering.

package swan

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ErrorCode enumerates the recoverable problems the engine can report
// (§4.2, §7). The HTML-spec codes are a small representative subset;
// the SWAN-specific ones are exact.
type ErrorCode string

const (
	ErrUnexpectedNullCharacter        ErrorCode = "unexpected-null-character"
	ErrUnexpectedCharacterInAttrName  ErrorCode = "unexpected-character-in-attribute-name"
	ErrMissingWhitespaceBetweenAttrs  ErrorCode = "missing-whitespace-between-attributes"
	ErrDuplicateAttribute             ErrorCode = "duplicate-attribute"
	ErrEndTagWithAttributes           ErrorCode = "end-tag-with-attributes"
	ErrEndTagWithTrailingSolidus      ErrorCode = "end-tag-with-trailing-solidus"
	ErrAbruptClosingOfEmptyComment    ErrorCode = "abrupt-closing-of-empty-comment"
	ErrIncorrectlyClosedComment       ErrorCode = "incorrectly-closed-comment"
	ErrNestedComment                  ErrorCode = "nested-comment"
	ErrEOFInTag                       ErrorCode = "eof-in-tag"
	ErrEOFInComment                   ErrorCode = "eof-in-comment"
	ErrSurrogateInInputStream         ErrorCode = "surrogate-in-input-stream"
	ErrNoncharacterInInputStream      ErrorCode = "noncharacter-in-input-stream"
	ErrControlCharacterInInputStream  ErrorCode = "control-character-in-input-stream"

	ErrMissingExpressionEndTag ErrorCode = "missing-expression-end-tag"
	ErrMissingEndTag           ErrorCode = "missing-end-tag"
	ErrInvalidEndTag           ErrorCode = "x-invalid-end-tag"
	ErrInvalidDirective        ErrorCode = "x-invalid-directive"
	ErrExpressionError         ErrorCode = "x-expression-error"
	ErrUnreachable             ErrorCode = "unreachable"
)

// ParseError is a single recovered problem, sorted into document.errors by
// Index (§7). It always carries enough context to be rendered without the
// original source string in hand.
type ParseError struct {
	Code    ErrorCode
	Message string
	Index   int // absolute UTF-16 code-unit offset
	Line    int
	Column  int

	// Suggestion is a "did you mean" hint for invalid-directive errors,
	// populated by suggestDirective (see directive.go).
	Suggestion string

	// err is the wrapped underlying error, if this ParseError relocates a
	// script-parser failure (§4.6, §7).
	err error

	// node is the enclosing element used to build human-readable context.
	// No code in this package sets it, so for every error the parser
	// reports it is nil and Context returns "".
	node *XElement
}

func (e *ParseError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (%d:%d): %s (did you mean %q?)", e.Code, e.Line, e.Column, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("%s (%d:%d): %s", e.Code, e.Line, e.Column, e.Message)
}

func (e *ParseError) Unwrap() error { return e.err }

// Context renders the erroring node together with up to two siblings on
// either side as an XML fragment, mirroring chtml.ComponentError.HTMLContext.
func (e *ParseError) Context() string {
	if e.node == nil {
		return ""
	}
	doc := buildErrorContext(e.node)
	return renderErrorContext(doc)
}

// errorList keeps document.errors sorted by Index as errors are appended
// (§7 "Errors are stored sorted by source offset").
type errorList struct {
	items []*ParseError
}

func (l *errorList) add(e *ParseError) {
	i := len(l.items)
	for i > 0 && l.items[i-1].Index > e.Index {
		i--
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = e
}

// buildErrorContext creates an XML tree around n's up-to-two neighbours on
// each side, as chtml.buildErrorContext does for etree.Token siblings.
func buildErrorContext(n *XElement) *etree.Element {
	doc := &etree.Element{Tag: n.Name}
	for _, a := range n.StartTag.Attributes {
		doc.CreateAttr(attrName(a), attrValueString(a))
	}

	parent, _ := n.Parent.(*XElement)
	if parent == nil {
		return doc
	}

	idx := -1
	for i, c := range parent.Children {
		if c == XNode(n) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return doc
	}

	wrapper := &etree.Element{Tag: parent.Name}
	addSiblingContext(wrapper, parent.Children, idx, -1)
	wrapper.AddChild(doc)
	addSiblingContext(wrapper, parent.Children, idx, 1)
	return wrapper
}

func addSiblingContext(wrapper *etree.Element, siblings []XNode, idx, dir int) {
	count := 0
	for j := idx + dir; j >= 0 && j < len(siblings) && count < 2; j += dir {
		switch s := siblings[j].(type) {
		case *XText:
			if strings.TrimSpace(s.Value) == "" {
				continue
			}
			el := etree.NewText(s.Value)
			if dir < 0 {
				wrapper.InsertChildAt(0, el)
			} else {
				wrapper.AddChild(el)
			}
		case *XElement:
			el := etree.NewElement(s.Name)
			if dir < 0 {
				wrapper.InsertChildAt(0, el)
			} else {
				wrapper.AddChild(el)
			}
		default:
			continue
		}
		count++
	}
}

func renderErrorContext(doc *etree.Element) string {
	d := etree.NewDocument()
	d.SetRoot(doc.Copy())
	s, err := d.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

func attrName(a XAttributeOrDirective) string {
	switch v := a.(type) {
	case *XAttribute:
		return v.Key.Name
	case *XDirective:
		return v.Key.RawPrefix + v.Key.RawName
	}
	return ""
}

func attrValueString(a XAttributeOrDirective) string {
	var pieces []XAttrValuePiece
	switch v := a.(type) {
	case *XAttribute:
		pieces = v.Value.Pieces
	case *XDirective:
		pieces = v.Value.Pieces
	}
	var sb strings.Builder
	for _, p := range pieces {
		if l, ok := p.(*XLiteral); ok {
			sb.WriteString(l.Value)
		}
	}
	return sb.String()
}
