package swan

import (
	"regexp"
	"strings"

	"github.com/expr-lang/expr/ast"
)

// identifierPayloadRE is the mustache fast path (§4.6): a payload that is
// nothing but a bare word is lifted directly to an Identifier without
// invoking the script parser at all.
var identifierPayloadRE = regexp.MustCompile(`^\s*(\w+)\s*$`)

// inlineObjectPayloadRE heuristically detects "{{ a: 1, b: 2 }}" object
// literal shorthand (§4.6, §9 "heuristic, not flagged" variant). The
// reference grammar uses a backreferenced quote (["'])...\1; RE2 has no
// backreferences, so either quote closing the key is accepted -- a
// deliberate loosening documented in DESIGN.md.
var inlineObjectPayloadRE = regexp.MustCompile(`^\s*(?:\w+\s*:|["'][\w.\-]+["']\s*:)`)

// forKeywordRE finds whitespace-delimited "in"/"trackBy" keywords in an
// s-for header (§4.6).
var forKeywordRE = regexp.MustCompile(`(\s)(in|trackBy)\s`)

// normalizeScriptError promotes any error whose offset lands at or past the
// end of the fragment to the canonical "ran off the end" message (§7).
func normalizeScriptError(err error, fragmentLen int) (msg string, idx int) {
	if se, ok := err.(*scriptError); ok {
		idx, msg = se.index, se.message
	} else {
		idx, msg = fragmentLen, err.Error()
	}
	if idx >= fragmentLen {
		msg = "Unexpected end of expression."
	}
	return msg, idx
}

func appendExpressionError(errs *errorList, err error, fragmentLen int, calc *locCalculator) {
	msg, idx := normalizeScriptError(err, fragmentLen)
	pe := &ParseError{Code: ErrExpressionError, Message: msg, Index: idx, err: err}
	calc.fixErrorLocation(pe)
	errs.add(pe)
}

// parseWrappedExpression implements the "0(<payload>)" trick (§4.6, §9):
// wrapping the payload as a call lets a general expression parser accept
// what would otherwise be an illegal bare comma-list, so a stray second
// argument can be caught and reported as its own error.
func parseWrappedExpression(payload string, payloadRange Range, calc *locCalculator, errs *errorList, sopts ScriptOptions) *XExpression {
	expr := &XExpression{}
	expr.setRange(payloadRange)

	wrapped := "0(" + payload + ")"
	node, err := defaultScriptParser.ParseExpression(wrapped, sopts)
	if err != nil {
		wrapCalc := calc.getSubCalculatorShift(-2)
		appendExpressionError(errs, err, len(wrapped), wrapCalc)
		return expr
	}
	call, ok := node.(*ast.CallNode)
	if !ok || len(call.Arguments) == 0 {
		expr.Expression = node
		expr.References = collectIdentifierRefs(node, payload, payloadRange[0])
		return expr
	}
	if len(call.Arguments) > 1 {
		errs.add(&ParseError{Code: ErrExpressionError, Message: `Unexpected ","`, Index: payloadRange[0]})
	}
	expr.Expression = call.Arguments[0]
	expr.References = collectIdentifierRefs(call.Arguments[0], payload, payloadRange[0])
	return expr
}

// processMustache implements §4.6's mustache payload pipeline: identifier
// fast path, heuristic inline-object literal, then the generic wrapped
// parse. payloadRange is the absolute [start,end) of the code between the
// mustache delimiters; docCalc is the document's root location calculator.
func processMustache(payload string, payloadRange Range, isTwoWay bool, docCalc *locCalculator, errs *errorList, opts ParseOptions) *XExpression {
	if !opts.ParseExpression {
		expr := &XExpression{}
		expr.setRange(payloadRange)
		return expr
	}

	calc := docCalc.getSubCalculatorAfter(payloadRange[0])

	if m := identifierPayloadRE.FindStringSubmatch(payload); m != nil {
		id := &ast.IdentifierNode{Value: m[1]}
		expr := &XExpression{Expression: id, References: collectIdentifierRefs(id, payload, payloadRange[0])}
		expr.setRange(payloadRange)
		return expr
	}

	if !isTwoWay && inlineObjectPayloadRE.MatchString(payload) {
		node, err := defaultScriptParser.ParseExpression("{"+payload+"}", opts.Script)
		expr := &XExpression{}
		expr.setRange(payloadRange)
		if err != nil {
			appendExpressionError(errs, err, len(payload)+2, calc)
			return expr
		}
		expr.Expression = node
		expr.References = collectIdentifierRefs(node, payload, payloadRange[0])
		return expr
	}

	return parseWrappedExpression(payload, payloadRange, calc, errs, opts.Script)
}

// processDirectiveLiteral parses a plain (non-mustache) directive/attribute
// value string as an expression, per processAttribute's "otherwise parse it
// as an expression" branch (§4.5). It shares the identifier fast path and
// generic wrapped parse with processMustache but never applies the
// mustache-only inline-object heuristic.
func processDirectiveLiteral(payload string, payloadRange Range, docCalc *locCalculator, errs *errorList, opts ParseOptions) *XExpression {
	if !opts.ParseExpression {
		expr := &XExpression{}
		expr.setRange(payloadRange)
		return expr
	}
	calc := docCalc.getSubCalculatorAfter(payloadRange[0])
	if m := identifierPayloadRE.FindStringSubmatch(payload); m != nil {
		id := &ast.IdentifierNode{Value: m[1]}
		expr := &XExpression{Expression: id, References: collectIdentifierRefs(id, payload, payloadRange[0])}
		expr.setRange(payloadRange)
		return expr
	}
	return parseWrappedExpression(payload, payloadRange, calc, errs, opts.Script)
}

// processForExpression parses an s-for header, "item, index in list trackBy
// expr" (§4.6). It splits on the global in/trackBy keyword regex (the "more
// featureful" duplicated-source variant chosen as canonical, §9), parses the
// left-hand destructure as an array literal to recover left/index, and
// parses right/trackBy independently.
func processForExpression(payload string, payloadRange Range, docCalc *locCalculator, errs *errorList, opts ParseOptions) *XExpression {
	expr := &XExpression{}
	expr.setRange(payloadRange)
	if !opts.ParseExpression {
		return expr
	}
	calc := docCalc.getSubCalculatorAfter(payloadRange[0])

	matches := forKeywordRE.FindAllStringSubmatchIndex(payload, -1)
	inStart, inEnd := -1, -1
	trackByStart, trackByEnd := -1, -1
	for _, m := range matches {
		kw := payload[m[4]:m[5]]
		switch {
		case kw == "in" && inStart == -1:
			inStart, inEnd = m[0], m[1]
		case kw == "trackBy" && inStart != -1 && trackByStart == -1 && m[0] > inEnd:
			trackByStart, trackByEnd = m[0], m[1]
		}
	}
	if inStart == -1 {
		errs.add(&ParseError{Code: ErrExpressionError, Message: "missing loop variable", Index: payloadRange[0]})
		return expr
	}

	leftPart := payload[:inStart]
	var rightPart, trackByPart string
	haveTrackBy := trackByStart != -1
	if haveTrackBy {
		rightPart = payload[inEnd:trackByStart]
		trackByPart = payload[trackByEnd:]
	} else {
		rightPart = payload[inEnd:]
	}

	leftNode, err := defaultScriptParser.ParseExpression("["+strings.TrimSpace(leftPart)+"]", opts.Script)
	if err != nil {
		appendExpressionError(errs, err, len(leftPart), calc)
		return expr
	}
	arr, ok := leftNode.(*ast.ArrayNode)
	if !ok || len(arr.Nodes) == 0 {
		errs.add(&ParseError{Code: ErrExpressionError, Message: "missing loop variable", Index: payloadRange[0]})
		return expr
	}
	forExpr := &SwanForExpression{Left: arr.Nodes[0]}
	if len(arr.Nodes) > 1 {
		forExpr.Index = arr.Nodes[1]
	}

	var refs []*Reference
	if rightNode, err := defaultScriptParser.ParseExpression(strings.TrimSpace(rightPart), opts.Script); err != nil {
		appendExpressionError(errs, err, len(rightPart), calc)
	} else {
		forExpr.Right = rightNode
		refs = append(refs, collectIdentifierRefs(rightNode, rightPart, payloadRange[0]+inEnd)...)
	}

	if haveTrackBy {
		if tbNode, err := defaultScriptParser.ParseExpression(strings.TrimSpace(trackByPart), opts.Script); err != nil {
			appendExpressionError(errs, err, len(trackByPart), calc)
		} else {
			forExpr.TrackBy = tbNode
			refs = append(refs, collectIdentifierRefs(tbNode, trackByPart, payloadRange[0]+trackByEnd)...)
		}
	}

	expr.Expression = forExpr
	expr.References = refs
	return expr
}

// processScriptModule parses the sole XText child of an <import-sjs>/
// <filter> element as a full script program and wraps it as an XModule
// (§4.6). See scriptparser.go's ParseProgram doc comment for the
// statement-splitting simplification this relies on.
func processScriptModule(textChild *XText, docCalc *locCalculator, errs *errorList, opts ParseOptions) *XModule {
	mod := &XModule{}
	mod.setRange(textChild.NodeRange())
	mod.setLoc(textChild.NodeLoc())
	if !opts.ParseExpression {
		return mod
	}
	calc := docCalc.getSubCalculatorAfter(textChild.NodeRange()[0])
	nodes, err := defaultScriptParser.ParseProgram(textChild.Value, opts.Script)
	if err != nil {
		appendExpressionError(errs, err, len(textChild.Value), calc)
	}
	body := make([]any, len(nodes))
	var refs []*Reference
	cursor := 0
	for i, n := range nodes {
		body[i] = n
		var nrefs []*Reference
		nrefs, cursor = collectIdentifierRefsFrom(n, textChild.Value, textChild.NodeRange()[0], cursor)
		refs = append(refs, nrefs...)
	}
	mod.Body = body
	mod.References = refs
	return mod
}
