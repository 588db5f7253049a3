// Copyright 2024 Daniel Potapov. Adapted 2025 for the Swan parsing engine:
// an element stack built around atom.Atom comparisons becomes the tree
// builder's SWAN content-model dispatch.

package swan

import "strings"

// buildTree drives the intermediate tokenizer to completion, assembling the
// XDocument per §4.5. tok is shared with it so content-model switches
// (RCDATA/RAWTEXT) reach the tokenizer before its next record is pulled.
func buildTree(it *intermediateTokenizer, tok *tokenizer, errs *errorList, comments *[]Token, tokens *[]Token, docCalc *locCalculator, opts ParseOptions, source string) *XDocument {
	doc := &XDocument{Source: source}

	var stack []*XElement
	top := func() XNode {
		if len(stack) == 0 {
			return doc
		}
		return stack[len(stack)-1]
	}
	appendChild := func(n XNode) {
		n.setParent(top())
		switch p := top().(type) {
		case *XDocument:
			p.Children = append(p.Children, n)
		case *XElement:
			p.Children = append(p.Children, n)
		}
	}

	for {
		rec, ok := it.next()
		if !ok {
			break
		}
		switch r := rec.(type) {
		case *irStartTag:
			handleStartTag(r, &stack, top, appendChild, tok, errs, opts, docCalc)
		case *irEndTag:
			handleEndTag(r, &stack, tok, errs, opts)
		case *irText:
			handleText(r, top, appendChild, docCalc, errs, opts)
		case *irMustache:
			handleTopMustache(r, appendChild, docCalc, errs, opts)
		}
	}

	for len(stack) > 0 {
		el := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if opts.NoOpenTag {
			errs.add(&ParseError{Code: ErrMissingEndTag, Message: "missing end tag", Index: el.NodeRange()[0]})
		}
		propagateEndLocation(el)
	}

	end := 0
	if n := len(doc.Children); n > 0 {
		end = doc.Children[n-1].NodeRange()[1]
	}
	doc.setRange(Range{0, end})
	doc.Tokens = *tokens
	doc.Comments = *comments
	doc.Errors = errs.items
	return doc
}

func handleStartTag(r *irStartTag, stack *[]*XElement, top func() XNode, appendChild func(XNode), tok *tokenizer, errs *errorList, opts ParseOptions, docCalc *locCalculator) {
	name := internTagName(r.Name)

	if len(*stack) > 0 {
		cur := (*stack)[len(*stack)-1]
		if canBeLeftOpen(cur.Name) && cur.Name == name {
			propagateEndLocation(cur)
			*stack = (*stack)[:len(*stack)-1]
			restoreContentState(*stack, tok)
		}
	}

	el := &XElement{Name: name, RawName: r.RawName, Void: isVoidElement(name)}
	st := &XStartTag{SelfClosing: r.SelfClosing}
	st.setRange(r.Range)
	st.setLoc(r.Loc)
	el.StartTag = st
	el.setRange(r.Range)
	el.setLoc(r.Loc)

	appendChild(el)

	forIdx := -1
	for i, a := range r.Attrs {
		if a.NameTok.Value == "s-for" {
			forIdx = i
			break
		}
	}

	attrResults := make([]XAttributeOrDirective, len(r.Attrs))
	if forIdx != -1 {
		av := processAttribute(r.Attrs[forIdx], docCalc, errs, opts)
		attrResults[forIdx] = av
		if d, ok := av.(*XDirective); ok && len(d.Value.Pieces) == 1 {
			if fe, ok := d.Value.Pieces[0].(*XExpression); ok {
				if forExpr, ok := fe.Expression.(*SwanForExpression); ok {
					declareForVariables(el, forExpr)
					resolveReferences(fe.References, el, el)
				}
			}
		}
	}
	for i, a := range r.Attrs {
		if i == forIdx {
			continue
		}
		attrResults[i] = processAttribute(a, docCalc, errs, opts)
	}
	st.Attributes = attrResults
	resolveAttributeReferences(st, el, forIdx)

	if el.Void {
		return
	}
	switch {
	case isRCDataElement(name):
		tok.SetContentState(true, false)
	case isRawTextElement(name):
		tok.SetContentState(false, true)
	default:
		tok.SetContentState(false, false)
	}
	if r.SelfClosing {
		return
	}
	*stack = append(*stack, el)
}

func handleEndTag(r *irEndTag, stack *[]*XElement, tok *tokenizer, errs *errorList, opts ParseOptions) {
	name := internTagName(r.Name)
	idx := -1
	for i := len(*stack) - 1; i >= 0; i-- {
		if strings.EqualFold((*stack)[i].Name, name) {
			idx = i
			break
		}
	}
	if idx == -1 {
		errs.add(&ParseError{Code: ErrInvalidEndTag, Message: "end tag without matching start tag", Index: r.Range[0], Line: r.Loc.Start.Line, Column: r.Loc.Start.Column})
		return
	}
	for i := len(*stack) - 1; i > idx; i-- {
		el := (*stack)[i]
		if opts.NoOpenTag {
			errs.add(&ParseError{Code: ErrMissingEndTag, Message: "missing end tag", Index: el.NodeRange()[0]})
		}
		propagateEndLocation(el)
	}
	target := (*stack)[idx]
	et := &XEndTag{Name: name}
	et.setRange(r.Range)
	et.setLoc(r.Loc)
	target.EndTag = et
	target.setRange(Range{target.NodeRange()[0], r.Range[1]})
	target.setLoc(Loc{target.NodeLoc().Start, r.Loc.End})
	*stack = (*stack)[:idx]
	restoreContentState(*stack, tok)
}

// restoreContentState sets the tokenizer's content model to match the
// element now on top of stack (or DATA at document level), undoing the
// RCDATA/RAWTEXT switch handleStartTag made when that element was opened.
// Without this, popping </textarea>/</filter>/</import-sjs> would leave the
// tokenizer in RCDATA/RAWTEXT and swallow any markup that follows as text.
func restoreContentState(stack []*XElement, tok *tokenizer) {
	if len(stack) == 0 {
		tok.SetContentState(false, false)
		return
	}
	name := stack[len(stack)-1].Name
	switch {
	case isRCDataElement(name):
		tok.SetContentState(true, false)
	case isRawTextElement(name):
		tok.SetContentState(false, true)
	default:
		tok.SetContentState(false, false)
	}
}

// propagateEndLocation extends el's range to cover its last child when it
// is popped without (or before) its own end tag being attached.
func propagateEndLocation(el *XElement) {
	end := el.NodeRange()[1]
	if n := len(el.Children); n > 0 {
		if c := el.Children[n-1].NodeRange()[1]; c > end {
			end = c
		}
	}
	el.setRange(Range{el.NodeRange()[0], end})
}

func handleText(r *irText, top func() XNode, appendChild func(XNode), docCalc *locCalculator, errs *errorList, opts ParseOptions) {
	txt := &XText{Value: r.Tok.Value}
	txt.setRange(r.Tok.Range)
	txt.setLoc(r.Tok.Loc)
	appendChild(txt)

	parent, ok := top().(*XElement)
	if !ok || !isRawTextElement(parent.Name) {
		return
	}
	if !hasNoSrcAttr(parent) || len(parent.Children) != 1 || parent.Children[0] != XNode(txt) {
		return
	}
	mod := processScriptModule(txt, docCalc, errs, opts)
	mod.setParent(parent)
	parent.Children[0] = mod
}

func hasNoSrcAttr(el *XElement) bool {
	for _, a := range el.StartTag.Attributes {
		if attr, ok := a.(*XAttribute); ok && attr.Key.Name == "src" {
			return false
		}
	}
	return true
}

func handleTopMustache(r *irMustache, appendChild func(XNode), docCalc *locCalculator, errs *errorList, opts ParseOptions) {
	m := &XMustache{StartToken: r.StartTok, EndToken: r.EndTok}
	m.setRange(Range{r.StartTok.Range[0], r.EndTok.Range[1]})
	m.setLoc(Loc{r.StartTok.Loc.Start, r.EndTok.Loc.End})
	appendChild(m)
	isTwoWay := r.StartTok.Value == "{="
	m.Value = processMustache(r.Text, r.TextRange, isTwoWay, docCalc, errs, opts)
	if m.Value != nil {
		resolveReferences(m.Value.References, m, nil)
	}
}

// processAttribute implements §4.5: a key matching the directive grammar
// becomes an XDirective with a parsed XDirectiveKey; otherwise a plain
// XAttribute. Any single non-blank literal value is parsed as an expression
// (a for-header for the "for" directive, a plain expression otherwise).
func processAttribute(a *irAttr, docCalc *locCalculator, errs *errorList, opts ParseOptions) XAttributeOrDirective {
	nameTok := a.NameTok
	value := buildAttributeValue(a, docCalc, errs, opts)
	attrRange := computeAttrRange(nameTok, a)

	if key, ok := parseDirectiveKey(nameTok.Value); ok {
		key.setRange(nameTok.Range)
		key.setLoc(nameTok.Loc)
		d := &XDirective{Key: key, Value: *value}
		d.setRange(attrRange)
		d.setLoc(Loc{nameTok.Loc.Start, nameTok.Loc.End})
		applyDirectiveExpression(d, docCalc, errs, opts)
		return d
	}

	if looksLikeDirectiveAttempt(nameTok.Value) {
		errs.add(&ParseError{
			Code: ErrInvalidDirective, Message: "invalid directive name",
			Index: nameTok.Range[0], Line: nameTok.Loc.Start.Line, Column: nameTok.Loc.Start.Column,
			Suggestion: suggestDirective(nameTok.Value),
		})
	}
	id := &XIdentifier{Name: nameTok.Value}
	id.setRange(nameTok.Range)
	id.setLoc(nameTok.Loc)
	attr := &XAttribute{Key: id, Value: *value}
	attr.setRange(attrRange)
	return attr
}

func looksLikeDirectiveAttempt(name string) bool {
	for _, p := range []string{"s-", "bind", "catch", "capture-"} {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func buildAttributeValue(a *irAttr, docCalc *locCalculator, errs *errorList, opts ParseOptions) *XAttributeValue {
	val := &XAttributeValue{}
	for _, p := range a.Pieces {
		switch piece := p.(type) {
		case *irLiteral:
			lit := &XLiteral{Value: piece.Tok.Value, Raw: piece.Tok.Value}
			lit.setRange(piece.Tok.Range)
			lit.setLoc(piece.Tok.Loc)
			val.Pieces = append(val.Pieces, lit)
		case *irMustache:
			m := &XMustache{StartToken: piece.StartTok, EndToken: piece.EndTok}
			end := piece.StartTok.Range[1]
			if piece.EndTok.Range[1] > 0 {
				end = piece.EndTok.Range[1]
			}
			m.setRange(Range{piece.StartTok.Range[0], end})
			m.setLoc(Loc{piece.StartTok.Loc.Start, piece.EndTok.Loc.End})
			isTwoWay := piece.StartTok.Value == "{="
			m.Value = processMustache(piece.Text, piece.TextRange, isTwoWay, docCalc, errs, opts)
			val.Pieces = append(val.Pieces, m)
		}
	}
	return val
}

func applyDirectiveExpression(d *XDirective, docCalc *locCalculator, errs *errorList, opts ParseOptions) {
	if !opts.ParseExpression {
		return
	}
	if len(d.Value.Pieces) != 1 {
		return
	}
	lit, ok := d.Value.Pieces[0].(*XLiteral)
	if !ok || strings.TrimSpace(lit.Value) == "" {
		return
	}
	r := lit.NodeRange()
	var expr *XExpression
	if d.Key.Prefix == "s-" && d.Key.Name == "for" {
		expr = processForExpression(lit.Value, r, docCalc, errs, opts)
	} else {
		expr = processDirectiveLiteral(lit.Value, r, docCalc, errs, opts)
	}
	d.Value.Pieces[0] = expr
}

func resolveAttributeReferences(st *XStartTag, el *XElement, forIdx int) {
	for i, a := range st.Attributes {
		if i == forIdx {
			continue
		}
		var pieces []XAttrValuePiece
		switch v := a.(type) {
		case *XAttribute:
			pieces = v.Value.Pieces
		case *XDirective:
			pieces = v.Value.Pieces
		}
		for _, p := range pieces {
			switch pv := p.(type) {
			case *XExpression:
				resolveReferences(pv.References, el, nil)
			case *XMustache:
				if pv.Value != nil {
					resolveReferences(pv.Value.References, el, nil)
				}
			}
		}
	}
}

func computeAttrRange(nameTok Token, a *irAttr) Range {
	end := nameTok.Range[1]
	if a.AssocTok != nil && a.AssocTok.Range[1] > end {
		end = a.AssocTok.Range[1]
	}
	for _, p := range a.Pieces {
		switch v := p.(type) {
		case *irLiteral:
			if v.Tok.Range[1] > end {
				end = v.Tok.Range[1]
			}
		case *irMustache:
			e := v.StartTok.Range[1]
			if v.EndTok.Range[1] > e {
				e = v.EndTok.Range[1]
			}
			if e > end {
				end = e
			}
		}
	}
	return Range{nameTok.Range[0], end}
}
