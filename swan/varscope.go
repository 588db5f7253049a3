package swan

import (
	"regexp"
	"sync"

	"github.com/expr-lang/expr/ast"
)

// declareForVariables registers the left/index identifiers of a parsed
// s-for header as scope declarations on elem (§3 invariant 5).
func declareForVariables(elem *XElement, forExpr *SwanForExpression) {
	if id, ok := forExpr.Left.(*ast.IdentifierNode); ok {
		elem.Variables = append(elem.Variables, &Variable{Name: id.Value, Node: elem})
	}
	if forExpr.Index != nil {
		if id, ok := forExpr.Index.(*ast.IdentifierNode); ok {
			elem.Variables = append(elem.Variables, &Variable{Name: id.Value, Node: elem})
		}
	}
}

// findVariable looks up name among el's own s-for declarations.
func findVariable(el *XElement, name string) *Variable {
	for _, v := range el.Variables {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// resolveReferences matches each of refs against the nearest enclosing
// XElement's Variables, walking parent pointers from start upward (§3
// invariant 6). skip, when non-nil, excludes that element's own
// declarations from the search -- used for a for-header's right-hand side
// and trackBy expression, which are evaluated in the outer scope, not the
// one the header itself introduces.
func resolveReferences(refs []*Reference, start XNode, skip *XElement) {
	for _, ref := range refs {
		var n XNode = start
		for n != nil {
			if el, ok := n.(*XElement); ok && el != skip {
				if v := findVariable(el, ref.Name); v != nil {
					ref.Resolved = v
					v.References = append(v.References, ref)
					break
				}
			}
			n = n.NodeParent()
		}
	}
}

// identifierWordCache caches compiled whole-word patterns; a document only
// ever asks for a handful of distinct names, so this beats recompiling a
// regexp for every identifier occurrence. The cache is shared by every
// Parse call, so identifierWordMu guards it.
var (
	identifierWordMu    sync.Mutex
	identifierWordCache = map[string]*regexp.Regexp{}
)

func identifierWordRE(name string) *regexp.Regexp {
	identifierWordMu.Lock()
	defer identifierWordMu.Unlock()
	if re, ok := identifierWordCache[name]; ok {
		return re
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	identifierWordCache[name] = re
	return re
}

// findIdentifierOffset locates name's next whole-word occurrence in text at
// or after from, returning its local [start,end). It falls back to
// searching the whole text (an identifier can be revisited by the AST out
// of left-to-right order, e.g. a member expression's object) and finally to
// [from, from+len(name)) if name never occurs verbatim (a synthetic node
// with no direct textual counterpart).
func findIdentifierOffset(text, name string, from int) (start, end int) {
	if from < 0 {
		from = 0
	}
	if from <= len(text) {
		if loc := identifierWordRE(name).FindStringIndex(text[from:]); loc != nil {
			return from + loc[0], from + loc[1]
		}
	}
	if loc := identifierWordRE(name).FindStringIndex(text); loc != nil {
		return loc[0], loc[1]
	}
	return from, from + len(name)
}

// collectIdentifierRefsFrom walks a script AST node collecting every
// Identifier use as a candidate Reference (§3 invariant 6), resolving each
// one's own Range by locating its name in text (the fragment node was
// parsed from) starting at cursor, so distinct identifiers in the same
// expression get distinct ranges rather than all sharing the fragment's
// range. base is text's absolute offset into the document; cursor and the
// returned offset are text-local. It mirrors the manual recursive-descent
// shape of transformCastShapes in the external script parser's own
// AST-rewriting code, generalised to gather rather than mutate.
func collectIdentifierRefsFrom(node ast.Node, text string, base, cursor int) ([]*Reference, int) {
	var refs []*Reference
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case nil:
			return
		case *ast.IdentifierNode:
			start, end := findIdentifierOffset(text, v.Value, cursor)
			refs = append(refs, &Reference{Name: v.Value, Range: Range{base + start, base + end}})
			cursor = end
		case *ast.CallNode:
			walk(v.Callee)
			for _, a := range v.Arguments {
				walk(a)
			}
		case *ast.ArrayNode:
			for _, e := range v.Nodes {
				walk(e)
			}
		case *ast.MapNode:
			for _, p := range v.Pairs {
				if pn, ok := p.(*ast.PairNode); ok {
					walk(pn.Key)
					walk(pn.Value)
				}
			}
		case *ast.BinaryNode:
			walk(v.Left)
			walk(v.Right)
		case *ast.UnaryNode:
			walk(v.Node)
		case *ast.ConditionalNode:
			walk(v.Cond)
			walk(v.Exp1)
			walk(v.Exp2)
		case *ast.MemberNode:
			walk(v.Node)
		case *ast.SliceNode:
			walk(v.Node)
			if v.From != nil {
				walk(v.From)
			}
			if v.To != nil {
				walk(v.To)
			}
		}
	}
	walk(node)
	return refs, cursor
}

// collectIdentifierRefs is collectIdentifierRefsFrom starting its search
// cursor at the beginning of text, for callers with a single expression and
// no earlier sibling fragment to keep the cursor past.
func collectIdentifierRefs(node ast.Node, text string, base int) []*Reference {
	refs, _ := collectIdentifierRefsFrom(node, text, base, 0)
	return refs
}
