// Copyright 2024 Daniel Potapov.
// Adapted 2025 for the Swan parsing engine: ComponentOptions becomes
// ParseOptions, and the flat-slice-plus-binary-search style used for
// sibling walking becomes the token store's positional queries.

package swan

import (
	"sort"
	"strings"

	"github.com/expr-lang/expr/ast"
)

// ScriptOptions.Parser default, mirroring the "parser" option named in
// spec.md §6 (kept as a plain string identifier; the engine has exactly one
// backend, exprScriptParser, and does not dispatch on this field).
const DefaultScriptParser = "espree"

// ParseOptions configures parse: a small value type with defaults applied by
// the constructor, not a global config object (§6).
type ParseOptions struct {
	FilePath        string
	NoOpenTag       bool
	ParseExpression bool
	Script          ScriptOptions
}

// defaultParseOptions applies parse's defaults: script.parser defaults to
// DefaultScriptParser (§6). ParseExpression gets no default: it is used as
// given, and its zero value, false, leaves expressions unparsed.
func defaultParseOptions(o ParseOptions) ParseOptions {
	if o.Script.Parser == "" {
		o.Script.Parser = DefaultScriptParser
	}
	return o
}

// Parse implements spec.md §6's parse(text, options) entry point. filePath's
// extension selects the XMLType: ".swan" gets the full template pipeline,
// any other extension is treated as script-only and never enters the
// tokenizer (the whole input is handed to the script parser instead).
func Parse(text string, options ParseOptions) *XDocument {
	opts := defaultParseOptions(options)

	if !strings.HasSuffix(opts.FilePath, ".swan") && opts.FilePath != "" {
		return parseScriptOnly(text, opts)
	}

	errs := &errorList{}
	comments := &[]Token{}
	tokens := &[]Token{}

	tok := newTokenizer(text, errs, comments)
	it := newIntermediateTokenizer(tok, errs, tokens)

	docCalc := newLocCalculator(&tok.r.gaps, &tok.r.lineTerminators)

	doc := buildTree(it, tok, errs, comments, tokens, docCalc, opts, text)
	doc.XMLType = "swan"
	return doc
}

// parseScriptOnly handles a non-.swan filePath: the whole input is a script
// program, never HTML/mustache content (§6).
func parseScriptOnly(text string, opts ParseOptions) *XDocument {
	doc := &XDocument{Source: text, XMLType: "unknown"}
	doc.setRange(Range{0, len(text)})
	if !opts.ParseExpression {
		return doc
	}
	errs := &errorList{}
	nodes, err := defaultScriptParser.ParseProgram(text, opts.Script)
	if err != nil {
		gaps, lts := []int{}, []int{}
		calc := newLocCalculator(&gaps, &lts)
		appendExpressionError(errs, err, len(text), calc)
	}
	mod := &XModule{}
	mod.setRange(Range{0, len(text)})
	body := make([]any, len(nodes))
	var refs []*Reference
	cursor := 0
	for i, n := range nodes {
		body[i] = n
		var nrefs []*Reference
		nrefs, cursor = collectIdentifierRefsFrom(n, text, 0, cursor)
		refs = append(refs, nrefs...)
	}
	mod.Body = body
	mod.References = refs
	mod.setParent(doc)
	doc.Children = []XNode{mod}
	doc.Errors = errs.items
	return doc
}

// ESLintParseResult is the shape parseForESLint returns (§6): an ast whose
// templateBody is the parsed XDocument, plus a services surface for
// consumers that want token-store or visitor access without re-parsing.
type ESLintParseResult struct {
	Ast      *ESLintProgram
	Services ESLintServices
}

// ESLintProgram stands in for the outer script AST node the reference
// design attaches templateBody to; the engine has no outer script AST of
// its own (that belongs to whatever wraps this template), so it carries
// only the field spec.md names.
type ESLintProgram struct {
	TemplateBody *XDocument
}

// ESLintServices implements spec.md §6's "Services surface for consumers".
type ESLintServices struct {
	doc *XDocument
}

// ParseForESLint implements parseForESLint(text, options) (§6).
func ParseForESLint(text string, options ParseOptions) ESLintParseResult {
	doc := Parse(text, options)
	return ESLintParseResult{
		Ast:      &ESLintProgram{TemplateBody: doc},
		Services: ESLintServices{doc: doc},
	}
}

// GetDocumentFragment returns the root XDocument, or nil for a non-template
// (script-only) input (§6).
func (s ESLintServices) GetDocumentFragment() *XDocument {
	if s.doc == nil || s.doc.XMLType != "swan" {
		return nil
	}
	return s.doc
}

// GetTemplateBodyTokenStore returns a TokenStore over the document's flat
// token and comment lists (§6).
func (s ESLintServices) GetTemplateBodyTokenStore() *TokenStore {
	return newTokenStore(s.doc)
}

// DefineTemplateBodyVisitor returns a CombinedVisitor that Walk dispatches
// to when traversing the XDocument tree, plus (if scriptVisitor is
// non-nil) the same dispatch over every script AST node reachable from an
// XExpression/XModule (§6). scriptVisitor is a pointer because
// CombinedVisitor holds func fields and so is not itself comparable to nil.
func (s ESLintServices) DefineTemplateBodyVisitor(visitor CombinedVisitor, scriptVisitor *CombinedVisitor) CombinedVisitor {
	if scriptVisitor == nil {
		return visitor
	}
	return mergeVisitors(visitor, *scriptVisitor)
}

// TokenStore answers positional queries against a document's tokens and
// comments (§6 "a token store with positional queries"), using the same
// flat-slice-plus-binary-search style used elsewhere for sibling walking.
type TokenStore struct {
	tokens   []Token
	comments []Token
}

func newTokenStore(doc *XDocument) *TokenStore {
	if doc == nil {
		return &TokenStore{}
	}
	return &TokenStore{tokens: doc.Tokens, comments: doc.Comments}
}

// GetTokenBefore returns the last token whose range ends at or before
// offset, or nil if none.
func (s *TokenStore) GetTokenBefore(offset int) *Token {
	i := sort.Search(len(s.tokens), func(i int) bool { return s.tokens[i].Range[1] > offset })
	if i == 0 {
		return nil
	}
	return &s.tokens[i-1]
}

// GetTokenAfter returns the first token whose range starts at or after
// offset, or nil if none.
func (s *TokenStore) GetTokenAfter(offset int) *Token {
	i := sort.Search(len(s.tokens), func(i int) bool { return s.tokens[i].Range[0] >= offset })
	if i == len(s.tokens) {
		return nil
	}
	return &s.tokens[i]
}

// GetTokensBetween returns every token whose range lies within (start, end).
func (s *TokenStore) GetTokensBetween(start, end int) []Token {
	lo := sort.Search(len(s.tokens), func(i int) bool { return s.tokens[i].Range[0] >= start })
	var out []Token
	for i := lo; i < len(s.tokens) && s.tokens[i].Range[1] <= end; i++ {
		out = append(out, s.tokens[i])
	}
	return out
}

// CommentsExistBetween reports whether any recorded comment token overlaps
// (start, end).
func (s *TokenStore) CommentsExistBetween(start, end int) bool {
	for _, c := range s.comments {
		if c.Range[0] < end && c.Range[1] > start {
			return true
		}
	}
	return false
}

// NodeVisitor is called for every XNode Walk visits, in pre-order.
type NodeVisitor func(n XNode)

// ScriptVisitor is called for every script AST node Walk visits within an
// XExpression or XModule body.
type ScriptVisitor func(n ast.Node)

// CombinedVisitor merges a template-node visitor and a script-node visitor,
// grounded on expr-lang/expr/ast's own Walk-style dispatch (the package the
// engine already depends on for expression ASTs).
type CombinedVisitor struct {
	Node   NodeVisitor
	Script ScriptVisitor
}

func mergeVisitors(a, b CombinedVisitor) CombinedVisitor {
	return CombinedVisitor{
		Node: func(n XNode) {
			if a.Node != nil {
				a.Node(n)
			}
			if b.Node != nil {
				b.Node(n)
			}
		},
		Script: func(n ast.Node) {
			if a.Script != nil {
				a.Script(n)
			}
			if b.Script != nil {
				b.Script(n)
			}
		},
	}
}

// Walk traverses n and its descendants pre-order, invoking v.Node on the
// document, every child node, every attribute/directive and every
// attribute-value piece, and v.Script on every script AST node found inside
// an XExpression's expression or an XModule's body (§6
// "defineTemplateBodyVisitor"). Start tags, end tags and attribute keys are
// not passed to v.Node.
func Walk(n XNode, v CombinedVisitor) {
	if n == nil {
		return
	}
	if v.Node != nil {
		v.Node(n)
	}
	switch node := n.(type) {
	case *XDocument:
		for _, c := range node.Children {
			Walk(c, v)
		}
	case *XElement:
		if node.StartTag != nil {
			for _, a := range node.StartTag.Attributes {
				walkAttrOrDirective(a, v)
			}
		}
		for _, c := range node.Children {
			Walk(c, v)
		}
	case *XMustache:
		if node.Value != nil {
			Walk(node.Value, v)
		}
	case *XExpression:
		walkScriptNode(node.Expression, v)
	case *XModule:
		for _, b := range node.Body {
			if sn, ok := b.(ast.Node); ok {
				walkScriptNode(sn, v)
			}
		}
	}
}

func walkAttrOrDirective(a XAttributeOrDirective, v CombinedVisitor) {
	if v.Node != nil {
		v.Node(a)
	}
	val := a.attrValue()
	if val == nil {
		return
	}
	for _, p := range val.Pieces {
		Walk(p, v)
	}
}

func walkScriptNode(n any, v CombinedVisitor) {
	if v.Script == nil || n == nil {
		return
	}
	if forExpr, ok := n.(*SwanForExpression); ok {
		walkScriptNode(forExpr.Left, v)
		walkScriptNode(forExpr.Index, v)
		walkScriptNode(forExpr.Right, v)
		walkScriptNode(forExpr.TrackBy, v)
		return
	}
	sn, ok := n.(ast.Node)
	if !ok {
		return
	}
	v.Script(sn)
	switch node := sn.(type) {
	case *ast.CallNode:
		walkScriptNode(node.Callee, v)
		for _, a := range node.Arguments {
			walkScriptNode(a, v)
		}
	case *ast.ArrayNode:
		for _, e := range node.Nodes {
			walkScriptNode(e, v)
		}
	case *ast.MapNode:
		for _, p := range node.Pairs {
			if pn, ok := p.(*ast.PairNode); ok {
				walkScriptNode(pn.Key, v)
				walkScriptNode(pn.Value, v)
			}
		}
	case *ast.BinaryNode:
		walkScriptNode(node.Left, v)
		walkScriptNode(node.Right, v)
	case *ast.UnaryNode:
		walkScriptNode(node.Node, v)
	case *ast.ConditionalNode:
		walkScriptNode(node.Cond, v)
		walkScriptNode(node.Exp1, v)
		walkScriptNode(node.Exp2, v)
	case *ast.MemberNode:
		walkScriptNode(node.Node, v)
	case *ast.SliceNode:
		walkScriptNode(node.Node, v)
		walkScriptNode(node.From, v)
		walkScriptNode(node.To, v)
	}
}
