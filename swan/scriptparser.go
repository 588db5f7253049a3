package swan

import (
	"strings"

	"github.com/expr-lang/expr/ast"
	expr_parser "github.com/expr-lang/expr/parser"
)

// ScriptOptions configures the external script parser (§6, the "script"
// option). Only AllowReserved influences behaviour of the built-in
// backend; Parser and the rest mirror the option's documented shape for a
// substituted backend to consume.
type ScriptOptions struct {
	Parser        string // backend identifier; "" selects the default expr-lang backend
	ECMAVersion   int
	SourceType    string // "script" | "module" | "commonjs"
	Range         bool
	Loc           bool
	Tokens        bool
	Comments      bool
	AllowReserved bool
}

// ScriptParser is the "external script parser" collaborator (§1, §4.6): an
// opaque callable turning fragment-local source text into a script AST
// node. The engine only ever inspects the small vocabulary of node types
// processMustache/processForExpression already name.
type ScriptParser interface {
	ParseExpression(code string, opts ScriptOptions) (ast.Node, error)
	ParseProgram(code string, opts ScriptOptions) ([]ast.Node, error)
}

// scriptError carries a 0-based, fragment-local offset alongside the
// message; fixErrorLocation relocates it into the template's coordinate
// system (§4.4, §7).
type scriptError struct {
	message string
	index   int
}

func (e *scriptError) Error() string { return e.message }

// exprScriptParser is the default backend, built on github.com/expr-lang/expr:
// the mustache payload/for-header/sjs body is handed to expr_parser.Parse and
// the returned tree.Node becomes the script-AST node the template layer
// embeds.
type exprScriptParser struct{}

var defaultScriptParser ScriptParser = exprScriptParser{}

// reservedWords lists expr-lang keywords that would otherwise fail to parse
// as a bare identifier, so the reserved-keyword retry (§4.6, §9 supplemental
// feature 2) has something concrete to catch.
var reservedWords = map[string]bool{
	"in": true, "let": true, "nil": true, "true": true, "false": true,
	"and": true, "or": true, "not": true, "matches": true,
}

func (p exprScriptParser) ParseExpression(code string, opts ScriptOptions) (ast.Node, error) {
	tree, err := expr_parser.Parse(code)
	if err == nil {
		return tree.Node, nil
	}
	trimmed := strings.TrimSpace(code)
	if !opts.AllowReserved && trimmed == code && reservedWords[trimmed] {
		// Retry: expr-lang has no allowReserved knob, so the practical
		// fallback is treating the whole payload as a bare Identifier when
		// it is exactly one reserved word -- the common case this retry
		// exists for ("s-if={{in}}" binding to a field literally named "in").
		return &ast.IdentifierNode{Value: trimmed}, nil
	}
	return nil, &scriptError{message: err.Error(), index: len(code)}
}

// ParseProgram parses an sjs module body (§4.6 processScriptModule). expr-lang
// is an expression language, not a statement language, so a module body is
// approximated as a sequence of top-level expressions separated by ';' at
// bracket depth 0 -- each is parsed independently via parseStatement. This
// is a deliberate simplification of the reference "full script program"
// requirement to what the chosen backend can actually express; see
// DESIGN.md.
func (p exprScriptParser) ParseProgram(code string, opts ScriptOptions) ([]ast.Node, error) {
	var out []ast.Node
	for _, stmt := range splitTopLevel(code, ';') {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		node, err := p.parseStatement(stmt, opts)
		if err != nil {
			return out, err
		}
		out = append(out, node)
	}
	return out, nil
}

// assignOpIndex returns the index of a top-level "=" assignment operator in
// stmt, or -1. It skips comparison operators (==, !=, <=, >=) and anything
// nested inside brackets/quotes, since expr-lang's grammar has no
// assignment expression of its own (unlike a real ECMAScript parser) --
// this lets a module body like "exports.a = 1" still produce one AST node
// per statement (§4.6 processScriptModule, scenario 3) without expr-lang
// ever seeing a bare "=".
func assignOpIndex(stmt string) int {
	depth := 0
	var quote rune
	for i := 0; i < len(stmt); i++ {
		c := stmt[i]
		switch {
		case quote != 0:
			if rune(c) == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = rune(c)
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case depth == 0 && c == '=':
			prev := byte(0)
			if i > 0 {
				prev = stmt[i-1]
			}
			next := byte(0)
			if i+1 < len(stmt) {
				next = stmt[i+1]
			}
			if next == '=' || prev == '!' || prev == '<' || prev == '>' || prev == '=' {
				continue
			}
			return i
		}
	}
	return -1
}

// parseStatement parses one sjs top-level statement, handling the
// assignment form separately since ParseExpression's underlying grammar
// has no assignment operator of its own.
func (p exprScriptParser) parseStatement(stmt string, opts ScriptOptions) (ast.Node, error) {
	if i := assignOpIndex(stmt); i != -1 {
		lhs := strings.TrimSpace(stmt[:i])
		rhs := strings.TrimSpace(stmt[i+1:])
		lhsNode, err := p.ParseExpression(lhs, opts)
		if err != nil {
			return nil, err
		}
		rhsNode, err := p.ParseExpression(rhs, opts)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryNode{Operator: "=", Left: lhsNode, Right: rhsNode}, nil
	}
	return p.ParseExpression(stmt, opts)
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// (), [], {} or string literals.
func splitTopLevel(s string, sep rune) []string {
	var out []string
	depth := 0
	start := 0
	var quote rune
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
