package swan

import (
	"testing"

	"github.com/expr-lang/expr/ast"
	"github.com/stretchr/testify/require"
)

func parseSwan(t *testing.T, src string, opts ParseOptions) *XDocument {
	t.Helper()
	opts.FilePath = "index.swan"
	return Parse(src, opts)
}

func firstElement(t *testing.T, doc *XDocument) *XElement {
	t.Helper()
	for _, c := range doc.Children {
		if el, ok := c.(*XElement); ok {
			return el
		}
	}
	require.Fail(t, "no element found")
	return nil
}

func findAttr(el *XElement, name string) XAttributeOrDirective {
	for _, a := range el.StartTag.Attributes {
		switch v := a.(type) {
		case *XDirective:
			if v.Key.Name == name {
				return v
			}
		case *XAttribute:
			if v.Key.Name == name {
				return v
			}
		}
	}
	return nil
}

// Scenario 1.
func TestParse_MustacheDirectiveIdentifier(t *testing.T) {
	doc := parseSwan(t, `<view s-if="{{cond}}"></view>`, ParseOptions{ParseExpression: true})
	require.Empty(t, doc.Errors)
	el := firstElement(t, doc)
	require.Equal(t, "view", el.Name)

	a := findAttr(el, "if")
	require.NotNil(t, a)
	d, ok := a.(*XDirective)
	require.True(t, ok)
	require.Equal(t, "s-", d.Key.Prefix)
	require.Equal(t, "if", d.Key.Name)

	require.Len(t, d.Value.Pieces, 1)
	m, ok := d.Value.Pieces[0].(*XMustache)
	require.True(t, ok)
	id, ok := m.Value.Expression.(*ast.IdentifierNode)
	require.True(t, ok)
	require.Equal(t, "cond", id.Value)
}

// Scenario 2.
func TestParse_PlainDirectiveLiteral(t *testing.T) {
	doc := parseSwan(t, `<view s-if="cond"></view>`, ParseOptions{ParseExpression: true})
	el := firstElement(t, doc)
	d := findAttr(el, "if").(*XDirective)
	require.Len(t, d.Value.Pieces, 1)
	expr, ok := d.Value.Pieces[0].(*XExpression)
	require.True(t, ok)
	id, ok := expr.Expression.(*ast.IdentifierNode)
	require.True(t, ok)
	require.Equal(t, "cond", id.Value)

	doc2 := parseSwan(t, `<view s-if="cond"></view>`, ParseOptions{ParseExpression: false})
	el2 := firstElement(t, doc2)
	d2 := findAttr(el2, "if").(*XDirective)
	require.Len(t, d2.Value.Pieces, 1)
	lit, ok := d2.Value.Pieces[0].(*XLiteral)
	require.True(t, ok)
	require.Equal(t, "cond", lit.Value)
}

// Scenario 3.
func TestParse_ImportSjsModule(t *testing.T) {
	doc := parseSwan(t, `<import-sjs module="module">exports.a = 1;</import-sjs>`, ParseOptions{ParseExpression: true})
	el := firstElement(t, doc)
	require.Equal(t, "import-sjs", el.Name)
	require.Len(t, el.Children, 1)
	mod, ok := el.Children[0].(*XModule)
	require.True(t, ok)
	require.Len(t, mod.Body, 1)
}

// Regression: popping a RAWTEXT element (</import-sjs>) must restore the
// tokenizer's content model, or the <view> markup that follows is swallowed
// as more raw text.
func TestParse_MarkupAfterImportSjsIsNotSwallowed(t *testing.T) {
	doc := parseSwan(t, `<import-sjs module="m">exports.a=1;</import-sjs><view></view>`, ParseOptions{ParseExpression: true})
	require.Len(t, doc.Children, 2)
	sjs, ok := doc.Children[0].(*XElement)
	require.True(t, ok)
	require.Equal(t, "import-sjs", sjs.Name)
	view, ok := doc.Children[1].(*XElement)
	require.True(t, ok)
	require.Equal(t, "view", view.Name)
}

// Scenario 4.
func TestParse_DuplicateAttribute(t *testing.T) {
	doc := parseSwan(t, `<view class="a" class="b">Hello</view>`, ParseOptions{ParseExpression: true})
	var found int
	for _, e := range doc.Errors {
		if e.Code == ErrDuplicateAttribute {
			found++
		}
	}
	require.Equal(t, 1, found)
}

// Scenario 5.
func TestParse_ForDirective(t *testing.T) {
	doc := parseSwan(t, `<view s-for="item, idx in list trackBy item.id"></view>`, ParseOptions{ParseExpression: true})
	require.Empty(t, doc.Errors)
	el := firstElement(t, doc)
	d := findAttr(el, "for").(*XDirective)
	require.Len(t, d.Value.Pieces, 1)
	expr := d.Value.Pieces[0].(*XExpression)
	forExpr, ok := expr.Expression.(*SwanForExpression)
	require.True(t, ok)

	left, ok := forExpr.Left.(*ast.IdentifierNode)
	require.True(t, ok)
	require.Equal(t, "item", left.Value)

	idx, ok := forExpr.Index.(*ast.IdentifierNode)
	require.True(t, ok)
	require.Equal(t, "idx", idx.Value)

	right, ok := forExpr.Right.(*ast.IdentifierNode)
	require.True(t, ok)
	require.Equal(t, "list", right.Value)

	_, ok = forExpr.TrackBy.(*ast.MemberNode)
	require.True(t, ok)

	require.Len(t, el.Variables, 2)
}

// Scenario 6.
func TestParse_InlineObjectMustache(t *testing.T) {
	doc := parseSwan(t, `<view style="{{a:1,b:2}}"/>`, ParseOptions{ParseExpression: true})
	require.Empty(t, doc.Errors)
	el := firstElement(t, doc)
	a := findAttr(el, "style").(*XAttribute)
	require.Len(t, a.Value.Pieces, 1)
	m, ok := a.Value.Pieces[0].(*XMustache)
	require.True(t, ok)
	obj, ok := m.Value.Expression.(*ast.MapNode)
	require.True(t, ok)
	require.Len(t, obj.Pairs, 2)
}

// Scenario 7.
func TestParse_UnterminatedMustache(t *testing.T) {
	doc := parseSwan(t, `<view s-if="{{cond"`, ParseOptions{ParseExpression: true})
	var found bool
	for _, e := range doc.Errors {
		if e.Code == ErrMissingExpressionEndTag {
			found = true
		}
	}
	require.True(t, found)
	require.NotNil(t, doc)
}

func TestParse_ReferenceResolvesToForVariable(t *testing.T) {
	doc := parseSwan(t, `<view s-for="item in list"><text>{{item}}</text></view>`, ParseOptions{ParseExpression: true})
	require.Empty(t, doc.Errors)
	outer := firstElement(t, doc)
	require.Len(t, outer.Variables, 1)

	var inner *XElement
	for _, c := range outer.Children {
		if el, ok := c.(*XElement); ok {
			inner = el
		}
	}
	require.NotNil(t, inner)
	require.Len(t, inner.Children, 1)
	m, ok := inner.Children[0].(*XMustache)
	require.True(t, ok)
	require.Len(t, m.Value.References, 1)
	require.NotNil(t, m.Value.References[0].Resolved)
	require.Same(t, outer.Variables[0], m.Value.References[0].Resolved)
}

func TestParse_UnresolvedReferenceOutsideLoop(t *testing.T) {
	doc := parseSwan(t, `<text>{{item}}</text>`, ParseOptions{ParseExpression: true})
	el := firstElement(t, doc)
	m := el.Children[0].(*XMustache)
	require.Len(t, m.Value.References, 1)
	require.Nil(t, m.Value.References[0].Resolved)
}

func TestParse_ErrorsSortedByIndex(t *testing.T) {
	doc := parseSwan(t, `<view class="a" class="b" class="c">{{ }}</view>`, ParseOptions{ParseExpression: true})
	for i := 1; i < len(doc.Errors); i++ {
		require.LessOrEqual(t, doc.Errors[i-1].Index, doc.Errors[i].Index)
	}
}

func TestParse_TokensAndCommentsSortedByRange(t *testing.T) {
	doc := parseSwan(t, `<!-- c1 --><view><!-- c2 -->{{x}}</view>`, ParseOptions{ParseExpression: true})
	require.NotEmpty(t, doc.Tokens)
	for i := 1; i < len(doc.Tokens); i++ {
		require.LessOrEqual(t, doc.Tokens[i-1].Range[0], doc.Tokens[i].Range[0])
	}
	for i := 1; i < len(doc.Comments); i++ {
		require.LessOrEqual(t, doc.Comments[i-1].Range[0], doc.Comments[i].Range[0])
	}
}

func TestParse_ScriptOnlyFile(t *testing.T) {
	doc := Parse("a + b", ParseOptions{FilePath: "helper.sjs", ParseExpression: true})
	require.Equal(t, "unknown", doc.XMLType)
	require.Len(t, doc.Children, 1)
	mod, ok := doc.Children[0].(*XModule)
	require.True(t, ok)
	require.Len(t, mod.Body, 1)
}

func TestTokenStore_Queries(t *testing.T) {
	doc := parseSwan(t, `<view>{{x}}</view>`, ParseOptions{ParseExpression: true})
	svc := ESLintServices{doc: doc}
	store := svc.GetTemplateBodyTokenStore()
	require.NotNil(t, store)

	last := len(doc.Tokens) - 1
	require.NotNil(t, store)
	before := store.GetTokenBefore(doc.Tokens[last].Range[0] + 1)
	require.NotNil(t, before)

	after := store.GetTokenAfter(0)
	require.NotNil(t, after)
	require.Equal(t, doc.Tokens[0].Range[0], after.Range[0])
}

func TestWalk_VisitsElementsAndExpressions(t *testing.T) {
	doc := parseSwan(t, `<view s-if="{{cond}}"><text>{{cond}}</text></view>`, ParseOptions{ParseExpression: true})
	var elementCount int
	var identCount int
	Walk(doc, CombinedVisitor{
		Node: func(n XNode) {
			if _, ok := n.(*XElement); ok {
				elementCount++
			}
		},
		Script: func(n ast.Node) {
			if _, ok := n.(*ast.IdentifierNode); ok {
				identCount++
			}
		},
	})
	require.Equal(t, 2, elementCount)
	require.Equal(t, 2, identCount)
}

func TestGetDocumentFragment_NilForScriptOnly(t *testing.T) {
	doc := Parse("a + b", ParseOptions{FilePath: "helper.sjs", ParseExpression: true})
	svc := ESLintServices{doc: doc}
	require.Nil(t, svc.GetDocumentFragment())
}
