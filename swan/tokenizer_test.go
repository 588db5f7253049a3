package swan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allTokens(t *testing.T, src string) ([]Token, *errorList) {
	t.Helper()
	errs := &errorList{}
	comments := &[]Token{}
	tok := newTokenizer(src, errs, comments)
	var out []Token
	for {
		tk, ok := tok.nextToken()
		if !ok {
			break
		}
		out = append(out, tk)
	}
	return out, errs
}

func tokenTypes(toks []Token) []TokenType {
	types := make([]TokenType, len(toks))
	for i, tk := range toks {
		types[i] = tk.Type
	}
	return types
}

func TestTokenizer_SimpleStartAndEndTag(t *testing.T) {
	toks, errs := allTokens(t, `<view></view>`)
	require.Empty(t, errs.items)
	require.Equal(t, []TokenType{
		HTMLTagOpen, HTMLTagClose,
		HTMLEndTagOpen, HTMLTagClose,
	}, tokenTypes(toks))
}

func TestTokenizer_SelfClosingTag(t *testing.T) {
	toks, errs := allTokens(t, `<image src="a.png"/>`)
	require.Empty(t, errs.items)
	last := toks[len(toks)-1]
	require.Equal(t, HTMLSelfClosingTagClose, last.Type)
}

func TestTokenizer_AttributeWithMustacheValue(t *testing.T) {
	toks, errs := allTokens(t, `<view data="{{x}}"></view>`)
	require.Empty(t, errs.items)
	var sawStart, sawEnd bool
	for _, tk := range toks {
		if tk.Type == XMustacheStart {
			sawStart = true
		}
		if tk.Type == XMustacheEnd {
			sawEnd = true
		}
	}
	require.True(t, sawStart)
	require.True(t, sawEnd)
}

func TestTokenizer_DuplicateAttributeError(t *testing.T) {
	_, errs := allTokens(t, `<view a="1" a="2"></view>`)
	require.Len(t, errs.items, 1)
	require.Equal(t, ErrDuplicateAttribute, errs.items[0].Code)
}

func TestTokenizer_Comment(t *testing.T) {
	errs := &errorList{}
	comments := &[]Token{}
	tok := newTokenizer(`<!-- hi -->`, errs, comments)
	for {
		_, ok := tok.nextToken()
		if !ok {
			break
		}
	}
	require.Len(t, *comments, 1)
}

func TestTokenizer_EOFInTagReportsError(t *testing.T) {
	_, errs := allTokens(t, `<view`)
	var found bool
	for _, e := range errs.items {
		if e.Code == ErrEOFInTag {
			found = true
		}
	}
	require.True(t, found)
}

func TestTokenizer_TextRun(t *testing.T) {
	toks, errs := allTokens(t, `<view>hello world</view>`)
	require.Empty(t, errs.items)
	var text string
	for _, tk := range toks {
		if tk.Type == HTMLText {
			text = tk.Value
		}
	}
	require.Equal(t, "hello world", text)
}
