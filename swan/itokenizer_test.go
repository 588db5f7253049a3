package swan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntermediateTokenizer_RecordsEveryRawToken(t *testing.T) {
	src := `<view data="{{x}}">hi</view>`
	errs := &errorList{}
	comments := &[]Token{}
	tokens := &[]Token{}
	tok := newTokenizer(src, errs, comments)
	it := newIntermediateTokenizer(tok, errs, tokens)

	var recordCount int
	for {
		_, ok := it.next()
		if !ok {
			break
		}
		recordCount++
	}

	require.NotEmpty(t, *tokens)
	// Every recorded token's range must lie within the source.
	for _, tk := range *tokens {
		require.GreaterOrEqual(t, tk.Range[0], 0)
		require.LessOrEqual(t, tk.Range[1], len(src))
	}
	require.Greater(t, len(*tokens), recordCount) // records merge multiple raw tokens
}

func TestIntermediateTokenizer_MissingMustacheEndBecomesText(t *testing.T) {
	src := `<view>{{cond</view>`
	errs := &errorList{}
	comments := &[]Token{}
	tokens := &[]Token{}
	tok := newTokenizer(src, errs, comments)
	it := newIntermediateTokenizer(tok, errs, tokens)

	var records []any
	for {
		rec, ok := it.next()
		if !ok {
			break
		}
		records = append(records, rec)
	}

	var sawMissingEnd bool
	for _, e := range errs.items {
		if e.Code == ErrMissingExpressionEndTag {
			sawMissingEnd = true
		}
	}
	require.True(t, sawMissingEnd)

	var sawIrText bool
	for _, r := range records {
		if txt, ok := r.(*irText); ok && txt.Tok.Value != "" {
			sawIrText = true
		}
	}
	require.True(t, sawIrText)
}
