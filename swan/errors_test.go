package swan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorList_AddKeepsSortedByIndex(t *testing.T) {
	l := &errorList{}
	l.add(&ParseError{Code: ErrDuplicateAttribute, Index: 5})
	l.add(&ParseError{Code: ErrDuplicateAttribute, Index: 1})
	l.add(&ParseError{Code: ErrDuplicateAttribute, Index: 3})
	l.add(&ParseError{Code: ErrDuplicateAttribute, Index: 3})

	var indices []int
	for _, e := range l.items {
		indices = append(indices, e.Index)
	}
	require.Equal(t, []int{1, 3, 3, 5}, indices)
}

func TestParseError_ErrorAndUnwrap(t *testing.T) {
	wrapped := errors.New("underlying")
	pe := &ParseError{Code: ErrExpressionError, Message: "boom", Line: 1, Column: 2, err: wrapped}
	require.Contains(t, pe.Error(), "boom")
	require.Contains(t, pe.Error(), string(ErrExpressionError))
	require.Same(t, wrapped, errors.Unwrap(pe))
}

func TestParseError_SuggestionInMessage(t *testing.T) {
	pe := &ParseError{Code: ErrInvalidDirective, Message: "invalid directive name", Suggestion: "s-if"}
	require.Contains(t, pe.Error(), `did you mean "s-if"`)
}

func TestParseError_ContextEmptyWithoutNode(t *testing.T) {
	pe := &ParseError{Code: ErrUnreachable}
	require.Equal(t, "", pe.Context())
}
