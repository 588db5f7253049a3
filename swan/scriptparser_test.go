package swan

import (
	"testing"

	"github.com/expr-lang/expr/ast"
	"github.com/stretchr/testify/require"
)

func TestExprScriptParser_ParseExpression(t *testing.T) {
	node, err := defaultScriptParser.ParseExpression("a + b", ScriptOptions{})
	require.NoError(t, err)
	_, ok := node.(*ast.BinaryNode)
	require.True(t, ok)
}

func TestExprScriptParser_ReservedKeywordRetry(t *testing.T) {
	node, err := defaultScriptParser.ParseExpression("in", ScriptOptions{})
	require.NoError(t, err)
	id, ok := node.(*ast.IdentifierNode)
	require.True(t, ok)
	require.Equal(t, "in", id.Value)
}

func TestExprScriptParser_ReservedKeywordNotBareFails(t *testing.T) {
	_, err := defaultScriptParser.ParseExpression("in +", ScriptOptions{})
	require.Error(t, err)
}

func TestExprScriptParser_ParseProgram(t *testing.T) {
	nodes, err := defaultScriptParser.ParseProgram("exports.a = 1;", ScriptOptions{})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
}

func TestExprScriptParser_ParseProgramMultipleStatements(t *testing.T) {
	nodes, err := defaultScriptParser.ParseProgram("a; b; c", ScriptOptions{})
	require.NoError(t, err)
	require.Len(t, nodes, 3)
}

func TestSplitTopLevel_RespectsNesting(t *testing.T) {
	parts := splitTopLevel(`a(1;2); b["x;y"]; c`, ';')
	require.Equal(t, []string{"a(1;2)", ` b["x;y"]`, " c"}, parts)
}

func TestNormalizeScriptError_EndOfExpressionHeuristic(t *testing.T) {
	msg, idx := normalizeScriptError(&scriptError{message: "boom", index: 5}, 5)
	require.Equal(t, "Unexpected end of expression.", msg)
	require.Equal(t, 5, idx)
}

func TestNormalizeScriptError_MidFragmentKeepsMessage(t *testing.T) {
	msg, idx := normalizeScriptError(&scriptError{message: "boom", index: 2}, 5)
	require.Equal(t, "boom", msg)
	require.Equal(t, 2, idx)
}
