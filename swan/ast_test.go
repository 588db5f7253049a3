package swan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerialize_RoundTripsASCII(t *testing.T) {
	src := `<view s-if="cond">Hello {{ name }}</view>`
	doc := Parse(src, ParseOptions{FilePath: "index.swan", ParseExpression: true})
	require.Equal(t, src, Serialize(doc))
}

// Regression: node/token Range is a UTF-16 code-unit offset (surrogate
// pairs count as two units), while XDocument.Source is a plain UTF-8 Go
// string. Serialize must translate between the two coordinate systems
// before slicing, or CJK/astral text comes back corrupted.
func TestSerialize_RoundTripsNonASCII(t *testing.T) {
	src := `<view>你好，世界 {{ name }} 😀</view>`
	doc := Parse(src, ParseOptions{FilePath: "index.swan", ParseExpression: true})
	require.Equal(t, src, Serialize(doc))
}

func TestSerialize_EmptyDocument(t *testing.T) {
	doc := Parse("", ParseOptions{FilePath: "index.swan", ParseExpression: true})
	require.Equal(t, "", Serialize(doc))
}

func TestSerialize_NilDocument(t *testing.T) {
	require.Equal(t, "", Serialize(nil))
}
