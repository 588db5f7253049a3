package swan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternTagName_LowersUnknownTags(t *testing.T) {
	require.Equal(t, "import-sjs", internTagName("Import-Sjs"))
	require.Equal(t, "view", internTagName("VIEW"))
	require.Equal(t, "div", internTagName("DIV")) // known to atom.Lookup
}

func TestTagModel_Membership(t *testing.T) {
	require.True(t, isVoidElement("include"))
	require.False(t, isVoidElement("view"))
	require.True(t, isRawTextElement("filter"))
	require.True(t, isRawTextElement("import-sjs"))
	require.True(t, isRCDataElement("textarea"))
	require.False(t, isRCDataElement("view"))
}
