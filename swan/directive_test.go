package swan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDirectiveKey(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		wantOk     bool
		wantPrefix string
		wantName   string
	}{
		{"s-prefix", "s-if", true, "s-", "if"},
		{"s-for", "s-for", true, "s-", "for"},
		{"bind-colon", "bind:tap", true, "bind", "tap"},
		{"bind-no-colon", "bindtap", true, "bind", "tap"},
		{"catch-colon", "catch:tap", true, "catch", "tap"},
		{"catch-no-colon", "catchtap", true, "catch", "tap"},
		{"capture-bind", "capture-bind:tap", true, "capture-bind", "tap"},
		{"capture-catch", "capture-catch:tap", true, "capture-catch", "tap"},
		{"capture-bind-no-colon", "capture-bindtap", true, "capture-bind", "tap"},
		{"plain-attr", "class", false, "", ""},
		{"data-attr", "data-id", false, "", ""},
		{"bind-empty-name", "bind:", false, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, ok := parseDirectiveKey(tc.raw)
			require.Equal(t, tc.wantOk, ok)
			if !tc.wantOk {
				return
			}
			require.Equal(t, tc.wantPrefix, key.Prefix)
			require.Equal(t, tc.wantName, key.Name)
		})
	}
}

func TestLooksLikeDirectiveAttempt(t *testing.T) {
	require.True(t, looksLikeDirectiveAttempt("s-iff"))
	require.True(t, looksLikeDirectiveAttempt("bind"))
	require.True(t, looksLikeDirectiveAttempt("capture-nope"))
	require.False(t, looksLikeDirectiveAttempt("class"))
	require.False(t, looksLikeDirectiveAttempt("style"))
}

func TestSuggestDirective_NonEmpty(t *testing.T) {
	s := suggestDirective("s-iff")
	require.NotEmpty(t, s)
	require.Contains(t, s, "s-")
}
