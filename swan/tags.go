package swan

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// SWAN's tag-model constants (§6). Membership is checked by interning the
// tag name through golang.org/x/net/html/atom the same way an element stack
// built around atom.Atom comparisons would; unknown tag names fall back to a
// plain string set lookup since atom.Lookup only recognises the standard
// HTML vocabulary.
var (
	swanVoidElementTags = map[string]bool{
		"include": true,
	}
	swanRawTextTags = map[string]bool{
		"filter":     true,
		"import-sjs": true,
	}
	swanRCDataTags = map[string]bool{
		"textarea": true,
	}
	// swanCanBeLeftOpenTags is a reserved escape hatch (§6); no concrete
	// tag currently populates it.
	swanCanBeLeftOpenTags = map[string]bool{
		"_": true,
	}
)

// internTagName lower-cases and interns name via atom.Lookup when it is
// part of the standard HTML vocabulary, falling back to the raw lower-cased
// string for SWAN-specific tags (import-sjs, filter, ...) that atom does
// not know about.
func internTagName(name string) string {
	lower := strings.ToLower(name)
	if a := atom.Lookup([]byte(lower)); a != 0 {
		return a.String()
	}
	return lower
}

func isVoidElement(name string) bool    { return swanVoidElementTags[name] }
func isRawTextElement(name string) bool { return swanRawTextTags[name] }
func isRCDataElement(name string) bool  { return swanRCDataTags[name] }
func canBeLeftOpen(name string) bool    { return swanCanBeLeftOpenTags[name] }
