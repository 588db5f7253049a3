package swan

import (
	"regexp"
	"strings"

	"github.com/fatih/camelcase"
)

// directiveNameRE is the directive grammar from §6: the colon after
// bind/catch/capture-bind/capture-catch is optional ("bindtap" == "bind:tap").
var directiveNameRE = regexp.MustCompile(`^(s-|bind:?|catch:?|capture-bind:?|capture-catch:?)(\w[\w\-.]+)$`)

var directivePrefixCandidates = []string{"s-", "bind:", "catch:", "capture-bind:", "capture-catch:"}

// parseDirectiveKey matches raw against the directive grammar and, on
// success, returns the normalised key. rawPrefix/rawName keep raw as given
// (the tokenizer has already lower-cased attribute names, so the source's
// letter case is not kept); prefix collapses the optional colon on bind/catch/
// capture-bind/capture-catch so callers can compare against the fixed,
// colon-less prefix vocabulary §3 lists.
func parseDirectiveKey(raw string) (key *XDirectiveKey, ok bool) {
	m := directiveNameRE.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	rawPrefix, name := m[1], m[2]
	prefix := strings.TrimSuffix(rawPrefix, ":")
	return &XDirectiveKey{
		Prefix:    prefix,
		RawPrefix: rawPrefix,
		Name:      name,
		RawName:   name,
	}, true
}

// suggestDirective builds a "did you mean" hint for an attribute name that
// looks like a mistyped directive (§9 supplemental feature). It splits the
// offending name into camelCase/kebab-case-ish words with
// github.com/fatih/camelcase to split the offending name into words and
// tries to re-assemble it against each known prefix.
func suggestDirective(raw string) string {
	lower := strings.ToLower(raw)
	for _, prefix := range directivePrefixCandidates {
		bare := strings.TrimPrefix(prefix, "")
		trimmed := strings.TrimPrefix(lower, strings.TrimSuffix(bare, ":"))
		if trimmed == lower {
			continue
		}
		trimmed = strings.TrimLeft(trimmed, "-:_")
		if trimmed == "" {
			continue
		}
		words := camelcase.Split(trimmed)
		var b strings.Builder
		for i, w := range words {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteString(strings.ToLower(w))
		}
		name := b.String()
		if name == "" {
			continue
		}
		return prefix + name
	}
	// No recognisable prefix fragment: fall back to the most common
	// directive family so the message still points somewhere useful.
	words := camelcase.Split(strings.ReplaceAll(lower, "_", "-"))
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strings.ToLower(w))
	}
	return "s-" + b.String()
}
