package normalize

import (
	"strings"
	"unicode"
)

// minGuardLength is the spec-text length below which the token-overlap guard
// stays silent. Short spec strings carry too little signal to judge by token
// overlap alone.
const minGuardLength = 10

// ModelTokens extracts the set of whitespace-delimited, digit-bearing tokens
// from a cleaned spec string: model numbers, capacities, clock rates. These
// are the strongest discriminators between near-duplicate tech products.
// Splitting on whitespace keeps Cyrillic text glued to digits as one token
// instead of carving out the digit run.
func ModelTokens(clean string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(clean)) {
		if strings.ContainsFunc(token, unicode.IsDigit) {
			set[token] = struct{}{}
		}
	}
	return set
}

// SharesNoModelToken reports whether two cleaned spec strings have no
// digit-bearing token in common. Two products can share near-identical
// boilerplate spec text yet be different models; a total absence of shared
// model-like tokens overrides an otherwise-passing similarity score. Strings
// of minGuardLength characters or fewer are exempt. Symmetric in its
// arguments.
func SharesNoModelToken(clean1, clean2 string) bool {
	if len(clean1) <= minGuardLength || len(clean2) <= minGuardLength {
		return false
	}
	set1 := ModelTokens(clean1)
	if len(set1) == 0 {
		return true
	}
	for t := range ModelTokens(clean2) {
		if _, ok := set1[t]; ok {
			return false
		}
	}
	return true
}
