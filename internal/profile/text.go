package profile

import (
	"sort"
	"strings"
	"unicode"
)

// Combine flattens every textual field of the profile into one normalized
// blob, in a fixed order: philosophy, core values, interests, traits,
// communication preferences, responses. Map-backed fields are emitted in
// sorted key order so the output is stable across calls.
//
// It never fails: absent fields contribute nothing, and a profile with no
// textual content yields "". Callers must treat an empty blob as
// insufficient data, not as a zero-similarity document.
func Combine(p *UserProfile) string {
	if p == nil {
		return ""
	}

	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	add(p.Philosophy)
	for _, k := range sortedKeys(p.CoreValues) {
		add(k)
		for _, v := range p.CoreValues[k] {
			add(v)
		}
	}
	for _, in := range p.Interests {
		add(in)
	}
	for _, k := range sortedStringMapKeys(p.Traits) {
		add(k)
		add(p.Traits[k])
	}
	for _, k := range sortedStringMapKeys(p.Communication) {
		add(k)
		add(p.Communication[k])
	}
	for _, k := range sortedStringMapKeys(p.Responses) {
		add(p.Responses[k])
	}

	return Normalize(strings.Join(parts, " "))
}

// Normalize lower-cases text, folds punctuation to whitespace, and
// collapses whitespace runs to single spaces.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokens splits normalized text into words. Intended for the keyword
// fallback paths; the corpus model has its own n-gram tokenizer.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// TokenSet returns the unique words of normalized text.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokens(s) {
		set[t] = struct{}{}
	}
	return set
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStringMapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
