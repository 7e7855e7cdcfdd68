package rosterdomain

import (
	"strings"
)

// encodingReplacer rewrites umlauts and the apostrophe stand-ins that show up
// in federation exports after a round trip through Latin-1 tooling.
// Apostrophe-like glyphs are dropped entirely so "D´Elia" and "Delia" compare equal.
var encodingReplacer = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
	"´", "",
	"?", "",
	"'", "",
	"’", "",
	"`", "",
)

// nameAliases is the closed table of spellings known to be confused for the
// same person. Keys and values are lowercase. Not a phonetic algorithm:
// an entry only exists when a real mix-up was observed.
var nameAliases = map[string][]string{
	"marc":   {"mark"},
	"mark":   {"marc"},
	"luis":   {"louis"},
	"louis":  {"luis"},
	"d´elia": {"d?elia", "d'elia", "delia"},
	"d?elia": {"d´elia", "d'elia", "delia"},
	"d'elia": {"d´elia", "d?elia", "delia"},
	"delia":  {"d´elia", "d?elia", "d'elia"},
	"löwe":   {"loewe"},
	"loewe":  {"löwe"},
	"kleiss": {"kleiß"},
	"kleis":  {"kleiß"},
	"kleiß":  {"kleiss", "kleis"},
}

// Normalize lowercases and trims text, collapses inner whitespace and rewrites
// known encoding artifacts to their ASCII form.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.Join(strings.Fields(text), " "))
	return encodingReplacer.Replace(lowered)
}

// Variants returns the lowercase trimmed name followed by its registered
// aliases and its normalized form. The first element is always the input.
func Variants(name string) []string {
	base := strings.ToLower(strings.TrimSpace(name))
	out := []string{base}
	seen := map[string]struct{}{base: {}}

	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	for _, alias := range nameAliases[base] {
		add(alias)
	}
	if normalized := Normalize(base); normalized != base {
		add(normalized)
	}
	return out
}

// Aliases returns Variants without the input itself.
func Aliases(name string) []string {
	return Variants(name)[1:]
}
