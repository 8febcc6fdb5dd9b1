package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// State is a federative unit: full name plus two-letter code (UF).
type State struct {
	Name string `yaml:"name" json:"name"`
	Code string `yaml:"code" json:"code"`
}

// Region groups states under a name. Aliases are alternative spellings
// accepted by the filter (e.g. the English name).
type Region struct {
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
	States  []State  `yaml:"states" json:"states"`
}

// Table resolves region names and answers state membership.
// It is read-only after construction and safe for concurrent use.
type Table struct {
	// country carries only Name/Aliases; selecting it means "no filter".
	country Region
	regions []Region

	// byName maps a normalized name or alias to an index into regions.
	byName map[string]int
	// members holds normalized state names and codes per region index.
	members map[int]map[string]struct{}

	fingerprint string
}

// Fingerprint identifies the table content: "builtin" or the SHA-256 of the file.
func (t *Table) Fingerprint() string { return t.fingerprint }

// Country returns the whole-country option.
func (t *Table) Country() Region { return t.country }

// Regions returns the configured regions in declaration order.
func (t *Table) Regions() []Region {
	out := make([]Region, len(t.regions))
	copy(out, t.regions)
	return out
}

// Options returns the selector options: the country first, then every region.
func (t *Table) Options() []string {
	opts := make([]string, 0, len(t.regions)+1)
	opts = append(opts, t.country.Name)
	for _, r := range t.regions {
		opts = append(opts, r.Name)
	}
	return opts
}

// IsCountry reports whether name selects all regions. The empty string does too.
func (t *Table) IsCountry(name string) bool {
	key := normalize(name)
	if key == "" {
		return true
	}
	if key == normalize(t.country.Name) {
		return true
	}
	for _, a := range t.country.Aliases {
		if key == normalize(a) {
			return true
		}
	}
	return false
}

// Lookup resolves a region by name or alias, case and accent insensitive.
func (t *Table) Lookup(name string) (Region, bool) {
	idx, ok := t.byName[normalize(name)]
	if !ok {
		return Region{}, false
	}
	return t.regions[idx], true
}

// Valid reports whether name is accepted by the region filter.
func (t *Table) Valid(name string) bool {
	if t.IsCountry(name) {
		return true
	}
	_, ok := t.byName[normalize(name)]
	return ok
}

// Matcher returns a predicate over state names for the given region.
// The country option, the empty string and unknown names all yield nil (no filtering).
func (t *Table) Matcher(name string) func(state string) bool {
	if t.IsCountry(name) {
		return nil
	}
	idx, ok := t.byName[normalize(name)]
	if !ok {
		return nil
	}
	members := t.members[idx]
	return func(state string) bool {
		_, ok := members[normalize(state)]
		return ok
	}
}

// normalize lowercases, trims and strips diacritics so "São Paulo" == "sao paulo".
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	// Chain transformers are stateful; build one per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		return s
	}
	return folded
}
