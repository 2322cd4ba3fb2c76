// Package names classifies raw owner strings as organizations or individuals
// and produces the normalized keys used for traversal and caching.
package names

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ownerscope/internal/domain"
)

var (
	spacedLetters4 = regexp.MustCompile(`(?i)\b([A-Z])\s+([A-Z])\s+([A-Z])\s+([A-Z])\b`)
	spacedLetters3 = regexp.MustCompile(`(?i)\b([A-Z])\s+([A-Z])\s+([A-Z])\b`)
	spacedLetters2 = regexp.MustCompile(`(?i)\b([A-Z])\s+([A-Z])\b`)
	whitespace     = regexp.MustCompile(`\s+`)
	nonAlnum       = regexp.MustCompile(`[^A-Z0-9 ]+`)
	punctuation    = regexp.MustCompile(`[^A-Za-z0-9\s]+`)

	// trailing legal suffix, punctuation optional: "INC", "INC.", ", L.L.C."
	legalSuffix = regexp.MustCompile(`[\s,]+(P\.?L\.?L\.?C|L\.?L\.?C|L\.?L\.?P|INC|CORP|LTD|L\.?P|P\.?C|P\.?A)\.?$`)
)

// Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	orgKeywords    []string
	personSuffixes []string
	corporateWords []string
	privacyAgents  []string
	placeholders   []string
	descPrefixes   []string
	abbreviations  map[string]struct{}
}

func New(r Rules) *Classifier {
	c := &Classifier{
		orgKeywords:    upperAll(r.OrgKeywords),
		personSuffixes: upperAll(r.PersonSuffixes),
		corporateWords: upperAll(r.CorporateWords),
		privacyAgents:  upperAll(r.PrivacyAgents),
		placeholders:   lowerAll(r.OfficerPlaceholders),
		descPrefixes:   lowerAll(r.DescriptionPrefixes),
		abbreviations:  make(map[string]struct{}, len(r.LegalAbbreviations)),
	}
	// longest suffix wins when several match
	sort.SliceStable(c.personSuffixes, func(i, j int) bool {
		return len(c.personSuffixes[i]) > len(c.personSuffixes[j])
	})
	for _, a := range r.LegalAbbreviations {
		c.abbreviations[strings.ToUpper(a)] = struct{}{}
	}
	return c
}

// Default returns a classifier over DefaultRules.
func Default() *Classifier { return New(DefaultRules()) }

// NormalizeAcronym collapses dotted or spaced single letters ("L.L.C.", "L L C")
// into contiguous acronyms ("LLC") and squeezes whitespace.
func NormalizeAcronym(name string) string {
	out := strings.ReplaceAll(name, ".", "")
	out = spacedLetters4.ReplaceAllString(out, "${1}${2}${3}${4}")
	out = spacedLetters3.ReplaceAllString(out, "${1}${2}${3}")
	out = spacedLetters2.ReplaceAllString(out, "${1}${2}")
	return strings.TrimSpace(whitespace.ReplaceAllString(out, " "))
}

// IsOrganization matches keywords as substrings, not whole words, so
// "ACMEHOLDINGS" still counts. Recall is preferred over precision here.
func (c *Classifier) IsOrganization(name string) bool {
	upper := strings.ToUpper(NormalizeAcronym(name))
	if upper == "" {
		return false
	}
	return containsAny(upper, c.orgKeywords)
}

// Classify trusts an explicit entity hint, otherwise derives the kind from the name.
func (c *Classifier) Classify(hint domain.EntityKind, name string) domain.EntityKind {
	if hint == domain.KindEntity || c.IsOrganization(name) {
		return domain.KindEntity
	}
	return domain.KindIndividual
}

// ExtractPersonName pulls a personal name out of a trust or vehicle name,
// e.g. "SMITH FAMILY TRUST" -> "Smith". It reports false when nothing personal
// remains.
func (c *Classifier) ExtractPersonName(entityName string) (string, bool) {
	s := strings.ToUpper(NormalizeAcronym(entityName))
	if s == "" {
		return "", false
	}
	s = strings.TrimPrefix(s, "THE ")
	for stripped := true; stripped; {
		stripped = false
		s = strings.TrimRight(s, " ,&-")
		s = strings.TrimSuffix(s, " AND")
		for _, suffix := range c.personSuffixes {
			if s == suffix {
				s = ""
				stripped = true
				break
			}
			if strings.HasSuffix(s, " "+suffix) {
				s = strings.TrimSuffix(s, suffix)
				stripped = true
				break
			}
		}
	}
	s = strings.TrimSpace(strings.Trim(s, " ,&-"))
	if s == "" || !hasLetter(s) {
		return "", false
	}
	// whole words only: "RALPH" must not read as "LP"
	if containsWord(s, c.orgKeywords) || containsWord(s, c.corporateWords) {
		return "", false
	}
	return titleCase(s), true
}

// NormalizeForCache builds the dedup key for registry lookups. Unlike VisitKey
// it drops a trailing legal suffix, so "ACME INC." and "Acme, Inc" collapse.
func (c *Classifier) NormalizeForCache(name string) string {
	s := strings.ToUpper(strings.TrimSpace(whitespace.ReplaceAllString(name, " ")))
	s = legalSuffix.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.TrimRight(s, " ,."))
}

// IsPrivacyAgent reports whether name belongs to a registered-agent service.
// Agent names match on word boundaries, so "INCORP SERVICES" matches and
// "BETA INCORPORATED" does not.
func (c *Classifier) IsPrivacyAgent(name string) bool {
	upper := strings.ToUpper(NormalizeAcronym(punctuation.ReplaceAllString(name, " ")))
	return upper != "" && containsWord(upper, c.privacyAgents)
}

// IsValidOfficerName filters registry placeholder rows such as
// "SEE DOCUMENT FOR OFFICERS" or "N/A".
func (c *Classifier) IsValidOfficerName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if len(lower) < 2 {
		return false
	}
	for _, p := range c.placeholders {
		if strings.Contains(lower, p) {
			return false
		}
	}
	for _, p := range c.descPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	return true
}

// DisplayName renders an owner string for humans: legal abbreviations stay
// upper-case, everything else is title-cased.
func (c *Classifier) DisplayName(name string) string {
	words := strings.Fields(NormalizeAcronym(name))
	caser := cases.Title(language.English)
	for i, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := c.abbreviations[strings.TrimRight(upper, ",")]; ok {
			words[i] = upper
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// VisitKey is the traversal identity of a name: upper-case, alphanumerics and
// spaces only. Legal suffixes are kept so "X LLC" and "X INC" stay distinct.
func VisitKey(name string) string {
	s := whitespace.ReplaceAllString(strings.ToUpper(name), " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(nonAlnum.ReplaceAllString(s, ""), " "))
}

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func containsWord(s string, words []string) bool {
	padded := " " + s + " "
	for _, w := range words {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func upperAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
