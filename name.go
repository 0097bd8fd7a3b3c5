package certgen

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alnah/go-certgen/internal/fileutil"
)

// maxNameWords caps displayed names to first and last name.
const maxNameWords = 2

// hostLabel is the role prefix meeting exports put in front of organizers.
const hostLabel = "host"

// NameCleaner normalizes raw table entries into display names.
// The zero value is not usable; create one with NewNameCleaner.
type NameCleaner struct {
	tag language.Tag
}

// NewNameCleaner returns a cleaner that title-cases in the given locale.
// Use language.Und for locale-neutral casing.
func NewNameCleaner(tag language.Tag) *NameCleaner {
	return &NameCleaner{tag: tag}
}

// Clean trims stray markers and whitespace, keeps the first two words and
// title-cases the result, including the letter after an apostrophe.
// Whitespace-only input returns "".
//
// Clean is idempotent: Clean(Clean(s)) == Clean(s).
func (c *NameCleaner) Clean(raw string) string {
	name := stripMarkers(raw)
	if name == "" {
		return ""
	}

	words := strings.Fields(name)
	if len(words) > maxNameWords {
		words = words[:maxNameWords]
	}

	// cases.Caser keeps state between calls, so one per Clean.
	title := cases.Title(c.tag)
	name = strings.TrimSpace(title.String(strings.Join(words, " ")))
	return c.capitalizeAfterApostrophe(name)
}

// apostrophes start a capitalized part inside a word, as in O'Neil.
const apostrophes = "'\u2019"

// capitalizeAfterApostrophe upper-cases a letter that directly follows an
// apostrophe; cases.Title lowers it.
func (c *NameCleaner) capitalizeAfterApostrophe(s string) string {
	if !strings.ContainsAny(s, apostrophes) {
		return s
	}

	upper := cases.Upper(c.tag)
	var b strings.Builder
	b.Grow(len(s))
	after := false
	for _, r := range s {
		if after && unicode.IsLetter(r) {
			b.WriteString(upper.String(string(r)))
		} else {
			b.WriteRune(r)
		}
		after = strings.ContainsRune(apostrophes, r)
	}
	return b.String()
}

// stripMarkers removes leading asterisks and "Host" labels until none remain.
func stripMarkers(s string) string {
	for {
		prev := s
		s = strings.TrimSpace(s)
		s = strings.TrimLeft(s, "*")
		s = strings.TrimSpace(s)

		if fields := strings.Fields(s); len(fields) > 1 && strings.EqualFold(fields[0], hostLabel) {
			s = s[len(fields[0]):]
		}

		if s == prev {
			return s
		}
	}
}

var defaultCleaner = NewNameCleaner(language.Und)

// CleanName normalizes a raw name with locale-neutral casing.
func CleanName(raw string) string {
	return defaultCleaner.Clean(raw)
}

// PreparedNames holds the render-ready names of a table and what was dropped.
type PreparedNames struct {
	Names      []string // Normalized names in input order
	Empty      int      // Rows that normalized to ""
	Duplicates int      // Rows whose normalized name or file stem was already seen
}

// PrepareNames normalizes raw rows, skips empty results and drops duplicate
// names, keeping the first occurrence so input order is preserved.
// Names that map to the same file stem, such as "Ana/Maria" and "Ana Maria",
// count as duplicates since their certificates would share files.
func PrepareNames(raw []string, clean func(string) string) PreparedNames {
	if clean == nil {
		clean = CleanName
	}

	out := PreparedNames{Names: make([]string, 0, len(raw))}
	seen := make(map[string]bool, len(raw))

	for _, r := range raw {
		name := clean(r)
		if name == "" {
			out.Empty++
			continue
		}
		stem := fileutil.CertificateStem(name)
		if seen[stem] {
			out.Duplicates++
			continue
		}
		seen[stem] = true
		out.Names = append(out.Names, name)
	}

	return out
}
