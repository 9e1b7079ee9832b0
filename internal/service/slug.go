package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugBaseLen = 150
	fallbackSlug   = "recipe"
)

var ligatures = strings.NewReplacer("œ", "oe", "Œ", "oe", "æ", "ae", "Æ", "ae", "ß", "ss")

// Slugify folds accents, lowercases and joins alphanumeric runs with '-'.
// "Pâtes à la tomate" becomes "pates-a-la-tomate".
func Slugify(title string) string {
	// transform chains carry state, so each call builds its own.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, ligatures.Replace(title))
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			if b.Len() >= maxSlugBaseLen {
				break
			}
			continue
		}
		pendingDash = true
	}

	if b.Len() == 0 {
		return fallbackSlug
	}
	return b.String()
}
