// package match implements title normalization and similarity scoring for
// tracklist reconciliation.
//
// Normalized titles serve three roles: storage keys for overrides and flags,
// comparison keys for exact and fuzzy matching, and sort tie-break keys.
package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	featRegex    = regexp.MustCompile(`(?i)\s*[(\[]?\s*\b(?:feat\.?|ft\.?|featuring)\s+[^)\]]*[)\]]?\s*`)
	bracketRegex = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]\s*`)
	suffixRegex  = regexp.MustCompile(`(?i)\s+[-–—]\s+.*\b(remaster(ed)?|deluxe|edition|version|live|mono|stereo|demo|mix|edit|single|anniversary|bonus)\b.*$`)
	punctRegex   = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	spaceRegex   = regexp.MustCompile(`\s+`)
)

// NormalizeTitle canonicalizes a raw track title for comparison: folds to
// NFKD and drops combining marks, lowercases, strips featured-artist
// credits, bracketed annotations, and dash-suffixed edition noise, then
// strips punctuation and collapses whitespace.
//
// Idempotent: NormalizeTitle(NormalizeTitle(x)) == NormalizeTitle(x).
func NormalizeTitle(raw string) string {
	s := norm.NFKD.String(raw)

	var b strings.Builder
	for _, r := range s {
		if !unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}
	s = strings.ToLower(b.String())

	s = featRegex.ReplaceAllString(s, " ")
	s = bracketRegex.ReplaceAllString(s, " ")
	s = suffixRegex.ReplaceAllString(s, "")
	s = punctRegex.ReplaceAllString(s, " ")
	s = spaceRegex.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// NormalizeArtist canonicalizes an artist name the same way as titles, minus
// the edition-noise stripping. Used for the substring containment check in
// global same-artist matching ("Artist" matches "Artist feat. X").
func NormalizeArtist(raw string) string {
	s := norm.NFKD.String(raw)

	var b strings.Builder
	for _, r := range s {
		if !unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}
	s = strings.ToLower(b.String())

	s = punctRegex.ReplaceAllString(s, " ")
	s = spaceRegex.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
