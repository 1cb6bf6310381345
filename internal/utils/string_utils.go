package utils

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reScript   = regexp.MustCompile(`(?i)<script[^>]*>[\s\S]*?</script>`)
	reStyle    = regexp.MustCompile(`(?i)<style[^>]*>[\s\S]*?</style>`)
	textPolicy = bluemonday.StrictPolicy()
)

// SanitizeText strips HTML tags, script/style content and entities from
// user-entered profile text and collapses whitespace.
func SanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "")

	// Decode first so escaped tags are recognized
	s = html.UnescapeString(s)

	s = reScript.ReplaceAllString(s, "")
	s = reStyle.ReplaceAllString(s, "")
	s = textPolicy.Sanitize(s)

	// bluemonday escapes what it keeps; we want plain text
	s = html.UnescapeString(s)

	return strings.Join(strings.Fields(s), " ")
}

// RemoveAccents drops combining marks after canonical decomposition, so
// "José" becomes "Jose".
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldText prepares text for case and accent insensitive comparison.
// Casers are stateful, so each call gets its own.
func FoldText(s string) string {
	return cases.Fold().String(RemoveAccents(strings.TrimSpace(s)))
}

// DigitsOnly keeps the decimal digits of s, for comparing phone numbers
// written with different punctuation.
func DigitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
