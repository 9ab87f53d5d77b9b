package osint

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Identifiers are best-effort, untrusted hints derived from the probe.
// They key the public-data lookups and carry no guarantee of accuracy.
type Identifiers struct {
	Username string
	Emails   []string
}

// removeDiacritics strips diacritical marks ("Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Derive builds candidate identifiers from a filename-like hint: the base
// name without extension, lowercased, diacritics stripped and reduced to
// alphanumerics, plus candidate emails over the given domains.
func Derive(hint string, domains []string) Identifiers {
	base := filepath.Base(hint)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(removeDiacritics(base))

	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	username := b.String()

	ids := Identifiers{Username: username}
	if username == "" {
		return ids
	}
	for _, domain := range domains {
		ids.Emails = append(ids.Emails, username+"@"+domain)
	}
	return ids
}
