package report

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a cell or header value for matching: nil becomes "",
// anything else is stringified, stripped of diacritics, lowercased and trimmed.
// "Calificación", "CALIFICACION" and " calificacion " all normalize to "calificacion".
func Normalize(value interface{}) string {
	if value == nil {
		return ""
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case float64:
		s = formatNumber(v)
	default:
		s = fmt.Sprint(v)
	}
	// transformers keep state, so a fresh chain per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.TrimSpace(strings.ToLower(folded))
}
