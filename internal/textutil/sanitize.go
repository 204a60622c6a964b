package textutil

import (
	"strings"
	"unicode"
)

// FileToken reduces value to a lowercase token made of letters, digits,
// '-' and '_' so it can be embedded in a file name. Runs of any other
// characters collapse into a single '_'. An empty result yields fallback.
func FileToken(value, fallback string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(value) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
	}
	if out := strings.Trim(b.String(), "_-"); out != "" {
		return out
	}
	return fallback
}
