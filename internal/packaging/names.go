package packaging

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FolderName derives the package folder name from an original file
// name: extension stripped, NFC-normalized, and reduced to characters
// that are safe as a directory segment on every filesystem we target.
func FolderName(original string) string {
	base := filepath.Base(strings.TrimSpace(original))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	stem = norm.NFC.String(stem)

	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		default:
			// Non-ASCII letters pass through; punctuation does not.
			if r > 127 {
				b.WriteRune(r)
			}
		}
	}
	cleaned := strings.Trim(b.String(), "-_.")
	if cleaned == "" {
		return "package"
	}
	return cleaned
}
