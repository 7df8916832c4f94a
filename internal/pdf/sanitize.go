package pdf

import (
	"path/filepath"
	"strings"
)

// invalidPathChars are the characters replaced during filename sanitization.
// The set matches what Windows rejects in path components, so output folders
// stay portable.
const invalidPathChars = `<>:"/\|?*`

// SanitizeName strips the extension from a document path and replaces
// characters that are invalid in file names with underscores. The result is
// used both as the output subfolder name and as the CSV base name.
func SanitizeName(docPath string) string {
	base := filepath.Base(docPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSpace(base)

	var sb strings.Builder
	sb.Grow(len(base))
	for _, r := range base {
		if r < 128 && strings.ContainsRune(invalidPathChars, r) {
			sb.WriteByte('_')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
