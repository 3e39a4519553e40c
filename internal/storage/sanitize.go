package storage

import "strings"

const maxSanitizedFilenameLength = 120

// SanitizeFilename makes an uploaded file name safe to embed in a storage
// key: whitespace runs collapse to a single hyphen, anything outside
// [A-Za-z0-9._-] is stripped, and the result is capped at 120 bytes so the
// final key stays within storage-key length limits.
func SanitizeFilename(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	joined := strings.Join(fields, "-")

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}

	out := b.String()
	if len(out) > maxSanitizedFilenameLength {
		out = out[:maxSanitizedFilenameLength]
	}
	return out
}
