package workflow

import "strings"

// SanitizeID reduces an identifier to the storage-key charset, dropping
// every byte outside [A-Za-z0-9_-]. Identifiers double as file names in the
// store, so path separators and dots must never survive. The result may be
// empty when nothing usable remains.
func SanitizeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z',
			c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9',
			c == '-', c == '_':
			b.WriteByte(c)
		}
	}
	return b.String()
}
