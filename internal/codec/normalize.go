package codec

import "strings"

// IDNormalizer maps a stored id to the id the provider knows
type IDNormalizer func(string) string

// Identity leaves ids untouched
func Identity(id string) string {
	return id
}

// EnforcedPath keeps the final segment of a slash-delimited path, so
// "catalog/mens/shoes/P123" resolves to "P123". Trailing slashes are ignored.
func EnforcedPath(id string) string {
	trimmed := strings.TrimRight(id, "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
