package index

import "strings"

// DefaultField is stored without a prefix so plain queries hit it directly.
const DefaultField = "article"

const fieldSeparator = ":"

// Key returns the physical index key for term within field.
func Key(field, term string) string {
	if field == "" || field == DefaultField {
		return term
	}
	return field + fieldSeparator + term
}

// SplitKey is the inverse of Key.
func SplitKey(key string) (field, term string) {
	if i := strings.Index(key, fieldSeparator); i >= 0 {
		return key[:i], key[i+1:]
	}
	return DefaultField, key
}
