package domain

import "strings"

// MaxAliasLength is the longest alias dfkit will send to DataFed.
const MaxAliasLength = 60

const aliasReplaced = "~`!@#$%^&*()+=[{}]|\\:,;\"<>/?- "

// CleanAlias turns a free-form title into an alias DataFed accepts.
func CleanAlias(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	n := 0
	for _, r := range title {
		if n == MaxAliasLength {
			break
		}
		if strings.ContainsRune(aliasReplaced, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
		n++
	}

	return strings.TrimSpace(strings.ToLower(b.String()))
}

// AliasFromFile derives the alias used for a data file: its base name
// without extension, cleaned.
func AliasFromFile(base string) string {
	return CleanAlias(TitleFromFile(base))
}

// TitleFromFile strips the last extension from a file base name.
func TitleFromFile(base string) string {
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
