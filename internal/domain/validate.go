package domain

import (
	"fmt"
	"strings"
)

// ValidateString trims value and rejects empty results.
func ValidateString(value, name string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", &OpError{
			Op:   "validate",
			Kind: KindInvalidArgument,
			Err:  fmt.Errorf("%s should not be an empty string: %w", name, ErrInvalidArgument),
		}
	}
	return v, nil
}

// ValidateStrings trims every element and fails on the first empty one.
func ValidateStrings(values []string, name string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		clean, err := ValidateString(v, name)
		if err != nil {
			return nil, err
		}
		out = append(out, clean)
	}
	return out, nil
}
