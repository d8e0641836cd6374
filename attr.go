package wgconf

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// parseAttrLine splits a single "Attr = value[, value...] [# comment]" line
// into its parts. A purely numeric value is coerced to int, anything else is
// split on commas into an ordered list of trimmed strings. The comment keeps
// its leading '#'.
func parseAttrLine(line string) (attr string, values []any, comment string) { //nolint:nonamedreturns
	attr, rest, _ := strings.Cut(line, "=")
	attr = strings.TrimSpace(attr)

	value, tail, found := strings.Cut(rest, "#")
	if found {
		comment = "#" + tail
	}
	value = strings.TrimSpace(value)

	if isNumeric(value) {
		n, _ := strconv.Atoi(value)

		return attr, []any{n}, comment
	}

	for _, item := range strings.Split(value, ",") {
		values = append(values, strings.TrimSpace(item))
	}

	return attr, values, comment
}

// formatAttrLine is the inverse of parseAttrLine up to whitespace
// normalization. Values are joined with ", ", a non-empty comment is
// appended after a single space.
func formatAttrLine(attr string, values []any, comment string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}

	line := attr + " = " + strings.Join(parts, ", ")
	if comment != "" {
		line += " " + comment
	}

	return line
}

// isNumeric reports whether s consists solely of decimal digits. Signs, hex
// and the empty string do not qualify.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// removeValue drops the first occurrence of v from values.
func removeValue(values []any, v any) []any {
	if i := slices.Index(values, v); i >= 0 {
		return slices.Delete(values, i, i+1)
	}

	return values
}
