package contact

import (
	"fmt"
	"strings"
)

// Slots normalizes raw input values into a full slot list: values are
// trimmed, blanks become Placeholder and the list is padded to MaxSlots.
func Slots(values ...string) ([]string, error) {
	if len(values) > MaxSlots {
		return nil, fmt.Errorf("%w: at most %d values, got %d", ErrInvalidArgument, MaxSlots, len(values))
	}
	out := make([]string, MaxSlots)
	for i := range out {
		out[i] = Placeholder
		if i < len(values) {
			if v := strings.TrimSpace(values[i]); v != "" {
				out[i] = v
			}
		}
	}
	return out, nil
}

// IsPlaceholder reports whether a slot holds no value.
func IsPlaceholder(v string) bool {
	return v == Placeholder || v == ""
}

// ValidPhone reports whether v is a digit-only phone token or the placeholder.
func ValidPhone(v string) bool {
	if v == Placeholder {
		return true
	}
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Values returns the non-placeholder entries of a slot list.
func Values(slots []string) []string {
	var out []string
	for _, v := range slots {
		if !IsPlaceholder(v) {
			out = append(out, v)
		}
	}
	return out
}

// ValidField reports whether v can be stored as a single field of a formatted
// line: it must not contain the Separator or a line break.
func ValidField(v string) bool {
	return !strings.ContainsAny(v, Separator+"\r\n")
}
