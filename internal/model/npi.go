package model

// ValidNPI reports whether s is a usable provider identifier: exactly
// 10 decimal digits and not the all-zero placeholder. Identifiers that
// fail this predicate are filtered, never treated as errors.
func ValidNPI(s string) bool {
	if len(s) != 10 {
		return false
	}
	allZero := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		if c != '0' {
			allZero = false
		}
	}
	return !allZero
}
