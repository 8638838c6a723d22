package models

import "strings"

// nilIfEmpty trims s and returns nil when nothing is left.
func nilIfEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func normalizeAll(fields ...**string) {
	for _, f := range fields {
		*f = nilIfEmpty(*f)
	}
}

// Str returns a pointer to s. Handy for optional fields.
func Str(s string) *string {
	return &s
}

// Deref returns the value of s or "" when s is nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
