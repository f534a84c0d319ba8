package common

import "strings"

// LastPathSegment returns the part of s after its final '/', ignoring one
// trailing slash. It returns s unchanged when there is no slash.
func LastPathSegment(s string) string {
	s = strings.TrimSuffix(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// SplitList splits s on sep, trims each element and drops empty ones.
func SplitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
