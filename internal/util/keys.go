package util

import "strings"

// ScanPattern returns a glob that matches every key starting with prefix
// literally. Redis MATCH treats * ? [ ] and \ as metacharacters.
func ScanPattern(prefix string) string {
	var b strings.Builder
	b.Grow(len(prefix) + 2)
	for _, r := range prefix {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('*')
	return b.String()
}

// JoinKey prefixes key with namespace ns. An empty ns leaves key unchanged.
func JoinKey(ns, key string) string {
	if ns == "" {
		return key
	}
	return ns + ":" + key
}
