package domain

import "strings"

// Kind identifies a producer export layout.
type Kind string

const (
	KindSFG Kind = "SFG"
	KindSQ1 Kind = "SQ1"
	KindFNS Kind = "FNS"
)

// ParseKind maps a producer code onto a known layout.
func ParseKind(code string) (Kind, bool) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(code))); k {
	case KindSFG, KindSQ1, KindFNS:
		return k, true
	default:
		return k, false
	}
}
