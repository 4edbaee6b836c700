package guard

import (
	"fmt"
	"strings"
)

// Allowlist is a precompiled set of path patterns.
//
// Patterns are split on "/". A "*" segment matches exactly one non-empty
// segment, a trailing "**" matches one or more remaining segments, and any other
// segment matches literally. Trailing slashes are ignored on both sides.
type Allowlist struct {
	patterns []pattern
}

type pattern struct {
	raw      string
	segments []string
	tail     bool
}

// CompileAllowlist compiles patterns. A "**" anywhere but the last segment is an error.
func CompileAllowlist(patterns []string) (*Allowlist, error) {
	a := &Allowlist{patterns: make([]pattern, 0, len(patterns))}
	for _, raw := range patterns {
		if !strings.HasPrefix(raw, "/") {
			return nil, fmt.Errorf("invalid route pattern %q: must start with /", raw)
		}
		segs := splitPath(raw)
		p := pattern{raw: raw}
		for i, s := range segs {
			if s == "**" {
				if i != len(segs)-1 {
					return nil, fmt.Errorf("invalid route pattern %q: ** must be the last segment", raw)
				}
				p.tail = true
				break
			}
			p.segments = append(p.segments, s)
		}
		a.patterns = append(a.patterns, p)
	}
	return a, nil
}

// MustCompileAllowlist is CompileAllowlist that panics on error.
func MustCompileAllowlist(patterns []string) *Allowlist {
	a, err := CompileAllowlist(patterns)
	if err != nil {
		panic(err)
	}
	return a
}

// Match reports whether path matches any pattern.
func (a *Allowlist) Match(path string) bool {
	if a == nil {
		return false
	}
	segs := splitPath(path)
	for _, p := range a.patterns {
		if p.match(segs) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns in compile order.
func (a *Allowlist) Patterns() []string {
	out := make([]string, len(a.patterns))
	for i, p := range a.patterns {
		out[i] = p.raw
	}
	return out
}

func (p pattern) match(segs []string) bool {
	if p.tail {
		if len(segs) <= len(p.segments) {
			return false
		}
	} else if len(segs) != len(p.segments) {
		return false
	}
	for i, want := range p.segments {
		if want == "*" {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if segs[i] != want {
			return false
		}
	}
	return true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
