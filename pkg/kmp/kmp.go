// Package kmp implements Knuth-Morris-Pratt substring search over
// byte chunks.
package kmp

// Matcher holds one pattern and its precomputed prefix function.
type Matcher struct {
	pattern []byte
	prefix  []int
}

// New builds a matcher for pattern.
func New(pattern []byte) *Matcher {
	m := &Matcher{
		pattern: append([]byte(nil), pattern...),
		prefix:  make([]int, len(pattern)),
	}

	j := 0
	for i := 1; i < len(m.pattern); i++ {
		for j > 0 && m.pattern[i] != m.pattern[j] {
			j = m.prefix[j-1]
		}
		if m.pattern[i] == m.pattern[j] {
			j++
		}
		m.prefix[i] = j
	}
	return m
}

// Len returns the pattern length.
func (m *Matcher) Len() int { return len(m.pattern) }

// Search scans chunk and returns the absolute offset (base plus
// in-chunk index) of every match, in order. Overlapping matches are
// reported. Matches spanning chunk borders are not found; callers
// that need them must overlap their chunks.
func (m *Matcher) Search(chunk []byte, base int64) []int64 {
	if len(m.pattern) == 0 {
		return nil
	}

	var out []int64
	j := 0
	for i := 0; i < len(chunk); i++ {
		for j > 0 && chunk[i] != m.pattern[j] {
			j = m.prefix[j-1]
		}
		if chunk[i] == m.pattern[j] {
			j++
		}
		if j == len(m.pattern) {
			out = append(out, base+int64(i-len(m.pattern)+1))
			j = m.prefix[j-1]
		}
	}
	return out
}
