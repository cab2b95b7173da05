// Package symbols post-processes function names for display: demangling
// names the disassembler left mangled, and glob filtering.
package symbols

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ianlancetaylor/demangle"
)

// demangleCache memoizes Demangle. Listings repeat the same callee names
// many times, and C++ demangling is not cheap.
type demangleCache struct {
	mu      sync.RWMutex
	entries map[string]string
	hits    int
}

var cache = &demangleCache{entries: make(map[string]string)}

// Demangle returns the source-level form of a mangled C++ or Rust name.
// Names that are not mangled come back unchanged.
func Demangle(name string) string {
	cache.mu.RLock()
	if d, ok := cache.entries[name]; ok {
		cache.mu.RUnlock()
		cache.mu.Lock()
		cache.hits++
		cache.mu.Unlock()
		return d
	}
	cache.mu.RUnlock()

	d := demangle.Filter(name, demangle.NoClones)

	cache.mu.Lock()
	cache.entries[name] = d
	cache.mu.Unlock()
	return d
}

// CacheStats reports the number of distinct names seen and cache hits.
func CacheStats() (names, hits int) {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return len(cache.entries), cache.hits
}

// Matcher selects names by glob pattern. An empty pattern matches all.
// Names are not paths: * and ? also match '/', as in operator/.
type Matcher struct {
	pattern string
}

// slash stands in for '/' so doublestar does not treat it as a separator.
const slash = "\x00"

// NewMatcher validates pattern. The syntax is doublestar's: *, ?, [...] and
// {a,b} alternatives.
func NewMatcher(pattern string) (*Matcher, error) {
	pattern = strings.ReplaceAll(pattern, "/", slash)
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", strings.ReplaceAll(pattern, slash, "/"))
	}
	return &Matcher{pattern: pattern}, nil
}

// Match reports whether name is selected.
func (m *Matcher) Match(name string) bool {
	if m == nil || m.pattern == "" {
		return true
	}
	ok, err := doublestar.Match(m.pattern, strings.ReplaceAll(name, "/", slash))
	return err == nil && ok
}
