package watcher

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/blackwell-systems/idlewipe/internal/pathutil"
)

// Matcher maps filesystem paths to the application whose data directory
// contains them. Roots are the normalized cleanup paths from the registry.
type Matcher struct {
	roots map[string]string // normalized root -> app ID
}

// NewMatcher returns an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{roots: make(map[string]string)}
}

// AddApp registers appID's path expressions. Expressions are normalized
// the same way the cleanup path does it, so watching and wiping agree on
// what belongs to an app.
func (m *Matcher) AddApp(appID string, pathExprs []string) {
	for _, expr := range pathExprs {
		m.roots[pathutil.Normalize(expr)] = appID
	}
}

// Roots returns all registered root paths in sorted order.
func (m *Matcher) Roots() []string {
	roots := make([]string, 0, len(m.roots))
	for root := range m.roots {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// Match returns the application owning path, if any. When roots nest, the
// most specific (longest) root wins.
func (m *Matcher) Match(path string) (string, bool) {
	path = filepath.Clean(path)

	bestLen := -1
	var bestApp string
	for root, app := range m.roots {
		if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
			continue
		}
		if len(root) > bestLen {
			bestLen = len(root)
			bestApp = app
		}
	}

	if bestLen < 0 {
		return "", false
	}
	return bestApp, true
}
