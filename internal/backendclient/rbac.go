package backendclient

import "strings"

// allowListEntry is one (method, path-pattern) tuple. A pattern segment of
// "*" matches exactly one path segment.
type allowListEntry struct {
	method  string
	pattern string
}

func parseAllowList(entries []string) []allowListEntry {
	parsed := make([]allowListEntry, 0, len(entries))
	for _, e := range entries {
		parts := strings.SplitN(e, " ", 2)
		if len(parts) != 2 {
			continue
		}
		parsed = append(parsed, allowListEntry{method: parts[0], pattern: parts[1]})
	}
	return parsed
}

func matchesPattern(path, pattern string) bool {
	pathSegs := strings.Split(strings.Trim(path, "/"), "/")
	patSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	if len(pathSegs) != len(patSegs) {
		return false
	}
	for i, p := range patSegs {
		if p == "*" {
			continue
		}
		if p != pathSegs[i] {
			return false
		}
	}
	return true
}

func matchesAny(entries []allowListEntry, method, path string) bool {
	for _, e := range entries {
		if !strings.EqualFold(e.method, method) {
			continue
		}
		if matchesPattern(path, e.pattern) {
			return true
		}
	}
	return false
}

// checkRBAC applies the deny-list first, then the allow-list, per the
// precedence the client's policy requires.
func checkRBAC(allow, deny []allowListEntry, method, path string) bool {
	if matchesAny(deny, method, path) {
		return false
	}
	return matchesAny(allow, method, path)
}
