package sanitize

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateEnvExample renders the variable-template file for a set of
// sanitized variables: one VAR=placeholder line per variable, with the
// originating key path as a comment.
func GenerateEnvExample(vars map[string]string) string {
	var b strings.Builder
	b.WriteString("# Runtime variables required by this bundle.\n")
	b.WriteString("# Copy this file to .env and fill in the real values.\n\n")

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&b, "# from %s\n", vars[name])
		fmt.Fprintf(&b, "%s=your-%s-here\n", name, strings.ToLower(strings.ReplaceAll(name, "_", "-")))
	}
	return b.String()
}

// ParseEnvFile parses KEY=VALUE lines, skipping blanks and comments.
// Values keep everything after the first '='.
func ParseEnvFile(content string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return values
}
