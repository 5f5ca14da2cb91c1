// Package sanitize detects secret-like fields in parsed configuration
// trees and replaces their values with named placeholders before a
// bundle is distributed. Detection is a documented allow-list of key
// patterns, not entropy scanning: deterministic and testable, at the
// cost of some false negatives.
package sanitize

import (
	"regexp"
	"sort"
	"strings"
)

// suffixRe matches key names whose suffix marks them as sensitive.
var suffixRe = regexp.MustCompile(`(?i)_(KEY|TOKEN|SECRET|PASSWORD|CREDENTIAL)$`)

// bareTerms are whole key names considered sensitive after stripping
// separators and case ("api_key", "Api-Key" and "APIKEY" all match).
var bareTerms = map[string]struct{}{
	"apikey":   {},
	"apitoken": {},
	"secret":   {},
	"password": {},
	"passwd":   {},
	"auth":     {},
}

// placeholderRe is the strict placeholder form. No other bracket syntax
// is recognized.
var placeholderRe = regexp.MustCompile(`^\$\{[^}]+\}$`)

// separatorRe collapses runs of separator characters when deriving
// variable names and comparing bare terms.
var separatorRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// IsSensitiveKey reports whether a mapping key looks like it holds a
// secret.
func IsSensitiveKey(key string) bool {
	if suffixRe.MatchString(key) {
		return true
	}
	bare := strings.ToLower(separatorRe.ReplaceAllString(key, ""))
	_, ok := bareTerms[bare]
	return ok
}

// VariableName derives the placeholder variable name for a key: the
// leaf segment uppercased, with separator runs normalized to single
// underscores.
func VariableName(key string) string {
	name := separatorRe.ReplaceAllString(key, "_")
	name = strings.Trim(name, "_")
	return strings.ToUpper(name)
}

// IsPlaceholder reports whether a value already is a ${...} placeholder.
func IsPlaceholder(value string) bool {
	return placeholderRe.MatchString(value)
}

// Placeholder renders the literal placeholder for a variable name.
func Placeholder(variable string) string {
	return "${" + variable + "}"
}

// Sanitize walks a parsed configuration tree and replaces every
// sensitive, non-empty string value with a placeholder. It returns the
// rewritten tree and a mapping from variable name to a human-readable
// hint (the key path of the first occurrence). The input is never
// mutated and the transform is idempotent: values that already are
// placeholders pass through untouched.
func Sanitize(tree interface{}) (interface{}, map[string]string) {
	vars := make(map[string]string)
	out := sanitizeNode(tree, "", vars)
	return out, vars
}

func sanitizeNode(node interface{}, path string, vars map[string]string) interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for _, key := range sortedKeys(v) {
			childPath := key
			if path != "" {
				childPath = path + "." + key
			}
			value := v[key]
			if s, ok := value.(string); ok && IsSensitiveKey(key) && s != "" && !IsPlaceholder(s) {
				name := VariableName(key)
				// First occurrence wins: identical leaf keys reuse the
				// variable derived for the first one seen.
				if _, seen := vars[name]; !seen {
					vars[name] = childPath
				}
				out[key] = Placeholder(name)
				continue
			}
			out[key] = sanitizeNode(value, childPath, vars)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = sanitizeNode(item, path, vars)
		}
		return out
	default:
		return node
	}
}

// Restore replaces ${VAR} string values in a tree with the supplied
// runtime values. Placeholders without a matching value are left as-is.
func Restore(tree interface{}, values map[string]string) interface{} {
	switch v := tree.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			out[key] = Restore(value, values)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = Restore(item, values)
		}
		return out
	case string:
		if IsPlaceholder(v) {
			name := v[2 : len(v)-1]
			if resolved, ok := values[name]; ok {
				return resolved
			}
		}
		return v
	default:
		return tree
	}
}

// CountPlaceholders counts the ${...} string values in a tree.
func CountPlaceholders(tree interface{}) int {
	switch v := tree.(type) {
	case map[string]interface{}:
		count := 0
		for _, value := range v {
			count += CountPlaceholders(value)
		}
		return count
	case []interface{}:
		count := 0
		for _, item := range v {
			count += CountPlaceholders(item)
		}
		return count
	case string:
		if IsPlaceholder(v) {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
