package naming

import "strings"

// Singular and Plural are suffix heuristics, not a dictionary. Irregular
// nouns ("children", "people") and words that already end in "s" in their
// singular form ("status") come out wrong; generated operation names depend
// on the exact output, so the rules stay fixed.

// Singular strips a plural suffix from the last word of s.
func Singular(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "ies") && len(s) > 3:
		return s[:len(s)-3] + matchCase(s[len(s)-3:], "y")
	case hasAnySuffix(lower, "sses", "ches", "shes", "xes"):
		return s[:len(s)-2]
	case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") && len(s) > 1:
		return s[:len(s)-1]
	}
	return s
}

// Plural adds a plural suffix to the last word of s.
func Plural(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "y") && len(s) > 1 && !isVowel(lower[len(lower)-2]):
		return s[:len(s)-1] + matchCase(s[len(s)-1:], "ies")
	case hasAnySuffix(lower, "s", "x", "ch", "sh"):
		return s + matchCase(s[len(s)-1:], "es")
	}
	return s + matchCase(s[len(s)-1:], "s")
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func isVowel(b byte) bool {
	return strings.IndexByte("aeiou", b) >= 0
}

// matchCase upper-cases suffix when the reference tail is upper-case.
func matchCase(tail, suffix string) string {
	if tail != "" && strings.ToUpper(tail) == tail && strings.ToLower(tail) != tail {
		return strings.ToUpper(suffix)
	}
	return suffix
}
