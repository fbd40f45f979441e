package fields

import (
	"regexp"
	"strings"
)

// Strategy is one heuristic over recognized ticket text: returns the
// extracted value and true, or "" and false when the heuristic finds
// nothing. Strategies are pure; ordering is the caller's concern.
type Strategy func(text string) (string, bool)

// FirstMatch combines strategies into an ordered chain: earlier strategies
// are preferred, a miss falls through to the next. This combinator is the
// backbone of every field extractor; none of them duplicate the traversal.
func FirstMatch(strategies ...Strategy) Strategy {
	return func(text string) (string, bool) {
		for _, s := range strategies {
			if v, ok := s(text); ok {
				return v, true
			}
		}
		return "", false
	}
}

// Validated wraps a strategy with a format-validity check; a value failing
// the check counts as a miss so the chain keeps going.
func Validated(s Strategy, valid func(string) bool) Strategy {
	return func(text string) (string, bool) {
		v, ok := s(text)
		if !ok || !valid(v) {
			return "", false
		}
		return v, true
	}
}

// textLines splits normalized text into trimmed, non-empty lines.
func textLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

// labeledValue is the prefix-keyword scan shared by most extractors: find a
// line starting with one of the labels (case-insensitive, optional ':' or
// '#' separator) and return the remainder of the line.
func labeledValue(labels ...string) Strategy {
	return func(text string) (string, bool) {
		for _, ln := range textLines(text) {
			lower := strings.ToLower(ln)
			for _, label := range labels {
				if !strings.HasPrefix(lower, label) {
					continue
				}
				rest := strings.TrimSpace(ln[len(label):])
				rest = strings.TrimLeft(rest, ":#")
				rest = strings.TrimSpace(rest)
				if rest != "" {
					return rest, true
				}
			}
		}
		return "", false
	}
}

// regexCapture returns the first capture group (or whole match when the
// pattern has no groups) of the first line the pattern matches.
func regexCapture(re *regexp.Regexp) Strategy {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		if len(m) > 1 && m[1] != "" {
			return strings.TrimSpace(m[1]), true
		}
		return strings.TrimSpace(m[0]), true
	}
}
