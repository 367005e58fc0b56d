package handle

import (
	"sort"
	"strings"
)

// cleanList trims every entry and drops blanks and case-insensitive
// duplicates, keeping the first spelling. max <= 0 means no limit.
func cleanList(in []string, max int) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// nonBlank trims entries and drops empty ones, keeping duplicates and order.
func nonBlank(in ...string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// languageCodes merges, canonicalizes, dedupes and sorts locale codes.
// pt_br becomes pt-BR; codes that do not look like a locale are dropped.
func languageCodes(single string, many []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, raw := range append([]string{single}, many...) {
		code, ok := canonicalLocale(raw)
		if !ok {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func canonicalLocale(raw string) (string, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	if s == "" {
		return "", false
	}
	parts := strings.Split(s, "-")
	if len(parts) > 3 {
		return "", false
	}
	lang := strings.ToLower(parts[0])
	if len(lang) < 2 || len(lang) > 3 || !letters(lang) {
		return "", false
	}
	out := []string{lang}
	for _, p := range parts[1:] {
		switch {
		case len(p) == 4 && letters(p):
			// script subtag, e.g. zh-Hant
			out = append(out, strings.ToUpper(p[:1])+strings.ToLower(p[1:]))
		case len(p) == 2 && letters(p):
			out = append(out, strings.ToUpper(p))
		case len(p) == 3 && digits(p):
			out = append(out, p)
		default:
			return "", false
		}
	}
	return strings.Join(out, "-"), true
}

func letters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
