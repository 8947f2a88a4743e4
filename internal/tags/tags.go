// Package tags normalizes and merges window tag lists. Tags are
// deduplicated case-insensitively; the first-seen casing and relative order
// are preserved.
package tags

import "strings"

// Normalize trims whitespace, drops empty entries, and deduplicates by
// lowercase key keeping the first-seen original casing.
func Normalize(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		tag := strings.TrimSpace(r)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ParseCSV parses comma-separated tag text into a normalized tag list.
func ParseCSV(raw string) []string {
	return Normalize(strings.Split(raw, ","))
}

// Merge applies add/remove operations onto an existing tag list. A tag
// present in remove is excluded even when it also appears in add; existing
// order comes first, newly added tags follow in their given order.
func Merge(existing, add, remove []string) []string {
	base := Normalize(existing)
	added := Normalize(add)
	removed := Normalize(remove)

	removeKeys := make(map[string]struct{}, len(removed))
	for _, tag := range removed {
		removeKeys[strings.ToLower(tag)] = struct{}{}
	}

	merged := make([]string, 0, len(base)+len(added))
	seen := make(map[string]struct{}, len(base)+len(added))
	for _, list := range [][]string{base, added} {
		for _, tag := range list {
			key := strings.ToLower(tag)
			if _, drop := removeKeys[key]; drop {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, tag)
		}
	}
	return merged
}
