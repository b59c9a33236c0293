package alias

import "strings"

// Alias maps an alternate player tag to the primary tag whose stats it
// should fold into.
type Alias struct {
	AliasTag   string `db:"alias_tag"`
	PrimaryTag string `db:"primary_tag"`
}

// Resolve follows alias links from tag to its primary tag. Lookup is
// case-insensitive on the alias side. A cycle or an overly long chain
// stops at the last resolved tag instead of looping.
func Resolve(tag string, aliases map[string]string) string {
	current := tag
	seen := map[string]struct{}{}
	for {
		key := strings.ToLower(strings.TrimSpace(current))
		if _, ok := seen[key]; ok {
			return current
		}
		seen[key] = struct{}{}

		next, ok := aliases[key]
		if !ok || next == current {
			return current
		}
		current = next
	}
}
