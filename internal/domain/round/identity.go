package round

import (
	"regexp"
	"strings"
)

const unknownWorld = "unknown"

var (
	instanceSuffixRegex = regexp.MustCompile(`\s*\[\d+\]\s*$`)
	whitespaceRegex     = regexp.MustCompile(`\s+`)
	nonSlugRegex        = regexp.MustCompile(`[^a-z0-9_]+`)
	underscoreRunRegex  = regexp.MustCompile(`_+`)
)

// TagParts splits a "Name@World" tag into display name, world and the
// normalized tag. Some tags carry instance markers like "Name@World [1]";
// the trailing " [<digits>]" is stripped so identity and stats aggregate
// correctly. The world segment after the LAST "@" defaults to "unknown".
func TagParts(playerTag string) (name, world, tag string) {
	trimmed := strings.TrimSpace(instanceSuffixRegex.ReplaceAllString(playerTag, ""))

	at := strings.LastIndex(trimmed, "@")
	if at == -1 {
		return trimmed, unknownWorld, trimmed
	}

	name = strings.TrimSpace(trimmed[:at])
	world = strings.TrimSpace(trimmed[at+1:])
	if world == "" {
		world = unknownWorld
	}
	return name, world, trimmed
}

// PlayerID derives the stable identity key "slug(world):slug(name)" from a
// player tag.
func PlayerID(playerTag string) string {
	name, world, _ := TagParts(playerTag)
	return Slugify(world) + ":" + Slugify(name)
}

// Slugify lowercases, replaces whitespace runs with "_", strips everything
// outside [a-z0-9_], collapses underscore runs and trims leading/trailing
// underscores.
func Slugify(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = whitespaceRegex.ReplaceAllString(s, "_")
	s = nonSlugRegex.ReplaceAllString(s, "")
	s = underscoreRunRegex.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
