// Package hashtag extracts hashtags from captions.
//
// Names are case-insensitive and a caption counts each of them once, so "#Go #go #GO" is a single use of "go".
// Trending counters therefore show how many posts mention a tag, not how many times it was typed.
package hashtag

import (
	"regexp"
	"strings"
)

var re = regexp.MustCompile(`#[a-zA-Z0-9]+`)

// Extract returns lower-cased unique hashtag names in order of first appearance.
func Extract(caption string) []string {
	matches := re.FindAllString(caption, -1)

	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))

	for _, v := range matches {
		name := strings.ToLower(v[1:])
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		out = append(out, name)
	}

	return out
}
