package urls

import (
	"regexp"
)

var linkRe = regexp.MustCompile(`\[[^\]]*\]\(([^\)]+)\)`)

// LinksFromBody pulls markdown link targets out of selftext or comment
// bodies. Escaped close-parens are neutralized first so they cannot
// terminate the target early. Returns a deduplicated set in order of
// first appearance; filtering is Classify's job.
func LinksFromBody(body string) []string {
	body = escapedParen.Replace(body)

	var result []string
	seen := make(map[string]struct{})
	for _, m := range linkRe.FindAllStringSubmatch(body, -1) {
		url := m[1]
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		result = append(result, url)
	}
	return result
}
