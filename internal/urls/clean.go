package urls

import (
	"strings"
)

// Clean produces the canonical dedup key for a URL. The result is
// stored in the clean_url columns, so the steps here are part of the
// on-disk contract: escape quotes, drop the scheme, drop trailing
// slashes, drop query and fragment, re-prefix http://. Idempotent.
func Clean(u string) string {
	u = strings.ReplaceAll(u, `"`, "%22")
	u = strings.ReplaceAll(u, "'", "%27")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "https://")
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimRight(u, "/")
	return "http://" + u
}
