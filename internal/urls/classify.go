package urls

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type Kind int

const (
	KindSkip Kind = iota
	KindImage
	KindVideo
	KindRedditVideo
	KindIndirect
)

var (
	imageExts = map[string]struct{}{
		"jpg": {}, "jpeg": {}, "png": {}, "gif": {},
		"tiff": {}, "bmp": {}, "webp": {},
	}
	videoExts = map[string]struct{}{
		"webm": {}, "mp4": {},
	}

	escapedParen = strings.NewReplacer(`\)`, "&#x28;")
)

// Default skip patterns: links that are navigation, not media. The
// list is heuristic and deploy-specific, so it can be replaced from a
// YAML file.
var defaultSkipPatterns = []string{
	`^https?://(www\.)?reddit\.com/r/[^/]+/?$`,
	`^https?://(www\.)?reddit\.com/(u|user)/[^/]+/?$`,
	`/message/compose`,
	`youtube\.com`,
	`youtu\.be`,
	`reddit\.com/search\?q=`,
	`github\.com`,
	`wikipedia\.org`,
	`addons\.mozilla\.org`,
}

type SkipRules struct {
	patterns []*regexp.Regexp
}

func DefaultSkipRules() *SkipRules {
	r, err := NewSkipRules(defaultSkipPatterns)
	if err != nil {
		// Built-in patterns are tested; this cannot happen at runtime.
		panic(err)
	}
	return r
}

func NewSkipRules(patterns []string) (*SkipRules, error) {
	rules := &SkipRules{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		rules.patterns = append(rules.patterns, re)
	}
	return rules, nil
}

// LoadSkipRules reads patterns from a YAML file of the form
// `skip: [pattern, ...]`. An empty path means the built-in defaults.
func LoadSkipRules(path string) (*SkipRules, error) {
	if path == "" {
		return DefaultSkipRules(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Skip []string `yaml:"skip"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return NewSkipRules(doc.Skip)
}

func (r *SkipRules) ShouldSkip(url string) bool {
	for _, re := range r.patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// Classify decides how a URL enters the pipeline: fetch directly as an
// image or video, resolve through yt-dlp (reddit-hosted video), or
// hand to the album expander. Direct media always wins; the skip rules
// only guard the expensive indirect fallback, so an image hosted on an
// otherwise-skipped site is still indexed.
func Classify(url string, rules *SkipRules) Kind {
	if IsImageLink(url) {
		return KindImage
	}
	if IsVideoLink(url) {
		return KindVideo
	}
	if IsRedditVideo(url) {
		return KindRedditVideo
	}
	if rules.ShouldSkip(url) {
		return KindSkip
	}
	return KindIndirect
}

// IsImageLink reports whether the URL points straight at image bytes:
// a known image extension (allowing Twitter's ":orig" suffix) or an
// i.reddituploads.com host, which serves images without an extension.
func IsImageLink(url string) bool {
	trimmed := trimQuery(url)
	if hostOf(trimmed) == "i.reddituploads.com" {
		return true
	}
	ext := strings.ToLower(extOf(strings.TrimSuffix(trimmed, ":orig")))
	_, ok := imageExts[ext]
	return ok
}

func IsVideoLink(url string) bool {
	_, ok := videoExts[VideoExt(url)]
	return ok
}

// VideoExt is the container hint for the decoder. Imgur's .gifv pages
// serve the same content as .mp4, so the extension (and later the
// fetched URL) is rewritten.
func VideoExt(url string) string {
	ext := strings.ToLower(extOf(trimQuery(url)))
	if ext == "gifv" {
		return "mp4"
	}
	return ext
}

func IsRedditVideo(url string) bool {
	return hostOf(url) == "v.redd.it"
}

// RewriteGifv maps imgur .gifv page URLs onto their .mp4 equivalent.
func RewriteGifv(url string) string {
	trimmed := trimQuery(url)
	if strings.ToLower(extOf(trimmed)) == "gifv" {
		return trimmed[:len(trimmed)-len("gifv")] + "mp4"
	}
	return url
}

func trimQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	return url
}

func hostOf(url string) string {
	u := strings.TrimPrefix(url, "http://")
	u = strings.TrimPrefix(u, "https://")
	if i := strings.IndexAny(u, "/?#"); i >= 0 {
		u = u[:i]
	}
	return strings.ToLower(u)
}

func extOf(url string) string {
	slash := strings.LastIndexByte(url, '/')
	dot := strings.LastIndexByte(url, '.')
	if dot < 0 || dot < slash {
		return ""
	}
	return url[dot+1:]
}
