package urls

import (
	"testing"
)

func TestLinksFromBody(t *testing.T) {
	body := "look at [this](https://i.example.com/a.jpg) and " +
		"[that](https://imgur.com/a/xyz)\n" +
		"[same again](https://i.example.com/a.jpg)"

	links := LinksFromBody(body)
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2: %v", len(links), links)
	}
	if links[0] != "https://i.example.com/a.jpg" || links[1] != "https://imgur.com/a/xyz" {
		t.Fatalf("unexpected links: %v", links)
	}
}

func TestLinksFromBodyKeepsEverything(t *testing.T) {
	// Extraction is unfiltered; dropping navigation links is the
	// classifier's call, not the parser's.
	body := "[video](https://youtube.com/watch?v=1) [pic](http://a.com/x.png)"
	links := LinksFromBody(body)
	if len(links) != 2 {
		t.Fatalf("got %v, want both links", links)
	}
}

func TestLinksFromBodyEscapedParen(t *testing.T) {
	body := `a [link](https://a.com/x.png) with \) escapes [b](https://b.com/y.png)`
	links := LinksFromBody(body)
	if len(links) != 2 {
		t.Fatalf("got %v", links)
	}
}

func TestLinksFromBodyMultiplePerLine(t *testing.T) {
	body := "[a](http://a.com/1.jpg) [b](http://b.com/2.jpg)"
	links := LinksFromBody(body)
	if len(links) != 2 {
		t.Fatalf("got %d links: %v", len(links), links)
	}
}

func TestLoadSkipRulesEmptyPathUsesDefaults(t *testing.T) {
	rules, err := LoadSkipRules("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !rules.ShouldSkip("https://github.com/x/y") {
		t.Fatalf("defaults missing github rule")
	}
	if rules.ShouldSkip("https://i.example.com/a.jpg") {
		t.Fatalf("defaults skip plain media link")
	}
}
