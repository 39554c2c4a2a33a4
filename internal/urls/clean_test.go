package urls

import (
	"testing"
)

func TestCleanStripsQueryAndFragment(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://i.example.com/x.jpg?foo=1", "http://i.example.com/x.jpg"},
		{"http://i.example.com/x.jpg#frag", "http://i.example.com/x.jpg"},
		{"http://i.example.com/x.jpg", "http://i.example.com/x.jpg"},
		{"https://example.com/a/b/", "http://example.com/a/b"},
		{"https://example.com/a/b///", "http://example.com/a/b"},
		{"http://example.com/it's?x=\"y\"", "http://example.com/it%27s"},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Fatalf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"https://i.example.com/x.jpg?foo=1",
		"http://example.com/a/?q=1",
		"example.com/path#x",
		"https://example.com/it's",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Fatalf("Clean not idempotent on %q: %q vs %q", in, once, twice)
		}
	}
}

func TestCleanEqualUnderQueryVariants(t *testing.T) {
	base := Clean("http://host.com/img.png")
	if Clean("http://host.com/img.png?w=1") != base {
		t.Fatalf("query variant not equal")
	}
	if Clean("http://host.com/img.png#top") != base {
		t.Fatalf("fragment variant not equal")
	}
	if Clean("https://host.com/img.png") != base {
		t.Fatalf("scheme variant not equal")
	}
}
