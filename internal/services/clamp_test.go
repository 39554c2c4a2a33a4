package services

import (
	"testing"
)

func TestClampDistance(t *testing.T) {
	cases := []struct{ in, want int }{
		{-5, 0},
		{0, 0},
		{10, 10},
		{30, 30},
		{31, 30},
		{999, 30},
	}
	for _, c := range cases {
		if got := ClampDistance(c.in); got != c.want {
			t.Fatalf("ClampDistance(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestClampMinFrames(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 10},
		{-1, 10},
		{1, 1},
		{15, 15},
		{30, 30},
		{999, 30},
	}
	for _, c := range cases {
		if got := ClampMinFrames(c.in); got != c.want {
			t.Fatalf("ClampMinFrames(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
