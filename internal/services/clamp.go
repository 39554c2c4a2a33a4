package services

const (
	// MaxDistance bounds how fuzzy a hamming search may get; past ~30
	// bits of a 144-bit dhash everything matches everything.
	MaxDistance = 30

	DefaultMinFrames = 10
	MaxMinFrames     = 30
)

func ClampDistance(d int) int {
	if d < 0 {
		return 0
	}
	if d > MaxDistance {
		return MaxDistance
	}
	return d
}

func ClampMinFrames(f int) int {
	if f < 1 {
		return DefaultMinFrames
	}
	if f > MaxMinFrames {
		return MaxMinFrames
	}
	return f
}
