package main

import (
	"image"
)

type Size = image.Point

// Event is the type of callback functions sent to the app's events channel
type Event func()

const outputChannels = 2

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
