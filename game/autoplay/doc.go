// Package autoplay contains card-picking strategies for automated players.
//
// A strategy only learns what a human would: the picture of each card it
// flips. MemoryStrategy never forgets a revealed card, so it finishes an
// N-pair deal in at most 2N-1 guesses; RandomStrategy remembers nothing and
// serves as a baseline.
//
// A turn is two calls:
//
//	first := s.First(available)
//	// flip first, then s.Remember(first, variant)
//	second := s.Second(first, available)
//	// flip second, then s.Remember(second, variant)
//	// after a match: s.Forget(first, second)
package autoplay
