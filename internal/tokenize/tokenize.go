// Package tokenize splits raw text into display units.
package tokenize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// MinChunkSize is the smallest number of words per display unit.
	MinChunkSize = 1
	// MaxChunkSize is the largest number of words per display unit.
	MaxChunkSize = 3
)

// Words splits text on runs of whitespace.
func Words(text string) []string {
	words := strings.Fields(text)
	if words == nil {
		return []string{}
	}
	return words
}

// Tokenize splits text into display units of chunkSize words each. A trailing
// partial chunk is kept as a shorter final unit.
func Tokenize(text string, chunkSize int) []string {
	words := Words(text)
	chunkSize = ClampChunkSize(chunkSize)
	if chunkSize == 1 || len(words) == 0 {
		return words
	}
	units := make([]string, 0, (len(words)+chunkSize-1)/chunkSize)
	for start := 0; start < len(words); start += chunkSize {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		units = append(units, strings.Join(words[start:end], " "))
	}
	return units
}

// Dechunk returns the word sequence the units were built from.
func Dechunk(units []string) []string {
	words := make([]string, 0, len(units))
	for _, unit := range units {
		words = append(words, strings.Fields(unit)...)
	}
	return words
}

// ValidChunkSize reports whether n is a supported chunk size.
func ValidChunkSize(n int) bool {
	return n >= MinChunkSize && n <= MaxChunkSize
}

// ClampChunkSize forces n into the supported range.
func ClampChunkSize(n int) int {
	if n < MinChunkSize {
		return MinChunkSize
	}
	if n > MaxChunkSize {
		return MaxChunkSize
	}
	return n
}

// TextID returns a stable identifier for the word content of text. Texts that
// differ only in whitespace share an id.
func TextID(text string) string {
	sum := sha256.Sum256([]byte(strings.Join(Words(text), " ")))
	return hex.EncodeToString(sum[:])[:16]
}
