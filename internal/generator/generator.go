// Package generator builds practice reading texts from a word list.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

const (
	minSentence = 6
	maxSentence = 14
)

// Generator produces randomized practice text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate selects count words uniformly from words.
func (g *Generator) Generate(words []string, count int) []string {
	if len(words) == 0 || count <= 0 {
		return []string{}
	}
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, words[g.rnd.Intn(len(words))])
	}
	return result
}

// Practice returns count words grouped into sentences: each sentence starts
// capitalized and ends with a period.
func (g *Generator) Practice(words []string, count int) string {
	picked := g.Generate(words, count)
	if len(picked) == 0 {
		return ""
	}
	remaining := 0
	for i, word := range picked {
		if remaining == 0 {
			word = capitalize(word)
			remaining = minSentence + g.rnd.Intn(maxSentence-minSentence+1)
		}
		remaining--
		if remaining == 0 || i == len(picked)-1 {
			word += "."
			remaining = 0
		}
		picked[i] = word
	}
	return strings.Join(picked, " ")
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
