package tokenize

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenizeSingleWords(t *testing.T) {
	got := Tokenize("  the quick\tbrown\n\nfox  ", 1)
	want := []string{"the", "quick", "brown", "fox"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected units: %q", got)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		got := Tokenize(text, 2)
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil sequence for %q, got %#v", text, got)
		}
	}
}

func TestTokenizeChunksKeepTrailingPartial(t *testing.T) {
	got := Tokenize("a b c d e", 2)
	want := []string{"a b", "c d", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected chunks: %q", got)
	}
	got = Tokenize("a b c d e", 3)
	want = []string{"a b c", "d e"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected chunks: %q", got)
	}
}

func TestTokenizeClampsChunkSize(t *testing.T) {
	if got := Tokenize("a b c d", 0); len(got) != 4 {
		t.Fatalf("expected chunk size 0 to clamp to 1, got %q", got)
	}
	if got := Tokenize("a b c d", 9); len(got) != 2 {
		t.Fatalf("expected chunk size 9 to clamp to 3, got %q", got)
	}
}

func TestTokenizeDeterministicAndReconstructs(t *testing.T) {
	texts := []string{
		"the quick brown fox jumps",
		"Hello,   world! This\tis a  test of\nchunked reading.",
		"single",
		"naïve café résumé — dashes and unicode",
	}
	for _, text := range texts {
		for size := MinChunkSize; size <= MaxChunkSize; size++ {
			first := Tokenize(text, size)
			second := Tokenize(text, size)
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("tokenize not deterministic for %q size %d", text, size)
			}
			if words := Dechunk(first); !reflect.DeepEqual(words, strings.Fields(text)) {
				t.Fatalf("dechunk mismatch for %q size %d: %q", text, size, words)
			}
			for _, unit := range first {
				if n := len(strings.Fields(unit)); n < 1 || n > size {
					t.Fatalf("unit %q has %d words for size %d", unit, n, size)
				}
			}
		}
	}
}

func TestTextIDIgnoresWhitespace(t *testing.T) {
	a := TextID("one two  three")
	b := TextID("one\ntwo three\n")
	if a != b {
		t.Fatalf("expected equal ids, got %s and %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 char id, got %q", a)
	}
	if a == TextID("one two four") {
		t.Fatalf("expected different ids for different text")
	}
}
