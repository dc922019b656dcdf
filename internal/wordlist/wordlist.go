// Package wordlist loads word lists for generated practice texts.
package wordlist

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed words_en.txt
var builtinEnglish string

// BuiltinLang is the language shipped inside the binary.
const BuiltinLang = "en"

// ErrNoWords reports a list that has no usable words after filtering.
var ErrNoWords = errors.New("word list is empty")

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	return words, nil
}

// Builtin returns the embedded list for lang, or false when none ships.
func Builtin(lang string) ([]string, bool) {
	if strings.ToLower(lang) != BuiltinLang {
		return nil, false
	}
	return strings.Fields(builtinEnglish), true
}

// Load reads the list at path and applies the language filter. A missing
// file falls back to the built-in list when one exists for lang.
func Load(path, lang string) ([]string, error) {
	words, err := LoadWords(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read word list %s: %w", path, err)
		}
		builtin, ok := Builtin(lang)
		if !ok {
			return nil, fmt.Errorf("no word list for %q at %s", lang, path)
		}
		words = builtin
	}

	filter := FilterForLang(lang)
	kept := words[:0:0]
	for _, word := range words {
		word = strings.ToLower(word)
		if filter(word) {
			kept = append(kept, word)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoWords)
	}
	return kept, nil
}

// Languages lists the built-in language plus every *.txt list in dir.
func Languages(dir string) ([]string, error) {
	seen := map[string]bool{BuiltinLang: true}
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read word list dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		seen[strings.TrimSuffix(entry.Name(), ".txt")] = true
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs, nil
}
