package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/verte-zerg/tuiread/internal/config"
	"github.com/verte-zerg/tuiread/internal/generator"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/wordlist"
)

// maxInputBytes bounds text read from files and stdin.
const maxInputBytes = 16 << 20

type source struct {
	Text      string
	FromStdin bool
}

// resolveSource picks the text to read. At most one of a path argument,
// --text and --practice may be given; with none, piped stdin is used. An
// empty source leaves the choice to the resume record.
func resolveSource(args []string, text string, practice bool, pcfg model.PracticeConfig) (source, error) {
	given := 0
	if len(args) > 0 {
		given++
	}
	if text != "" {
		given++
	}
	if practice {
		given++
	}
	if given > 1 {
		return source{}, fmt.Errorf("choose one of a file, --text or --practice")
	}

	switch {
	case text != "":
		return source{Text: text}, nil
	case practice:
		return practiceSource(pcfg)
	case len(args) > 0 && args[0] == "-":
		return stdinSource(os.Stdin)
	case len(args) > 0:
		return fileSource(args[0])
	case !term.IsTerminal(int(os.Stdin.Fd())):
		return stdinSource(os.Stdin)
	default:
		return source{}, nil
	}
}

func fileSource(path string) (source, error) {
	file, err := os.Open(path)
	if err != nil {
		return source{}, fmt.Errorf("failed to open text: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			_ = cerr
		}
	}()
	raw, err := readLimited(file)
	if err != nil {
		return source{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return source{Text: raw}, nil
}

func stdinSource(r io.Reader) (source, error) {
	raw, err := readLimited(r)
	if err != nil {
		return source{}, fmt.Errorf("failed to read stdin: %w", err)
	}
	return source{Text: raw, FromStdin: true}, nil
}

func readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxInputBytes {
		return "", fmt.Errorf("text is larger than %d MiB", maxInputBytes>>20)
	}
	return string(data), nil
}

func practiceSource(pcfg model.PracticeConfig) (source, error) {
	words, err := wordlist.Load(config.DefaultWordListPath(pcfg.Lang), pcfg.Lang)
	if err != nil {
		return source{}, fmt.Errorf("failed to load word list: %w\nRun: tuiread langs", err)
	}
	return source{Text: generator.New().Practice(words, pcfg.Words)}, nil
}
