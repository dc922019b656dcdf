// Package main provides the CLI entrypoint for tuiread.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/tuiread/internal/clock"
	"github.com/verte-zerg/tuiread/internal/config"
	"github.com/verte-zerg/tuiread/internal/eventlog"
	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/pacer"
	"github.com/verte-zerg/tuiread/internal/resume"
	"github.com/verte-zerg/tuiread/internal/stats"
	"github.com/verte-zerg/tuiread/internal/statsui"
	"github.com/verte-zerg/tuiread/internal/store"
	"github.com/verte-zerg/tuiread/internal/tokenize"
	"github.com/verte-zerg/tuiread/internal/tui"
	"github.com/verte-zerg/tuiread/internal/wordlist"
)

const defaultHistory = 20

var (
	readWPM            float64
	readTargetWPM      float64
	readMinWPM         float64
	readMaxWPM         float64
	readMode           string
	readChunk          int
	readDevice         string
	readFlowMultiplier float64
	readResume         bool
	readText           string
	readPractice       bool
	practiceLang       string
	practiceWords      int

	statsDevice      string
	statsText        string
	statsSince       string
	statsLast        int
	statsCurveWindow int

	historyLast int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuiread [file|-]",
		Short:         "TUI speed reader",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runReadCmd,
	}

	flags := rootCmd.Flags()
	flags.Float64Var(&readWPM, "wpm", config.DefaultWPM, "starting speed in words per minute")
	flags.Float64Var(&readTargetWPM, "target-wpm", 0, "target speed for the meter (default: --wpm)")
	flags.Float64Var(&readMinWPM, "min-wpm", config.DefaultMinWPM, "lowest reachable speed")
	flags.Float64Var(&readMaxWPM, "max-wpm", config.DefaultMaxWPM, "highest reachable speed")
	flags.StringVar(&readMode, "mode", config.DefaultMode, "presentation mode: single or flow")
	flags.IntVar(&readChunk, "chunk", config.DefaultChunk, "words per unit (1-3)")
	flags.StringVar(&readDevice, "device", "", "device id for history and resume (default: hostname)")
	flags.Float64Var(&readFlowMultiplier, "flow-multiplier", config.DefaultFlowMultiplier, "flow scroll velocity scale")
	flags.BoolVar(&readResume, "resume", true, "continue the last unfinished text")
	flags.StringVar(&readText, "text", "", "read this text instead of a file")
	flags.BoolVar(&readPractice, "practice", false, "read a generated practice text")
	flags.StringVar(&practiceLang, "lang", config.DefaultLang, "word list language for --practice")
	flags.IntVar(&practiceWords, "words", config.DefaultWords, "words per practice text")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newForgetCmd())

	return rootCmd
}

func runReadCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, practice, err := buildConfig(cmd, fileCfg)
	if err != nil {
		return err
	}

	src, err := resolveSource(args, readText, readPractice, practice)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	journal, err := eventlog.New(config.DefaultEventLogPath())
	if err != nil {
		logErrf("event log disabled: %v\n", err)
		journal = nil
	}

	text, cursor, restored := src.Text, 0, false
	if cfg.Resume {
		if rec, ok := resume.Load(cmd.Context(), st, cfg.Device); ok {
			text, cursor, restored = pickResume(src, rec, &cfg)
		}
	}
	if strings.TrimSpace(text) == "" {
		return errNothingToRead
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := resume.NewWriter(st, cfg.Device, clock.System, func(err error) {
		if aerr := journal.Append(eventlog.Event{Event: eventlog.EventError, Device: cfg.Device, Error: err.Error()}); aerr != nil {
			_ = aerr
		}
	})
	var saver pacer.ResumeSaver
	if cfg.Resume {
		saver = writer
	}

	reader := tui.NewModel(tui.Options{
		Config:   cfg,
		Saver:    saver,
		Store:    st,
		Journal:  journal,
		Text:     text,
		Cursor:   cursor,
		Restored: restored,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if src.FromStdin {
		opts = append(opts, tea.WithInputTTY())
	}
	program := tea.NewProgram(reader, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writer.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		defer reader.Scheduler().Close()
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// pickResume decides whether rec continues the requested text. With no text
// requested the stored one is restored; otherwise the stored cursor is only
// reused when the text is the same.
func pickResume(src source, rec model.ResumeRecord, cfg *model.Config) (string, int, bool) {
	if src.Text != "" && tokenize.TextID(src.Text) != tokenize.TextID(rec.RawText) {
		return src.Text, 0, false
	}
	cfg.Mode = rec.Mode
	cfg.ChunkSize = rec.ChunkSize
	return rec.RawText, rec.Cursor, true
}

func buildConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, model.PracticeConfig, error) {
	r := fileCfg.Reader
	applyFloatConfig(cmd, "wpm", &readWPM, r.WPM)
	applyFloatConfig(cmd, "target-wpm", &readTargetWPM, r.TargetWPM)
	applyFloatConfig(cmd, "min-wpm", &readMinWPM, r.MinWPM)
	applyFloatConfig(cmd, "max-wpm", &readMaxWPM, r.MaxWPM)
	applyStringConfig(cmd, "mode", &readMode, r.Mode)
	applyIntConfig(cmd, "chunk", &readChunk, r.Chunk)
	applyStringConfig(cmd, "device", &readDevice, r.Device)
	applyFloatConfig(cmd, "flow-multiplier", &readFlowMultiplier, r.FlowMultiplier)
	applyBoolConfig(cmd, "resume", &readResume, r.Resume)
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyIntConfig(cmd, "words", &practiceWords, fileCfg.Practice.Words)

	mode, err := model.ParseMode(readMode)
	if err != nil {
		return model.Config{}, model.PracticeConfig{}, fmt.Errorf("--mode: %w", err)
	}
	target := readTargetWPM
	if target == 0 {
		target = readWPM
	}
	cfg := model.Config{
		WPM:            readWPM,
		TargetWPM:      target,
		MinWPM:         readMinWPM,
		MaxWPM:         readMaxWPM,
		Mode:           mode,
		ChunkSize:      readChunk,
		Device:         resolveDevice(readDevice),
		FlowMultiplier: readFlowMultiplier,
		Resume:         readResume,
	}
	practice := model.PracticeConfig{Lang: practiceLang, Words: practiceWords}
	if err := validateConfig(cfg, practice); err != nil {
		return model.Config{}, model.PracticeConfig{}, err
	}
	return cfg, practice, nil
}

func resolveDevice(device string) string {
	if device = strings.TrimSpace(device); device != "" {
		return device
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "default"
	}
	return host
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List practice word list languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	langs, err := wordlist.Languages(config.DefaultWordListDir())
	if err != nil {
		return err
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDevice, "device", "", "device filter")
	cmd.Flags().StringVar(&statsText, "text-id", "", "text id filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", config.DefaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	sinceTime, err := parseSince(statsSince)
	if err != nil {
		return err
	}
	cfg := model.StatsConfig{
		Device:      statsDevice,
		TextID:      statsText,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent reading passes",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&statsDevice, "device", "", "device filter")
	cmd.Flags().IntVar(&historyLast, "last", defaultHistory, "number of sessions")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	sessions, err := st.ListSessions(cmd.Context(), model.StatsConfig{Device: statsDevice, Last: historyLast})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if err := stats.RenderSummary(cmd.OutOrStdout(), sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSessionTable(cmd.OutOrStdout(), sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newForgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Drop the saved reading position",
		Args:  cobra.NoArgs,
		RunE:  runForgetCmd,
	}
	cmd.Flags().StringVar(&readDevice, "device", "", "device id (default: hostname)")
	return cmd
}

func runForgetCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	device := resolveDevice(readDevice)
	if err := st.ClearResume(cmd.Context(), device); err != nil {
		return fmt.Errorf("failed to clear resume record: %w", err)
	}
	logErrf("Cleared saved position for %s\n", device)
	return nil
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config, practice model.PracticeConfig) error {
	if cfg.MinWPM <= 0 {
		return fmt.Errorf("--min-wpm must be > 0")
	}
	if cfg.MaxWPM < cfg.MinWPM {
		return fmt.Errorf("--max-wpm must be >= --min-wpm")
	}
	if cfg.WPM <= 0 {
		return fmt.Errorf("--wpm must be > 0")
	}
	if cfg.TargetWPM < 0 {
		return fmt.Errorf("--target-wpm must be >= 0")
	}
	if !tokenize.ValidChunkSize(cfg.ChunkSize) {
		return fmt.Errorf("--chunk must be between %d and %d", tokenize.MinChunkSize, tokenize.MaxChunkSize)
	}
	if cfg.FlowMultiplier <= 0 {
		return fmt.Errorf("--flow-multiplier must be > 0")
	}
	if practice.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	return nil
}

var errNothingToRead = errors.New("nothing to read: pass a file, - for stdin, --text or --practice")

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
