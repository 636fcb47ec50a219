package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"docsmith/internal/annotator"
	"docsmith/internal/completion"
	"docsmith/internal/config"
	"docsmith/internal/extractor"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the collaborators the command wires together.
type app struct {
	stdout       io.Writer
	newLogger    func(verbose bool) (*zap.Logger, error)
	newCompleter func(ctx context.Context, opts completion.Options) (completion.Completer, error)
}

func defaultApp() *app {
	return &app{
		stdout:       os.Stdout,
		newLogger:    newLogger,
		newCompleter: completion.New,
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

type cliFlags struct {
	configPath string
	file       string
	verbose    bool
	defaults   *config.Config
	token      string
}

func newRootCmd(a *app) *cobra.Command {
	f := &cliFlags{defaults: config.Default()}
	d := f.defaults

	cmd := &cobra.Command{
		Use:   "docsmith -f FILE",
		Short: "Generate Google-style docstrings for the functions of a Python file",
		Long: `docsmith extracts every function of a Python source file, asks a
code-completion model for an elaborate Google-style docstring and prints the
annotated functions to standard output, one at a time.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), cfg, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.file, "file", "f", "", "Path to the input file")
	flags.StringVarP(&f.token, "openai-token", "t", "", "API token for the completion provider (default $DOCSMITH_API_KEY, then $OPENAI_API_KEY or $GEMINI_API_KEY)")
	flags.Float64VarP(&d.Sampling.Temperature, "temperature", "e", d.Sampling.Temperature,
		"Controls randomness: lower values give less random, more deterministic completions [0.0, 1.0]")
	flags.Float64VarP(&d.Sampling.TopP, "top-p", "T", d.Sampling.TopP,
		"Controls diversity via nucleus sampling, e.g. 0.5 considers half of all likelihood-weighted options [0.0, 1.0]")
	flags.Float64VarP(&d.Sampling.FrequencyPenalty, "frequency-penalty", "F", d.Sampling.FrequencyPenalty,
		"Penalizes tokens by their frequency so far, discouraging verbatim repetition [0.0, 2.0]")
	flags.Float64VarP(&d.Sampling.PresencePenalty, "presence-penalty", "p", d.Sampling.PresencePenalty,
		"Penalizes tokens already present so far, encouraging new topics [0.0, 2.0]")
	flags.StringVarP(&f.configPath, "config", "c", "docsmith.yaml", "Path to an optional YAML config file")
	flags.StringVar(&d.AI.Provider, "provider", d.AI.Provider, "Completion provider: openai, gemini or ollama")
	flags.StringVarP(&d.AI.Model, "model", "m", d.AI.Model, "Completion model (engine) identifier")
	flags.StringVar(&d.AI.BaseURL, "base-url", "", "Override the provider endpoint")
	flags.StringVar(&d.Run.Parser, "parser", d.Run.Parser, "Function extractor: heuristic or tree-sitter")
	flags.DurationVar(&d.Run.Timeout, "timeout", d.Run.Timeout, "Give up on a single request after this long")
	flags.DurationVar(&d.Run.Delay, "delay", d.Run.Delay, "Pause between requests to stay under rate limits")
	flags.BoolVar(&d.Run.DocstringOnly, "docstring-only", false, "Print only the generated docstrings, not the functions")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// resolve layers explicitly set flags over the loaded configuration and
// validates the result.
func (f *cliFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	d := f.defaults
	overrides := map[string]func(){
		"openai-token":      func() { cfg.AI.APIKey = f.token },
		"temperature":       func() { cfg.Sampling.Temperature = d.Sampling.Temperature },
		"top-p":             func() { cfg.Sampling.TopP = d.Sampling.TopP },
		"frequency-penalty": func() { cfg.Sampling.FrequencyPenalty = d.Sampling.FrequencyPenalty },
		"presence-penalty":  func() { cfg.Sampling.PresencePenalty = d.Sampling.PresencePenalty },
		"provider":          func() { cfg.AI.Provider = d.AI.Provider },
		"model":             func() { cfg.AI.Model = d.AI.Model },
		"base-url":          func() { cfg.AI.BaseURL = d.AI.BaseURL },
		"parser":            func() { cfg.Run.Parser = d.Run.Parser },
		"timeout":           func() { cfg.Run.Timeout = d.Run.Timeout },
		"delay":             func() { cfg.Run.Delay = d.Run.Delay },
		"docstring-only":    func() { cfg.Run.DocstringOnly = d.Run.DocstringOnly },
	}
	for name, apply := range overrides {
		if flags.Changed(name) {
			apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) run(ctx context.Context, cfg *config.Config, f *cliFlags) error {
	logger, err := a.newLogger(f.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ext, err := extractor.New(cfg.Run.Parser)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(f.file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.file, err)
	}

	blocks := ext.Segment(string(src))
	logger.Info("Extracted functions",
		zap.String("file", f.file),
		zap.String("parser", cfg.Run.Parser),
		zap.Int("count", len(blocks)))
	if len(blocks) == 0 {
		logger.Warn("No functions found", zap.String("file", f.file))
		return nil
	}

	completer, err := a.newCompleter(ctx, completion.Options{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.Credential(),
		Model:    cfg.AI.Model,
		BaseURL:  cfg.AI.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create completer: %w", err)
	}

	ann := annotator.New(completer, a.stdout, annotator.Options{
		Sampling:      cfg.Sampling,
		Model:         cfg.AI.Model,
		Timeout:       cfg.Run.Timeout,
		Delay:         cfg.Run.Delay,
		DocstringOnly: cfg.Run.DocstringOnly,
		Logger:        logger,
	})
	summary, err := ann.Run(ctx, blocks)
	logger.Info("Run finished",
		zap.Int("total", summary.Total),
		zap.Int("completed", summary.Completed),
		zap.Int("timed_out", summary.TimedOut),
		zap.Int("malformed", summary.Malformed))
	return err
}
