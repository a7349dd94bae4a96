package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/dupfind/internal/config"
	"github.com/roach88/dupfind/internal/finder"
	"github.com/roach88/dupfind/internal/logger"
	"github.com/roach88/dupfind/internal/scratch"
	"github.com/roach88/dupfind/internal/source"
)

// FindOptions holds flags for the find command. Flags left unset fall back
// to the config file and DUPFIND_* environment variables.
type FindOptions struct {
	*RootOptions
	Default    bool
	File       string
	Type       string
	Algorithm  string
	SeenLog    string
	ScratchDir string
	Normalize  bool
	Fold       bool
}

// FindResult is the payload of a successful find.
type FindResult struct {
	Input      []string `json:"input,omitempty"` // echoed argument or sample input
	Duplicates any      `json:"duplicates"`
	Count      int      `json:"count"`
	Algorithm  string   `json:"algorithm"`
	SeenLog    string   `json:"seen_log,omitempty"`

	dupText string
}

// String renders the text output.
func (r FindResult) String() string {
	var b strings.Builder
	if r.Input != nil {
		b.WriteString("Original stream:\n")
		b.WriteString(bracketed(r.Input))
		b.WriteByte('\n')
	}
	b.WriteString("Detected duplicates:\n")
	b.WriteString(r.dupText)
	return b.String()
}

func bracketed[T any](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find [values...]",
		Short: "Report values that occur more than once",
		Long: `Report every value that occurs more than once, in order of first occurrence.

Input is taken from the positional values, from --file, or from standard
input when neither is given. Tokens in files and standard input are
separated by whitespace.

Example:
  dupfind find -d
  dupfind find --type int 1 2 3 2 4 1 5
  dupfind find --seen-log sqlite --file words.txt
  cat words.txt | dupfind find --fold --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, opts, args)
		},
	}

	defaults := config.Default()
	cmd.Flags().BoolVarP(&opts.Default, "default", "d", false, "use the built-in sample stream, ignoring other input")
	cmd.Flags().StringVar(&opts.File, "file", "", "read whitespace-separated tokens from this file")
	cmd.Flags().StringVar(&opts.Type, "type", defaults.Input.Type, "value type (string|int)")
	cmd.Flags().StringVar(&opts.Algorithm, "algorithm", defaults.Detector.Algorithm, "detection algorithm (disk|memory)")
	cmd.Flags().StringVar(&opts.SeenLog, "seen-log", defaults.Detector.SeenLog, "on-disk seen-log for the disk algorithm (file|sqlite)")
	cmd.Flags().StringVar(&opts.ScratchDir, "scratch-dir", "", "directory for scratch files (default: system temp dir)")
	cmd.Flags().BoolVar(&opts.Normalize, "normalize", false, "apply Unicode NFC normalization to tokens")
	cmd.Flags().BoolVar(&opts.Fold, "fold", false, "compare tokens case-insensitively")

	return cmd
}

func runFind(cmd *cobra.Command, opts *FindOptions, args []string) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadFindConfig(cmd, opts)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	log := logger.Named(logger.New(logger.Options{
		Level:  level,
		Format: cfg.Log.Format,
		Writer: out.errWriter(),
	}), "find")

	in, err := openInput(cmd, opts, cfg, args, out)
	if err != nil {
		return out.fail(ExitCommandError, ErrCodeInvalidInput, "cannot read input", err)
	}
	defer in.Close()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result FindResult
	if cfg.Input.Type == "int" {
		ints := source.Map(in.tokens, source.ParseInt64)
		result, err = detect(ctx, cfg, log, scratch.Int64Codec{}, ints)
	} else {
		result, err = detect(ctx, cfg, log, scratch.StringCodec{}, in.tokens)
	}
	if err != nil {
		return findFailure(out, err)
	}
	result.Input = in.shown

	out.VerboseLog("Found %d duplicate value(s)", result.Count)
	return out.Success(result)
}

// loadFindConfig merges defaults, the config file, the environment and
// finally any flags set on the command line.
func loadFindConfig(cmd *cobra.Command, opts *FindOptions) (*config.Config, error) {
	flags := cmd.Flags()
	return config.Load(opts.ConfigPath, func(cfg *config.Config) {
		if flags.Changed("type") {
			cfg.Input.Type = opts.Type
		}
		if flags.Changed("algorithm") {
			cfg.Detector.Algorithm = opts.Algorithm
		}
		if flags.Changed("seen-log") {
			cfg.Detector.SeenLog = opts.SeenLog
		}
		if flags.Changed("scratch-dir") {
			cfg.Scratch.Dir = opts.ScratchDir
		}
		if flags.Changed("normalize") {
			cfg.Input.Normalize = opts.Normalize
		}
		if flags.Changed("fold") {
			cfg.Input.Fold = opts.Fold
		}
	})
}

type input struct {
	tokens source.Source[string]
	shown  []string // echoed back as the original stream; nil for streamed input
	closer io.Closer
}

func (in *input) Close() {
	if in.closer != nil {
		in.closer.Close()
	}
}

func openInput(cmd *cobra.Command, opts *FindOptions, cfg *config.Config, args []string, out *OutputFormatter) (*input, error) {
	tokOpts := source.TokenOptions{Normalize: cfg.Input.Normalize, Fold: cfg.Input.Fold}

	switch {
	case opts.Default:
		if len(args) > 0 || opts.File != "" {
			out.Notice("Default argument (-d) was provided. Ignoring additional input and using the sample stream.")
		}
		vals := source.Sample()
		return &input{tokens: source.Canonicalize(source.Slice(vals...), tokOpts), shown: vals}, nil

	case len(args) > 0:
		if opts.File != "" {
			return nil, errors.New("positional values cannot be combined with --file")
		}
		return &input{tokens: source.Canonicalize(source.Slice(args...), tokOpts), shown: args}, nil

	case opts.File != "":
		f, err := os.Open(opts.File)
		if err != nil {
			return nil, err
		}
		out.VerboseLog("Reading tokens from %s", opts.File)
		return &input{tokens: source.Tokens(f, tokOpts), closer: f}, nil

	default:
		out.VerboseLog("No values given. Reading tokens from standard input...")
		return &input{tokens: source.Tokens(cmd.InOrStdin(), tokOpts)}, nil
	}
}

func detect[T comparable](ctx context.Context, cfg *config.Config, log *logger.Logger, codec scratch.Codec[T], src source.Source[T]) (FindResult, error) {
	result := FindResult{Algorithm: cfg.Detector.Algorithm}

	var dups []T
	var err error
	if cfg.Detector.Algorithm == "memory" {
		dups, err = finder.FindInMemory(ctx, src)
	} else {
		result.SeenLog = cfg.Detector.SeenLog
		f := finder.New(codec, finder.Options{
			Dir:            cfg.Scratch.Dir,
			Prefix:         cfg.Scratch.Prefix,
			SeenLog:        finder.SeenLogKind(cfg.Detector.SeenLog),
			SQLiteCacheKiB: cfg.Detector.SQLiteCacheKiB,
			Logger:         log,
		})
		dups, err = f.Find(ctx, src)
	}
	if err != nil {
		return FindResult{}, err
	}

	result.Duplicates = dups
	result.Count = len(dups)
	result.dupText = bracketed(dups)
	return result, nil
}

// findFailure maps a finder error onto an error code and exit status.
func findFailure(out *OutputFormatter, err error) error {
	var numErr *strconv.NumError
	switch {
	case errors.As(err, &numErr):
		return out.fail(ExitCommandError, ErrCodeInvalidInput, "input is not a list of integers", err)
	case finder.IsInvalidArgument(err):
		return out.fail(ExitCommandError, ErrCodeInvalidInput, "invalid input", err)
	case finder.IsCanceled(err):
		return out.fail(ExitFailure, ErrCodeCanceled, "interrupted", err)
	case finder.IsIO(err):
		return out.fail(ExitFailure, ErrCodeIO, "scratch file I/O failed", err)
	default:
		return out.fail(ExitFailure, ErrCodeGeneric, "duplicate detection failed", err)
	}
}
