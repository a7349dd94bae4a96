package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dupfind CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dupfind",
		Short: "dupfind - find repeated values in a stream",
		Long: `Find the values that occur more than once in a stream of tokens.

The stream is read exactly once and buffered to scratch files, so memory
stays proportional to the number of repeated values rather than the size of
the input. Scratch files are removed before the command exits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (.yaml, .yml or .toml)")

	cmd.AddCommand(NewFindCommand(opts))

	return cmd
}

// Execute runs cmd and returns the process exit code. Errors the command
// already reported through its OutputFormatter are not printed again.
func Execute(cmd *cobra.Command) int {
	err := cmd.Execute()

	// Flag parsing and argument errors never reach a RunE.
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return ExitCommandError
	}
	return GetExitCode(err)
}
