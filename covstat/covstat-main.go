package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/airbusgeo/covkit"
	"github.com/spf13/cobra"
)

var verbose bool

func init() {
	rootCommand.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages to stderr")
	rootCommand.AddCommand(statsCommand, envelopeCommand)
}

func main() {
	err := rootCommand.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCommand = &cobra.Command{
	Use:           "covstat",
	Short:         "coverage statistics and bounding box arithmetic",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			covkit.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})))
		} else {
			covkit.SetLogger(nil)
		}
	},
}
