// Package cli wires the usdtgen commands.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tracewire/usdtgen/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "usdtgen",
	Short: "usdtgen - USDT probe wrapper generator for Go",
	Long: `Generate native USDT wrappers from annotated Go interfaces.

Mark an interface with //usdt:provider and every method becomes a statically
defined tracing probe. For each provider usdtgen emits a C wrapper over
<sys/sdt.h> (one semaphore-gated entry point per probe), a matching header,
and optionally a cgo binding so the probes can be fired from Go.

Probes cost next to nothing while no tracer is attached: every entry point
checks its semaphore before any argument is marshalled.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagConfig  string
	flagVerbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to .usdtgen.yaml (default: working directory)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("usdtgen version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
		},
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
