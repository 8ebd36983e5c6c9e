package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tracewire/usdtgen/internal/cgen"
	"github.com/tracewire/usdtgen/internal/config"
	"github.com/tracewire/usdtgen/internal/generate"
	"github.com/tracewire/usdtgen/internal/report"
	"github.com/tracewire/usdtgen/internal/scan"
	"github.com/tracewire/usdtgen/pkg/version"
)

func newGenerateCmd() *cobra.Command {
	var (
		flagOut        string
		flagGoBindings bool
	)

	cmd := &cobra.Command{
		Use:   "generate [packages...]",
		Short: "Generate USDT wrappers for annotated interfaces",
		Long: `Scan the given Go package patterns (default ./...) for interfaces marked
with //usdt:provider and write the generated wrapper files.

Per-probe problems are collected across the whole batch and reported
together; a provider with any problem produces no output files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.Out = flagOut
			}
			if cmd.Flags().Changed("go-bindings") {
				cfg.GoBindings = flagGoBindings
			}

			patterns := args
			if len(patterns) == 0 {
				patterns = []string{"./..."}
			}

			var eng report.Engine

			scanner := scan.New(logger, &eng, cfg.Encodings)
			batch, err := scanner.Packages(patterns...)
			if err != nil {
				return err
			}
			if len(batch) == 0 {
				logger.Warn().Strs("patterns", patterns).Msg("no annotated interfaces found")
				return nil
			}

			meta := cgen.Meta{Tool: "usdtgen", Version: version.Version}
			runErr := generate.New(cfg, meta, logger, &eng).Run(batch)

			if !eng.Empty() {
				eng.WriteSummary(os.Stderr)
			}
			if runErr != nil {
				if errors.Is(runErr, generate.ErrFailed) {
					return fmt.Errorf("%d problems found", len(eng.Reports()))
				}
				return runErr
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&flagOut, "out", "o", ".", "output directory for generated files")
	cmd.Flags().BoolVar(&flagGoBindings, "go-bindings", true, "emit cgo bindings next to the C wrapper")

	return cmd
}
