package cli

import (
	"github.com/spf13/cobra"

	"github.com/tracewire/usdtgen/internal/config"
	"github.com/tracewire/usdtgen/internal/report"
	"github.com/tracewire/usdtgen/internal/scan"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [packages...]",
		Short: "List discovered providers and probes without generating",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}

			patterns := args
			if len(patterns) == 0 {
				patterns = []string{"./..."}
			}

			var eng report.Engine
			batch, err := scan.New(logger, &eng, cfg.Encodings).Packages(patterns...)
			if err != nil {
				return err
			}

			for _, p := range batch {
				cmd.Printf("%s (%d probes)\n", p.Name, len(p.Probes))
				for _, pr := range p.Probes {
					cmd.Printf("  %s:%s", p.Name, pr.Name)
					if pr.Source != "" {
						cmd.Printf("  %s", pr.Source)
					}
					cmd.Printf("\n")
				}
			}

			if !eng.Empty() {
				eng.WriteSummary(cmd.ErrOrStderr())
			}

			return nil
		},
	}
}
