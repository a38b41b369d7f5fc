package cmd

import (
	"github.com/spf13/cobra"
)

// statsCmd prints dataset statistics without affecting the exit code.
var statsCmd = &cobra.Command{
	Use:   "stats [DIR]",
	Short: "Print class distribution and box size statistics.",
	Long: `Prints the same report as "check" but always exits zero, for use as a
diagnostic rather than a gate. DIR is relative to the workspace and
defaults to the configured unsplit dataset.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		report, err := runCheck(cfg, args)
		if err != nil {
			return err
		}

		report.Render(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&checkVOC, "voc", false, "Report on the VOC input dataset instead.")
}
