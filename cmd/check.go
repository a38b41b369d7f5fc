package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/visionprep/yoloprep/core/check"
	"github.com/visionprep/yoloprep/core/config"
)

var checkVOC bool

// checkCmd validates dataset integrity and exits non-zero on problems.
var checkCmd = &cobra.Command{
	Use:   "check [DIR]",
	Short: "Validate dataset integrity.",
	Long: `Checks a YOLO dataset directory (images/ plus labels/) for unpaired
files, malformed label lines, invalid class ids and out-of-range
coordinates, and prints class distribution statistics. DIR is relative
to the workspace and defaults to the configured unsplit dataset.

With --voc the configured VOC annotation and image directories are
checked instead.`,
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
		if !report.OK() {
			return fmt.Errorf("dataset check failed: %s", report.Dir)
		}
		return nil
	},
}

func runCheck(cfg *config.Configuration, args []string) (*check.Report, error) {
	if checkVOC {
		return check.VOCDataset(cfg.Fs(), cfg.Layout.VOCAnnotations, cfg.Layout.VOCImages, cfg)
	}

	dir := cfg.Layout.YOLOAll
	if len(args) > 0 {
		dir = args[0]
	}
	return check.Dataset(cfg.Fs(), dir, cfg)
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkVOC, "voc", false, "Check the VOC input dataset instead.")
}
