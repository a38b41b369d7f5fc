package cmd

import (
	"github.com/spf13/cobra"
	"github.com/visionprep/yoloprep/core/pipeline"
)

var applyFixes bool

// runCmd executes the whole pipeline end to end.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: convert, check, split, re-check.",
	Long: `Converts the VOC dataset to YOLO format, validates it, splits it into
train/val/test partitions, validates each split and prints final image
counts. Any stage failure aborts the run with a non-zero exit code.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		runLogger, closeLog, err := openRunLog(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		p := &pipeline.Pipeline{
			Config:     cfg,
			Log:        runLogger,
			Out:        cmd.OutOrStdout(),
			ApplyFixes: applyFixes,
		}
		return p.Run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&applyFixes, "fix", false, "Repair annotations before converting.")
}
