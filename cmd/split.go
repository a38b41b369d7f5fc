package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/visionprep/yoloprep/core/split"
)

// splitCmd partitions the unsplit YOLO dataset.
var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split the YOLO dataset into train/val/test partitions.",
	Args:  cobra.ExactArgs(0),
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

		splitter := &split.Splitter{
			Fs:        cfg.Fs(),
			InputDir:  cfg.Layout.YOLOAll,
			OutputDir: cfg.Layout.YOLOSplit,
			Ratios:    cfg.Split,
			Seed:      cfg.ShuffleSeed,
			Log:       runLogger,
		}
		res, err := splitter.Run()
		if err != nil {
			return err
		}

		logger := log.New(cmd.ErrOrStderr(), "", 0)
		for _, name := range split.Names {
			logger.Printf("%s: %d images", name, res.Counts[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
}
