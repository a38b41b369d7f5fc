package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/visionprep/yoloprep/core/fix"
)

// fixCmd repairs VOC annotations in place.
var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Repair VOC annotations in place.",
	Long: `Drops objects with unusable bounding boxes (inverted corners, out of
image bounds, or smaller than the minimum area) and applies the class
name swaps configured under fix.class_swaps.`,
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

		fixer := &fix.Fixer{
			Fs:             cfg.Fs(),
			AnnotationsDir: cfg.Layout.VOCAnnotations,
			Rules:          cfg.Fix,
			Log:            runLogger,
		}
		res, err := fixer.Run()
		if err != nil {
			return err
		}

		logger := log.New(cmd.ErrOrStderr(), "", 0)
		logger.Printf("Changed %d files: %d objects dropped, %d names swapped",
			res.FilesChanged, res.ObjectsDropped, res.NamesSwapped)
		if res.Unreadable > 0 {
			logger.Printf("%d annotations could not be repaired", res.Unreadable)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)
}
