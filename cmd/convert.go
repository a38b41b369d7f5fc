package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/visionprep/yoloprep/core/convert"
)

// convertCmd runs the VOC to YOLO conversion stage alone.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the VOC dataset to an unsplit YOLO dataset.",
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

		converter := &convert.Converter{
			Fs:             cfg.Fs(),
			Config:         cfg,
			AnnotationsDir: cfg.Layout.VOCAnnotations,
			ImagesDir:      cfg.Layout.VOCImages,
			OutputDir:      cfg.Layout.YOLOAll,
			Log:            runLogger,
		}
		res, err := converter.Run()
		if err != nil {
			return err
		}

		logger := log.New(cmd.ErrOrStderr(), "", 0)
		logger.Printf("Converted %d pairs (%d skipped, %d missing images)",
			res.Processed, res.Skipped, res.MissingImages)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
