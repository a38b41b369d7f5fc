package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/visionprep/yoloprep/core/config"
	"github.com/visionprep/yoloprep/core/runlog"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(afero.NewOsFs(), cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// openRunLog attaches a run logger to the workspace run log file.
func openRunLog(cfg *config.Configuration) (*runlog.RunLogger, func(), error) {
	fd, err := cfg.OpenRunLog()
	if err != nil {
		return nil, nil, err
	}
	return runlog.NewJSONLines(fd).NewRun(), func() { fd.Close() }, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yoloprep",
	Short: "Prepare Pascal VOC detection datasets for YOLO training",
	Long: `Converts Pascal VOC annotations to YOLO labels, validates dataset
integrity and splits the result into train/val/test partitions.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "workspace path")
}
