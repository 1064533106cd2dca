package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/docrunner/docrunner/internal/config"
)

var (
	cfgFile string
	verbose bool
	log     *logrus.Logger
)

// rootCmd is the base command for docrunner.
var rootCmd = &cobra.Command{
	Use:   "docrunner",
	Short: "Run documented test specs against a live web target",
	Long: `docrunner reads loosely structured test-spec documents (Markdown or
word-processor files), extracts a canonical test suite, drives each case
through a browser, and renders an HTML report plus an annotated copy of
the original document.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logrus.InfoLevel
		if verbose {
			level = logrus.DebugLevel
		}
		log.SetLevel(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "docrunner.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	log = logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// loadConfig loads the configured YAML file. The default file is optional;
// an explicitly passed path that does not exist is an error.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if cfgFile == "docrunner.yaml" {
			return config.DefaultConfig(), nil
		}
		return nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
