package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docrunner/docrunner/internal/config"
	"github.com/docrunner/docrunner/internal/convert"
	"github.com/docrunner/docrunner/internal/domain"
	"github.com/docrunner/docrunner/internal/extractor"
)

var (
	extractBaseURL string
	extractOut     string
)

var extractCmd = &cobra.Command{
	Use:   "extract <document>",
	Short: "Extract a canonical test suite from a spec document",
	Long:  `Parses a Markdown or word-processor document and writes the extracted test suite as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		suite, err := extractSuite(cmd.Context(), cfg, args[0], extractBaseURL)
		if err != nil {
			return err
		}
		if err := domain.WriteSuiteFile(extractOut, suite); err != nil {
			return err
		}
		log.WithField("cases", len(suite.TestCases)).Infof("suite written to %s", extractOut)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractBaseURL, "base-url", "", "base URL recorded in suite metadata")
	extractCmd.Flags().StringVarP(&extractOut, "output", "o", "test_cases.json", "output suite file")
	rootCmd.AddCommand(extractCmd)
}

// documentMarkdown returns the Markdown content of a source document,
// converting word-processor files through pandoc first.
func documentMarkdown(ctx context.Context, cfg *config.Config, path string) ([]byte, error) {
	if convert.IsWordDocument(path) {
		conv := newConverter(cfg)
		log.WithField("file", path).Debug("converting word-processor document to Markdown")
		return conv.ToMarkdown(ctx, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return data, nil
}

func newConverter(cfg *config.Config) *convert.Converter {
	conv := convert.NewConverter(cfg.Pandoc.Binary)
	conv.Timeout = config.Duration(cfg.Pandoc.Timeout, conv.Timeout)
	return conv
}

func extractSuite(ctx context.Context, cfg *config.Config, path, baseURL string) (*domain.TestSuite, error) {
	content, err := documentMarkdown(ctx, cfg, path)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = cfg.Target.BaseURL
	}
	return extractor.New(log).Extract(content, extractor.Options{
		SourcePath: path,
		BaseURL:    baseURL,
	})
}
