package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docrunner/docrunner/internal/annotate"
	"github.com/docrunner/docrunner/internal/config"
	"github.com/docrunner/docrunner/internal/convert"
	"github.com/docrunner/docrunner/internal/domain"
)

var (
	annotateArtDir string
	annotateOut    string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <document> <results.json>",
	Short: "Write an annotated copy of the original spec document",
	Long: `Copies the original document, ticking result checkboxes and inserting
pass/fail markers next to each matched case, and appends an execution
summary. Word-processor sources are round-tripped through pandoc so the
annotated copy keeps the original format.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		record, err := domain.ReadRecordFile(args[1])
		if err != nil {
			return err
		}
		return annotateDocument(cmd.Context(), cfg, args[0], record, annotateArtDir, annotateOut)
	},
}

func init() {
	annotateCmd.Flags().StringVar(&annotateArtDir, "artifact-dir", "artifacts", "directory holding run screenshots")
	annotateCmd.Flags().StringVarP(&annotateOut, "output", "o", "", "output path (default <document>_annotated.<ext>)")
	rootCmd.AddCommand(annotateCmd)
}

// annotateDocument produces the annotated copy next to the original unless an
// explicit output path is given.
func annotateDocument(ctx context.Context, cfg *config.Config, docPath string, record *domain.ExecutionRecord, artDir, outPath string) error {
	content, err := documentMarkdown(ctx, cfg, docPath)
	if err != nil {
		return err
	}
	annotated, err := annotate.NewAnnotator(log).Annotate(content, record, artDir)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = annotatedPath(docPath)
	}

	if convert.IsWordDocument(docPath) {
		mdPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".md"
		if err := os.WriteFile(mdPath, annotated, 0644); err != nil {
			return fmt.Errorf("writing annotated markdown: %w", err)
		}
		if err := newConverter(cfg).FromMarkdown(ctx, mdPath, outPath); err != nil {
			return err
		}
	} else if err := os.WriteFile(outPath, annotated, 0644); err != nil {
		return fmt.Errorf("writing annotated document: %w", err)
	}

	log.Infof("annotated copy written to %s", outPath)
	return nil
}

func annotatedPath(docPath string) string {
	ext := filepath.Ext(docPath)
	return strings.TrimSuffix(docPath, ext) + "_annotated" + ext
}
