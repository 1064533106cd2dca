package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/docrunner/docrunner/internal/domain"
	"github.com/docrunner/docrunner/internal/report"
)

var (
	pipelineBaseURL string
	pipelineOutDir  string
	pipelineDryRun  bool
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <document>",
	Short: "Extract, run, and render in one pass",
	Long: `Runs the full pipeline: extracts the suite from the document, executes
it in the browser, renders the HTML report, and writes the annotated copy.
With --dry-run, only extracts and prints the execution plan.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		docPath := args[0]
		ctx := cmd.Context()

		suite, err := extractSuite(ctx, cfg, docPath, pipelineBaseURL)
		if err != nil {
			return err
		}
		if pipelineDryRun {
			printPlan(suite)
			return nil
		}

		if err := os.MkdirAll(pipelineOutDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := domain.WriteSuiteFile(filepath.Join(pipelineOutDir, "test_cases.json"), suite); err != nil {
			return err
		}

		runBaseURL = pipelineBaseURL
		runArtDir = filepath.Join(pipelineOutDir, "artifacts")
		record, runErr := executeSuite(ctx, cfg, suite)
		if record == nil {
			return runErr
		}
		if err := domain.WriteRecordFile(filepath.Join(pipelineOutDir, "results.json"), record); err != nil {
			return err
		}
		printSummary(record)

		r := report.NewRenderer(log)
		reportPath := filepath.Join(pipelineOutDir, "report.html")
		if err := r.RenderToFile(record, runArtDir, reportPath); err != nil {
			return err
		}
		log.Infof("report written to %s", reportPath)

		annotatedOut := filepath.Join(pipelineOutDir, filepath.Base(annotatedPath(docPath)))
		if err := annotateDocument(ctx, cfg, docPath, record, runArtDir, annotatedOut); err != nil {
			return err
		}
		// A fatal mid-run error still fails the command after the partial
		// outputs are flushed.
		return runErr
	},
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineBaseURL, "base-url", "", "base URL override for relative navigation")
	pipelineCmd.Flags().StringVar(&pipelineOutDir, "output-dir", "out", "directory for all pipeline outputs")
	pipelineCmd.Flags().BoolVar(&pipelineDryRun, "dry-run", false, "extract and print the plan without running")
	rootCmd.AddCommand(pipelineCmd)
}

// printPlan shows what a run would execute.
func printPlan(suite *domain.TestSuite) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Steps", "Expected"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, tc := range suite.TestCases {
		table.Append([]string{tc.ID, tc.Name, fmt.Sprintf("%d", len(tc.Steps)), tc.ExpectedResult})
	}
	table.Render()
	fmt.Printf("\n%d cases extracted (base URL %q)\n", len(suite.TestCases), suite.Meta.BaseURL)
}
