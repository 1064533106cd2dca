package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/docrunner/docrunner/internal/config"
	"github.com/docrunner/docrunner/internal/domain"
	"github.com/docrunner/docrunner/internal/driver"
	"github.com/docrunner/docrunner/internal/orchestrator"
)

var (
	runBaseURL string
	runOut     string
	runArtDir  string
	runFilter  []string
	runHeaded  bool
	runVideo   bool
	runTimeout string
)

var runCmd = &cobra.Command{
	Use:   "run <test_cases.json>",
	Short: "Execute an extracted test suite in a browser",
	Long: `Runs every case of the suite against the target, capturing per-step
screenshots, and writes the execution record as JSON. Individual case
failures are recorded data, not a program failure; the exit code is
non-zero only for fatal orchestration errors.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		suite, err := domain.ReadSuiteFile(args[0])
		if err != nil {
			return err
		}
		record, err := executeSuite(cmd.Context(), cfg, suite)
		if record != nil {
			if werr := domain.WriteRecordFile(runOut, record); werr != nil {
				log.WithError(werr).Error("could not write execution record")
			} else {
				printSummary(record)
				log.Infof("execution record written to %s", runOut)
			}
		}
		return err
	},
}

func init() {
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "base URL override for relative navigation")
	runCmd.Flags().StringVarP(&runOut, "output", "o", "results.json", "output record file")
	runCmd.Flags().StringVar(&runArtDir, "output-dir", "", "artifact directory (default from config)")
	runCmd.Flags().StringSliceVar(&runFilter, "filter", nil, "case IDs to run; others are skipped")
	runCmd.Flags().BoolVar(&runHeaded, "headed", false, "run the browser with a visible window")
	runCmd.Flags().BoolVar(&runVideo, "video", false, "record a video per case when the driver supports it")
	runCmd.Flags().StringVar(&runTimeout, "timeout", "", "interaction timeout override, e.g. 20s")
	rootCmd.AddCommand(runCmd)
}

// executeSuite wires the browser driver and orchestrator. On a fatal error the
// partial record is still returned for writing.
func executeSuite(ctx context.Context, cfg *config.Config, suite *domain.TestSuite) (*domain.ExecutionRecord, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	headless := true
	if cfg.Browser.Headless != nil {
		headless = *cfg.Browser.Headless
	}
	if runHeaded {
		headless = false
	}
	interaction := config.Duration(cfg.Browser.InteractionTimeout, 0)
	if runTimeout != "" {
		interaction = config.Duration(runTimeout, interaction)
	}

	drv := driver.NewChrome(driver.ChromeOptions{
		Headless:           headless,
		ViewportWidth:      cfg.Browser.ViewportWidth,
		ViewportHeight:     cfg.Browser.ViewportHeight,
		NavigationTimeout:  config.Duration(cfg.Browser.NavigationTimeout, 0),
		InteractionTimeout: interaction,
	}, log)
	defer drv.Close()

	if runVideo || cfg.Browser.Video {
		log.Warn("video capture is not supported by the Chrome driver, continuing without it")
	}

	artDir := runArtDir
	if artDir == "" {
		artDir = cfg.Artifacts.Directory
	}
	baseURL := runBaseURL
	if baseURL == "" {
		baseURL = cfg.Target.BaseURL
	}

	return orchestrator.New(drv, log).Run(ctx, suite, orchestrator.Options{
		ArtifactDir: artDir,
		BaseURL:     baseURL,
		Filter:      runFilter,
		DefaultWait: config.Duration(cfg.Browser.DefaultWait, 0),
	})
}

// printSummary renders the per-case outcome table on stdout.
func printSummary(record *domain.ExecutionRecord) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Status", "Duration"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, tc := range record.TestCases {
		dur := ""
		if tc.Status != domain.StatusSkipped {
			dur = fmt.Sprintf("%.2fs", tc.DurationSeconds)
		}
		table.Append([]string{tc.ID, tc.Name, string(tc.Status), dur})
	}
	table.Render()
	s := record.Summary
	fmt.Printf("\n%d total, %d passed, %d failed, %d skipped in %.2fs (run %s)\n",
		s.Total, s.Passed, s.Failed, s.Skipped, s.DurationSeconds, s.RunID)
}
