package cli

import (
	"github.com/spf13/cobra"

	"github.com/docrunner/docrunner/internal/domain"
	"github.com/docrunner/docrunner/internal/report"
)

var (
	reportArtDir string
	reportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report <results.json>",
	Short: "Render a self-contained HTML report from an execution record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := domain.ReadRecordFile(args[0])
		if err != nil {
			return err
		}
		r := report.NewRenderer(log)
		if err := r.RenderToFile(record, reportArtDir, reportOut); err != nil {
			return err
		}
		log.Infof("report written to %s", reportOut)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportArtDir, "artifact-dir", "artifacts", "directory holding run screenshots and videos")
	reportCmd.Flags().StringVarP(&reportOut, "output", "o", "report.html", "output report file")
	rootCmd.AddCommand(reportCmd)
}
