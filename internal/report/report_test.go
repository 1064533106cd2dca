package report_test

import (
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/docrunner/docrunner/internal/domain"
	"github.com/docrunner/docrunner/internal/report"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var _ = Describe("Renderer", func() {
	var (
		r       *report.Renderer
		artDir  string
		record  *domain.ExecutionRecord
		pngData = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00}
	)

	BeforeEach(func() {
		r = report.NewRenderer(newTestLogger())
		artDir = GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(artDir, "screenshots"), 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(artDir, "screenshots", "TC-001_step_00_goto.png"), pngData, 0644)).To(Succeed())

		record = &domain.ExecutionRecord{
			Meta: domain.SuiteMeta{
				Title:       "Portal regression",
				BaseURL:     "https://app.test",
				Environment: "staging",
			},
			Summary: domain.Summary{
				RunID:           "01JABCDEFGHJKMNPQRSTVWXYZ0",
				Total:           3,
				Passed:          1,
				Failed:          1,
				Skipped:         1,
				DurationSeconds: 4.2,
				StartedAt:       "2026-08-29T10:00:00Z",
				FinishedAt:      "2026-08-29T10:00:04Z",
			},
			TestCases: []domain.CaseResult{
				{
					ID: "TC-001", Name: "Login", Status: domain.StatusPassed, DurationSeconds: 1.1,
					Steps: []domain.StepResult{
						{Index: 0, Action: domain.ActionGoto, Target: "https://app.test/login",
							Status: domain.StatusPassed, Screenshot: "TC-001_step_00_goto.png"},
					},
				},
				{
					ID: "TC-002", Name: "Search", Status: domain.StatusFailed, DurationSeconds: 2.0,
					Error: &domain.CaseError{Message: "automation fault during click", StepIndex: 1},
					Steps: []domain.StepResult{
						{Index: 0, Action: domain.ActionGoto, Target: "https://app.test/search",
							Status: domain.StatusPassed, Screenshot: "nonexistent.png"},
						{Index: 1, Action: domain.ActionClick, Target: "btn",
							Status: domain.StatusFailed, Error: "automation fault during click"},
					},
				},
				{ID: "TC-003", Name: "Export", Status: domain.StatusSkipped},
			},
		}
	})

	It("should render summary counts that round-trip back to the record", func() {
		html, err := r.Render(record, artDir)
		Expect(err).ToNot(HaveOccurred())

		attrRe := regexp.MustCompile(`data-(total|passed|failed|skipped)="(\d+)"`)
		counts := map[string]int{}
		for _, m := range attrRe.FindAllStringSubmatch(string(html), -1) {
			n, perr := strconv.Atoi(m[2])
			Expect(perr).ToNot(HaveOccurred())
			counts[m[1]] = n
		}
		Expect(counts["total"]).To(Equal(record.Summary.Total))
		Expect(counts["passed"]).To(Equal(record.Summary.Passed))
		Expect(counts["failed"]).To(Equal(record.Summary.Failed))
		Expect(counts["skipped"]).To(Equal(record.Summary.Skipped))
	})

	It("should inline captured screenshots as data URIs", func() {
		html, err := r.Render(record, artDir)
		Expect(err).ToNot(HaveOccurred())
		encoded := base64.StdEncoding.EncodeToString(pngData)
		Expect(string(html)).To(ContainSubstring("data:image/png;base64," + encoded))
	})

	It("should degrade a missing artifact to a visible placeholder", func() {
		html, err := r.Render(record, artDir)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(html)).To(ContainSubstring("missing: nonexistent.png"))
	})

	It("should keep cases in suite order, not status order", func() {
		html, err := r.Render(record, artDir)
		Expect(err).ToNot(HaveOccurred())
		s := string(html)
		Expect(strings.Index(s, "TC-001")).To(BeNumerically("<", strings.Index(s, "TC-002")))
		Expect(strings.Index(s, "TC-002")).To(BeNumerically("<", strings.Index(s, "TC-003")))
	})

	It("should list failed cases in the failure summary", func() {
		html, err := r.Render(record, artDir)
		Expect(err).ToNot(HaveOccurred())
		s := string(html)
		Expect(s).To(ContainSubstring("Failed cases"))
		Expect(s).To(ContainSubstring("Search"))
		Expect(s).To(ContainSubstring("step 1: automation fault during click"))
	})

	It("should render identical output for the same record", func() {
		first, err := r.Render(record, artDir)
		Expect(err).ToNot(HaveOccurred())
		second, err := r.Render(record, artDir)
		Expect(err).ToNot(HaveOccurred())
		Expect(second).To(Equal(first))
	})

	It("should write the report to disk", func() {
		out := filepath.Join(GinkgoT().TempDir(), "report.html")
		Expect(r.RenderToFile(record, artDir, out)).To(Succeed())
		Expect(out).To(BeAnExistingFile())
	})
})
