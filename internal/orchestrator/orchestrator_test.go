package orchestrator_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/docrunner/docrunner/internal/domain"
	"github.com/docrunner/docrunner/internal/orchestrator"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// clickCase builds a case that navigates and clicks one button per target.
func clickCase(id, name, path string, targets ...string) domain.TestCase {
	tc := domain.TestCase{ID: id, Name: name}
	tc.Steps = append(tc.Steps, domain.Step{Action: domain.ActionGoto, Target: path})
	for _, t := range targets {
		tc.Steps = append(tc.Steps, domain.Step{Action: domain.ActionClick, Target: t})
	}
	return tc
}

func makeSuite(cases ...domain.TestCase) *domain.TestSuite {
	return &domain.TestSuite{
		Meta:      domain.SuiteMeta{Title: "Portal regression", BaseURL: "https://app.test"},
		TestCases: cases,
	}
}

func countCalls(d *fakeDriver, want string) int {
	n := 0
	for _, c := range d.calls {
		if c == want {
			n++
		}
	}
	return n
}

var _ = Describe("Orchestrator", func() {
	var (
		fake   *fakeDriver
		orch   *orchestrator.Orchestrator
		artDir string
	)

	BeforeEach(func() {
		fake = &fakeDriver{}
		orch = orchestrator.New(fake, newTestLogger())
		artDir = GinkgoT().TempDir()
	})

	run := func(suite *domain.TestSuite, opts orchestrator.Options) (*domain.ExecutionRecord, error) {
		if opts.ArtifactDir == "" {
			opts.ArtifactDir = artDir
		}
		return orch.Run(context.Background(), suite, opts)
	}

	Describe("a fully passing suite", func() {
		It("should mark every case passed and aggregate the summary", func() {
			suite := makeSuite(
				clickCase("TC-001", "Login", "/login", "btn-login"),
				clickCase("TC-002", "Search", "/search", "btn-search"),
			)
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(record.TestCases).To(HaveLen(2))
			for _, tc := range record.TestCases {
				Expect(tc.Status).To(Equal(domain.StatusPassed))
				Expect(tc.Error).To(BeNil())
			}
			Expect(record.Summary.Total).To(Equal(2))
			Expect(record.Summary.Passed).To(Equal(2))
			Expect(record.Summary.Failed).To(BeZero())
			Expect(record.Summary.RunID).To(HaveLen(26))

			_, perr := time.Parse(time.RFC3339, record.Summary.StartedAt)
			Expect(perr).ToNot(HaveOccurred())
		})

		It("should give every case a fresh session", func() {
			suite := makeSuite(
				clickCase("TC-001", "Login", "/login", "btn"),
				clickCase("TC-002", "Search", "/search", "btn"),
			)
			_, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(fake.sessions).To(Equal(2))
		})

		It("should resolve relative navigation against the base URL", func() {
			suite := makeSuite(clickCase("TC-001", "Login", "/login", "btn"))
			_, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(fake.calls).To(ContainElement("navigate https://app.test/login"))
		})

		It("should prepend an implicit goto when a case never navigates", func() {
			suite := makeSuite(domain.TestCase{
				ID: "TC-001", Name: "No nav",
				Steps: []domain.Step{{Action: domain.ActionClick, Target: "btn"}},
			})
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(record.TestCases[0].Steps).To(HaveLen(2))
			Expect(record.TestCases[0].Steps[0].Action).To(Equal(domain.ActionGoto))
			Expect(fake.calls[0]).To(Equal("navigate https://app.test"))
		})

		It("should capture one screenshot per executed step, keyed by case, index and action", func() {
			suite := makeSuite(clickCase("TC-001", "Login", "/login", "btn"))
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())

			steps := record.TestCases[0].Steps
			Expect(steps[0].Screenshot).To(Equal("TC-001_step_00_goto.png"))
			Expect(steps[1].Screenshot).To(Equal("TC-001_step_01_click.png"))
			for _, s := range steps {
				Expect(filepath.Join(artDir, "screenshots", s.Screenshot)).To(BeAnExistingFile())
			}
			Expect(filepath.Join(artDir, "run.id")).To(BeAnExistingFile())
		})

		It("should honor an author-supplied screenshot name", func() {
			suite := makeSuite(domain.TestCase{
				ID: "TC-001", Name: "Named capture",
				Steps: []domain.Step{
					{Action: domain.ActionGoto, Target: "/a"},
					{Action: domain.ActionScreenshot, Name: "final_view"},
				},
			})
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(record.TestCases[0].Steps[1].Screenshot).To(Equal("final_view.png"))
			Expect(filepath.Join(artDir, "screenshots", "final_view.png")).To(BeAnExistingFile())
		})
	})

	Describe("an automation fault mid-case", func() {
		BeforeEach(func() {
			fake.hook = func(op, target string) error {
				if target == "bad" {
					return &domain.AutomationError{Op: op, Target: target, Cause: errors.New("node not found")}
				}
				return nil
			}
		})

		It("should fail the case at the first failing step and leave later steps unexecuted", func() {
			suite := makeSuite(clickCase("TC-001", "Five steps", "/a", "ok1", "bad", "ok2", "ok3"))
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())

			tc := record.TestCases[0]
			Expect(tc.Status).To(Equal(domain.StatusFailed))
			Expect(tc.Error).ToNot(BeNil())
			Expect(tc.Error.StepIndex).To(Equal(2))
			Expect(tc.Steps).To(HaveLen(3))
			Expect(tc.Steps[0].Status).To(Equal(domain.StatusPassed))
			Expect(tc.Steps[1].Status).To(Equal(domain.StatusPassed))
			Expect(tc.Steps[2].Status).To(Equal(domain.StatusFailed))
			Expect(fake.calls).ToNot(ContainElement("click ok2"))
		})

		It("should capture failure evidence and keep earlier artifacts", func() {
			suite := makeSuite(clickCase("TC-001", "Five steps", "/a", "ok1", "bad", "ok2", "ok3"))
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())

			tc := record.TestCases[0]
			Expect(tc.Steps[2].Screenshot).To(Equal("TC-001_step_02_FAIL.png"))
			Expect(filepath.Join(artDir, "screenshots", "TC-001_step_02_FAIL.png")).To(BeAnExistingFile())
			Expect(filepath.Join(artDir, "screenshots", "TC-001_step_01_click.png")).To(BeAnExistingFile())
		})

		It("should continue with the next case", func() {
			suite := makeSuite(
				clickCase("TC-001", "Fails", "/a", "bad"),
				clickCase("TC-002", "Still runs", "/b", "ok"),
			)
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(record.TestCases[0].Status).To(Equal(domain.StatusFailed))
			Expect(record.TestCases[1].Status).To(Equal(domain.StatusPassed))
			Expect(record.Summary.Failed).To(Equal(1))
			Expect(record.Summary.Passed).To(Equal(1))
		})
	})

	Describe("retry policy", func() {
		It("should retry a transient automation fault exactly once", func() {
			failures := 1
			fake.hook = func(op, target string) error {
				if target == "flaky" && failures > 0 {
					failures--
					return &domain.AutomationError{Op: op, Target: target, Transient: true, Cause: errors.New("not attached")}
				}
				return nil
			}
			suite := makeSuite(clickCase("TC-001", "Flaky", "/a", "flaky"))
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(record.TestCases[0].Status).To(Equal(domain.StatusPassed))
			Expect(countCalls(fake, "click flaky")).To(Equal(2))
		})

		It("should not retry a persistent transient fault more than once", func() {
			fake.hook = func(op, target string) error {
				if target == "flaky" {
					return &domain.AutomationError{Op: op, Target: target, Transient: true, Cause: errors.New("not attached")}
				}
				return nil
			}
			suite := makeSuite(clickCase("TC-001", "Flaky", "/a", "flaky"))
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(record.TestCases[0].Status).To(Equal(domain.StatusFailed))
			Expect(countCalls(fake, "click flaky")).To(Equal(2))
		})

		It("should never retry assertion steps", func() {
			fake.hook = func(op, target string) error {
				if op == "wait_visible" {
					return &domain.AutomationError{Op: op, Target: target, Transient: true, Cause: errors.New("timeout")}
				}
				return nil
			}
			suite := makeSuite(domain.TestCase{
				ID: "TC-001", Name: "Assert",
				Steps: []domain.Step{
					{Action: domain.ActionGoto, Target: "/a"},
					{Action: domain.ActionAssertVisible, Target: "missing"},
				},
			})
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(record.TestCases[0].Status).To(Equal(domain.StatusFailed))
			Expect(countCalls(fake, "wait_visible missing")).To(Equal(1))
		})

		It("should fail a text assertion on value mismatch without retrying", func() {
			suite := makeSuite(domain.TestCase{
				ID: "TC-001", Name: "Wrong text",
				Steps: []domain.Step{
					{Action: domain.ActionGoto, Target: "/a"},
					{Action: domain.ActionAssertText, Target: ".banner", Value: "goodbye"},
				},
			})
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())

			tc := record.TestCases[0]
			Expect(tc.Status).To(Equal(domain.StatusFailed))
			Expect(tc.Error.Message).To(ContainSubstring("expected"))
			Expect(countCalls(fake, "text .banner")).To(Equal(1))
		})

		It("should use the configured default pause for wait steps without a duration", func() {
			suite := makeSuite(domain.TestCase{
				ID: "TC-001", Name: "Pause",
				Steps: []domain.Step{
					{Action: domain.ActionGoto, Target: "/a"},
					{Action: domain.ActionWait},
				},
			})
			start := time.Now()
			record, err := run(suite, orchestrator.Options{DefaultWait: 50 * time.Millisecond})
			elapsed := time.Since(start)
			Expect(err).ToNot(HaveOccurred())
			Expect(record.TestCases[0].Status).To(Equal(domain.StatusPassed))
			Expect(elapsed).To(BeNumerically(">=", 50*time.Millisecond))
			Expect(elapsed).To(BeNumerically("<", 900*time.Millisecond))
		})
	})

	Describe("cancellation", func() {
		It("should skip the remaining cases after cancellation between cases", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			fake.hook = func(op, target string) error {
				if op == "click" && target == "done-2" {
					cancel()
				}
				return nil
			}
			suite := makeSuite(
				clickCase("TC-001", "One", "/1", "done-1"),
				clickCase("TC-002", "Two", "/2", "done-2"),
				clickCase("TC-003", "Three", "/3", "done-3"),
				clickCase("TC-004", "Four", "/4", "done-4"),
				clickCase("TC-005", "Five", "/5", "done-5"),
			)
			record, err := orch.Run(ctx, suite, orchestrator.Options{ArtifactDir: artDir})
			Expect(err).ToNot(HaveOccurred())
			Expect(record.TestCases).To(HaveLen(5))
			Expect(record.TestCases[0].Status).To(Equal(domain.StatusPassed))
			Expect(record.TestCases[1].Status).To(Equal(domain.StatusPassed))
			for _, tc := range record.TestCases[2:] {
				Expect(tc.Status).To(Equal(domain.StatusSkipped))
				Expect(tc.Steps).To(BeEmpty())
			}
			Expect(record.Summary.Total).To(Equal(5))
			Expect(record.Summary.Passed).To(Equal(2))
			Expect(record.Summary.Skipped).To(Equal(3))
		})

		It("should fail the in-flight case on mid-case cancellation and keep its partial record", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			fake.hook = func(op, target string) error {
				if op == "click" && target == "mid" {
					cancel()
				}
				return nil
			}
			suite := makeSuite(clickCase("TC-001", "Interrupted", "/1", "mid", "after"))
			record, err := orch.Run(ctx, suite, orchestrator.Options{ArtifactDir: artDir})
			Expect(err).ToNot(HaveOccurred())

			tc := record.TestCases[0]
			Expect(tc.Status).To(Equal(domain.StatusFailed))
			Expect(tc.Error.Message).To(ContainSubstring("cancelled"))
			Expect(tc.Error.StepIndex).To(Equal(2))
			Expect(tc.Steps).To(HaveLen(2))
			Expect(fake.calls).ToNot(ContainElement("click after"))
		})
	})

	Describe("run filter", func() {
		It("should skip unselected cases without opening sessions for them", func() {
			suite := makeSuite(
				clickCase("TC-001", "One", "/1", "a"),
				clickCase("TC-002", "Two", "/2", "b"),
				clickCase("TC-003", "Three", "/3", "c"),
			)
			record, err := run(suite, orchestrator.Options{Filter: []string{"TC-002"}})
			Expect(err).ToNot(HaveOccurred())
			Expect(record.TestCases[0].Status).To(Equal(domain.StatusSkipped))
			Expect(record.TestCases[1].Status).To(Equal(domain.StatusPassed))
			Expect(record.TestCases[2].Status).To(Equal(domain.StatusSkipped))
			Expect(fake.sessions).To(Equal(1))
		})
	})

	Describe("fatal orchestration errors", func() {
		It("should abort the run when no session can be established", func() {
			fake.sessionErr = errors.New("browser crashed")
			suite := makeSuite(
				clickCase("TC-001", "One", "/1", "a"),
				clickCase("TC-002", "Two", "/2", "b"),
			)
			record, err := run(suite, orchestrator.Options{})
			Expect(err).To(HaveOccurred())
			var oerr *domain.OrchestrationError
			Expect(errors.As(err, &oerr)).To(BeTrue())

			// Partial record is still returned for flushing.
			Expect(record).ToNot(BeNil())
			Expect(record.TestCases).To(HaveLen(1))
			Expect(record.TestCases[0].Status).To(Equal(domain.StatusFailed))
			Expect(record.Summary.Total).To(Equal(1))
		})

		It("should refuse to run relative navigation without a base URL", func() {
			suite := makeSuite(clickCase("TC-001", "One", "/1", "a"))
			suite.Meta.BaseURL = ""
			record, err := run(suite, orchestrator.Options{})
			Expect(err).To(HaveOccurred())
			Expect(record).To(BeNil())
			var oerr *domain.OrchestrationError
			Expect(errors.As(err, &oerr)).To(BeTrue())
		})
	})

	Describe("video collection", func() {
		It("should adopt a session recording into the run's video directory", func() {
			src := filepath.Join(GinkgoT().TempDir(), "session.webm")
			Expect(os.WriteFile(src, []byte("webm"), 0644)).To(Succeed())
			fake.videoPath = src

			suite := makeSuite(clickCase("TC-001", "Recorded", "/1", "a"))
			record, err := run(suite, orchestrator.Options{})
			Expect(err).ToNot(HaveOccurred())
			Expect(record.TestCases[0].Video).To(Equal("TC-001.webm"))
			Expect(filepath.Join(artDir, "videos", "TC-001.webm")).To(BeAnExistingFile())
		})
	})
})
