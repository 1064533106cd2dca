// Package orchestrator drives an extracted TestSuite against a live target
// through the injected automation driver and produces the ExecutionRecord.
//
// Cases run strictly in source order, one fresh session each; steps run
// strictly in order because each step's target may depend on state left by
// the previous one. Cross-case parallelism is deliberately not attempted:
// the automation session is stateful and rate-sensitive, and deterministic
// screenshots matter more than throughput.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/docrunner/docrunner/internal/domain"
	"github.com/docrunner/docrunner/internal/driver"
)

// Options configure one run.
type Options struct {
	ArtifactDir string
	BaseURL     string   // overrides the suite's meta base URL
	Filter      []string // case IDs to run; empty runs everything
	DefaultWait time.Duration
}

// Orchestrator owns the artifact directory for the duration of a run and is
// the only writer of the ExecutionRecord.
type Orchestrator struct {
	driver driver.Driver
	log    *logrus.Logger
}

// New creates an Orchestrator over the given automation driver.
func New(d driver.Driver, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{driver: d, log: log}
}

// Run executes the suite and returns the record. A returned error is fatal
// (the automation session or target could not be established, or the artifact
// directory is unusable); individual case failures are data inside the
// record, never an error. On a fatal mid-run error the record built so far is
// returned alongside it.
func (o *Orchestrator) Run(ctx context.Context, suite *domain.TestSuite, opts Options) (*domain.ExecutionRecord, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = suite.Meta.BaseURL
	}
	if baseURL == "" && suiteNeedsBaseURL(suite) {
		return nil, &domain.OrchestrationError{
			Message: "suite uses relative navigation but no base URL is configured (set meta.base_url or --base-url)",
		}
	}

	runID := ulid.Make().String()
	arts, err := initArtifacts(opts.ArtifactDir, runID)
	if err != nil {
		return nil, &domain.OrchestrationError{Message: "initializing artifact directory", Cause: err}
	}

	filter := make(map[string]bool, len(opts.Filter))
	for _, id := range opts.Filter {
		filter[id] = true
	}

	started := time.Now().UTC()
	record := &domain.ExecutionRecord{Meta: suite.Meta}
	record.Meta.BaseURL = baseURL

	cancelled := false
	for _, tc := range suite.TestCases {
		if len(filter) > 0 && !filter[tc.ID] {
			record.TestCases = append(record.TestCases, domain.CaseResult{
				ID: tc.ID, Name: tc.Name, Status: domain.StatusSkipped,
			})
			continue
		}
		if cancelled || ctx.Err() != nil {
			cancelled = true
			record.TestCases = append(record.TestCases, domain.CaseResult{
				ID: tc.ID, Name: tc.Name, Status: domain.StatusSkipped,
			})
			continue
		}

		o.log.WithFields(logrus.Fields{"case": tc.ID, "name": tc.Name}).Info("running case")
		result, fatal := o.runCase(ctx, tc, baseURL, arts, opts)
		record.TestCases = append(record.TestCases, result)
		if fatal != nil {
			o.finishSummary(record, runID, started)
			return record, fatal
		}
		o.log.WithFields(logrus.Fields{
			"case": tc.ID, "status": result.Status, "duration": result.DurationSeconds,
		}).Info("case finished")
	}

	o.finishSummary(record, runID, started)
	return record, nil
}

func (o *Orchestrator) finishSummary(record *domain.ExecutionRecord, runID string, started time.Time) {
	finished := time.Now().UTC()
	s := domain.Summary{
		RunID:      runID,
		StartedAt:  started.Format(time.RFC3339),
		FinishedAt: finished.Format(time.RFC3339),
		// Wall clock, recorded independently of the per-case sum so
		// orchestration overhead is visible.
		DurationSeconds: roundSeconds(finished.Sub(started)),
	}
	for _, c := range record.TestCases {
		s.Total++
		switch c.Status {
		case domain.StatusPassed:
			s.Passed++
		case domain.StatusFailed:
			s.Failed++
		case domain.StatusSkipped:
			s.Skipped++
		}
	}
	record.Summary = s
}

// runCase executes a single case in a fresh session. The second return value
// is non-nil only for fatal orchestration errors.
func (o *Orchestrator) runCase(ctx context.Context, tc domain.TestCase, baseURL string, arts *artifactStore, opts Options) (domain.CaseResult, error) {
	result := domain.CaseResult{ID: tc.ID, Name: tc.Name, Status: domain.StatusPassed}

	session, err := o.driver.NewSession(ctx)
	if err != nil {
		result.Status = domain.StatusFailed
		result.Error = &domain.CaseError{Message: err.Error(), StepIndex: 0}
		return result, &domain.OrchestrationError{Message: "could not establish automation session", Cause: err}
	}
	defer session.Close()

	steps := resolveSteps(tc.Steps, baseURL)
	started := time.Now()

	for idx, step := range steps {
		if ctx.Err() != nil {
			result.Status = domain.StatusFailed
			result.Error = &domain.CaseError{Message: "run cancelled: " + ctx.Err().Error(), StepIndex: idx}
			break
		}

		stepRes := o.executeStep(ctx, session, tc.ID, idx, step, arts, opts)
		result.Steps = append(result.Steps, stepRes)

		if stepRes.Status == domain.StatusFailed {
			// First failure aborts the remaining steps of this case only;
			// evidence captured so far is retained.
			result.Status = domain.StatusFailed
			result.Error = &domain.CaseError{Message: stepRes.Error, StepIndex: idx}
			o.log.WithFields(logrus.Fields{"case": tc.ID, "step": idx}).
				Warn("step failed, aborting case")
			break
		}
	}

	result.DurationSeconds = roundSeconds(time.Since(started))

	if vr, ok := session.(driver.VideoRecorder); ok {
		if path := vr.VideoPath(); path != "" {
			if name, err := arts.adoptVideo(path, tc.ID); err == nil {
				result.Video = name
			} else {
				o.log.WithError(err).Warn("could not collect case video")
			}
		}
	}
	return result, nil
}

// executeStep performs one step with the single bounded retry for transient
// automation faults. Assertion failures are never retried.
func (o *Orchestrator) executeStep(ctx context.Context, session driver.Session, caseID string, idx int, step domain.Step, arts *artifactStore, opts Options) domain.StepResult {
	res := domain.StepResult{
		Index:  idx,
		Action: step.Action,
		Target: step.Target,
		Value:  step.Value,
		Status: domain.StatusPassed,
	}

	err := o.performAction(ctx, session, step, opts)
	var autoErr *domain.AutomationError
	if err != nil && errors.As(err, &autoErr) && autoErr.Transient && !step.Action.IsAssertion() {
		o.log.WithFields(logrus.Fields{"case": caseID, "step": idx}).
			Debug("transient automation fault, retrying once")
		err = o.performAction(ctx, session, step, opts)
	}

	if err != nil {
		res.Status = domain.StatusFailed
		res.Error = err.Error()
		if name, serr := arts.saveScreenshot(session, failShotName(caseID, idx)); serr == nil {
			res.Screenshot = name
		}
		return res
	}

	// Evidence after every executed step, keyed by case, position and action.
	shotName := stepShotName(caseID, idx, step.Action)
	if step.Action == domain.ActionScreenshot && step.Name != "" {
		shotName = step.Name + ".png"
	}
	if name, serr := arts.saveScreenshot(session, shotName); serr == nil {
		res.Screenshot = name
	} else {
		o.log.WithError(serr).WithFields(logrus.Fields{"case": caseID, "step": idx}).
			Warn("could not capture step screenshot")
	}
	return res
}

func (o *Orchestrator) performAction(ctx context.Context, session driver.Session, step domain.Step, opts Options) error {
	switch step.Action {
	case domain.ActionGoto:
		return session.Navigate(ctx, step.Target)
	case domain.ActionClick:
		return session.Click(ctx, step.Target)
	case domain.ActionFill:
		return session.Fill(ctx, step.Target, step.Value)
	case domain.ActionSelect:
		return session.SelectOption(ctx, step.Target, step.Value)
	case domain.ActionHover:
		return session.Hover(ctx, step.Target)
	case domain.ActionScroll:
		px := 500
		if n, err := strconv.Atoi(strings.TrimSpace(step.Target)); err == nil {
			px = n
		}
		return session.Scroll(ctx, px)
	case domain.ActionWait:
		return sleepCtx(ctx, waitDuration(step.Target, opts.DefaultWait))
	case domain.ActionNote, domain.ActionScreenshot:
		// Note steps are authored text kept for human review; the capture
		// after this switch is the only effect either action has.
		return nil
	case domain.ActionAssertVisible:
		return session.WaitVisible(ctx, step.Target)
	case domain.ActionAssertText:
		actual, err := session.Text(ctx, step.Target)
		if err != nil {
			return err
		}
		if !containsFold(actual, step.Value) {
			return &domain.AssertionError{Action: step.Action, Target: step.Target, Expected: step.Value, Actual: actual}
		}
		return nil
	case domain.ActionAssertURL:
		current, err := session.URL(ctx)
		if err != nil {
			return err
		}
		if !strings.Contains(current, step.Target) {
			return &domain.AssertionError{Action: step.Action, Target: step.Target, Expected: step.Target, Actual: current}
		}
		return nil
	case domain.ActionAssertTitle:
		current, err := session.Title(ctx)
		if err != nil {
			return err
		}
		if !containsFold(current, step.Target) {
			return &domain.AssertionError{Action: step.Action, Target: step.Target, Expected: step.Target, Actual: current}
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
}

// resolveSteps rewrites relative goto targets against the base URL and makes
// sure every case starts from a page: a case with no navigation at all gets
// an implicit leading goto to the base URL.
func resolveSteps(steps []domain.Step, baseURL string) []domain.Step {
	resolved := make([]domain.Step, 0, len(steps)+1)
	if !hasGoto(steps) && baseURL != "" {
		resolved = append(resolved, domain.Step{Action: domain.ActionGoto, Target: baseURL})
	}
	for _, s := range steps {
		if s.Action == domain.ActionGoto {
			s.Target = resolveURL(s.Target, baseURL)
		}
		resolved = append(resolved, s)
	}
	return resolved
}

func resolveURL(target, base string) string {
	switch {
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return target
	case strings.HasPrefix(target, "/"):
		return strings.TrimRight(base, "/") + target
	default:
		// Free-text destination ("首頁", "homepage"): the landing page.
		return strings.TrimRight(base, "/") + "/"
	}
}

func suiteNeedsBaseURL(suite *domain.TestSuite) bool {
	for _, tc := range suite.TestCases {
		absolute := false
		for _, s := range tc.Steps {
			if s.Action != domain.ActionGoto {
				continue
			}
			if strings.HasPrefix(s.Target, "http://") || strings.HasPrefix(s.Target, "https://") {
				absolute = true
			} else {
				return true
			}
		}
		if !absolute {
			return true
		}
	}
	return false
}

func hasGoto(steps []domain.Step) bool {
	for _, s := range steps {
		if s.Action == domain.ActionGoto {
			return true
		}
	}
	return false
}

func waitDuration(target string, fallback time.Duration) time.Duration {
	if fallback == 0 {
		fallback = time.Second
	}
	ms, err := strconv.Atoi(strings.TrimSpace(target))
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

func stepShotName(caseID string, idx int, action domain.Action) string {
	return fmt.Sprintf("%s_step_%02d_%s.png", caseID, idx, action)
}

func failShotName(caseID string, idx int) string {
	return fmt.Sprintf("%s_step_%02d_FAIL.png", caseID, idx)
}
