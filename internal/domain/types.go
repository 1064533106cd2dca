package domain

// Action is the kind of automation step a test case performs.
type Action string

const (
	ActionGoto          Action = "goto"
	ActionClick         Action = "click"
	ActionFill          Action = "fill"
	ActionSelect        Action = "select"
	ActionHover         Action = "hover"
	ActionWait          Action = "wait"
	ActionScroll        Action = "scroll"
	ActionScreenshot    Action = "screenshot"
	ActionNote          Action = "note"
	ActionAssertVisible Action = "assert_visible"
	ActionAssertText    Action = "assert_text"
	ActionAssertURL     Action = "assert_url"
	ActionAssertTitle   Action = "assert_title"
)

// IsAssertion reports whether the action evaluates a condition against the
// current page state. Assertion failures are never retried.
func (a Action) IsAssertion() bool {
	switch a {
	case ActionAssertVisible, ActionAssertText, ActionAssertURL, ActionAssertTitle:
		return true
	}
	return false
}

// IsInteraction reports whether the action drives the page (as opposed to
// observing it or pausing).
func (a Action) IsInteraction() bool {
	switch a {
	case ActionGoto, ActionClick, ActionFill, ActionSelect, ActionHover, ActionScroll:
		return true
	}
	return false
}

// Step is one atomic automation action with optional target/value.
// Target is either an explicit selector supplied by the author or a
// "text=" locator synthesized from the step text.
type Step struct {
	Action Action `json:"action"`
	Target string `json:"target,omitempty"`
	Value  string `json:"value,omitempty"`
	Name   string `json:"name,omitempty"` // author-supplied screenshot name
}

// TestCase is an ordered step sequence extracted from one case-like structure
// in the source document.
type TestCase struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Steps          []Step `json:"steps"`
	ExpectedResult string `json:"expected_result"`
}

// SuiteMeta is free-text document metadata from the preamble block.
type SuiteMeta struct {
	Title       string `json:"title"`
	BaseURL     string `json:"base_url"`
	Environment string `json:"environment"`
	TestedBy    string `json:"tested_by"`
	Date        string `json:"date"`
}

// TestSuite is the canonical, ordered collection of test cases extracted from
// one source document. Case IDs are derived from position and are stable
// across re-extraction of the same document.
type TestSuite struct {
	Meta      SuiteMeta  `json:"meta"`
	TestCases []TestCase `json:"test_cases"`
}

// CaseByID returns the case with the given id, or nil.
func (s *TestSuite) CaseByID(id string) *TestCase {
	for i := range s.TestCases {
		if s.TestCases[i].ID == id {
			return &s.TestCases[i]
		}
	}
	return nil
}

// Status of a case or step after execution.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepResult is the recorded outcome of one executed step. Steps after a
// case's failure point are absent from the record, not marked passed.
type StepResult struct {
	Index      int    `json:"index"`
	Action     Action `json:"action"`
	Target     string `json:"target"`
	Value      string `json:"value,omitempty"`
	Status     Status `json:"status"`
	Screenshot string `json:"screenshot,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CaseError is the structured failure attached to a failed case.
type CaseError struct {
	Message   string `json:"message"`
	StepIndex int    `json:"step_index"`
}

// CaseResult is the recorded outcome of one test case.
type CaseResult struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Status          Status       `json:"status"`
	DurationSeconds float64      `json:"duration_seconds"`
	Steps           []StepResult `json:"steps"`
	Video           string       `json:"video,omitempty"`
	Error           *CaseError   `json:"error,omitempty"`
}

// Summary aggregates a whole run. Started/finished wall-clock times are
// recorded independently of the sum of case durations.
type Summary struct {
	RunID           string  `json:"run_id"`
	Total           int     `json:"total"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Skipped         int     `json:"skipped"`
	DurationSeconds float64 `json:"duration_seconds"`
	StartedAt       string  `json:"started_at"`
	FinishedAt      string  `json:"finished_at"`
}

// ExecutionRecord is the complete, immutable result of running a suite once.
// The orchestrator creates it; the renderers only ever read it.
type ExecutionRecord struct {
	Meta      SuiteMeta    `json:"meta"`
	Summary   Summary      `json:"summary"`
	TestCases []CaseResult `json:"test_cases"`
}

// PassRate returns the percentage of passed cases, rounded down.
func (r *ExecutionRecord) PassRate() int {
	if r.Summary.Total == 0 {
		return 0
	}
	return r.Summary.Passed * 100 / r.Summary.Total
}
