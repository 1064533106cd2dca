// Package extractor reconstructs a canonical TestSuite from a loosely
// structured Markdown document (authored directly, or produced from a
// word-processor file by the convert package).
//
// Extraction prefers tabular shapes: a pipe table or pandoc grid table whose
// header row carries recognizable column semantics. When no table is found it
// falls back to prose scanning for case-boundary markers. Ambiguous step text
// is retained verbatim as a note step rather than dropped.
package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/docrunner/docrunner/internal/domain"
)

// Options tune a single extraction.
type Options struct {
	SourcePath string // recorded in errors only
	BaseURL    string // overrides any URL found in the document preamble
}

// Extractor turns document content into a TestSuite.
type Extractor struct {
	log *logrus.Logger
}

// New creates an Extractor.
func New(log *logrus.Logger) *Extractor {
	return &Extractor{log: log}
}

var (
	urlRe = regexp.MustCompile(`https?://[^\s"'>]+`)
	// Expected-result lines require an explicit separator so assertion steps
	// ("verify page shows ...") are not swallowed as expected text.
	expectedRe = regexp.MustCompile(`(?i)^(?:expected(?:\s+result)?|預期結果|預期|期望|result)\s*[:：]\s*(.+)`)
)

// Extract parses the document and returns the canonical suite. It fails with
// ExtractionError only when no case-like structure exists at all; individual
// ambiguous steps survive as note steps.
func (e *Extractor) Extract(content []byte, opts Options) (*domain.TestSuite, error) {
	lines := strings.Split(string(content), "\n")
	meta := scanMeta(lines, opts.BaseURL)

	cases := parsePipeTables(content)
	shape := "table"
	if len(cases) == 0 {
		cases = parseGridTables(lines)
		shape = "grid-table"
	}
	if len(cases) == 0 {
		cases = parseProse(lines)
		shape = "prose"
	}
	if len(cases) == 0 {
		return nil, &domain.ExtractionError{
			File:    opts.SourcePath,
			Message: "no recognizable test case structure (table rows or case headings) found",
		}
	}
	e.log.WithFields(logrus.Fields{"shape": shape, "cases": len(cases)}).
		Debug("extracted candidate cases")

	if err := finalize(cases, opts.SourcePath); err != nil {
		return nil, err
	}
	return &domain.TestSuite{Meta: meta, TestCases: cases}, nil
}

// scanMeta pulls free-text metadata out of the preamble block (the first few
// lines before any case structure). Absence of any field is not an error.
func scanMeta(lines []string, baseURL string) domain.SuiteMeta {
	meta := domain.SuiteMeta{
		Title:   "Test Suite",
		BaseURL: baseURL,
		Date:    time.Now().Format("2006-01-02"),
	}
	limit := len(lines)
	if limit > 20 {
		limit = 20
	}
	split := func(line string) string {
		parts := regexp.MustCompile(`[：:\t]+`).Split(line, 2)
		if len(parts) == 2 {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	for _, line := range lines[:limit] {
		if meta.BaseURL == "" && regexp.MustCompile(`(?i)(?:URL|base.?url|網址|網站)`).MatchString(line) {
			if urls := urlRe.FindString(line); urls != "" {
				meta.BaseURL = urls
			}
		}
		if regexp.MustCompile(`(?i)(?:title|名稱|測試名|project)`).MatchString(line) {
			if v := split(line); v != "" {
				meta.Title = v
			}
		}
		if regexp.MustCompile(`(?i)(?:環境|environment|env)`).MatchString(line) {
			if v := split(line); v != "" {
				meta.Environment = v
			}
		}
		if regexp.MustCompile(`(?i)(?:author|tested.?by|撰寫者|測試人員|PM|SA)`).MatchString(line) {
			if v := split(line); v != "" {
				meta.TestedBy = v
			}
		}
	}
	return meta
}

var (
	enumeratorRe   = regexp.MustCompile(`^\s*\d+\s*[.)、]\s*`)
	arrowBreakRe   = regexp.MustCompile(`(?i)^\s*(?:\d+\s*[.)、]|expected\b|預期)`)
	stepSplitRe    = regexp.MustCompile(`[;；。\n]`)
	stepSplitAllRe = regexp.MustCompile(`[,，;；。\n]`)
)

// splitAtomicSteps breaks a step-describing text into atomic step strings.
// Arrows separate steps only when the following fragment is itself enumerated
// ("1. Go home → 2. Click ..."); otherwise they are navigation chains and are
// left intact for inferStep to resolve. commaSeparates additionally splits on
// commas, which is how table cells enumerate steps.
func splitAtomicSteps(text string, commaSeparates bool) []string {
	// Regroup arrow fragments: open a new unit at enumerated fragments,
	// rejoin navigation chains.
	var units []string
	for _, frag := range strings.Split(text, "→") {
		if len(units) == 0 {
			units = append(units, frag)
			continue
		}
		if arrowBreakRe.MatchString(frag) {
			units = append(units, frag)
		} else {
			units[len(units)-1] += "→" + frag
		}
	}

	splitter := stepSplitRe
	if commaSeparates {
		splitter = stepSplitAllRe
	}
	var atoms []string
	for _, unit := range units {
		for _, s := range splitter.Split(unit, -1) {
			s = strings.TrimSpace(enumeratorRe.ReplaceAllString(strings.TrimSpace(s), ""))
			if s != "" {
				atoms = append(atoms, s)
			}
		}
	}
	return atoms
}

// buildCase assembles a candidate case from raw cell/section text. Expected
// fragments embedded in the step text are promoted to the expected result when
// the dedicated field is empty.
func buildCase(id, name, stepsRaw, expected string, commaSeparates bool) domain.TestCase {
	tc := domain.TestCase{
		ID:             id,
		Name:           strings.TrimSpace(name),
		Description:    strings.TrimSpace(stepsRaw),
		ExpectedResult: strings.TrimSpace(expected),
	}
	for _, atom := range splitAtomicSteps(stepsRaw, commaSeparates) {
		if m := expectedRe.FindStringSubmatch(atom); m != nil {
			if tc.ExpectedResult == "" {
				tc.ExpectedResult = strings.TrimSpace(m[1])
			}
			continue
		}
		tc.Steps = append(tc.Steps, inferStep(atom))
	}
	return tc
}

// finalize enforces suite invariants: deterministic unique ids, disambiguated
// duplicate names, at least one step per case, and a trailing capture so every
// case leaves visual evidence.
func finalize(cases []domain.TestCase, sourcePath string) error {
	seenNames := make(map[string]int)
	seenIDs := make(map[string]bool)
	for i := range cases {
		tc := &cases[i]
		if len(tc.Steps) == 0 {
			return domain.NewError("extract", sourcePath, 0,
				"case "+strings.TrimSpace(tc.Name)+" has no recognizable steps", nil)
		}
		if tc.ID == "" {
			tc.ID = caseID(i)
		}
		if seenIDs[tc.ID] {
			// Colliding authored or positional id: advance to the next free
			// positional id so ids stay unique within the suite.
			next := i
			for seenIDs[caseID(next)] {
				next++
			}
			tc.ID = caseID(next)
		}
		seenIDs[tc.ID] = true
		if n := seenNames[tc.Name]; n > 0 {
			seenNames[tc.Name] = n + 1
			tc.Name = fmt.Sprintf("%s (%d)", tc.Name, n+1)
		} else {
			seenNames[tc.Name] = 1
		}
		last := tc.Steps[len(tc.Steps)-1]
		if last.Action != domain.ActionScreenshot && !last.Action.IsAssertion() {
			tc.Steps = append(tc.Steps, domain.Step{Action: domain.ActionScreenshot})
		}
	}
	return nil
}

func caseID(index int) string {
	return fmt.Sprintf("TC-%03d", index+1)
}
