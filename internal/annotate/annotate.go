// Package annotate rewrites a copy of the original source document with the
// outcome of a run. Markers are placed next to each case the matcher can still
// locate; everything else lands in a trailing unmatched section. The original
// content is never reordered or removed.
package annotate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/docrunner/docrunner/internal/domain"
)

// Annotator applies execution results to the Markdown form of a document.
type Annotator struct {
	log *logrus.Logger
}

// NewAnnotator creates an Annotator.
func NewAnnotator(log *logrus.Logger) *Annotator {
	return &Annotator{log: log}
}

const (
	markerPass = "✅ PASS"
	markerFail = "❌ FAIL"
	markerSkip = "⏭ SKIP"
)

func marker(status domain.Status) string {
	switch status {
	case domain.StatusPassed:
		return markerPass
	case domain.StatusFailed:
		return markerFail
	default:
		return markerSkip
	}
}

// Annotate returns a copy of the Markdown document with status markers
// inserted at each matched case location and an execution summary appended.
// Results that no longer match any location are listed under an unmatched
// section instead of failing the run.
func (a *Annotator) Annotate(doc []byte, record *domain.ExecutionRecord, artifactDir string) ([]byte, error) {
	lines := strings.Split(string(doc), "\n")
	locs := findCaseLocations(lines)

	var unmatched []domain.CaseResult
	for _, tc := range record.TestCases {
		loc := a.match(locs, tc)
		if loc == nil {
			a.log.WithFields(logrus.Fields{"case": tc.ID, "name": tc.Name}).
				Warn("no document location matches this result")
			unmatched = append(unmatched, tc)
			continue
		}
		lines[loc.line] = annotateLine(lines[loc.line], tc.Status)
	}

	var out strings.Builder
	out.WriteString(strings.Join(lines, "\n"))
	if !strings.HasSuffix(out.String(), "\n") {
		out.WriteString("\n")
	}
	writeSummarySection(&out, record, artifactDir)
	if len(unmatched) > 0 {
		writeUnmatchedSection(&out, unmatched)
	}
	return []byte(out.String()), nil
}

// location is a line in the document that looks like it introduces or
// represents one test case.
type location struct {
	line    int
	text    string
	claimed bool
}

// findCaseLocations collects candidate case lines in document order: headings
// and table data rows. A data row is a pipe-table line that carries content
// beyond the delimiter row.
func findCaseLocations(lines []string) []*location {
	var locs []*location
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			locs = append(locs, &location{line: i, text: trimmed})
		case strings.HasPrefix(trimmed, "|") && !isDelimiterRow(trimmed) && !isHeaderRow(trimmed):
			locs = append(locs, &location{line: i, text: trimmed})
		}
	}
	return locs
}

func isDelimiterRow(line string) bool {
	for _, r := range line {
		switch r {
		case '|', '-', ':', ' ', '=', '+':
		default:
			return false
		}
	}
	return true
}

var headerWords = []string{
	"步驟", "預期", "編號", "項目", "測試步驟",
	"steps", "expected", "action", "item",
}

func isHeaderRow(line string) bool {
	lower := strings.ToLower(line)
	n := 0
	for _, w := range headerWords {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n >= 2
}

// match finds the document location for one result: first by name, then by
// the position-derived case id when the document carries ids. The first
// unclaimed match wins; further candidates with the same name are logged as
// ambiguous and left for later results.
func (a *Annotator) match(locs []*location, tc domain.CaseResult) *location {
	name := strings.ToLower(strings.TrimSpace(tc.Name))
	var found *location
	for _, loc := range locs {
		if name == "" || !strings.Contains(strings.ToLower(loc.text), name) {
			continue
		}
		if loc.claimed {
			continue
		}
		if found != nil {
			a.log.WithFields(logrus.Fields{"case": tc.ID, "name": tc.Name}).
				Debug("multiple document locations match by name, keeping the first")
			break
		}
		found = loc
	}
	if found == nil && tc.ID != "" {
		for _, loc := range locs {
			if !loc.claimed && strings.Contains(loc.text, tc.ID) {
				found = loc
				a.log.WithFields(logrus.Fields{"case": tc.ID, "line": loc.line + 1}).
					Debug("matched by case id, not by name")
				break
			}
		}
	}
	if found != nil {
		found.claimed = true
	}
	return found
}

// annotateLine inserts the status marker into one matched line. Checkbox
// cells (□通過 / □失敗) are ticked in place; headings and plain rows get the
// marker appended.
func annotateLine(line string, status domain.Status) string {
	switch status {
	case domain.StatusPassed:
		if strings.Contains(line, "□通過") {
			return strings.Replace(line, "□通過", "☑通過", 1)
		}
	case domain.StatusFailed:
		if strings.Contains(line, "□失敗") {
			return strings.Replace(line, "□失敗", "☑失敗", 1)
		}
	}
	m := marker(status)
	if strings.Contains(line, m) {
		return line
	}
	trimmed := strings.TrimRight(line, " ")
	if strings.HasPrefix(strings.TrimSpace(trimmed), "|") && strings.HasSuffix(trimmed, "|") {
		return trimmed[:len(trimmed)-1] + " " + m + " |"
	}
	return trimmed + " " + m
}

func writeSummarySection(out *strings.Builder, record *domain.ExecutionRecord, artifactDir string) {
	s := record.Summary
	fmt.Fprintf(out, "\n---\n\n## Test Execution Summary\n\n")
	fmt.Fprintf(out, "Run `%s` · started %s · finished %s\n\n", s.RunID, s.StartedAt, s.FinishedAt)
	fmt.Fprintf(out, "| Total | Passed | Failed | Skipped | Duration |\n")
	fmt.Fprintf(out, "|---|---|---|---|---|\n")
	fmt.Fprintf(out, "| %d | %d | %d | %d | %.2fs |\n\n", s.Total, s.Passed, s.Failed, s.Skipped, s.DurationSeconds)

	var failed []domain.CaseResult
	for _, tc := range record.TestCases {
		if tc.Status == domain.StatusFailed {
			failed = append(failed, tc)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(out, "### Failed Cases\n\n")
		for _, tc := range failed {
			line := fmt.Sprintf("- **%s** %s", tc.ID, tc.Name)
			if tc.Error != nil {
				line += fmt.Sprintf(" — step %d: %s", tc.Error.StepIndex, tc.Error.Message)
			}
			out.WriteString(line + "\n")
		}
		out.WriteString("\n")
	}

	for _, tc := range record.TestCases {
		fmt.Fprintf(out, "### %s — %s (%s, %.2fs)\n\n", tc.ID, tc.Name, marker(tc.Status), tc.DurationSeconds)
		if len(tc.Steps) == 0 {
			out.WriteString("_No steps executed._\n\n")
			continue
		}
		fmt.Fprintf(out, "| # | Action | Target | Status | Screenshot |\n")
		fmt.Fprintf(out, "|---|---|---|---|---|\n")
		for _, st := range tc.Steps {
			ss := ""
			if st.Screenshot != "" {
				ss = fmt.Sprintf("[%s](%s)", st.Screenshot, screenshotPath(artifactDir, st.Screenshot))
			}
			target := st.Target
			if st.Value != "" {
				target += " → " + st.Value
			}
			fmt.Fprintf(out, "| %d | %s | %s | %s | %s |\n",
				st.Index, st.Action, escapeCell(target), st.Status, ss)
		}
		out.WriteString("\n")
		// One embedded picture per case (the final captured state, which is
		// the failure evidence for failed cases) so the word-processor round
		// trip keeps visual evidence, not just hyperlinks.
		if rep := representativeShot(tc); rep != "" {
			fmt.Fprintf(out, "![%s](%s)\n\n", rep, screenshotPath(artifactDir, rep))
		}
	}
}

// representativeShot picks the last captured screenshot of a case.
func representativeShot(tc domain.CaseResult) string {
	for i := len(tc.Steps) - 1; i >= 0; i-- {
		if tc.Steps[i].Screenshot != "" {
			return tc.Steps[i].Screenshot
		}
	}
	return ""
}

func screenshotPath(artifactDir, name string) string {
	return filepath.ToSlash(filepath.Join(artifactDir, "screenshots", name))
}

func writeUnmatchedSection(out *strings.Builder, unmatched []domain.CaseResult) {
	fmt.Fprintf(out, "### Unmatched Results\n\n")
	out.WriteString("The following results could not be matched back to a location in this document; its cases may have been renamed or removed since extraction.\n\n")
	for _, tc := range unmatched {
		fmt.Fprintf(out, "- **%s** %s — %s\n", tc.ID, tc.Name, marker(tc.Status))
	}
	out.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
