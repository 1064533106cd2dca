package extractor

import (
	"regexp"
	"strings"

	"github.com/docrunner/docrunner/internal/domain"
)

// Pandoc renders complex word-processor tables as grid tables
// (+---+---+ separators with multi-line cells), which goldmark does not
// model, so these are scanned line-wise.

var (
	gridSeparatorRe  = regexp.MustCompile(`^\+[=\-]+`)
	gridHeaderCellRe = regexp.MustCompile(`個案編號|項目序|測試目標|測試紀錄|測試項目|test case|steps|expected`)
	leadingDigitRe   = regexp.MustCompile(`^\d+`)
)

// parseGridTables extracts candidate cases from pandoc grid tables. Each row
// block is a run of "|"-prefixed lines between +---+ separators; a data row
// has a numeric sequence cell followed by name / steps / expected cells.
func parseGridTables(lines []string) []domain.TestCase {
	var blocks [][]string
	var current []string
	inGrid := false

	for _, line := range lines {
		switch {
		case gridSeparatorRe.MatchString(line):
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			inGrid = true
		case inGrid && strings.HasPrefix(line, "|"):
			current = append(current, line)
		case inGrid && !strings.HasPrefix(line, "+"):
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			inGrid = false
		}
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}

	var cases []domain.TestCase
	for _, block := range blocks {
		cells := gridRowCells(block)
		if len(cells) < 2 {
			continue
		}
		first := strings.TrimSpace(cells[0])
		if gridHeaderCellRe.MatchString(first) {
			continue
		}
		name := cells[1]
		var stepsRaw, expected string
		if len(cells) > 2 {
			stepsRaw = cells[2]
		}
		if len(cells) > 3 {
			expected = cells[3]
		}
		if name == "" || !leadingDigitRe.MatchString(first) {
			continue
		}

		tc := buildCase("", name, stepsRaw, expected, true)
		// Grid rows describe in-app flows; make sure each starts from a page.
		if !hasGoto(tc.Steps) {
			tc.Steps = append([]domain.Step{{Action: domain.ActionGoto, Target: "/"}}, tc.Steps...)
		}
		cases = append(cases, tc)
	}
	return cases
}

func hasGoto(steps []domain.Step) bool {
	for _, s := range steps {
		if s.Action == domain.ActionGoto {
			return true
		}
	}
	return false
}

var boldMarkRe = regexp.MustCompile(`\*\*(.+?)\*\*`)

// gridRowCells splits a block of "| a | b |" lines into per-column text,
// joining the multi-line cell content pandoc produces.
func gridRowCells(rowLines []string) []string {
	if len(rowLines) == 0 {
		return nil
	}
	columns := len(strings.Split(strings.Trim(rowLines[0], "|"), "|"))
	parts := make([][]string, columns)
	for _, line := range rowLines {
		for i, cell := range strings.Split(strings.Trim(line, "|"), "|") {
			if i < columns {
				parts[i] = append(parts[i], strings.TrimSpace(cell))
			}
		}
	}
	cells := make([]string, columns)
	for i, p := range parts {
		var kept []string
		for _, s := range p {
			if s != "" {
				kept = append(kept, s)
			}
		}
		cells[i] = boldMarkRe.ReplaceAllString(strings.Join(kept, " "), "$1")
	}
	return cells
}
