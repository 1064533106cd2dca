package extractor

import (
	"regexp"
	"strings"

	"github.com/docrunner/docrunner/internal/domain"
)

var (
	tcHeaderRe   = regexp.MustCompile(`(?i)^#{1,4}\s*(?:TC[-\s]?(\d+)[:\s]?\s*)?(.+)$`)
	tcKeywordRe  = regexp.MustCompile(`(?i)TC|test case|測試|案例`)
	numberedRe   = regexp.MustCompile(`^\s*\d+\s*[.)、]\s+(.+)`)
	bulletRe     = regexp.MustCompile(`^\s*[-*•]\s+(.+)`)
	anyHeadingRe = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
)

// parseProse scans list/prose documents: numbered case headings followed by
// numbered or bulleted step lines. A step-like line with no preceding case
// heading opens an implicit case so single-block documents still extract.
func parseProse(lines []string) []domain.TestCase {
	var cases []domain.TestCase
	var current *domain.TestCase
	lastHeading := ""

	flush := func() {
		if current != nil {
			cases = append(cases, *current)
			current = nil
		}
	}

	for _, line := range lines {
		if h := tcHeaderRe.FindStringSubmatch(line); h != nil && tcKeywordRe.MatchString(line) {
			flush()
			current = &domain.TestCase{Name: strings.TrimSpace(h[2])}
			continue
		}
		if m := anyHeadingRe.FindStringSubmatch(line); m != nil {
			lastHeading = strings.TrimSpace(m[1])
			continue
		}

		s := numberedRe.FindStringSubmatch(line)
		if s == nil {
			s = bulletRe.FindStringSubmatch(line)
		}
		if s != nil {
			if current == nil {
				name := lastHeading
				if name == "" {
					name = "Test Case 1"
				}
				current = &domain.TestCase{Name: name}
			}
			appendAtoms(current, s[1])
			continue
		}

		// Standalone expected-result line under the current case.
		if current != nil {
			if m := expectedRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				if current.ExpectedResult == "" {
					current.ExpectedResult = strings.TrimSpace(m[1])
				}
			}
		}
	}
	flush()
	return cases
}

// appendAtoms splits one authored line into atomic steps and folds expected
// fragments into the case's expected result.
func appendAtoms(tc *domain.TestCase, text string) {
	for _, atom := range splitAtomicSteps(text, false) {
		if m := expectedRe.FindStringSubmatch(atom); m != nil {
			if tc.ExpectedResult == "" {
				tc.ExpectedResult = strings.TrimSpace(m[1])
			}
			continue
		}
		tc.Steps = append(tc.Steps, inferStep(atom))
	}
}
