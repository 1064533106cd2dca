package extractor

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/docrunner/docrunner/internal/domain"
)

// Column roles a case table can carry. A table is only treated as a case
// table when both a name-like and a steps-like column are present.
const (
	colID       = "id"
	colOrder    = "order"
	colName     = "name"
	colSteps    = "steps"
	colExpected = "expected"
	colResult   = "result"
)

var headerSynonyms = map[string]string{
	"id": colID, "編號": colID, "個案編號": colID,
	"#": colOrder, "no": colOrder, "no.": colOrder, "item": colOrder, "項目序": colOrder, "序號": colOrder,
	"name": colName, "test case": colName, "case": colName, "名稱": colName, "測試案例": colName, "測試項目": colName,
	"steps": colSteps, "step": colSteps, "action": colSteps, "actions": colSteps, "步驟": colSteps, "操作步驟": colSteps, "測試步驟": colSteps,
	"expected": colExpected, "expected result": colExpected, "預期結果": colExpected,
	"result": colResult, "測試結果": colResult, "status": colResult,
}

func headerRole(cell string) string {
	key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(cell, "**", "")))
	return headerSynonyms[key]
}

// parsePipeTables walks the goldmark AST for pipe tables whose header row has
// recognizable column semantics and turns each data row into a candidate case.
func parsePipeTables(content []byte) []domain.TestCase {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(content))

	var cases []domain.TestCase
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		table, ok := n.(*east.Table)
		if !ok {
			return ast.WalkContinue, nil
		}
		cases = append(cases, parseTableNode(table, content)...)
		return ast.WalkSkipChildren, nil
	})
	return cases
}

func parseTableNode(table *east.Table, content []byte) []domain.TestCase {
	roles := make(map[int]string)
	var cases []domain.TestCase

	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		cells := rowCells(row, content)
		switch row.(type) {
		case *east.TableHeader:
			for i, c := range cells {
				if role := headerRole(c); role != "" {
					roles[i] = role
				}
			}
		case *east.TableRow:
			if !hasRole(roles, colName) || !hasRole(roles, colSteps) {
				continue
			}
			var id, name, steps, expected string
			for i, c := range cells {
				switch roles[i] {
				case colID:
					id = strings.TrimSpace(c)
				case colName:
					name = c
				case colSteps:
					steps = c
				case colExpected:
					expected = c
				}
			}
			if strings.TrimSpace(name) == "" {
				continue
			}
			cases = append(cases, buildCase(id, name, steps, expected, true))
		}
	}
	return cases
}

func hasRole(roles map[int]string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// rowCells returns the text of each cell in a header/data row.
func rowCells(row ast.Node, content []byte) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, nodeText(cell, content))
	}
	return cells
}

// nodeText collects the raw text under a node, joining soft-broken lines.
func nodeText(n ast.Node, content []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			buf.Write(t.Segment.Value(content))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
