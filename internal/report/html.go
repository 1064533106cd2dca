// Package report renders a self-contained HTML document from an
// ExecutionRecord. All media is base64-inlined so the file is portable on its
// own; a missing artifact degrades to a visible placeholder, never an error.
package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/docrunner/docrunner/internal/domain"
)

// Renderer builds the self-contained report. It only reads the record and
// the artifact directory.
type Renderer struct {
	log *logrus.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(log *logrus.Logger) *Renderer {
	return &Renderer{log: log}
}

type stepView struct {
	domain.StepResult
	ImageURI     template.URL
	MissingMedia bool
}

type caseView struct {
	domain.CaseResult
	StepViews []stepView
	VideoURI  template.URL
}

type pageData struct {
	Title    string
	Meta     domain.SuiteMeta
	Summary  domain.Summary
	PassRate int
	Failed   []domain.CaseResult
	Cases    []caseView
}

// Render produces the report document. Layout is deterministic for the same
// record: cases appear in suite order, never re-sorted by status.
func (r *Renderer) Render(record *domain.ExecutionRecord, artifactDir string) ([]byte, error) {
	data := pageData{
		Title:    record.Meta.Title,
		Meta:     record.Meta,
		Summary:  record.Summary,
		PassRate: record.PassRate(),
	}
	if data.Title == "" {
		data.Title = "Test Report"
	}
	for _, tc := range record.TestCases {
		if tc.Status == domain.StatusFailed {
			data.Failed = append(data.Failed, tc)
		}
		data.Cases = append(data.Cases, r.buildCaseView(tc, artifactDir))
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, domain.NewError("report", "", 0, "failed to execute report template", err)
	}
	return buf.Bytes(), nil
}

// RenderToFile writes the report to disk.
func (r *Renderer) RenderToFile(record *domain.ExecutionRecord, artifactDir, outPath string) error {
	html, err := r.Render(record, artifactDir)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, html, 0644); err != nil {
		return domain.NewError("report", outPath, 0, "failed to write report", err)
	}
	return nil
}

func (r *Renderer) buildCaseView(tc domain.CaseResult, artifactDir string) caseView {
	view := caseView{CaseResult: tc}
	for _, step := range tc.Steps {
		sv := stepView{StepResult: step}
		if step.Screenshot != "" {
			uri, err := encodeFile(filepath.Join(artifactDir, "screenshots", step.Screenshot))
			if err != nil {
				sv.MissingMedia = true
				r.log.WithError(err).WithField("screenshot", step.Screenshot).
					Warn("screenshot missing, rendering placeholder")
			} else {
				sv.ImageURI = uri
			}
		}
		view.StepViews = append(view.StepViews, sv)
	}
	if tc.Video != "" {
		uri, err := encodeFile(filepath.Join(artifactDir, "videos", tc.Video))
		if err != nil {
			r.log.WithError(err).WithField("video", tc.Video).
				Warn("video missing, rendering placeholder")
		} else {
			view.VideoURI = uri
		}
	}
	return view
}

var mimeByExt = map[string]string{
	".png": "image/png", ".jpg": "image/jpeg", ".jpeg": "image/jpeg",
	".gif": "image/gif", ".webp": "image/webp",
	".webm": "video/webm", ".mp4": "video/mp4",
}

// encodeFile returns a base64 data URI for an artifact file.
func encodeFile(path string) (template.URL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := mimeByExt[strings.ToLower(filepath.Ext(path))]
	if mime == "" {
		mime = "application/octet-stream"
	}
	uri := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
	return template.URL(uri), nil
}
