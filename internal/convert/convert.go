// Package convert shells out to pandoc for word-processor round trips.
// Document conversion is an external collaborator: this package only builds
// the invocation, runs it, and surfaces stderr in errors.
package convert

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/docrunner/docrunner/internal/domain"
)

// Converter wraps a pandoc binary.
type Converter struct {
	// Binary is the pandoc executable name or path.
	Binary string
	// Timeout bounds a single conversion.
	Timeout time.Duration
}

// NewConverter returns a Converter with the given binary, defaulting to
// "pandoc" on PATH.
func NewConverter(binary string) *Converter {
	if binary == "" {
		binary = "pandoc"
	}
	return &Converter{Binary: binary, Timeout: 60 * time.Second}
}

// IsWordDocument reports whether the path looks like a word-processor file
// that needs conversion before extraction.
func IsWordDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx", ".doc", ".odt", ".rtf":
		return true
	}
	return false
}

// ToMarkdownArgs builds the argument vector for a document → Markdown
// conversion. Split out so command construction is testable without pandoc.
func ToMarkdownArgs(inputPath string) []string {
	return []string{"--track-changes=all", inputPath, "-t", "markdown"}
}

// FromMarkdownArgs builds the argument vector for a Markdown → document
// conversion used when round-tripping the annotated copy.
func FromMarkdownArgs(mdPath, outPath string) []string {
	return []string{mdPath, "--resource-path", filepath.Dir(mdPath), "-o", outPath}
}

// ToMarkdown converts a word-processor file into Markdown text.
func (c *Converter) ToMarkdown(ctx context.Context, inputPath string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Binary, ToMarkdownArgs(inputPath)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, c.wrapErr("convert", inputPath, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// FromMarkdown converts an annotated Markdown file back into a word-processor
// document at outPath.
func (c *Converter) FromMarkdown(ctx context.Context, mdPath, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Binary, FromMarkdownArgs(mdPath, outPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return c.wrapErr("annotate", mdPath, err, stderr.String())
	}
	return nil
}

func (c *Converter) wrapErr(phase, file string, err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return domain.NewError("config", "", 0,
			c.Binary+" not found on PATH; install pandoc to process word-processor documents", err)
	}
	msg := "pandoc conversion failed"
	if s := strings.TrimSpace(stderr); s != "" {
		msg += ": " + s
	}
	return domain.NewError(phase, file, 0, msg, err)
}
