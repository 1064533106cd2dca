package convert_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docrunner/docrunner/internal/convert"
)

var _ = Describe("Converter", func() {
	Describe("NewConverter", func() {
		It("should default to pandoc on PATH", func() {
			c := convert.NewConverter("")
			Expect(c.Binary).To(Equal("pandoc"))
			Expect(c.Timeout).To(Equal(60 * time.Second))
		})

		It("should keep an explicit binary path", func() {
			c := convert.NewConverter("/opt/pandoc/bin/pandoc")
			Expect(c.Binary).To(Equal("/opt/pandoc/bin/pandoc"))
		})
	})

	Describe("IsWordDocument", func() {
		It("should recognize word-processor extensions regardless of case", func() {
			Expect(convert.IsWordDocument("plan.docx")).To(BeTrue())
			Expect(convert.IsWordDocument("plan.DOCX")).To(BeTrue())
			Expect(convert.IsWordDocument("plan.odt")).To(BeTrue())
			Expect(convert.IsWordDocument("plan.rtf")).To(BeTrue())
		})

		It("should pass through markup files untouched", func() {
			Expect(convert.IsWordDocument("plan.md")).To(BeFalse())
			Expect(convert.IsWordDocument("plan.txt")).To(BeFalse())
			Expect(convert.IsWordDocument("plan")).To(BeFalse())
		})
	})

	Describe("argument construction", func() {
		It("should convert to pipe-friendly markdown with tracked changes accepted", func() {
			args := convert.ToMarkdownArgs("specs/plan.docx")
			Expect(args).To(Equal([]string{"--track-changes=all", "specs/plan.docx", "-t", "markdown"}))
		})

		It("should resolve resources next to the annotated markdown on the way back", func() {
			args := convert.FromMarkdownArgs("out/plan_annotated.md", "out/plan_annotated.docx")
			Expect(args).To(Equal([]string{"out/plan_annotated.md", "--resource-path", "out", "-o", "out/plan_annotated.docx"}))
		})
	})
})
