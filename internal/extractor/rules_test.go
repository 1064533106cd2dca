package extractor_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docrunner/docrunner/internal/domain"
	"github.com/docrunner/docrunner/internal/extractor"
)

// classify runs one atomic step text through a minimal single-case document.
func classify(text string) domain.Step {
	ex := extractor.New(newTestLogger())
	suite, err := ex.Extract([]byte("1. "+text), extractor.Options{})
	Expect(err).ToNot(HaveOccurred())
	Expect(suite.TestCases).To(HaveLen(1))
	return suite.TestCases[0].Steps[0]
}

var _ = Describe("step classification", func() {
	It("should classify navigation phrasing as goto", func() {
		step := classify("Navigate to https://example.org/search")
		Expect(step.Action).To(Equal(domain.ActionGoto))
		Expect(step.Target).To(Equal("https://example.org/search"))
	})

	It("should classify click phrasing with a quoted target", func() {
		step := classify("Click '進階檢索'")
		Expect(step.Action).To(Equal(domain.ActionClick))
		Expect(step.Target).To(Equal("進階檢索"))
	})

	It("should not let the generic click cue shadow option selection", func() {
		step := classify("select option Admin from #role")
		Expect(step.Action).To(Equal(domain.ActionSelect))
		Expect(step.Value).To(Equal("Admin"))
		Expect(step.Target).To(Equal("#role"))
	})

	It("should resolve arrow navigation chains to the final target", func() {
		step := classify("點選主選單→全宗瀏覽")
		Expect(step.Action).To(Equal(domain.ActionClick))
		Expect(step.Target).To(Equal("全宗瀏覽"))
	})

	It("should classify verification phrasing as a visibility assertion", func() {
		step := classify("verify page shows welcome message")
		Expect(step.Action).To(Equal(domain.ActionAssertVisible))
		Expect(step.Target).ToNot(BeEmpty())
	})

	It("should classify Chinese verification phrasing as a visibility assertion", func() {
		step := classify("驗證頁面顯示歡迎訊息")
		Expect(step.Action).To(Equal(domain.ActionAssertVisible))
		Expect(step.Target).ToNot(BeEmpty())
	})

	It("should classify URL checks ahead of the generic assertion cue", func() {
		step := classify("verify url contains /dashboard")
		Expect(step.Action).To(Equal(domain.ActionAssertURL))
		Expect(step.Target).To(Equal("/dashboard"))
	})

	It("should classify title checks ahead of the generic assertion cue", func() {
		step := classify("確認標題包含 檔案檢索系統")
		Expect(step.Action).To(Equal(domain.ActionAssertTitle))
		Expect(step.Target).To(Equal("檔案檢索系統"))
	})

	It("should classify waits with their duration", func() {
		step := classify("wait 2000")
		Expect(step.Action).To(Equal(domain.ActionWait))
		Expect(step.Target).To(Equal("2000"))
	})

	It("should classify scroll phrasing", func() {
		step := classify("scroll down")
		Expect(step.Action).To(Equal(domain.ActionScroll))
	})

	It("should keep an author-supplied screenshot name, sanitized", func() {
		step := classify("screenshot search results page")
		Expect(step.Action).To(Equal(domain.ActionScreenshot))
		Expect(step.Name).To(Equal("search_results_page"))
	})

	It("should retain unclassifiable text verbatim as a note", func() {
		step := classify("資料庫回應速度普通")
		Expect(step.Action).To(Equal(domain.ActionNote))
		Expect(step.Target).To(Equal("資料庫回應速度普通"))
	})
})
