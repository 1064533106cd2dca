package extractor

import (
	"regexp"
	"strings"

	"github.com/docrunner/docrunner/internal/domain"
)

// searchInputSelectors is the multi-selector list used when an author asks to
// fill a search box without naming a target. The orchestrator tries each in
// order until one matches.
const searchInputSelectors = "input[name*=keyword], input[name*=Keyword], " +
	"input[placeholder*=檢索], input[placeholder*=搜尋], input[placeholder*=查詢], " +
	"input.ui-autocomplete-input, input[type=search], " +
	"input[name*=search], input[name*=query], #search, .search-input"

// rule maps a lexical cue to an action kind. Rules are evaluated strictly
// top-to-bottom and the first match wins, so specific phrases ("select option")
// must appear before generic ones that would shadow them ("select" → click).
type rule struct {
	re     *regexp.Regexp
	action domain.Action
}

var stepRules = []rule{
	// goto / navigate
	{regexp.MustCompile(`(?i)^(?:navigate\s*(?:to)?|go\s*to|open)\s+(.+)`), domain.ActionGoto},
	{regexp.MustCompile(`(?i)^(?:開啟|前往|瀏覽|進入|連到|連至|造訪|訪問|到)\s*(.+)`), domain.ActionGoto},

	// select — must precede click so "select option X" is not eaten by the
	// generic "select" → click cue below
	{regexp.MustCompile(`(?i)^(?:select\s+option|choose|switch\s+to)\s+["']?(.+?)["']?\s+(?:from|in)\s+(.+)`), domain.ActionSelect},
	{regexp.MustCompile(`(?i)^(?:選擇|選取|下拉選)\s*[「『"']?(.+?)[」』"']?\s*(?:於|在|從)\s*(.+)`), domain.ActionSelect},

	// click
	{regexp.MustCompile(`(?i)^(?:click|press|select\s+button|tap)\s+(.+)`), domain.ActionClick},
	{regexp.MustCompile(`(?i)^(?:按下|點擊|點選|按|點|選按|勾選|展開|收合|切換)\s*(.+)`), domain.ActionClick},

	// fill with explicit target
	{regexp.MustCompile(`(?i)^(?:type|enter|input|fill)\s+["']?(.+?)["']?\s+in(?:to)?\s+(.+)`), domain.ActionFill},
	{regexp.MustCompile(`(?i)^(?:輸入|填入|填寫|鍵入)\s*[「『"']?(.+?)[」』"']?\s*(?:於|到|在|至)\s*(.+)`), domain.ActionFill},
	// fill without explicit target: "輸入『南方資料館』關鍵字" → search box
	{regexp.MustCompile(`(?i)^(?:輸入|填入|填寫|鍵入)\s*[「『"']?(.+?)[」』"']?\s*(?:關鍵字|搜尋|查詢|字串)`), actionFillSearch},

	// hover
	{regexp.MustCompile(`(?i)^(?:hover\s*(?:over)?)\s+(.+)`), domain.ActionHover},
	{regexp.MustCompile(`(?i)^(?:滑鼠移至|移至|移到|懸停)\s*(.+)`), domain.ActionHover},

	// assertions: url / text before the generic visibility cue
	{regexp.MustCompile(`(?i)^(?:verify|assert|check|確認|驗證)\s*(?:url|網址|連結)\s*(?:is|contains?|包含|為)?\s*(.+)`), domain.ActionAssertURL},
	{regexp.MustCompile(`(?i)^(?:verify|assert|check|確認|驗證)\s*(?:title|標題)\s*(?:is|contains?|包含|為)?\s*(.+)`), domain.ActionAssertTitle},
	{regexp.MustCompile(`(?i)^(?:verify|assert|check|確認|驗證)\s*(?:文字|text|內容)\s*(?:is|contains?|包含|為)?\s*(.+)`), domain.ActionAssertText},
	{regexp.MustCompile(`(?i)^(?:verify|assert|check)\s+(.+?)\s+(?:is\s+visible|appears?|is\s+shown)`), domain.ActionAssertVisible},
	{regexp.MustCompile(`(?i)^(?:確認|驗證|確保|檢查)\s*(.+?)\s*(?:可見|存在|出現|顯示|呈現)`), domain.ActionAssertVisible},
	// broad assertion cues, kept last among asserts so the specific forms win
	{regexp.MustCompile(`(?i)^(?:confirm|verify|expect|ensure|check)\s+(?:that\s+)?(.+)`), domain.ActionAssertVisible},

	// wait
	{regexp.MustCompile(`(?i)^(?:wait|等待)\s*(\d+)`), domain.ActionWait},

	// screenshot
	{regexp.MustCompile(`(?i)^(?:screenshot|截圖|擷圖|截取畫面)\s*(.*)`), domain.ActionScreenshot},

	// scroll
	{regexp.MustCompile(`(?i)^(?:scroll|捲動|滾動|向下捲)\s*(.*)`), domain.ActionScroll},
}

// actionFillSearch is an internal pseudo-action resolved to a fill against the
// shared search-box selector list.
const actionFillSearch domain.Action = "fill_search"

// Broader verb-only cues for the second pass, when no explicit rule matched.
var (
	zhGotoVerbs   = regexp.MustCompile(`^(?:進入|開啟|前往|瀏覽|連到|連至|造訪|訪問|查看|檢視|打開)`)
	zhBrowseUsing = regexp.MustCompile(`(?:使用|利用|透過|以).*(?:開啟|瀏覽|檢視|查看|進入)`)
	zhClickVerbs  = regexp.MustCompile(`^(?:點選|點擊|按下|按|點|選按|勾選|展開|收合|切換)`)
	zhFillVerbs   = regexp.MustCompile(`^(?:輸入|填入|填寫|鍵入)`)
	zhAssertVerbs = regexp.MustCompile(`^(?:確認|驗證|確保|檢查)`)
)

var (
	stepPrefixRe  = regexp.MustCompile(`(?i)^(?:步驟|step)\s*\d*[.、:：]?\s*`)
	quotedValueRe = regexp.MustCompile(`[「『"'](.+?)[」』"']`)
	arrowVerbRe   = regexp.MustCompile(`^(點選|點擊|按下|按|點|選按|切換|展開|進入|前往|開啟|瀏覽|到)\s*`)
)

// resolveArrowChains treats → as a navigation-chain indicator inside a
// fragment, not a step separator: "點選主選單→全宗瀏覽" becomes "點選全宗瀏覽"
// (keep the verb, keep the final target). Works per comma-fragment.
func resolveArrowChains(text string) string {
	if !strings.Contains(text, "→") {
		return text
	}
	var out []string
	for _, fragment := range regexp.MustCompile(`[,，；;]`).Split(text, -1) {
		fragment = strings.TrimSpace(fragment)
		if !strings.Contains(fragment, "→") {
			out = append(out, fragment)
			continue
		}
		var parts []string
		for _, p := range strings.Split(fragment, "→") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) < 2 {
			out = append(out, strings.ReplaceAll(fragment, "→", ""))
			continue
		}
		first, last := parts[0], parts[len(parts)-1]
		if m := arrowVerbRe.FindStringSubmatch(first); m != nil {
			out = append(out, m[1]+last)
		} else {
			out = append(out, "點選"+last)
		}
	}
	return strings.Join(out, "，")
}

// trimQuotes strips one layer of surrounding CJK or ASCII quotes.
func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), "「」『』\"'")
}

// inferStep converts one atomic step text into a Step using the ordered rule
// table. Text that matches no rule is retained verbatim as a no-op note so
// authored intent is never silently dropped.
func inferStep(raw string) domain.Step {
	text := strings.TrimSpace(stepPrefixRe.ReplaceAllString(strings.TrimSpace(raw), ""))
	if text == "" {
		return domain.Step{Action: domain.ActionNote, Target: ""}
	}
	if strings.Contains(text, "→") {
		text = resolveArrowChains(text)
	}

	// First pass: the explicit rule table, top to bottom.
	for _, r := range stepRules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		groups := m[1:]
		switch r.action {
		case domain.ActionFill, domain.ActionSelect:
			if len(groups) >= 2 {
				return domain.Step{Action: r.action, Target: strings.TrimSpace(groups[1]), Value: trimQuotes(groups[0])}
			}
		case actionFillSearch:
			return domain.Step{Action: domain.ActionFill, Target: searchInputSelectors, Value: trimQuotes(groups[0])}
		case domain.ActionWait, domain.ActionScroll:
			return domain.Step{Action: r.action, Target: strings.TrimSpace(groups[0])}
		case domain.ActionScreenshot:
			return domain.Step{Action: r.action, Name: sanitizeName(groups[0])}
		case domain.ActionGoto:
			return domain.Step{Action: r.action, Target: trimQuotes(groups[0])}
		default:
			target := text
			if len(groups) > 0 && strings.TrimSpace(groups[0]) != "" {
				target = groups[0]
			}
			return domain.Step{Action: r.action, Target: trimQuotes(target)}
		}
	}

	// Second pass: broad verb detection for terse Chinese phrasing.
	if zhGotoVerbs.MatchString(text) || zhBrowseUsing.MatchString(text) {
		return domain.Step{Action: domain.ActionGoto, Target: "/"}
	}
	if zhClickVerbs.MatchString(text) {
		remainder := trimQuotes(zhClickVerbs.ReplaceAllString(text, ""))
		if remainder == "" {
			remainder = "body"
		}
		return domain.Step{Action: domain.ActionClick, Target: remainder}
	}
	if zhFillVerbs.MatchString(text) {
		remainder := strings.TrimSpace(zhFillVerbs.ReplaceAllString(text, ""))
		if qm := quotedValueRe.FindStringSubmatch(remainder); qm != nil {
			return domain.Step{Action: domain.ActionFill, Target: searchInputSelectors, Value: qm[1]}
		}
		return domain.Step{Action: domain.ActionFill, Target: "input[type=text]", Value: remainder}
	}
	if zhAssertVerbs.MatchString(text) {
		remainder := trimQuotes(zhAssertVerbs.ReplaceAllString(text, ""))
		if remainder == "" {
			remainder = "body"
		}
		if len([]rune(remainder)) > 60 {
			remainder = string([]rune(remainder)[:60])
		}
		return domain.Step{Action: domain.ActionAssertVisible, Target: remainder}
	}

	// Unclassifiable: keep the authored text as a no-op annotation.
	return domain.Step{Action: domain.ActionNote, Target: text}
}

var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// sanitizeName turns free text into a safe artifact name component.
func sanitizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) > 40 {
		s = string(runes[:40])
	}
	return strings.Trim(nonWordRe.ReplaceAllString(s, "_"), "_")
}
