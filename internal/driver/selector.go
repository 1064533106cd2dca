package driver

import (
	"regexp"
	"strings"
)

// Plain HTML tag names are CSS selectors, not free text.
var htmlTags = map[string]bool{
	"body": true, "html": true, "head": true, "main": true, "header": true,
	"footer": true, "nav": true, "section": true, "article": true, "div": true,
	"span": true, "a": true, "p": true, "ul": true, "li": true, "form": true,
	"input": true, "button": true, "select": true, "textarea": true,
	"table": true, "tr": true, "td": true, "th": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "img": true,
}

var cssCharsRe = regexp.MustCompile(`[#\[\].:>+~()=*]`)

// ResolveTarget classifies an authored target into a query and whether it is
// free text to be matched by content rather than a structural selector.
// Explicit prefixes (css=, text=, xpath=, //, #, .) are honored verbatim;
// everything without CSS-ish characters becomes a text locator.
func ResolveTarget(target string) (query string, isText bool) {
	target = strings.TrimSpace(target)
	switch {
	case strings.HasPrefix(target, "text="):
		return strings.TrimPrefix(target, "text="), true
	case strings.HasPrefix(target, "css="):
		return strings.TrimPrefix(target, "css="), false
	case strings.HasPrefix(target, "xpath="):
		return strings.TrimPrefix(target, "xpath="), false
	case strings.HasPrefix(target, "//"),
		strings.HasPrefix(target, "#"),
		strings.HasPrefix(target, "."),
		strings.HasPrefix(target, "["):
		return target, false
	}
	if htmlTags[strings.ToLower(target)] {
		return target, false
	}
	if cssCharsRe.MatchString(target) {
		return target, false
	}
	return target, true
}

// TextXPath builds an XPath that matches any element whose normalized text
// contains the given literal. Used for free-text locators.
func TextXPath(text string) string {
	// XPath has no escape for quotes inside literals; concat() handles both.
	if !strings.Contains(text, `"`) {
		return `//*[contains(normalize-space(.), "` + text + `")][not(.//*[contains(normalize-space(.), "` + text + `")])]`
	}
	parts := strings.Split(text, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		quoted = append(quoted, `"`+p+`"`)
	}
	concat := "concat(" + strings.Join(quoted, ", ") + ")"
	return `//*[contains(normalize-space(.), ` + concat + `)][not(.//*[contains(normalize-space(.), ` + concat + `)])]`
}
