// Package sanitize renders user-submitted free text as safe HTML: bare URLs
// become hyperlinks and everything outside a small tag allowlist is stripped.
package sanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var urlRegex = regexp.MustCompile(`https?://[^\s]+`)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("a", "br")
	p.AllowAttrs("href", "target", "rel", "class").OnElements("a")
	p.AllowURLSchemes("http", "https")
	return p
}

// LinkifyAndSanitize converts bare http(s) URLs in text into anchor tags that
// open in a new tab, then strips any markup outside the allowlist
// (a, br; href, target, rel, class).
func LinkifyAndSanitize(text string) string {
	linkified := urlRegex.ReplaceAllStringFunc(text, func(url string) string {
		return `<a href="` + url + `" target="_blank" rel="noopener noreferrer" class="underline text-primary hover:text-primary/80">` + url + `</a>`
	})

	return policy.Sanitize(linkified)
}
