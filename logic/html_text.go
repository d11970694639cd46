package logic

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"html"
	"strings"
)

var stripPolicy = bluemonday.StrictPolicy()

// plainTextFromHTML reduces an HTML fragment (v1 source labels, Mastodon
// content) to plain text. Total: garbage in, best-effort text out.
func plainTextFromHTML(htmlStr string) string {
	plain := stripPolicy.Sanitize(htmlStr)
	plain = html.UnescapeString(plain)
	return strings.TrimSpace(plain)
}

// extractLinks pulls the href of every anchor out of an HTML fragment, in
// document order, dropping duplicates and fragment-only hrefs.
func extractLinks(htmlStr string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}
	var res []string
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if href == "" || strings.HasPrefix(href, "#") || seen[href] {
			return
		}
		seen[href] = true
		res = append(res, href)
	})
	return res
}
