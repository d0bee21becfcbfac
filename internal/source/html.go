package source

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/hanrank/pkg/hanrank/normalize"
)

// DefaultArticleBase resolves relative article links on ranking pages.
const DefaultArticleBase = "https://n.news.naver.com"

// ParseRankingHTML extracts headlines from a press ranking page: every
// anchor whose href contains "/article/", with the rank badge
// (.list_ranking_num or a leading "3." number) and any trailing view count
// (조회수...) removed.
// At most max items are returned; max <= 0 returns all of them.
func ParseRankingHTML(r io.Reader, base string, max int) ([]Item, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse ranking page: %w", err)
	}
	if base == "" {
		base = DefaultArticleBase
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var items []Item
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if max > 0 && len(items) >= max {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			if strings.Contains(href, "/article/") {
				title := cleanTitle(text(n))
				if title != "" {
					items = append(items, Item{
						URL:   resolve(baseURL, href),
						Title: title,
						Rank:  len(items) + 1,
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return items, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// text concatenates the text under n, skipping rank badges.
func text(n *html.Node) string {
	var buf strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "list_ranking_num") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return buf.String()
}

func cleanTitle(s string) string {
	if i := strings.Index(s, "조회수"); i >= 0 {
		s = s[:i]
	}
	return normalize.StripRankPrefix(strings.Join(strings.Fields(s), " "))
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
