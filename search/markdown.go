package search

import (
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// mdParser is shared by every extractMarkdownLinks call.
var mdParser = goldmark.New()

// describe converts an upstream HTML description to markdown and collects
// the links it contains. Conversion failures fall back to the raw text.
func describe(html, baseURL string) (string, []string) {
	html = strings.TrimSpace(html)
	if html == "" {
		return "", nil
	}
	md, err := htmltomarkdown.ConvertString(html, converter.WithDomain(baseURL))
	if err != nil {
		return html, nil
	}
	md = strings.TrimSpace(md)
	return md, extractMarkdownLinks(md, baseURL)
}

// extractMarkdownLinks parses markdown with goldmark and returns absolute
// http(s) link destinations in document order, without duplicates.
func extractMarkdownLinks(md, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	src := []byte(md)
	root := mdParser.Parser().Parse(text.NewReader(src))

	var out []string
	seen := map[string]struct{}{}
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var raw string
		switch l := n.(type) {
		case *ast.Link:
			raw = string(l.Destination)
		case *ast.AutoLink:
			raw = string(l.URL(src))
		default:
			return ast.WalkContinue, nil
		}
		if link, ok := absoluteLink(base, raw); ok {
			if _, dup := seen[link]; !dup {
				seen[link] = struct{}{}
				out = append(out, link)
			}
		}
		return ast.WalkContinue, nil
	})
	return out
}

// absoluteLink resolves href against base and drops the fragment. Only web
// links survive; anchors and mailto: do not.
func absoluteLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href[0] == '#' {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(ref)
	u.Fragment = ""
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}
