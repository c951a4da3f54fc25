package head

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/eringen/clinicseo/seo"
)

// Apply upserts the tags for m into the head of doc. Existing tags matching a
// managed selector are taken over, duplicates are removed, tags with an empty
// value are dropped, and managed tags left over from a previous page that m
// does not need are removed.
func Apply(doc *goquery.Document, m seo.Metadata, opts Options) {
	headSel := doc.Find("head").First()
	if headSel.Length() == 0 {
		doc.Find("html").First().PrependHtml("<head></head>")
		headSel = doc.Find("head").First()
	}

	touched := make(map[*html.Node]struct{})
	for _, t := range catalog(m, opts) {
		matches := headSel.Find(t.selector())
		if t.value == "" {
			matches.Remove()
			continue
		}
		var el *goquery.Selection
		if matches.Length() > 0 {
			el = matches.First()
			matches.Slice(1, matches.Length()).Remove()
		} else {
			headSel.AppendHtml(t.markup())
			el = headSel.Children().Last()
		}
		if t.attr == "" {
			setRawText(el.Get(0), t.value)
		} else {
			el.SetAttr(t.attr, t.value)
		}
		el.SetAttr(ManagedAttr, "")
		touched[el.Get(0)] = struct{}{}
	}

	headSel.Find("[" + ManagedAttr + "]").Each(func(_ int, s *goquery.Selection) {
		if _, ok := touched[s.Get(0)]; !ok {
			s.Remove()
		}
	})

	doc.Find("html").First().SetAttr("lang", htmlLang(m, opts))
}

// setRawText replaces the children of n with a single text node. Script
// bodies are raw text and must not go through goquery's escaping SetText.
func setRawText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Rewrite parses the HTML document in r, applies m and writes the result to w.
func Rewrite(r io.Reader, w io.Writer, m seo.Metadata, opts Options) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	Apply(doc, m, opts)
	return html.Render(w, doc.Get(0))
}
