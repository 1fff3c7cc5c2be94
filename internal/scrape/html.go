package scrape

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page holds the readable parts extracted from an HTML document.
type Page struct {
	Title   string
	Content string
}

const (
	maxTitleLen = 200
	// Fragments shorter than this are navigation crumbs, button labels and
	// similar noise; skip them.
	minParagraphLen = 20
)

// Elements whose subtrees never contain readable article text.
var skippedElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Nav:    true,
	atom.Header: true,
	atom.Footer: true,
	atom.Aside:  true,
}

// parsePage extracts title and readable text from raw HTML.
func parsePage(body []byte) (*Page, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	prune(doc)

	root := findMainContent(doc)
	if root == nil {
		root = findElement(doc, atom.Body)
	}
	if root == nil {
		root = doc
	}

	content := collectParagraphs(root)
	if content == "" {
		content = normalizeLines(textOf(root))
	}

	return &Page{
		Title:   extractTitle(doc),
		Content: content,
	}, nil
}

// prune removes subtrees that never carry readable content.
func prune(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && skippedElements[c.DataAtom] {
			n.RemoveChild(c)
			continue
		}
		prune(c)
	}
}

// extractTitle tries <title>, <h1>, og:title and <meta name="title"> in order.
func extractTitle(doc *html.Node) string {
	if t := findElement(doc, atom.Title); t != nil {
		if s := strings.TrimSpace(textOf(t)); s != "" {
			return truncate(s, maxTitleLen)
		}
	}
	if h := findElement(doc, atom.H1); h != nil {
		if s := strings.TrimSpace(textOf(h)); s != "" {
			return truncate(s, maxTitleLen)
		}
	}
	if m := findMeta(doc, "property", "og:title"); m != "" {
		return truncate(m, maxTitleLen)
	}
	if m := findMeta(doc, "name", "title"); m != "" {
		return truncate(m, maxTitleLen)
	}
	return ""
}

// findMainContent looks for the usual main-content containers, most specific
// first: <main>, <article>, #content, #main, .content, .main-content,
// div[role=main].
func findMainContent(doc *html.Node) *html.Node {
	if n := findElement(doc, atom.Main); n != nil {
		return n
	}
	if n := findElement(doc, atom.Article); n != nil {
		return n
	}
	for _, id := range []string{"content", "main"} {
		if n := findByAttr(doc, "id", id); n != nil {
			return n
		}
	}
	for _, class := range []string{"content", "main-content"} {
		if n := findByClass(doc, class); n != nil {
			return n
		}
	}
	if n := findByAttr(doc, "role", "main"); n != nil {
		return n
	}
	return nil
}

// Paragraph-level elements whose full text is collected.
var paragraphElements = map[atom.Atom]bool{
	atom.P:  true,
	atom.H1: true,
	atom.H2: true,
	atom.H3: true,
	atom.H4: true,
	atom.H5: true,
	atom.H6: true,
	atom.Li: true,
}

// Container elements whose direct text (not nested elements) is collected,
// so text-only divs still contribute without duplicating nested paragraphs.
var containerElements = map[atom.Atom]bool{
	atom.Div:     true,
	atom.Section: true,
}

func collectParagraphs(root *html.Node) string {
	var paragraphs []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if paragraphElements[n.DataAtom] {
				if s := strings.TrimSpace(collapseSpace(textOf(n))); len(s) > minParagraphLen {
					paragraphs = append(paragraphs, s)
				}
				return
			}
			if containerElements[n.DataAtom] {
				if s := strings.TrimSpace(collapseSpace(directText(n))); len(s) > minParagraphLen {
					paragraphs = append(paragraphs, s)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(paragraphs, "\n\n")
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findByAttr(n *html.Node, key, val string) *html.Node {
	if n.Type == html.ElementNode && attrVal(n, key) == val {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByAttr(c, key, val); found != nil {
			return found
		}
	}
	return nil
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, f := range strings.Fields(attrVal(n, "class")) {
			if f == class {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func findMeta(n *html.Node, key, val string) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Meta && attrVal(n, key) == val {
		return strings.TrimSpace(attrVal(n, "content"))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s := findMeta(c, key, val); s != "" {
			return s
		}
	}
	return ""
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textOf returns the concatenated text of the whole subtree.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// directText returns only the text node children of n.
func directText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// truncate cuts on rune boundaries so umlauts near the limit stay intact.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
