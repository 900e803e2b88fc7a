package utils

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockElements end the current line when they open and when they close.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tr": true, "ul": true, "title": true,
}

// ReadDocumentText converts an HTML document into line-structured plain
// text: one line per block element, list items prefixed with "- ", table
// cells separated by " | ". Script and style content is dropped.
func ReadDocumentText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template, head > meta, head > link").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	for _, n := range root.Nodes {
		writeNode(&b, n)
	}
	return tidyLines(b.String()), nil
}

func writeNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "br":
			b.WriteByte('\n')
			return
		case "td", "th":
			if n.PrevSibling != nil {
				b.WriteString(" | ")
			}
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte('\n')
		if n.Data == "li" {
			b.WriteString("- ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(b, c)
	}
	if block {
		b.WriteByte('\n')
	}
}

// tidyLines collapses runs of whitespace within each line and drops blank
// lines and orphaned list markers.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		line = strings.TrimPrefix(strings.TrimSuffix(line, " |"), "| ")
		if line == "" || line == "-" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// IsHTMLFile reports whether the file should go through ReadDocumentText.
func IsHTMLFile(filename string) bool {
	switch GetFileExtension(filename) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}
