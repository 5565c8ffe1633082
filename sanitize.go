// HTML to XHTML sanitization for EPUB 3 compliance.
// Chapter bodies arrive from the web, from markdown rendering, or straight
// from callers; all of them pass through here before entering the book.
package main

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// stripInvalidXMLChars removes characters not allowed in XML 1.0 content.
// Valid XML chars: #x9 | #xA | #xD | [#x20-#xD7FF] | [#xE000-#xFFFD] | [#x10000-#x10FFFF]
func stripInvalidXMLChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0x9 || r == 0xA || r == 0xD ||
			(r >= 0x20 && r <= 0xD7FF) ||
			(r >= 0xE000 && r <= 0xFFFD) ||
			(r >= 0x10000 && r <= 0x10FFFF) {
			return r
		}
		return -1 // strip
	}, s)
}

// sanitizeID cleans an id attribute value to be valid in XHTML
// (must not contain whitespace, must not be empty).
func sanitizeID(val string) string {
	val = strings.TrimSpace(val)
	if val == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range val {
		if unicode.IsSpace(r) {
			b.WriteByte('-')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isAllowedAttr defines which attributes are safe for XHTML epub content.
func isAllowedAttr(a html.Attribute) bool {
	switch a.Key {
	case "id", "class", "style", "title", "lang", "dir",
		"href", "src", "alt", "width", "height",
		"colspan", "rowspan", "scope", "headers",
		"cite", "datetime", "value", "type",
		"rel", "media", "start", "reversed":
		return true
	}
	// epub:type is allowed for semantic inflection
	return a.Key == "epub:type"
}

// isAllowedElement returns true if the tag is allowed in EPUB 3 XHTML.
func isAllowedElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return true
	}
	switch n.Data {
	case "div", "p", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "dl", "dt", "dd",
		"address", "hr", "pre", "blockquote", "cite", "em", "strong", "small", "s", "dfn",
		"abbr", "data", "time", "code", "var", "samp", "kbd", "sub", "sup", "i", "b", "u",
		"mark", "ruby", "rt", "rp", "bdi", "bdo", "span", "br", "wbr", "ins", "del", "img",
		"table", "caption", "colgroup", "col", "tbody", "thead", "tfoot", "tr", "td", "th",
		"section", "article", "aside", "header", "footer", "main", "figure", "figcaption", "nav",
		"a":
		return true
	}
	return false
}

// voidElements are HTML elements that must be self-closing in XHTML.
var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Wbr: true,
}

// sanitizeForXHTML converts HTML to valid XHTML for epub embedding.
// Strips disallowed tags and attributes, self-closes void elements,
// deduplicates ids, and removes fragment links pointing nowhere.
func sanitizeForXHTML(htmlStr string) string {
	htmlStr = stripInvalidXMLChars(htmlStr)

	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr // fallback: return as-is
	}

	// Collect all ids so broken fragment links can be detected.
	ids := map[string]bool{}
	var collectIDs func(*html.Node)
	collectIDs = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "id" {
					if cleaned := sanitizeID(a.Val); cleaned != "" {
						ids[cleaned] = true
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectIDs(c)
		}
	}
	collectIDs(doc)

	usedIDs := map[string]bool{}

	var clean func(*html.Node) bool
	clean = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if !isAllowedElement(n) && n.Data != "html" && n.Data != "head" && n.Data != "body" {
				return false
			}

			// Images must have a local src; EPUB disallows remote resources.
			if n.Data == "img" {
				src := ""
				for _, a := range n.Attr {
					if a.Key == "src" {
						src = strings.TrimSpace(a.Val)
					}
				}
				if src == "" || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
					return false
				}
			}

			var filtered []html.Attribute
			for _, a := range n.Attr {
				if !isAllowedAttr(a) {
					continue
				}
				if a.Key == "href" && strings.HasPrefix(a.Val, "#") {
					frag := a.Val[1:]
					if frag != "" && !ids[frag] {
						continue // drop href to non-existent id
					}
				}
				if a.Key == "id" {
					cleaned := sanitizeID(a.Val)
					if cleaned == "" {
						continue
					}
					if usedIDs[cleaned] {
						for i := 2; ; i++ {
							candidate := fmt.Sprintf("%s-%d", cleaned, i)
							if !usedIDs[candidate] {
								cleaned = candidate
								break
							}
						}
					}
					usedIDs[cleaned] = true
					a.Val = cleaned
				}
				filtered = append(filtered, a)
			}
			n.Attr = filtered
		}

		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if !clean(c) {
				n.RemoveChild(c)
			}
			c = next
		}
		return true
	}
	clean(doc)

	var buf bytes.Buffer
	renderXHTML(&buf, doc)
	result := buf.String()

	// html.Parse wraps in <html><head><body>; extract just the body content.
	if idx := strings.Index(result, "<body>"); idx >= 0 {
		result = result[idx+len("<body>"):]
		if end := strings.LastIndex(result, "</body>"); end >= 0 {
			result = result[:end]
		}
	}

	return result
}

// renderXHTML renders an html.Node tree as XHTML (self-closing void elements).
func renderXHTML(buf *bytes.Buffer, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(html.EscapeString(n.Data))
	case html.ElementNode:
		buf.WriteByte('<')
		buf.WriteString(n.Data)
		for _, a := range n.Attr {
			buf.WriteByte(' ')
			buf.WriteString(a.Key)
			buf.WriteString(`="`)
			buf.WriteString(html.EscapeString(a.Val))
			buf.WriteByte('"')
		}
		if voidElements[n.DataAtom] && n.FirstChild == nil {
			buf.WriteString("/>")
			return
		}
		buf.WriteByte('>')
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderXHTML(buf, c)
		}
		buf.WriteString("</")
		buf.WriteString(n.Data)
		buf.WriteByte('>')
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderXHTML(buf, c)
		}
	case html.CommentNode:
		// skip comments
	case html.RawNode:
		buf.WriteString(n.Data)
	}
}
