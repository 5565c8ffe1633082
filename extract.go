// Article extraction: turns fetched pages into chapter content in one of
// three modes. "article" keeps the readability HTML, "paragraphs" reduces
// it to plain text, "markdown" converts it to CommonMark.
package main

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	readability "codeberg.org/readeck/go-readability"
	"golang.org/x/net/html"
)

// Extraction modes accepted by the -extract flag.
const (
	extractModeArticle    = "article"
	extractModeParagraphs = "paragraphs"
	extractModeMarkdown   = "markdown"
)

// articleMeta carries the metadata readability recovers alongside content.
type articleMeta struct {
	Title         string
	Byline        string
	SiteName      string
	PublishedTime *time.Time
}

// extractArticle runs go-readability on the HTML and returns the article
// HTML content plus metadata.
func extractArticle(htmlBytes []byte, pageURL *url.URL) (string, articleMeta, error) {
	article, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return "", articleMeta{}, fmt.Errorf("readability extraction failed: %w", err)
	}
	if article.Content == "" {
		return "", articleMeta{}, fmt.Errorf("readability extracted no content from %s", pageURL)
	}

	meta := articleMeta{
		Title:         article.Title,
		Byline:        article.Byline,
		SiteName:      article.SiteName,
		PublishedTime: article.PublishedTime,
	}
	return article.Content, meta, nil
}

// extractParagraphs reduces article HTML to plain text: the text content of
// every <p> element, blank-line separated. Script and style subtrees are
// skipped even if they nest inside a paragraph.
func extractParagraphs(htmlStr string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", fmt.Errorf("parsing article HTML: %w", err)
	}

	var paras []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			text := strings.TrimSpace(collectText(n))
			if text != "" {
				paras = append(paras, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(paras) == 0 {
		return "", fmt.Errorf("no paragraphs found in article")
	}
	return strings.Join(paras, "\n\n"), nil
}

// collectText concatenates text nodes under n, normalizing internal
// whitespace to single spaces.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

var (
	mdConverter     *converter.Converter
	mdConverterOnce sync.Once
)

// getMarkdownConverter returns a shared converter that replaces base64 data
// URI images with alt-text placeholders instead of embedding the raw URI.
func getMarkdownConverter() *converter.Converter {
	mdConverterOnce.Do(func() {
		mdConverter = converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		)
		// Override img rendering: strip data URIs, keep plain URLs as-is.
		// PriorityEarly (100) runs before the commonmark plugin (PriorityStandard 500).
		mdConverter.Register.RendererFor("img", converter.TagTypeInline,
			func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
				src := dom.GetAttributeOr(n, "src", "")
				if !strings.HasPrefix(src, "data:") {
					return converter.RenderTryNext
				}
				alt := strings.TrimSpace(dom.GetAttributeOr(n, "alt", ""))
				if alt != "" {
					w.WriteString("[Image: " + alt + "]")
				}
				return converter.RenderSuccess
			},
			converter.PriorityEarly,
		)
	})
	return mdConverter
}

// extractMarkdown converts article HTML to CommonMark Markdown. Base64 data
// URI images are replaced by alt-text placeholders.
func extractMarkdown(htmlStr string) (string, error) {
	md, err := getMarkdownConverter().ConvertString(htmlStr)
	if err != nil {
		return "", fmt.Errorf("markdown conversion: %w", err)
	}
	return strings.TrimSpace(md), nil
}
