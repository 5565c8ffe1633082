// Chapter splitting: carves plain text or markdown into titled chapters
// using markdown-style headings or a caller-supplied pattern.
package main

import (
	"fmt"
	gohtml "html"
	"regexp"
	"strings"
)

var (
	titleTagRe   = regexp.MustCompile(`(?i)<title>([^<]+)</title>`)
	firstH1Re    = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	titleSplitRe = regexp.MustCompile(`\s*[-|\x{2013}\x{2014}]\s+`)
	mdHeadingRe  = regexp.MustCompile(`(?m)^#+\s+(.+)$`)
)

// chapterText is one split-out chapter awaiting assembly.
type chapterText struct {
	Title   string
	Content string
}

// extractTitle extracts a document title from <title> or the first <h1>.
func extractTitle(text string) string {
	if m := titleTagRe.FindStringSubmatch(text); m != nil {
		title := cleanTitle(gohtml.UnescapeString(strings.TrimSpace(m[1])))
		if title != "" && title != "Untitled" {
			return title
		}
	}

	if m := firstH1Re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(htmlTagRe.ReplaceAllString(m[1], ""))
	}

	return "Untitled"
}

// cleanTitle removes common site name suffixes like "Article - Site Name".
func cleanTitle(title string) string {
	parts := titleSplitRe.Split(title, -1)
	result := strings.TrimSpace(parts[0])
	if result == "" {
		return "Untitled"
	}
	return result
}

// splitByHeadings splits text on markdown-style headings (lines beginning
// with one or more '#'). The heading line becomes the chapter title; text
// before the first heading becomes an untitled leading chapter. Text with
// no headings at all comes back as a single untitled chapter.
func splitByHeadings(text string) []chapterText {
	locs := mdHeadingRe.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		content := strings.TrimSpace(text)
		if content == "" {
			return nil
		}
		return []chapterText{{Content: content}}
	}

	var chapters []chapterText
	if lead := strings.TrimSpace(text[:locs[0][0]]); lead != "" {
		chapters = append(chapters, chapterText{Content: lead})
	}
	for i, loc := range locs {
		title := strings.TrimSpace(text[loc[2]:loc[3]])
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		content := strings.TrimSpace(text[loc[1]:end])
		chapters = append(chapters, chapterText{Title: title, Content: content})
	}
	return chapters
}

// splitByPattern splits text into chapters wherever pattern matches at the
// start of a line. The matching line is kept as the chapter title (first
// capture group when the pattern has one, whole match otherwise).
func splitByPattern(text, pattern string) ([]chapterText, error) {
	re, err := regexp.Compile(`(?m)^` + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid split pattern: %w", err)
	}

	locs := re.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		content := strings.TrimSpace(text)
		if content == "" {
			return nil, nil
		}
		return []chapterText{{Content: content}}, nil
	}

	var chapters []chapterText
	if lead := strings.TrimSpace(text[:locs[0][0]]); lead != "" {
		chapters = append(chapters, chapterText{Content: lead})
	}
	for i, loc := range locs {
		title := text[loc[0]:loc[1]]
		if len(loc) >= 4 && loc[2] >= 0 {
			title = text[loc[2]:loc[3]]
		}
		title = strings.TrimSpace(title)
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		// Content starts after the matched line's end of line.
		start := loc[1]
		if nl := strings.IndexByte(text[start:end], '\n'); nl >= 0 {
			start += nl + 1
		} else {
			start = end
		}
		content := strings.TrimSpace(text[start:end])
		chapters = append(chapters, chapterText{Title: title, Content: content})
	}
	return chapters, nil
}

// numberUntitled fills in "Chapter N" titles for chapters that have none.
func numberUntitled(chapters []chapterText) {
	for i := range chapters {
		if chapters[i].Title == "" {
			chapters[i].Title = fmt.Sprintf("Chapter %d", i+1)
		}
	}
}
