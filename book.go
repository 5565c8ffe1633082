// Book assembly: chapters, bilingual text, glossaries and covers combined
// into an epub3 via go-epub. Sections are buffered on the Book and emitted
// in reading order at Write time so a glossary added last still lands first.
package main

import (
	"encoding/base64"
	"fmt"
	gohtml "html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	epub "github.com/go-shiori/go-epub"
	"github.com/yuin/goldmark"

	"github.com/quangnd159/bookmaker/cover"
)

// bookCSS is the typography stylesheet shared by every section. Tuned for
// modern e-readers: line-height on body only, no inline styles.
const bookCSS = `body {
    font-family: Georgia, serif;
    line-height: 1.7;
    margin: 5%;
    text-align: justify;
}
h1, h2, h3, h4, h5, h6 {
    font-family: Georgia, serif;
    text-align: left;
    font-weight: normal;
    margin-top: 2em;
    margin-bottom: 1em;
}
h1 {
    font-size: 1.4em;
    border-bottom: 0.1em solid #333;
    padding-bottom: 0.3em;
}
h2 { font-size: 1.2em; }
h3 { font-size: 1.1em; }
p {
    margin: 0;
    text-indent: 0;
    margin-bottom: 0.5em;
}
.original-text {
    font-size: 1.05em;
    margin-bottom: 0.3em;
    color: #000;
}
.translation {
    font-size: 1em;
    font-style: italic;
    margin-bottom: 1.8em;
    color: #333;
}
.glossary-term { margin: 1.5em 0; }
.term-original {
    font-weight: bold;
    font-size: 1.1em;
    color: #000;
}
.term-arrow { color: #666; }
.term-translation {
    color: #666;
    font-weight: bold;
}
.term-explanation {
    margin-top: 0.3em;
    color: #666;
}`

// errCoverUnavailable reports that the cover engine cannot run at all.
// Callers treat it as "skip the cover", never as a failed book.
var errCoverUnavailable = fmt.Errorf("cover generation unavailable")

// TextPair is one original/translation paragraph pair in a bilingual chapter.
type TextPair struct {
	Original    string
	Translation string
}

// GlossaryTerm is one glossary entry.
type GlossaryTerm struct {
	Term        string
	Translation string
	Explanation string
}

// section is a buffered chapter body awaiting Write.
type section struct {
	title    string
	filename string
	body     string
}

// Book accumulates chapters and metadata, then assembles the epub on Write.
type Book struct {
	title       string
	authors     []string
	language    string
	description string

	customCSS string

	chapters       []section
	glossary       *section
	chapterCounter int

	coverData []byte // encoded cover image, nil when no cover
	coverExt  string // ".jpg" or ".png"
	coverWarn string // non-fatal cover note surfaced at Write
}

// NewBook starts an empty book. Author may be empty; language defaults to
// English when blank.
func NewBook(title, author, language string) *Book {
	if language == "" {
		language = "en"
	}
	b := &Book{
		title:          title,
		language:       language,
		chapterCounter: 1,
	}
	if author != "" {
		b.authors = []string{author}
	}
	return b
}

// AddAuthor appends another author to the metadata.
func (b *Book) AddAuthor(author string) {
	b.authors = append(b.authors, author)
}

// SetDescription sets the book description metadata.
func (b *Book) SetDescription(desc string) {
	b.description = desc
}

// SetCSS replaces the default stylesheet.
func (b *Book) SetCSS(css string) {
	b.customCSS = css
}

func (b *Book) nextFilename() string {
	name := fmt.Sprintf("chapter_%d.xhtml", b.chapterCounter)
	b.chapterCounter++
	return name
}

// AddChapter adds a plain-text chapter. Blank lines separate paragraphs.
func (b *Book) AddChapter(title, text string) {
	var body strings.Builder
	body.WriteString("<h2>" + gohtml.EscapeString(title) + "</h2>\n")
	for _, para := range splitParagraphs(text) {
		body.WriteString("<p>" + gohtml.EscapeString(para) + "</p>\n")
	}
	b.chapters = append(b.chapters, section{title: title, filename: b.nextFilename(), body: body.String()})
}

// AddChapterHTML adds a chapter whose content is already HTML. The content
// is sanitized to XHTML before it enters the book.
func (b *Book) AddChapterHTML(title, htmlContent string) {
	body := sanitizeForXHTML(htmlContent)
	b.chapters = append(b.chapters, section{title: title, filename: b.nextFilename(), body: body})
}

// AddMarkdownChapter renders markdown to HTML and adds it as a chapter.
func (b *Book) AddMarkdownChapter(title, markdown string) error {
	var buf strings.Builder
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return fmt.Errorf("rendering markdown for %q: %w", title, err)
	}
	body := "<h2>" + gohtml.EscapeString(title) + "</h2>\n" + buf.String()
	b.AddChapterHTML(title, body)
	return nil
}

// AddBilingualChapter adds a chapter of alternating original/translation
// paragraphs styled by the bilingual stylesheet classes.
func (b *Book) AddBilingualChapter(title string, pairs []TextPair) {
	var body strings.Builder
	body.WriteString("<h2>" + gohtml.EscapeString(title) + "</h2>\n")
	for _, p := range pairs {
		body.WriteString(`<p class="original-text">` + gohtml.EscapeString(p.Original) + "</p>\n")
		body.WriteString(`<p class="translation">` + gohtml.EscapeString(p.Translation) + "</p>\n")
	}
	b.chapters = append(b.chapters, section{title: title, filename: b.nextFilename(), body: body.String()})
}

// AddGlossary adds a glossary chapter. It is placed before all other
// chapters in the spine regardless of when it is added; adding a second
// glossary replaces the first.
func (b *Book) AddGlossary(terms []GlossaryTerm, title string) {
	if title == "" {
		title = "Glossary"
	}
	var body strings.Builder
	body.WriteString("<h1>" + gohtml.EscapeString(title) + "</h1>\n")
	for _, t := range terms {
		body.WriteString(`<div class="glossary-term">` + "\n")
		body.WriteString(`<p class="term-original">` + gohtml.EscapeString(t.Term) + "</p>\n")
		body.WriteString(`<p><span class="term-arrow">&#8594;</span> <span class="term-translation">` +
			gohtml.EscapeString(t.Translation) + "</span></p>\n")
		body.WriteString(`<p class="term-explanation">` + gohtml.EscapeString(t.Explanation) + "</p>\n")
		body.WriteString("</div>\n")
	}
	b.glossary = &section{title: title, filename: "glossary.xhtml", body: body.String()}
}

// SetGeneratedCover renders a cover for the book and embeds it as JPEG.
// Returns errCoverUnavailable when the engine cannot run; a degraded font
// is noted but not an error.
func (b *Book) SetGeneratedCover(req cover.Request) error {
	if !cover.Available() {
		return errCoverUnavailable
	}
	res, err := cover.Render(req)
	if err != nil {
		return fmt.Errorf("rendering cover: %w", err)
	}
	if res.UsedFallbackFont {
		b.coverWarn = "no font in the fallback chain loaded; cover uses the built-in face"
	}
	data, err := res.EncodeJPEG(cover.DefaultJPEGQuality)
	if err != nil {
		return fmt.Errorf("encoding cover: %w", err)
	}
	b.coverData = data
	b.coverExt = ".jpg"
	return nil
}

// SetCoverFile embeds a pre-made cover image from disk, bypassing
// generation. Read errors are fatal for this book only.
func (b *Book) SetCoverFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading cover image: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg":
		b.coverExt = ".jpg"
	case ".png":
		b.coverExt = ".png"
	default:
		return fmt.Errorf("unsupported cover image type %q (want .jpg or .png)", ext)
	}
	b.coverData = data
	return nil
}

func (b *Book) coverMIME() string {
	if b.coverExt == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}

var identifierRe = regexp.MustCompile(`[^a-z0-9]+`)

// bookIdentifier derives a stable identifier from the title.
func bookIdentifier(title string) string {
	id := identifierRe.ReplaceAllString(strings.ToLower(title), "-")
	id = strings.Trim(id, "-")
	if id == "" {
		id = "book"
	}
	return id + "-001"
}

// Write assembles and writes the epub. The spine order is glossary first
// (when present), then chapters in the order they were added.
func (b *Book) Write(path string) error {
	if len(b.chapters) == 0 && b.glossary == nil {
		return fmt.Errorf("book has no chapters")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	e, err := epub.NewEpub(b.title)
	if err != nil {
		return fmt.Errorf("creating epub: %w", err)
	}
	e.SetLang(b.language)
	e.SetIdentifier(bookIdentifier(b.title))
	if len(b.authors) > 0 {
		e.SetAuthor(strings.Join(b.authors, " & "))
	}
	if b.description != "" {
		e.SetDescription(b.description)
	}

	css := bookCSS
	if b.customCSS != "" {
		css = b.customCSS
	}
	cssDataURI := "data:text/css;base64," + base64.StdEncoding.EncodeToString([]byte(css))
	cssPath, err := e.AddCSS(cssDataURI, "style.css")
	if err != nil {
		// CSS is optional, continue without it
		fmt.Fprintf(logOut, "Warning: could not add CSS: %v\n", err)
		cssPath = ""
	}

	if b.coverData != nil {
		if b.coverWarn != "" {
			fmt.Fprintf(logOut, "Warning: %s\n", b.coverWarn)
		}
		dataURI := "data:" + b.coverMIME() + ";base64," + base64.StdEncoding.EncodeToString(b.coverData)
		imgPath, err := e.AddImage(dataURI, "cover"+b.coverExt)
		if err != nil {
			return fmt.Errorf("embedding cover: %w", err)
		}
		if err := e.SetCover(imgPath, ""); err != nil {
			return fmt.Errorf("setting cover: %w", err)
		}
	}

	sections := b.chapters
	if b.glossary != nil {
		sections = append([]section{*b.glossary}, sections...)
	}
	for i, s := range sections {
		title := s.title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		body, _ := extractImages(e, s.body, i+1)
		if _, err := e.AddSection(body, title, s.filename, cssPath); err != nil {
			fmt.Fprintf(logOut, "Warning: could not add section %q: %v\n", title, err)
		}
	}

	if err := e.Write(path); err != nil {
		return fmt.Errorf("writing epub: %w", err)
	}
	return nil
}

// splitParagraphs splits plain text on blank lines, trimming each paragraph
// and dropping empty ones.
func splitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// imgDataURIRe matches <img src="data:MIME;base64,DATA"> for extracting
// embedded images into epub resources.
var imgDataURIRe = regexp.MustCompile(`(<img\b[^>]*?\bsrc\s*=\s*")data:([^;]+);base64,([^"]*)(")`)

// extractImages finds base64 data URI images in a section body, registers
// them with the epub, and rewrites src attributes to internal paths.
func extractImages(e *epub.Epub, body string, chapterIdx int) (string, error) {
	imgIdx := 0
	var lastErr error

	result := imgDataURIRe.ReplaceAllStringFunc(body, func(match string) string {
		parts := imgDataURIRe.FindStringSubmatch(match)
		if parts == nil {
			return match
		}
		prefix := parts[1]
		mime := parts[2]
		b64data := parts[3]
		suffix := parts[4]

		ext := ".jpg"
		switch {
		case strings.Contains(mime, "png"):
			ext = ".png"
		case strings.Contains(mime, "gif"):
			ext = ".gif"
		case strings.Contains(mime, "svg"):
			ext = ".svg"
		case strings.Contains(mime, "webp"):
			ext = ".webp"
		}

		filename := fmt.Sprintf("ch%03d_img%03d%s", chapterIdx, imgIdx, ext)
		imgIdx++

		if _, err := base64.StdEncoding.DecodeString(b64data); err != nil {
			if _, err = base64.RawStdEncoding.DecodeString(b64data); err != nil {
				fmt.Fprintf(logOut, "Warning: invalid base64 for %s: %v\n", filename, err)
				return match
			}
		}

		dataURI := "data:" + mime + ";base64," + b64data
		internalPath, err := e.AddImage(dataURI, filename)
		if err != nil {
			fmt.Fprintf(logOut, "Warning: failed to add image %s: %v\n", filename, err)
			lastErr = err
			return match
		}

		return prefix + internalPath + suffix
	})

	return result, lastErr
}
