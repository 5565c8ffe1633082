// bookmaker: assemble epubs from text files, markdown and web articles,
// with generated covers.
//
// Typical use:
//
//	bookmaker -o book.epub -title "My Book" chapters.md
//	bookmaker -o book.epub https://example.com/article another.txt
//	bookmaker -cover-only -o cover.jpg -title "My Book" -author "Me"
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/quangnd159/bookmaker/cover"
)

// logOut is the writer for informational/progress output.
// In silent mode it is set to io.Discard so only errors reach the user.
var logOut io.Writer = os.Stderr

// cliConfig holds parsed command-line options.
type cliConfig struct {
	output      string
	title       string
	author      string
	language    string
	subtitle    string
	description string

	coverMode   string // "auto", "none", or an image path
	coverSeed   int64
	seedSet     bool
	coverWidth  int
	coverHeight int
	fontPaths   []string
	coverOnly   bool

	extractMode  string
	splitPattern string
	timeout      time.Duration
	userAgent    string
	args         []string
}

// coverRequest builds the cover render request from CLI options.
func (cfg *cliConfig) coverRequest(title string) cover.Request {
	req := cover.Request{
		Title:     title,
		Author:    cfg.author,
		Subtitle:  cfg.subtitle,
		Width:     cfg.coverWidth,
		Height:    cfg.coverHeight,
		FontPaths: cfg.fontPaths,
	}
	if cfg.seedSet {
		seed := cfg.coverSeed
		req.Seed = &seed
	}
	return req
}

// fetchedArticle is one processed web article ready for the book.
type fetchedArticle struct {
	title   string
	content string // HTML, plain text or markdown depending on extract mode
	mode    string
	ok      bool
}

// processArticleURL fetches a URL and extracts it per the configured mode.
func processArticleURL(rawURL string, cfg cliConfig) (fetchedArticle, error) {
	htmlBytes, pageURL, err := fetchHTML(rawURL, cfg.timeout, cfg.userAgent)
	if err != nil {
		return fetchedArticle{}, err
	}

	content, meta, err := extractArticle(htmlBytes, pageURL)
	if err != nil {
		return fetchedArticle{}, err
	}
	title := cleanTitle(meta.Title)
	fmt.Fprintf(logOut, "Title: %s\n", title)

	switch cfg.extractMode {
	case extractModeParagraphs:
		text, err := extractParagraphs(content)
		if err != nil {
			return fetchedArticle{}, err
		}
		return fetchedArticle{title: title, content: text, mode: extractModeParagraphs, ok: true}, nil
	case extractModeMarkdown:
		md, err := extractMarkdown(content)
		if err != nil {
			return fetchedArticle{}, err
		}
		return fetchedArticle{title: title, content: md, mode: extractModeMarkdown, ok: true}, nil
	default:
		return fetchedArticle{title: title, content: content, mode: extractModeArticle, ok: true}, nil
	}
}

// addArticle adds a processed article to the book in its extraction mode.
func addArticle(b *Book, a fetchedArticle) error {
	switch a.mode {
	case extractModeParagraphs:
		b.AddChapter(a.title, a.content)
	case extractModeMarkdown:
		return b.AddMarkdownChapter(a.title, a.content)
	default:
		b.AddChapterHTML(a.title, a.content)
	}
	return nil
}

// addTextFile reads a .txt or .md file and adds its chapters to the book.
func addTextFile(b *Book, path string, cfg cliConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	text := string(data)
	isMarkdown := strings.HasSuffix(strings.ToLower(path), ".md")

	var chapters []chapterText
	if cfg.splitPattern != "" {
		chapters, err = splitByPattern(text, cfg.splitPattern)
		if err != nil {
			return err
		}
	} else {
		chapters = splitByHeadings(text)
	}
	if len(chapters) == 0 {
		return fmt.Errorf("%s contains no text", path)
	}

	// Untitled single chapters take the file's name.
	if len(chapters) == 1 && chapters[0].Title == "" {
		chapters[0].Title = baseName(path)
	}
	numberUntitled(chapters)

	for _, ch := range chapters {
		if isMarkdown {
			if err := b.AddMarkdownChapter(ch.Title, ch.Content); err != nil {
				return err
			}
		} else {
			b.AddChapter(ch.Title, ch.Content)
		}
	}
	return nil
}

// baseName strips the directory and extension from a path.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func isTextInput(arg string) bool {
	lower := strings.ToLower(arg)
	return strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".md")
}

// deriveTitle picks the book title: -title flag, first file's name, first
// article's title, then the output filename.
func deriveTitle(cfg cliConfig, articles map[string]fetchedArticle) string {
	if cfg.title != "" {
		return cfg.title
	}
	for _, arg := range cfg.args {
		if isTextInput(arg) {
			return baseName(arg)
		}
		if a, ok := articles[arg]; ok && a.ok && a.title != "" {
			return a.title
		}
	}
	if cfg.output != "" {
		return baseName(cfg.output)
	}
	return "Untitled"
}

// run executes the main application logic, returning any error.
func run(cfg cliConfig) error {
	if cfg.output == "" {
		return fmt.Errorf("-o is required")
	}

	if cfg.coverOnly {
		return writeCoverOnly(cfg)
	}

	if len(cfg.args) < 1 {
		return fmt.Errorf("at least one input file or URL is required")
	}

	// Fetch all URL inputs up front, bounded to avoid hammering hosts.
	var urls []string
	for _, arg := range cfg.args {
		if !isTextInput(arg) {
			urls = append(urls, arg)
		}
	}
	articles := make(map[string]fetchedArticle, len(urls))
	if len(urls) > 0 {
		var mu sync.Mutex
		var wg sync.WaitGroup
		sem := make(chan struct{}, 5)
		for i, rawURL := range urls {
			wg.Add(1)
			go func(i int, rawURL string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				fmt.Fprintf(logOut, "[%d/%d] %s\n", i+1, len(urls), rawURL)
				a, err := processArticleURL(rawURL, cfg)
				if err != nil {
					fmt.Fprintf(logOut, "  Error: %v (skipping)\n", err)
					return
				}
				mu.Lock()
				articles[rawURL] = a
				mu.Unlock()
			}(i, rawURL)
		}
		wg.Wait()
	}

	bookTitle := deriveTitle(cfg, articles)
	b := NewBook(bookTitle, cfg.author, cfg.language)
	if cfg.description != "" {
		b.SetDescription(cfg.description)
	}

	// Add chapters in argument order.
	for _, arg := range cfg.args {
		if isTextInput(arg) {
			if err := addTextFile(b, arg, cfg); err != nil {
				return err
			}
			continue
		}
		a, ok := articles[arg]
		if !ok {
			continue // fetch failed, already reported
		}
		if err := addArticle(b, a); err != nil {
			fmt.Fprintf(logOut, "Warning: %v (skipping %s)\n", err, arg)
		}
	}

	switch cfg.coverMode {
	case "none":
		// no cover
	case "auto":
		if err := b.SetGeneratedCover(cfg.coverRequest(bookTitle)); err != nil {
			if err == errCoverUnavailable {
				fmt.Fprintf(logOut, "Warning: cover generation unavailable, building without cover\n")
			} else {
				return err
			}
		}
	default:
		if err := b.SetCoverFile(cfg.coverMode); err != nil {
			return err
		}
	}

	fmt.Fprintf(logOut, "Building %s...\n", cfg.output)
	if err := b.Write(cfg.output); err != nil {
		return err
	}
	fmt.Fprintf(logOut, "✓ %s\n", cfg.output)
	return nil
}

// writeCoverOnly renders just the cover image to the output path.
func writeCoverOnly(cfg cliConfig) error {
	if cfg.title == "" {
		return fmt.Errorf("-cover-only requires -title")
	}
	if !cover.Available() {
		return fmt.Errorf("cover generation unavailable")
	}

	res, err := cover.Render(cfg.coverRequest(cfg.title))
	if err != nil {
		return fmt.Errorf("rendering cover: %w", err)
	}
	if res.UsedFallbackFont {
		fmt.Fprintf(logOut, "Warning: no font loaded, cover uses the built-in face\n")
	}

	var data []byte
	if strings.HasSuffix(strings.ToLower(cfg.output), ".png") {
		data, err = res.EncodePNG()
	} else {
		data, err = res.EncodeJPEG(cover.DefaultJPEGQuality)
	}
	if err != nil {
		return fmt.Errorf("encoding cover: %w", err)
	}
	if err := os.WriteFile(cfg.output, data, 0644); err != nil {
		return fmt.Errorf("writing cover: %w", err)
	}
	fmt.Fprintf(logOut, "✓ %s (%s)\n", cfg.output, humanSize(int64(len(data))))
	return nil
}

func main() {
	output := flag.String("o", "", "Output file (.epub, or image path with -cover-only)")
	title := flag.String("title", "", "Book title (default: derived from inputs)")
	author := flag.String("author", "", "Book author")
	lang := flag.String("lang", "en", "Book language code")
	subtitle := flag.String("subtitle", "", "Cover subtitle line")
	description := flag.String("description", "", "Book description metadata")
	coverMode := flag.String("cover", "auto", `Cover: "auto" to generate, "none", or an image path`)
	coverSeed := flag.Int64("cover-seed", 0, "Seed for deterministic cover generation")
	coverWidth := flag.Int("cover-width", 1600, "Generated cover width in pixels")
	coverHeight := flag.Int("cover-height", 2400, "Generated cover height in pixels")
	fonts := flag.String("font", "", "Comma-separated font files or names for the cover, tried in order")
	coverOnly := flag.Bool("cover-only", false, "Render only the cover image to -o")
	extractMode := flag.String("extract", extractModeArticle, `URL extraction mode: "article", "paragraphs" or "markdown"`)
	splitPattern := flag.String("split", "", "Regex matched at line start to split text files into chapters")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP fetch timeout")
	userAgent := flag.String("user-agent", defaultUA, "HTTP User-Agent header")
	silent := flag.Bool("silent", false, "Suppress all output except errors (for pipeline use)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bookmaker [options] -o out.epub <file.txt|file.md|URL> [...]\n")
		fmt.Fprintf(os.Stderr, "       bookmaker -cover-only -o cover.jpg -title \"Title\" [options]\n\n")
		fmt.Fprintf(os.Stderr, "Assemble epubs from text, markdown and web articles, with generated covers.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *silent {
		logOut = io.Discard
	}

	seedSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "cover-seed" {
			seedSet = true
		}
	})

	var fontPaths []string
	for _, f := range strings.Split(*fonts, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fontPaths = append(fontPaths, f)
		}
	}

	cfg := cliConfig{
		output:       *output,
		title:        *title,
		author:       *author,
		language:     *lang,
		subtitle:     *subtitle,
		description:  *description,
		coverMode:    *coverMode,
		coverSeed:    *coverSeed,
		seedSet:      seedSet,
		coverWidth:   *coverWidth,
		coverHeight:  *coverHeight,
		fontPaths:    fontPaths,
		coverOnly:    *coverOnly,
		extractMode:  *extractMode,
		splitPattern: *splitPattern,
		timeout:      *timeout,
		userAgent:    *userAgent,
		args:         flag.Args(),
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
