package main

import (
	"archive/zip"
	"bytes"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quangnd159/bookmaker/cover"
)

func testConfig() cliConfig {
	return cliConfig{
		language:    "en",
		coverMode:   "none",
		coverWidth:  200,
		coverHeight: 300,
		extractMode: extractModeArticle,
		timeout:     5 * time.Second,
		userAgent:   "test-agent",
	}
}

func TestRun_TextFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "story.txt")
	text := "# Part One\n\nIt begins.\n\n# Part Two\n\nIt ends."
	if err := os.WriteFile(input, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.output = filepath.Join(dir, "story.epub")
	cfg.args = []string{input}

	if err := run(cfg); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.OpenReader(cfg.output)
	if err != nil {
		t.Fatalf("output is not a valid epub: %v", err)
	}
	defer zr.Close()

	var chapterCount int
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "EPUB/xhtml/chapter_") {
			chapterCount++
		}
	}
	if chapterCount != 2 {
		t.Errorf("got %d chapters, want 2", chapterCount)
	}
}

func TestRun_MarkdownFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "essay.md")
	md := "# The Essay\n\nSome *styled* prose here."
	if err := os.WriteFile(input, []byte(md), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.output = filepath.Join(dir, "essay.epub")
	cfg.args = []string{input}

	if err := run(cfg); err != nil {
		t.Fatal(err)
	}

	ch := findZipFile(t, cfg.output, "chapter_1.xhtml")
	if !strings.Contains(ch, "<em>styled</em>") {
		t.Errorf("markdown chapter should render emphasis, got %q", ch)
	}
}

func TestRun_SplitPattern(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "novel.txt")
	text := "CHAPTER 1\nFirst part.\n\nCHAPTER 2\nSecond part."
	if err := os.WriteFile(input, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.output = filepath.Join(dir, "novel.epub")
	cfg.splitPattern = `CHAPTER \d+`
	cfg.args = []string{input}

	if err := run(cfg); err != nil {
		t.Fatal(err)
	}

	ch2 := findZipFile(t, cfg.output, "chapter_2.xhtml")
	if !strings.Contains(ch2, "Second part.") {
		t.Error("second split chapter should contain its text")
	}
}

func TestRun_URLInput(t *testing.T) {
	t.Setenv("BOOKMAKER_TEST_ALLOW_LOCAL", "1")

	page := `<html><head><title>Web Article</title></head><body><article>
		<h1>Web Article</h1>
		<p>This is the main article content with enough substance for the
		readability extractor to identify it as the primary region of the page.
		It keeps going with additional sentences to satisfy content density
		heuristics used by the extraction algorithm under test here.</p>
		<p>A second paragraph with more words to push the article well past the
		extraction threshold. Plenty of prose in this paragraph as well, enough
		that the extractor will not discard the article body as boilerplate.</p>
	</article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := testConfig()
	cfg.output = filepath.Join(dir, "web.epub")
	cfg.args = []string{srv.URL}

	if err := run(cfg); err != nil {
		t.Fatal(err)
	}

	ch := findZipFile(t, cfg.output, "chapter_1.xhtml")
	if !strings.Contains(ch, "main article content") {
		t.Error("article content should appear in the chapter")
	}
}

func TestRun_URLParagraphsMode(t *testing.T) {
	t.Setenv("BOOKMAKER_TEST_ALLOW_LOCAL", "1")

	page := `<html><head><title>Plain Article</title></head><body><article>
		<h1>Plain Article</h1>
		<p>Paragraph mode keeps only textual content from each paragraph node,
		with enough words in this one to satisfy the readability threshold for
		main content detection across the whole document structure.</p>
		<p>Second paragraph <em>with markup</em> that should be flattened down
		to plain text when the paragraphs extraction mode is selected here.</p>
	</article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := testConfig()
	cfg.output = filepath.Join(dir, "plain.epub")
	cfg.extractMode = extractModeParagraphs
	cfg.args = []string{srv.URL}

	if err := run(cfg); err != nil {
		t.Fatal(err)
	}

	ch := findZipFile(t, cfg.output, "chapter_1.xhtml")
	if strings.Contains(ch, "<em>") {
		t.Error("paragraphs mode should strip inline markup")
	}
	if !strings.Contains(ch, "with markup") {
		t.Error("paragraph text should be kept")
	}
}

func TestRun_NoOutput(t *testing.T) {
	cfg := testConfig()
	cfg.args = []string{"whatever.txt"}
	if err := run(cfg); err == nil {
		t.Error("expected error when -o is missing")
	}
}

func TestRun_NoInputs(t *testing.T) {
	cfg := testConfig()
	cfg.output = filepath.Join(t.TempDir(), "x.epub")
	if err := run(cfg); err == nil {
		t.Error("expected error when no inputs given")
	}
}

func TestRun_CoverOnly(t *testing.T) {
	if !cover.Available() {
		t.Skip("cover engine unavailable")
	}
	dir := t.TempDir()
	cfg := testConfig()
	cfg.output = filepath.Join(dir, "cover.jpg")
	cfg.coverOnly = true
	cfg.title = "Standalone Cover"
	cfg.author = "Somebody"
	cfg.coverSeed = 42
	cfg.seedSet = true

	if err := run(cfg); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(cfg.output)
	if err != nil {
		t.Fatal(err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid JPEG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 200 || bounds.Dy() != 300 {
		t.Errorf("cover is %dx%d, want 200x300", bounds.Dx(), bounds.Dy())
	}
}

func TestRun_CoverOnlyNeedsTitle(t *testing.T) {
	cfg := testConfig()
	cfg.output = filepath.Join(t.TempDir(), "cover.jpg")
	cfg.coverOnly = true
	if err := run(cfg); err == nil {
		t.Error("expected error when -cover-only has no -title")
	}
}

func TestRun_GeneratedCoverInEpub(t *testing.T) {
	if !cover.Available() {
		t.Skip("cover engine unavailable")
	}
	dir := t.TempDir()
	input := filepath.Join(dir, "book.txt")
	if err := os.WriteFile(input, []byte("# One\n\nText."), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.output = filepath.Join(dir, "book.epub")
	cfg.coverMode = "auto"
	cfg.title = "Auto Covered"
	cfg.coverSeed = 3
	cfg.seedSet = true
	cfg.args = []string{input}

	if err := run(cfg); err != nil {
		t.Fatal(err)
	}

	names := zipNames(t, cfg.output)
	hasCover := false
	for n := range names {
		if strings.Contains(n, "cover.jpg") {
			hasCover = true
		}
	}
	if !hasCover {
		t.Error("epub should contain the generated cover")
	}
}

func TestDeriveTitle(t *testing.T) {
	articles := map[string]fetchedArticle{
		"https://example.com/a": {title: "Fetched Title", ok: true},
	}

	tests := []struct {
		name string
		cfg  cliConfig
		want string
	}{
		{
			"flag wins",
			cliConfig{title: "Explicit", args: []string{"file.txt"}},
			"Explicit",
		},
		{
			"file name",
			cliConfig{args: []string{"path/to/my-book.txt"}},
			"my-book",
		},
		{
			"article title",
			cliConfig{args: []string{"https://example.com/a"}},
			"Fetched Title",
		},
		{
			"output fallback",
			cliConfig{output: "out/final.epub"},
			"final",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveTitle(tt.cfg, articles); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsTextInput(t *testing.T) {
	tests := []struct {
		arg  string
		want bool
	}{
		{"notes.txt", true},
		{"README.md", true},
		{"UPPER.TXT", true},
		{"https://example.com/page", false},
		{"archive.epub", false},
	}
	for _, tt := range tests {
		if got := isTextInput(tt.arg); got != tt.want {
			t.Errorf("isTextInput(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"dir/file.txt", "file"},
		{"file.md", "file"},
		{"/abs/path/book.epub", "book"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := baseName(tt.path); got != tt.want {
			t.Errorf("baseName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
