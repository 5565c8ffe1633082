package main

import (
	"testing"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"title tag", `<html><head><title>My Article</title></head></html>`, "My Article"},
		{"title with site suffix", `<title>My Article - Some Site</title>`, "My Article"},
		{"h1 fallback", `<body><h1>Heading Title</h1></body>`, "Heading Title"},
		{"h1 with tags", `<h1><em>Styled</em> Title</h1>`, "Styled Title"},
		{"nothing", `<p>just text</p>`, "Untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Article - Site Name", "Article"},
		{"Article | Site", "Article"},
		{"Plain Title", "Plain Title"},
		{"", "Untitled"},
		{"Well-Known Topic", "Well-Known Topic"},
	}
	for _, tt := range tests {
		if got := cleanTitle(tt.in); got != tt.want {
			t.Errorf("cleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitByHeadings(t *testing.T) {
	text := `intro text before any heading

# Chapter One

First chapter body.

## Chapter Two

Second chapter body.
Spanning two lines.`

	chapters := splitByHeadings(text)
	if len(chapters) != 3 {
		t.Fatalf("got %d chapters, want 3", len(chapters))
	}
	if chapters[0].Title != "" || chapters[0].Content != "intro text before any heading" {
		t.Errorf("leading chapter = %+v", chapters[0])
	}
	if chapters[1].Title != "Chapter One" {
		t.Errorf("title = %q, want %q", chapters[1].Title, "Chapter One")
	}
	if chapters[1].Content != "First chapter body." {
		t.Errorf("content = %q", chapters[1].Content)
	}
	if chapters[2].Title != "Chapter Two" {
		t.Errorf("title = %q, want %q", chapters[2].Title, "Chapter Two")
	}
}

func TestSplitByHeadings_NoHeadings(t *testing.T) {
	chapters := splitByHeadings("just a block of text\nwith two lines")
	if len(chapters) != 1 {
		t.Fatalf("got %d chapters, want 1", len(chapters))
	}
	if chapters[0].Title != "" {
		t.Errorf("expected untitled chapter, got title %q", chapters[0].Title)
	}
}

func TestSplitByHeadings_Empty(t *testing.T) {
	if got := splitByHeadings("   \n\n  "); got != nil {
		t.Errorf("expected nil for blank input, got %v", got)
	}
}

func TestSplitByPattern(t *testing.T) {
	text := `CHAPTER I
It was the best of times.

CHAPTER II
It was the worst of times.`

	chapters, err := splitByPattern(text, `CHAPTER [IVXLC]+`)
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(chapters))
	}
	if chapters[0].Title != "CHAPTER I" {
		t.Errorf("title = %q", chapters[0].Title)
	}
	if chapters[0].Content != "It was the best of times." {
		t.Errorf("content = %q", chapters[0].Content)
	}
	if chapters[1].Title != "CHAPTER II" {
		t.Errorf("title = %q", chapters[1].Title)
	}
}

func TestSplitByPattern_CaptureGroup(t *testing.T) {
	text := `Chapter 1: The Beginning
body one

Chapter 2: The End
body two`

	chapters, err := splitByPattern(text, `Chapter \d+: (.+)`)
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(chapters))
	}
	if chapters[0].Title != "The Beginning" {
		t.Errorf("title = %q, want capture group content", chapters[0].Title)
	}
	if chapters[1].Title != "The End" {
		t.Errorf("title = %q", chapters[1].Title)
	}
}

func TestSplitByPattern_Invalid(t *testing.T) {
	_, err := splitByPattern("text", `([unclosed`)
	if err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestSplitByPattern_NoMatch(t *testing.T) {
	chapters, err := splitByPattern("plain text with no markers", `CHAPTER \d+`)
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 1 || chapters[0].Title != "" {
		t.Errorf("expected one untitled chapter, got %+v", chapters)
	}
}

func TestNumberUntitled(t *testing.T) {
	chapters := []chapterText{
		{Content: "a"},
		{Title: "Named", Content: "b"},
		{Content: "c"},
	}
	numberUntitled(chapters)
	if chapters[0].Title != "Chapter 1" {
		t.Errorf("got %q", chapters[0].Title)
	}
	if chapters[1].Title != "Named" {
		t.Errorf("existing title should be kept, got %q", chapters[1].Title)
	}
	if chapters[2].Title != "Chapter 3" {
		t.Errorf("got %q", chapters[2].Title)
	}
}
