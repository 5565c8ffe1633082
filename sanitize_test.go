package main

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func htmlAttr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func TestIsAllowedAttr(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want bool
	}{
		{"id", "id", "main", true},
		{"class", "class", "container", true},
		{"href", "href", "https://example.com", true},
		{"src", "src", "image.jpg", true},
		{"alt", "alt", "description", true},
		{"style", "style", "color: red", true},
		{"colspan", "colspan", "2", true},
		{"rel", "rel", "noopener", true},
		{"epub:type", "epub:type", "chapter", true},
		{"aria-label", "aria-label", "Close", false},
		{"aria-hidden", "aria-hidden", "true", false},
		{"data-custom", "data-custom", "value", false},
		{"onclick", "onclick", "alert(1)", false},
		{"tabindex", "tabindex", "0", false},
		{"role", "role", "button", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAllowedAttr(htmlAttr(tt.key, tt.val))
			if got != tt.want {
				t.Errorf("isAllowedAttr(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSanitizeForXHTML_FiltersAttrs(t *testing.T) {
	input := `<p id="intro" onclick="alert(1)" data-track="click">Hello</p>`
	result := sanitizeForXHTML(input)
	if strings.Contains(result, "onclick") {
		t.Error("onclick should be stripped")
	}
	if strings.Contains(result, "data-track") {
		t.Error("data-track should be stripped")
	}
	if !strings.Contains(result, `id="intro"`) {
		t.Error("id should be kept")
	}
	if !strings.Contains(result, "Hello") {
		t.Error("text content should be preserved")
	}
}

func TestSanitizeForXHTML_FixesBrokenFragmentLinks(t *testing.T) {
	input := `<a href="#exists">ok</a><a href="#missing">broken</a><div id="exists">target</div>`
	result := sanitizeForXHTML(input)
	if !strings.Contains(result, `href="#exists"`) {
		t.Error("link to existing ID should be kept")
	}
	if strings.Contains(result, `href="#missing"`) {
		t.Error("link to non-existent ID should be dropped")
	}
}

func TestSanitizeForXHTML_VoidElements(t *testing.T) {
	input := `<p>text<br>more</p><hr><img src="x.jpg" alt="test">`
	result := sanitizeForXHTML(input)
	if !strings.Contains(result, "<br/>") {
		t.Error("br should be self-closing in XHTML")
	}
	if !strings.Contains(result, "<hr/>") {
		t.Error("hr should be self-closing in XHTML")
	}
}

func TestSanitizeForXHTML_StrictWhitelist(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		not   string
	}{
		{
			name:  "removes script",
			input: `<div><script>alert(1)</script><p>text</p></div>`,
			want:  `<p>text</p>`,
			not:   "script",
		},
		{
			name:  "removes iframe",
			input: `<div><iframe src="https://evil.example"></iframe><p>text</p></div>`,
			want:  `<p>text</p>`,
			not:   "iframe",
		},
		{
			name:  "removes form controls",
			input: `<form><input type="text"><button>Go</button></form><p>text</p>`,
			want:  `<p>text</p>`,
			not:   "input",
		},
		{
			name:  "keeps tables",
			input: `<table><tr><td>cell</td></tr></table>`,
			want:  `<td>cell</td>`,
			not:   "",
		},
		{
			name:  "keeps semantic sections",
			input: `<article><section><h2>Head</h2></section></article>`,
			want:  `<section>`,
			not:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeForXHTML(tt.input)
			if tt.want != "" && !strings.Contains(got, tt.want) {
				t.Errorf("output %q should contain %q", got, tt.want)
			}
			if tt.not != "" && strings.Contains(got, tt.not) {
				t.Errorf("output %q should not contain %q", got, tt.not)
			}
		})
	}
}

func TestSanitizeForXHTML_RemoteImagesDropped(t *testing.T) {
	input := `<p>a</p><img src="https://example.com/x.jpg" alt="remote"><img src="local.jpg" alt="local">`
	result := sanitizeForXHTML(input)
	if strings.Contains(result, "example.com") {
		t.Error("remote image should be dropped")
	}
	if !strings.Contains(result, "local.jpg") {
		t.Error("local image should be kept")
	}
}

func TestSanitizeForXHTML_DuplicateIDs(t *testing.T) {
	input := `<p id="note">a</p><p id="note">b</p><p id="note">c</p>`
	result := sanitizeForXHTML(input)
	if strings.Count(result, `id="note"`) != 1 {
		t.Errorf("duplicate ids should be renamed, got %q", result)
	}
	if !strings.Contains(result, `id="note-2"`) {
		t.Errorf("second id should be note-2, got %q", result)
	}
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"simple", "simple"},
		{"  padded  ", "padded"},
		{"has space", "has-space"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := sanitizeID(tt.in); got != tt.want {
			t.Errorf("sanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripInvalidXMLChars(t *testing.T) {
	in := "good\x00text\x0bhere\ttab\nnewline"
	got := stripInvalidXMLChars(in)
	if strings.ContainsRune(got, 0x00) || strings.ContainsRune(got, 0x0b) {
		t.Error("control characters should be stripped")
	}
	if !strings.Contains(got, "\t") || !strings.Contains(got, "\n") {
		t.Error("tab and newline are valid XML and should be kept")
	}
	if !strings.Contains(got, "goodtext") {
		t.Errorf("surrounding text should survive, got %q", got)
	}
}
