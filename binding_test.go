package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNewBindingInfersKind(t *testing.T) {
	tests := []struct {
		kind, href string
		want       BindingKind
	}{
		{"", "song.mp3", BindFile},
		{"", "https://example.com/a.mp3", BindStream},
		{"buffer", "http://example.com/a.mp3", BindBuffer},
		{"STREAM", "http://example.com/a.mp3", BindStream},
	}
	for _, tt := range tests {
		b, err := NewBinding(tt.kind, tt.href)
		if err != nil {
			t.Errorf("NewBinding(%q, %q): %v", tt.kind, tt.href, err)
			continue
		}
		if b.Kind != tt.want {
			t.Errorf("NewBinding(%q, %q).Kind = %v, want %v", tt.kind, tt.href, b.Kind, tt.want)
		}
	}
}

func TestNewBindingRejects(t *testing.T) {
	tests := []struct{ kind, href string }{
		{"", ""},
		{"file", "http://example.com/a.mp3"},
		{"stream", "a.mp3"},
		{"tape", "a.mp3"},
	}
	for _, tt := range tests {
		if _, err := NewBinding(tt.kind, tt.href); err == nil {
			t.Errorf("NewBinding(%q, %q) succeeded, want error", tt.kind, tt.href)
		}
	}
}

func TestNewBindingExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	b, err := NewBinding("file", "~/music/a.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(b.Href, "~") || filepath.Base(b.Href) != "a.mp3" {
		t.Errorf("Href = %q, want an expanded path", b.Href)
	}
	if got := b.String(); got != "file:"+b.Href {
		t.Errorf("String() = %q", got)
	}
}
