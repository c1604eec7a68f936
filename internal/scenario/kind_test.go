package scenario

import (
	"context"
	"testing"
)

func TestKindTitlesAndSlugs(t *testing.T) {
	tests := []struct {
		kind  Kind
		title string
		slug  string
		flat  bool
	}{
		{Build, "Build", "build", false},
		{Write, "Writes", "writes", true},
		{Crawl, "Crawl", "crawl", false},
		{Read, "Read", "read", true},
		{CrawlAndUpdate, "Crawl and update", "crawl-and-update", false},
		{ContentiousUpdate, "Contentious update", "contentious-update", true},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			if got := tt.kind.Title(); got != tt.title {
				t.Errorf("Title() = %q, want %q", got, tt.title)
			}
			if got := tt.kind.Slug(); got != tt.slug {
				t.Errorf("Slug() = %q, want %q", got, tt.slug)
			}
			if got := tt.kind.Flat(); got != tt.flat {
				t.Errorf("Flat() = %v, want %v", got, tt.flat)
			}
			parsed, err := Parse(" " + tt.slug + " ")
			if err != nil || parsed != tt.kind {
				t.Errorf("Parse(%q) = %v, %v", tt.slug, parsed, err)
			}
		})
	}
}

func TestParseUnknown(t *testing.T) {
	if _, err := Parse("stress"); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

func TestCountersAdd(t *testing.T) {
	a := Counters{Loaded: 5, Created: 2}
	b := Counters{Loaded: 7, Created: 3, Retries: 1}
	got := a.Add(b)
	want := Counters{Loaded: 12, Created: 5, Retries: 1}
	if got != want {
		t.Fatalf("Add() = %+v, want %+v", got, want)
	}
}

func TestRunUnknownKind(t *testing.T) {
	s := NewSession(nil, Params{Number: 1})
	if err := s.Run(context.Background(), Kind(99)); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
