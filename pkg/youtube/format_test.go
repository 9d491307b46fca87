package youtube

import "testing"

func TestFormatEntries(t *testing.T) {
	entries := []CaptionEntry{
		{Start: 0, Text: "a"},
		{Start: 65, Text: "b"},
		{Start: 3600, Text: "c"},
	}
	got := FormatEntries(entries)
	want := "[00:00] a\n[01:05] b\n[60:00] c"
	if got != want {
		t.Fatalf("FormatEntries() = %q, want %q", got, want)
	}
}

func TestFormatEntriesTruncatesFractionalOffsets(t *testing.T) {
	entries := []CaptionEntry{
		{Start: 1.98, Text: "almost two"},
		{Start: 61.5, Text: "one minute in"},
	}
	got := FormatEntries(entries)
	want := "[00:01] almost two\n[01:01] one minute in"
	if got != want {
		t.Fatalf("FormatEntries() = %q, want %q", got, want)
	}
}

func TestFormatEntriesKeepsOrderAndDuplicates(t *testing.T) {
	entries := []CaptionEntry{
		{Start: 10, Text: "same line"},
		{Start: 5, Text: "same line"},
	}
	got := FormatEntries(entries)
	want := "[00:10] same line\n[00:05] same line"
	if got != want {
		t.Fatalf("FormatEntries() = %q, want %q", got, want)
	}
}

func TestFormatEntriesEmpty(t *testing.T) {
	if got := FormatEntries(nil); got != "" {
		t.Fatalf("FormatEntries(nil) = %q, want empty", got)
	}
}
