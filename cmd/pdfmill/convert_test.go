package main

import (
	"context"
	"testing"
)

func TestParsePages(t *testing.T) {
	pages, err := parsePages("1, 3,5")
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 3, 5}
	for i := range want {
		if pages[i] != want[i] {
			t.Fatalf("got %v, want %v", pages, want)
		}
	}

	for _, bad := range []string{"", "a", "0", "1,-2"} {
		if _, err := parsePages(bad); err == nil {
			t.Errorf("parsePages(%q): expected error", bad)
		}
	}
}

func TestParseRange(t *testing.T) {
	start, end, err := parseRange("2-10")
	if err != nil || start != 2 || end != 10 {
		t.Fatalf("got %d-%d, %v", start, end, err)
	}

	start, end, err = parseRange("3-")
	if err != nil || start != 3 || end != 0 {
		t.Fatalf("got %d-%d, %v", start, end, err)
	}

	for _, bad := range []string{"", "5", "0-3", "4-2", "x-y"} {
		if _, _, err := parseRange(bad); err == nil {
			t.Errorf("parseRange(%q): expected error", bad)
		}
	}
}

func TestJournalRoundTrip(t *testing.T) {
	path := t.TempDir() + "/journal.db"
	j, err := openJournal(path)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	if _, err := j.db.Exec(
		`INSERT INTO conversions (id, source, artifact, format, status, warnings)
		 VALUES ('a', 'in.pdf', 'out.txt', 'txt', 'SUCCEEDED', 2)`); err != nil {
		t.Fatal(err)
	}

	entries, err := j.recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.Source != "in.pdf" || e.Status != "SUCCEEDED" || e.Warnings != 2 {
		t.Errorf("entry = %+v", e)
	}
}
