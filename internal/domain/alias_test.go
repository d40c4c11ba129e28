package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanAlias(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"simple", "simple"},
		{"With Spaces", "with_spaces"},
		{"BTO-film (run#3)", "bto_film__run_3_"},
		{"a/b\\c:d", "a_b_c_d"},
		{"  padded", "__padded"},
		{"keep.dots_and_underscores", "keep.dots_and_underscores"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanAlias(c.in); got != c.want {
			t.Errorf("CleanAlias(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanAliasTruncates(t *testing.T) {
	in := strings.Repeat("x", 100)
	got := CleanAlias(in)
	if aliasLen(got) != MaxAliasLength {
		t.Fatalf("expected %d runes, got %d", MaxAliasLength, aliasLen(got))
	}

	multi := strings.Repeat("é", 70)
	if aliasLen(CleanAlias(multi)) != MaxAliasLength {
		t.Fatalf("expected truncation by runes, not bytes")
	}
}

func TestCleanAliasIdempotent(t *testing.T) {
	in := "Scan #42: PZT/STO @ 300K"
	once := CleanAlias(in)
	if CleanAlias(once) != once {
		t.Fatalf("expected idempotent cleaning, got %q then %q", once, CleanAlias(once))
	}
}

func TestTitleAndAliasFromFile(t *testing.T) {
	if got := TitleFromFile("BEPS Scan 01.h5"); got != "BEPS Scan 01" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := TitleFromFile("archive.tar.gz"); got != "archive.tar" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := TitleFromFile(".hidden"); got != ".hidden" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := AliasFromFile("BEPS Scan 01.h5"); got != "beps_scan_01" {
		t.Fatalf("unexpected alias %q", got)
	}
}

func aliasLen(s string) int { return utf8.RuneCountInString(s) }
