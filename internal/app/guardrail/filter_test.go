package guardrail

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestContainsBanned(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Don't forget your workout!", true},
		{"DON'T FORGET your workout!", true},
		{"You failed to log yesterday", true},
		{"Last chance to keep your streak", true},
		{"Hurry, the day is almost over", true},
		{"You're falling behind on reading", true},
		{"Your reading habit is waiting for you", false},
		{"Nice work this week 🎉", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ContainsBanned(tt.text); got != tt.want {
			t.Errorf("ContainsBanned(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestSanitize_Rewrites(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Don't forget your workout!", "whenever you're ready your workout!"},
		{"You failed yesterday.", "tomorrow's a fresh start yesterday."},
		{"Hurry up, time is short", "no rush, time is short"},
		{"You must log today", "you could log today"},
		{"clean text stays clean", "clean text stays clean"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitize_RemovesEveryBannedPhrase(t *testing.T) {
	// Each banned phrase, embedded in a carrier sentence, must be gone
	// after one pass.
	for _, phrase := range BannedPhrases() {
		text := fmt.Sprintf("Hey! %s — your streak is on the line.", phrase)
		out := Sanitize(text)
		if ContainsBanned(out) {
			t.Errorf("sanitized %q still contains a banned phrase: %q", phrase, out)
		}
	}
}

func TestSanitize_CaseInsensitive(t *testing.T) {
	for _, text := range []string{
		"LAST CHANCE to act",
		"Last Chance to act",
		"lAsT cHaNcE to act",
	} {
		out := Sanitize(text)
		if strings.Contains(strings.ToLower(out), "last chance") {
			t.Errorf("Sanitize(%q) = %q, phrase survived", text, out)
		}
	}
}

func TestSanitize_MultibyteText(t *testing.T) {
	// Lowercasing can change a rune's byte length (İ shrinks from two bytes
	// to one), so rewrite offsets must be computed against the original text.
	tests := []struct {
		in   string
		want string
	}{
		{"İİİİ don't forget your habit", "İİİİ whenever you're ready your habit"},
		{"你好, last chance to log", "你好, still open for you to log"},
		{"Ééé HURRY UP déjà", "Ééé no rush déjà"},
	}
	for _, tt := range tests {
		got := Sanitize(tt.in)
		if got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Sanitize(%q) produced invalid UTF-8: %q", tt.in, got)
		}
		if ContainsBanned(got) {
			t.Errorf("Sanitize(%q) left banned phrasing: %q", tt.in, got)
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"Don't forget — last chance, hurry up, you must act now!",
		"You failed and I'm disappointed, you're falling behind.",
		"perfectly fine text",
	}
	for _, phrase := range BannedPhrases() {
		inputs = append(inputs, "carrier "+phrase+" carrier")
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestReplacementsNeverBanned(t *testing.T) {
	for _, r := range rules {
		if ContainsBanned(r.replacement) {
			t.Errorf("replacement %q for %q contains a banned phrase", r.replacement, r.banned)
		}
	}
}
