// Package guardrail filters nudge text for guilt and urgency framing.
// Pure string transforms: every banned phrase has an autonomy-supportive
// rewrite, and sanitizing is idempotent because no rewrite reintroduces
// a banned phrase.
package guardrail

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// rule maps one banned phrase to its autonomy-supportive replacement.
type rule struct {
	banned      string
	replacement string
}

// rules is the ordered rewrite set. Matching is case-insensitive.
// Replacements must never contain any banned phrase.
var rules = []rule{
	{"don't forget", "whenever you're ready"},
	{"dont forget", "whenever you're ready"},
	{"you failed", "tomorrow's a fresh start"},
	{"last chance", "still open for you"},
	{"hurry up", "no rush"},
	{"hurry", "take your time"},
	{"you're falling behind", "you can pick this back up anytime"},
	{"falling behind", "moving at your own pace"},
	{"you must", "you could"},
	{"before it's too late", "whenever it suits you"},
	{"don't break", "you can keep"},
	{"disappointed", "rooting for you"},
	{"you should have", "next time you could"},
	{"act now", "it's here when you want it"},
}

// ContainsBanned reports whether text contains any banned phrase,
// case-insensitively.
func ContainsBanned(text string) bool {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if strings.Contains(lower, r.banned) {
			return true
		}
	}
	return false
}

// Sanitize rewrites guilt/urgency framing into autonomy-supportive framing.
// Idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	for _, r := range rules {
		text = replaceFold(text, r.banned, r.replacement)
	}
	return text
}

// BannedPhrases returns the banned phrase list (for tests and audit tooling).
func BannedPhrases() []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.banned
	}
	return out
}

// replaceFold replaces every case-insensitive occurrence of old in s with new.
// old is assumed lowercase. Matching folds rune by rune so byte offsets stay
// correct even where lowercasing changes a rune's encoded length.
func replaceFold(s, old, new string) string {
	if old == "" {
		return s
	}
	want := []rune(old)
	var b strings.Builder
	for {
		start, end := indexFold(s, want)
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		b.WriteString(new)
		s = s[end:]
	}
}

// indexFold finds the first case-insensitive occurrence of want in s,
// returning its byte range [start, end) in s, or (-1, -1).
func indexFold(s string, want []rune) (int, int) {
	for i := 0; i < len(s); {
		if end, ok := matchFoldAt(s, i, want); ok {
			return i, end
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1, -1
}

// matchFoldAt reports whether want matches s at byte offset i under simple
// case folding, and the byte offset just past the match.
func matchFoldAt(s string, i int, want []rune) (int, bool) {
	j := i
	for _, w := range want {
		if j >= len(s) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(s[j:])
		if unicode.ToLower(r) != w {
			return 0, false
		}
		j += size
	}
	return j, true
}
