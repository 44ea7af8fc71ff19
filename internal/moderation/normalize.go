package moderation

import (
	"regexp"
	"strings"
	"unicode"
)

// Character substitutions collapsing leetspeak digits/symbols and visually
// confusable Cyrillic look-alikes to canonical Latin letters. Applied as a
// global replace per rule.
var charSubstitutions = []struct {
	from string
	to   string
}{
	{"0", "o"}, {"1", "i"}, {"3", "e"}, {"4", "a"}, {"5", "s"},
	{"6", "g"}, {"7", "t"}, {"8", "b"}, {"9", "g"},
	{"@", "a"}, {"$", "s"}, {"!", "i"}, {"+", "t"}, {"|", "i"},
	{"а", "a"}, {"е", "e"}, {"о", "o"}, {"р", "p"}, {"с", "c"},
	{"у", "y"}, {"х", "x"}, {"к", "k"}, {"і", "i"},
}

// Phonetic equivalences folding phonetically identical spellings together.
var phoneticSubstitutions = []struct {
	from string
	to   string
}{
	{"ph", "f"}, {"ck", "k"}, {"kk", "k"}, {"gh", "g"}, {"qu", "k"}, {"q", "k"},
}

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	// Single letters joined by dots, dashes, underscores or asterisks
	// ("f.u.c.k", "f-u-c-k").
	reSeparatedLetters = regexp.MustCompile(`([a-zа-я])[.\-_*]+`)
	// Runs of single letters split by whitespace ("f u c k"). RE2 has no
	// backreferences, so repeated-character runs are collapsed in
	// collapseRepeats instead.
	reSpacedLetters = regexp.MustCompile(`\b[a-zа-я](?:\s+[a-zа-я]\b){2,}`)
)

// Variants produces the candidate set of normalized renderings of text. Each
// rendering collapses one family of obfuscation tricks; the raw lowercase
// input is always included. Variants shorter than two characters are dropped.
func Variants(text string, enableTransliteration bool) []string {
	base := strings.TrimSpace(reWhitespace.ReplaceAllString(strings.ToLower(text), " "))

	candidates := []string{
		base,
		substituteChars(base),
		collapseBypass(substituteChars(base)),
		lettersOnly(base),
		noSpaces(lettersOnly(substituteChars(base))),
		collapseRepeats(base),
		collapseRepeats(lettersOnly(substituteChars(base))),
		phoneticFold(base),
	}
	if enableTransliteration {
		candidates = append(candidates, transliterateLayout(base), expandTransliterations(base))
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, v := range candidates {
		v = strings.TrimSpace(v)
		if len([]rune(v)) < 2 {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func substituteChars(s string) string {
	for _, sub := range charSubstitutions {
		s = strings.ReplaceAll(s, sub.from, sub.to)
	}
	return s
}

// collapseBypass squeezes out common separator tricks: spaced-out single
// letters and letters joined by punctuation.
func collapseBypass(s string) string {
	s = reSpacedLetters.ReplaceAllStringFunc(s, func(run string) string {
		return reWhitespace.ReplaceAllString(run, "")
	})
	s = reSeparatedLetters.ReplaceAllString(s, "$1")
	return s
}

// lettersOnly strips everything except Latin/Cyrillic letters and spaces.
func lettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || (r >= 'a' && r <= 'z') || unicode.Is(unicode.Cyrillic, r) {
			return r
		}
		return -1
	}, s)
}

func noSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// collapseRepeats folds any run of two or more identical characters to one.
func collapseRepeats(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func phoneticFold(s string) string {
	for _, sub := range phoneticSubstitutions {
		s = strings.ReplaceAll(s, sub.from, sub.to)
	}
	return s
}
