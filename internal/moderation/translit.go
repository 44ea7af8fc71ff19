package moderation

import (
	"regexp"
	"strings"
)

// layoutMap maps Latin letters typed on a QWERTY layout to the Cyrillic
// characters at the same key positions (ЙЦУКЕН). Catches users who type
// Russian while their keyboard is switched to the Latin layout.
var layoutMap = map[rune]rune{
	'q': 'й', 'w': 'ц', 'e': 'у', 'r': 'к', 't': 'е', 'y': 'н', 'u': 'г',
	'i': 'ш', 'o': 'щ', 'p': 'з', 'a': 'ф', 's': 'ы', 'd': 'в', 'f': 'а',
	'g': 'п', 'h': 'р', 'j': 'о', 'k': 'л', 'l': 'д', 'z': 'я', 'x': 'ч',
	'c': 'с', 'v': 'м', 'b': 'и', 'n': 'т', 'm': 'ь',
	'[': 'х', ']': 'ъ', ';': 'ж', '\'': 'э', ',': 'б', '.': 'ю',
}

// transliterationWords maps known Latin-script spellings of Russian words,
// including common leetspeak variants, to their Cyrillic form. Applied as
// whole-word replacements before layout mapping.
var transliterationWords = map[string][]string{
	"сука":   {"suka", "cyka", "su4ka", "sooka"},
	"блять":  {"blyat", "blyad", "bl9t", "blet"},
	"пидор":  {"pidor", "pidr", "p1dor"},
	"мудак":  {"mudak", "mud4k"},
	"дебил":  {"debil", "d3bil"},
	"урод":   {"urod", "ur0d"},
	"идиот":  {"idiot", "1diot"},
	"хуй":    {"hui", "huy", "xyi"},
	"пизда":  {"pizda", "p1zda"},
	"тварь":  {"tvar", "tvar'"},
	"гандон": {"gandon", "g4ndon"},
}

var transliterationPatterns = buildTransliterationPatterns()

type translitPattern struct {
	re          *regexp.Regexp
	replacement string
}

func buildTransliterationPatterns() []translitPattern {
	out := make([]translitPattern, 0, len(transliterationWords))
	for cyrillic, variants := range transliterationWords {
		joined := strings.Join(variants, "|")
		out = append(out, translitPattern{
			re:          regexp.MustCompile(`\b(?:` + joined + `)\b`),
			replacement: cyrillic,
		})
	}
	return out
}

// transliterateLayout converts the whole string through the keyboard-position
// table.
func transliterateLayout(s string) string {
	return strings.Map(func(r rune) rune {
		if mapped, ok := layoutMap[r]; ok {
			return mapped
		}
		return r
	}, s)
}

// expandTransliterations rewrites known Latin-script spellings of Russian
// words into Cyrillic so they match the built-in Russian word list.
func expandTransliterations(s string) string {
	for _, p := range transliterationPatterns {
		s = p.re.ReplaceAllString(s, p.replacement)
	}
	return s
}
