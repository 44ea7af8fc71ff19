package moderation

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Fixed scoring policy. Weights favour edit distance, then Jaro, then the
// bag-of-characters overlap, with containment acting as a floor.
const (
	weightLevenshtein = 0.4
	weightJaro        = 0.3
	weightOverlap     = 0.2
	weightContainment = 0.1

	containmentScore = 0.9
	containmentFloor = 0.85

	fuzzyThreshold       = 0.70
	sequenceConfidence   = 0.75
	sequenceRatio        = 0.8
	sequenceMaxGap       = 2
	reverseConfidence    = 0.9
	directConfidence     = 1.0
	fuzzyWindowSlack     = 2
	minFuzzyWindowLength = 2
)

// Visually similar alternates accepted by the subsequence matcher when the
// exact character is missing.
var visualAlternates = map[rune][]rune{
	'a': {'@', '4', 'а'},
	'b': {'8', '6'},
	'c': {'(', 'с', 'k'},
	'e': {'3', 'е'},
	'g': {'9', '6'},
	'i': {'1', '!', '|', 'l', 'і'},
	'l': {'1', '|', 'i'},
	'o': {'0', 'о'},
	's': {'5', '$', 'z'},
	't': {'7', '+'},
	'u': {'v', 'у'},
	'x': {'х'},
	'z': {'2', 's'},
}

type matchResult struct {
	confidence float64
	method     string
}

type matcherFunc func(variant, word string) (matchResult, bool)

// matchers is the ordered list of detection methods. Direct containment
// short-circuits; the remaining matchers all run and the best score wins.
var matchers = []matcherFunc{
	matchFuzzy,
	matchSequence,
	matchReverse,
}

// detectWord runs every matching algorithm for word against a single
// normalized variant and returns the highest-confidence hit.
func detectWord(variant, word string) (matchResult, bool) {
	if strings.Contains(variant, word) {
		return matchResult{confidence: directConfidence, method: "direct"}, true
	}

	best := matchResult{}
	found := false
	for _, match := range matchers {
		res, ok := match(variant, word)
		if ok && res.confidence > best.confidence {
			best = res
			found = true
		}
	}
	return best, found
}

// matchFuzzy slides a window of length len(word)±2 across the variant and
// scores each window with the combined similarity.
func matchFuzzy(variant, word string) (matchResult, bool) {
	runes := []rune(variant)
	target := []rune(word)
	best := 0.0

	for size := len(target) - fuzzyWindowSlack; size <= len(target)+fuzzyWindowSlack; size++ {
		if size < minFuzzyWindowLength || size > len(runes) {
			continue
		}
		for start := 0; start+size <= len(runes); start++ {
			score := combinedSimilarity(string(runes[start:start+size]), word)
			if score > best {
				best = score
			}
		}
	}

	if best < fuzzyThreshold {
		return matchResult{}, false
	}
	return matchResult{confidence: best, method: "fuzzy"}, true
}

// matchSequence checks whether the word's characters appear as an ordered
// subsequence of the variant within a bounded gap, accepting visually similar
// alternates where the exact character is missing.
func matchSequence(variant, word string) (matchResult, bool) {
	runes := []rune(variant)
	target := []rune(word)
	if len(target) < 3 {
		return matchResult{}, false
	}

	for start := range runes {
		if !runeMatches(runes[start], target[0]) {
			continue
		}
		matched := 1
		pos := start
		for t := 1; t < len(target); t++ {
			next := -1
			for i := pos + 1; i <= pos+1+sequenceMaxGap && i < len(runes); i++ {
				if runeMatches(runes[i], target[t]) {
					next = i
					break
				}
			}
			if next == -1 {
				break
			}
			matched++
			pos = next
		}
		if float64(matched)/float64(len(target)) >= sequenceRatio {
			return matchResult{confidence: sequenceConfidence, method: "sequence"}, true
		}
	}
	return matchResult{}, false
}

// matchReverse checks literal containment of the word spelled backwards.
func matchReverse(variant, word string) (matchResult, bool) {
	if len([]rune(word)) < 3 {
		return matchResult{}, false
	}
	if !strings.Contains(variant, reverseString(word)) {
		return matchResult{}, false
	}
	return matchResult{confidence: reverseConfidence, method: "reverse"}, true
}

func runeMatches(have, want rune) bool {
	if have == want {
		return true
	}
	for _, alt := range visualAlternates[want] {
		if have == alt {
			return true
		}
	}
	return false
}

// combinedSimilarity is the fixed weighted blend of all similarity signals.
func combinedSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	contain := 0.0
	if strings.Contains(a, b) || strings.Contains(b, a) {
		contain = containmentScore
	}

	score := weightLevenshtein*levenshteinSimilarity(a, b) +
		weightJaro*jaroSimilarity(a, b) +
		weightOverlap*overlapRatio(a, b) +
		weightContainment*contain

	if contain > 0 && score < containmentFloor {
		score = containmentFloor
	}
	if score > 1 {
		score = 1
	}
	return score
}

// levenshteinSimilarity converts edit distance to a [0,1] score.
func levenshteinSimilarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

// jaroSimilarity implements the standard Jaro algorithm: matching-window
// character alignment plus transposition count.
func jaroSimilarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	la := len(ra)
	lb := len(rb)
	if la == 0 || lb == 0 {
		return 0
	}
	if a == b {
		return 1
	}

	window := la
	if lb > window {
		window = lb
	}
	window = window/2 - 1
	if window < 0 {
		window = 0
	}

	matchedA := make([]bool, la)
	matchedB := make([]bool, lb)
	matches := 0
	for i := 0; i < la; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window
		if hi >= lb {
			hi = lb - 1
		}
		for j := lo; j <= hi; j++ {
			if matchedB[j] || ra[i] != rb[j] {
				continue
			}
			matchedA[i] = true
			matchedB[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	j := 0
	for i := 0; i < la; i++ {
		if !matchedA[i] {
			continue
		}
		for !matchedB[j] {
			j++
		}
		if ra[i] != rb[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(la) + m/float64(lb) + (m-t)/m) / 3
}

// overlapRatio is a cheap bag-of-characters signal: greedy bipartite matching
// of characters divided by combined length.
func overlapRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	used := make([]bool, len(rb))
	matches := 0
	for _, r := range ra {
		for j, s := range rb {
			if !used[j] && r == s {
				used[j] = true
				matches++
				break
			}
		}
	}
	return 2 * float64(matches) / float64(len(ra)+len(rb))
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
