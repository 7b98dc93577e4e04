package widget

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"soundstage/internal/textutil"
)

// MinTitleSimilarity is the lowest score FindSound accepts.
const MinTitleSimilarity = 0.6

// FindSound returns the index of the sound whose title best matches query.
// Titles containing query score 1; the rest score by the better of
// normalised Levenshtein similarity and token cosine similarity, so
// reordered words still match. ok is false when no title reaches MinTitleSimilarity.
func FindSound(sounds []Sound, query string) (index int, score float64, ok bool) {
	needle := normalizeTitle(query)
	if needle == "" {
		return -1, 0, false
	}
	index = -1
	for i, sound := range sounds {
		s := titleSimilarity(normalizeTitle(sound.Title), needle)
		if s > score {
			index, score = i, s
		}
	}
	return index, score, index >= 0 && score >= MinTitleSimilarity
}

func titleSimilarity(title, needle string) float64 {
	if title == "" {
		return 0
	}
	if strings.Contains(title, needle) {
		return 1
	}
	longest := max(utf8.RuneCountInString(title), utf8.RuneCountInString(needle))
	dist := levenshtein.ComputeDistance(title, needle)
	edit := 1 - float64(dist)/float64(longest)
	tokens := textutil.CosineSimilarity(textutil.NewFingerprint(title), textutil.NewFingerprint(needle))
	return max(edit, tokens)
}

func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
