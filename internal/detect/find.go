package detect

import (
	"sort"
	"strings"
	"unicode"
)

// Match is a detection that matched a textual description.
type Match struct {
	Detection
	MatchScore float64 `json:"match_score"`
}

// FindByDescription filters detections down to those whose class label
// matches the free-text description, ranked by match score then
// confidence.
//
// There is no open-vocabulary model behind this: the score is the fraction
// of the class label's tokens that appear in the description ("a red car
// parked outside" matches class "car" with score 1.0). Zero-score
// detections are dropped.
func FindByDescription(description string, dets []Detection) []Match {
	descTokens := tokenSet(description)
	if len(descTokens) == 0 {
		return nil
	}

	var matches []Match
	for _, det := range dets {
		classTokens := tokenize(det.Class)
		if len(classTokens) == 0 {
			continue
		}
		hits := 0
		for _, t := range classTokens {
			if descTokens[t] {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		matches = append(matches, Match{
			Detection:  det,
			MatchScore: float64(hits) / float64(len(classTokens)),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, t := range tokenize(s) {
		set[t] = true
	}
	return set
}
