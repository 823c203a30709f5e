package dimension

import (
	"strings"

	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

// highPriorityBonus is added per shared high-priority goal category on top
// of raw category alignment, capped at 1.0.
const highPriorityBonus = 0.1

// LifeGoals extracts goal-like phrases from core values and goal-indicating
// responses, buckets them into fixed categories, and scores alignment as
// Jaccard overlap of the category sets plus a bonus for shared
// high-priority categories. Profiles yielding no categories on either side
// score Neutral.
func LifeGoals(a, b *profile.UserProfile) float64 {
	catsA := goalCategorySet(a)
	catsB := goalCategorySet(b)
	if len(catsA) == 0 || len(catsB) == 0 {
		return Neutral
	}

	score := setJaccard(catsA, catsB)
	for _, hp := range highPriorityGoals {
		if _, inA := catsA[hp]; !inA {
			continue
		}
		if _, inB := catsB[hp]; inB {
			score += highPriorityBonus
		}
	}
	return clamp01(score)
}

// goalCategorySet buckets a profile's goal phrases into categories.
func goalCategorySet(p *profile.UserProfile) map[string]struct{} {
	phrases := extractGoalPhrases(p)
	cats := make(map[string]struct{})
	for _, phrase := range phrases {
		blob := " " + phrase + " "
		for cat, keywords := range goalCategories {
			if _, done := cats[cat]; done {
				continue
			}
			for _, kw := range keywords {
				if strings.Contains(blob, " "+kw+" ") {
					cats[cat] = struct{}{}
					break
				}
			}
		}
	}
	return cats
}

// extractGoalPhrases collects normalized phrases that read like goals:
// every core-value statement (with its category name), plus responses
// whose question or answer carries a goal keyword.
func extractGoalPhrases(p *profile.UserProfile) []string {
	var phrases []string
	for category, statements := range p.CoreValues {
		phrase := profile.Normalize(category + " " + strings.Join(statements, " "))
		if phrase != "" {
			phrases = append(phrases, phrase)
		}
	}
	for question, answer := range p.Responses {
		q := profile.Normalize(question)
		ans := profile.Normalize(answer)
		if ans == "" {
			continue
		}
		if containsAnyWord(q, goalKeywords) || containsAnyWord(ans, goalKeywords) {
			phrases = append(phrases, ans)
		}
	}
	return phrases
}

func containsAnyWord(normalized string, keywords []string) bool {
	blob := " " + normalized + " "
	for _, kw := range keywords {
		if strings.Contains(blob, " "+kw+" ") {
			return true
		}
	}
	return false
}
