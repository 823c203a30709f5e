package dimension

import (
	"math"
	"strings"

	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

// Textual depth thresholds: a field longer than this counts as a "deep"
// answer for its kind.
const (
	philosophyDepthChars = 100
	responseDepthChars   = 50
	traitDepthChars      = 30
)

const (
	depthWeight = 0.6
	styleWeight = 0.4
)

// EmotionalDepth blends how evenly matched two profiles are in textual
// depth (weight 0.6) with how compatible their emotional styles are
// (weight 0.4). Profiles with no textual fields at all score Neutral.
func EmotionalDepth(a, b *profile.UserProfile) float64 {
	depthA, okA := depthScore(a)
	depthB, okB := depthScore(b)
	if !okA || !okB {
		return Neutral
	}

	depthMatch := 1 - math.Abs(depthA-depthB)
	return clamp01(depthWeight*depthMatch + styleWeight*styleCompatibility(a, b))
}

// depthScore is the fraction of a profile's textual fields that exceed
// their depth threshold. ok is false when the profile has no textual
// fields to measure.
func depthScore(p *profile.UserProfile) (score float64, ok bool) {
	var fields, deep int

	if p.Philosophy != "" {
		fields++
		if len(p.Philosophy) > philosophyDepthChars {
			deep++
		}
	}
	for _, answer := range p.Responses {
		if answer == "" {
			continue
		}
		fields++
		if len(answer) > responseDepthChars {
			deep++
		}
	}
	for _, desc := range p.Traits {
		if desc == "" {
			continue
		}
		fields++
		if len(desc) > traitDepthChars {
			deep++
		}
	}

	if fields == 0 {
		return 0, false
	}
	return float64(deep) / float64(fields), true
}

// styleCompatibility detects emotional style groups from trait names and
// descriptions. Identical groups overlap by Jaccard; a complementary group
// pair (per the fixed table) earns a bonus. No detected style on either
// side is Neutral.
func styleCompatibility(a, b *profile.UserProfile) float64 {
	stylesA := detectStyles(a)
	stylesB := detectStyles(b)
	if len(stylesA) == 0 || len(stylesB) == 0 {
		return Neutral
	}

	score := setJaccard(stylesA, stylesB)
	for sa := range stylesA {
		for sb := range stylesB {
			if _, ok := complementaryStyleSet[[2]string{sa, sb}]; ok {
				score += 0.2
			}
		}
	}
	return clamp01(score)
}

func detectStyles(p *profile.UserProfile) map[string]struct{} {
	var text strings.Builder
	for name, desc := range p.Traits {
		text.WriteString(profile.Normalize(name))
		text.WriteByte(' ')
		text.WriteString(profile.Normalize(desc))
		text.WriteByte(' ')
	}
	blob := " " + text.String() + " "

	styles := make(map[string]struct{})
	for group, keywords := range emotionalStyleGroups {
		for _, kw := range keywords {
			if strings.Contains(blob, " "+kw+" ") {
				styles[group] = struct{}{}
				break
			}
		}
	}
	return styles
}
