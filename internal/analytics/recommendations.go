package analytics

import (
	"fmt"
	"strings"
)

type RecommendationInput struct {
	WeakSubjects []SubjectShare
	// Sessions is the total session count. With none, the completion rate
	// is undefined and its rule stays silent.
	Sessions       int
	CompletionRate int
	Trend          Trend
}

type recommendationRule func(in RecommendationInput) (string, bool)

// Evaluated in order; each rule contributes at most one message.
var recommendationRules = []recommendationRule{
	weakSubjectsRule,
	completionRateRule,
	momentumRule,
}

// Recommend returns the advisory messages triggered by in, possibly none.
func Recommend(in RecommendationInput) []string {
	out := []string{}
	for _, rule := range recommendationRules {
		if msg, ok := rule(in); ok {
			out = append(out, msg)
		}
	}
	return out
}

func weakSubjectsRule(in RecommendationInput) (string, bool) {
	if len(in.WeakSubjects) == 0 {
		return "", false
	}
	names := make([]string, 0, len(in.WeakSubjects))
	for _, s := range in.WeakSubjects {
		names = append(names, s.Subject)
	}
	return fmt.Sprintf(
		"Increase focused study time for weaker subjects: %s. Aim to bring each to at least %.0f%% of your total study time.",
		strings.Join(names, ", "), WeakShareThreshold,
	), true
}

func completionRateRule(in RecommendationInput) (string, bool) {
	if in.Sessions == 0 {
		return "", false
	}
	switch {
	case in.CompletionRate < 50:
		return "Less than half of your study sessions are completed. Prioritize finishing pending tasks before adding new ones.", true
	case in.CompletionRate < 80:
		return "Your completion rate is decent. Consider tightening your schedule to close more sessions successfully.", true
	}
	return "", false
}

func momentumRule(in RecommendationInput) (string, bool) {
	if in.Trend.CurrentTotal >= in.Trend.PreviousTotal {
		return "", false
	}
	return "Your study time over the last 7 days is lower than the previous week. Consider scheduling shorter but consistent daily sessions to recover momentum.", true
}
