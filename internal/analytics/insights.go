package analytics

import "fmt"

type InsightInput struct {
	Subjects SubjectStats
	Week     []DayBucket
}

type insightRule func(in InsightInput) (string, bool)

var insightRules = []insightRule{
	lowestCompletionInsight,
	weekendInsight,
	activeDaysInsight,
}

// activeDaysForStreak is how many days with study time in the week earn the
// consistency insight.
const activeDaysForStreak = 5

// Insights returns the short observations shown on the overview.
func Insights(in InsightInput) []string {
	out := []string{}
	for _, rule := range insightRules {
		if msg, ok := rule(in); ok {
			out = append(out, msg)
		}
	}
	return out
}

func lowestCompletionInsight(in InsightInput) (string, bool) {
	subject := ""
	minRate := 101.0
	for _, stat := range in.Subjects {
		if stat.Count == 0 {
			continue
		}
		rate := 100 * float64(stat.CompletedCount) / float64(stat.Count)
		if rate < minRate {
			minRate = rate
			subject = stat.Subject
		}
	}
	if subject == "" {
		return "", false
	}
	return fmt.Sprintf("%s needs more focus (Completion rate: %d%%)", subject, RoundHalfUp(minRate)), true
}

func weekendInsight(in InsightInput) (string, bool) {
	var weekend, weekday float64
	for _, b := range in.Week {
		if b.Label == "Sat" || b.Label == "Sun" {
			weekend += b.DurationMinutes
		} else {
			weekday += b.DurationMinutes
		}
	}
	switch {
	case weekend > weekday:
		return "You study more on weekends", true
	case weekday > 0:
		return "Consistent weekday study habits detected", true
	}
	return "", false
}

func activeDaysInsight(in InsightInput) (string, bool) {
	active := 0
	for _, b := range in.Week {
		if b.DurationMinutes > 0 {
			active++
		}
	}
	if active < activeDaysForStreak {
		return "", false
	}
	return "Study consistency improved this week! Keep it up.", true
}
