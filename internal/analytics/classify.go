package analytics

import (
	"time"

	"studytrack-backend/internal/models"
)

// WeakShareThreshold is the share of total study time, in percent, below
// which a subject counts as weak.
const WeakShareThreshold = 20.0

type SubjectShare struct {
	Subject    string  `json:"subject"`
	TotalTime  float64 `json:"totalTime"`
	Percentage float64 `json:"percentage"`
}

type WeakStrong struct {
	Weak   []SubjectShare `json:"weakSubjects"`
	Strong []SubjectShare `json:"strongSubjects"`
}

// ClassifySubjects splits subjects by their share of total study time.
// With no recorded time both lists are empty.
func ClassifySubjects(stats SubjectStats) WeakStrong {
	out := WeakStrong{Weak: []SubjectShare{}, Strong: []SubjectShare{}}

	total := stats.TotalMinutes()
	if total <= 0 {
		return out
	}

	for _, stat := range stats {
		pct := 100 * stat.DurationMinutes / total
		share := SubjectShare{
			Subject:    stat.Subject,
			TotalTime:  stat.DurationMinutes,
			Percentage: RoundTenths(pct),
		}
		if pct < WeakShareThreshold {
			out.Weak = append(out.Weak, share)
		} else {
			out.Strong = append(out.Strong, share)
		}
	}
	return out
}

type Level string

const (
	LevelPoor      Level = "Poor"
	LevelAverage   Level = "Average"
	LevelExcellent Level = "Excellent"
)

func LevelFor(score int) Level {
	switch {
	case score >= 71:
		return LevelExcellent
	case score >= 41:
		return LevelAverage
	default:
		return LevelPoor
	}
}

type Consistency struct {
	Score int   `json:"consistencyScore"`
	Level Level `json:"level"`
}

// ScoreConsistency is the share of calendar days, from the first recorded
// session through today inclusive, on which the user studied at all.
// Sessions without a usable date are ignored.
func ScoreConsistency(sessions []models.StudySession, now time.Time) Consistency {
	poor := Consistency{Score: 0, Level: LevelPoor}
	if len(sessions) == 0 {
		return poor
	}

	loc := now.Location()
	var first time.Time
	days := make(map[string]struct{})

	for _, s := range sessions {
		day := s.Day()
		if day.IsZero() {
			continue
		}
		days[DateKey(day, loc)] = struct{}{}
		if first.IsZero() || day.Before(first) {
			first = day
		}
	}
	if first.IsZero() {
		return poor
	}

	totalDays := calendarDaysBetween(first, now, loc) + 1
	if totalDays <= 0 {
		return poor
	}

	score := RoundHalfUp(100 * float64(len(days)) / float64(totalDays))
	if score > 100 {
		// sessions dated in the future can add days beyond today
		score = 100
	}
	return Consistency{Score: score, Level: LevelFor(score)}
}

// calendarDaysBetween counts midnights crossed from from's date to to's date in loc.
func calendarDaysBetween(from, to time.Time, loc *time.Location) int {
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
