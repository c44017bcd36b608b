// Package analytics turns a user's study session history into derived metrics.
//
// Every function here is pure: it reads a materialized slice of sessions and
// never mutates it. Calendar days are taken in the location of the reference
// time the caller passes in (the server's local zone in production).
package analytics

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"studytrack-backend/internal/models"
)

const (
	dateKeyLayout = "2006-01-02"
	weekdayLayout = "Mon"

	// WeekDays is the width of the activity window shown on the overview.
	WeekDays = 7
)

// Minutes returns the session duration, treating NaN, infinities and
// negative values as zero.
func Minutes(s models.StudySession) float64 {
	d := s.DurationMinutes
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}

func TotalDurationMinutes(sessions []models.StudySession) float64 {
	var total float64
	for _, s := range sessions {
		total += Minutes(s)
	}
	return total
}

type SessionCounts struct {
	Total     int
	Completed int
}

func CountSessions(sessions []models.StudySession) SessionCounts {
	c := SessionCounts{Total: len(sessions)}
	for _, s := range sessions {
		if s.Status == models.StatusCompleted {
			c.Completed++
		}
	}
	return c
}

// CompletionRate is the completed share in whole percent, 0 when there are no sessions.
func CompletionRate(c SessionCounts) int {
	if c.Total <= 0 {
		return 0
	}
	return RoundHalfUp(100 * float64(c.Completed) / float64(c.Total))
}

// RoundHalfUp rounds to the nearest integer, halves towards +Inf.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// RoundTenths rounds to one decimal place, halves towards +Inf.
func RoundTenths(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

func HoursFromMinutes(m float64) float64 {
	return RoundTenths(m / 60)
}

type SubjectStat struct {
	Subject         string  `json:"-"`
	DurationMinutes float64 `json:"duration"`
	Count           int     `json:"count"`
	CompletedCount  int     `json:"completed"`
}

// SubjectStats keeps subjects in first-seen order.
type SubjectStats []SubjectStat

// MarshalJSON encodes the stats as an object keyed by subject, preserving order.
func (s SubjectStats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, stat := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(stat.Subject)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(stat)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s SubjectStats) TotalMinutes() float64 {
	var total float64
	for _, stat := range s {
		total += stat.DurationMinutes
	}
	return total
}

// AggregateSubjects groups sessions by exact subject. Sessions without a
// subject are skipped.
func AggregateSubjects(sessions []models.StudySession) SubjectStats {
	stats := SubjectStats{}
	index := make(map[string]int)

	for _, s := range sessions {
		if s.Subject == "" {
			continue
		}
		i, ok := index[s.Subject]
		if !ok {
			i = len(stats)
			index[s.Subject] = i
			stats = append(stats, SubjectStat{Subject: s.Subject})
		}
		stats[i].DurationMinutes += Minutes(s)
		stats[i].Count++
		if s.Status == models.StatusCompleted {
			stats[i].CompletedCount++
		}
	}
	return stats
}

type DayBucket struct {
	Label           string  `json:"date"`
	Key             string  `json:"fullDate"`
	DurationMinutes float64 `json:"duration"`
}

// DateKey is the YYYY-MM-DD calendar date of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateKeyLayout)
}

// DailyBuckets returns windowDays consecutive calendar-day buckets ending on
// ref's day, oldest first. Sessions outside the window are ignored.
func DailyBuckets(sessions []models.StudySession, windowDays int, ref time.Time) []DayBucket {
	buckets := emptyBuckets(windowDays, ref)

	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
	}

	loc := ref.Location()
	for _, s := range sessions {
		day := s.Day()
		if day.IsZero() {
			continue
		}
		if i, ok := index[DateKey(day, loc)]; ok {
			buckets[i].DurationMinutes += Minutes(s)
		}
	}
	return buckets
}

func emptyBuckets(windowDays int, ref time.Time) []DayBucket {
	if windowDays <= 0 {
		return []DayBucket{}
	}

	loc := ref.Location()
	y, m, d := ref.Date()
	buckets := make([]DayBucket, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		// noon keeps DST transitions from shifting the date
		day := time.Date(y, m, d-i, 12, 0, 0, 0, loc)
		buckets = append(buckets, DayBucket{
			Label: day.Format(weekdayLayout),
			Key:   day.Format(dateKeyLayout),
		})
	}
	return buckets
}

func sumBuckets(buckets []DayBucket) float64 {
	var total float64
	for _, b := range buckets {
		total += b.DurationMinutes
	}
	return total
}
