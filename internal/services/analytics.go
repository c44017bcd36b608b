package services

import (
	"context"
	"fmt"
	"time"

	"studytrack-backend/internal/analytics"
	"studytrack-backend/internal/logging"
	"studytrack-backend/internal/models"
)

// SessionReader is the part of the session repository analytics needs.
type SessionReader interface {
	FindByOwner(ctx context.Context, ownerID string) ([]models.StudySession, error)
}

// UserLister enumerates every account for the admin rollup.
type UserLister interface {
	ListAll(ctx context.Context) ([]models.User, error)
}

type Overview struct {
	TotalHours        float64                `json:"totalHours"`
	TotalSessions     int                    `json:"totalSessions"`
	CompletedSessions int                    `json:"completedSessions"`
	CompletionRate    int                    `json:"completionRate"`
	SubjectStats      analytics.SubjectStats `json:"subjectStats"`
	WeeklyActivity    []analytics.DayBucket  `json:"weeklyActivity"`
	Insights          []string               `json:"insights"`
}

type Recommendations struct {
	Recommendations []string `json:"recommendations"`
}

type RollupTotals struct {
	TotalHours        float64 `json:"totalHours"`
	TotalSessions     int     `json:"totalSessions"`
	CompletedSessions int     `json:"completedSessions"`
	CompletionRate    int     `json:"completionRate"`
}

type UserRollup struct {
	User models.CurrentUser `json:"user"`
	RollupTotals
}

type AdminRollup struct {
	Global  RollupTotals `json:"global"`
	PerUser []UserRollup `json:"perUser"`
}

// AnalyticsService fetches a user's session history once per request and
// derives every metric from it in memory.
type AnalyticsService struct {
	sessions SessionReader
	users    UserLister
	log      logging.Logger
	now      func() time.Time
}

type AnalyticsOption func(*AnalyticsService)

// WithClock replaces the wall clock; the clock's location decides calendar days.
func WithClock(now func() time.Time) AnalyticsOption {
	return func(s *AnalyticsService) { s.now = now }
}

func NewAnalyticsService(sessions SessionReader, users UserLister, log logging.Logger, opts ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{
		sessions: sessions,
		users:    users,
		log:      log.With("component", "analytics_service"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AnalyticsService) history(ctx context.Context, ownerID string) ([]models.StudySession, error) {
	sessions, err := s.sessions.FindByOwner(ctx, ownerID)
	if err != nil {
		s.log.Error(ctx, "failed to fetch session history", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAnalyticsUnavailable, err)
	}
	return sessions, nil
}

func (s *AnalyticsService) Overview(ctx context.Context, ownerID string) (*Overview, error) {
	sessions, err := s.history(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	counts := analytics.CountSessions(sessions)
	subjects := analytics.AggregateSubjects(sessions)
	week := analytics.DailyBuckets(sessions, analytics.WeekDays, s.now())

	return &Overview{
		TotalHours:        analytics.HoursFromMinutes(analytics.TotalDurationMinutes(sessions)),
		TotalSessions:     counts.Total,
		CompletedSessions: counts.Completed,
		CompletionRate:    analytics.CompletionRate(counts),
		SubjectStats:      subjects,
		WeeklyActivity:    week,
		Insights:          analytics.Insights(analytics.InsightInput{Subjects: subjects, Week: week}),
	}, nil
}

func (s *AnalyticsService) WeakStrongSubjects(ctx context.Context, ownerID string) (*analytics.WeakStrong, error) {
	sessions, err := s.history(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ws := analytics.ClassifySubjects(analytics.AggregateSubjects(sessions))
	return &ws, nil
}

func (s *AnalyticsService) ConsistencyScore(ctx context.Context, ownerID string) (*analytics.Consistency, error) {
	sessions, err := s.history(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	c := analytics.ScoreConsistency(sessions, s.now())
	return &c, nil
}

func (s *AnalyticsService) Recommendations(ctx context.Context, ownerID string) (*Recommendations, error) {
	sessions, err := s.history(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	counts := analytics.CountSessions(sessions)
	in := analytics.RecommendationInput{
		WeakSubjects:   analytics.ClassifySubjects(analytics.AggregateSubjects(sessions)).Weak,
		Sessions:       counts.Total,
		CompletionRate: analytics.CompletionRate(counts),
		Trend:          analytics.CompareTrend(sessions, s.now()),
	}
	return &Recommendations{Recommendations: analytics.Recommend(in)}, nil
}

// AdminRollup computes per-user totals sequentially and sums them into the
// global figures. The global completion rate comes from the summed counts,
// not from averaging per-user rates.
func (s *AnalyticsService) AdminRollup(ctx context.Context) (*AdminRollup, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to list users for rollup", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAnalyticsUnavailable, err)
	}

	out := &AdminRollup{PerUser: make([]UserRollup, 0, len(users))}
	var global analytics.SessionCounts
	for i := range users {
		sessions, err := s.history(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}

		counts := analytics.CountSessions(sessions)
		hours := analytics.HoursFromMinutes(analytics.TotalDurationMinutes(sessions))
		out.PerUser = append(out.PerUser, UserRollup{
			User: users[i].Current(),
			RollupTotals: RollupTotals{
				TotalHours:        hours,
				TotalSessions:     counts.Total,
				CompletedSessions: counts.Completed,
				CompletionRate:    analytics.CompletionRate(counts),
			},
		})

		out.Global.TotalHours += hours
		global.Total += counts.Total
		global.Completed += counts.Completed
	}

	out.Global.TotalHours = analytics.RoundTenths(out.Global.TotalHours)
	out.Global.TotalSessions = global.Total
	out.Global.CompletedSessions = global.Completed
	out.Global.CompletionRate = analytics.CompletionRate(global)
	return out, nil
}
