package models

import (
	"sort"
	"time"
)

// DefaultCompanionName is the hard-coded fallback when no device preference
// has been stored yet.
const DefaultCompanionName = "Lumi"

// CycleLength is the fixed cycle length used for predictions, in days.
const CycleLength = 28

// MaxHealthMetrics bounds the health metric collection to the most recent
// entries by date.
const MaxHealthMetrics = 7

func DefaultCycleInfo() CycleInfo {
	return CycleInfo{}
}

// DefaultProfile returns a fully-populated default document for a new
// account. CreatedAt is left zero; the store assigns it on create.
func DefaultProfile(userID, displayName, companionName string) *UserProfile {
	if companionName == "" {
		companionName = DefaultCompanionName
	}
	return &UserProfile{
		ID:            userID,
		DisplayName:   displayName,
		CompanionName: companionName,
		Tasks:         []Task{},
		Goals:         []Goal{},
		HealthMetrics: []HealthMetric{},
		CycleInfo:     DefaultCycleInfo(),
		Symptoms:      []SymptomLog{},
		DiaryEntries:  []DiaryEntry{},
		ChatHistory:   []ChatMessage{},
	}
}

// ClampProgress keeps goal progress within [0,100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// UpsertHealthMetric replaces the entry with the same date label in place,
// or appends and trims the collection to the MaxHealthMetrics most recent
// entries by date.
func UpsertHealthMetric(metrics []HealthMetric, m HealthMetric) []HealthMetric {
	for i := range metrics {
		if metrics[i].Date == m.Date {
			out := make([]HealthMetric, len(metrics))
			copy(out, metrics)
			out[i] = m
			return out
		}
	}
	out := make([]HealthMetric, 0, len(metrics)+1)
	out = append(out, metrics...)
	out = append(out, m)
	// YYYY-MM-DD labels sort chronologically as strings
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if len(out) > MaxHealthMetrics {
		out = out[len(out)-MaxHealthMetrics:]
	}
	return out
}

// RecomputeCycle derives the prediction fields from the last period start
// and the fixed cycle length. The period start counts as day 1.
func RecomputeCycle(lastPeriod, now time.Time) CycleInfo {
	last := lastPeriod.Truncate(24 * time.Hour)
	today := now.Truncate(24 * time.Hour)
	elapsed := int(today.Sub(last).Hours() / 24)
	if elapsed < 0 {
		elapsed = 0
	}
	next := last.AddDate(0, 0, CycleLength)
	remaining := CycleLength - elapsed%CycleLength
	for !next.After(today) {
		next = next.AddDate(0, 0, CycleLength)
	}
	return CycleInfo{
		CurrentDay:     elapsed%CycleLength + 1,
		NextPeriodIn:   remaining,
		PredictedDate:  next.Format(DateLabel),
		LastPeriodDate: last.Format(DateLabel),
	}
}
