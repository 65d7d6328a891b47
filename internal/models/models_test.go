package models_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"bloom/internal/models"
)

func TestClampProgress(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"negative", -5, 0},
		{"zero", 0, 0},
		{"in range", 42, 42},
		{"upper bound", 100, 100},
		{"above range", 150, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := models.ClampProgress(tc.in); got != tc.want {
				t.Fatalf("ClampProgress(%d) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func metric(date string, mood int) models.HealthMetric {
	return models.HealthMetric{
		Date:      date,
		Mood:      mood,
		Energy:    3,
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpsertHealthMetric_ReplacesExistingDate(t *testing.T) {
	metrics := []models.HealthMetric{metric("2025-03-01", 2), metric("2025-03-02", 3)}

	out := models.UpsertHealthMetric(metrics, metric("2025-03-01", 5))

	if len(out) != 2 {
		t.Fatalf("expected length unchanged (2), got %d", len(out))
	}
	if out[0].Date != "2025-03-01" || out[0].Mood != 5 {
		t.Fatalf("expected in-place replacement, got %+v", out[0])
	}
	// input untouched
	if metrics[0].Mood != 2 {
		t.Fatalf("input slice mutated: %+v", metrics[0])
	}
}

func TestUpsertHealthMetric_AppendsAndTrims(t *testing.T) {
	var metrics []models.HealthMetric
	days := []string{"2025-03-01", "2025-03-02", "2025-03-03", "2025-03-04",
		"2025-03-05", "2025-03-06", "2025-03-07", "2025-03-08"}
	for _, d := range days {
		metrics = models.UpsertHealthMetric(metrics, metric(d, 3))
	}

	if len(metrics) != models.MaxHealthMetrics {
		t.Fatalf("expected %d entries, got %d", models.MaxHealthMetrics, len(metrics))
	}
	// oldest day dropped, most recent kept
	if metrics[0].Date != "2025-03-02" {
		t.Fatalf("expected oldest kept to be 2025-03-02, got %s", metrics[0].Date)
	}
	if metrics[len(metrics)-1].Date != "2025-03-08" {
		t.Fatalf("expected newest to be 2025-03-08, got %s", metrics[len(metrics)-1].Date)
	}
}

func TestRecomputeCycle(t *testing.T) {
	last := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("same day", func(t *testing.T) {
		info := models.RecomputeCycle(last, last)
		if info.CurrentDay != 1 {
			t.Fatalf("expected day 1 on period start, got %d", info.CurrentDay)
		}
		if info.NextPeriodIn != models.CycleLength {
			t.Fatalf("expected %d days to next period, got %d", models.CycleLength, info.NextPeriodIn)
		}
		if info.PredictedDate != "2025-03-29" {
			t.Fatalf("expected prediction 2025-03-29, got %s", info.PredictedDate)
		}
	})

	t.Run("ten days in", func(t *testing.T) {
		info := models.RecomputeCycle(last, last.AddDate(0, 0, 10))
		if info.CurrentDay != 11 {
			t.Fatalf("expected day 11, got %d", info.CurrentDay)
		}
		if info.NextPeriodIn != 18 {
			t.Fatalf("expected 18 days remaining, got %d", info.NextPeriodIn)
		}
	})

	t.Run("wraps past one cycle", func(t *testing.T) {
		info := models.RecomputeCycle(last, last.AddDate(0, 0, 30))
		if info.CurrentDay != 3 {
			t.Fatalf("expected day 3 of the next cycle, got %d", info.CurrentDay)
		}
		if info.LastPeriodDate != "2025-03-01" {
			t.Fatalf("last period date changed: %s", info.LastPeriodDate)
		}
	})
}

func sampleProfile(collections int) *models.UserProfile {
	p := models.DefaultProfile("u-1", "Maya", "Lumi")
	p.CreatedAt = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	for i := 0; i < collections; i++ {
		p.Tasks = append(p.Tasks, models.Task{ID: "t", Text: "water the plants", Priority: models.PriorityLow})
		p.Goals = append(p.Goals, models.Goal{ID: "g", Title: "read more", Category: models.CategoryWant, Progress: 40, Deadline: "2025-06-01"})
		p.HealthMetrics = append(p.HealthMetrics, metric("2025-03-01", 4))
		p.Symptoms = append(p.Symptoms, models.SymptomLog{ID: "s", Date: "2025-03-01", Symptoms: []string{"cramps"}, CreatedAt: p.CreatedAt})
		p.DiaryEntries = append(p.DiaryEntries, models.DiaryEntry{ID: "d", DailyRemark: "good day", DiaryEntry: "long text", CreatedAt: p.CreatedAt})
		p.ChatHistory = append(p.ChatHistory,
			models.ChatMessage{Role: models.RoleUser, Content: "hi"},
			models.ChatMessage{Role: models.RoleModel, Content: "hello!"})
	}
	p.CycleInfo = models.CycleInfo{CurrentDay: 5, NextPeriodIn: 24, PredictedDate: "2025-03-25", LastPeriodDate: "2025-02-25"}
	p.PartnerReflection = models.PartnerReflection{MyBehavior: "good", HisBehavior: "okay", ProgressLog: "talked", Plans: "dinner"}
	return p
}

func TestUserProfileRoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 5} {
		p := sampleProfile(size)
		raw, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var got models.UserProfile
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !reflect.DeepEqual(*p, got) {
			t.Fatalf("round trip mismatch for %d collection entries:\nwant %+v\ngot  %+v", size, *p, got)
		}
	}
}
