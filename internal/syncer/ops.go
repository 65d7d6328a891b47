package syncer

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"bloom/internal/models"
	"bloom/internal/profilestore"
)

var (
	ErrInvalidPriority = errors.New("priority must be low, medium or high")
	ErrInvalidCategory = errors.New("category must be want or need")
	ErrInvalidRating   = errors.New("mood and energy must be within 1-5")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
)

// The nine slot setters. Each replaces the full value, synchronously in
// memory, and is fire-and-forget toward the store.

func (s *Synchronizer) SetDisplayName(name string) {
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.DisplayName = name
		return profilestore.SlotDisplayName, name
	})
}

// SetCompanionName also writes the device preference through immediately,
// independent of session state. That sink is registered in New.
func (s *Synchronizer) SetCompanionName(name string) {
	if name == "" {
		name = models.DefaultCompanionName
	}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.CompanionName = name
		return profilestore.SlotCompanionName, name
	})
}

func (s *Synchronizer) SetTasks(tasks []models.Task) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.Tasks = tasks
		return profilestore.SlotTasks, tasks
	})
}

func (s *Synchronizer) SetGoals(goals []models.Goal) {
	if goals == nil {
		goals = []models.Goal{}
	}
	for i := range goals {
		goals[i].Progress = models.ClampProgress(goals[i].Progress)
	}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.Goals = goals
		return profilestore.SlotGoals, goals
	})
}

func (s *Synchronizer) SetHealthMetrics(metrics []models.HealthMetric) {
	if metrics == nil {
		metrics = []models.HealthMetric{}
	}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.HealthMetrics = metrics
		return profilestore.SlotHealthMetrics, metrics
	})
}

func (s *Synchronizer) SetCycleInfo(info models.CycleInfo) {
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.CycleInfo = info
		return profilestore.SlotCycleInfo, info
	})
}

func (s *Synchronizer) SetSymptoms(symptoms []models.SymptomLog) {
	if symptoms == nil {
		symptoms = []models.SymptomLog{}
	}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.Symptoms = symptoms
		return profilestore.SlotSymptoms, symptoms
	})
}

func (s *Synchronizer) SetDiaryEntries(entries []models.DiaryEntry) {
	if entries == nil {
		entries = []models.DiaryEntry{}
	}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.DiaryEntries = entries
		return profilestore.SlotDiaryEntries, entries
	})
}

func (s *Synchronizer) SetPartnerReflection(pr models.PartnerReflection) {
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.PartnerReflection = pr
		return profilestore.SlotPartnerReflection, pr
	})
}

func (s *Synchronizer) SetChatHistory(history []models.ChatMessage) {
	if history == nil {
		history = []models.ChatMessage{}
	}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.ChatHistory = history
		return profilestore.SlotChatHistory, history
	})
}

// Domain operations layered on the slots. They mutate under the same lock
// as the setters so concurrent consumers cannot interleave half-applied
// collections.

func (s *Synchronizer) AddTask(text, priority string) (models.Task, error) {
	switch priority {
	case "":
		priority = models.PriorityMedium
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		return models.Task{}, ErrInvalidPriority
	}
	task := models.Task{ID: uuid.NewString(), Text: text, Priority: priority}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.Tasks = append(append([]models.Task{}, p.Tasks...), task)
		return profilestore.SlotTasks, p.Tasks
	})
	return task, nil
}

func (s *Synchronizer) ToggleTask(id string) bool {
	found := false
	s.mutate(func(p *models.UserProfile) (string, any) {
		tasks := append([]models.Task{}, p.Tasks...)
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i].Completed = !tasks[i].Completed
				found = true
			}
		}
		p.Tasks = tasks
		return profilestore.SlotTasks, tasks
	})
	return found
}

func (s *Synchronizer) RemoveTask(id string) bool {
	found := false
	s.mutate(func(p *models.UserProfile) (string, any) {
		tasks := make([]models.Task, 0, len(p.Tasks))
		for _, t := range p.Tasks {
			if t.ID == id {
				found = true
				continue
			}
			tasks = append(tasks, t)
		}
		p.Tasks = tasks
		return profilestore.SlotTasks, tasks
	})
	return found
}

func (s *Synchronizer) AddGoal(title, category, deadline, description string) (models.Goal, error) {
	if category != models.CategoryWant && category != models.CategoryNeed {
		return models.Goal{}, ErrInvalidCategory
	}
	if deadline != "" {
		if _, err := time.Parse(models.DateLabel, deadline); err != nil {
			return models.Goal{}, ErrInvalidDate
		}
	}
	goal := models.Goal{
		ID:          uuid.NewString(),
		Title:       title,
		Category:    category,
		Deadline:    deadline,
		Description: description,
	}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.Goals = append(append([]models.Goal{}, p.Goals...), goal)
		return profilestore.SlotGoals, p.Goals
	})
	return goal, nil
}

// SetGoalProgress clamps progress into [0,100]; the category never changes.
func (s *Synchronizer) SetGoalProgress(id string, progress int) bool {
	found := false
	s.mutate(func(p *models.UserProfile) (string, any) {
		goals := append([]models.Goal{}, p.Goals...)
		for i := range goals {
			if goals[i].ID == id {
				goals[i].Progress = models.ClampProgress(progress)
				found = true
			}
		}
		p.Goals = goals
		return profilestore.SlotGoals, goals
	})
	return found
}

// LogHealthMetric upserts the sample for a date label; a repeat log for the
// same day replaces the earlier one and the collection stays bounded to the
// most recent seven days.
func (s *Synchronizer) LogHealthMetric(date string, mood, energy int) error {
	if _, err := time.Parse(models.DateLabel, date); err != nil {
		return ErrInvalidDate
	}
	if mood < 1 || mood > 5 || energy < 1 || energy > 5 {
		return ErrInvalidRating
	}
	metric := models.HealthMetric{Date: date, Mood: mood, Energy: energy, CreatedAt: time.Now().UTC()}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.HealthMetrics = models.UpsertHealthMetric(p.HealthMetrics, metric)
		return profilestore.SlotHealthMetrics, p.HealthMetrics
	})
	return nil
}

// LogPeriodStart records the period start and recomputes the prediction
// fields from the fixed cycle length.
func (s *Synchronizer) LogPeriodStart(date string) error {
	start, err := time.Parse(models.DateLabel, date)
	if err != nil {
		return ErrInvalidDate
	}
	info := models.RecomputeCycle(start, time.Now().UTC())
	s.SetCycleInfo(info)
	return nil
}

func (s *Synchronizer) LogSymptoms(date string, symptoms []string, notes string) (models.SymptomLog, error) {
	if _, err := time.Parse(models.DateLabel, date); err != nil {
		return models.SymptomLog{}, ErrInvalidDate
	}
	entry := models.SymptomLog{
		ID:        uuid.NewString(),
		Date:      date,
		Symptoms:  symptoms,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.Symptoms = append(append([]models.SymptomLog{}, p.Symptoms...), entry)
		return profilestore.SlotSymptoms, p.Symptoms
	})
	return entry, nil
}

// AppendDiaryEntry is append-only; CreatedAt is assigned here and never
// mutated afterwards.
func (s *Synchronizer) AppendDiaryEntry(entry models.DiaryEntry) models.DiaryEntry {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.DiaryEntries = append(append([]models.DiaryEntry{}, p.DiaryEntries...), entry)
		return profilestore.SlotDiaryEntries, p.DiaryEntries
	})
	return entry
}

// AppendChatMessage appends to the conversation; order is semantically
// significant and preserved.
func (s *Synchronizer) AppendChatMessage(role, content string) {
	msg := models.ChatMessage{Role: role, Content: content}
	s.mutate(func(p *models.UserProfile) (string, any) {
		p.ChatHistory = append(append([]models.ChatMessage{}, p.ChatHistory...), msg)
		return profilestore.SlotChatHistory, p.ChatHistory
	})
}

// SavePartnerReflection replaces the singleton record; no history is kept.
func (s *Synchronizer) SavePartnerReflection(pr models.PartnerReflection) {
	s.SetPartnerReflection(pr)
}
