package models

import "time"

// DateLabel is the wire format for day-granularity fields (YYYY-MM-DD).
const DateLabel = "2006-01-02"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	CategoryWant = "want"
	CategoryNeed = "need"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority"`
}

type Goal struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"` // want|need, immutable after creation
	Progress    int    `json:"progress"` // always within [0,100]
	Deadline    string `json:"deadline"` // YYYY-MM-DD
	Description string `json:"description,omitempty"`
}

type HealthMetric struct {
	Date      string    `json:"date"`   // YYYY-MM-DD, unique within the collection
	Mood      int       `json:"mood"`   // 1-5
	Energy    int       `json:"energy"` // 1-5
	CreatedAt time.Time `json:"created_at"`
}

type CycleInfo struct {
	CurrentDay     int    `json:"current_day"`
	NextPeriodIn   int    `json:"next_period_in"`
	PredictedDate  string `json:"predicted_date,omitempty"`
	LastPeriodDate string `json:"last_period_date,omitempty"`
}

type SymptomLog struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Symptoms  []string  `json:"symptoms"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type DiaryEntry struct {
	ID                 string    `json:"id"`
	DailyRemark        string    `json:"daily_remark"`
	DiaryEntry         string    `json:"diary_entry"`
	WantsNeedsProgress string    `json:"wants_needs_progress,omitempty"`
	Mood               string    `json:"mood,omitempty"`
	EnergyLevels       string    `json:"energy_levels,omitempty"`
	PartnerReflection  string    `json:"partner_reflection,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// PartnerReflection is a singleton per user; saves replace it wholesale.
type PartnerReflection struct {
	MyBehavior  string `json:"my_behavior"`
	HisBehavior string `json:"his_behavior"`
	ProgressLog string `json:"progress_log"`
	Plans       string `json:"plans"`
}

type ChatMessage struct {
	Role    string `json:"role"` // user|model
	Content string `json:"content"`
}

// UserProfile is the durable per-user document. The json tags double as the
// slot names accepted by the profile store's partial update.
type UserProfile struct {
	ID                string            `json:"id"`
	DisplayName       string            `json:"display_name"`
	CompanionName     string            `json:"companion_name"`
	Tasks             []Task            `json:"tasks"`
	Goals             []Goal            `json:"goals"`
	HealthMetrics     []HealthMetric    `json:"health_metrics"`
	CycleInfo         CycleInfo         `json:"cycle_info"`
	Symptoms          []SymptomLog      `json:"symptoms"`
	DiaryEntries      []DiaryEntry      `json:"diary_entries"`
	PartnerReflection PartnerReflection `json:"partner_reflection"`
	ChatHistory       []ChatMessage     `json:"chat_history"`
	CreatedAt         time.Time         `json:"created_at"`
}
