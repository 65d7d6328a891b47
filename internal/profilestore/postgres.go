package profilestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"bloom/internal/models"
	"bloom/internal/services"
)

// Postgres stores one profile row per user with a JSONB column per slot.
// Diary entries and chat history are encrypted before they reach the row.
type Postgres struct {
	db     *sqlx.DB
	encSvc *services.EncryptionService
}

func NewPostgres(db *sqlx.DB, encSvc *services.EncryptionService) *Postgres {
	return &Postgres{db: db, encSvc: encSvc}
}

var _ Store = (*Postgres)(nil)

type profileRow struct {
	UserID            string    `db:"user_id"`
	DisplayName       string    `db:"display_name"`
	CompanionName     string    `db:"companion_name"`
	Tasks             []byte    `db:"tasks"`
	Goals             []byte    `db:"goals"`
	HealthMetrics     []byte    `db:"health_metrics"`
	CycleInfo         []byte    `db:"cycle_info"`
	Symptoms          []byte    `db:"symptoms"`
	PartnerReflection []byte    `db:"partner_reflection"`
	DiaryEntries      string    `db:"diary_entries"`
	ChatHistory       string    `db:"chat_history"`
	CreatedAt         time.Time `db:"created_at"`
}

func (p *Postgres) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	var row profileRow
	err := p.db.GetContext(ctx, &row, `SELECT user_id, display_name, companion_name, tasks, goals, health_metrics, cycle_info, symptoms, partner_reflection, diary_entries, chat_history, created_at FROM profiles WHERE user_id=$1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p.decode(&row)
}

func (p *Postgres) decode(row *profileRow) (*models.UserProfile, error) {
	out := &models.UserProfile{
		ID:            row.UserID,
		DisplayName:   row.DisplayName,
		CompanionName: row.CompanionName,
		CreatedAt:     row.CreatedAt,
	}
	// Malformed or empty columns fall back to defaults rather than failing
	// the whole load; a partial document must still hydrate.
	out.Tasks = decodeSlice[models.Task](row.Tasks)
	out.Goals = decodeSlice[models.Goal](row.Goals)
	out.HealthMetrics = decodeSlice[models.HealthMetric](row.HealthMetrics)
	out.Symptoms = decodeSlice[models.SymptomLog](row.Symptoms)
	if len(row.CycleInfo) > 0 {
		_ = json.Unmarshal(row.CycleInfo, &out.CycleInfo)
	}
	if len(row.PartnerReflection) > 0 {
		_ = json.Unmarshal(row.PartnerReflection, &out.PartnerReflection)
	}

	diary, err := p.encSvc.OpenDiaryEntries(row.DiaryEntries)
	if err != nil {
		return nil, fmt.Errorf("decrypt diary entries: %w", err)
	}
	out.DiaryEntries = diary

	chat, err := p.encSvc.OpenChatHistory(row.ChatHistory)
	if err != nil {
		return nil, fmt.Errorf("decrypt chat history: %w", err)
	}
	out.ChatHistory = chat
	return out, nil
}

func decodeSlice[T any](raw []byte) []T {
	out := []T{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func (p *Postgres) Create(ctx context.Context, userID string, profile *models.UserProfile) error {
	fields := map[string]any{
		SlotDisplayName:       profile.DisplayName,
		SlotCompanionName:     profile.CompanionName,
		SlotTasks:             profile.Tasks,
		SlotGoals:             profile.Goals,
		SlotHealthMetrics:     profile.HealthMetrics,
		SlotCycleInfo:         profile.CycleInfo,
		SlotSymptoms:          profile.Symptoms,
		SlotPartnerReflection: profile.PartnerReflection,
		SlotDiaryEntries:      profile.DiaryEntries,
		SlotChatHistory:       profile.ChatHistory,
	}
	cols := []string{"user_id"}
	placeholders := []string{"$1"}
	args := []any{userID}
	for _, name := range slotOrder {
		val, err := p.encode(name, fields[name])
		if err != nil {
			return err
		}
		args = append(args, val)
		cols = append(cols, name)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := "INSERT INTO profiles (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ") RETURNING created_at"
	if err := p.db.QueryRowxContext(ctx, query, args...).Scan(&profile.CreatedAt); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, userID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	setClauses := []string{}
	args := []any{}
	for _, name := range slotOrder {
		val, ok := fields[name]
		if !ok {
			continue
		}
		encoded, err := p.encode(name, val)
		if err != nil {
			return err
		}
		args = append(args, encoded)
		setClauses = append(setClauses, fmt.Sprintf("%s=$%d", name, len(args)))
	}
	if len(setClauses) != len(fields) {
		return fmt.Errorf("update profile: unknown slot in %v", keys(fields))
	}

	args = append(args, userID)
	query := "UPDATE profiles SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE user_id=$%d", len(args))
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// slotOrder fixes the column order for deterministic statements.
var slotOrder = []string{
	SlotDisplayName,
	SlotCompanionName,
	SlotTasks,
	SlotGoals,
	SlotHealthMetrics,
	SlotCycleInfo,
	SlotSymptoms,
	SlotPartnerReflection,
	SlotDiaryEntries,
	SlotChatHistory,
}

func (p *Postgres) encode(name string, val any) (any, error) {
	switch name {
	case SlotDisplayName, SlotCompanionName:
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("slot %s: expected string, got %T", name, val)
		}
		return s, nil
	case SlotDiaryEntries:
		entries, ok := val.([]models.DiaryEntry)
		if !ok {
			return nil, fmt.Errorf("slot %s: expected []models.DiaryEntry, got %T", name, val)
		}
		return p.encSvc.SealDiaryEntries(entries)
	case SlotChatHistory:
		history, ok := val.([]models.ChatMessage)
		if !ok {
			return nil, fmt.Errorf("slot %s: expected []models.ChatMessage, got %T", name, val)
		}
		return p.encSvc.SealChatHistory(history)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", name, err)
		}
		return raw, nil
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
