package services_test

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"bloom/internal/models"
	"bloom/internal/services"
)

func newService(t *testing.T) *services.EncryptionService {
	t.Helper()
	encKey := bytes.Repeat([]byte{0x42}, 32)
	idxKey := bytes.Repeat([]byte{0x17}, 32)
	svc, err := services.NewEncryptionService(encKey, idxKey)
	if err != nil {
		t.Fatalf("NewEncryptionService: %v", err)
	}
	return svc
}

func TestEmailEncryptionAndBlindIndex(t *testing.T) {
	svc := newService(t)

	enc, idx, err := svc.EncryptEmail("maya@example.com")
	if err != nil {
		t.Fatalf("EncryptEmail: %v", err)
	}
	if enc == "maya@example.com" {
		t.Fatalf("email stored in plaintext")
	}

	dec, err := svc.DecryptEmail(enc)
	if err != nil {
		t.Fatalf("DecryptEmail: %v", err)
	}
	if dec != "maya@example.com" {
		t.Fatalf("round trip mismatch: %q", dec)
	}

	// the blind index is deterministic so lookups work
	if svc.EmailBlindIndex("maya@example.com") != idx {
		t.Fatalf("blind index not deterministic")
	}
	if svc.EmailBlindIndex("other@example.com") == idx {
		t.Fatalf("distinct emails produced the same index")
	}
}

func TestDiaryEntriesSealOpenRoundTrip(t *testing.T) {
	svc := newService(t)
	entries := []models.DiaryEntry{
		{
			ID:          "d-1",
			DailyRemark: "went for a walk",
			DiaryEntry:  "a longer reflection about the day",
			Mood:        "content",
			CreatedAt:   time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC),
		},
	}

	sealed, err := svc.SealDiaryEntries(entries)
	if err != nil {
		t.Fatalf("SealDiaryEntries: %v", err)
	}
	if sealed == "" {
		t.Fatalf("non-empty collection sealed to empty ciphertext")
	}

	got, err := svc.OpenDiaryEntries(sealed)
	if err != nil {
		t.Fatalf("OpenDiaryEntries: %v", err)
	}
	if !reflect.DeepEqual(entries, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", entries, got)
	}
}

func TestEmptyCollectionsOpenToEmpty(t *testing.T) {
	svc := newService(t)

	diary, err := svc.OpenDiaryEntries("")
	if err != nil || len(diary) != 0 || diary == nil {
		t.Fatalf("expected empty non-nil diary, got %v (%v)", diary, err)
	}
	chat, err := svc.OpenChatHistory("")
	if err != nil || len(chat) != 0 || chat == nil {
		t.Fatalf("expected empty non-nil history, got %v (%v)", chat, err)
	}
}

func TestChatHistoryOrderPreserved(t *testing.T) {
	svc := newService(t)
	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleModel, Content: "hello!"},
		{Role: models.RoleUser, Content: "how are you"},
	}

	sealed, err := svc.SealChatHistory(history)
	if err != nil {
		t.Fatalf("SealChatHistory: %v", err)
	}
	got, err := svc.OpenChatHistory(sealed)
	if err != nil {
		t.Fatalf("OpenChatHistory: %v", err)
	}
	if !reflect.DeepEqual(history, got) {
		t.Fatalf("conversation order not preserved:\nwant %+v\ngot  %+v", history, got)
	}
}
