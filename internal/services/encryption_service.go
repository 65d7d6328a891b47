package services

import (
	"encoding/json"

	"bloom/internal/crypto"
	"bloom/internal/models"
)

// EncryptionService wraps the cipher with domain-specific methods for the
// fields stored encrypted at rest: account emails, diary entries and chat
// history.
type EncryptionService struct {
	cipher *crypto.Cipher
}

// NewEncryptionService creates a new encryption service.
func NewEncryptionService(encryptionKey, blindIndexKey []byte) (*EncryptionService, error) {
	c, err := crypto.NewCipher(encryptionKey, blindIndexKey)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{cipher: c}, nil
}

// EncryptEmail encrypts an account email and returns the ciphertext plus
// the blind index used for lookups.
func (s *EncryptionService) EncryptEmail(email string) (encrypted, blindIndex string, err error) {
	return s.cipher.SealWithBlindIndex(email)
}

// DecryptEmail decrypts a stored account email.
func (s *EncryptionService) DecryptEmail(encrypted string) (string, error) {
	return s.cipher.OpenString(encrypted)
}

// EmailBlindIndex computes the lookup index for an email without encrypting it.
func (s *EncryptionService) EmailBlindIndex(email string) string {
	return s.cipher.BlindIndex(email)
}

// SealDiaryEntries serializes and encrypts the diary collection for storage.
func (s *EncryptionService) SealDiaryEntries(entries []models.DiaryEntry) (string, error) {
	if entries == nil {
		entries = []models.DiaryEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return s.cipher.Seal(raw)
}

// OpenDiaryEntries decrypts and deserializes a stored diary collection.
// An empty ciphertext yields an empty collection.
func (s *EncryptionService) OpenDiaryEntries(sealed string) ([]models.DiaryEntry, error) {
	raw, err := s.cipher.Open(sealed)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []models.DiaryEntry{}, nil
	}
	var entries []models.DiaryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SealChatHistory serializes and encrypts the companion conversation.
func (s *EncryptionService) SealChatHistory(history []models.ChatMessage) (string, error) {
	if history == nil {
		history = []models.ChatMessage{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return s.cipher.Seal(raw)
}

// OpenChatHistory decrypts and deserializes a stored conversation.
func (s *EncryptionService) OpenChatHistory(sealed string) ([]models.ChatMessage, error) {
	raw, err := s.cipher.Open(sealed)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []models.ChatMessage{}, nil
	}
	var history []models.ChatMessage
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, err
	}
	return history, nil
}
