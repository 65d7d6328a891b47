package localstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"bloom/internal/localstore"
)

func TestSetGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s := localstore.Open(path, zap.NewNop())

	if _, ok := s.Get(localstore.KeyCompanionName); ok {
		t.Fatalf("expected empty store")
	}

	s.Set(localstore.KeyCompanionName, "Nova")
	got, ok := s.Get(localstore.KeyCompanionName)
	if !ok || got != "Nova" {
		t.Fatalf("expected Nova, got %q (present=%v)", got, ok)
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s := localstore.Open(path, zap.NewNop())
	s.Set(localstore.KeyCompanionName, "Nova")
	s.Set("theme", "dark")

	reopened := localstore.Open(path, zap.NewNop())
	for key, want := range map[string]string{localstore.KeyCompanionName: "Nova", "theme": "dark"} {
		got, ok := reopened.Get(key)
		if !ok || got != want {
			t.Fatalf("key %s: expected %q, got %q (present=%v)", key, want, got, ok)
		}
	}
}

func TestUndecodableFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s := localstore.Open(path, zap.NewNop())
	s.Set("k", "v")

	// corrupt the file, then reopen
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	reopened := localstore.Open(path, zap.NewNop())
	if _, ok := reopened.Get("k"); ok {
		t.Fatalf("expected corrupted store to start empty")
	}

	// and it still accepts writes
	reopened.Set("k2", "v2")
	if got, ok := reopened.Get("k2"); !ok || got != "v2" {
		t.Fatalf("store unusable after corruption recovery")
	}
}
