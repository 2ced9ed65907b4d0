package store

import (
	"testing"

	"github.com/desertthunder/phonos/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := New(db)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestStore(t *testing.T) {
	t.Run("Token Round Trip", func(t *testing.T) {
		s := newTestStore(t)

		token, err := s.Token()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "" {
			t.Errorf("expected empty token initially, got %q", token)
		}

		if err := s.SetToken("app-token-1"); err != nil {
			t.Fatalf("failed to set token: %v", err)
		}

		token, err = s.Token()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "app-token-1" {
			t.Errorf("expected 'app-token-1', got %q", token)
		}
	})

	t.Run("SetToken Overwrites", func(t *testing.T) {
		s := newTestStore(t)

		if err := s.SetToken("first"); err != nil {
			t.Fatal(err)
		}
		if err := s.SetToken("second"); err != nil {
			t.Fatal(err)
		}

		token, _ := s.Token()
		if token != "second" {
			t.Errorf("expected 'second', got %q", token)
		}
	})

	t.Run("ClearToken", func(t *testing.T) {
		s := newTestStore(t)

		if err := s.SetToken("app-token"); err != nil {
			t.Fatal(err)
		}
		if err := s.ClearToken(); err != nil {
			t.Fatalf("failed to clear token: %v", err)
		}

		token, _ := s.Token()
		if token != "" {
			t.Errorf("expected empty token after clear, got %q", token)
		}
	})

	t.Run("Artifact Round Trip", func(t *testing.T) {
		s := newTestStore(t)

		if err := s.SaveArtifact("verifier-v", "state-s"); err != nil {
			t.Fatalf("failed to save artifact: %v", err)
		}

		verifier, state, err := s.Artifact()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if verifier != "verifier-v" || state != "state-s" {
			t.Errorf("unexpected artifact: %q / %q", verifier, state)
		}
	})

	t.Run("ClearArtifact Erases Both Keys", func(t *testing.T) {
		s := newTestStore(t)

		if err := s.SaveArtifact("v", "s"); err != nil {
			t.Fatal(err)
		}
		if err := s.ClearArtifact(); err != nil {
			t.Fatalf("failed to clear artifact: %v", err)
		}

		verifier, state, err := s.Artifact()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if verifier != "" || state != "" {
			t.Errorf("expected empty artifact after clear, got %q / %q", verifier, state)
		}
	})

	t.Run("Artifact Does Not Touch Token", func(t *testing.T) {
		s := newTestStore(t)

		if err := s.SetToken("keep-me"); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveArtifact("v", "s"); err != nil {
			t.Fatal(err)
		}
		if err := s.ClearArtifact(); err != nil {
			t.Fatal(err)
		}

		token, _ := s.Token()
		if token != "keep-me" {
			t.Errorf("expected token preserved, got %q", token)
		}
	})
}
