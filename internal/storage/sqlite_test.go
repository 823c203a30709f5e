package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/Alexsovich5/DAPP-sub000/internal/embedding"
	"github.com/Alexsovich5/DAPP-sub000/internal/engine"
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}

	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestEmbeddingRoundTrip(t *testing.T) {
	s := openTestStore(t)

	p := &profile.UserProfile{
		ID:         "user-1",
		Version:    2,
		Interests:  []string{"hiking", "jazz", "cooking"},
		Philosophy: "honest conversation and shared curiosity about the world",
	}
	original := embedding.Generate(p)

	if err := s.PutEmbedding(original); err != nil {
		t.Fatalf("PutEmbedding: %v", err)
	}

	loaded, err := s.GetEmbedding("user-1", 2)
	if err != nil {
		t.Fatalf("GetEmbedding: %v", err)
	}
	if loaded.UserID != original.UserID || loaded.Version != original.Version {
		t.Errorf("identity = (%s, %d), want (%s, %d)",
			loaded.UserID, loaded.Version, original.UserID, original.Version)
	}
	for name, pair := range map[string][2][]float64{
		"personality":   {original.Personality, loaded.Personality},
		"interests":     {original.Interests, loaded.Interests},
		"values":        {original.Values, loaded.Values},
		"communication": {original.Communication, loaded.Communication},
	} {
		if diff := cmp.Diff(pair[0], pair[1]); diff != "" {
			t.Errorf("%s vector mismatch after round trip (-put +got):\n%s", name, diff)
		}
	}
}

func TestGetEmbedding_NotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetEmbedding("nobody", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetEmbedding(missing) error = %v, want ErrNotFound", err)
	}
}

func TestPutEmbedding_UpsertsSameVersion(t *testing.T) {
	s := openTestStore(t)

	p := &profile.UserProfile{ID: "user-1", Version: 1, Interests: []string{"chess"}}
	if err := s.PutEmbedding(embedding.Generate(p)); err != nil {
		t.Fatalf("first PutEmbedding: %v", err)
	}

	p.Interests = []string{"chess", "hiking"}
	updated := embedding.Generate(p)
	if err := s.PutEmbedding(updated); err != nil {
		t.Fatalf("second PutEmbedding: %v", err)
	}

	loaded, err := s.GetEmbedding("user-1", 1)
	if err != nil {
		t.Fatalf("GetEmbedding: %v", err)
	}
	if diff := cmp.Diff(updated.Interests, loaded.Interests); diff != "" {
		t.Errorf("upsert did not replace the row (-want +got):\n%s", diff)
	}
}

func TestDeleteEmbeddings(t *testing.T) {
	s := openTestStore(t)

	for v := 1; v <= 3; v++ {
		p := &profile.UserProfile{ID: "user-1", Version: v}
		if err := s.PutEmbedding(embedding.Generate(p)); err != nil {
			t.Fatalf("PutEmbedding v%d: %v", v, err)
		}
	}

	if err := s.DeleteEmbeddings("user-1"); err != nil {
		t.Fatalf("DeleteEmbeddings: %v", err)
	}
	if _, err := s.GetEmbedding("user-1", 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetEmbedding after delete error = %v, want ErrNotFound", err)
	}
}

func testResult(userA, userB string, overall float64, at time.Time) engine.Result {
	return engine.Result{
		ID:         uuid.NewString(),
		UserA:      userA,
		UserB:      userB,
		Overall:    overall,
		Confidence: 66.7,
		Breakdown: map[string]float64{
			"interests": 80.0,
			"values":    50.0,
		},
		GeneratedAt: at,
	}
}

func TestResultRoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := testResult("alice", "bob", 72.5, time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC))
	if err := s.SaveResult(want); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	got, err := s.GetResult(want.ID)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestGetResult_NotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetResult("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetResult(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRecentResults(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	oldest := testResult("alice", "bob", 60, base)
	middle := testResult("carol", "alice", 70, base.Add(time.Hour))
	newest := testResult("alice", "dave", 80, base.Add(2*time.Hour))
	other := testResult("bob", "carol", 90, base.Add(3*time.Hour))

	for _, r := range []engine.Result{oldest, middle, newest, other} {
		if err := s.SaveResult(r); err != nil {
			t.Fatalf("SaveResult(%s): %v", r.ID, err)
		}
	}

	results, err := s.RecentResults("alice", 2)
	if err != nil {
		t.Fatalf("RecentResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	// Newest first, both sides of the pair, limit enforced.
	if results[0].ID != newest.ID || results[1].ID != middle.ID {
		t.Errorf("got ids [%s %s], want [%s %s]",
			results[0].ID, results[1].ID, newest.ID, middle.ID)
	}
}

func TestDecodeFloat64s_CorruptLength(t *testing.T) {
	if _, err := decodeFloat64s([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for byte length not divisible by 8")
	}
}
