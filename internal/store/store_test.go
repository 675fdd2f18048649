package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ValleyOfWalls/wildhand/internal/card"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wildhand.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProfileSaveLoad(t *testing.T) {
	s := openTestStore(t)

	p := Profile{
		Name:        "Ash",
		PetSpecies:  "Emberwolf",
		HandlerDeck: []card.ID{1, 1, 2, 2, 5},
		PetDeck:     []card.ID{101, 101, 102},
	}
	if err := s.SaveProfile(context.Background(), p); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	loaded, err := s.Profile(context.Background(), "Ash")
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if loaded.Name != p.Name {
		t.Fatalf("expected name %q, got %q", p.Name, loaded.Name)
	}
	if loaded.PetSpecies != p.PetSpecies {
		t.Fatalf("expected species %q, got %q", p.PetSpecies, loaded.PetSpecies)
	}
	if len(loaded.HandlerDeck) != len(p.HandlerDeck) {
		t.Fatalf("expected %d handler cards, got %d", len(p.HandlerDeck), len(loaded.HandlerDeck))
	}
	for i, id := range p.HandlerDeck {
		if loaded.HandlerDeck[i] != id {
			t.Fatalf("handler deck slot %d: expected %d, got %d", i, id, loaded.HandlerDeck[i])
		}
	}
	if len(loaded.PetDeck) != len(p.PetDeck) {
		t.Fatalf("expected %d pet cards, got %d", len(p.PetDeck), len(loaded.PetDeck))
	}
	for i, id := range p.PetDeck {
		if loaded.PetDeck[i] != id {
			t.Fatalf("pet deck slot %d: expected %d, got %d", i, id, loaded.PetDeck[i])
		}
	}
	if loaded.UpdatedAt.IsZero() {
		t.Fatal("expected UpdatedAt to be stamped")
	}
}

func TestProfileNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Profile(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestProfileRequiresName(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveProfile(context.Background(), Profile{}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := s.Profile(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestProfileCanceledContext(t *testing.T) {
	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.SaveProfile(ctx, Profile{Name: "Ash"}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := s.Profile(ctx, "Ash"); err == nil {
		t.Fatal("expected error")
	}
}

func TestProfilesListsInNameOrder(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"Brook", "Ash", "Cam"} {
		if err := s.SaveProfile(context.Background(), Profile{Name: name, PetSpecies: "Mosstoad"}); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	all, err := s.Profiles(context.Background())
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	want := []string{"Ash", "Brook", "Cam"}
	if len(all) != len(want) {
		t.Fatalf("expected %d profiles, got %d", len(want), len(all))
	}
	for i, name := range want {
		if all[i].Name != name {
			t.Fatalf("slot %d: expected %q, got %q", i, name, all[i].Name)
		}
	}
}

func TestRecordResultBumpsCounters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Ash", "Brook"} {
		if err := s.SaveProfile(ctx, Profile{Name: name, PetSpecies: "Galeraven"}); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	if err := s.RecordResult("Ash", "Brook", false); err != nil {
		t.Fatalf("record result: %v", err)
	}

	ash, err := s.Profile(ctx, "Ash")
	if err != nil {
		t.Fatalf("load Ash: %v", err)
	}
	if ash.Wins != 1 || ash.Losses != 0 {
		t.Fatalf("expected Ash at 1-0, got %d-%d", ash.Wins, ash.Losses)
	}
	brook, err := s.Profile(ctx, "Brook")
	if err != nil {
		t.Fatalf("load Brook: %v", err)
	}
	if brook.Wins != 0 || brook.Losses != 1 {
		t.Fatalf("expected Brook at 0-1, got %d-%d", brook.Wins, brook.Losses)
	}

	// A draw is logged but counts toward neither record.
	if err := s.RecordResult("Ash", "Brook", true); err != nil {
		t.Fatalf("record draw: %v", err)
	}
	ash, _ = s.Profile(ctx, "Ash")
	brook, _ = s.Profile(ctx, "Brook")
	if ash.Wins != 1 || ash.Losses != 0 || brook.Wins != 0 || brook.Losses != 1 {
		t.Fatalf("draw moved counters: Ash %d-%d, Brook %d-%d", ash.Wins, ash.Losses, brook.Wins, brook.Losses)
	}

	results, err := s.Results(ctx)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Winner != "Ash" || results[0].Loser != "Brook" || results[0].Draw {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if !results[1].Draw {
		t.Fatalf("expected second result to be a draw: %+v", results[1])
	}
	if results[0].EndedAt.IsZero() {
		t.Fatal("expected EndedAt to be stamped")
	}
}

func TestResultForUnknownHandlers(t *testing.T) {
	s := openTestStore(t)

	// No profiles saved; the log still takes the row.
	if err := s.RecordResult("Drifter", "Stray", false); err != nil {
		t.Fatalf("record result: %v", err)
	}
	results, err := s.Results(context.Background())
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 1 || results[0].Winner != "Drifter" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestResultRequiresNames(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveResult(context.Background(), Result{Winner: "Ash"}); err == nil {
		t.Fatal("expected error for missing loser")
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wildhand.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.SaveProfile(ctx, Profile{Name: "Ash", PetSpecies: "Emberwolf"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if err := s.RecordResult("Ash", "Brook", false); err != nil {
		t.Fatalf("record result: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s.Close()

	p, err := s.Profile(ctx, "Ash")
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.Wins != 1 {
		t.Fatalf("expected 1 win after reopen, got %d", p.Wins)
	}
	if err := s.RecordResult("Ash", "Brook", false); err != nil {
		t.Fatalf("record second result: %v", err)
	}
	results, err := s.Results(ctx)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results across reopen, got %d", len(results))
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}
