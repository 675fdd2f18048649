package deck

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ValleyOfWalls/wildhand/internal/card"
)

func testRegistry(t *testing.T) *card.Registry {
	t.Helper()
	cat, err := card.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	templates, err := card.DefaultTemplates(cat)
	if err != nil {
		t.Fatalf("DefaultTemplates: %v", err)
	}
	reg, err := card.NewRegistry(cat, templates)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func buildDeck(t *testing.T, ids []card.ID, seed int64, warn WarnFunc) *RuntimeDeck {
	t.Helper()
	return Build("test", card.AffinityHandler, ids, testRegistry(t), rand.New(rand.NewSource(seed)), warn)
}

func TestDrawFromFullyEmptyDeck(t *testing.T) {
	d := buildDeck(t, nil, 1, nil)

	if got := d.Draw(); got != nil {
		t.Fatalf("expected no card, got %v", got)
	}
	if d.DrawCount() != 0 || d.DiscardCount() != 0 {
		t.Errorf("empty draw mutated piles: draw=%d discard=%d", d.DrawCount(), d.DiscardCount())
	}
}

func TestDrawReshufflesDiscardExactlyOnce(t *testing.T) {
	// Start with draw=[], discard=[Strike, Defend].
	d := buildDeck(t, []card.ID{1, 2}, 1, nil)
	first := d.Draw()
	second := d.Draw()
	d.DiscardCard(first)
	d.DiscardCard(second)
	if d.DrawCount() != 0 || d.DiscardCount() != 2 {
		t.Fatalf("setup failed: draw=%d discard=%d", d.DrawCount(), d.DiscardCount())
	}

	got1 := d.Draw()
	if got1 == nil {
		t.Fatal("expected a card after reshuffle")
	}
	if d.DrawCount() != 1 || d.DiscardCount() != 0 {
		t.Errorf("after reshuffle+draw: draw=%d discard=%d, want 1/0", d.DrawCount(), d.DiscardCount())
	}

	got2 := d.Draw()
	if got2 == nil {
		t.Fatal("expected the second card")
	}
	if got1 == got2 {
		t.Errorf("drew the same card twice: %s", got1.Name)
	}
	want := map[string]bool{"Strike": true, "Defend": true}
	if !want[got1.Name] || !want[got2.Name] {
		t.Errorf("drew %s and %s, want Strike and Defend in some order", got1.Name, got2.Name)
	}

	if got3 := d.Draw(); got3 != nil {
		t.Errorf("third draw should find nothing, got %s", got3.Name)
	}
}

func TestConservationAcrossRandomOps(t *testing.T) {
	ids := []card.ID{1, 1, 1, 2, 2, 3, 4, 10, 13, 21}
	d := buildDeck(t, ids, 7, nil)
	total := len(ids)

	ops := rand.New(rand.NewSource(99))
	var outstanding []*card.Data

	check := func(step string) {
		got := d.DrawCount() + d.DiscardCount() + len(outstanding)
		if got != total {
			t.Fatalf("%s: %d cards in system, want %d (draw=%d discard=%d held=%d)",
				step, got, total, d.DrawCount(), d.DiscardCount(), len(outstanding))
		}
	}

	for i := 0; i < 500; i++ {
		switch ops.Intn(4) {
		case 0:
			if c := d.Draw(); c != nil {
				outstanding = append(outstanding, c)
			}
		case 1:
			if len(outstanding) > 0 {
				d.DiscardCard(outstanding[len(outstanding)-1])
				outstanding = outstanding[:len(outstanding)-1]
			}
		case 2:
			d.Shuffle()
		case 3:
			if d.DiscardCount() > 0 {
				d.Reshuffle()
			}
		}
		check(fmt.Sprintf("op %d", i))
	}
}

func TestDiscardHandEmptiesSource(t *testing.T) {
	d := buildDeck(t, []card.ID{1, 2, 3, 4}, 3, nil)

	var hand []*card.Data
	for i := 0; i < 3; i++ {
		hand = append(hand, d.Draw())
	}
	before := d.DiscardCount()

	d.DiscardHand(&hand)

	if d.DiscardCount() != before+3 {
		t.Errorf("discard count = %d, want %d", d.DiscardCount(), before+3)
	}
	if len(hand) != 0 {
		t.Errorf("hand not cleared: %d cards left", len(hand))
	}
}

func TestDiscardNilIsRefused(t *testing.T) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	d := buildDeck(t, []card.ID{1}, 5, warn)

	d.DiscardCard(nil)

	if d.DiscardCount() != 0 {
		t.Errorf("nil discard corrupted the pile: %d", d.DiscardCount())
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %v", warnings)
	}
}

func TestReshuffleEmptyDiscardWarns(t *testing.T) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	d := buildDeck(t, []card.ID{1, 2}, 5, warn)

	d.Reshuffle()

	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if d.DrawCount() != 2 || d.DiscardCount() != 0 {
		t.Errorf("no-op reshuffle mutated piles: draw=%d discard=%d", d.DrawCount(), d.DiscardCount())
	}
}

func TestShuffledTemplateYieldsSameMultiset(t *testing.T) {
	// Template [Strike, Strike, Defend]: shuffling and drawing everything must
	// produce exactly those cards, never anything else.
	d := buildDeck(t, []card.ID{1, 1, 2}, 11, nil)
	d.Shuffle()

	counts := make(map[string]int)
	for {
		c := d.Draw()
		if c == nil {
			break
		}
		counts[c.Name]++
	}

	if counts["Strike"] != 2 || counts["Defend"] != 1 || len(counts) != 2 {
		t.Errorf("drew %v, want exactly 2 Strike + 1 Defend", counts)
	}
}

func TestBuildSkipsUnknownIDs(t *testing.T) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	d := buildDeck(t, []card.ID{1, 9999, 2}, 5, warn)

	if d.DrawCount() != 2 {
		t.Errorf("deck size = %d, want 2 after skipping the unknown id", d.DrawCount())
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %v", warnings)
	}
}

func TestSourceFactories(t *testing.T) {
	reg := testRegistry(t)
	src := NewSource(reg, rand.New(rand.NewSource(21)), nil)

	handler := src.HandlerStarter()
	if handler.DrawCount() != 10 {
		t.Errorf("handler starter size = %d, want 10", handler.DrawCount())
	}
	if handler.Kind() != card.AffinityHandler {
		t.Errorf("handler starter kind = %v", handler.Kind())
	}

	pet, err := src.PetStarter(0)
	if err != nil {
		t.Fatalf("PetStarter(0): %v", err)
	}
	if pet.DrawCount() != 8 {
		t.Errorf("pet starter size = %d, want 8", pet.DrawCount())
	}

	if _, err := src.PetStarter(99); err == nil {
		t.Error("PetStarter(99) should fail")
	}

	random := src.RandomPetStarter()
	names := map[string]bool{"Emberwolf Starter": true, "Mosstoad Starter": true, "Galeraven Starter": true}
	if !names[random.Name()] {
		t.Errorf("random pet starter picked %q", random.Name())
	}
}

func TestSameSeedSameOrder(t *testing.T) {
	ids := []card.ID{1, 2, 3, 4, 10, 11, 12, 13}

	drawAll := func(seed int64) []string {
		d := buildDeck(t, ids, seed, nil)
		d.Shuffle()
		var names []string
		for {
			c := d.Draw()
			if c == nil {
				break
			}
			names = append(names, c.Name)
		}
		return names
	}

	a := drawAll(42)
	b := drawAll(42)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order diverged at %d: %s vs %s", i, a[i], b[i])
		}
	}
}
