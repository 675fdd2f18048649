package net

import (
	"math/rand"
	"testing"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/deck"
	"github.com/ValleyOfWalls/wildhand/internal/game"
	"github.com/ValleyOfWalls/wildhand/internal/log"
)

var (
	testStrike = &card.Data{ID: 101, Name: "Test Strike", Cost: 1}
	testGuard  = &card.Data{ID: 102, Name: "Test Guard", Cost: 1}
	testPounce = &card.Data{ID: 103, Name: "Test Pounce", Cost: 2}
)

func testFighter(name string, kind game.CombatantKind, team, hp int, cards ...*card.Data) *game.Combatant {
	rng := rand.New(rand.NewSource(1))
	return &game.Combatant{
		Name:  name,
		Kind:  kind,
		Team:  team,
		MaxHP: hp,
		HP:    hp,
		Deck:  deck.New(name+" deck", card.AffinityHandler, cards, rng, nil),
	}
}

func testEncounter() *game.EncounterState {
	gs := game.NewEncounterState()
	gs.Round = 3
	gs.Acting = 1
	gs.Phase = game.PhaseMain
	gs.Teams[0] = &game.Team{
		Handler: testFighter("Ash", game.KindHandler, 0, 70, testStrike, testGuard),
		Pet:     testFighter("Cinder", game.KindPet, 0, 28, testPounce),
		Energy:  3,
	}
	gs.Teams[1] = &game.Team{
		Handler: testFighter("Brook", game.KindHandler, 1, 70, testStrike),
		Pet:     testFighter("Puddle", game.KindPet, 1, 34, testPounce),
		Energy:  2,
	}
	return gs
}

func TestStateViewTakesSeatPerspective(t *testing.T) {
	gs := testEncounter()

	sv := BuildStateView(gs, 1)
	if sv.You.Handler.Name != "Brook" || sv.Enemy.Handler.Name != "Ash" {
		t.Errorf("seat 1 sees you=%s enemy=%s", sv.You.Handler.Name, sv.Enemy.Handler.Name)
	}
	if !sv.YourTurn {
		t.Error("seat 1 is acting but YourTurn is false")
	}
	if sv.Round != 3 || sv.Phase != "Main" {
		t.Errorf("round/phase = %d/%s", sv.Round, sv.Phase)
	}

	sv = BuildStateView(gs, 0)
	if sv.You.Handler.Name != "Ash" {
		t.Errorf("seat 0 sees you=%s", sv.You.Handler.Name)
	}
	if sv.YourTurn {
		t.Error("seat 0 is waiting but YourTurn is true")
	}

	gs.Over = true
	if BuildStateView(gs, 1).YourTurn {
		t.Error("encounter is over but YourTurn is true")
	}
}

func TestStateViewCarriesCountsNotContents(t *testing.T) {
	gs := testEncounter()
	ash := gs.Teams[0].Handler
	ash.Hand = append(ash.Hand, gs.NewInstance(testStrike, ash))
	ash.Block = 4
	ash.AddStatus(game.StatusWeak, 2)
	gs.Teams[1].Pet.Retired = true

	sv := BuildStateView(gs, 0)
	fv := sv.You.Handler
	if fv.HandCount != 1 {
		t.Errorf("hand count = %d, want 1", fv.HandCount)
	}
	if fv.DrawCount != 2 || fv.DiscardCount != 0 {
		t.Errorf("draw/discard = %d/%d, want 2/0", fv.DrawCount, fv.DiscardCount)
	}
	if fv.Block != 4 {
		t.Errorf("block = %d, want 4", fv.Block)
	}
	if fv.Statuses["weak"] != 2 {
		t.Errorf("statuses = %v, want weak 2", fv.Statuses)
	}
	if !sv.Enemy.Pet.Retired {
		t.Error("retired pet not flagged")
	}
	if sv.You.Energy != 3 || sv.Enemy.Energy != 2 {
		t.Errorf("energy = %d/%d", sv.You.Energy, sv.Enemy.Energy)
	}
}

func TestPlayViewsCarryCatalogIDs(t *testing.T) {
	gs := testEncounter()
	pet := gs.Teams[0].Pet
	ci := gs.NewInstance(testPounce, pet)
	plays := []game.Play{
		{Type: game.PlayCard, Team: 0, Source: pet, Card: ci, Cost: 2},
		{Type: game.PlayEndTurn, Team: 0},
	}

	views := BuildPlayViews(plays)
	if len(views) != 2 {
		t.Fatalf("got %d views", len(views))
	}
	pv := views[0]
	if pv.Kind != "card" || pv.Index != 0 {
		t.Errorf("first view = %+v", pv)
	}
	if pv.CardID != 103 {
		t.Errorf("card id = %d, want 103", pv.CardID)
	}
	if pv.Entity != ci.ID {
		t.Errorf("entity = %d, want %d", pv.Entity, ci.ID)
	}
	if pv.Actor != "Cinder" || pv.Cost != 2 {
		t.Errorf("actor/cost = %s/%d", pv.Actor, pv.Cost)
	}
	if views[1].Kind != "end" || views[1].Index != 1 {
		t.Errorf("end view = %+v", views[1])
	}
}

func TestEventViewMapsLogFields(t *testing.T) {
	ev := log.GameEvent{
		Seq:        9,
		Round:      2,
		Phase:      "combat",
		Team:       1,
		Type:       log.EventPlay,
		Actor:      "Cinder",
		Card:       "Pounce",
		CardID:     103,
		InstanceID: 31,
		Details:    "Cinder plays Pounce",
	}

	v := BuildEventView(ev)
	if v.Seq != 9 || v.Round != 2 || v.Phase != "combat" || v.Team != 1 {
		t.Errorf("header fields = %+v", v)
	}
	if v.Type != log.EventPlay.String() {
		t.Errorf("type = %q", v.Type)
	}
	if v.CardID != 103 || v.Entity != 31 {
		t.Errorf("card/entity = %d/%d", v.CardID, v.Entity)
	}
	if v.Details != "Cinder plays Pounce" {
		t.Errorf("details = %q", v.Details)
	}
}

func TestOfferViewNamesDestination(t *testing.T) {
	offer := []*card.Data{testStrike, testGuard, testPounce}

	ov := BuildOfferView(2, offer, card.AffinityPet)
	if ov.Round != 2 || ov.Dest != "pet" {
		t.Errorf("round/dest = %d/%s", ov.Round, ov.Dest)
	}
	want := []int{101, 102, 103}
	if len(ov.Cards) != len(want) {
		t.Fatalf("got %d cards", len(ov.Cards))
	}
	for i, id := range want {
		if ov.Cards[i] != id {
			t.Errorf("card %d = %d, want %d", i, ov.Cards[i], id)
		}
	}

	if BuildOfferView(1, offer, card.AffinityHandler).Dest != "handler" {
		t.Error("handler destination not named")
	}
}
