package match

import (
	"context"
	"errors"
	"testing"

	"github.com/ValleyOfWalls/wildhand/internal/log"
)

func TestMatchJoinInitializesDecksAndHands(t *testing.T) {
	reg := testRegistry(t)
	m := newTestMatch(t, Config{Registry: reg})

	p, err := m.Join("Ash", "Mosstoad")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if p.Seat != 0 {
		t.Errorf("seat = %d, want 0", p.Seat)
	}
	if p.Pet.Name != "Ash's Mosstoad" {
		t.Errorf("pet name = %q", p.Pet.Name)
	}
	if got, want := p.HandlerDeck.Len(), reg.HandlerTemplate().Size(); got != want {
		t.Errorf("handler deck has %d cards, want %d", got, want)
	}
	petTpl, _ := reg.PetTemplateNamed("Mosstoad Starter")
	if got, want := p.Pet.Deck.Len(), petTpl.Size(); got != want {
		t.Errorf("pet deck has %d cards, want %d", got, want)
	}

	refs := m.Hands.Snapshot()
	if len(refs) != 2 {
		t.Fatalf("announced %d hands, want 2", len(refs))
	}
	if refs[0].Key != p.Hand.Key() || refs[0].OwnerID != p.ID {
		t.Errorf("handler hand ref = %+v", refs[0])
	}
	if refs[1].Key != p.Pet.Hand.Key() || refs[1].OwnerID != p.ID {
		t.Errorf("pet hand ref = %+v", refs[1])
	}
}

func TestMatchLobbyGates(t *testing.T) {
	m := newTestMatch(t, Config{})

	if _, err := m.Join("Ash", "Direbear"); err == nil {
		t.Fatalf("join with unknown species succeeded")
	}
	if _, err := m.Join("", "Emberwolf"); err == nil {
		t.Fatalf("join with empty name succeeded")
	}
	if _, err := m.Join("Ash", "Emberwolf"); err != nil {
		t.Fatalf("join seat 0: %v", err)
	}
	if _, err := m.Join("Brook", "Mosstoad"); err != nil {
		t.Fatalf("join seat 1: %v", err)
	}
	if _, err := m.Join("Cedar", "Galeraven"); err == nil {
		t.Fatalf("third join succeeded")
	}
	if err := m.SetReady("nobody"); err == nil {
		t.Fatalf("ready for unknown player succeeded")
	}
	drivers := [2]SeatDriver{&scriptDriver{}, &scriptDriver{}}
	if err := m.Run(context.Background(), drivers); err == nil {
		t.Fatalf("run before both players ready succeeded")
	}
}

func TestMatchCloseIsOwnerOnly(t *testing.T) {
	logger := log.NewMemoryLogger()
	m := newTestMatch(t, Config{Logger: logger})
	p0, err := m.Join("Ash", "Emberwolf")
	if err != nil {
		t.Fatalf("join seat 0: %v", err)
	}
	p1, err := m.Join("Brook", "Mosstoad")
	if err != nil {
		t.Fatalf("join seat 1: %v", err)
	}

	if err := m.Close(p1.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("close by guest: err = %v, want ErrNotOwner", err)
	}
	if got := m.CurrentPhase(); got != PhaseLobby {
		t.Errorf("phase = %s after refused close, want lobby", got)
	}
	if got := logger.EventsOfType(log.EventAuthorityRefused); len(got) != 1 {
		t.Errorf("got %d refusal events, want 1", len(got))
	}

	if err := m.Close(p0.ID); err != nil {
		t.Fatalf("close by host: %v", err)
	}
	if got := m.CurrentPhase(); got != PhaseEnded {
		t.Errorf("phase = %s, want ended", got)
	}
	if _, err := m.Join("Cedar", "Galeraven"); err == nil {
		t.Errorf("join succeeded after close")
	}
}

func TestMatchRunsLobbyToEnd(t *testing.T) {
	logger := log.NewMemoryLogger()
	rec := &fakeRecorder{}
	m := newTestMatch(t, Config{Logger: logger, Recorder: rec, MaxRounds: 3, NoShuffle: true})

	p0, err := m.Join("Ash", "Emberwolf")
	if err != nil {
		t.Fatalf("join seat 0: %v", err)
	}
	p1, err := m.Join("Brook", "Emberwolf")
	if err != nil {
		t.Fatalf("join seat 1: %v", err)
	}

	if err := m.SetReady(p0.ID); err != nil {
		t.Fatalf("ready p0: %v", err)
	}
	select {
	case <-m.Started():
		t.Fatalf("match started with one player ready")
	default:
	}
	if err := m.SetReady(p1.ID); err != nil {
		t.Fatalf("ready p1: %v", err)
	}
	select {
	case <-m.Started():
	default:
		t.Fatalf("match did not start with both players ready")
	}

	// Seat 0 lands a single Strike across the whole match; seat 1 never
	// attacks. The round limit then decides on HP totals.
	drivers := [2]SeatDriver{
		&scriptDriver{plays: []string{"Strike"}},
		&scriptDriver{},
	}
	if err := m.Run(context.Background(), drivers); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := m.CurrentPhase(); got != PhaseEnded {
		t.Errorf("phase = %s, want ended", got)
	}
	winner, result := m.Outcome()
	if winner != 0 {
		t.Errorf("winner = %d (%s), want seat 0", winner, result)
	}
	if rec.calls != 1 || rec.winner != "Ash" || rec.loser != "Brook" || rec.draw {
		t.Errorf("recorded %q over %q (draw %v, %d calls)", rec.winner, rec.loser, rec.draw, rec.calls)
	}

	// The draft grew the persistent decks: two handler picks, one pet pick.
	for _, p := range []*Player{p0, p1} {
		if got, want := p.HandlerDeck.Len(), 12; got != want {
			t.Errorf("%s handler deck has %d cards, want %d", p.Name, got, want)
		}
		if got, want := p.Pet.Deck.Len(), 9; got != want {
			t.Errorf("%s pet deck has %d cards, want %d", p.Name, got, want)
		}
	}
	for _, typ := range []log.EventType{log.EventDraftOffer, log.EventDraftPick} {
		if got := logger.EventsOfType(typ); len(got) != 6 {
			t.Errorf("got %d %s events, want 6", len(got), typ)
		}
	}

	// Every draw spawned one entity: 2 teams x 2 members x 5 cards x 3 rounds.
	if got, want := m.Spawner.Announcements.Len(), 60; got != want {
		t.Errorf("spawned %d entities, want %d", got, want)
	}
	var played int
	for _, e := range m.Spawner.Entities() {
		if phase, ok := e.Phase.Get(); !ok || phase == PhaseInHand {
			t.Errorf("entity %d left in %v after the match", e.ID, phase)
		} else if phase == PhasePlayed {
			played++
		}
	}
	if played != 1 {
		t.Errorf("%d entities marked played, want 1", played)
	}

	if got := logger.EventsOfType(log.EventMatchPhase); len(got) != 4 {
		t.Errorf("got %d phase events, want lobby/draft/combat/ended", len(got))
	}
}

// A mirror following the match over the replica layer converges on the full
// table: every spawned card resolves through the client's own registry and
// finishes in a terminal state.
func TestMatchFeedsMirror(t *testing.T) {
	m := newTestMatch(t, Config{MaxRounds: 2, NoShuffle: true})

	p0, err := m.Join("Ash", "Emberwolf")
	if err != nil {
		t.Fatalf("join seat 0: %v", err)
	}
	p1, err := m.Join("Brook", "Mosstoad")
	if err != nil {
		t.Fatalf("join seat 1: %v", err)
	}

	clientReg := testRegistry(t)
	mirror := NewTableMirror(p0.ID, clientReg, log.NewMemoryLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mirror.Follow(ctx, m.Spawner)
	go mirror.FollowHands(ctx, m.Hands)

	if err := m.SetReady(p0.ID); err != nil {
		t.Fatalf("ready p0: %v", err)
	}
	if err := m.SetReady(p1.ID); err != nil {
		t.Fatalf("ready p1: %v", err)
	}
	drivers := [2]SeatDriver{&scriptDriver{}, &scriptDriver{}}
	if err := m.Run(context.Background(), drivers); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := m.Spawner.Announcements.Len()
	waitFor(t, "mirror to converge", func() bool {
		cards := mirror.Cards()
		if len(cards) != want {
			return false
		}
		for _, c := range cards {
			switch c.State() {
			case MirrorPlayed, MirrorDiscarded, MirrorExhausted:
			default:
				return false
			}
		}
		return true
	})

	for _, c := range mirror.Cards() {
		d := c.Data()
		if d == nil || d.Name == "" || d.Name == "CARD NOT FOUND" {
			t.Fatalf("card %d did not resolve: %v", c.ID, d)
		}
		if c.Owner() != p0.ID && c.Owner() != p1.ID {
			t.Errorf("card %d owned by %q", c.ID, c.Owner())
		}
	}
	// Hands drain as their cards reach terminal phases.
	for _, key := range []string{p0.Hand.Key(), p0.Pet.Hand.Key()} {
		if got := mirror.HandCards(key); len(got) != 0 {
			t.Errorf("hand %s still holds %d cards", key, len(got))
		}
	}
}
