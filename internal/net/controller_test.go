package net

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/game"
	"github.com/ValleyOfWalls/wildhand/internal/log"
)

// wirePeer is the client end of a controller pipe: it decodes what the
// controller sends and answers with scripted indexes.
type wirePeer struct {
	t   *testing.T
	enc *json.Encoder
	dec *json.Decoder
}

func newWirePeer(t *testing.T, conn net.Conn) *wirePeer {
	return &wirePeer{t: t, enc: json.NewEncoder(conn), dec: json.NewDecoder(conn)}
}

func (p *wirePeer) read(wantType string) ServerMessage {
	p.t.Helper()
	var msg ServerMessage
	if err := p.dec.Decode(&msg); err != nil {
		p.t.Fatalf("decode: %v", err)
	}
	if msg.Type != wantType {
		p.t.Fatalf("got message %q, want %q", msg.Type, wantType)
	}
	return msg
}

func (p *wirePeer) answer(msgType string, index int) {
	p.t.Helper()
	if err := p.enc.Encode(ClientMessage{Type: msgType, Index: index}); err != nil {
		p.t.Fatalf("encode: %v", err)
	}
}

func TestChoosePlayRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	tc := NewTeamController(server, 1)
	gs := testEncounter()
	pet := gs.Teams[1].Pet
	plays := []game.Play{
		{Type: game.PlayCard, Team: 1, Source: pet, Card: gs.NewInstance(testPounce, pet), Cost: 2},
		{Type: game.PlayEndTurn, Team: 1},
	}

	done := make(chan game.Play, 1)
	go func() {
		p, err := tc.ChoosePlay(context.Background(), gs, plays)
		if err != nil {
			t.Errorf("choose play: %v", err)
		}
		done <- p
	}()

	peer := newWirePeer(t, client)
	msg := peer.read("choose_play")
	if len(msg.Plays) != 2 {
		t.Fatalf("got %d plays", len(msg.Plays))
	}
	if msg.Plays[0].CardID != 103 {
		t.Errorf("play card id = %d", msg.Plays[0].CardID)
	}
	if msg.State == nil || msg.State.You.Handler.Name != "Brook" {
		t.Errorf("seat 1 prompt does not show seat 1 as You: %+v", msg.State)
	}
	peer.answer("play", 1)

	if p := <-done; p.Type != game.PlayEndTurn {
		t.Errorf("chose %v, want end turn", p.Type)
	}
}

func TestChoosePlayFallsBackOnBadIndex(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	tc := NewTeamController(server, 0)
	gs := testEncounter()
	plays := []game.Play{{Type: game.PlayEndTurn, Team: 0}}

	done := make(chan game.Play, 1)
	go func() {
		p, err := tc.ChoosePlay(context.Background(), gs, plays)
		if err != nil {
			t.Errorf("choose play: %v", err)
		}
		done <- p
	}()

	peer := newWirePeer(t, client)
	peer.read("choose_play")
	peer.answer("play", 99)

	if p := <-done; p.Type != game.PlayEndTurn {
		t.Errorf("bad index did not fall back to first play: %v", p.Type)
	}
}

func TestChooseTargetRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	tc := NewTeamController(server, 0)
	gs := testEncounter()
	candidates := []*game.Combatant{gs.Teams[1].Handler, gs.Teams[1].Pet}

	done := make(chan *game.Combatant, 1)
	go func() {
		c, err := tc.ChooseTarget(context.Background(), gs, "Bite whom?", candidates)
		if err != nil {
			t.Errorf("choose target: %v", err)
		}
		done <- c
	}()

	peer := newWirePeer(t, client)
	msg := peer.read("choose_target")
	if msg.Prompt != "Bite whom?" {
		t.Errorf("prompt = %q", msg.Prompt)
	}
	if len(msg.Targets) != 2 || msg.Targets[1].Name != "Puddle" {
		t.Errorf("targets = %+v", msg.Targets)
	}
	peer.answer("target", 1)

	if c := <-done; c.Name != "Puddle" {
		t.Errorf("chose %s, want Puddle", c.Name)
	}
}

// PickCard hands the raw index back; the draft layer logs and substitutes
// when it is out of range.
func TestPickCardPassesIndexThrough(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	tc := NewTeamController(server, 1)
	offer := []*card.Data{testStrike, testGuard, testPounce}

	done := make(chan int, 1)
	go func() {
		idx, err := tc.PickCard(context.Background(), 2, offer, card.AffinityPet)
		if err != nil {
			t.Errorf("pick card: %v", err)
		}
		done <- idx
	}()

	peer := newWirePeer(t, client)
	msg := peer.read("draft_offer")
	if msg.Offer.Round != 2 || msg.Offer.Dest != "pet" {
		t.Errorf("offer = %+v", msg.Offer)
	}
	if len(msg.Offer.Cards) != 3 || msg.Offer.Cards[2] != 103 {
		t.Errorf("offer cards = %v", msg.Offer.Cards)
	}
	peer.answer("pick", 7)

	if idx := <-done; idx != 7 {
		t.Errorf("index = %d, want 7 passed through", idx)
	}
}

func TestNotifyThenGameOverStayOrdered(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	tc := NewTeamController(server, 0)
	ev := log.GameEvent{Round: 4, Phase: "combat", Type: log.EventDamage, CardID: 101, Details: "Ash takes 6"}

	go func() {
		if err := tc.Notify(context.Background(), ev); err != nil {
			t.Errorf("notify: %v", err)
		}
		if err := tc.SendGameOver(0, "Ash wins"); err != nil {
			t.Errorf("send game over: %v", err)
		}
	}()

	peer := newWirePeer(t, client)
	msg := peer.read("notify")
	if msg.Event == nil || msg.Event.Details != "Ash takes 6" || msg.Event.CardID != 101 {
		t.Errorf("event = %+v", msg.Event)
	}

	msg = peer.read("game_over")
	if msg.Winner != 0 || msg.Result != "Ash wins" {
		t.Errorf("game over = winner %d result %q", msg.Winner, msg.Result)
	}
}

func TestSendErrorMarksNoWinner(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	tc := NewTeamController(server, 1)
	go func() {
		if err := tc.SendError("seat taken"); err != nil {
			t.Errorf("send error: %v", err)
		}
	}()

	peer := newWirePeer(t, client)
	msg := peer.read("error")
	if msg.Winner != -1 || msg.Result != "seat taken" {
		t.Errorf("error message = winner %d result %q", msg.Winner, msg.Result)
	}
}
