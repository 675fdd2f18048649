package net

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/log"
	"github.com/ValleyOfWalls/wildhand/internal/match"
	"github.com/ValleyOfWalls/wildhand/internal/replica"
)

func testRegistry(t *testing.T) *card.Registry {
	t.Helper()
	cat, err := card.DefaultCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	tpls, err := card.DefaultTemplates(cat)
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	reg, err := card.NewRegistry(cat, tpls)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// The whole replication path: spawner announcements stream over a pipe as
// sync ops and a client-side mirror rebuilds the table from them alone.
func TestStreamTableConvergesRemoteMirror(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	auth := replica.NewAuthority("host")
	sp := match.NewSpawner(auth, log.NewMemoryLogger())
	hands := replica.NewList[match.HandRef](auth)
	tc := NewTeamController(server, 0)

	mirror := match.NewTableMirror("p0", testRegistry(t), log.NewMemoryLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go StreamTable(ctx, tc, sp, hands)
	go func() {
		dec := json.NewDecoder(client)
		for {
			var msg ServerMessage
			if err := dec.Decode(&msg); err != nil {
				return
			}
			if msg.Type == "sync" {
				ApplySync(mirror, msg.Sync)
			}
		}
	}()

	hand := match.NewHandlerHand("p0")
	hands.Append(auth, match.HandRef{Key: hand.Key(), OwnerID: "p0"})

	serverReg := testRegistry(t)
	pounce, ok := serverReg.Catalog().ByName("Pounce")
	if !ok {
		t.Fatal("catalog is missing Pounce")
	}
	if _, err := sp.Spawn(auth, 5, pounce, "p0", hand); err != nil {
		t.Fatalf("spawn: %v", err)
	}

	waitFor(t, "hand binding", func() bool {
		owner, ok := mirror.HandOwner(match.HandlerHandKey("p0"))
		return ok && owner == "p0"
	})
	var mc *match.MirrorCard
	waitFor(t, "card resolution", func() bool {
		c, ok := mirror.Card(5)
		if ok && c.State() == match.MirrorReady {
			mc = c
			return true
		}
		return false
	})
	if mc.Data() == pounce {
		t.Fatal("mirror shares the host's card pointer instead of resolving its own")
	}
	if mc.Data().Name != "Pounce" {
		t.Errorf("resolved %q, want Pounce", mc.Data().Name)
	}
	if mc.Owner() != "p0" {
		t.Errorf("owner = %q", mc.Owner())
	}
	waitFor(t, "hand membership", func() bool {
		cards := mirror.HandCards(match.HandlerHandKey("p0"))
		return len(cards) == 1 && cards[0] == mc
	})

	// A phase change travels too and pulls the card out of the hand.
	if err := sp.SetPhase(auth, 5, match.PhaseDiscarded); err != nil {
		t.Fatalf("set phase: %v", err)
	}
	waitFor(t, "discard sync", func() bool {
		return mc.State() == match.MirrorDiscarded &&
			len(mirror.HandCards(match.HandlerHandKey("p0"))) == 0
	})
}

// Spawns from before a client connects replay to it; replicated lists
// hand newcomers the full history.
func TestStreamTableReplaysExistingTable(t *testing.T) {
	auth := replica.NewAuthority("host")
	sp := match.NewSpawner(auth, log.NewMemoryLogger())
	hands := replica.NewList[match.HandRef](auth)

	hand := match.NewPetHand("p1")
	hands.Append(auth, match.HandRef{Key: hand.Key(), OwnerID: "p1"})

	serverReg := testRegistry(t)
	bite, ok := serverReg.Catalog().ByName("Bite")
	if !ok {
		t.Fatal("catalog is missing Bite")
	}
	if _, err := sp.Spawn(auth, 9, bite, "p1", hand); err != nil {
		t.Fatalf("spawn: %v", err)
	}

	// Connect after the fact.
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	tc := NewTeamController(server, 1)
	mirror := match.NewTableMirror("p1", testRegistry(t), log.NewMemoryLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go StreamTable(ctx, tc, sp, hands)
	go func() {
		dec := json.NewDecoder(client)
		for {
			var msg ServerMessage
			if err := dec.Decode(&msg); err != nil {
				return
			}
			if msg.Type == "sync" {
				ApplySync(mirror, msg.Sync)
			}
		}
	}()

	waitFor(t, "replayed card", func() bool {
		c, ok := mirror.Card(9)
		return ok && c.State() == match.MirrorReady &&
			len(mirror.HandCards(match.PetHandKey("p1"))) == 1
	})
}

func TestApplySyncIgnoresNilAndUnknownOps(t *testing.T) {
	mirror := match.NewTableMirror("p0", testRegistry(t), log.NewMemoryLogger())

	ApplySync(mirror, nil)
	ApplySync(mirror, &SyncOp{Op: "tilt", Entity: 4})

	if cards := mirror.Cards(); len(cards) != 0 {
		t.Errorf("unknown op created %d cards", len(cards))
	}
}
