package match

import (
	"context"
	"testing"
	"time"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/game"
	"github.com/ValleyOfWalls/wildhand/internal/log"
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

func newTestMatch(t *testing.T, cfg Config) *Match {
	t.Helper()
	if cfg.Registry == nil {
		cfg.Registry = testRegistry(t)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewMemoryLogger()
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	m, err := NewMatch(cfg)
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	return m
}

// waitFor polls cond until it holds or two seconds pass. Replica deliveries
// are asynchronous, so observer-side assertions go through here.
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

func waitForCard(t *testing.T, m *TableMirror, entityID int, state MirrorState) *MirrorCard {
	t.Helper()
	var got *MirrorCard
	waitFor(t, "card "+state.String(), func() bool {
		c, ok := m.Card(entityID)
		if ok && c.State() == state {
			got = c
			return true
		}
		return false
	})
	return got
}

// scriptDriver drives one seat through a whole match: draft offers are
// answered with a fixed index, and combat turns play the scripted card
// names as they become available, ending the turn otherwise. A scripted
// name is held until a matching play shows up.
type scriptDriver struct {
	pickIdx int
	plays   []string
	playPos int
}

func (d *scriptDriver) PickCard(ctx context.Context, round int, offer []*card.Data, dest card.Affinity) (int, error) {
	return d.pickIdx, nil
}

func (d *scriptDriver) ChoosePlay(ctx context.Context, state *game.EncounterState, plays []game.Play) (game.Play, error) {
	if d.playPos < len(d.plays) {
		want := d.plays[d.playPos]
		for _, p := range plays {
			if p.Type == game.PlayCard && p.Card != nil && p.Card.Data.Name == want {
				d.playPos++
				return p, nil
			}
		}
	}
	for _, p := range plays {
		if p.Type == game.PlayEndTurn {
			return p, nil
		}
	}
	return plays[len(plays)-1], nil
}

func (d *scriptDriver) ChooseTarget(ctx context.Context, state *game.EncounterState, prompt string, candidates []*game.Combatant) (*game.Combatant, error) {
	return candidates[0], nil
}

func (d *scriptDriver) Notify(ctx context.Context, ev log.GameEvent) error { return nil }

type fakeRecorder struct {
	winner, loser string
	draw          bool
	calls         int
}

func (r *fakeRecorder) RecordResult(winner, loser string, draw bool) error {
	r.winner, r.loser, r.draw = winner, loser, draw
	r.calls++
	return nil
}
