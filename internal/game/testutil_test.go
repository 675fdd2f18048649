package game

import (
	"context"
	"testing"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/log"
)

// ScriptedController is a Controller that follows a predefined script of
// card names. Used in tests to deterministically drive an encounter.
type ScriptedController struct {
	t    *testing.T
	name string

	// Card names to play, in order
	plays   []string
	playPos int

	// Target names to pick when prompted, in order
	targets   []string
	targetPos int
}

func NewScriptedController(t *testing.T, name string) *ScriptedController {
	return &ScriptedController{t: t, name: name}
}

func (sc *ScriptedController) AddPlay(cardNames ...string) *ScriptedController {
	sc.plays = append(sc.plays, cardNames...)
	return sc
}

func (sc *ScriptedController) AddTarget(names ...string) *ScriptedController {
	sc.targets = append(sc.targets, names...)
	return sc
}

func (sc *ScriptedController) ChoosePlay(ctx context.Context, state *EncounterState, plays []Play) (Play, error) {
	// Peek at the next scripted card and only consume it if it is playable
	// right now. This lets scripts span multiple turns without explicitly
	// scripting "end turn".
	if sc.playPos < len(sc.plays) {
		want := sc.plays[sc.playPos]
		for _, p := range plays {
			if p.Type == PlayCard && p.Card.Data.Name == want {
				sc.playPos++
				return p, nil
			}
		}
	}
	for _, p := range plays {
		if p.Type == PlayEndTurn {
			return p, nil
		}
	}
	return plays[len(plays)-1], nil
}

func (sc *ScriptedController) ChooseTarget(ctx context.Context, state *EncounterState, prompt string, candidates []*Combatant) (*Combatant, error) {
	if sc.targetPos < len(sc.targets) {
		want := sc.targets[sc.targetPos]
		for _, c := range candidates {
			if c.Name == want {
				sc.targetPos++
				return c, nil
			}
		}
		sc.t.Logf("[%s] scripted target %q not among candidates, using first", sc.name, want)
	}
	return candidates[0], nil
}

func (sc *ScriptedController) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}

// --- Test deck helpers ---

func testCatalog(t *testing.T) *card.Catalog {
	t.Helper()
	cat, err := card.DefaultCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return cat
}

// deckOf materializes catalog cards so they draw in the order given: the
// first name is the first card drawn.
func deckOf(t *testing.T, names ...string) []*card.Data {
	t.Helper()
	cat := testCatalog(t)
	out := make([]*card.Data, len(names))
	for i, name := range names {
		d, ok := cat.ByName(name)
		if !ok {
			t.Fatalf("no card named %q in catalog", name)
		}
		out[len(names)-1-i] = d
	}
	return out
}

// repeatCard returns n copies of the named card, ready to use as a deck.
func repeatCard(t *testing.T, name string, n int) []*card.Data {
	t.Helper()
	cat := testCatalog(t)
	d, ok := cat.ByName(name)
	if !ok {
		t.Fatalf("no card named %q in catalog", name)
	}
	out := make([]*card.Data, n)
	for i := range out {
		out[i] = d
	}
	return out
}

// testTeams builds a standard two-team setup with fixed names. Decks
// default to a single inert skill so draws never warn.
func testTeams(t *testing.T) [2]TeamSetup {
	filler := repeatCard(t, "Defend", 1)
	return [2]TeamSetup{
		{HandlerName: "Ash", HandlerDeck: filler, PetName: "Ember", PetDeck: filler},
		{HandlerName: "Brook", HandlerDeck: filler, PetName: "Moss", PetDeck: filler},
	}
}

// runEncounterToCompletion runs an encounter deterministically and returns
// it with the logger for inspection.
func runEncounterToCompletion(t *testing.T, cfg EncounterConfig, c0, c1 Controller) (*Encounter, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	cfg.Logger = logger
	cfg.NoShuffle = true
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	if cfg.MaxRounds == 0 {
		cfg.MaxRounds = 10
	}

	enc := NewEncounter(cfg, c0, c1)
	winner, err := enc.Run(context.Background())
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
		t.Fatalf("encounter error: %v", err)
	}

	t.Logf("Encounter result: winner=%d (%s)", winner, enc.State.Result)
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
	return enc, logger
}
