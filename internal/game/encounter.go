package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/deck"
	"github.com/ValleyOfWalls/wildhand/internal/log"
)

// Controller is the interface every seat driver implements: scripted tests,
// the TCP server's remote seats, and the MCP bridge.
type Controller interface {
	// ChoosePlay presents the legal plays for the acting team and waits for
	// the controller to pick one.
	ChoosePlay(ctx context.Context, state *EncounterState, plays []Play) (Play, error)

	// ChooseTarget asks the controller to pick one combatant from candidates.
	// Only called when there is more than one choice.
	ChooseTarget(ctx context.Context, state *EncounterState, prompt string, candidates []*Combatant) (*Combatant, error)

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

// TeamSetup describes one side of an encounter. Decks are materialized
// definition lists; the encounter owns shuffling.
type TeamSetup struct {
	HandlerName string
	HandlerHP   int // 0 = DefaultHandlerHP
	HandlerDeck []*card.Data
	PetName     string
	PetHP       int // 0 = DefaultPetHP
	PetDeck     []*card.Data
}

// EncounterConfig holds configuration for creating a new encounter.
type EncounterConfig struct {
	Teams      [2]TeamSetup
	Logger     log.EventLogger
	Seed       int64 // RNG seed (0 for random)
	NoShuffle  bool  // skip deck shuffles (for deterministic tests)
	MaxRounds  int   // 0 = DefaultMaxRounds
	HandSize   int   // 0 = DefaultHandSize
	BaseEnergy int   // 0 = DefaultBaseEnergy
}

// Encounter orchestrates one combat between two teams.
type Encounter struct {
	State       *EncounterState
	Controllers [2]Controller
	Logger      log.EventLogger
	ctx         context.Context
	noShuffle   bool
	maxRounds   int
	handSize    int
	baseEnergy  int
}

// NewEncounter creates a new encounter from the given config and seat
// controllers.
func NewEncounter(cfg EncounterConfig, c0, c1 Controller) *Encounter {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	warn := func(format string, args ...any) {
		logger.Log(log.NewDeckWarningEvent(fmt.Sprintf(format, args...)))
	}

	gs := NewEncounterState()
	for i := range cfg.Teams {
		ts := cfg.Teams[i]
		gs.Teams[i] = &Team{
			Handler: newCombatant(ts.HandlerName, fmt.Sprintf("Handler %d", i+1), KindHandler, i, ts.HandlerHP, DefaultHandlerHP, card.AffinityHandler, ts.HandlerDeck, rng, warn),
			Pet:     newCombatant(ts.PetName, fmt.Sprintf("Pet %d", i+1), KindPet, i, ts.PetHP, DefaultPetHP, card.AffinityPet, ts.PetDeck, rng, warn),
		}
	}

	maxRounds := cfg.MaxRounds
	if maxRounds == 0 {
		maxRounds = DefaultMaxRounds
	}
	handSize := cfg.HandSize
	if handSize == 0 {
		handSize = DefaultHandSize
	}
	baseEnergy := cfg.BaseEnergy
	if baseEnergy == 0 {
		baseEnergy = DefaultBaseEnergy
	}

	return &Encounter{
		State:       gs,
		Controllers: [2]Controller{c0, c1},
		Logger:      logger,
		ctx:         context.Background(),
		noShuffle:   cfg.NoShuffle,
		maxRounds:   maxRounds,
		handSize:    handSize,
		baseEnergy:  baseEnergy,
	}
}

func newCombatant(name, fallback string, kind CombatantKind, team, hp, defaultHP int, aff card.Affinity, cards []*card.Data, rng *rand.Rand, warn deck.WarnFunc) *Combatant {
	if name == "" {
		name = fallback
	}
	if hp == 0 {
		hp = defaultHP
	}
	return &Combatant{
		Name:     name,
		Kind:     kind,
		Team:     team,
		MaxHP:    hp,
		HP:       hp,
		Statuses: make(map[Status]int),
		Deck:     deck.New(name, aff, cards, rng, warn),
	}
}

// Run executes the entire encounter. Returns the winner (0, 1, or -1 for a
// draw).
func (e *Encounter) Run(ctx context.Context) (int, error) {
	e.ctx = ctx
	gs := e.State

	if !e.noShuffle {
		for _, t := range gs.Teams {
			t.Handler.Deck.Shuffle()
			t.Pet.Deck.Shuffle()
		}
	}

	for !gs.Over {
		if gs.Round >= e.maxRounds {
			e.resolveRoundLimit()
			break
		}
		if err := e.runRound(); err != nil {
			return gs.Winner, err
		}
		if err := e.ctx.Err(); err != nil {
			return -1, err
		}
	}

	return gs.Winner, nil
}

// runRound executes one round: a full turn for each team, seat 0 first.
func (e *Encounter) runRound() error {
	gs := e.State
	gs.Round++
	e.log(log.NewRoundStartEvent(gs.Round, 0))

	for team := 0; team < 2; team++ {
		if err := e.runTurn(team); err != nil {
			return err
		}
		if gs.Over {
			return nil
		}
	}
	return nil
}

// runTurn executes a single team turn: upkeep, draw, plays, discard.
func (e *Encounter) runTurn(team int) error {
	gs := e.State
	gs.Acting = team
	t := gs.Teams[team]

	t.Energy = e.baseEnergy
	e.log(log.NewTurnStartEvent(gs.Round, team, t.Energy))

	gs.Phase = PhaseUpkeep
	e.upkeep(t)
	if gs.Over {
		return nil
	}

	gs.Phase = PhaseDraw
	e.drawStep(t)

	gs.Phase = PhaseMain
	if err := e.mainStep(t); err != nil {
		return err
	}
	if gs.Over {
		return nil
	}

	gs.Phase = PhaseEnd
	e.endStep(t)
	return nil
}

// upkeep resets block and ticks poison for each living team member. Poison
// deals its stack in damage, ignoring block, then decrements.
func (e *Encounter) upkeep(t *Team) {
	gs := e.State
	for _, m := range t.Members() {
		if !m.Alive() {
			continue
		}
		m.Block = 0

		if p := m.Status(StatusPoison); p > 0 {
			m.HP -= p
			if m.HP < 0 {
				m.HP = 0
			}
			m.AddStatus(StatusPoison, -1)
			e.log(log.NewPoisonTickEvent(gs.Round, m.Team, m.Name, p, m.Status(StatusPoison), m.HP))
			e.afterDamage(m)
			e.checkDefeat()
			if gs.Over {
				return
			}
		}
	}
}

// drawStep draws each living member up to the hand size.
func (e *Encounter) drawStep(t *Team) {
	for _, m := range t.Alive() {
		for m.HandCount() < e.handSize {
			if e.drawOne(m) == nil {
				break
			}
		}
	}
}

// drawOne draws a single card into m's hand. Returns nil when the deck is
// fully empty, which is a normal state rather than an error.
func (e *Encounter) drawOne(m *Combatant) *CardInstance {
	gs := e.State
	d := m.Deck
	if d.DrawCount() == 0 && d.DiscardCount() > 0 {
		e.log(log.NewReshuffleEvent(gs.Round, m.Team, m.Name, d.DiscardCount()))
	}
	data := d.Draw()
	if data == nil {
		e.log(log.NewDrawEmptyEvent(gs.Round, m.Team, m.Name))
		return nil
	}
	ci := gs.NewInstance(data, m)
	m.Hand = append(m.Hand, ci)
	e.log(log.NewDrawEvent(gs.Round, m.Team, m.Name, data.Name, int(data.ID), ci.ID))
	return ci
}

// mainStep repeatedly offers the team's legal plays until the controller
// ends the turn.
func (e *Encounter) mainStep(t *Team) error {
	gs := e.State
	for !gs.Over {
		plays := e.legalPlays(t)
		play, err := e.Controllers[gs.Acting].ChoosePlay(e.ctx, gs, plays)
		if err != nil {
			return fmt.Errorf("choose play: %w", err)
		}
		if play.Type == PlayEndTurn || play.Card == nil {
			return nil
		}
		if err := e.resolvePlay(t, play); err != nil {
			return err
		}
	}
	return nil
}

// legalPlays enumerates the affordable cards across both members' hands,
// plus the always-available end turn.
func (e *Encounter) legalPlays(t *Team) []Play {
	var plays []Play
	for _, m := range t.Alive() {
		for _, ci := range m.Hand {
			if ci.Data.Cost > t.Energy {
				continue
			}
			plays = append(plays, Play{
				Type:   PlayCard,
				Team:   m.Team,
				Source: m,
				Card:   ci,
				Cost:   ci.Data.Cost,
				Desc:   fmt.Sprintf("%s plays %s (%d): %s", m.Name, ci.Data.Name, ci.Data.Cost, ci.Data.Description),
			})
		}
	}
	plays = append(plays, Play{Type: PlayEndTurn, Team: t.Index(), Desc: "End turn"})
	return plays
}

// endStep discards every member's remaining hand, then decrements weak and
// vulnerable. Those decay at their carrier's turn end, not at upkeep.
func (e *Encounter) endStep(t *Team) {
	gs := e.State
	for _, m := range t.Members() {
		for _, ci := range m.DiscardHand() {
			e.log(log.NewDiscardEvent(gs.Round, m.Team, m.Name, ci.Data.Name, ci.ID))
		}
	}
	for _, m := range t.Alive() {
		for _, s := range []Status{StatusWeak, StatusVulnerable} {
			if m.Status(s) > 0 {
				m.AddStatus(s, -1)
				e.log(log.NewStatusTickEvent(gs.Round, m.Team, m.Name, s.String(), m.Status(s)))
			}
		}
	}
}

// resolveRoundLimit ends the encounter at the round limit by comparing
// remaining team HP.
func (e *Encounter) resolveRoundLimit() {
	gs := e.State
	gs.Over = true
	hp0 := gs.Teams[0].HPTotal()
	hp1 := gs.Teams[1].HPTotal()
	switch {
	case hp0 > hp1:
		gs.Winner = 0
		gs.Result = fmt.Sprintf("round limit, %d HP to %d", hp0, hp1)
		e.log(log.NewWinEvent(gs.Round, 0, gs.Result))
	case hp1 > hp0:
		gs.Winner = 1
		gs.Result = fmt.Sprintf("round limit, %d HP to %d", hp1, hp0)
		e.log(log.NewWinEvent(gs.Round, 1, gs.Result))
	default:
		gs.Winner = -1
		gs.Result = fmt.Sprintf("round limit, tied at %d HP", hp0)
		e.log(log.NewDrawGameEvent(gs.Round, gs.Result))
	}
}

// log records the event and forwards it to both controllers.
func (e *Encounter) log(event log.GameEvent) {
	e.Logger.Log(event)
	for i := 0; i < 2; i++ {
		if e.Controllers[i] != nil {
			_ = e.Controllers[i].Notify(e.ctx, event)
		}
	}
}
