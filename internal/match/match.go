// Package match runs one hosted game from lobby to recorded result: seats
// and ready-up, persistent replicated decks, the card draft, and the bridge
// that turns engine combat events into replicated card entities.
package match

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/game"
	"github.com/ValleyOfWalls/wildhand/internal/log"
	"github.com/ValleyOfWalls/wildhand/internal/replica"
)

// Phase is where a match sits in its flow.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseDraft
	PhaseCombat
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseDraft:
		return "draft"
	case PhaseCombat:
		return "combat"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// SeatDriver is one seat's decision surface across the whole match: draft
// picks while decks are built, then the engine controller calls in combat.
type SeatDriver interface {
	game.Controller
	// PickCard answers a draft offer with an index into offer.
	PickCard(ctx context.Context, round int, offer []*card.Data, dest card.Affinity) (int, error)
}

// ResultRecorder persists match outcomes. The profile store implements it.
type ResultRecorder interface {
	RecordResult(winner, loser string, draw bool) error
}

// Config holds configuration for creating a match.
type Config struct {
	Registry    *card.Registry
	Logger      log.EventLogger // nil = in-memory
	Recorder    ResultRecorder  // nil = results are not persisted
	Seed        int64           // 0 = time-seeded
	DraftRounds int             // 0 = DefaultDraftRounds
	MaxRounds   int             // combat round limit, 0 = engine default
	NoShuffle   bool            // keep deck order, for deterministic tests
}

// Match is one hosted game.
type Match struct {
	ID string

	// Spawner announces card entities; Hands announces hand ownership.
	// Observers follow both to rebuild the table.
	Spawner *Spawner
	Hands   *replica.List[HandRef]

	auth        *replica.Authority
	registry    *card.Registry
	logger      log.EventLogger
	recorder    ResultRecorder
	rng         *rand.Rand
	seed        int64
	draftRounds int
	maxRounds   int
	noShuffle   bool

	mu      sync.Mutex
	phase   Phase
	players [2]*Player
	started chan struct{}
	winner  int
	result  string
}

// NewMatch creates an empty lobby.
func NewMatch(cfg Config) (*Match, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("new match: nil registry")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rounds := cfg.DraftRounds
	if rounds <= 0 {
		rounds = DefaultDraftRounds
	}

	auth := replica.NewAuthority("match host")
	m := &Match{
		ID:          uuid.New().String(),
		auth:        auth,
		registry:    cfg.Registry,
		logger:      logger,
		recorder:    cfg.Recorder,
		rng:         rand.New(rand.NewSource(seed)),
		seed:        seed,
		draftRounds: rounds,
		maxRounds:   cfg.MaxRounds,
		noShuffle:   cfg.NoShuffle,
		phase:       PhaseLobby,
		started:     make(chan struct{}),
		winner:      -1,
	}
	m.Spawner = NewSpawner(auth, logger)
	m.Hands = replica.NewList[HandRef](auth)
	m.logger.Log(log.NewMatchPhaseEvent("lobby"))
	return m, nil
}

// Join seats a player with the starter decks for their species. The lobby
// holds two; join fails once it is full or the match has moved on. Decks
// are initialized and both of the player's hands are announced before Join
// returns.
func (m *Match) Join(name, species string) (*Player, error) {
	sp, ok := SpeciesNamed(species)
	if !ok {
		return nil, fmt.Errorf("join: unknown species %q", species)
	}
	petTpl, ok := m.registry.PetTemplateNamed(sp.Deck)
	if !ok {
		return nil, fmt.Errorf("join: no starter deck %q", sp.Deck)
	}
	return m.join(name, sp, m.registry.HandlerTemplate(), petTpl)
}

// JoinWithDecks seats a player with previously saved deck lists instead of
// the starter templates. Identifiers are taken as-is; unresolvable ones
// surface later as logged placeholder skips, not join errors.
func (m *Match) JoinWithDecks(name, species string, handler, pet []card.ID) (*Player, error) {
	sp, ok := SpeciesNamed(species)
	if !ok {
		return nil, fmt.Errorf("join: unknown species %q", species)
	}
	if len(handler) == 0 || len(pet) == 0 {
		return nil, fmt.Errorf("join: saved decks for %s are empty", name)
	}
	htpl := card.Template{Name: name + " handler", Kind: card.AffinityHandler, Cards: handler}
	ptpl := card.Template{Name: name + " pet", Kind: card.AffinityPet, Cards: pet}
	return m.join(name, sp, htpl, ptpl)
}

func (m *Match) join(name string, sp Species, handlerTpl, petTpl card.Template) (*Player, error) {
	if name == "" {
		return nil, fmt.Errorf("join: empty name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseLobby {
		return nil, fmt.Errorf("join: match is past the lobby (%s)", m.phase)
	}
	seat := -1
	for i, p := range m.players {
		if p == nil {
			seat = i
			break
		}
	}
	if seat == -1 {
		return nil, fmt.Errorf("join: lobby is full")
	}

	p := NewPlayer(m.auth, seat, name, sp)
	if err := p.InitDecks(m.auth, m.logger, handlerTpl, petTpl); err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	m.players[seat] = p
	if err := m.Hands.Append(m.auth, HandRef{Key: p.Hand.Key(), OwnerID: p.ID}); err != nil {
		return nil, fmt.Errorf("join: announce handler hand: %w", err)
	}
	if err := m.Hands.Append(m.auth, HandRef{Key: p.Pet.Hand.Key(), OwnerID: p.ID}); err != nil {
		return nil, fmt.Errorf("join: announce pet hand: %w", err)
	}
	m.logger.Log(log.NewJoinEvent(seat, name, sp.Name))
	return p, nil
}

// SetReady marks a seated player ready. When both seats are filled and
// ready the match advances to the draft and Started closes.
func (m *Match) SetReady(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseLobby {
		return fmt.Errorf("ready: match is past the lobby (%s)", m.phase)
	}
	p := m.playerByIDLocked(playerID)
	if p == nil {
		return fmt.Errorf("ready: no player %s", playerID)
	}
	p.SetReady(true)
	m.logger.Log(log.NewReadyEvent(p.Seat, p.Name))

	if m.players[0] != nil && m.players[1] != nil &&
		m.players[0].Ready() && m.players[1].Ready() {
		m.phase = PhaseDraft
		close(m.started)
		m.logger.Log(log.NewMatchPhaseEvent("draft"))
	}
	return nil
}

// Started is closed once both seats are filled and ready. The host runs the
// match after this signals rather than polling the phase.
func (m *Match) Started() <-chan struct{} {
	return m.started
}

// Close abandons the match. Only the seat 0 owner may close it; anyone else
// is refused with a logged warning.
func (m *Match) Close(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	host := m.players[0]
	if host == nil || host.ID != playerID {
		m.logger.Log(log.NewOwnershipRefusedEvent("close match", playerID))
		return ErrNotOwner
	}
	if m.phase == PhaseEnded {
		return nil
	}
	m.phase = PhaseEnded
	m.result = "match closed by host"
	m.logger.Log(log.NewMatchPhaseEvent("ended"))
	return nil
}

// Run drives the match from draft through combat and records the result.
// Call it after Started signals.
func (m *Match) Run(ctx context.Context, drivers [2]SeatDriver) error {
	m.mu.Lock()
	if m.phase != PhaseDraft {
		phase := m.phase
		m.mu.Unlock()
		return fmt.Errorf("run: match is in %s, not draft", phase)
	}
	players := m.players
	m.mu.Unlock()

	if err := m.runDraft(ctx, drivers, players); err != nil {
		return err
	}

	m.mu.Lock()
	m.phase = PhaseCombat
	m.mu.Unlock()
	m.logger.Log(log.NewMatchPhaseEvent("combat"))

	teams, err := m.buildTeams(players)
	if err != nil {
		return err
	}
	tracker := newEntityTracker(m, players)
	enc := game.NewEncounter(game.EncounterConfig{
		Teams:     teams,
		Logger:    tracker,
		Seed:      m.seed,
		NoShuffle: m.noShuffle,
		MaxRounds: m.maxRounds,
	}, drivers[0], drivers[1])

	winner, err := enc.Run(ctx)
	if err != nil {
		return fmt.Errorf("run combat: %w", err)
	}

	m.mu.Lock()
	m.phase = PhaseEnded
	m.winner = winner
	m.result = enc.State.Result
	m.mu.Unlock()
	m.logger.Log(log.NewMatchPhaseEvent("ended"))

	if m.recorder != nil {
		if err := m.recordResult(players, winner); err != nil {
			return fmt.Errorf("record result: %w", err)
		}
	}
	return nil
}

// buildTeams materializes engine decks from the replicated lists.
func (m *Match) buildTeams(players [2]*Player) ([2]game.TeamSetup, error) {
	var teams [2]game.TeamSetup
	for i, p := range players {
		if p == nil {
			return teams, fmt.Errorf("build teams: seat %d is empty", i)
		}
		handler := m.materialize(p.HandlerDeck.Snapshot(), "handler deck")
		pet := m.materialize(p.Pet.Deck.Snapshot(), "pet deck")
		if len(handler) == 0 || len(pet) == 0 {
			return teams, fmt.Errorf("build teams: %s has an empty deck", p.Name)
		}
		teams[i] = game.TeamSetup{
			HandlerName: p.Name,
			HandlerDeck: handler,
			PetName:     p.Pet.Name,
			PetHP:       p.Pet.Species.MaxHP,
			PetDeck:     pet,
		}
	}
	return teams, nil
}

// materialize resolves a replicated ID list into card definitions.
// Identifiers that no longer resolve are logged and skipped rather than
// fielding placeholder cards.
func (m *Match) materialize(ids []card.ID, what string) []*card.Data {
	out := make([]*card.Data, 0, len(ids))
	for _, id := range ids {
		d, ok := m.registry.ByID(id)
		if !ok {
			m.logger.Log(log.NewResolveMissEvent(int(id), what))
			continue
		}
		out = append(out, d)
	}
	return out
}

func (m *Match) recordResult(players [2]*Player, winner int) error {
	if winner < 0 {
		return m.recorder.RecordResult(players[0].Name, players[1].Name, true)
	}
	return m.recorder.RecordResult(players[winner].Name, players[1-winner].Name, false)
}

// CurrentPhase returns the phase the match is in.
func (m *Match) CurrentPhase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// PlayerAt returns the player in a seat, if any.
func (m *Match) PlayerAt(seat int) (*Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seat < 0 || seat > 1 || m.players[seat] == nil {
		return nil, false
	}
	return m.players[seat], true
}

// PlayerByID returns a seated player by identity, if any.
func (m *Match) PlayerByID(id string) (*Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.playerByIDLocked(id)
	return p, p != nil
}

func (m *Match) playerByIDLocked(id string) *Player {
	for _, p := range m.players {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// Outcome returns the winning seat (-1 for a draw) and the result text.
// Meaningful once the match has ended.
func (m *Match) Outcome() (int, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winner, m.result
}
