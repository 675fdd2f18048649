package match

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/log"
	"github.com/ValleyOfWalls/wildhand/internal/replica"
)

// Species describes one pet kind a player can bring into a match.
type Species struct {
	Name  string
	MaxHP int
	Deck  string // starter template name
}

var speciesTable = []Species{
	{Name: "Emberwolf", MaxHP: 28, Deck: "Emberwolf Starter"},
	{Name: "Mosstoad", MaxHP: 34, Deck: "Mosstoad Starter"},
	{Name: "Galeraven", MaxHP: 24, Deck: "Galeraven Starter"},
}

// AllSpecies returns the pet kinds players can choose from.
func AllSpecies() []Species {
	out := make([]Species, len(speciesTable))
	copy(out, speciesTable)
	return out
}

// SpeciesNamed looks a species up by name, case-insensitively.
func SpeciesNamed(name string) (Species, bool) {
	for _, s := range speciesTable {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Species{}, false
}

// Player is one seated participant. The deck lists are replicated: the match
// authority appends, every other participant watches.
type Player struct {
	ID   string
	Name string
	Seat int

	Pet         *Pet
	HandlerDeck *replica.List[card.ID]
	Hand        *HandlerHand

	mu          sync.Mutex
	ready       bool
	decksInited bool
}

// Pet is a player's companion. It fights alongside the handler and draws
// from its own persistent deck.
type Pet struct {
	Species Species
	Name    string
	Owner   *Player
	Deck    *replica.List[card.ID]
	Hand    *PetHand
}

// NewPlayer seats a participant with a fresh identity, empty replicated
// decks, and hands already bound to the new player ID.
func NewPlayer(auth *replica.Authority, seat int, name string, sp Species) *Player {
	p := &Player{
		ID:          uuid.New().String(),
		Name:        name,
		Seat:        seat,
		HandlerDeck: replica.NewList[card.ID](auth),
	}
	p.Hand = NewHandlerHand(p.ID)
	p.Pet = &Pet{
		Species: sp,
		Name:    fmt.Sprintf("%s's %s", name, sp.Name),
		Owner:   p,
		Deck:    replica.NewList[card.ID](auth),
	}
	p.Pet.Hand = NewPetHand(p.ID)
	return p
}

// SetReady flips the lobby ready flag.
func (p *Player) SetReady(ready bool) {
	p.mu.Lock()
	p.ready = ready
	p.mu.Unlock()
}

// Ready reports the lobby ready flag.
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// InitDecks fills both replicated deck lists from starter templates. It runs
// once per player lifetime: a second call is refused and logged, and the
// lists keep their contents. Only the match authority's token can write, so
// a wrong token fails the appends and leaves the guard unset.
func (p *Player) InitDecks(auth *replica.Authority, logger log.EventLogger, handler, pet card.Template) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.decksInited {
		if logger != nil {
			logger.Log(log.NewInitRefusedEvent(p.Name))
		}
		return nil
	}
	for _, id := range handler.Cards {
		if err := p.HandlerDeck.Append(auth, id); err != nil {
			return fmt.Errorf("init handler deck for %s: %w", p.Name, err)
		}
	}
	for _, id := range pet.Cards {
		if err := p.Pet.Deck.Append(auth, id); err != nil {
			return fmt.Errorf("init pet deck for %s: %w", p.Name, err)
		}
	}
	p.decksInited = true
	return nil
}
