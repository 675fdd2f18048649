package game

import (
	"fmt"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/deck"
)

// --- Enums ---

type Phase int

const (
	PhaseNone Phase = iota
	PhaseUpkeep
	PhaseDraw
	PhaseMain
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseUpkeep:
		return "Upkeep"
	case PhaseDraw:
		return "Draw"
	case PhaseMain:
		return "Main"
	case PhaseEnd:
		return "End"
	default:
		return "None"
	}
}

type CombatantKind int

const (
	KindHandler CombatantKind = iota
	KindPet
)

func (k CombatantKind) String() string {
	if k == KindHandler {
		return "Handler"
	}
	return "Pet"
}

// Status is a stacking counter on a combatant. Strength and Thorns last the
// whole encounter; Poison ticks down at its carrier's upkeep; Weak and
// Vulnerable tick down at their carrier's turn end.
type Status int

const (
	StatusStrength Status = iota
	StatusWeak
	StatusVulnerable
	StatusPoison
	StatusThorns
)

func (s Status) String() string {
	switch s {
	case StatusStrength:
		return "strength"
	case StatusWeak:
		return "weak"
	case StatusVulnerable:
		return "vulnerable"
	case StatusPoison:
		return "poison"
	case StatusThorns:
		return "thorns"
	default:
		return "unknown"
	}
}

// Debuff reports whether a cleanse removes this status.
func (s Status) Debuff() bool {
	return s == StatusWeak || s == StatusVulnerable || s == StatusPoison
}

// --- CardInstance (runtime copy of a definition within one encounter) ---

type CardInstance struct {
	ID    int // unique instance ID within an encounter
	Data  *card.Data
	Owner *Combatant // combatant whose deck this card came from
}

func (ci *CardInstance) String() string {
	if ci == nil {
		return "(none)"
	}
	return fmt.Sprintf("%s (%d)", ci.Data.Name, ci.Data.Cost)
}

// --- Combatant ---

// Combatant is one fighter: a handler or their pet. Each carries its own
// deck and hand; energy is pooled on the Team.
type Combatant struct {
	Name  string
	Kind  CombatantKind
	Team  int // team index (0 or 1)
	MaxHP int
	HP    int
	Block int

	Statuses map[Status]int

	Deck      *deck.RuntimeDeck
	Hand      []*CardInstance
	Exhausted []*CardInstance // powers removed for the rest of the encounter

	Retired bool // pets only; set when HP reaches 0
}

// Alive reports whether the combatant still takes part in the encounter.
func (c *Combatant) Alive() bool {
	return c.HP > 0 && !c.Retired
}

// Status returns the current stack count for s (0 when absent).
func (c *Combatant) Status(s Status) int {
	return c.Statuses[s]
}

// AddStatus adjusts the stack count for s. Counts never go below zero; an
// empty status is removed from the map.
func (c *Combatant) AddStatus(s Status, n int) {
	if c.Statuses == nil {
		c.Statuses = make(map[Status]int)
	}
	c.Statuses[s] += n
	if c.Statuses[s] <= 0 {
		delete(c.Statuses, s)
	}
}

// Cleanse removes all debuffs and returns the names of what was removed,
// in a stable order.
func (c *Combatant) Cleanse() []string {
	var removed []string
	for _, s := range []Status{StatusWeak, StatusVulnerable, StatusPoison} {
		if c.Statuses[s] > 0 {
			removed = append(removed, s.String())
			delete(c.Statuses, s)
		}
	}
	return removed
}

// HandCount returns the number of cards in hand.
func (c *Combatant) HandCount() int {
	return len(c.Hand)
}

// FindInHand returns the held instance with the given ID, or nil.
func (c *Combatant) FindInHand(instanceID int) *CardInstance {
	for _, ci := range c.Hand {
		if ci.ID == instanceID {
			return ci
		}
	}
	return nil
}

// RemoveFromHand removes the instance from the hand. Returns false if the
// combatant is not holding it.
func (c *Combatant) RemoveFromHand(ci *CardInstance) bool {
	for i, held := range c.Hand {
		if held.ID == ci.ID {
			c.Hand = append(c.Hand[:i], c.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// DiscardHand moves every held card to the deck's discard pile, clears the
// hand and returns the instances that were dropped.
func (c *Combatant) DiscardHand() []*CardInstance {
	if len(c.Hand) == 0 {
		return nil
	}
	dropped := make([]*CardInstance, len(c.Hand))
	copy(dropped, c.Hand)
	data := make([]*card.Data, len(c.Hand))
	for i, ci := range c.Hand {
		data[i] = ci.Data
	}
	c.Deck.DiscardHand(&data)
	c.Hand = c.Hand[:0]
	return dropped
}

// Exhaust removes a played power from circulation for the encounter.
func (c *Combatant) Exhaust(ci *CardInstance) {
	c.Exhausted = append(c.Exhausted, ci)
}

// --- Plays ---

type PlayType int

const (
	PlayCard PlayType = iota
	PlayEndTurn
)

func (p PlayType) String() string {
	if p == PlayCard {
		return "Play Card"
	}
	return "End Turn"
}

// Play is one choice offered to a controller: play a specific held card, or
// end the team's turn.
type Play struct {
	Type   PlayType
	Team   int
	Source *Combatant    // whose hand the card is in (nil for end turn)
	Card   *CardInstance // nil for end turn
	Cost   int
	Desc   string // human-readable description
}

func (p Play) String() string {
	if p.Desc != "" {
		return p.Desc
	}
	return p.Type.String()
}
