package match

import (
	"fmt"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/replica"
)

// EntityPhase is where a spawned card sits in its lifecycle.
type EntityPhase int

const (
	PhaseInHand EntityPhase = iota
	PhasePlayed
	PhaseDiscarded
	PhaseExhausted
)

func (p EntityPhase) String() string {
	switch p {
	case PhaseInHand:
		return "in-hand"
	case PhasePlayed:
		return "played"
	case PhaseDiscarded:
		return "discarded"
	case PhaseExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Terminal reports whether the phase is final. Terminal cards never return
// to a hand.
func (p EntityPhase) Terminal() bool {
	return p == PhasePlayed || p == PhaseDiscarded || p == PhaseExhausted
}

// CardEntity is one spawned in-play card on the authoritative side. Data is
// held directly here; observers see only the replicated fields and resolve
// data through their own registry.
type CardEntity struct {
	ID   int
	Data *card.Data

	DefID   *replica.Var[card.ID]
	OwnerID *replica.Var[string]
	HandKey *replica.Var[string]
	Phase   *replica.Var[EntityPhase]

	hand Hand
}

func (e *CardEntity) String() string {
	if e.Data != nil {
		return fmt.Sprintf("%s (#%d)", e.Data.Name, e.ID)
	}
	return fmt.Sprintf("card #%d", e.ID)
}
