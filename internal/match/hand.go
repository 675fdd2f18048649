package match

import (
	"fmt"
	"sync"
)

// Hand is the capability a card entity needs from its container: owner
// lookup, a stable replication key, and attach/detach. HandlerHand and
// PetHand both satisfy it; callers never inspect the concrete type.
type Hand interface {
	// OwnerID returns the owning player's identity.
	OwnerID() string
	// Key returns the stable key entities carry to name this hand.
	Key() string
	// Attach registers an entity with the hand. Attaching the same entity
	// twice is a no-op.
	Attach(e *CardEntity) error
	// Detach removes an entity by identifier. Unknown IDs are ignored.
	Detach(id int)
	// Entities returns the attached entities in attach order.
	Entities() []*CardEntity
	// Ready is closed once the hand is bound to its owner. Attachment paths
	// wait on it rather than polling.
	Ready() <-chan struct{}
}

// HandRef names one hand for observers: which key belongs to which owner.
// The match announces these on a replicated list as players join.
type HandRef struct {
	Key     string
	OwnerID string
}

// HandlerHandKey returns the replication key of a player's handler hand.
func HandlerHandKey(playerID string) string { return playerID + "/handler" }

// PetHandKey returns the replication key of a player's pet hand.
func PetHandKey(playerID string) string { return playerID + "/pet" }

// baseHand carries the mechanics shared by both hand kinds.
type baseHand struct {
	key string

	mu      sync.Mutex
	ownerID string
	bound   bool
	cards   []*CardEntity
	ready   chan struct{}
}

func newBaseHand(key string) baseHand {
	return baseHand{key: key, ready: make(chan struct{})}
}

// Bind wires the hand to its owner and closes the readiness signal. The
// first owner wins; binding again is a no-op.
func (h *baseHand) Bind(ownerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bound {
		return
	}
	h.ownerID = ownerID
	h.bound = true
	close(h.ready)
}

func (h *baseHand) OwnerID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ownerID
}

func (h *baseHand) Key() string { return h.key }

func (h *baseHand) Ready() <-chan struct{} { return h.ready }

func (h *baseHand) Attach(e *CardEntity) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.bound {
		return fmt.Errorf("hand %q is not bound to an owner", h.key)
	}
	for _, have := range h.cards {
		if have.ID == e.ID {
			return nil
		}
	}
	h.cards = append(h.cards, e)
	return nil
}

func (h *baseHand) Detach(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.cards {
		if e.ID == id {
			h.cards = append(h.cards[:i], h.cards[i+1:]...)
			return
		}
	}
}

func (h *baseHand) Entities() []*CardEntity {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*CardEntity, len(h.cards))
	copy(out, h.cards)
	return out
}

// HandlerHand holds the card entities drawn from a player's handler deck.
type HandlerHand struct {
	baseHand
}

// NewHandlerHand creates a handler hand bound to its owner.
func NewHandlerHand(ownerID string) *HandlerHand {
	h := &HandlerHand{baseHand: newBaseHand(HandlerHandKey(ownerID))}
	h.Bind(ownerID)
	return h
}

// PetHand holds the card entities drawn from a pet's deck.
type PetHand struct {
	baseHand
}

// NewPetHand creates a pet hand bound to its owner.
func NewPetHand(ownerID string) *PetHand {
	h := &PetHand{baseHand: newBaseHand(PetHandKey(ownerID))}
	h.Bind(ownerID)
	return h
}
