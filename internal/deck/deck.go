// Package deck implements live draw/discard piles and the factories that
// materialize them from authored templates. Definitions stay immutable; a
// RuntimeDeck only moves cards between its piles, never duplicates or drops
// them.
package deck

import (
	"fmt"
	"math/rand"

	"github.com/ValleyOfWalls/wildhand/internal/card"
)

// WarnFunc receives warning-class deck conditions (nil discard, reshuffling an
// empty discard pile, unresolvable card IDs). May be nil.
type WarnFunc func(format string, args ...any)

// Resolver resolves card IDs to definitions. *card.Registry and *card.Catalog
// both satisfy it.
type Resolver interface {
	ByID(card.ID) (*card.Data, bool)
}

// RuntimeDeck is the live pile pair for one combatant. The top of the draw
// pile is the end of the slice.
type RuntimeDeck struct {
	name string
	kind card.Affinity
	rng  *rand.Rand
	warn WarnFunc

	draw    []*card.Data
	discard []*card.Data
}

// New wraps already materialized definitions in a RuntimeDeck. The last
// element of cards ends up on top of the draw pile. The deck is not shuffled
// here.
func New(name string, kind card.Affinity, cards []*card.Data, rng *rand.Rand, warn WarnFunc) *RuntimeDeck {
	d := &RuntimeDeck{name: name, kind: kind, rng: rng, warn: warn}
	d.draw = append(d.draw, cards...)
	return d
}

// Build materializes a RuntimeDeck from a card ID list. IDs that do not
// resolve are skipped with a warning; the deck is built from whatever remains.
// The deck is not shuffled here.
func Build(name string, kind card.Affinity, ids []card.ID, res Resolver, rng *rand.Rand, warn WarnFunc) *RuntimeDeck {
	d := &RuntimeDeck{name: name, kind: kind, rng: rng, warn: warn}
	for _, id := range ids {
		data, ok := res.ByID(id)
		if !ok {
			d.warnf("deck %s: card id %d not in catalog, skipping", name, id)
			continue
		}
		d.draw = append(d.draw, data)
	}
	return d
}

// FromTemplate materializes a RuntimeDeck from a template without shuffling.
func FromTemplate(t card.Template, res Resolver, rng *rand.Rand, warn WarnFunc) *RuntimeDeck {
	return Build(t.Name, t.Kind, t.Cards, res, rng, warn)
}

// Shuffle randomizes the draw pile in place (Fisher-Yates). The discard pile
// is untouched.
func (d *RuntimeDeck) Shuffle() {
	for i := len(d.draw) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.draw[i], d.draw[j] = d.draw[j], d.draw[i]
	}
}

// Draw removes and returns the top card of the draw pile. An empty draw pile
// is first refilled from the discard pile (one shuffle); when both piles are
// empty Draw returns nil. The nil result is a normal terminal state, not an
// error.
func (d *RuntimeDeck) Draw() *card.Data {
	if len(d.draw) == 0 && len(d.discard) > 0 {
		d.draw = append(d.draw, d.discard...)
		d.discard = d.discard[:0]
		d.Shuffle()
	}
	if len(d.draw) == 0 {
		return nil
	}
	top := d.draw[len(d.draw)-1]
	d.draw = d.draw[:len(d.draw)-1]
	return top
}

// DiscardCard appends one card to the discard pile. A nil card is refused so
// pile counts stay honest.
func (d *RuntimeDeck) DiscardCard(c *card.Data) {
	if c == nil {
		d.warnf("deck %s: refusing to discard a nil card", d.name)
		return
	}
	d.discard = append(d.discard, c)
}

// DiscardHand appends every card in hand to the discard pile and clears the
// source slice.
func (d *RuntimeDeck) DiscardHand(hand *[]*card.Data) {
	if hand == nil {
		return
	}
	for _, c := range *hand {
		d.DiscardCard(c)
	}
	*hand = (*hand)[:0]
}

// Reshuffle moves the discard pile into the draw pile and shuffles. When the
// discard pile is empty this is a warned no-op.
func (d *RuntimeDeck) Reshuffle() {
	if len(d.discard) == 0 {
		d.warnf("deck %s: reshuffle with empty discard pile", d.name)
		return
	}
	d.draw = append(d.draw, d.discard...)
	d.discard = d.discard[:0]
	d.Shuffle()
}

// DrawCount returns the draw pile size.
func (d *RuntimeDeck) DrawCount() int {
	return len(d.draw)
}

// DiscardCount returns the discard pile size.
func (d *RuntimeDeck) DiscardCount() int {
	return len(d.discard)
}

// Name returns the deck's display name.
func (d *RuntimeDeck) Name() string {
	return d.name
}

// Kind returns the deck's combatant affinity.
func (d *RuntimeDeck) Kind() card.Affinity {
	return d.kind
}

func (d *RuntimeDeck) warnf(format string, args ...any) {
	if d.warn != nil {
		d.warn(format, args...)
	}
}

// Source materializes starter decks from the registry's templates. Every deck
// it returns is already shuffled.
type Source struct {
	reg  *card.Registry
	rng  *rand.Rand
	warn WarnFunc
}

// NewSource builds a Source around a registry and a random source.
func NewSource(reg *card.Registry, rng *rand.Rand, warn WarnFunc) *Source {
	return &Source{reg: reg, rng: rng, warn: warn}
}

// HandlerStarter materializes and shuffles the handler starter deck.
func (s *Source) HandlerStarter() *RuntimeDeck {
	d := FromTemplate(s.reg.HandlerTemplate(), s.reg, s.rng, s.warn)
	d.Shuffle()
	return d
}

// PetStarter materializes and shuffles the pet starter deck at index.
func (s *Source) PetStarter(index int) (*RuntimeDeck, error) {
	t, ok := s.reg.PetTemplateAt(index)
	if !ok {
		return nil, fmt.Errorf("no pet starter deck at index %d", index)
	}
	d := FromTemplate(t, s.reg, s.rng, s.warn)
	d.Shuffle()
	return d, nil
}

// RandomPetStarter materializes and shuffles a randomly chosen pet starter.
func (s *Source) RandomPetStarter() *RuntimeDeck {
	pets := s.reg.PetTemplates()
	t := pets[s.rng.Intn(len(pets))]
	d := FromTemplate(t, s.reg, s.rng, s.warn)
	d.Shuffle()
	return d
}
