package match

import (
	"context"
	"math/rand"
	"time"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/game"
	"github.com/ValleyOfWalls/wildhand/internal/log"
)

// AutoDriver is a rules-legal automatic seat: it drafts and plays with a
// seeded RNG. The simulate command runs matches with two of these.
type AutoDriver struct {
	rng *rand.Rand
}

// NewAutoDriver creates an automatic seat driver. Seed 0 derives one from
// the clock.
func NewAutoDriver(seed int64) *AutoDriver {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &AutoDriver{rng: rand.New(rand.NewSource(seed))}
}

// ChoosePlay plays a random affordable card while one exists, otherwise
// ends the turn.
func (d *AutoDriver) ChoosePlay(ctx context.Context, state *game.EncounterState, plays []game.Play) (game.Play, error) {
	end := plays[len(plays)-1]
	var cards []game.Play
	for _, p := range plays {
		if p.Type == game.PlayCard {
			cards = append(cards, p)
		} else {
			end = p
		}
	}
	if len(cards) > 0 {
		return cards[d.rng.Intn(len(cards))], nil
	}
	return end, nil
}

// ChooseTarget picks a random candidate.
func (d *AutoDriver) ChooseTarget(ctx context.Context, state *game.EncounterState, prompt string, candidates []*game.Combatant) (*game.Combatant, error) {
	return candidates[d.rng.Intn(len(candidates))], nil
}

// PickCard drafts a random card from the offer.
func (d *AutoDriver) PickCard(ctx context.Context, round int, offer []*card.Data, dest card.Affinity) (int, error) {
	return d.rng.Intn(len(offer)), nil
}

// Notify discards events.
func (d *AutoDriver) Notify(ctx context.Context, event log.GameEvent) error {
	return nil
}
