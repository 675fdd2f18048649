package match

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/log"
	"github.com/ValleyOfWalls/wildhand/internal/replica"
)

// DefaultDraftRounds is the number of offers each player answers before
// combat.
const DefaultDraftRounds = 3

const draftOfferSize = 3

// rollRarity picks an offer slot's rarity: common 70, uncommon 25, rare 5.
func rollRarity(rng *rand.Rand) card.Rarity {
	switch n := rng.Intn(100); {
	case n < 70:
		return card.RarityCommon
	case n < 95:
		return card.RarityUncommon
	default:
		return card.RarityRare
	}
}

// draftPool returns the catalog cards a destination deck may draft. Cards
// with AffinityAny fit either deck.
func (m *Match) draftPool(dest card.Affinity) []*card.Data {
	var pool []*card.Data
	for _, d := range m.registry.Catalog().All() {
		if d.Affinity == dest || d.Affinity == card.AffinityAny {
			pool = append(pool, d)
		}
	}
	return pool
}

// pickOffered draws one card of rarity r from the pool, excluding cards
// already in the offer. Empty buckets fall back to the next rarity down.
func pickOffered(rng *rand.Rand, pool []*card.Data, r card.Rarity, taken []*card.Data) *card.Data {
	for {
		var cands []*card.Data
		for _, d := range pool {
			if d.Rarity != r || offered(taken, d.ID) {
				continue
			}
			cands = append(cands, d)
		}
		if len(cands) > 0 {
			return cands[rng.Intn(len(cands))]
		}
		switch r {
		case card.RarityRare:
			r = card.RarityUncommon
		case card.RarityUncommon:
			r = card.RarityCommon
		default:
			return nil
		}
	}
}

func offered(taken []*card.Data, id card.ID) bool {
	for _, d := range taken {
		if d.ID == id {
			return true
		}
	}
	return false
}

// dealOffer assembles one rarity-weighted offer of distinct cards for a
// destination deck. Unpicked cards simply stay in the catalog pool.
func (m *Match) dealOffer(dest card.Affinity) []*card.Data {
	pool := m.draftPool(dest)
	offer := make([]*card.Data, 0, draftOfferSize)
	for len(offer) < draftOfferSize {
		d := pickOffered(m.rng, pool, rollRarity(m.rng), offer)
		if d == nil {
			break
		}
		offer = append(offer, d)
	}
	return offer
}

// runDraft deals each player one offer per round, alternating the
// destination between handler and pet deck, and appends picks to the
// replicated lists. An out-of-range pick is refused and the first card is
// taken instead.
func (m *Match) runDraft(ctx context.Context, drivers [2]SeatDriver, players [2]*Player) error {
	for round := 1; round <= m.draftRounds; round++ {
		dest := card.AffinityHandler
		if round%2 == 0 {
			dest = card.AffinityPet
		}
		for seat, p := range players {
			offer := m.dealOffer(dest)
			if len(offer) == 0 {
				return fmt.Errorf("draft round %d: empty offer", round)
			}
			names := make([]string, len(offer))
			for i, d := range offer {
				names[i] = d.Name
			}
			m.logger.Log(log.NewDraftOfferEvent(round, seat, names))

			idx, err := drivers[seat].PickCard(ctx, round, offer, dest)
			if err != nil {
				return fmt.Errorf("draft pick for %s: %w", p.Name, err)
			}
			if idx < 0 || idx >= len(offer) {
				m.logger.Log(log.NewDeckWarningEvent(fmt.Sprintf(
					"draft pick %d out of range for %s, taking %s", idx, p.Name, offer[0].Name)))
				idx = 0
			}
			picked := offer[idx]

			var destList *replica.List[card.ID]
			var destName string
			if dest == card.AffinityHandler {
				destList = p.HandlerDeck
				destName = "handler deck"
			} else {
				destList = p.Pet.Deck
				destName = fmt.Sprintf("%s deck", p.Pet.Species.Name)
			}
			if err := destList.Append(m.auth, picked.ID); err != nil {
				return fmt.Errorf("append draft pick: %w", err)
			}
			ev := log.NewDraftPickEvent(round, seat, picked.Name, int(picked.ID), destName)
			m.logger.Log(ev)
			for _, d := range drivers {
				_ = d.Notify(ctx, ev)
			}
		}
	}
	return nil
}
