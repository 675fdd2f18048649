package net

import (
	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/game"
	"github.com/ValleyOfWalls/wildhand/internal/log"
)

// BuildStateView renders the encounter from the given seat's perspective.
func BuildStateView(state *game.EncounterState, seat int) *StateView {
	return &StateView{
		Round:    state.Round,
		Phase:    state.Phase.String(),
		YourTurn: state.Acting == seat && !state.Over,
		You:      teamView(state.Teams[seat]),
		Enemy:    teamView(state.Teams[state.Opponent(seat)]),
	}
}

func teamView(t *game.Team) TeamView {
	return TeamView{
		Energy:  t.Energy,
		Handler: fighterView(t.Handler),
		Pet:     fighterView(t.Pet),
	}
}

func fighterView(c *game.Combatant) FighterView {
	fv := FighterView{
		Name:         c.Name,
		HP:           c.HP,
		MaxHP:        c.MaxHP,
		Block:        c.Block,
		Retired:      c.Retired,
		HandCount:    c.HandCount(),
		DrawCount:    c.Deck.DrawCount(),
		DiscardCount: c.Deck.DiscardCount(),
	}
	for s, n := range c.Statuses {
		if n <= 0 {
			continue
		}
		if fv.Statuses == nil {
			fv.Statuses = make(map[string]int)
		}
		fv.Statuses[s.String()] = n
	}
	return fv
}

// BuildPlayViews numbers the legal plays for the wire.
func BuildPlayViews(plays []game.Play) []PlayView {
	views := make([]PlayView, 0, len(plays))
	for i, p := range plays {
		pv := PlayView{Index: i, Kind: "end"}
		if p.Type == game.PlayCard {
			pv.Kind = "card"
			pv.Actor = p.Source.Name
			pv.Entity = p.Card.ID
			pv.CardID = int(p.Card.Data.ID)
			pv.Cost = p.Cost
		}
		views = append(views, pv)
	}
	return views
}

// BuildTargetViews numbers the target candidates.
func BuildTargetViews(candidates []*game.Combatant) []TargetView {
	views := make([]TargetView, 0, len(candidates))
	for i, c := range candidates {
		views = append(views, TargetView{
			Index: i,
			Name:  c.Name,
			HP:    c.HP,
			MaxHP: c.MaxHP,
			Block: c.Block,
		})
	}
	return views
}

// BuildEventView converts a logged event for the wire. The catalog id and
// the rendered details line travel; the raw card name does not.
func BuildEventView(ev log.GameEvent) EventView {
	return EventView{
		Seq:     ev.Seq,
		Round:   ev.Round,
		Phase:   ev.Phase,
		Team:    ev.Team,
		Type:    ev.Type.String(),
		Actor:   ev.Actor,
		CardID:  ev.CardID,
		Entity:  ev.InstanceID,
		Details: ev.Details,
	}
}

// BuildOfferView converts one draft offer.
func BuildOfferView(round int, offer []*card.Data, dest card.Affinity) *OfferView {
	ov := &OfferView{Round: round, Dest: "handler"}
	if dest == card.AffinityPet {
		ov.Dest = "pet"
	}
	for _, d := range offer {
		ov.Cards = append(ov.Cards, int(d.ID))
	}
	return ov
}
