package web

import (
	"strings"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/match"
	"github.com/ValleyOfWalls/wildhand/internal/store"
)

// CardInfo is the JSON representation of a card for /api/cards.
type CardInfo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
	Type        string `json:"type"`
	Affinity    string `json:"affinity"`
	Rarity      string `json:"rarity"`
	ArtPath     string `json:"artPath,omitempty"`
}

// DeckInfo is the JSON representation of a starter deck for /api/decks.
type DeckInfo struct {
	Name  string         `json:"name"`
	Kind  string         `json:"kind"`
	Cards []DeckCardInfo `json:"cards"`
}

// DeckCardInfo is one distinct card in a deck listing.
type DeckCardInfo struct {
	ID     int `json:"id"`
	Copies int `json:"copies"`
}

// SpeciesInfo is the JSON representation of a pet species for /api/species.
type SpeciesInfo struct {
	Name  string `json:"name"`
	MaxHP int    `json:"maxHp"`
	Deck  string `json:"deck"`
}

// ProfileInfo is the JSON representation of a handler profile for
// /api/profiles. Deck contents stay out; the browser only shows records.
type ProfileInfo struct {
	Name         string `json:"name"`
	Species      string `json:"species"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HandlerCards int    `json:"handlerCards"`
	PetCards     int    `json:"petCards"`
}

func cardInfo(d *card.Data) CardInfo {
	ci := CardInfo{
		ID:          int(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Cost:        d.Cost,
		Type:        d.Type.String(),
		Affinity:    d.Affinity.String(),
		Rarity:      d.Rarity.String(),
	}
	// Catalog art paths carry an "art/" prefix; /art/ already serves
	// from that directory.
	if d.Art != "" {
		ci.ArtPath = "/art/" + strings.TrimPrefix(d.Art, "art/")
	}
	return ci
}

func deckInfo(t card.Template) DeckInfo {
	kind := "handler"
	if t.Kind == card.AffinityPet {
		kind = "pet"
	}
	di := DeckInfo{Name: t.Name, Kind: kind}

	// Collapse repeats into copy counts, keeping first-seen order.
	index := make(map[card.ID]int)
	for _, id := range t.Cards {
		if at, ok := index[id]; ok {
			di.Cards[at].Copies++
			continue
		}
		index[id] = len(di.Cards)
		di.Cards = append(di.Cards, DeckCardInfo{ID: int(id), Copies: 1})
	}
	return di
}

func speciesInfo() []SpeciesInfo {
	var out []SpeciesInfo
	for _, sp := range match.AllSpecies() {
		out = append(out, SpeciesInfo{Name: sp.Name, MaxHP: sp.MaxHP, Deck: sp.Deck})
	}
	return out
}

func profileInfo(p store.Profile) ProfileInfo {
	return ProfileInfo{
		Name:         p.Name,
		Species:      p.PetSpecies,
		Wins:         p.Wins,
		Losses:       p.Losses,
		HandlerCards: len(p.HandlerDeck),
		PetCards:     len(p.PetDeck),
	}
}
