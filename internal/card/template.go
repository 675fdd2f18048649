package card

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed decks.yaml
var defaultTemplatesYAML []byte

// Template is a named, read-only deck list. Counts from the deck file are
// expanded, so Cards holds one entry per copy.
type Template struct {
	Name  string
	Kind  Affinity // AffinityHandler or AffinityPet
	Cards []ID
}

// Size returns the number of cards in the template.
func (t Template) Size() int {
	return len(t.Cards)
}

type templatesFile struct {
	Decks []rawDeck `yaml:"decks"`
}

type rawDeck struct {
	Name  string         `yaml:"name"`
	Kind  string         `yaml:"kind"`
	Cards []rawDeckEntry `yaml:"cards"`
}

type rawDeckEntry struct {
	Card  string `yaml:"card"`
	Count int    `yaml:"count"`
}

// DefaultTemplates parses the embedded deck file against cat.
func DefaultTemplates(cat *Catalog) ([]Template, error) {
	return ParseTemplates(defaultTemplatesYAML, cat)
}

// LoadTemplates reads a deck file from path, falling back to the embedded one
// when path is empty.
func LoadTemplates(path string, cat *Catalog) ([]Template, error) {
	if path == "" {
		return DefaultTemplates(cat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck file: %w", err)
	}
	return ParseTemplates(data, cat)
}

// ParseTemplates parses and validates deck YAML. Card references must resolve
// exactly (case-insensitive) against the catalog; a typo in an authored file is
// an error here, never a fuzzy match.
func ParseTemplates(data []byte, cat *Catalog) ([]Template, error) {
	var tf templatesFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse deck YAML: %w", err)
	}
	if len(tf.Decks) == 0 {
		return nil, fmt.Errorf("deck file is empty")
	}

	var templates []Template
	handlerCount := 0
	seen := make(map[string]bool)

	for _, rd := range tf.Decks {
		if rd.Name == "" {
			return nil, fmt.Errorf("deck without a name")
		}
		if seen[rd.Name] {
			return nil, fmt.Errorf("duplicate deck name %q", rd.Name)
		}
		seen[rd.Name] = true

		kind, err := ParseAffinity(rd.Kind)
		if err != nil {
			return nil, fmt.Errorf("deck %q: %w", rd.Name, err)
		}
		if kind == AffinityAny {
			return nil, fmt.Errorf("deck %q: kind must be handler or pet", rd.Name)
		}
		if kind == AffinityHandler {
			handlerCount++
		}

		t := Template{Name: rd.Name, Kind: kind}
		for _, entry := range rd.Cards {
			if entry.Count < 1 {
				return nil, fmt.Errorf("deck %q: card %q needs a count of at least 1", rd.Name, entry.Card)
			}
			d, ok := cat.ByName(entry.Card)
			if !ok {
				return nil, fmt.Errorf("deck %q: card %q not in catalog", rd.Name, entry.Card)
			}
			if d.Affinity != AffinityAny && d.Affinity != kind {
				return nil, fmt.Errorf("deck %q: card %q has %s affinity", rd.Name, d.Name, d.Affinity)
			}
			for i := 0; i < entry.Count; i++ {
				t.Cards = append(t.Cards, d.ID)
			}
		}
		if len(t.Cards) == 0 {
			return nil, fmt.Errorf("deck %q has no cards", rd.Name)
		}
		templates = append(templates, t)
	}

	if handlerCount != 1 {
		return nil, fmt.Errorf("deck file must define exactly one handler deck, found %d", handlerCount)
	}

	return templates, nil
}
