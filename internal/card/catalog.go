package card

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed cards.yaml
var defaultCatalogYAML []byte

// Catalog is the full set of card definitions, loaded once and immutable after.
type Catalog struct {
	cards  []*Data
	byID   map[ID]*Data
	byName map[string]*Data // lowercased name
}

type catalogFile struct {
	Cards []rawCard `yaml:"cards"`
}

type rawCard struct {
	ID          int         `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Cost        int         `yaml:"cost"`
	Type        string      `yaml:"type"`
	Rarity      string      `yaml:"rarity"`
	Affinity    string      `yaml:"affinity"`
	Art         string      `yaml:"art"`
	Icon        string      `yaml:"icon"`
	Effects     []rawEffect `yaml:"effects"`
}

type rawEffect struct {
	Kind   string `yaml:"kind"`
	Amount int    `yaml:"amount"`
	Target string `yaml:"target"`
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog from path, falling back to the embedded one when
// path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	if len(cf.Cards) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	cat := &Catalog{
		byID:   make(map[ID]*Data, len(cf.Cards)),
		byName: make(map[string]*Data, len(cf.Cards)),
	}

	for _, rc := range cf.Cards {
		d, err := convertCard(rc)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", rc.Name, err)
		}
		if _, dup := cat.byID[d.ID]; dup {
			return nil, fmt.Errorf("card %q: duplicate id %d", d.Name, d.ID)
		}
		lower := strings.ToLower(d.Name)
		if other, dup := cat.byName[lower]; dup {
			return nil, fmt.Errorf("card %q: name collides with %q", d.Name, other.Name)
		}
		cat.cards = append(cat.cards, d)
		cat.byID[d.ID] = d
		cat.byName[lower] = d
	}

	return cat, nil
}

func convertCard(rc rawCard) (*Data, error) {
	if rc.ID <= 0 {
		return nil, fmt.Errorf("id must be positive, got %d", rc.ID)
	}
	if rc.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if rc.Cost < 0 {
		return nil, fmt.Errorf("cost must not be negative, got %d", rc.Cost)
	}
	if len(rc.Effects) == 0 {
		return nil, fmt.Errorf("at least one effect is required")
	}

	typ, err := ParseType(rc.Type)
	if err != nil {
		return nil, err
	}
	rarity, err := ParseRarity(rc.Rarity)
	if err != nil {
		return nil, err
	}
	affinity, err := ParseAffinity(rc.Affinity)
	if err != nil {
		return nil, err
	}

	d := &Data{
		ID:          ID(rc.ID),
		Name:        rc.Name,
		Description: rc.Description,
		Cost:        rc.Cost,
		Type:        typ,
		Rarity:      rarity,
		Affinity:    affinity,
		Art:         rc.Art,
		Icon:        rc.Icon,
	}

	for i, re := range rc.Effects {
		kind, err := ParseEffectKind(re.Kind)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		target, err := ParseTarget(re.Target)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		// Cleanse removes everything; its amount is ignored.
		if re.Amount <= 0 && kind != EffectCleanse {
			return nil, fmt.Errorf("effect %d: amount must be positive for %s", i, kind)
		}
		d.Effects = append(d.Effects, Effect{Kind: kind, Amount: re.Amount, Target: target})
	}

	return d, nil
}

// ByID returns the definition for id.
func (c *Catalog) ByID(id ID) (*Data, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// ByName returns the definition whose name matches exactly, ignoring case.
func (c *Catalog) ByName(name string) (*Data, bool) {
	d, ok := c.byName[strings.ToLower(name)]
	return d, ok
}

// All returns every definition in catalog order. Callers must not mutate.
func (c *Catalog) All() []*Data {
	return c.cards
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.cards)
}
