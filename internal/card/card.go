package card

import "fmt"

// ID is a stable numeric card identifier. IDs are unique across the catalog
// and are what travels on the wire and into persistence; names are for humans.
type ID int

// Type classifies how a card is played.
type Type int

const (
	TypeAttack Type = iota
	TypeSkill
	TypePower
)

func (t Type) String() string {
	switch t {
	case TypeAttack:
		return "Attack"
	case TypeSkill:
		return "Skill"
	case TypePower:
		return "Power"
	}
	return "Unknown"
}

// ParseType converts a catalog string into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "attack":
		return TypeAttack, nil
	case "skill":
		return TypeSkill, nil
	case "power":
		return TypePower, nil
	}
	return 0, fmt.Errorf("unknown card type %q", s)
}

// EffectKind identifies one effect clause's behavior.
type EffectKind int

const (
	EffectDamage EffectKind = iota
	EffectBlock
	EffectHeal
	EffectDraw
	EffectEnergy
	EffectStrength
	EffectWeak
	EffectVulnerable
	EffectPoison
	EffectThorns
	EffectCleanse
)

func (k EffectKind) String() string {
	switch k {
	case EffectDamage:
		return "damage"
	case EffectBlock:
		return "block"
	case EffectHeal:
		return "heal"
	case EffectDraw:
		return "draw"
	case EffectEnergy:
		return "energy"
	case EffectStrength:
		return "strength"
	case EffectWeak:
		return "weak"
	case EffectVulnerable:
		return "vulnerable"
	case EffectPoison:
		return "poison"
	case EffectThorns:
		return "thorns"
	case EffectCleanse:
		return "cleanse"
	}
	return "unknown"
}

// ParseEffectKind converts a catalog string into an EffectKind.
func ParseEffectKind(s string) (EffectKind, error) {
	kinds := map[string]EffectKind{
		"damage":     EffectDamage,
		"block":      EffectBlock,
		"heal":       EffectHeal,
		"draw":       EffectDraw,
		"energy":     EffectEnergy,
		"strength":   EffectStrength,
		"weak":       EffectWeak,
		"vulnerable": EffectVulnerable,
		"poison":     EffectPoison,
		"thorns":     EffectThorns,
		"cleanse":    EffectCleanse,
	}
	k, ok := kinds[s]
	if !ok {
		return 0, fmt.Errorf("unknown effect kind %q", s)
	}
	return k, nil
}

// Target selects which combatants an effect clause applies to.
type Target int

const (
	TargetSelf Target = iota
	TargetSingleEnemy
	TargetAllEnemies
	TargetSingleAlly
	TargetAllAllies
)

func (t Target) String() string {
	switch t {
	case TargetSelf:
		return "self"
	case TargetSingleEnemy:
		return "single-enemy"
	case TargetAllEnemies:
		return "all-enemies"
	case TargetSingleAlly:
		return "single-ally"
	case TargetAllAllies:
		return "all-allies"
	}
	return "unknown"
}

// ParseTarget converts a catalog string into a Target.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "self":
		return TargetSelf, nil
	case "single-enemy":
		return TargetSingleEnemy, nil
	case "all-enemies":
		return TargetAllEnemies, nil
	case "single-ally":
		return TargetSingleAlly, nil
	case "all-allies":
		return TargetAllAllies, nil
	}
	return 0, fmt.Errorf("unknown target %q", s)
}

// Rarity drives draft-offer weighting.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
)

func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "common"
	case RarityUncommon:
		return "uncommon"
	case RarityRare:
		return "rare"
	}
	return "unknown"
}

// ParseRarity converts a catalog string into a Rarity.
func ParseRarity(s string) (Rarity, error) {
	switch s {
	case "common":
		return RarityCommon, nil
	case "uncommon":
		return RarityUncommon, nil
	case "rare":
		return RarityRare, nil
	}
	return 0, fmt.Errorf("unknown rarity %q", s)
}

// Affinity restricts which combatant kind may carry a card.
type Affinity int

const (
	AffinityHandler Affinity = iota
	AffinityPet
	AffinityAny
)

func (a Affinity) String() string {
	switch a {
	case AffinityHandler:
		return "handler"
	case AffinityPet:
		return "pet"
	case AffinityAny:
		return "any"
	}
	return "unknown"
}

// ParseAffinity converts a catalog string into an Affinity.
func ParseAffinity(s string) (Affinity, error) {
	switch s {
	case "handler":
		return AffinityHandler, nil
	case "pet":
		return AffinityPet, nil
	case "any":
		return AffinityAny, nil
	}
	return 0, fmt.Errorf("unknown affinity %q", s)
}

// Effect is one clause on a card: do Kind with Amount to Target.
// Clauses apply in the order they appear on the card.
type Effect struct {
	Kind   EffectKind
	Amount int
	Target Target
}

func (e Effect) String() string {
	return fmt.Sprintf("%s %d %s", e.Kind, e.Amount, e.Target)
}

// Data is one immutable card definition. Instances reference Data; nothing
// mutates it after the catalog loads.
type Data struct {
	ID          ID
	Name        string
	Description string
	Cost        int
	Type        Type
	Rarity      Rarity
	Affinity    Affinity
	Effects     []Effect
	Art         string
	Icon        string
}

// Placeholder returns the degraded stand-in definition used when an identifier
// cannot be resolved. The card stays visible but inert.
func Placeholder(id ID) *Data {
	return &Data{
		ID:          id,
		Name:        "CARD NOT FOUND",
		Description: fmt.Sprintf("Missing card: %d", id),
	}
}

// IsPlaceholder reports whether d is the degraded stand-in for a failed lookup.
func IsPlaceholder(d *Data) bool {
	return d != nil && d.Name == "CARD NOT FOUND"
}
