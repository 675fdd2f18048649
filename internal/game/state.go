package game

import "github.com/ValleyOfWalls/wildhand/internal/card"

const (
	DefaultHandlerHP  = 70
	DefaultPetHP      = 30
	DefaultHandSize   = 5
	DefaultBaseEnergy = 3
	DefaultMaxRounds  = 30
)

// Team pairs a handler with their pet and holds the energy pool both of
// them spend from.
type Team struct {
	Handler *Combatant
	Pet     *Combatant
	Energy  int
}

// Members returns the handler and pet, in that order.
func (t *Team) Members() []*Combatant {
	return []*Combatant{t.Handler, t.Pet}
}

// Alive returns the members still taking part in the encounter.
func (t *Team) Alive() []*Combatant {
	var out []*Combatant
	for _, m := range t.Members() {
		if m.Alive() {
			out = append(out, m)
		}
	}
	return out
}

// Defeated reports whether the team is out of the fight. A retired pet does
// not defeat a team; a downed handler does.
func (t *Team) Defeated() bool {
	return t.Handler.HP <= 0
}

// HPTotal sums the team's remaining HP. Retired pets count for nothing.
func (t *Team) HPTotal() int {
	total := t.Handler.HP
	if t.Pet.Alive() {
		total += t.Pet.HP
	}
	return total
}

// Index returns the team's seat index.
func (t *Team) Index() int {
	return t.Handler.Team
}

// EncounterState holds all mutable state for one combat encounter.
type EncounterState struct {
	Teams  [2]*Team
	Round  int // 1-based; 0 before the first round
	Acting int // team index whose turn it is
	Phase  Phase
	Over   bool
	Winner int // team index, or -1 for a draw
	Result string

	nextInstanceID int
}

// NewEncounterState creates an empty encounter state.
func NewEncounterState() *EncounterState {
	return &EncounterState{Winner: -1, nextInstanceID: 1}
}

// Opponent returns the other team's index.
func (gs *EncounterState) Opponent(team int) int {
	return 1 - team
}

// ActingTeam returns the team whose turn it is.
func (gs *EncounterState) ActingTeam() *Team {
	return gs.Teams[gs.Acting]
}

// NewInstance wraps a definition in a fresh CardInstance with a unique ID.
func (gs *EncounterState) NewInstance(data *card.Data, owner *Combatant) *CardInstance {
	ci := &CardInstance{ID: gs.nextInstanceID, Data: data, Owner: owner}
	gs.nextInstanceID++
	return ci
}

// EnemiesOf returns the living members of the opposing team.
func (gs *EncounterState) EnemiesOf(team int) []*Combatant {
	return gs.Teams[gs.Opponent(team)].Alive()
}

// AlliesOf returns the living members of c's own team, handler first.
func (gs *EncounterState) AlliesOf(c *Combatant) []*Combatant {
	return gs.Teams[c.Team].Alive()
}

// Teammate returns the other member of c's team, alive or not.
func (gs *EncounterState) Teammate(c *Combatant) *Combatant {
	t := gs.Teams[c.Team]
	if c == t.Handler {
		return t.Pet
	}
	return t.Handler
}

// CombatantNamed returns the combatant with the given display name, or nil.
func (gs *EncounterState) CombatantNamed(name string) *Combatant {
	for _, t := range gs.Teams {
		for _, m := range t.Members() {
			if m.Name == name {
				return m
			}
		}
	}
	return nil
}
