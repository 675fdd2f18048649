package match

import (
	"fmt"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/log"
)

// entityTracker sits between the encounter and the real logger and turns
// combat events into card entity updates: draws spawn entities, and play,
// discard, and exhaust events advance their phases. Clients therefore
// rebuild hands from replicated identifiers alone.
type entityTracker struct {
	inner log.EventLogger
	match *Match
	seats [2]seatInfo
}

type seatInfo struct {
	player      *Player
	handlerName string
	petName     string
}

func newEntityTracker(m *Match, players [2]*Player) *entityTracker {
	t := &entityTracker{inner: m.logger, match: m}
	for i, p := range players {
		t.seats[i] = seatInfo{player: p, handlerName: p.Name, petName: p.Pet.Name}
	}
	return t
}

func (t *entityTracker) Log(ev log.GameEvent) {
	t.inner.Log(ev)
	t.observe(ev)
}

func (t *entityTracker) Events() []log.GameEvent {
	return t.inner.Events()
}

// observe reacts to the events that move cards. Failures are logged and
// swallowed; the engine has already moved on.
func (t *entityTracker) observe(ev log.GameEvent) {
	switch ev.Type {
	case log.EventDraw:
		t.spawn(ev)
	case log.EventPlay:
		t.setPhase(ev.InstanceID, PhasePlayed)
	case log.EventDiscard:
		t.setPhase(ev.InstanceID, PhaseDiscarded)
	case log.EventExhaust:
		t.setPhase(ev.InstanceID, PhaseExhausted)
	}
}

func (t *entityTracker) spawn(ev log.GameEvent) {
	if ev.Team < 0 || ev.Team > 1 || ev.InstanceID == 0 {
		return
	}
	si := t.seats[ev.Team]
	var hand Hand
	switch ev.Actor {
	case si.handlerName:
		hand = si.player.Hand
	case si.petName:
		hand = si.player.Pet.Hand
	default:
		return
	}
	m := t.match
	data, ok := m.registry.ByID(card.ID(ev.CardID))
	if !ok {
		t.inner.Log(log.NewResolveMissEvent(ev.CardID, "entity spawn"))
		return
	}
	if _, err := m.Spawner.Spawn(m.auth, ev.InstanceID, data, si.player.ID, hand); err != nil {
		t.inner.Log(log.NewDeckWarningEvent(fmt.Sprintf("spawn card %d: %v", ev.InstanceID, err)))
	}
}

func (t *entityTracker) setPhase(id int, phase EntityPhase) {
	if id == 0 {
		return
	}
	m := t.match
	if err := m.Spawner.SetPhase(m.auth, id, phase); err != nil {
		t.inner.Log(log.NewDeckWarningEvent(fmt.Sprintf("card %d phase %s: %v", id, phase, err)))
	}
}
