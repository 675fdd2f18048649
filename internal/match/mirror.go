package match

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/log"
	"github.com/ValleyOfWalls/wildhand/internal/replica"
)

// ErrNotOwner is returned when a participant tries to manipulate a card it
// does not own. Callers log it as a warning and drop the operation.
var ErrNotOwner = errors.New("match: viewer does not own the card")

// MirrorState is a mirrored card's lifecycle on a non-authoritative
// participant.
type MirrorState int

const (
	MirrorUninitialized MirrorState = iota
	MirrorDataPending
	MirrorReady
	MirrorDragging
	MirrorPlayed
	MirrorDiscarded
	MirrorExhausted
)

func (s MirrorState) String() string {
	switch s {
	case MirrorUninitialized:
		return "uninitialized"
	case MirrorDataPending:
		return "data-pending"
	case MirrorReady:
		return "ready"
	case MirrorDragging:
		return "dragging"
	case MirrorPlayed:
		return "played"
	case MirrorDiscarded:
		return "discarded"
	case MirrorExhausted:
		return "exhausted"
	}
	return "unknown"
}

// MirrorCard is one card as a non-authoritative participant sees it. Fields
// fill in as replicated values arrive, in any order.
type MirrorCard struct {
	ID int

	m        *TableMirror
	state    MirrorState
	defID    card.ID
	hasDef   bool
	data     *card.Data
	ownerID  string
	handKey  string
	phase    EntityPhase
	hasPhase bool
}

// State returns the card's lifecycle state.
func (c *MirrorCard) State() MirrorState {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	return c.state
}

// Data returns the resolved definition, which may be the placeholder while
// the identifier is unresolvable, or nil before an identifier arrives.
func (c *MirrorCard) Data() *card.Data {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	return c.data
}

// Owner returns the owning player's identity, if known.
func (c *MirrorCard) Owner() string {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	return c.ownerID
}

// HandKey returns the hand the card belongs to, if known.
func (c *MirrorCard) HandKey() string {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	return c.handKey
}

// handMirror stands in for a hand that may not have been announced yet.
// Cards referencing it queue until the hand binds to its owner.
type handMirror struct {
	key     string
	ownerID string
	bound   bool
	ready   chan struct{}
	cards   []*MirrorCard
	pending []*MirrorCard
}

// TableMirror is a non-authoritative participant's reconstruction of the
// table. Sync input arrives as granular per-field updates with no ordering
// guarantee across fields; the mirror converges regardless of arrival order.
type TableMirror struct {
	viewerID string
	registry *card.Registry
	logger   log.EventLogger

	mu    sync.Mutex
	cards map[int]*MirrorCard
	order []int
	hands map[string]*handMirror
}

// NewTableMirror creates a mirror for one viewer. The registry is the local
// resolution path for replicated identifiers.
func NewTableMirror(viewerID string, reg *card.Registry, logger log.EventLogger) *TableMirror {
	return &TableMirror{
		viewerID: viewerID,
		registry: reg,
		logger:   logger,
		cards:    make(map[int]*MirrorCard),
		hands:    make(map[string]*handMirror),
	}
}

// card returns the mirror card for an entity, creating it on first sight.
// Callers hold m.mu.
func (m *TableMirror) card(entityID int) *MirrorCard {
	if c, ok := m.cards[entityID]; ok {
		return c
	}
	c := &MirrorCard{ID: entityID, m: m, state: MirrorUninitialized}
	m.cards[entityID] = c
	m.order = append(m.order, entityID)
	return c
}

// handByKey returns the hand mirror for a key, creating an unbound stand-in
// on first sight. Callers hold m.mu.
func (m *TableMirror) handByKey(key string) *handMirror {
	if h, ok := m.hands[key]; ok {
		return h
	}
	h := &handMirror{key: key, ready: make(chan struct{})}
	m.hands[key] = h
	return h
}

// ensureResolved moves a card toward Ready. It is idempotent and cheap, so
// the first-sight path and every later update both call it: resolution
// happens wherever the identifier first becomes usable. A miss leaves the
// card visible but inert on placeholder data; the next update retries.
// Callers hold m.mu.
func (m *TableMirror) ensureResolved(c *MirrorCard) {
	if !c.hasDef {
		return
	}
	if c.data != nil && !card.IsPlaceholder(c.data) {
		return
	}
	d, ok := m.registry.ByID(c.defID)
	if !ok {
		// Log the first miss for this identifier only; later updates retry
		// the lookup silently.
		alreadyMissing := card.IsPlaceholder(c.data) && c.data.ID == c.defID
		if !alreadyMissing && m.logger != nil {
			m.logger.Log(log.NewResolveMissEvent(int(c.defID), "table mirror"))
		}
		c.data = card.Placeholder(c.defID)
		if c.state == MirrorUninitialized {
			c.state = MirrorDataPending
		}
		return
	}
	c.data = d
	if c.state == MirrorUninitialized || c.state == MirrorDataPending {
		c.state = MirrorReady
	}
}

// syncHand lines a card up with its hand: queued while the hand is unbound,
// attached while in hand, dropped once terminal. Callers hold m.mu.
func (m *TableMirror) syncHand(c *MirrorCard) {
	if c.handKey == "" {
		return
	}
	h := m.handByKey(c.handKey)
	if c.hasPhase && c.phase.Terminal() {
		h.remove(c)
		return
	}
	if !h.bound {
		h.queue(c)
		return
	}
	h.adopt(c)
}

func (h *handMirror) queue(c *MirrorCard) {
	if containsCard(h.pending, c) || containsCard(h.cards, c) {
		return
	}
	h.pending = append(h.pending, c)
}

func (h *handMirror) adopt(c *MirrorCard) {
	h.pending = removeCard(h.pending, c)
	if containsCard(h.cards, c) {
		return
	}
	h.cards = append(h.cards, c)
}

func (h *handMirror) remove(c *MirrorCard) {
	h.pending = removeCard(h.pending, c)
	h.cards = removeCard(h.cards, c)
}

func containsCard(cards []*MirrorCard, c *MirrorCard) bool {
	for _, have := range cards {
		if have == c {
			return true
		}
	}
	return false
}

func removeCard(cards []*MirrorCard, c *MirrorCard) []*MirrorCard {
	for i, have := range cards {
		if have == c {
			return append(cards[:i], cards[i+1:]...)
		}
	}
	return cards
}

// SetDef records an entity's replicated card identifier.
func (m *TableMirror) SetDef(entityID int, id card.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.card(entityID)
	c.defID = id
	c.hasDef = true
	if c.data != nil && c.data.ID != id {
		// The identifier changed under the card; drop the stale data and
		// resolve again.
		c.data = nil
		if c.state == MirrorReady {
			c.state = MirrorDataPending
		}
	}
	m.ensureResolved(c)
	m.syncHand(c)
}

// SetOwner records an entity's replicated owner.
func (m *TableMirror) SetOwner(entityID int, ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.card(entityID)
	c.ownerID = ownerID
	m.ensureResolved(c)
	m.syncHand(c)
}

// SetHand records which hand an entity belongs to.
func (m *TableMirror) SetHand(entityID int, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.card(entityID)
	if c.handKey != "" && c.handKey != key {
		m.handByKey(c.handKey).remove(c)
	}
	c.handKey = key
	m.ensureResolved(c)
	m.syncHand(c)
}

// SetPhase records an entity's lifecycle phase. Terminal phases override
// whatever the viewer was doing with the card, including a drag in flight.
func (m *TableMirror) SetPhase(entityID int, phase EntityPhase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.card(entityID)
	c.phase = phase
	c.hasPhase = true
	switch phase {
	case PhasePlayed:
		c.state = MirrorPlayed
	case PhaseDiscarded:
		c.state = MirrorDiscarded
	case PhaseExhausted:
		c.state = MirrorExhausted
	}
	m.ensureResolved(c)
	m.syncHand(c)
}

// RegisterHand binds a hand key to its owner and adopts any cards that were
// queued waiting for it. The first owner wins; registering again is a no-op.
func (m *TableMirror) RegisterHand(key, ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.handByKey(key)
	if h.bound {
		return
	}
	h.ownerID = ownerID
	h.bound = true
	close(h.ready)
	for _, c := range h.pending {
		if containsCard(h.cards, c) {
			continue
		}
		h.cards = append(h.cards, c)
	}
	h.pending = nil
}

// HandReady returns the readiness signal for a hand key, closed once the
// hand is bound to its owner.
func (m *TableMirror) HandReady(key string) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handByKey(key).ready
}

// HandOwner returns the owner a hand key is bound to, if any.
func (m *TableMirror) HandOwner(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hands[key]
	if !ok || !h.bound {
		return "", false
	}
	return h.ownerID, true
}

// HandCards returns the cards attached to a hand, in attach order. Cards
// still waiting on the hand's readiness are not included.
func (m *TableMirror) HandCards(key string) []*MirrorCard {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hands[key]
	if !ok {
		return nil
	}
	out := make([]*MirrorCard, len(h.cards))
	copy(out, h.cards)
	return out
}

// Card returns the mirrored card for an entity identifier, if seen.
func (m *TableMirror) Card(entityID int) (*MirrorCard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[entityID]
	return c, ok
}

// Cards returns every mirrored card in first-sight order.
func (m *TableMirror) Cards() []*MirrorCard {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MirrorCard, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.cards[id])
	}
	return out
}

// BeginDrag marks a Ready card grabbed by the viewer. Only the owner may
// drag; anyone else is refused with a logged warning and no state change.
func (m *TableMirror) BeginDrag(entityID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[entityID]
	if !ok {
		return fmt.Errorf("begin drag: no card %d", entityID)
	}
	if c.ownerID == "" || c.ownerID != m.viewerID {
		if m.logger != nil {
			m.logger.Log(log.NewOwnershipRefusedEvent(fmt.Sprintf("drag of card %d", entityID), m.viewerID))
		}
		return ErrNotOwner
	}
	if c.state != MirrorReady {
		return fmt.Errorf("begin drag: card %d is %s", entityID, c.state)
	}
	c.state = MirrorDragging
	return nil
}

// EndDrag releases a grabbed card back to Ready.
func (m *TableMirror) EndDrag(entityID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[entityID]
	if !ok {
		return fmt.Errorf("end drag: no card %d", entityID)
	}
	if c.state != MirrorDragging {
		return fmt.Errorf("end drag: card %d is %s", entityID, c.state)
	}
	c.state = MirrorReady
	return nil
}

// Follow consumes a spawner's announcements and each entity's replicated
// fields until ctx ends. This is the in-process observer path; the terminal
// client drives the same Set methods from wire sync messages instead.
func (m *TableMirror) Follow(ctx context.Context, sp *Spawner) {
	for e := range sp.Announcements.Watch(ctx) {
		go m.followEntity(ctx, e)
	}
}

// FollowHands binds hand mirrors as hand announcements arrive.
func (m *TableMirror) FollowHands(ctx context.Context, hands *replica.List[HandRef]) {
	for ref := range hands.Watch(ctx) {
		m.RegisterHand(ref.Key, ref.OwnerID)
	}
}

func (m *TableMirror) followEntity(ctx context.Context, e *CardEntity) {
	// Four independent watches; arrival order across them is not guaranteed
	// and does not need to be.
	go func() {
		for v := range e.DefID.Watch(ctx) {
			m.SetDef(e.ID, v)
		}
	}()
	go func() {
		for v := range e.OwnerID.Watch(ctx) {
			m.SetOwner(e.ID, v)
		}
	}()
	go func() {
		for v := range e.HandKey.Watch(ctx) {
			m.SetHand(e.ID, v)
		}
	}()
	for v := range e.Phase.Watch(ctx) {
		m.SetPhase(e.ID, v)
	}
}
