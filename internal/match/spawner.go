package match

import (
	"fmt"
	"sync"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/log"
	"github.com/ValleyOfWalls/wildhand/internal/replica"
)

// Spawner creates and advances card entities. Only the token it was built
// with may spawn or update; any other caller is refused with a logged
// warning and no state change.
type Spawner struct {
	auth   *replica.Authority
	logger log.EventLogger

	// Announcements carries each entity exactly once, after its data, owner,
	// hand, and phase are all in place. Observers never see a half-built
	// card.
	Announcements *replica.List[*CardEntity]

	mu   sync.Mutex
	byID map[int]*CardEntity
}

// NewSpawner creates a spawner whose writes are gated on auth.
func NewSpawner(auth *replica.Authority, logger log.EventLogger) *Spawner {
	return &Spawner{
		auth:          auth,
		logger:        logger,
		Announcements: replica.NewList[*CardEntity](auth),
		byID:          make(map[int]*CardEntity),
	}
}

func (s *Spawner) gate(caller *replica.Authority, op string) error {
	if caller != nil && caller == s.auth {
		return nil
	}
	if s.logger != nil {
		s.logger.Log(log.NewAuthorityRefusedEvent(op, caller.Label()))
	}
	return replica.ErrNotAuthority
}

// Spawn creates one card entity in a hand. The caller supplies the entity
// identifier; the engine's per-encounter instance counter is the usual
// source. Wiring order is fixed: replicated fields first, hand attach
// second, announcement last.
func (s *Spawner) Spawn(caller *replica.Authority, id int, data *card.Data, owner string, hand Hand) (*CardEntity, error) {
	if err := s.gate(caller, "spawn"); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("spawn entity %d: no card data", id)
	}
	if hand == nil {
		return nil, fmt.Errorf("spawn entity %d: no hand", id)
	}

	e := &CardEntity{
		ID:      id,
		Data:    data,
		DefID:   replica.NewVar[card.ID](s.auth),
		OwnerID: replica.NewVar[string](s.auth),
		HandKey: replica.NewVar[string](s.auth),
		Phase:   replica.NewVar[EntityPhase](s.auth),
		hand:    hand,
	}
	// The gate above proved caller holds the owning token; these writes
	// cannot be refused.
	e.DefID.Set(caller, data.ID)
	e.OwnerID.Set(caller, owner)
	e.HandKey.Set(caller, hand.Key())
	e.Phase.Set(caller, PhaseInHand)

	if err := hand.Attach(e); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", e, err)
	}

	s.mu.Lock()
	if _, dup := s.byID[id]; dup {
		s.mu.Unlock()
		hand.Detach(id)
		return nil, fmt.Errorf("spawn entity %d: identifier already in use", id)
	}
	s.byID[id] = e
	s.mu.Unlock()

	s.Announcements.Append(caller, e)
	return e, nil
}

// SetPhase advances an entity's lifecycle. Terminal phases detach the card
// from its hand.
func (s *Spawner) SetPhase(caller *replica.Authority, id int, phase EntityPhase) error {
	if err := s.gate(caller, "set phase"); err != nil {
		return err
	}
	s.mu.Lock()
	e, ok := s.byID[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("set phase: no entity %d", id)
	}
	e.Phase.Set(caller, phase)
	if phase.Terminal() {
		e.hand.Detach(id)
	}
	return nil
}

// Entity returns a spawned entity by identifier.
func (s *Spawner) Entity(id int) (*CardEntity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	return e, ok
}

// Entities returns every spawned entity in spawn order.
func (s *Spawner) Entities() []*CardEntity {
	return s.Announcements.Snapshot()
}
