package net

import (
	"context"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/match"
	"github.com/ValleyOfWalls/wildhand/internal/replica"
)

// StreamTable forwards a match's replicated table to one client as sync
// ops until ctx ends. It is the wire twin of the in-process mirror
// follower: the client's ApplySync drives the same mirror entry points.
// Send failures end the affected stream; the prompt path surfaces the
// dead connection.
func StreamTable(ctx context.Context, tc *TeamController, sp *match.Spawner, hands *replica.List[match.HandRef]) {
	go streamHands(ctx, tc, hands)
	for e := range sp.Announcements.Watch(ctx) {
		go streamEntity(ctx, tc, e)
	}
}

func streamHands(ctx context.Context, tc *TeamController, hands *replica.List[match.HandRef]) {
	for ref := range hands.Watch(ctx) {
		if err := tc.SendSync(SyncOp{Op: "hand_bind", Hand: ref.Key, Owner: ref.OwnerID}); err != nil {
			return
		}
	}
}

func streamEntity(ctx context.Context, tc *TeamController, e *match.CardEntity) {
	// Four independent watches; cross-field ordering is not guaranteed and
	// the mirror does not need it.
	go func() {
		for v := range e.DefID.Watch(ctx) {
			if err := tc.SendSync(SyncOp{Op: "def", Entity: e.ID, Def: int(v)}); err != nil {
				return
			}
		}
	}()
	go func() {
		for v := range e.OwnerID.Watch(ctx) {
			if err := tc.SendSync(SyncOp{Op: "owner", Entity: e.ID, Owner: v}); err != nil {
				return
			}
		}
	}()
	go func() {
		for v := range e.HandKey.Watch(ctx) {
			if err := tc.SendSync(SyncOp{Op: "hand", Entity: e.ID, Hand: v}); err != nil {
				return
			}
		}
	}()
	for v := range e.Phase.Watch(ctx) {
		if err := tc.SendSync(SyncOp{Op: "phase", Entity: e.ID, Phase: int(v)}); err != nil {
			return
		}
	}
}

// ApplySync applies one sync op to a client-side table mirror.
func ApplySync(m *match.TableMirror, op *SyncOp) {
	if op == nil {
		return
	}
	switch op.Op {
	case "def":
		m.SetDef(op.Entity, card.ID(op.Def))
	case "owner":
		m.SetOwner(op.Entity, op.Owner)
	case "hand":
		m.SetHand(op.Entity, op.Hand)
	case "phase":
		m.SetPhase(op.Entity, match.EntityPhase(op.Phase))
	case "hand_bind":
		m.RegisterHand(op.Hand, op.Owner)
	}
}
