package mcp

import (
	"context"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/game"
	"github.com/ValleyOfWalls/wildhand/internal/log"
	wildnet "github.com/ValleyOfWalls/wildhand/internal/net"
)

// AgentController implements match.SeatDriver by publishing decisions on
// the session's pending channel and blocking on a response channel until
// an MCP tool answers.
type AgentController struct {
	seat       int
	session    *MatchSession
	responseCh chan any
}

// NewAgentController creates a controller for the given seat.
func NewAgentController(seat int, session *MatchSession) *AgentController {
	return &AgentController{
		seat:       seat,
		session:    session,
		responseCh: make(chan any),
	}
}

// ChoosePlay implements match.SeatDriver.
func (c *AgentController) ChoosePlay(ctx context.Context, state *game.EncounterState, plays []game.Play) (game.Play, error) {
	c.session.pendingCh <- &PendingDecision{
		Type:  DecisionChoosePlay,
		Seat:  c.seat,
		State: wildnet.BuildStateView(state, c.seat),
		Plays: wildnet.BuildPlayViews(plays),
	}

	resp := <-c.responseCh
	pr := resp.(PlayResponse)

	if pr.Index < 0 || pr.Index >= len(plays) {
		return plays[0], nil
	}
	return plays[pr.Index], nil
}

// ChooseTarget implements match.SeatDriver.
func (c *AgentController) ChooseTarget(ctx context.Context, state *game.EncounterState, prompt string, candidates []*game.Combatant) (*game.Combatant, error) {
	c.session.pendingCh <- &PendingDecision{
		Type:    DecisionChooseTarget,
		Seat:    c.seat,
		State:   wildnet.BuildStateView(state, c.seat),
		Prompt:  prompt,
		Targets: wildnet.BuildTargetViews(candidates),
	}

	resp := <-c.responseCh
	tr := resp.(TargetResponse)

	if tr.Index < 0 || tr.Index >= len(candidates) {
		return candidates[0], nil
	}
	return candidates[tr.Index], nil
}

// PickCard implements match.SeatDriver. The draft layer range-checks the
// returned index and substitutes on a bad pick.
func (c *AgentController) PickCard(ctx context.Context, round int, offer []*card.Data, dest card.Affinity) (int, error) {
	c.session.pendingCh <- &PendingDecision{
		Type:  DecisionPickCard,
		Seat:  c.seat,
		Offer: wildnet.BuildOfferView(round, offer, dest),
	}

	resp := <-c.responseCh
	pr := resp.(PickResponse)
	return pr.Index, nil
}

// Notify implements match.SeatDriver.
func (c *AgentController) Notify(ctx context.Context, event log.GameEvent) error {
	c.session.appendEvent(wildnet.BuildEventView(event))
	return nil
}
