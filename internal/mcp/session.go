package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	wildnet "github.com/ValleyOfWalls/wildhand/internal/net"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/log"
	"github.com/ValleyOfWalls/wildhand/internal/match"

	stdnet "net"
)

// DecisionType identifies what the match engine is waiting for.
type DecisionType string

const (
	DecisionChoosePlay   DecisionType = "choose_play"
	DecisionChooseTarget DecisionType = "choose_target"
	DecisionPickCard     DecisionType = "pick_card"
	DecisionGameOver     DecisionType = "game_over"
)

// PendingDecision is one decision the match engine is waiting for.
type PendingDecision struct {
	Type    DecisionType         `json:"type"`
	Seat    int                  `json:"seat"`
	State   *wildnet.StateView   `json:"state,omitempty"`
	Plays   []wildnet.PlayView   `json:"plays,omitempty"`
	Prompt  string               `json:"prompt,omitempty"`
	Targets []wildnet.TargetView `json:"targets,omitempty"`
	Offer   *wildnet.OfferView   `json:"offer,omitempty"`
}

// Response types sent back from MCP tools to the agent controller.

type PlayResponse struct {
	Index int
}

type TargetResponse struct {
	Index int
}

type PickResponse struct {
	Index int
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events   []wildnet.EventView `json:"events"`
	State    *wildnet.StateView  `json:"state,omitempty"`
	Table    []TableCardView     `json:"table,omitempty"`
	Pending  *PendingView        `json:"pending,omitempty"`
	GameOver bool                `json:"game_over"`
	Winner   int                 `json:"winner,omitempty"`
	Result   string              `json:"result,omitempty"`
	Port     string              `json:"port,omitempty"`
}

// PendingView is the pending decision as presented in the tool response JSON.
type PendingView struct {
	Type    DecisionType         `json:"type"`
	ForSeat string               `json:"for_seat"`
	Plays   []wildnet.PlayView   `json:"plays,omitempty"`
	Prompt  string               `json:"prompt,omitempty"`
	Targets []wildnet.TargetView `json:"targets,omitempty"`
	Offer   *wildnet.OfferView   `json:"offer,omitempty"`
}

// TableCardView is one replicated card entity as the agent's mirror sees
// it. Names come from the agent-side registry, not the wire.
type TableCardView struct {
	Entity int    `json:"entity"`
	CardID int    `json:"card_id,omitempty"`
	Name   string `json:"name,omitempty"`
	State  string `json:"state"`
	Hand   string `json:"hand,omitempty"`
	Owner  string `json:"owner,omitempty"`
}

// MatchSession holds the state of a single MCP match session: the hosted
// match, the agent's controller and table mirror, and the human's wire
// connection.
type MatchSession struct {
	match     *match.Match
	agentCtrl *AgentController
	humanCtrl *wildnet.TeamController
	agentSeat int
	mirror    *match.TableMirror

	listener  stdnet.Listener
	humanConn stdnet.Conn
	cancel    context.CancelFunc

	pendingCh      chan *PendingDecision
	currentPending *PendingDecision

	mu       sync.Mutex
	events   []wildnet.EventView
	gameOver bool
	winner   int
	result   string
}

// NewMatchSession seats the agent, starts a TCP listener, waits for the
// human player to connect via `wildhand join`, then starts the match. The
// agent follows the table through its own mirror, the human through sync
// ops on the wire.
func NewMatchSession(reg *card.Registry, recorder match.ResultRecorder, agentName, agentSpecies string, agentSeat int, port string) (*MatchSession, error) {
	cfg := match.Config{Registry: reg, Recorder: recorder}
	m, err := match.NewMatch(cfg)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	ln, err := stdnet.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("listen on port %s: %w", port, err)
	}

	// Blocks until the human runs `wildhand join`.
	conn, err := ln.Accept()
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("accept: %w", err)
	}

	sess := &MatchSession{
		match:     m,
		agentSeat: agentSeat,
		pendingCh: make(chan *PendingDecision, 1),
		winner:    -1,
		listener:  ln,
		humanConn: conn,
	}

	humanSeat := 1 - agentSeat
	sess.agentCtrl = NewAgentController(agentSeat, sess)
	sess.humanCtrl = wildnet.NewTeamController(conn, humanSeat)

	hello, err := sess.humanCtrl.Recv()
	if err != nil {
		sess.shutdown()
		return nil, fmt.Errorf("read hello: %w", err)
	}
	if hello.Type != "hello" {
		sess.shutdown()
		return nil, fmt.Errorf("expected hello, got %q", hello.Type)
	}

	// Seats go in join order, so the lower seat joins first.
	var agentPlayer, humanPlayer *match.Player
	joinAgent := func() error {
		p, err := m.Join(agentName, agentSpecies)
		if err != nil {
			return err
		}
		agentPlayer = p
		return nil
	}
	joinHuman := func() error {
		p, err := m.Join(hello.Name, hello.Species)
		if err != nil {
			return err
		}
		humanPlayer = p
		return nil
	}
	first, second := joinAgent, joinHuman
	if agentSeat == 1 {
		first, second = joinHuman, joinAgent
	}
	if err := first(); err != nil {
		sess.shutdown()
		return nil, fmt.Errorf("seat first player: %w", err)
	}
	if err := second(); err != nil {
		_ = sess.humanCtrl.SendError(err.Error())
		sess.shutdown()
		return nil, fmt.Errorf("seat second player: %w", err)
	}

	lv := wildnet.LobbyView{Seat: humanSeat, PlayerID: humanPlayer.ID}
	for i := 0; i < 2; i++ {
		if p, ok := m.PlayerAt(i); ok {
			lv.Seats = append(lv.Seats, wildnet.SeatView{
				Seat:    p.Seat,
				Name:    p.Name,
				Species: p.Pet.Species.Name,
				Ready:   p.Ready(),
			})
		}
	}
	if err := sess.humanCtrl.SendLobby(lv); err != nil {
		sess.shutdown()
		return nil, fmt.Errorf("send lobby: %w", err)
	}
	ready, err := sess.humanCtrl.Recv()
	if err != nil {
		sess.shutdown()
		return nil, fmt.Errorf("read ready: %w", err)
	}
	if ready.Type != "ready" {
		sess.shutdown()
		return nil, fmt.Errorf("expected ready, got %q", ready.Type)
	}
	if err := m.SetReady(humanPlayer.ID); err != nil {
		sess.shutdown()
		return nil, fmt.Errorf("ready human: %w", err)
	}
	if err := m.SetReady(agentPlayer.ID); err != nil {
		sess.shutdown()
		return nil, fmt.Errorf("ready agent: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel

	sess.mirror = match.NewTableMirror(agentPlayer.ID, reg, log.NewMemoryLogger())
	go sess.mirror.Follow(ctx, m.Spawner)
	go sess.mirror.FollowHands(ctx, m.Hands)
	go wildnet.StreamTable(ctx, sess.humanCtrl, m.Spawner, m.Hands)

	var drivers [2]match.SeatDriver
	drivers[agentSeat] = sess.agentCtrl
	drivers[humanSeat] = sess.humanCtrl

	go func() {
		runErr := m.Run(ctx, drivers)
		winner, result := m.Outcome()
		if runErr != nil {
			result = fmt.Sprintf("error: %v", runErr)
		}
		if result == "" {
			result = fmt.Sprintf("Match over. Winner: seat %d", winner)
		}

		_ = sess.humanCtrl.SendGameOver(winner, result)
		sess.shutdown()

		sess.mu.Lock()
		sess.gameOver = true
		sess.winner = winner
		sess.result = result
		sess.mu.Unlock()

		sess.pendingCh <- &PendingDecision{Type: DecisionGameOver, Seat: winner}
	}()

	return sess, nil
}

// shutdown releases the session's network resources and stops its
// replication goroutines.
func (s *MatchSession) shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.humanConn != nil {
		s.humanConn.Close()
	}
	if s.listener != nil {
		s.listener.Close()
	}
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *MatchSession) appendEvent(ev wildnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *MatchSession) drainEvents() []wildnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	return events
}

// tableView snapshots the agent's mirror for the tool response.
func (s *MatchSession) tableView() []TableCardView {
	var out []TableCardView
	for _, c := range s.mirror.Cards() {
		tv := TableCardView{
			Entity: c.ID,
			State:  c.State().String(),
			Hand:   c.HandKey(),
			Owner:  c.Owner(),
		}
		if d := c.Data(); d != nil {
			tv.CardID = int(d.ID)
			tv.Name = d.Name
		}
		out = append(out, tv)
	}
	return out
}

// waitForPending blocks until the next decision arrives from the match
// engine, then builds a ToolResponse with accumulated events plus the
// pending decision.
func (s *MatchSession) waitForPending() (*ToolResponse, error) {
	pending := <-s.pendingCh
	s.currentPending = pending

	resp := &ToolResponse{Events: s.drainEvents()}

	if pending.Type == DecisionGameOver {
		s.mu.Lock()
		resp.GameOver = true
		resp.Winner = s.winner
		resp.Result = s.result
		s.mu.Unlock()
		resp.Pending = nil
		return resp, nil
	}

	resp.State = pending.State
	resp.Table = s.tableView()
	resp.Pending = &PendingView{
		Type:    pending.Type,
		ForSeat: s.seatLabel(pending.Seat),
		Plays:   pending.Plays,
		Prompt:  pending.Prompt,
		Targets: pending.Targets,
		Offer:   pending.Offer,
	}

	return resp, nil
}

// seatLabel returns "agent" or "human" for the given seat index.
func (s *MatchSession) seatLabel(seat int) string {
	if seat == s.agentSeat {
		return "agent"
	}
	return "human"
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
