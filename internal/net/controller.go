package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/game"
	"github.com/ValleyOfWalls/wildhand/internal/log"
)

// TeamController implements match.SeatDriver over a single connection. The
// mutex covers the encoder/decoder pair so prompt round-trips, event
// notifications and sync ops never interleave mid-message.
type TeamController struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	seat int
	mu   sync.Mutex
}

// NewTeamController creates a controller for the given connection and seat.
func NewTeamController(conn net.Conn, seat int) *TeamController {
	return &TeamController{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
		seat: seat,
	}
}

// Seat returns the seat index this controller drives.
func (tc *TeamController) Seat() int {
	return tc.seat
}

// send sends a server message to the client. Must be called with mu held.
func (tc *TeamController) send(msg ServerMessage) error {
	return tc.enc.Encode(msg)
}

// recv reads a client message. Must be called with mu held.
func (tc *TeamController) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := tc.dec.Decode(&msg)
	return msg, err
}

// Recv reads one client message outside a prompt round-trip. The server
// uses it for the hello/ready handshake.
func (tc *TeamController) Recv() (ClientMessage, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.recv()
}

// SendLobby acknowledges a hello with the seat assignment and roster.
func (tc *TeamController) SendLobby(lv LobbyView) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.send(ServerMessage{Type: "lobby", Lobby: &lv})
}

// SendSync forwards one replicated field update.
func (tc *TeamController) SendSync(op SyncOp) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.send(ServerMessage{Type: "sync", Sync: &op})
}

// SendError reports a refused handshake before the connection closes.
func (tc *TeamController) SendError(result string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.send(ServerMessage{Type: "error", Winner: -1, Result: result})
}

// SendGameOver sends the final outcome to the client.
func (tc *TeamController) SendGameOver(winner int, result string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.send(ServerMessage{Type: "game_over", Winner: winner, Result: result})
}

// ChoosePlay implements match.SeatDriver.
func (tc *TeamController) ChoosePlay(ctx context.Context, state *game.EncounterState, plays []game.Play) (game.Play, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	msg := ServerMessage{
		Type:  "choose_play",
		Plays: BuildPlayViews(plays),
		State: BuildStateView(state, tc.seat),
	}
	if err := tc.send(msg); err != nil {
		return game.Play{}, fmt.Errorf("send choose_play: %w", err)
	}

	resp, err := tc.recv()
	if err != nil {
		return game.Play{}, fmt.Errorf("recv play: %w", err)
	}
	if resp.Index < 0 || resp.Index >= len(plays) {
		return plays[0], nil // fallback to first play
	}
	return plays[resp.Index], nil
}

// ChooseTarget implements match.SeatDriver.
func (tc *TeamController) ChooseTarget(ctx context.Context, state *game.EncounterState, prompt string, candidates []*game.Combatant) (*game.Combatant, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	msg := ServerMessage{
		Type:    "choose_target",
		Prompt:  prompt,
		Targets: BuildTargetViews(candidates),
		State:   BuildStateView(state, tc.seat),
	}
	if err := tc.send(msg); err != nil {
		return nil, fmt.Errorf("send choose_target: %w", err)
	}

	resp, err := tc.recv()
	if err != nil {
		return nil, fmt.Errorf("recv target: %w", err)
	}
	if resp.Index < 0 || resp.Index >= len(candidates) {
		return candidates[0], nil
	}
	return candidates[resp.Index], nil
}

// PickCard implements match.SeatDriver. Range checking stays with the
// match layer, which logs and substitutes on a bad pick.
func (tc *TeamController) PickCard(ctx context.Context, round int, offer []*card.Data, dest card.Affinity) (int, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	msg := ServerMessage{
		Type:  "draft_offer",
		Offer: BuildOfferView(round, offer, dest),
	}
	if err := tc.send(msg); err != nil {
		return 0, fmt.Errorf("send draft_offer: %w", err)
	}

	resp, err := tc.recv()
	if err != nil {
		return 0, fmt.Errorf("recv pick: %w", err)
	}
	return resp.Index, nil
}

// Notify implements match.SeatDriver.
func (tc *TeamController) Notify(ctx context.Context, event log.GameEvent) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	ev := BuildEventView(event)
	return tc.send(ServerMessage{Type: "notify", Event: &ev})
}
