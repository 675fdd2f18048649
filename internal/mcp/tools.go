package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/match"
	wildnet "github.com/ValleyOfWalls/wildhand/internal/net"
	"github.com/ValleyOfWalls/wildhand/internal/store"
)

// activeSession is the singleton match session (one per stdio process).
var activeSession *MatchSession

// registry resolves card identifiers for the agent's mirror, set by main.
var registry *card.Registry

// profileStore records results when configured, set by main. May be nil.
var profileStore *store.Store

// port is the TCP port for the human player connection, set by main.
var port string

// SetRegistry sets the card registry the agent resolves against.
func SetRegistry(reg *card.Registry) {
	registry = reg
}

// SetStore sets the profile store used to record results.
func SetStore(st *store.Store) {
	profileStore = st
}

// SetPort sets the TCP port for the human player connection.
func SetPort(p string) {
	port = p
}

// RegisterTools adds all match tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startMatchTool(), handleStartMatch)
	s.AddTool(pickCardTool(), handlePickCard)
	s.AddTool(playCardTool(), handlePlayCard)
	s.AddTool(endTurnTool(), handleEndTurn)
	s.AddTool(chooseTargetTool(), handleChooseTarget)
	s.AddTool(getTableTool(), handleGetTable)
}

// --- Tool definitions ---

func startMatchTool() mcp.Tool {
	return mcp.NewTool("start_match",
		mcp.WithDescription("Start a new wildhand match. Returns the first pending decision once both seats are in. "+
			"The human player connects via `wildhand join --addr localhost:<port>` in a separate terminal. "+
			"This call blocks until the human connects."),
		mcp.WithString("species", mcp.Required(), mcp.Description("Pet species for the agent: Emberwolf, Mosstoad or Galeraven")),
		mcp.WithNumber("seat", mcp.Required(), mcp.Description("Which seat the agent takes: 0 = acts first, 1 = acts second")),
		mcp.WithString("name", mcp.Description("Display name for the agent's handler (default 'Agent')")),
	)
}

func pickCardTool() mcp.Tool {
	return mcp.NewTool("pick_card",
		mcp.WithDescription("Answer a draft offer by picking one card. Use this when the pending decision type is 'pick_card'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the pending offer's cards")),
	)
}

func playCardTool() mcp.Tool {
	return mcp.NewTool("play_card",
		mcp.WithDescription("Choose an entry from the pending plays list. Use this when the pending decision type is 'choose_play'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the play to make from the plays list")),
	)
}

func endTurnTool() mcp.Tool {
	return mcp.NewTool("end_turn",
		mcp.WithDescription("End the agent's turn. Shorthand for playing the 'end' entry of the pending plays list."),
	)
}

func chooseTargetTool() mcp.Tool {
	return mcp.NewTool("choose_target",
		mcp.WithDescription("Choose a target from the pending candidates list. Use this when the pending decision type is 'choose_target'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the target from the targets list")),
	)
}

func getTableTool() mcp.Tool {
	return mcp.NewTool("get_table",
		mcp.WithDescription("Get the replicated table as the agent's mirror sees it, accumulated events, and the pending decision without submitting a response."),
	)
}

// --- Tool handlers ---

func handleStartMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession != nil {
		return mcp.NewToolResultError("A match is already running. Only one match at a time is supported."), nil
	}

	species := request.GetString("species", "")
	seat := request.GetInt("seat", 0)
	name := request.GetString("name", "Agent")

	if species == "" {
		return mcp.NewToolResultError("species is required"), nil
	}
	if seat != 0 && seat != 1 {
		return mcp.NewToolResultError("seat must be 0 or 1"), nil
	}

	var recorder match.ResultRecorder
	if profileStore != nil {
		recorder = profileStore
	}

	sess, err := NewMatchSession(registry, recorder, name, species, seat, port)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start match: %v", err), nil
	}

	activeSession = sess

	resp, err := sess.waitForPending()
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}

	resp.Port = port

	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handlePickCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := pendingOfType(DecisionPickCard, "pick_card")
	if errResult != nil {
		return errResult, nil
	}

	index := request.GetInt("index", -1)
	if pending.Offer == nil || index < 0 || index >= len(pending.Offer.Cards) {
		return mcp.NewToolResultErrorf("Invalid index %d for the pending offer.", index), nil
	}

	sess.agentCtrl.responseCh <- PickResponse{Index: index}

	return finishTurn(sess)
}

func handlePlayCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := pendingOfType(DecisionChoosePlay, "play_card")
	if errResult != nil {
		return errResult, nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Plays) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Plays)-1), nil
	}

	sess.agentCtrl.responseCh <- PlayResponse{Index: index}

	return finishTurn(sess)
}

func handleEndTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := pendingOfType(DecisionChoosePlay, "end_turn")
	if errResult != nil {
		return errResult, nil
	}

	index := -1
	for _, pv := range pending.Plays {
		if pv.Kind == "end" {
			index = pv.Index
			break
		}
	}
	if index < 0 {
		return mcp.NewToolResultError("The pending plays list has no end-turn entry."), nil
	}

	sess.agentCtrl.responseCh <- PlayResponse{Index: index}

	return finishTurn(sess)
}

func handleChooseTarget(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := pendingOfType(DecisionChooseTarget, "choose_target")
	if errResult != nil {
		return errResult, nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Targets) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Targets)-1), nil
	}

	sess.agentCtrl.responseCh <- TargetResponse{Index: index}

	return finishTurn(sess)
}

func handleGetTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No match is running. Use start_match first."), nil
	}

	sess := activeSession
	events := sess.drainEvents()

	sess.mu.Lock()
	gameOver := sess.gameOver
	winner := sess.winner
	result := sess.result
	sess.mu.Unlock()

	resp := &ToolResponse{
		Events:   events,
		Table:    sess.tableView(),
		GameOver: gameOver,
		Winner:   winner,
		Result:   result,
	}

	if !gameOver && sess.currentPending != nil {
		p := sess.currentPending
		resp.State = p.State
		resp.Pending = &PendingView{
			Type:    p.Type,
			ForSeat: sess.seatLabel(p.Seat),
			Plays:   p.Plays,
			Prompt:  p.Prompt,
			Targets: p.Targets,
			Offer:   p.Offer,
		}
	}

	// Ensure events is never null in JSON.
	if resp.Events == nil {
		resp.Events = []wildnet.EventView{}
	}

	return mcp.NewToolResultText(respondJSON(resp)), nil
}

// pendingOfType runs the shared validation chain: a session exists, a
// decision is pending, it belongs to the agent, and it has the expected
// type. Returns a ready-made error result when any link fails.
func pendingOfType(want DecisionType, tool string) (*MatchSession, *PendingDecision, *mcp.CallToolResult) {
	if activeSession == nil {
		return nil, nil, mcp.NewToolResultError("No match is running. Use start_match first.")
	}

	sess := activeSession
	pending := sess.currentPending
	if pending == nil {
		return nil, nil, mcp.NewToolResultError("No pending decision.")
	}
	if pending.Seat != sess.agentSeat {
		return nil, nil, mcp.NewToolResultError("Waiting for the human player to respond via their terminal.")
	}
	if pending.Type != want {
		return nil, nil, mcp.NewToolResultErrorf("Wrong tool: pending decision is '%s', not '%s'. Use the matching tool.", pending.Type, want)
	}
	return sess, pending, nil
}

// finishTurn waits for the next decision after a response was submitted
// and clears the session when the match ended.
func finishTurn(sess *MatchSession) (*mcp.CallToolResult, error) {
	resp, err := sess.waitForPending()
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}

	if resp.GameOver {
		activeSession = nil
	}

	return mcp.NewToolResultText(respondJSON(resp)), nil
}
