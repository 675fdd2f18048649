package net

// Message types for the JSON protocol over TCP. Card identity crosses the
// wire as integer catalog IDs only; each side resolves display data through
// its own registry.

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "lobby"
	Lobby *LobbyView `json:"lobby,omitempty"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "sync"
	Sync *SyncOp `json:"sync,omitempty"`

	// For "draft_offer"
	Offer *OfferView `json:"offer,omitempty"`

	// For "choose_play"
	Plays []PlayView `json:"plays,omitempty"`
	State *StateView `json:"state,omitempty"`

	// For "choose_target"
	Prompt  string       `json:"prompt,omitempty"`
	Targets []TargetView `json:"targets,omitempty"`

	// For "game_over" and "error"
	Winner int    `json:"winner"` // seat index, -1 for a draw
	Result string `json:"result,omitempty"`
}

// LobbyView acknowledges a hello and describes the roster so far.
type LobbyView struct {
	Seat     int        `json:"seat"`      // your seat
	PlayerID string     `json:"player_id"` // your owner id for replicated state
	Seats    []SeatView `json:"seats"`
}

// SeatView is one seated player.
type SeatView struct {
	Seat    int    `json:"seat"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Ready   bool   `json:"ready"`
}

// EventView is a game event as shown to a client. The card is referenced
// by catalog ID; the rendered details line is built server-side.
type EventView struct {
	Seq     int    `json:"seq"`
	Round   int    `json:"round"`
	Phase   string `json:"phase,omitempty"`
	Team    int    `json:"team"`
	Type    string `json:"type"`
	Actor   string `json:"actor,omitempty"`
	CardID  int    `json:"card_id,omitempty"`
	Entity  int    `json:"entity,omitempty"`
	Details string `json:"details"`
}

// SyncOp is one replicated field update for the client's table mirror.
// Updates are ordered per field only; the mirror tolerates any
// interleaving across fields.
type SyncOp struct {
	Op     string `json:"op"` // "def", "owner", "hand", "phase", "hand_bind"
	Entity int    `json:"entity,omitempty"`
	Def    int    `json:"def,omitempty"`
	Owner  string `json:"owner,omitempty"`
	Hand   string `json:"hand,omitempty"`
	Phase  int    `json:"phase,omitempty"`
}

// OfferView is one draft offer.
type OfferView struct {
	Round int    `json:"round"`
	Dest  string `json:"dest"`  // "handler" or "pet"
	Cards []int  `json:"cards"` // catalog ids
}

// PlayView is a numbered play choice.
type PlayView struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`             // "card" or "end"
	Actor  string `json:"actor,omitempty"`  // whose hand the card is in
	Entity int    `json:"entity,omitempty"` // card instance id
	CardID int    `json:"card_id,omitempty"`
	Cost   int    `json:"cost,omitempty"`
}

// TargetView is a numbered target candidate.
type TargetView struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
	Block int    `json:"block,omitempty"`
}

// StateView is the encounter from one seat's perspective. Hands appear as
// counts on both sides; a client renders its own hand contents from its
// table mirror.
type StateView struct {
	Round    int      `json:"round"`
	Phase    string   `json:"phase"`
	YourTurn bool     `json:"your_turn"`
	You      TeamView `json:"you"`
	Enemy    TeamView `json:"enemy"`
}

// TeamView shows one side of the table.
type TeamView struct {
	Energy  int         `json:"energy"`
	Handler FighterView `json:"handler"`
	Pet     FighterView `json:"pet"`
}

// FighterView shows one combatant.
type FighterView struct {
	Name         string         `json:"name"`
	HP           int            `json:"hp"`
	MaxHP        int            `json:"max_hp"`
	Block        int            `json:"block,omitempty"`
	Retired      bool           `json:"retired,omitempty"`
	Statuses     map[string]int `json:"statuses,omitempty"`
	HandCount    int            `json:"hand_count"`
	DrawCount    int            `json:"draw_count"`
	DiscardCount int            `json:"discard_count"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "hello" (initial handshake)
	Name     string `json:"name,omitempty"`
	Species  string `json:"species,omitempty"`
	UseSaved bool   `json:"use_saved,omitempty"` // restore the saved profile decks

	// For "pick", "play", "target"
	Index int `json:"index,omitempty"`
}
