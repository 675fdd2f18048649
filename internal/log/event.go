package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventMatchPhase EventType = iota
	EventJoin
	EventReady
	EventRoundStart
	EventTurnStart
	EventDraw
	EventDrawEmpty
	EventReshuffle
	EventPlay
	EventPlayRefused
	EventDiscard
	EventExhaust
	EventDamage
	EventBlockGain
	EventHeal
	EventEnergyGain
	EventStatusApply
	EventStatusTick
	EventThornsHit
	EventCleanse
	EventPetRetire
	EventHandlerDown
	EventWin
	EventDrawGame
	EventDraftOffer
	EventDraftPick
	EventDeckWarning
	EventAuthorityRefused
	EventResolveMiss
	EventInitRefused
)

func (e EventType) String() string {
	switch e {
	case EventMatchPhase:
		return "MatchPhase"
	case EventJoin:
		return "Join"
	case EventReady:
		return "Ready"
	case EventRoundStart:
		return "RoundStart"
	case EventTurnStart:
		return "TurnStart"
	case EventDraw:
		return "Draw"
	case EventDrawEmpty:
		return "DrawEmpty"
	case EventReshuffle:
		return "Reshuffle"
	case EventPlay:
		return "Play"
	case EventPlayRefused:
		return "PlayRefused"
	case EventDiscard:
		return "Discard"
	case EventExhaust:
		return "Exhaust"
	case EventDamage:
		return "Damage"
	case EventBlockGain:
		return "BlockGain"
	case EventHeal:
		return "Heal"
	case EventEnergyGain:
		return "EnergyGain"
	case EventStatusApply:
		return "StatusApply"
	case EventStatusTick:
		return "StatusTick"
	case EventThornsHit:
		return "ThornsHit"
	case EventCleanse:
		return "Cleanse"
	case EventPetRetire:
		return "PetRetire"
	case EventHandlerDown:
		return "HandlerDown"
	case EventWin:
		return "Win"
	case EventDrawGame:
		return "DrawGame"
	case EventDraftOffer:
		return "DraftOffer"
	case EventDraftPick:
		return "DraftPick"
	case EventDeckWarning:
		return "DeckWarning"
	case EventAuthorityRefused:
		return "AuthorityRefused"
	case EventResolveMiss:
		return "ResolveMiss"
	case EventInitRefused:
		return "InitRefused"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq        int       // monotonic sequence number
	Round      int       // which round (1-based, 0 outside combat)
	Phase      string    // phase name (e.g. "combat", "draft", "upkeep")
	Team       int       // acting team/seat (0 or 1, -1 when not applicable)
	Type       EventType // event type
	Actor      string    // acting combatant display name (if applicable)
	Card       string    // card name (if applicable)
	CardID     int       // card definition id (0 when not applicable)
	InstanceID int       // spawned card instance id (0 when not applicable)
	Details    string    // human-readable detail string
}
