package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- MultiLogger: fans one event stream out to several loggers ---

type MultiLogger struct {
	loggers []EventLogger
}

// NewMultiLogger fans events out to every given logger. Events() reads from
// the first one.
func NewMultiLogger(loggers ...EventLogger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

func (l *MultiLogger) Log(event GameEvent) {
	for _, inner := range l.loggers {
		inner.Log(event)
	}
}

func (l *MultiLogger) Events() []GameEvent {
	if len(l.loggers) == 0 {
		return nil
	}
	return l.loggers[0].Events()
}

// --- Formatting ---

// teamName returns "P1" or "P2" for display.
func teamName(team int) string {
	return fmt.Sprintf("P%d", team+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	// Pad phase to 10 chars for alignment
	for len(phase) < 10 {
		phase += " "
	}
	return fmt.Sprintf("R%-2d %s| %s", e.Round, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewMatchPhaseEvent(phase string) GameEvent {
	return GameEvent{
		Phase:   phase,
		Team:    -1,
		Type:    EventMatchPhase,
		Details: fmt.Sprintf("=== %s ===", phase),
	}
}

func NewJoinEvent(seat int, name, species string) GameEvent {
	return GameEvent{
		Phase:   "lobby",
		Team:    seat,
		Type:    EventJoin,
		Actor:   name,
		Details: fmt.Sprintf("%s takes seat %d with a %s", name, seat, species),
	}
}

func NewReadyEvent(seat int, name string) GameEvent {
	return GameEvent{
		Phase:   "lobby",
		Team:    seat,
		Type:    EventReady,
		Actor:   name,
		Details: fmt.Sprintf("%s is ready", name),
	}
}

func NewRoundStartEvent(round int, firstTeam int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    firstTeam,
		Type:    EventRoundStart,
		Details: fmt.Sprintf("--- Round %d (%s acts first) ---", round, teamName(firstTeam)),
	}
}

func NewTurnStartEvent(round int, team int, energy int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventTurnStart,
		Details: fmt.Sprintf("%s takes their turn (%d energy)", teamName(team), energy),
	}
}

func NewDrawEvent(round int, team int, actor, cardName string, cardID, instanceID int) GameEvent {
	return GameEvent{
		Round:      round,
		Phase:      "combat",
		Team:       team,
		Type:       EventDraw,
		Actor:      actor,
		Card:       cardName,
		CardID:     cardID,
		InstanceID: instanceID,
		Details:    fmt.Sprintf("%s draws %s", actor, cardName),
	}
}

func NewDrawEmptyEvent(round int, team int, actor string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventDrawEmpty,
		Actor:   actor,
		Details: fmt.Sprintf("%s has no cards left to draw", actor),
	}
}

func NewReshuffleEvent(round int, team int, actor string, count int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventReshuffle,
		Actor:   actor,
		Details: fmt.Sprintf("%s shuffles %d discards back into the deck", actor, count),
	}
}

func NewPlayEvent(round int, team int, actor, cardName string, cardID, instanceID, cost int) GameEvent {
	return GameEvent{
		Round:      round,
		Phase:      "combat",
		Team:       team,
		Type:       EventPlay,
		Actor:      actor,
		Card:       cardName,
		CardID:     cardID,
		InstanceID: instanceID,
		Details:    fmt.Sprintf("%s plays %s (%d energy)", actor, cardName, cost),
	}
}

func NewPlayRefusedEvent(round int, team int, reason string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventPlayRefused,
		Details: fmt.Sprintf("refusing play: %s", reason),
	}
}

func NewDiscardEvent(round int, team int, actor, cardName string, instanceID int) GameEvent {
	return GameEvent{
		Round:      round,
		Phase:      "combat",
		Team:       team,
		Type:       EventDiscard,
		Actor:      actor,
		Card:       cardName,
		InstanceID: instanceID,
		Details:    fmt.Sprintf("%s discards %s", actor, cardName),
	}
}

func NewExhaustEvent(round int, team int, actor, cardName string, instanceID int) GameEvent {
	return GameEvent{
		Round:      round,
		Phase:      "combat",
		Team:       team,
		Type:       EventExhaust,
		Actor:      actor,
		Card:       cardName,
		InstanceID: instanceID,
		Details:    fmt.Sprintf("%s exhausts %s", actor, cardName),
	}
}

func NewDamageEvent(round int, team int, actor, target string, amount, blocked, oldHP, newHP int) GameEvent {
	detail := fmt.Sprintf("%s hits %s for %d", actor, target, amount)
	if blocked > 0 {
		detail += fmt.Sprintf(" (%d blocked)", blocked)
	}
	detail += fmt.Sprintf(", HP %d → %d", oldHP, newHP)
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventDamage,
		Actor:   actor,
		Details: detail,
	}
}

func NewBlockEvent(round int, team int, actor string, amount, total int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventBlockGain,
		Actor:   actor,
		Details: fmt.Sprintf("%s gains %d block (%d total)", actor, amount, total),
	}
}

func NewHealEvent(round int, team int, actor string, amount, newHP int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventHeal,
		Actor:   actor,
		Details: fmt.Sprintf("%s heals %d (HP %d)", actor, amount, newHP),
	}
}

func NewEnergyEvent(round int, team int, amount, total int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventEnergyGain,
		Details: fmt.Sprintf("%s gains %d energy (%d total)", teamName(team), amount, total),
	}
}

func NewStatusApplyEvent(round int, team int, actor, target, status string, amount, total int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventStatusApply,
		Actor:   actor,
		Details: fmt.Sprintf("%s applies %d %s to %s (%d total)", actor, amount, status, target, total),
	}
}

func NewPoisonTickEvent(round int, team int, actor string, damage, remaining, newHP int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "upkeep",
		Team:    team,
		Type:    EventStatusTick,
		Actor:   actor,
		Details: fmt.Sprintf("%s suffers %d poison damage (HP %d, %d poison left)", actor, damage, newHP, remaining),
	}
}

func NewStatusTickEvent(round int, team int, actor, status string, remaining int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventStatusTick,
		Actor:   actor,
		Details: fmt.Sprintf("%s: %s ticks down to %d", actor, status, remaining),
	}
}

func NewThornsEvent(round int, team int, source, attacker string, amount int) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventThornsHit,
		Actor:   source,
		Details: fmt.Sprintf("%s's thorns hit %s for %d", source, attacker, amount),
	}
}

func NewCleanseEvent(round int, team int, actor string, removed []string) GameEvent {
	detail := fmt.Sprintf("%s is cleansed", actor)
	if len(removed) > 0 {
		detail += fmt.Sprintf(" (%s removed)", strings.Join(removed, ", "))
	}
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventCleanse,
		Actor:   actor,
		Details: detail,
	}
}

func NewPetRetireEvent(round int, team int, petName string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventPetRetire,
		Actor:   petName,
		Details: fmt.Sprintf("%s is down and retires from combat", petName),
	}
}

func NewHandlerDownEvent(round int, team int, name string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    team,
		Type:    EventHandlerDown,
		Actor:   name,
		Details: fmt.Sprintf("%s falls!", name),
	}
}

func NewWinEvent(round int, winner int, reason string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    winner,
		Type:    EventWin,
		Details: fmt.Sprintf("%s wins! (%s)", teamName(winner), reason),
	}
}

func NewDrawGameEvent(round int, reason string) GameEvent {
	return GameEvent{
		Round:   round,
		Phase:   "combat",
		Team:    -1,
		Type:    EventDrawGame,
		Details: fmt.Sprintf("Draw game (%s)", reason),
	}
}

func NewDraftOfferEvent(draftRound int, team int, cards []string) GameEvent {
	return GameEvent{
		Round:   draftRound,
		Phase:   "draft",
		Team:    team,
		Type:    EventDraftOffer,
		Details: fmt.Sprintf("%s is offered: %s", teamName(team), strings.Join(cards, ", ")),
	}
}

func NewDraftPickEvent(draftRound int, team int, cardName string, cardID int, destDeck string) GameEvent {
	return GameEvent{
		Round:   draftRound,
		Phase:   "draft",
		Team:    team,
		Type:    EventDraftPick,
		Card:    cardName,
		CardID:  cardID,
		Details: fmt.Sprintf("%s drafts %s into %s", teamName(team), cardName, destDeck),
	}
}

func NewDeckWarningEvent(details string) GameEvent {
	return GameEvent{
		Team:    -1,
		Type:    EventDeckWarning,
		Details: details,
	}
}

func NewAuthorityRefusedEvent(op, caller string) GameEvent {
	return GameEvent{
		Team:    -1,
		Type:    EventAuthorityRefused,
		Details: fmt.Sprintf("refused %s: %s is not the authority", op, caller),
	}
}

func NewOwnershipRefusedEvent(op, who string) GameEvent {
	return GameEvent{
		Team:    -1,
		Type:    EventAuthorityRefused,
		Details: fmt.Sprintf("refused %s: %s is not the owner", op, who),
	}
}

func NewResolveMissEvent(cardID int, context string) GameEvent {
	return GameEvent{
		Team:    -1,
		Type:    EventResolveMiss,
		CardID:  cardID,
		Details: fmt.Sprintf("card id %d did not resolve (%s)", cardID, context),
	}
}

func NewInitRefusedEvent(who string) GameEvent {
	return GameEvent{
		Team:    -1,
		Type:    EventInitRefused,
		Details: fmt.Sprintf("deck init for %s already ran, refusing to run again", who),
	}
}
