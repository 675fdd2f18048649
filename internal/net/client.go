package net

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/log"
	"github.com/ValleyOfWalls/wildhand/internal/match"
)

// Client plays one seat over a connection and renders the match in the
// terminal. It keeps a table mirror fed by server sync ops and resolves
// every card id through its own registry.
type Client struct {
	conn     net.Conn
	registry *card.Registry
	name     string
	species  string
	useSaved bool

	playerID string
	mirror   *match.TableMirror
}

// NewClient wraps an established connection. The server uses this for the
// host seat's pipe; Connect uses it for remote play.
func NewClient(conn net.Conn, reg *card.Registry, name, species string, useSaved bool) *Client {
	return &Client{
		conn:     conn,
		registry: reg,
		name:     name,
		species:  species,
		useSaved: useSaved,
	}
}

// Connect dials a server, introduces the player, and runs the REPL.
func Connect(ctx context.Context, addr, name, species string, useSaved bool, reg *card.Registry) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	fmt.Println("Connected! Waiting for the lobby...")
	return NewClient(conn, reg, name, species, useSaved).Run(ctx)
}

// Run sends the hello, then reads server messages and handles them
// interactively until the match ends.
func (c *Client) Run(ctx context.Context) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)
	reader := bufio.NewReader(os.Stdin)

	hello := ClientMessage{Type: "hello", Name: c.name, Species: c.species, UseSaved: c.useSaved}
	if err := enc.Encode(hello); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case "lobby":
			c.enterLobby(msg.Lobby)
			if err := enc.Encode(ClientMessage{Type: "ready"}); err != nil {
				return fmt.Errorf("send ready: %w", err)
			}

		case "error":
			return fmt.Errorf("server refused: %s", msg.Result)

		case "notify":
			c.renderEvent(msg.Event)

		case "sync":
			if c.mirror != nil {
				ApplySync(c.mirror, msg.Sync)
			}

		case "draft_offer":
			if msg.Offer == nil {
				continue
			}
			c.renderOffer(msg.Offer)
			idx, err := c.readChoice(reader, len(msg.Offer.Cards))
			if err != nil {
				return err
			}
			if err := enc.Encode(ClientMessage{Type: "pick", Index: idx}); err != nil {
				return fmt.Errorf("send pick: %w", err)
			}

		case "choose_play":
			c.renderState(msg.State)
			c.renderHands()
			c.renderPlays(msg.Plays)
			idx, err := c.readChoice(reader, len(msg.Plays))
			if err != nil {
				return err
			}
			if err := enc.Encode(ClientMessage{Type: "play", Index: idx}); err != nil {
				return fmt.Errorf("send play: %w", err)
			}

		case "choose_target":
			c.renderTargets(msg.Prompt, msg.Targets)
			idx, err := c.readChoice(reader, len(msg.Targets))
			if err != nil {
				return err
			}
			if err := enc.Encode(ClientMessage{Type: "target", Index: idx}); err != nil {
				return fmt.Errorf("send target: %w", err)
			}

		case "game_over":
			fmt.Println()
			fmt.Println("═══════════════════════════════════")
			fmt.Println("          MATCH OVER")
			fmt.Println("═══════════════════════════════════")
			fmt.Println(msg.Result)
			fmt.Println("═══════════════════════════════════")
			return nil
		}
	}
}

func (c *Client) enterLobby(lv *LobbyView) {
	if lv == nil {
		return
	}
	c.playerID = lv.PlayerID
	if c.mirror == nil {
		c.mirror = match.NewTableMirror(lv.PlayerID, c.registry, log.NewMemoryLogger())
	}
	fmt.Printf("Seated at %d as %s with a %s\n", lv.Seat, c.name, c.species)
	for _, s := range lv.Seats {
		if s.Seat != lv.Seat {
			fmt.Printf("Across the table: %s with a %s\n", s.Name, s.Species)
		}
	}
}

// renderEvent matches the server's text log line format.
func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	phase := ev.Phase
	for len(phase) < 10 {
		phase += " "
	}
	fmt.Printf("R%-2d %s| %s\n", ev.Round, phase, ev.Details)
}

func (c *Client) renderOffer(ov *OfferView) {
	fmt.Printf("\nDraft round %d: add one card to your %s deck\n", ov.Round, ov.Dest)
	for i, id := range ov.Cards {
		if d, ok := c.registry.ByID(card.ID(id)); ok {
			fmt.Printf("  %d) %s (%d) [%s] %s\n", i+1, d.Name, d.Cost, d.Rarity, d.Description)
		} else {
			fmt.Printf("  %d) card #%d\n", i+1, id)
		}
	}
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════╗")
	renderTeam("ENEMY", sv.Enemy)
	fmt.Println("║──────────────────────────────────────────────────────")
	renderTeam("YOU", sv.You)
	fmt.Println("╚══════════════════════════════════════════════════════╝")

	turn := fmt.Sprintf("Round %d | %s", sv.Round, sv.Phase)
	if sv.YourTurn {
		turn += " | Your turn"
	} else {
		turn += " | Enemy turn"
	}
	fmt.Println(turn)
}

func renderTeam(label string, tv TeamView) {
	fmt.Printf("║  %-5s %s\n", label, formatFighter(tv.Handler))
	fmt.Printf("║        %s\n", formatFighter(tv.Pet))
	fmt.Printf("║        energy %d\n", tv.Energy)
}

func formatFighter(fv FighterView) string {
	s := fmt.Sprintf("%s  HP %d/%d", fv.Name, fv.HP, fv.MaxHP)
	if fv.Block > 0 {
		s += fmt.Sprintf("  block %d", fv.Block)
	}
	if fv.Retired {
		s += "  (retired)"
	}
	var names []string
	for name := range fv.Statuses {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s += fmt.Sprintf("  %s %d", name, fv.Statuses[name])
	}
	s += fmt.Sprintf("  hand %d  draw %d  discard %d", fv.HandCount, fv.DrawCount, fv.DiscardCount)
	return s
}

// renderHands shows the viewer's own hands from the table mirror.
func (c *Client) renderHands() {
	if c.mirror == nil {
		return
	}
	c.renderHandRow("Hand", match.HandlerHandKey(c.playerID))
	c.renderHandRow("Pet hand", match.PetHandKey(c.playerID))
}

func (c *Client) renderHandRow(label, key string) {
	cards := c.mirror.HandCards(key)
	if len(cards) == 0 {
		return
	}
	fmt.Printf("%s: ", label)
	for i, mc := range cards {
		if d := mc.Data(); d != nil {
			fmt.Printf("[%d] %s (%d)  ", i+1, d.Name, d.Cost)
		} else {
			fmt.Printf("[%d] ?  ", i+1)
		}
	}
	fmt.Println()
}

func (c *Client) renderPlays(plays []PlayView) {
	fmt.Println("\nPlays:")
	for _, p := range plays {
		fmt.Printf("  %d) %s\n", p.Index+1, c.playDesc(p))
	}
}

func (c *Client) playDesc(p PlayView) string {
	if p.Kind != "card" {
		return "End turn"
	}
	return fmt.Sprintf("%s plays %s (%d)", p.Actor, c.cardName(p.CardID), p.Cost)
}

func (c *Client) renderTargets(prompt string, targets []TargetView) {
	fmt.Printf("\n%s\n", prompt)
	for _, tv := range targets {
		line := fmt.Sprintf("  %d) %s (HP %d/%d", tv.Index+1, tv.Name, tv.HP, tv.MaxHP)
		if tv.Block > 0 {
			line += fmt.Sprintf(", block %d", tv.Block)
		}
		fmt.Println(line + ")")
	}
}

func (c *Client) cardName(id int) string {
	if d, ok := c.registry.ByID(card.ID(id)); ok {
		return d.Name
	}
	return fmt.Sprintf("card #%d", id)
}

func (c *Client) readChoice(reader *bufio.Reader, count int) (int, error) {
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return 0, fmt.Errorf("read input: %w", err)
		}
		line = strings.TrimSpace(line)
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > count {
			fmt.Printf("Enter a number between 1 and %d\n", count)
			continue
		}
		return n - 1, nil // convert to 0-indexed
	}
}
