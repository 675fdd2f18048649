package net

import (
	"context"
	"fmt"
	"net"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/match"
	"github.com/ValleyOfWalls/wildhand/internal/store"
)

// Server hosts a two-seat match over TCP. The host plays in the server's
// own terminal through an in-process pipe; one remote challenger connects
// over the network. Both seats go through the same hello/ready handshake.
type Server struct {
	Port        string
	Registry    *card.Registry
	Store       *store.Store // nil disables profiles and saved results
	HostName    string
	HostSpecies string
	HostSaved   bool // restore the host's saved decks when a profile exists
	DraftRounds int
	MaxRounds   int
	Seed        int64

	tracer trace.Tracer
}

// Run hosts a single match and returns when it ends or a seat drops.
func (s *Server) Run(ctx context.Context) error {
	if s.tracer == nil {
		s.tracer = otel.Tracer("wildhand/net")
	}

	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	fmt.Printf("Waiting for a challenger on port %s...\n", s.Port)

	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	fmt.Printf("Challenger connected from %s\n", conn.RemoteAddr())

	cfg := match.Config{
		Registry:    s.Registry,
		DraftRounds: s.DraftRounds,
		MaxRounds:   s.MaxRounds,
		Seed:        s.Seed,
	}
	// Assign through the concrete type so a nil store never becomes a
	// non-nil ResultRecorder.
	if s.Store != nil {
		cfg.Recorder = s.Store
	}
	m, err := match.NewMatch(cfg)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "match",
		trace.WithAttributes(attribute.String("match.id", m.ID)))
	defer span.End()

	// The host's client runs over a pipe and speaks the same protocol
	// as a remote one.
	hostConn, hostSide := net.Pipe()

	errCh := make(chan error, 2)
	go func() {
		client := NewClient(hostConn, s.Registry, s.HostName, s.HostSpecies, s.HostSaved)
		errCh <- client.Run(ctx)
	}()

	_, lobbySpan := s.tracer.Start(ctx, "lobby")
	hostCtrl := NewTeamController(hostSide, 0)
	if err := s.admit(ctx, m, hostCtrl); err != nil {
		lobbySpan.End()
		return fmt.Errorf("seat host: %w", err)
	}
	guestCtrl := NewTeamController(conn, 1)
	if err := s.admit(ctx, m, guestCtrl); err != nil {
		lobbySpan.End()
		return fmt.Errorf("seat challenger: %w", err)
	}

	<-m.Started()
	lobbySpan.End()
	fmt.Println("Both handlers ready. The draft begins.")

	// Profiles must exist before the match records its result, or the
	// win counters have nothing to land on.
	s.saveProfiles(ctx, m)

	go StreamTable(ctx, hostCtrl, m.Spawner, m.Hands)
	go StreamTable(ctx, guestCtrl, m.Spawner, m.Hands)

	go func() {
		drivers := [2]match.SeatDriver{hostCtrl, guestCtrl}
		if err := m.Run(ctx, drivers); err != nil {
			errCh <- fmt.Errorf("run match: %w", err)
			return
		}
		winner, result := m.Outcome()
		span.SetAttributes(attribute.Int("match.winner", winner))
		s.saveProfiles(ctx, m)
		_ = guestCtrl.SendGameOver(winner, result)
		_ = hostCtrl.SendGameOver(winner, result)
		errCh <- nil
	}()

	return <-errCh
}

// admit runs one seat's hello/ready handshake.
func (s *Server) admit(ctx context.Context, m *match.Match, tc *TeamController) error {
	hello, err := tc.Recv()
	if err != nil {
		return fmt.Errorf("read hello: %w", err)
	}
	if hello.Type != "hello" {
		_ = tc.SendError("expected hello")
		return fmt.Errorf("expected hello, got %q", hello.Type)
	}

	p, err := s.seat(ctx, m, hello)
	if err != nil {
		_ = tc.SendError(err.Error())
		return err
	}
	fmt.Printf("%s sits down with a %s\n", p.Name, p.Pet.Species.Name)

	lv := LobbyView{Seat: p.Seat, PlayerID: p.ID}
	for i := 0; i < 2; i++ {
		sp, ok := m.PlayerAt(i)
		if !ok {
			continue
		}
		lv.Seats = append(lv.Seats, SeatView{
			Seat:    sp.Seat,
			Name:    sp.Name,
			Species: sp.Pet.Species.Name,
			Ready:   sp.Ready(),
		})
	}
	if err := tc.SendLobby(lv); err != nil {
		return fmt.Errorf("send lobby: %w", err)
	}

	ready, err := tc.Recv()
	if err != nil {
		return fmt.Errorf("read ready: %w", err)
	}
	if ready.Type != "ready" {
		return fmt.Errorf("expected ready, got %q", ready.Type)
	}
	return m.SetReady(p.ID)
}

// seat joins the player, restoring saved decks when asked for and a
// matching profile exists. A profile for a different species falls back
// to starter decks rather than failing the handshake.
func (s *Server) seat(ctx context.Context, m *match.Match, hello ClientMessage) (*match.Player, error) {
	if hello.UseSaved && s.Store != nil {
		prof, err := s.Store.Profile(ctx, hello.Name)
		if err == nil && strings.EqualFold(prof.PetSpecies, hello.Species) &&
			len(prof.HandlerDeck) > 0 && len(prof.PetDeck) > 0 {
			fmt.Printf("%s returns with saved decks (%d handler, %d pet)\n",
				hello.Name, len(prof.HandlerDeck), len(prof.PetDeck))
			return m.JoinWithDecks(hello.Name, hello.Species, prof.HandlerDeck, prof.PetDeck)
		}
	}
	return m.Join(hello.Name, hello.Species)
}

// saveProfiles writes both players' species and current decks back to the
// store. Win counters are read fresh so the result recorded during the
// match survives the rewrite.
func (s *Server) saveProfiles(ctx context.Context, m *match.Match) {
	if s.Store == nil {
		return
	}
	for seat := 0; seat < 2; seat++ {
		p, ok := m.PlayerAt(seat)
		if !ok {
			continue
		}
		prof, err := s.Store.Profile(ctx, p.Name)
		if err != nil {
			prof = store.Profile{Name: p.Name}
		}
		prof.PetSpecies = p.Pet.Species.Name
		prof.HandlerDeck = p.HandlerDeck.Snapshot()
		prof.PetDeck = p.Pet.Deck.Snapshot()
		if err := s.Store.SaveProfile(ctx, prof); err != nil {
			fmt.Printf("Warning: could not save profile for %s: %v\n", p.Name, err)
		}
	}
}
