package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/config"
	"github.com/ValleyOfWalls/wildhand/internal/log"
	"github.com/ValleyOfWalls/wildhand/internal/match"
	wildnet "github.com/ValleyOfWalls/wildhand/internal/net"
	"github.com/ValleyOfWalls/wildhand/internal/store"
	"github.com/ValleyOfWalls/wildhand/internal/telemetry"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "host":
		runHost(os.Args[2:])
	case "join":
		runJoin(os.Args[2:])
	case "simulate":
		runSimulate(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  wildhand host [--name NAME] [--species SPECIES] [--saved] [--port P]")
	fmt.Println("  wildhand join [--name NAME] [--species SPECIES] [--saved] [--addr ADDR]")
	fmt.Println("  wildhand simulate [--matches N] [--seed S]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host      Start a match server and play seat 0 in this terminal")
	fmt.Println("  join      Connect to a match server and play seat 1")
	fmt.Println("  simulate  Run automated matches and print the outcomes")
	fmt.Println()
	fmt.Println("Defaults come from the environment (WILDHAND_*) and .env; flags win.")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func mustConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	return cfg
}

func loadRegistry(cardsFile, decksFile string) (*card.Registry, error) {
	cat, err := card.LoadCatalog(cardsFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	tpls, err := card.LoadTemplates(decksFile, cat)
	if err != nil {
		return nil, fmt.Errorf("load decks: %w", err)
	}
	return card.NewRegistry(cat, tpls)
}

func runHost(args []string) {
	cfg := mustConfig()

	fs := flag.NewFlagSet("host", flag.ExitOnError)
	name := fs.String("name", "Host", "your handler name")
	species := fs.String("species", "Emberwolf", "your pet species")
	saved := fs.Bool("saved", false, "restore your saved decks when a profile exists")
	port := fs.String("port", cfg.Port, "TCP port to listen on")
	data := fs.String("data", cfg.DataFile, "profile database path (empty disables profiles)")
	cards := fs.String("cards", cfg.CardsFile, "card catalog YAML (empty = embedded)")
	decks := fs.String("decks", cfg.DecksFile, "starter deck YAML (empty = embedded)")
	draftRounds := fs.Int("draft-rounds", cfg.DraftRounds, "draft rounds before combat")
	maxRounds := fs.Int("max-rounds", cfg.MaxRounds, "combat round limit")
	seed := fs.Int64("seed", 0, "RNG seed (0 = time-seeded)")
	fs.Parse(args)

	ctx := context.Background()

	shutdown, err := telemetry.Setup(ctx, "wildhand", version, cfg.OTELEndpoint)
	if err != nil {
		fatal(err)
	}
	defer shutdown(context.Background())

	reg, err := loadRegistry(*cards, *decks)
	if err != nil {
		fatal(err)
	}

	var st *store.Store
	if *data != "" {
		st, err = store.Open(*data)
		if err != nil {
			fatal(err)
		}
		defer st.Close()
	}

	srv := &wildnet.Server{
		Port:        *port,
		Registry:    reg,
		Store:       st,
		HostName:    *name,
		HostSpecies: *species,
		HostSaved:   *saved,
		DraftRounds: *draftRounds,
		MaxRounds:   *maxRounds,
		Seed:        *seed,
	}

	if err := srv.Run(ctx); err != nil {
		fatal(err)
	}
}

func runJoin(args []string) {
	cfg := mustConfig()

	fs := flag.NewFlagSet("join", flag.ExitOnError)
	name := fs.String("name", "Challenger", "your handler name")
	species := fs.String("species", "Mosstoad", "your pet species")
	saved := fs.Bool("saved", false, "restore your saved decks when the host knows you")
	addr := fs.String("addr", "localhost:"+cfg.Port, "server address to connect to")
	cards := fs.String("cards", cfg.CardsFile, "card catalog YAML (empty = embedded)")
	decks := fs.String("decks", cfg.DecksFile, "starter deck YAML (empty = embedded)")
	fs.Parse(args)

	reg, err := loadRegistry(*cards, *decks)
	if err != nil {
		fatal(err)
	}

	if err := wildnet.Connect(context.Background(), *addr, *name, *species, *saved, reg); err != nil {
		fatal(err)
	}
}

func runSimulate(args []string) {
	cfg := mustConfig()

	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	matches := fs.Int("matches", 1, "number of matches to run")
	seed := fs.Int64("seed", 0, "base RNG seed (0 = time-seeded)")
	species0 := fs.String("species0", "Emberwolf", "seat 0 pet species")
	species1 := fs.String("species1", "Mosstoad", "seat 1 pet species")
	cards := fs.String("cards", cfg.CardsFile, "card catalog YAML (empty = embedded)")
	decks := fs.String("decks", cfg.DecksFile, "starter deck YAML (empty = embedded)")
	draftRounds := fs.Int("draft-rounds", cfg.DraftRounds, "draft rounds before combat")
	maxRounds := fs.Int("max-rounds", cfg.MaxRounds, "combat round limit")
	quiet := fs.Bool("quiet", false, "suppress the per-event match log")
	fs.Parse(args)

	reg, err := loadRegistry(*cards, *decks)
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	wins := [2]int{}
	draws := 0

	base := *seed
	if base == 0 {
		base = time.Now().UnixNano()
	}

	for i := 0; i < *matches; i++ {
		// Three seeds per match: the engine and one per seat driver.
		matchSeed := base + int64(i)*3

		mcfg := match.Config{
			Registry:    reg,
			Seed:        matchSeed,
			DraftRounds: *draftRounds,
			MaxRounds:   *maxRounds,
		}
		if !*quiet {
			mcfg.Logger = log.NewTextLogger(os.Stdout)
		}

		m, err := match.NewMatch(mcfg)
		if err != nil {
			fatal(err)
		}

		north, err := m.Join("North", *species0)
		if err != nil {
			fatal(err)
		}
		south, err := m.Join("South", *species1)
		if err != nil {
			fatal(err)
		}
		if err := m.SetReady(north.ID); err != nil {
			fatal(err)
		}
		if err := m.SetReady(south.ID); err != nil {
			fatal(err)
		}

		drivers := [2]match.SeatDriver{
			match.NewAutoDriver(matchSeed + 1),
			match.NewAutoDriver(matchSeed + 2),
		}
		if err := m.Run(ctx, drivers); err != nil {
			fatal(err)
		}

		winner, result := m.Outcome()
		switch winner {
		case 0, 1:
			wins[winner]++
		default:
			draws++
		}
		fmt.Printf("Match %d: %s\n", i+1, result)
	}

	if *matches > 1 {
		fmt.Printf("\nNorth %d, South %d, drawn %d\n", wins[0], wins[1], draws)
	}
}
