package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/config"
	wildmcp "github.com/ValleyOfWalls/wildhand/internal/mcp"
	"github.com/ValleyOfWalls/wildhand/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cardsFile := flag.String("cards", cfg.CardsFile, "path to card catalog YAML (empty = embedded)")
	decksFile := flag.String("decks", cfg.DecksFile, "path to starter decks YAML (empty = embedded)")
	dataFile := flag.String("data", cfg.DataFile, "path to profile database; empty disables profiles")
	port := flag.String("port", "9999", "TCP port for the human player connection")
	flag.Parse()

	reg, err := loadRegistry(*cardsFile, *decksFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	wildmcp.SetRegistry(reg)
	wildmcp.SetPort(*port)

	if *dataFile != "" {
		st, err := store.Open(*dataFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		wildmcp.SetStore(st)
	}

	s := server.NewMCPServer("wildhand", "1.0.0")
	wildmcp.RegisterTools(s)

	// ServeStdio owns stdout for the protocol, so errors go to stderr only.
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
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
