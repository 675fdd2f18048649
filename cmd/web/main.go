package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/config"
	"github.com/ValleyOfWalls/wildhand/internal/store"
	"github.com/ValleyOfWalls/wildhand/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.WebAddr, "HTTP listen address")
	artDir := flag.String("art", "", "path to card art directory; empty disables /art/")
	cardsFile := flag.String("cards", cfg.CardsFile, "path to card catalog YAML (empty = embedded)")
	decksFile := flag.String("decks", cfg.DecksFile, "path to starter decks YAML (empty = embedded)")
	dataFile := flag.String("data", cfg.DataFile, "path to profile database; empty disables /api/profiles")
	flag.Parse()

	cat, err := card.LoadCatalog(*cardsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load catalog: %v\n", err)
		os.Exit(1)
	}
	tpls, err := card.LoadTemplates(*decksFile, cat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load decks: %v\n", err)
		os.Exit(1)
	}
	reg, err := card.NewRegistry(cat, tpls)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: build registry: %v\n", err)
		os.Exit(1)
	}

	// A running host holds the database lock, so a failed open degrades to
	// a UI without profiles instead of refusing to start.
	var st *store.Store
	if *dataFile != "" {
		st, err = store.Open(*dataFile)
		if err != nil {
			log.Printf("Warning: profiles unavailable: %v", err)
			st = nil
		} else {
			defer st.Close()
		}
	}

	srv := web.NewServer(reg, st, *artDir)
	log.Printf("wildhand web UI listening on http://localhost%s", *addr)
	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
