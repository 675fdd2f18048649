package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"net/http"

	"github.com/coder/websocket"

	"github.com/ValleyOfWalls/wildhand/internal/card"
	"github.com/ValleyOfWalls/wildhand/internal/store"
)

//go:embed static
var staticFiles embed.FS

// Server is the wildhand web UI server. It serves the browser client, the
// card and deck data it renders from, and a WebSocket proxy that bridges
// the browser to a TCP match server.
type Server struct {
	registry *card.Registry
	store    *store.Store // nil disables /api/profiles
	artDir   string
	mux      *http.ServeMux
}

// NewServer creates a new web server around a loaded card registry.
func NewServer(reg *card.Registry, st *store.Store, artDir string) *Server {
	s := &Server{
		registry: reg,
		store:    st,
		artDir:   artDir,
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f.(io.Reader))
	})

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Card art from the filesystem, when a directory was given.
	if s.artDir != "" {
		s.mux.Handle("GET /art/", http.StripPrefix("/art/", http.FileServer(http.Dir(s.artDir))))
	}

	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/decks", s.handleDecks)
	s.mux.HandleFunc("GET /api/species", s.handleSpecies)
	s.mux.HandleFunc("GET /api/profiles", s.handleProfiles)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cards := make([]CardInfo, 0)
	for _, d := range s.registry.All() {
		cards = append(cards, cardInfo(d))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cards)
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	decks := []DeckInfo{deckInfo(s.registry.HandlerTemplate())}
	for _, t := range s.registry.PetTemplates() {
		decks = append(decks, deckInfo(t))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decks)
}

func (s *Server) handleSpecies(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(speciesInfo())
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "profiles are not configured", http.StatusNotFound)
		return
	}
	profiles, err := s.store.Profiles(r.Context())
	if err != nil {
		http.Error(w, "could not read profiles", http.StatusInternalServerError)
		return
	}
	out := make([]ProfileInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileInfo(p))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// handleWebSocket bridges one browser to a TCP match server. The browser
// opens with a connect message naming the server address and its handler;
// after that, server messages and client responses pass through untouched.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		log.Printf("WebSocket accept error: %v", err)
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()

	_, connectData, err := wsConn.Read(ctx)
	if err != nil {
		log.Printf("WebSocket read connect: %v", err)
		return
	}

	var connectMsg struct {
		Type     string `json:"type"`
		Addr     string `json:"addr"`
		Name     string `json:"name"`
		Species  string `json:"species"`
		UseSaved bool   `json:"use_saved"`
	}
	if err := json.Unmarshal(connectData, &connectMsg); err != nil || connectMsg.Type != "connect" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected connect message")
		return
	}

	tcpConn, err := net.Dial("tcp", connectMsg.Addr)
	if err != nil {
		errMsg, _ := json.Marshal(map[string]string{
			"type":   "error",
			"result": fmt.Sprintf("Could not connect to match server at %s: %v", connectMsg.Addr, err),
		})
		wsConn.Write(ctx, websocket.MessageText, errMsg)
		wsConn.Close(websocket.StatusNormalClosure, "connection failed")
		return
	}
	defer tcpConn.Close()

	// The match server expects the same hello a terminal client sends.
	helloMsg, _ := json.Marshal(map[string]interface{}{
		"type":      "hello",
		"name":      connectMsg.Name,
		"species":   connectMsg.Species,
		"use_saved": connectMsg.UseSaved,
	})
	helloMsg = append(helloMsg, '\n')
	if _, err := tcpConn.Write(helloMsg); err != nil {
		log.Printf("TCP write hello: %v", err)
		return
	}

	done := make(chan struct{})

	// TCP to WebSocket (server messages to browser)
	go func() {
		defer close(done)
		dec := json.NewDecoder(tcpConn)
		for {
			var msg json.RawMessage
			if err := dec.Decode(&msg); err != nil {
				if err != io.EOF {
					log.Printf("TCP read error: %v", err)
				}
				return
			}
			if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}
		}
	}()

	// WebSocket to TCP (browser responses to server)
	go func() {
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				return
			}
			data = append(data, '\n')
			if _, err := tcpConn.Write(data); err != nil {
				log.Printf("TCP write error: %v", err)
				return
			}
		}
	}()

	<-done
	wsConn.Close(websocket.StatusNormalClosure, "match ended")
}

// Handler exposes the route table, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}
