// Package server streams layout generation to browsers over websockets.
package server

import (
	"context"
	_ "embed"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/layout"
	"github.com/samdwyer/dungeonlayout/internal/snapshot"
	"github.com/samdwyer/dungeonlayout/internal/telemetry"
)

//go:embed static/index.html
var indexHTML []byte

// Factory builds a fresh pipeline for each generation.
type Factory func() (*layout.Pipeline, error)

// Options tunes the generation loop.
type Options struct {
	// Rate is the number of pipeline steps per second.
	Rate int
	// Hold is how long a finished layout stays up before the next one starts.
	Hold time.Duration
	// Loop restarts generation after each hold. Without it the server keeps
	// serving the first finished layout.
	Loop bool
}

// Server owns the hub, the latest snapshot and the generation loop.
type Server struct {
	factory Factory
	opts    Options
	hub     *Hub
	logger  *log.Logger

	mu     sync.RWMutex
	latest []byte
}

// New creates a server. It does not start generating until Run is called.
func New(factory Factory, opts Options, logger *log.Logger) (*Server, error) {
	if opts.Rate <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "frame rate must be positive, got %d", opts.Rate)
	}
	return &Server{
		factory: factory,
		opts:    opts,
		hub:     NewHub(),
		logger:  logger,
		latest:  []byte("{}"),
	}, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/ws", s.handleStream)
	return r
}

// Run steps pipelines from the factory and broadcasts a snapshot after
// every step until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer s.hub.CloseAll()

	ticker := time.NewTicker(time.Second / time.Duration(s.opts.Rate))
	defer ticker.Stop()

	for {
		p, err := s.factory()
		if err != nil {
			return err
		}
		if err := s.generate(ctx, p, ticker); err != nil {
			return err
		}
		if !s.opts.Loop {
			<-ctx.Done()
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.opts.Hold):
		}
	}
}

// generate steps p once per tick, publishing each state.
func (s *Server) generate(ctx context.Context, p *layout.Pipeline, ticker *time.Ticker) error {
	ctx, span := telemetry.Tracer("server").Start(ctx, "server.generate")
	defer span.End()
	defer p.Close()
	cfg := p.Config()
	span.SetAttributes(telemetry.RunAttributes(p.RunID(), cfg.Seed, cfg.Rooms)...)

	s.logger.Info("generating", "run", p.RunID(), "seed", cfg.Seed, "rooms", cfg.Rooms)
	s.publish(snapshot.Take(p))
	for !p.Done() {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if _, err := p.Step(ctx); err != nil {
			s.logger.Warn("step", "run", p.RunID(), "err", err)
		}
		s.publish(snapshot.Take(p))
	}

	s.logger.Info("layout complete", "run", p.RunID(), "passes", p.Passes(), "clients", s.hub.Len())
	return nil
}

func (s *Server) publish(snap snapshot.Snapshot) {
	data, err := snap.JSON()
	if err != nil {
		s.logger.Error("encode snapshot", "err", err)
		return
	}
	s.mu.Lock()
	s.latest = data
	s.mu.Unlock()
	s.hub.Broadcast(data)
}

// Latest returns the most recently published snapshot as JSON.
func (s *Server) Latest() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.Latest())
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Debug("websocket accept", "err", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := conn.Write(r.Context(), websocket.MessageText, s.Latest()); err != nil {
		return
	}
	s.hub.Add(conn)
	defer s.hub.Remove(conn)

	// Viewers only listen. Reading keeps control frames flowing and tells
	// us when the client leaves.
	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			return
		}
	}
}
