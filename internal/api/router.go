// Package api is the local HTTP control surface: mapping updates, status and
// event injection for hosts that cannot reach an input device.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bezmoradi/gestured/internal/gesture"
)

// Controller is the part of the dispatcher the API drives.
type Controller interface {
	Handle(ev gesture.Event) bool
	Mapping() map[int]gesture.ActionID
	UpdateMappingInts(scanCodes, actions []int) error
	Pending() bool
	Stats() gesture.Stats
}

func NewRouter(ctrl Controller) *mux.Router {
	h := &handlers{ctrl: ctrl}
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/mapping", h.getMapping).Methods("GET")
	r.HandleFunc("/mapping", h.putMapping).Methods("PUT")
	r.HandleFunc("/status", h.getStatus).Methods("GET")
	r.HandleFunc("/gesture", h.postGesture).Methods("POST")
	r.Use(logRequests)
	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[API] %s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

// Server serves the router on a TCP address.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

func NewServer(addr string, ctrl Controller) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewRouter(ctrl),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}
	s.ln = ln
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[API] Server stopped: %v", err)
		}
	}()
	log.Printf("[API] Listening on %s", ln.Addr())
	return nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.srv.Addr
	}
	return s.ln.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
