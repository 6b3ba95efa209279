// Package web serves the strip status over HTTP for people and scripts.
package web

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/sweeney/motion-strip/internal/status"
)

// Source supplies the status to serve. *status.Tracker implements it.
type Source interface {
	Snapshot() status.Snapshot
}

// view renders one representation of the strip status.
type view struct {
	contentType string
	render      func(status.Snapshot) ([]byte, error)
	// code picks the response status; nil means 200.
	code func(status.Snapshot) int
}

var (
	pageView = view{
		contentType: "text/html; charset=utf-8",
		render: func(snap status.Snapshot) ([]byte, error) {
			var buf bytes.Buffer
			if err := renderHTML(&buf, snap); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	}
	jsonView = view{
		contentType: "application/json",
		render: func(snap status.Snapshot) ([]byte, error) {
			return status.FormatJSON(snap), nil
		},
	}
	// healthView reports 503 until the light average has calibrated, so a
	// supervisor can tell a stuck sensor from a running strip.
	healthView = view{
		contentType: "text/plain; charset=utf-8",
		render: func(snap status.Snapshot) ([]byte, error) {
			if !snap.State.Calibrated {
				return []byte("calibrating\n"), nil
			}
			return []byte(fmt.Sprintf("ok strip=%s light=%s\n", onOffLabel(snap.State.StripOn), lightLabel(snap))), nil
		},
		code: func(snap status.Snapshot) int {
			if !snap.State.Calibrated {
				return http.StatusServiceUnavailable
			}
			return http.StatusOK
		},
	}
)

var routes = map[string]view{
	"/":           pageView,
	"/index.html": pageView,
	"/index.json": jsonView,
	"/healthz":    healthView,
}

// Server is a read-only HTTP view of the strip.
type Server struct {
	httpServer *http.Server
	src        Source
}

// New creates a Server listening on addr once started.
func New(addr string, src Source) *Server {
	s := &Server{src: src}
	s.httpServer = &http.Server{Addr: addr, Handler: s}
	return s
}

// ServeHTTP renders a fresh snapshot for every request. Status is never
// cached since the strip can change at any tick.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v, ok := routes[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	snap := s.src.Snapshot()
	body, err := v.render(snap)
	if err != nil {
		log.Printf("web: render %s: %v", r.URL.Path, err)
		http.Error(w, "status unavailable", http.StatusInternalServerError)
		return
	}

	code := http.StatusOK
	if v.code != nil {
		code = v.code(snap)
	}
	h := w.Header()
	h.Set("Content-Type", v.contentType)
	h.Set("Cache-Control", "no-store")
	h.Set("X-Strip-State", onOffLabel(snap.State.StripOn))
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(body); err != nil {
		log.Printf("web: write %s: %v", r.URL.Path, err)
	}
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func onOffLabel(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func lightLabel(snap status.Snapshot) string {
	switch {
	case !snap.State.Calibrated:
		return "UNKNOWN"
	case snap.State.Dark:
		return "DARK"
	}
	return "LIGHT"
}
