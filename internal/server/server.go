package server

import (
	"net/http"
	"time"

	"github.com/avral/gatehouse/internal/session"
	"github.com/avral/gatehouse/internal/userstore"
)

type Config struct {
	ListenAddr string
	Secret     []byte
	Users      *userstore.Store
	Sessions   *session.Store
}

type Server struct {
	cfg Config
	h   http.Handler
}

func New(cfg Config) *Server {
	app, err := newApp(cfg)
	if err != nil {
		// Defer error to request time for a single error return path.
		return &Server{cfg: cfg, h: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		})}
	}
	return &Server{cfg: cfg, h: app.routes()}
}

// Handler exposes the assembled handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.h
}

func (s *Server) ListenAndServe() error {
	httpSrv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return httpSrv.ListenAndServe()
}
