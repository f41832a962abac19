package server

import (
	"net/http"

	"github.com/sw33tLie/groupgen/internal/utils"
	"github.com/sw33tLie/groupgen/pkg/generator"
	"github.com/sw33tLie/groupgen/pkg/storage"
)

type Server struct {
	DB       *storage.DB
	Library  *generator.Library // optional
	Username string
	Password string
}

func New(db *storage.DB, lib *generator.Library, user, pass string) *Server {
	return &Server{
		DB:       db,
		Library:  lib,
		Username: user,
		Password: pass,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/stats", s.basicAuth(s.handleStats))
	mux.HandleFunc("GET /api/groups", s.basicAuth(s.handleGroups))
	mux.HandleFunc("GET /api/groups/{name}", s.basicAuth(s.handleGroup))
	mux.HandleFunc("GET /api/generators", s.basicAuth(s.handleGenerators))

	return mux
}

func (s *Server) Start(addr string) error {
	utils.Log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
