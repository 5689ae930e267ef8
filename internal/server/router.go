package server

import "net/http"

// NewRouter wires HTTP routes to the server's handlers.
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/package", s.handlePackage)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}
