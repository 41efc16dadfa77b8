package apiserver

// registerRoutes wires every API endpoint to its handler. Paths are
// registered in full on the root router so method mismatches answer 405.
func (s *Server) registerRoutes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	s.router.HandleFunc("/api/v1/ask", s.handleAsk).Methods("POST")
	s.router.HandleFunc("/api/v1/tools", s.handleListTools).Methods("GET")
	s.router.HandleFunc("/api/v1/history", s.handleListHistory).Methods("GET")
	s.router.HandleFunc("/api/v1/history/{id}", s.handleGetHistory).Methods("GET")
}
