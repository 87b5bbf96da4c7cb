package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitpal/splitpal/internal/middleware"
)

// Router builds the full route table. Everything under /api except the auth
// endpoints requires a bearer token.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics, middleware.Logging)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequireAuth(s.jwtManager))

	api.HandleFunc("/users/me", s.handleMe).Methods(http.MethodGet)
	api.HandleFunc("/users/search", s.handleSearchUsers).Methods(http.MethodGet)

	api.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{id}", s.handleDeleteExpense).Methods(http.MethodDelete)

	api.HandleFunc("/settlements", s.handleCreateSettlement).Methods(http.MethodPost)
	api.HandleFunc("/settlements/{id}", s.handleDeleteSettlement).Methods(http.MethodDelete)

	api.HandleFunc("/balances/{userId}", s.handlePairwiseBalance).Methods(http.MethodGet)

	api.HandleFunc("/groups", s.handleListGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups", s.handleCreateGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups/{id}", s.handleGroupDetail).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id}/balances", s.handleGroupBalances).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id}/members", s.handleAddGroupMembers).Methods(http.MethodPost)

	api.HandleFunc("/contacts", s.handleContacts).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/spending", s.handleMonthlySpending).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
