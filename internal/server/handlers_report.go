package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/splitpal/splitpal/internal/middleware"
	"github.com/splitpal/splitpal/internal/models"
)

func (s *Server) handlePairwiseBalance(w http.ResponseWriter, r *http.Request) {
	counterpartID := mux.Vars(r)["userId"]
	balance, err := s.reports.GetPairwiseBalance(r.Context(), middleware.GetUserID(r.Context()), counterpartID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.reports.ListGroups(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGroupDetail(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["id"]
	detail, err := s.reports.GetGroupDetail(r.Context(), groupID, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleGroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["id"]
	balances, err := s.reports.GetGroupBalances(r.Context(), groupID, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.reports.GetContacts(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.reports.GetDashboard(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleMonthlySpending(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, models.Invalidf("invalid year %q", raw))
			return
		}
		year = parsed
	}

	summary, err := s.reports.GetMonthlySpending(r.Context(), middleware.GetUserID(r.Context()), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
