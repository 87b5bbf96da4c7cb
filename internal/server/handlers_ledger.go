package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/splitpal/splitpal/internal/calculator"
	"github.com/splitpal/splitpal/internal/middleware"
	"github.com/splitpal/splitpal/internal/models"
	"github.com/splitpal/splitpal/internal/service"
)

type expenseParticipant struct {
	UserID     string       `json:"userId"`
	Percentage float64      `json:"percentage,omitempty"`
	Amount     models.Money `json:"amount,omitempty"`
}

type createExpenseRequest struct {
	Description  string               `json:"description"`
	Amount       models.Money         `json:"amount"`
	Category     string               `json:"category,omitempty"`
	Date         string               `json:"date,omitempty"`
	GroupID      string               `json:"groupId,omitempty"`
	PaidBy       string               `json:"paidBy"`
	SplitType    models.SplitType     `json:"splitType"`
	Participants []expenseParticipant `json:"participants"`
}

type createdResponse struct {
	ID string `json:"id"`
}

// parseDate accepts an RFC 3339 timestamp or a bare date; empty means "now",
// resolved by the service.
func parseDate(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.Unix(), nil
	}
	return 0, models.Invalidf("invalid date %q", value)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	participants := make([]calculator.Participant, len(req.Participants))
	for i, p := range req.Participants {
		participants[i] = calculator.Participant{
			UserID:     p.UserID,
			Percentage: p.Percentage,
			Amount:     p.Amount,
		}
	}

	expense, err := s.ledger.CreateExpense(r.Context(), middleware.GetUserID(r.Context()), service.ExpenseInput{
		Description:  req.Description,
		Amount:       req.Amount,
		Category:     req.Category,
		Date:         date,
		GroupID:      req.GroupID,
		PaidBy:       req.PaidBy,
		SplitType:    req.SplitType,
		Participants: participants,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: expense.ID})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.ledger.DeleteExpense(r.Context(), id, middleware.GetUserID(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createSettlementRequest struct {
	GroupID    string       `json:"groupId,omitempty"`
	PaidBy     string       `json:"paidBy"`
	ReceivedBy string       `json:"receivedBy"`
	Amount     models.Money `json:"amount"`
	Date       string       `json:"date,omitempty"`
	Note       string       `json:"note,omitempty"`
}

func (s *Server) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req createSettlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	settlement, err := s.ledger.CreateSettlement(r.Context(), middleware.GetUserID(r.Context()), service.SettlementInput{
		GroupID:    req.GroupID,
		PaidBy:     req.PaidBy,
		ReceivedBy: req.ReceivedBy,
		Amount:     req.Amount,
		Date:       date,
		Note:       req.Note,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: settlement.ID})
}

func (s *Server) handleDeleteSettlement(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.ledger.DeleteSettlement(r.Context(), id, middleware.GetUserID(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"memberIds"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	group, err := s.ledger.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Description, req.MemberIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: group.ID})
}

type addMembersRequest struct {
	MemberIDs []string `json:"memberIds"`
}

func (s *Server) handleAddGroupMembers(w http.ResponseWriter, r *http.Request) {
	var req addMembersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	groupID := mux.Vars(r)["id"]
	if err := s.ledger.AddGroupMembers(r.Context(), groupID, middleware.GetUserID(r.Context()), req.MemberIDs); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
