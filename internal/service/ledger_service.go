// Package service implements the ledger use cases: the write path for
// expenses, settlements and groups, and the read models built on the
// calculator. Every operation takes an explicit viewer id; nothing here
// reads identity from ambient state.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/splitpal/splitpal/internal/calculator"
	"github.com/splitpal/splitpal/internal/directory"
	"github.com/splitpal/splitpal/internal/models"
	"github.com/splitpal/splitpal/internal/notify"
	"github.com/splitpal/splitpal/internal/storage"
)

// ErrNotAllowed is returned when the requester is not authorized for the
// operation (e.g. deleting an expense they neither created nor paid).
var ErrNotAllowed = errors.New("not allowed")

// LedgerService is the write path: it validates input, derives splits, and
// persists records atomically through the store. Notification events are
// published fire-and-forget after a successful write.
type LedgerService struct {
	store     storage.Store
	directory directory.Directory
	publisher notify.Publisher
}

// NewLedgerService creates the write-path service.
func NewLedgerService(store storage.Store, dir directory.Directory, publisher notify.Publisher) *LedgerService {
	return &LedgerService{store: store, directory: dir, publisher: publisher}
}

// ExpenseInput is the payload for creating an expense. Percentage and exact
// parameters ride on the participant entries.
type ExpenseInput struct {
	Description  string
	Amount       models.Money
	Category     string
	Date         int64
	GroupID      string
	PaidBy       string
	SplitType    models.SplitType
	Participants []calculator.Participant
}

// CreateExpense validates the input, derives the splits, and persists the
// expense with all splits in one transaction. A validation failure never
// reaches the store.
func (s *LedgerService) CreateExpense(ctx context.Context, viewerID string, in ExpenseInput) (*models.Expense, error) {
	if err := s.checkParticipants(ctx, in.GroupID, in.PaidBy, in.Participants); err != nil {
		return nil, err
	}
	if !participates(viewerID, in.Participants) {
		return nil, fmt.Errorf("%w: you must be a participant to record this expense", ErrNotAllowed)
	}

	splits, err := calculator.ComputeSplits(in.Amount, in.SplitType, in.Participants, in.PaidBy)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
		GroupID:     in.GroupID,
		PaidBy:      in.PaidBy,
		CreatedBy:   viewerID,
		SplitType:   in.SplitType,
		Splits:      splits,
	}
	if expense.Date == 0 {
		expense.Date = time.Now().Unix()
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to persist expense: %w", err)
	}

	participantIDs := make([]string, len(splits))
	for i, sp := range splits {
		participantIDs[i] = sp.UserID
	}
	s.publish(ctx, func() error {
		return s.publisher.PublishExpenseCreated(ctx, notify.ExpenseCreated{
			ExpenseID:    expense.ID,
			Description:  expense.Description,
			Amount:       expense.Amount.String(),
			GroupID:      expense.GroupID,
			PaidBy:       expense.PaidBy,
			Participants: participantIDs,
		})
	})
	return expense, nil
}

// DeleteExpense removes an expense. Only the creator or the payer may delete;
// a second delete of the same id reports not-found.
func (s *LedgerService) DeleteExpense(ctx context.Context, expenseID, requesterID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if requesterID != expense.CreatedBy && requesterID != expense.PaidBy {
		return fmt.Errorf("%w: only the creator or payer may delete an expense", ErrNotAllowed)
	}
	return s.store.DeleteExpense(ctx, expenseID)
}

// SettlementInput is the payload for recording a direct payment.
type SettlementInput struct {
	GroupID    string
	PaidBy     string
	ReceivedBy string
	Amount     models.Money
	Date       int64
	Note       string
}

// CreateSettlement validates and persists a settlement. The viewer must be
// one of the two parties.
func (s *LedgerService) CreateSettlement(ctx context.Context, viewerID string, in SettlementInput) (*models.Settlement, error) {
	settlement := &models.Settlement{
		GroupID:    in.GroupID,
		PaidBy:     in.PaidBy,
		ReceivedBy: in.ReceivedBy,
		Amount:     in.Amount,
		Date:       in.Date,
		Note:       in.Note,
		CreatedBy:  viewerID,
	}
	if settlement.Date == 0 {
		settlement.Date = time.Now().Unix()
	}
	if err := settlement.Validate(); err != nil {
		return nil, err
	}
	if viewerID != in.PaidBy && viewerID != in.ReceivedBy {
		return nil, fmt.Errorf("%w: you must be a party to the settlement", ErrNotAllowed)
	}

	parties := []calculator.Participant{{UserID: in.PaidBy}, {UserID: in.ReceivedBy}}
	if err := s.checkParticipants(ctx, in.GroupID, in.PaidBy, parties); err != nil {
		return nil, err
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, fmt.Errorf("failed to persist settlement: %w", err)
	}

	s.publish(ctx, func() error {
		return s.publisher.PublishSettlementCreated(ctx, notify.SettlementCreated{
			SettlementID: settlement.ID,
			Amount:       settlement.Amount.String(),
			GroupID:      settlement.GroupID,
			PaidBy:       settlement.PaidBy,
			ReceivedBy:   settlement.ReceivedBy,
		})
	})
	return settlement, nil
}

// DeleteSettlement removes a settlement. Either party or the recorder may
// delete it.
func (s *LedgerService) DeleteSettlement(ctx context.Context, settlementID, requesterID string) error {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return err
	}
	if requesterID != settlement.PaidBy && requesterID != settlement.ReceivedBy && requesterID != settlement.CreatedBy {
		return fmt.Errorf("%w: only a party or the recorder may delete a settlement", ErrNotAllowed)
	}
	return s.store.DeleteSettlement(ctx, settlementID)
}

// CreateGroup creates a group with the viewer as admin. Every listed member
// must exist in the directory; the viewer is added implicitly.
func (s *LedgerService) CreateGroup(ctx context.Context, viewerID, name, description string, memberIDs []string) (*models.Group, error) {
	if name == "" {
		return nil, models.Invalidf("group name required")
	}

	members := []models.GroupMember{{UserID: viewerID, Role: models.RoleAdmin}}
	seen := map[string]bool{viewerID: true}
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.directory.Lookup(ctx, id); err != nil {
			return nil, err
		}
		members = append(members, models.GroupMember{UserID: id, Role: models.RoleMember})
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		Members:     members,
		CreatedBy:   viewerID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to persist group: %w", err)
	}
	return group, nil
}

// AddGroupMembers appends members to an existing group. Only current members
// may add others; membership is append-only here.
func (s *LedgerService) AddGroupMembers(ctx context.Context, groupID, viewerID string, memberIDs []string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(viewerID) {
		return fmt.Errorf("%w: you must be a member of this group", ErrNotAllowed)
	}

	var members []models.GroupMember
	for _, id := range memberIDs {
		if group.HasMember(id) {
			continue
		}
		if _, err := s.directory.Lookup(ctx, id); err != nil {
			return err
		}
		members = append(members, models.GroupMember{UserID: id, Role: models.RoleMember})
	}
	if len(members) == 0 {
		return nil
	}
	return s.store.AddGroupMembers(ctx, groupID, members)
}

// checkParticipants verifies that every participant (payer included) exists,
// and for group records that all of them belong to the group.
func (s *LedgerService) checkParticipants(ctx context.Context, groupID, payerID string, participants []calculator.Participant) error {
	if groupID != "" {
		group, err := s.store.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		for _, p := range participants {
			if !group.HasMember(p.UserID) {
				return models.Invalidf("user %s is not a member of the group", p.UserID)
			}
		}
		if !group.HasMember(payerID) {
			return models.Invalidf("payer is not a member of the group")
		}
		return nil
	}
	for _, p := range participants {
		if _, err := s.directory.Lookup(ctx, p.UserID); err != nil {
			return err
		}
	}
	return nil
}

// publish runs a fire-and-forget event emission; failures are logged, never
// surfaced to the caller.
func (s *LedgerService) publish(ctx context.Context, fn func() error) {
	if err := fn(); err != nil {
		slog.WarnContext(ctx, "failed to publish notification event", "error", err)
	}
}

func participates(userID string, participants []calculator.Participant) bool {
	for _, p := range participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
