package app

import (
	"fmt"
	"time"

	"paperdesk/internal/authz"
	"paperdesk/internal/util"
	"paperdesk/pkg/domain"
)

// CreateAssignmentInput links an order to a writer.
type CreateAssignmentInput struct {
	OrderID  string
	WriterID string
}

// CreateAssignment assigns a writer to an order, admin or QA only.
func (a *App) CreateAssignment(actor *domain.User, in CreateAssignmentInput) (domain.Assignment, error) {
	if actor == nil {
		return domain.Assignment{}, ErrUnauthenticatedMutation
	}
	if !authz.Can(actor, authz.EntityAssignment, authz.ActionCreate, authz.Target{}) {
		return domain.Assignment{}, E(KindForbidden, MsgAssignmentCreateForbidden)
	}
	if _, ok, err := a.store.GetOrder(in.OrderID); err != nil {
		return domain.Assignment{}, fmt.Errorf("fetch order: %w", err)
	} else if !ok {
		return domain.Assignment{}, E(KindNotFound, MsgOrderNotFound)
	}
	writer, ok, err := a.store.GetUserByID(in.WriterID)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("fetch writer: %w", err)
	}
	if !ok || writer.Role != domain.RoleWriter {
		return domain.Assignment{}, E(KindValidation, "writerId must reference a writer")
	}
	now := time.Now().UTC()
	assignment := domain.Assignment{
		ID:        util.NewID(),
		OrderID:   in.OrderID,
		WriterID:  in.WriterID,
		Status:    domain.AssignmentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.SaveAssignment(assignment); err != nil {
		return domain.Assignment{}, fmt.Errorf("save assignment: %w", err)
	}
	return assignment, nil
}

// UpdateAssignment lets the assigned writer move the status.
func (a *App) UpdateAssignment(actor *domain.User, id string, status domain.AssignmentStatus) (domain.Assignment, error) {
	if actor == nil {
		return domain.Assignment{}, ErrUnauthenticatedMutation
	}
	assignment, ok, err := a.store.GetAssignment(id)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("fetch assignment: %w", err)
	}
	if !ok {
		return domain.Assignment{}, E(KindNotFound, MsgAssignmentNotFound)
	}
	if !authz.Can(actor, authz.EntityAssignment, authz.ActionUpdate, authz.Target{WriterID: assignment.WriterID}) {
		return domain.Assignment{}, E(KindForbidden, MsgAssignmentUpdateForbidden)
	}
	assignment.Status = status
	assignment.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdateAssignment(assignment); err != nil {
		return domain.Assignment{}, fmt.Errorf("update assignment: %w", err)
	}
	return assignment, nil
}

// DeleteAssignment removes an assignment, admin or QA only.
func (a *App) DeleteAssignment(actor *domain.User, id string) (bool, error) {
	if actor == nil {
		return false, ErrUnauthenticatedMutation
	}
	if !authz.Can(actor, authz.EntityAssignment, authz.ActionDelete, authz.Target{}) {
		return false, E(KindForbidden, MsgAssignmentDeleteForbidden)
	}
	_, ok, err := a.store.GetAssignment(id)
	if err != nil {
		return false, fmt.Errorf("fetch assignment: %w", err)
	}
	if !ok {
		return false, E(KindNotFound, MsgAssignmentNotFound)
	}
	if err := a.store.DeleteAssignment(id); err != nil {
		return false, fmt.Errorf("delete assignment: %w", err)
	}
	return true, nil
}

// AssignmentsByOrder lists an order's assignments, admin or QA only.
// The assigned writer is rejected here regardless of ownership.
func (a *App) AssignmentsByOrder(actor *domain.User, orderID string) ([]domain.Assignment, error) {
	if actor == nil {
		return nil, ErrUnauthenticatedQuery
	}
	if !authz.Can(actor, authz.EntityAssignment, authz.ActionListByOrder, authz.Target{}) {
		return nil, E(KindForbidden, MsgAssignmentsUnauthorized)
	}
	list, err := a.store.ListAssignmentsByOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return list, nil
}

// AssignmentsByWriter lists a writer's assignments for admins, QA, or
// the writer themself. An empty set is a domain signal, not a list.
func (a *App) AssignmentsByWriter(actor *domain.User, writerID string) ([]domain.Assignment, error) {
	if actor == nil {
		return nil, ErrUnauthenticatedQuery
	}
	if !authz.Can(actor, authz.EntityAssignment, authz.ActionListByUser, authz.Target{SubjectID: writerID}) {
		return nil, E(KindForbidden, MsgAssignmentsUnauthorized)
	}
	list, err := a.store.ListAssignmentsByWriter(writerID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if len(list) == 0 {
		return nil, E(KindNotFound, MsgNoAssignments)
	}
	return list, nil
}
