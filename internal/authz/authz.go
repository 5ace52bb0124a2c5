// Package authz decides whether an actor may perform an action on an
// entity. Rules live in a single policy table so they can be audited
// and tested in isolation; resolvers map denials to their own
// user-facing messages.
package authz

import "paperdesk/pkg/domain"

type Entity string

const (
	EntityUser       Entity = "user"
	EntityOrder      Entity = "order"
	EntityPayment    Entity = "payment"
	EntityAssignment Entity = "assignment"
	EntityReview     Entity = "review"
)

type Action string

const (
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionListByUser Action = "list_by_user"
	// ActionListByOrder is the order-scoped listing (e.g. assignments
	// for an order), which has stricter role rules than per-user reads.
	ActionListByOrder Action = "list_by_order"
)

// Target carries the ownership fields relevant to a decision. Only the
// fields the rule consults need to be set.
type Target struct {
	// StudentID is the owning student of an order (or of a payment's
	// parent order).
	StudentID string
	// WriterID is the assigned or reviewed writer.
	WriterID string
	// QAID is the QA author of a review.
	QAID string
	// SubjectID is the user a per-user listing is scoped to.
	SubjectID string
}

type rule struct {
	// roles allowed regardless of ownership.
	roles []domain.UserRole
	// owner grants access when the ownership predicate holds.
	owner func(actor domain.User, t Target) bool
}

func studentOwns(actor domain.User, t Target) bool {
	return t.StudentID != "" && actor.ID == t.StudentID
}

func writerAssigned(actor domain.User, t Target) bool {
	return t.WriterID != "" && actor.ID == t.WriterID
}

func qaAuthored(actor domain.User, t Target) bool {
	return t.QAID != "" && actor.ID == t.QAID
}

func reviewParticipant(actor domain.User, t Target) bool {
	return qaAuthored(actor, t) || writerAssigned(actor, t)
}

func subjectSelf(actor domain.User, t Target) bool {
	return t.SubjectID != "" && actor.ID == t.SubjectID
}

var policy = map[Entity]map[Action]rule{
	EntityOrder: {
		ActionRead:       {owner: studentOwns},
		ActionUpdate:     {roles: []domain.UserRole{domain.RoleAdmin}, owner: studentOwns},
		ActionDelete:     {owner: studentOwns},
		ActionListByUser: {owner: subjectSelf},
	},
	EntityPayment: {
		ActionCreate:     {owner: studentOwns},
		ActionRead:       {owner: studentOwns},
		ActionUpdate:     {roles: []domain.UserRole{domain.RoleAdmin}},
		ActionDelete:     {roles: []domain.UserRole{domain.RoleAdmin}},
		ActionListByUser: {owner: subjectSelf},
	},
	EntityAssignment: {
		ActionCreate:      {roles: []domain.UserRole{domain.RoleAdmin, domain.RoleQA}},
		ActionDelete:      {roles: []domain.UserRole{domain.RoleAdmin, domain.RoleQA}},
		ActionUpdate:      {owner: writerAssigned},
		ActionListByOrder: {roles: []domain.UserRole{domain.RoleAdmin, domain.RoleQA}},
		ActionListByUser:  {roles: []domain.UserRole{domain.RoleAdmin, domain.RoleQA}, owner: subjectSelf},
	},
	EntityReview: {
		ActionCreate:     {roles: []domain.UserRole{domain.RoleQA}},
		ActionUpdate:     {owner: reviewParticipant},
		ActionDelete:     {owner: qaAuthored},
		ActionListByUser: {roles: []domain.UserRole{domain.RoleAdmin}, owner: subjectSelf},
	},
	EntityUser: {
		ActionCreate: {roles: []domain.UserRole{domain.RoleAdmin}},
		ActionRead:   {roles: []domain.UserRole{domain.RoleAdmin}, owner: subjectSelf},
		ActionUpdate: {roles: []domain.UserRole{domain.RoleAdmin}},
		ActionDelete: {roles: []domain.UserRole{domain.RoleAdmin}},
	},
}

// Can reports whether the actor may perform action on entity. A nil
// actor is always denied; callers decide the unauthenticated message.
func Can(actor *domain.User, entity Entity, action Action, t Target) bool {
	if actor == nil {
		return false
	}
	actions, ok := policy[entity]
	if !ok {
		return false
	}
	r, ok := actions[action]
	if !ok {
		return false
	}
	for _, role := range r.roles {
		if actor.Role == role {
			return true
		}
	}
	if r.owner != nil && r.owner(*actor, t) {
		return true
	}
	return false
}

// HasRole reports whether the actor holds any of the given roles.
func HasRole(actor *domain.User, roles ...domain.UserRole) bool {
	if actor == nil {
		return false
	}
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}
