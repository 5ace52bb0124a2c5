package authz

import (
	"testing"

	"paperdesk/pkg/domain"
)

func user(id string, role domain.UserRole) *domain.User {
	return &domain.User{ID: id, Role: role}
}

func TestNilActorAlwaysDenied(t *testing.T) {
	for entity, actions := range policy {
		for action := range actions {
			if Can(nil, entity, action, Target{StudentID: "s1", WriterID: "w1", QAID: "q1", SubjectID: "u1"}) {
				t.Errorf("nil actor allowed for %s/%s", entity, action)
			}
		}
	}
}

func TestOrderOwnership(t *testing.T) {
	owner := user("s1", domain.RoleStudent)
	other := user("s2", domain.RoleStudent)
	admin := user("a1", domain.RoleAdmin)
	target := Target{StudentID: "s1"}

	if !Can(owner, EntityOrder, ActionRead, target) {
		t.Fatal("owner should read own order")
	}
	if Can(other, EntityOrder, ActionRead, target) {
		t.Fatal("non-owner should not read order")
	}
	if Can(admin, EntityOrder, ActionRead, target) {
		t.Fatal("admin has no blanket order read")
	}
	if !Can(admin, EntityOrder, ActionUpdate, target) {
		t.Fatal("admin should update any order")
	}
	if Can(admin, EntityOrder, ActionDelete, target) {
		t.Fatal("admin should not delete another student's order")
	}
	if !Can(owner, EntityOrder, ActionDelete, target) {
		t.Fatal("owner should delete own order")
	}
}

func TestPaymentRules(t *testing.T) {
	owner := user("s1", domain.RoleStudent)
	admin := user("a1", domain.RoleAdmin)
	writer := user("w1", domain.RoleWriter)
	target := Target{StudentID: "s1"}

	if !Can(owner, EntityPayment, ActionCreate, target) {
		t.Fatal("order owner should create payment")
	}
	if Can(writer, EntityPayment, ActionCreate, target) {
		t.Fatal("writer should not create payment")
	}
	if !Can(admin, EntityPayment, ActionUpdate, Target{}) {
		t.Fatal("admin should update payments")
	}
	if Can(owner, EntityPayment, ActionUpdate, target) {
		t.Fatal("owner should not update payments")
	}
	if Can(owner, EntityPayment, ActionDelete, target) {
		t.Fatal("owner should not delete payments")
	}
}

func TestAssignmentRules(t *testing.T) {
	admin := user("a1", domain.RoleAdmin)
	qa := user("q1", domain.RoleQA)
	writer := user("w1", domain.RoleWriter)
	otherWriter := user("w2", domain.RoleWriter)
	target := Target{WriterID: "w1"}

	for _, actor := range []*domain.User{admin, qa} {
		if !Can(actor, EntityAssignment, ActionCreate, Target{}) {
			t.Fatalf("%s should create assignments", actor.Role)
		}
		if !Can(actor, EntityAssignment, ActionDelete, Target{}) {
			t.Fatalf("%s should delete assignments", actor.Role)
		}
		if !Can(actor, EntityAssignment, ActionListByOrder, Target{}) {
			t.Fatalf("%s should list assignments by order", actor.Role)
		}
	}
	// Writer is rejected from order-scoped listing regardless of ownership.
	if Can(writer, EntityAssignment, ActionListByOrder, target) {
		t.Fatal("writer should not list assignments by order")
	}
	if !Can(writer, EntityAssignment, ActionUpdate, target) {
		t.Fatal("assigned writer should update assignment")
	}
	if Can(otherWriter, EntityAssignment, ActionUpdate, target) {
		t.Fatal("other writer should not update assignment")
	}
	if Can(writer, EntityAssignment, ActionCreate, Target{}) {
		t.Fatal("writer should not create assignments")
	}
	if !Can(writer, EntityAssignment, ActionListByUser, Target{SubjectID: "w1"}) {
		t.Fatal("writer should list own assignments")
	}
	if Can(otherWriter, EntityAssignment, ActionListByUser, Target{SubjectID: "w1"}) {
		t.Fatal("writer should not list another writer's assignments")
	}
}

func TestReviewRules(t *testing.T) {
	qa := user("q1", domain.RoleQA)
	otherQA := user("q2", domain.RoleQA)
	writer := user("w1", domain.RoleWriter)
	admin := user("a1", domain.RoleAdmin)
	target := Target{QAID: "q1", WriterID: "w1"}

	if !Can(qa, EntityReview, ActionCreate, Target{}) {
		t.Fatal("qa should create reviews")
	}
	if Can(admin, EntityReview, ActionCreate, Target{}) {
		t.Fatal("admin should not create reviews")
	}
	if !Can(qa, EntityReview, ActionUpdate, target) {
		t.Fatal("qa author should update review")
	}
	if !Can(writer, EntityReview, ActionUpdate, target) {
		t.Fatal("reviewed writer should update review")
	}
	if Can(otherQA, EntityReview, ActionUpdate, target) {
		t.Fatal("unrelated qa should not update review")
	}
	if !Can(qa, EntityReview, ActionDelete, target) {
		t.Fatal("qa author should delete review")
	}
	if Can(writer, EntityReview, ActionDelete, target) {
		t.Fatal("writer should not delete review")
	}
	if !Can(admin, EntityReview, ActionListByUser, Target{SubjectID: "w1"}) {
		t.Fatal("admin should list reviews for any user")
	}
	if !Can(writer, EntityReview, ActionListByUser, Target{SubjectID: "w1"}) {
		t.Fatal("subject should list own reviews")
	}
	if Can(otherQA, EntityReview, ActionListByUser, Target{SubjectID: "w1"}) {
		t.Fatal("unrelated user should not list another user's reviews")
	}
}

func TestHasRole(t *testing.T) {
	if HasRole(nil, domain.RoleAdmin) {
		t.Fatal("nil actor has no role")
	}
	if !HasRole(user("a1", domain.RoleAdmin), domain.RoleAdmin, domain.RoleQA) {
		t.Fatal("admin should match role set")
	}
	if HasRole(user("w1", domain.RoleWriter), domain.RoleAdmin, domain.RoleQA) {
		t.Fatal("writer should not match admin/qa role set")
	}
}
