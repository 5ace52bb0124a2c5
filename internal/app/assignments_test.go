package app

import (
	"testing"

	"paperdesk/pkg/domain"
)

func TestAssignmentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	qa := env.addUser(t, "qa@x.com", domain.RoleQA)
	writer := env.addUser(t, "w@x.com", domain.RoleWriter)
	student := env.addUser(t, "s@x.com", domain.RoleStudent)
	order := env.addOrder(t, student.ID, 5)

	if _, err := env.app.CreateAssignment(&writer, CreateAssignmentInput{OrderID: order.ID, WriterID: writer.ID}); err == nil {
		t.Fatal("writers must not create assignments")
	}

	a, err := env.app.CreateAssignment(&qa, CreateAssignmentInput{OrderID: order.ID, WriterID: writer.ID})
	if err != nil {
		t.Fatalf("qa create: %v", err)
	}
	if a.Status != domain.AssignmentPending {
		t.Fatalf("expected PENDING, got %s", a.Status)
	}

	if _, err := env.app.CreateAssignment(&qa, CreateAssignmentInput{OrderID: order.ID, WriterID: student.ID}); err == nil {
		t.Fatal("assignments must reference a writer account")
	}

	// Only the assigned writer moves the status.
	if _, err := env.app.UpdateAssignment(&qa, a.ID, domain.AssignmentInProgress); err == nil {
		t.Fatal("qa must not update assignments")
	}
	updated, err := env.app.UpdateAssignment(&writer, a.ID, domain.AssignmentInProgress)
	if err != nil {
		t.Fatalf("writer update: %v", err)
	}
	if updated.Status != domain.AssignmentInProgress {
		t.Fatalf("status not applied: %+v", updated)
	}

	if _, err := env.app.DeleteAssignment(&writer, a.ID); err == nil {
		t.Fatal("writers must not delete assignments")
	}
	if ok, err := env.app.DeleteAssignment(&qa, a.ID); err != nil || !ok {
		t.Fatalf("qa delete: ok=%v err=%v", ok, err)
	}
}

func TestAssignmentsByOrderRejectsWriters(t *testing.T) {
	env := newTestEnv(t)
	qa := env.addUser(t, "qa@x.com", domain.RoleQA)
	admin := env.addUser(t, "admin@x.com", domain.RoleAdmin)
	writer := env.addUser(t, "w@x.com", domain.RoleWriter)
	student := env.addUser(t, "s@x.com", domain.RoleStudent)
	order := env.addOrder(t, student.ID, 5)
	if _, err := env.app.CreateAssignment(&qa, CreateAssignmentInput{OrderID: order.ID, WriterID: writer.ID}); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	// Rejected regardless of being the assigned writer.
	if _, err := env.app.AssignmentsByOrder(&writer, order.ID); err == nil {
		t.Fatal("writers must not list assignments by order")
	}
	for _, actor := range []*domain.User{&admin, &qa} {
		list, err := env.app.AssignmentsByOrder(actor, order.ID)
		if err != nil || len(list) != 1 {
			t.Fatalf("%s list: %d err=%v", actor.Role, len(list), err)
		}
	}
}

func TestAssignmentsByWriter(t *testing.T) {
	env := newTestEnv(t)
	qa := env.addUser(t, "qa@x.com", domain.RoleQA)
	writer := env.addUser(t, "w@x.com", domain.RoleWriter)
	otherWriter := env.addUser(t, "w2@x.com", domain.RoleWriter)
	student := env.addUser(t, "s@x.com", domain.RoleStudent)
	order := env.addOrder(t, student.ID, 5)
	if _, err := env.app.CreateAssignment(&qa, CreateAssignmentInput{OrderID: order.ID, WriterID: writer.ID}); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	list, err := env.app.AssignmentsByWriter(&writer, writer.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("self list: %d err=%v", len(list), err)
	}
	if _, err := env.app.AssignmentsByWriter(&otherWriter, writer.ID); err == nil {
		t.Fatal("writers must not list a colleague's assignments")
	}
	_, err = env.app.AssignmentsByWriter(&otherWriter, otherWriter.ID)
	if err == nil || err.Error() != "No assignments found for this user" {
		t.Fatalf("expected no-assignments signal, got %v", err)
	}
}
