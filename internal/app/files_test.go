package app

import (
	"context"
	"strings"
	"testing"

	"paperdesk/pkg/domain"
)

func TestUploadOrderFile(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner@x.com", domain.RoleStudent)
	other := env.addUser(t, "other@x.com", domain.RoleStudent)
	order := env.addOrder(t, owner.ID, 5)
	ctx := context.Background()

	body := strings.NewReader("draft text")
	file, err := env.app.UploadOrderFile(ctx, &owner, order.ID, "draft.pdf", "application/pdf", 10, body)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if file.OrderID != order.ID || file.Name != "draft.pdf" || file.Size != 10 {
		t.Fatalf("unexpected metadata %+v", file)
	}
	if !strings.Contains(file.URL, "orders/"+order.ID+"/") {
		t.Fatalf("object not keyed under the order: %q", file.URL)
	}

	files, err := env.store.ListFilesByOrder(order.ID)
	if err != nil || len(files) != 1 {
		t.Fatalf("metadata not persisted: %d err=%v", len(files), err)
	}

	// Foreign orders, disallowed extensions, oversize uploads.
	if _, err := env.app.UploadOrderFile(ctx, &other, order.ID, "x.pdf", "application/pdf", 10, strings.NewReader("x")); err == nil {
		t.Fatal("non-owner must not upload")
	}
	if _, err := env.app.UploadOrderFile(ctx, &owner, order.ID, "x.exe", "application/octet-stream", 10, strings.NewReader("x")); err == nil {
		t.Fatal("extension allow-list must apply")
	}
	if _, err := env.app.UploadOrderFile(ctx, &owner, order.ID, "x.pdf", "application/pdf", MaxUploadBytes+1, strings.NewReader("x")); err == nil {
		t.Fatal("size cap must apply")
	}
}
