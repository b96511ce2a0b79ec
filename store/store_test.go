package store

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRobotEventAudit(t *testing.T) {
	db := testDB(t)

	if _, err := db.InsertRobotEvent("1108", "robot-open/1/pub/data", "visitor abc"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.InsertRobotEvent("1204", "robot-open/1/pub/data", "arrived dining-area"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	events, err := db.ListRobotEvents(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	// Newest first.
	if events[0].Tag != "1204" {
		t.Errorf("first tag = %q, want 1204", events[0].Tag)
	}

	n, err := db.CountRobotEvents("1108")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count(1108) = %d, want 1", n)
	}
}

func TestCommandLogLifecycle(t *testing.T) {
	db := testDB(t)

	if err := db.InsertCommandStart("seq-1", "guide_to_table", "PX6397"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.MarkCommandFailed("seq-1", "move", "remote code 20001"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	cmds, err := db.ListCommands(5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("cmds = %d, want 1", len(cmds))
	}
	c := cmds[0]
	if c.Status != "failed" || c.FailedStep != "move" {
		t.Errorf("cmd = %+v, want failed at move", c)
	}
}

func TestOrders(t *testing.T) {
	db := testDB(t)

	if _, err := db.InsertOrder("uuid-1", `[{"name":"Sushi","quantity":2}]`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.UpdateOrderStatus("uuid-1", "delivered"); err != nil {
		t.Fatalf("update: %v", err)
	}

	o, err := db.GetOrder("uuid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.Status != "delivered" {
		t.Errorf("status = %q, want delivered", o.Status)
	}
}

func TestAdminUsers(t *testing.T) {
	db := testDB(t)

	if u, err := db.GetAdminUser("nobody"); err != nil || u != nil {
		t.Fatalf("missing user: got %v, %v, want nil, nil", u, err)
	}

	if err := db.CreateAdminUser("ops", "hash"); err != nil {
		t.Fatalf("create: %v", err)
	}
	u, err := db.GetAdminUser("ops")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.PasswordHash != "hash" {
		t.Errorf("hash = %q", u.PasswordHash)
	}
}
