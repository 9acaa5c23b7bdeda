package storage

import (
	"context"
	"testing"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func TestSQLiteDB_Roundtrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	if _, ok, err := db.Get(ctx, "alerts"); err != nil || ok {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}

	if err := db.Set(ctx, "alerts", `[{"id":"seed-1001"}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := db.Get(ctx, "alerts")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || v != `[{"id":"seed-1001"}]` {
		t.Errorf("unexpected value: ok=%v v=%s", ok, v)
	}
}

func TestSQLiteDB_Overwrite(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	db.Set(ctx, "alert_counter", "1")
	if err := db.Set(ctx, "alert_counter", "2"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	v, _, _ := db.Get(ctx, "alert_counter")
	if v != "2" {
		t.Errorf("expected 2, got %s", v)
	}
}

func TestSQLiteDB_Delete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	db.Set(ctx, "alert_event", "{}")
	if err := db.Delete(ctx, "alert_event"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := db.Get(ctx, "alert_event"); ok {
		t.Error("expected miss after delete")
	}

	// Deleting a missing key is not an error.
	if err := db.Delete(ctx, "alert_event"); err != nil {
		t.Errorf("delete of missing key failed: %v", err)
	}
}

func TestSQLiteDB_BacksShared(t *testing.T) {
	shared := NewShared(setupTestDB(t))
	defer shared.Close()

	writer := shared.Handle()
	other := shared.Handle()

	got := ""
	cancel := other.Watch(func(ev Event) { got = ev.NewValue })
	defer cancel()

	ctx := context.Background()
	if err := writer.Set(ctx, KeyAlerts, `[]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got != `[]` {
		t.Errorf("expected change event through sqlite backend, got %q", got)
	}
}
