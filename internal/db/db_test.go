package db

import (
	"database/sql"
	"encoding/json"
	"testing"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatal(err)
	}
	if err := InitSchema(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitSchema(t *testing.T) {
	db := testDB(t)

	tables := map[string]bool{}
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('events','inbox')`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatal(err)
		}
		tables[name] = true
	}

	for _, want := range []string{"events", "inbox"} {
		if !tables[want] {
			t.Errorf("table %q not created", want)
		}
	}
}

func TestLogEvent_Basic(t *testing.T) {
	db := testDB(t)

	id1, err := LogEvent(db, nil, EventProcessStarted, map[string]any{"pid": 123})
	if err != nil {
		t.Fatal(err)
	}
	if id1 <= 0 {
		t.Errorf("expected positive id, got %d", id1)
	}

	id2, err := LogEvent(db, nil, EventMessageReceived, map[string]any{"chat_id": 456})
	if err != nil {
		t.Fatal(err)
	}
	if id2 <= id1 {
		t.Errorf("expected id2 > id1, got %d <= %d", id2, id1)
	}

	var ts int64
	if err := db.QueryRow(`SELECT timestamp FROM events WHERE id = ?`, id1).Scan(&ts); err != nil {
		t.Fatal(err)
	}
	if ts == 0 {
		t.Error("expected non-zero timestamp")
	}

	var payloadStr string
	if err := db.QueryRow(`SELECT payload FROM events WHERE id = ?`, id1).Scan(&payloadStr); err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(payloadStr), &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if payload["pid"] != float64(123) {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestLogEvent_ParentChain(t *testing.T) {
	db := testDB(t)

	rootID, err := LogEvent(db, nil, EventProcessStarted, nil)
	if err != nil {
		t.Fatal(err)
	}
	childID, err := LogEvent(db, &rootID, EventMessageReceived, map[string]any{"chat_id": 1})
	if err != nil {
		t.Fatal(err)
	}

	var gotParent sql.NullInt64
	if err := db.QueryRow(`SELECT parent_id FROM events WHERE id = ?`, childID).Scan(&gotParent); err != nil {
		t.Fatal(err)
	}
	if !gotParent.Valid || gotParent.Int64 != rootID {
		t.Errorf("expected parent %d, got %v", rootID, gotParent)
	}

	var rootParent sql.NullInt64
	if err := db.QueryRow(`SELECT parent_id FROM events WHERE id = ?`, rootID).Scan(&rootParent); err != nil {
		t.Fatal(err)
	}
	if rootParent.Valid {
		t.Error("expected NULL parent for root event")
	}
}

func TestEnqueueUpdate_Dedup(t *testing.T) {
	db := testDB(t)

	fresh, err := EnqueueUpdate(db, 100, 7, "привет", 1700000000)
	if err != nil {
		t.Fatal(err)
	}
	if !fresh {
		t.Fatal("expected first enqueue to be fresh")
	}

	again, err := EnqueueUpdate(db, 100, 7, "привет", 1700000000)
	if err != nil {
		t.Fatal(err)
	}
	if again {
		t.Fatal("expected duplicate update_id to be rejected")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM inbox`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 inbox row, got %d", count)
	}
}

func TestDeriveOffset(t *testing.T) {
	db := testDB(t)

	offset, err := DeriveOffset(db)
	if err != nil {
		t.Fatal(err)
	}
	if offset != 0 {
		t.Errorf("expected 0 offset on empty inbox, got %d", offset)
	}

	if _, err := EnqueueUpdate(db, 100, 7, "a", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := EnqueueUpdate(db, 105, 7, "b", 2); err != nil {
		t.Fatal(err)
	}

	offset, err = DeriveOffset(db)
	if err != nil {
		t.Fatal(err)
	}
	if offset != 106 {
		t.Errorf("expected offset 106, got %d", offset)
	}
}

func TestMarkProcessedAndFailed(t *testing.T) {
	db := testDB(t)

	if _, err := EnqueueUpdate(db, 1, 7, "a", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := EnqueueUpdate(db, 2, 7, "b", 2); err != nil {
		t.Fatal(err)
	}

	MarkProcessed(db, 1)
	MarkFailed(db, 2, "send failed: timeout")

	var status string
	if err := db.QueryRow(`SELECT status FROM inbox WHERE update_id = 1`).Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != "done" {
		t.Errorf("expected done, got %s", status)
	}

	var errMsg sql.NullString
	if err := db.QueryRow(`SELECT status, error FROM inbox WHERE update_id = 2`).Scan(&status, &errMsg); err != nil {
		t.Fatal(err)
	}
	if status != "failed" {
		t.Errorf("expected failed, got %s", status)
	}
	if !errMsg.Valid || errMsg.String != "send failed: timeout" {
		t.Errorf("unexpected error column: %v", errMsg)
	}
}
