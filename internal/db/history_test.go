package db

import (
	"context"
	"fmt"
	"testing"
)

func TestAppendHistoryAssignsIDs(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		rec := &TaskHistoryRecord{
			TaskName:              fmt.Sprintf("Task %d", i),
			Priority:              "medium",
			ActualDurationMinutes: 25,
		}
		if err := store.RunInTx(ctx, func(tx *TxOps) error {
			return store.AppendHistoryTx(tx, rec)
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
		ids = append(ids, rec.ID)
	}

	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Errorf("ids not monotonic: %v", ids)
		}
	}
}

func TestHistoryCountInAppendTransaction(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	// The count read in the same transaction must include the record
	// just appended exactly once.
	err := store.RunInTx(ctx, func(tx *TxOps) error {
		rec := &TaskHistoryRecord{TaskName: "Write report", Priority: "high", ActualDurationMinutes: 50}
		if err := store.AppendHistoryTx(tx, rec); err != nil {
			return err
		}
		count, err := store.HistoryCountTx(tx)
		if err != nil {
			return err
		}
		if count != 1 {
			t.Errorf("count inside tx = %d, want 1", count)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx failed: %v", err)
	}
}

func TestListHistoryOrder(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	names := []string{"First", "Second", "Third"}
	for _, name := range names {
		name := name
		if err := store.RunInTx(ctx, func(tx *TxOps) error {
			return store.AppendHistoryTx(tx, &TaskHistoryRecord{
				TaskName:              name,
				Priority:              "low",
				ActualDurationMinutes: 10,
			})
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	records, err := store.ListHistory(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, name := range names {
		if records[i].TaskName != name {
			t.Errorf("record %d name = %q, want %q", i, records[i].TaskName, name)
		}
	}
}

func TestAppendRollbackLeavesNoRecord(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	sentinel := fmt.Errorf("boom")
	err := store.RunInTx(ctx, func(tx *TxOps) error {
		if err := store.AppendHistoryTx(tx, &TaskHistoryRecord{
			TaskName:              "Ghost",
			Priority:              "high",
			ActualDurationMinutes: 5,
		}); err != nil {
			return err
		}
		return sentinel
	})
	if err == nil {
		t.Fatal("expected error from RunInTx")
	}

	records, err := store.ListHistory(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("rolled-back append visible: %+v", records)
	}
}
