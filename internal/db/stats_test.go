package db

import (
	"context"
	"testing"
)

func TestResetStatCreatesAndResets(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.RunInTx(ctx, func(tx *TxOps) error {
		return store.ResetStatTx(tx, "2024-06-01", 5)
	}); err != nil {
		t.Fatalf("reset: %v", err)
	}

	stat, err := store.GetStat(ctx, "2024-06-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stat == nil {
		t.Fatal("stat not created")
	}
	if stat.TotalBlocksScheduled != 5 || stat.BlocksCompleted != 0 {
		t.Errorf("stat = %+v, want total 5, completed 0", stat)
	}

	// Bump the counter, then reset with a new total: completed must
	// return to zero even though a prior row existed.
	if err := store.RunInTx(ctx, func(tx *TxOps) error {
		return store.IncrementCompletedTx(tx, "2024-06-01")
	}); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := store.RunInTx(ctx, func(tx *TxOps) error {
		return store.ResetStatTx(tx, "2024-06-01", 3)
	}); err != nil {
		t.Fatalf("second reset: %v", err)
	}

	stat, err = store.GetStat(ctx, "2024-06-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stat.TotalBlocksScheduled != 3 || stat.BlocksCompleted != 0 {
		t.Errorf("stat after reset = %+v, want total 3, completed 0", stat)
	}
}

func TestIncrementCompletedRequiresRow(t *testing.T) {
	store := testStore(t)

	err := store.RunInTx(context.Background(), func(tx *TxOps) error {
		return store.IncrementCompletedTx(tx, "2024-06-01")
	})
	if err == nil {
		t.Error("expected error incrementing a missing stat row")
	}
}

func TestGetStatAbsent(t *testing.T) {
	store := testStore(t)

	stat, err := store.GetStat(context.Background(), "2024-06-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stat != nil {
		t.Errorf("expected nil for absent date, got %+v", stat)
	}
}

func TestMonthlyStatsOrderingAndBounds(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	// Inserted out of order across two months.
	dates := []struct {
		date  string
		total int
	}{
		{"2024-06-15", 4},
		{"2024-06-01", 2},
		{"2024-07-01", 6},
		{"2024-06-30", 3},
		{"2024-05-31", 1},
	}
	for _, d := range dates {
		d := d
		if err := store.RunInTx(ctx, func(tx *TxOps) error {
			return store.ResetStatTx(tx, d.date, d.total)
		}); err != nil {
			t.Fatalf("reset %s: %v", d.date, err)
		}
	}

	stats, err := store.MonthlyStats(ctx, 2024, 6)
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}

	want := []string{"2024-06-01", "2024-06-15", "2024-06-30"}
	if len(stats) != len(want) {
		t.Fatalf("got %d rows, want %d", len(stats), len(want))
	}
	for i, date := range want {
		if stats[i].Date != date {
			t.Errorf("row %d date = %s, want %s", i, stats[i].Date, date)
		}
	}
}

func TestMonthlyStatsEmptyMonth(t *testing.T) {
	store := testStore(t)

	stats, err := store.MonthlyStats(context.Background(), 2024, 2)
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("expected no rows, got %d", len(stats))
	}
}
