package journal

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paydash/internal/core"
)

func openTemp(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "data", "journal.db"), nil)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func outcome(id string, at time.Time, status core.RenderStatus) core.RenderOutcome {
	o := core.RenderOutcome{
		ID:       id,
		Source:   "users.json",
		Variant:  "full",
		Records:  4,
		Users:    2,
		Status:   status,
		Duration: 12 * time.Millisecond,
		At:       at,
	}
	if status == core.StatusFailed {
		o.Records, o.Users = 0, 0
		o.ErrorKind = core.KindFileMissing
	}
	return o
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, o := range []core.RenderOutcome{
		outcome("a", base, core.StatusOK),
		outcome("b", base.Add(time.Minute), core.StatusFailed),
		outcome("c", base.Add(2*time.Minute), core.StatusOK),
	} {
		if err := j.Record(ctx, o); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	got, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("expected newest first [c b], got %+v", got)
	}

	b := got[1]
	if !b.Failed() || b.ErrorKind != core.KindFileMissing {
		t.Errorf("failed outcome lost its kind: %+v", b)
	}
	if b.Duration != 12*time.Millisecond {
		t.Errorf("duration = %v", b.Duration)
	}
	if !b.At.Equal(base.Add(time.Minute)) {
		t.Errorf("at = %v", b.At)
	}
}

func TestJournal_RecentDefaultLimit(t *testing.T) {
	j := openTemp(t)
	got, err := j.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("recent on empty journal: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty journal, got %d rows", len(got))
	}
}

func TestJournal_DuplicateID(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()
	o := outcome("dup", time.Now(), core.StatusOK)
	if err := j.Record(ctx, o); err != nil {
		t.Fatalf("first record: %v", err)
	}
	err := j.Record(ctx, o)
	if err == nil || !strings.Contains(err.Error(), "dup") {
		t.Fatalf("expected duplicate id error naming the render, got %v", err)
	}
}

func TestJournal_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := j.Record(context.Background(), outcome("keep", time.Now(), core.StatusOK)); err != nil {
		t.Fatalf("record: %v", err)
	}
	j.Close()

	j, err = Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	got, err := j.Recent(context.Background(), 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected the stored row after reopen, got %v %v", got, err)
	}
}
